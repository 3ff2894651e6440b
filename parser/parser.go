// Package parser turns matched catalog elements into item records.
package parser

import (
	"strings"
)

// markerClassPrefix is the class prefix of diagram markers; the remainder
// of the class is the first half of the image part number.
const markerClassPrefix = "left_call_out_hide_show_"

// PartNumber derives a part number from an item address: the last
// '_'-separated segment, up to its first '-'.
// ".../category_ABC123-extra" yields "ABC123".
func PartNumber(address string) string {
	segments := strings.Split(address, "_")
	last := segments[len(segments)-1]
	return strings.Split(last, "-")[0]
}

// ImagePartNumber joins a marker's class token and visible text.
func ImagePartNumber(class, text string) string {
	return strings.ReplaceAll(class, markerClassPrefix, "") + text
}

// NormalizePrice strips the "Price :" label and "Our" prefix from a price
// text and trims surrounding whitespace.
func NormalizePrice(price string) string {
	price = strings.ReplaceAll(price, "Price :", "")
	price = strings.ReplaceAll(price, "Our", "")
	return strings.TrimSpace(price)
}
