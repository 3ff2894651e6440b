package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-parts/browser"
	"github.com/google/uuid"
)

func TestPartNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "category with suffix",
			input:    "https://shop.test/parts/category_ABC123-extra",
			expected: "ABC123",
		},
		{
			name:     "multiple underscores",
			input:    "https://shop.test/2015-jaguar-f_type-r_T2R12345-front-bumper",
			expected: "T2R12345",
		},
		{
			name:     "no dash",
			input:    "https://shop.test/x_C2D1",
			expected: "C2D1",
		},
		{
			name:     "no separators",
			input:    "plain",
			expected: "plain",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PartNumber(tt.input)
			if result != tt.expected {
				t.Errorf("PartNumber(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "labelled our price",
			input:    "Our Price : $125.40",
			expected: "$125.40",
		},
		{
			name:     "with whitespace",
			input:    "  $10.50  ",
			expected: "$10.50",
		},
		{
			name:     "already clean",
			input:    "$25.99",
			expected: "$25.99",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizePrice(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizePrice(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestImagePartNumber(t *testing.T) {
	if got := ImagePartNumber("left_call_out_hide_show_12", "A"); got != "12A" {
		t.Errorf("ImagePartNumber = %q, want %q", got, "12A")
	}
	if got := ImagePartNumber("", "7"); got != "7" {
		t.Errorf("ImagePartNumber without class = %q, want %q", got, "7")
	}
}

// buildPage renders a flyout table with n detail blocks and m markers.
func buildPage(n, m int) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="item_list_flyout" class="table-responsive"><table class="table"><tbody>`)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `<tr><td><table class="table table_flyout"><tbody><tr><td>`)
		fmt.Fprintf(&b, `<a class="title" href="/parts/bumper_C2D%d-clip"> Clip %d </a>`, i, i)
		fmt.Fprintf(&b, `<div class="flayout_partno"><p><span>Retaining clip %d</span></p></div>`, i)
		b.WriteString(`</td></tr></tbody></table></td></tr>`)
	}
	for i := 1; i <= m; i++ {
		fmt.Fprintf(&b, `<tr><td class="right-hotspot-td"><div class="hotspot right-hotspot"><span><pp class="left_call_out_hide_show_%d">%c</pp></span></div></td></tr>`, i, 'A'+i-1)
	}
	b.WriteString(`</tbody></table></div></body></html>`)
	return b.String()
}

func query(t *testing.T, html string) (details, markers []browser.Element) {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	details = browser.Elements(doc.Find("div#item_list_flyout.table-responsive table.table tbody tr td table.table.table_flyout"))
	markers = browser.Elements(doc.Find("div#item_list_flyout.table-responsive table.table tbody tr td.right-hotspot-td div.hotspot.right-hotspot span pp"))
	return details, markers
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		details int
		markers int
		want    bool
	}{
		{name: "matched", details: 3, markers: 3, want: true},
		{name: "empty", details: 0, markers: 0, want: true},
		{name: "more details", details: 3, markers: 2, want: false},
		{name: "more markers", details: 1, markers: 2, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details, markers := query(t, buildPage(tt.details, tt.markers))
			if len(details) != tt.details || len(markers) != tt.markers {
				t.Fatalf("fixture queried %d/%d, want %d/%d", len(details), len(markers), tt.details, tt.markers)
			}
			if got := Validate(details, markers); got != tt.want {
				t.Fatalf("Validate = %v, want %v", got, tt.want)
			}

			err := CheckPair(details, markers)
			if tt.want && err != nil {
				t.Fatalf("CheckPair: %v", err)
			}
			var mismatch *MismatchError
			if !tt.want && (!errors.As(err, &mismatch) || mismatch.Details != tt.details || mismatch.Markers != tt.markers) {
				t.Fatalf("CheckPair error = %v, want MismatchError %d/%d", err, tt.details, tt.markers)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	details, markers := query(t, buildPage(3, 3))
	groupID, pageID := uuid.New(), uuid.New()

	items, err := Extract(details, markers, "https://shop.test/group/bumper", groupID, pageID)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}

	first := items[0]
	if first.Name != "Clip 1" {
		t.Errorf("name = %q, want %q", first.Name, "Clip 1")
	}
	if first.Link != "https://shop.test/parts/bumper_C2D1-clip" {
		t.Errorf("link = %q", first.Link)
	}
	if first.PartNumber != "C2D1" {
		t.Errorf("part number = %q, want C2D1", first.PartNumber)
	}
	if first.ImagePartNumber != "1A" {
		t.Errorf("image part number = %q, want 1A", first.ImagePartNumber)
	}
	if first.Description != "Retaining clip 1" {
		t.Errorf("description = %q", first.Description)
	}
	for i, item := range items {
		if item.GroupID != groupID || item.PageID != pageID {
			t.Errorf("item %d back-references = %v/%v", i, item.GroupID, item.PageID)
		}
	}
	if items[2].ImagePartNumber != "3C" {
		t.Errorf("positional pairing broken: %q", items[2].ImagePartNumber)
	}
}

func TestExtractRejectsMismatch(t *testing.T) {
	details, markers := query(t, buildPage(3, 2))
	items, err := Extract(details, markers, "https://shop.test/", uuid.New(), uuid.New())
	if err == nil || items != nil {
		t.Fatalf("expected mismatch error and no items, got %d items, err %v", len(items), err)
	}
}

func TestExtractMissingNestedNodes(t *testing.T) {
	html := `<html><body><div id="item_list_flyout" class="table-responsive"><table class="table"><tbody>
		<tr><td><table class="table table_flyout"><tbody><tr><td>no link here</td></tr></tbody></table></td></tr>
		<tr><td class="right-hotspot-td"><div class="hotspot right-hotspot"><span><pp>9</pp></span></div></td></tr>
	</tbody></table></div></body></html>`
	details, markers := query(t, html)

	items, err := Extract(details, markers, "https://shop.test/", uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].Name != "" || items[0].Link != "" || items[0].PartNumber != "" {
		t.Fatalf("expected empty link fields, got %+v", items[0])
	}
	if items[0].ImagePartNumber != "9" {
		t.Fatalf("image part number = %q, want 9", items[0].ImagePartNumber)
	}
}
