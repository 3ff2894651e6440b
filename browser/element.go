package browser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Element is a handle on one node of a loaded page snapshot.
type Element struct {
	sel *goquery.Selection
}

// Elements wraps every node of sel, in document order.
func Elements(sel *goquery.Selection) []Element {
	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, Element{sel: s})
	})
	return out
}

// Attr returns the named attribute and whether it is present.
func (e Element) Attr(name string) (string, bool) {
	if e.sel == nil {
		return "", false
	}
	return e.sel.Attr(name)
}

// InnerText returns the element's text with whitespace runs collapsed.
func (e Element) InnerText() string {
	if e.sel == nil {
		return ""
	}
	return strings.Join(strings.Fields(e.sel.Text()), " ")
}

// Find returns the first descendant matching selector.
func (e Element) Find(selector string) (Element, bool) {
	if e.sel == nil {
		return Element{}, false
	}
	found := e.sel.Find(selector)
	if found.Length() == 0 {
		return Element{}, false
	}
	return Element{sel: found.First()}, true
}
