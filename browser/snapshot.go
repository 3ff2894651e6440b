package browser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// snapshot is a parsed page both session kinds query against.
type snapshot struct {
	doc *goquery.Document
	url string
}

func (p *snapshot) check(selector string, opts WaitOptions) (bool, error) {
	found := p.doc.Find(selector)
	if opts.State == StateVisible {
		found = found.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return !hidden(s)
		})
	}

	n := found.Length()
	if n == 0 {
		return false, nil
	}
	if opts.Strict && n > 1 {
		return false, &StrictModeError{Selector: selector, Count: n}
	}
	return true, nil
}

func (p *snapshot) queryAll(selector string) []Element {
	return Elements(p.doc.Find(selector))
}

func (p *snapshot) query(selector string) (Element, bool) {
	found := p.doc.Find(selector)
	if found.Length() == 0 {
		return Element{}, false
	}
	return Element{sel: found.First()}, true
}

// hidden reports whether s or an ancestor is hidden by markup alone.
func hidden(s *goquery.Selection) bool {
	for cur := s; cur.Length() > 0; cur = cur.Parent() {
		if _, ok := cur.Attr("hidden"); ok {
			return true
		}
		style, _ := cur.Attr("style")
		style = strings.ReplaceAll(strings.ToLower(style), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return true
		}
	}
	return false
}
