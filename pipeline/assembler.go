// Package pipeline folds crawled pages into the catalog document and
// writes it out.
package pipeline

import (
	"fmt"

	"github.com/aluiziolira/go-scrape-parts/models"
	"github.com/google/uuid"
)

// GroupBuilder collects the pages of one group during its crawl.
type GroupBuilder struct {
	ref   models.GroupRef
	pages []models.PageDraft
}

// NewGroupBuilder starts a group.
func NewGroupBuilder(ref models.GroupRef) *GroupBuilder {
	return &GroupBuilder{ref: ref}
}

// NewPage returns an empty page draft of this group with a fresh identifier.
func (b *GroupBuilder) NewPage(link string, subSection int, imageFile *string) models.PageDraft {
	return models.PageDraft{
		ID:         uuid.New(),
		ImageFile:  imageFile,
		Name:       b.ref.Name,
		Link:       link,
		SubSection: subSection,
	}
}

// AddPage appends a visited page.
func (b *GroupBuilder) AddPage(page models.PageDraft) error {
	for _, existing := range b.pages {
		if existing.SubSection == page.SubSection {
			return fmt.Errorf("group %q: duplicate sub-section %d", b.ref.Name, page.SubSection)
		}
	}
	for i, item := range page.Items {
		if item.GroupID != b.ref.ID || item.PageID != page.ID {
			return fmt.Errorf("group %q page %d: item %d belongs to another page", b.ref.Name, page.SubSection, i)
		}
	}
	b.pages = append(b.pages, page)
	return nil
}

// Len returns the number of pages added so far.
func (b *GroupBuilder) Len() int {
	return len(b.pages)
}

// Drafts returns every draft item of the group, page by page.
func (b *GroupBuilder) Drafts() []models.DraftItem {
	var out []models.DraftItem
	for _, page := range b.pages {
		out = append(out, page.Items...)
	}
	return out
}

// Build finalizes the group. enrichments must align with Drafts().
func (b *GroupBuilder) Build(enrichments []models.Enrichment) (models.Group, error) {
	total := 0
	for _, page := range b.pages {
		total += len(page.Items)
	}
	if len(enrichments) != total {
		return models.Group{}, fmt.Errorf("group %q: %d enrichments for %d items", b.ref.Name, len(enrichments), total)
	}

	pages := make([]models.Page, 0, len(b.pages))
	next := 0
	for _, draft := range b.pages {
		items := make([]models.Item, 0, len(draft.Items))
		for _, item := range draft.Items {
			items = append(items, item.Finalize(enrichments[next]))
			next++
		}
		pages = append(pages, models.Page{
			ID:         draft.ID,
			ImageFile:  draft.ImageFile,
			Name:       draft.Name,
			Link:       draft.Link,
			SubSection: draft.SubSection,
			Items:      items,
		})
	}
	return models.NewGroup(b.ref, pages), nil
}

// Assembler accumulates finalized groups into the run's document.
type Assembler struct {
	doc models.Document
}

// NewAssembler starts an empty document.
func NewAssembler() *Assembler {
	return &Assembler{doc: models.Document{Groups: []models.Group{}}}
}

// Append adds a finalized group.
func (a *Assembler) Append(group models.Group) {
	a.doc.Groups = append(a.doc.Groups, group)
}

// Document verifies and returns the assembled document.
func (a *Assembler) Document() (*models.Document, error) {
	if err := CheckReferences(&a.doc); err != nil {
		return nil, err
	}
	doc := a.doc
	return &doc, nil
}

// CheckReferences verifies that identifiers are unique, sub-sections are
// unique per group, and every item points at its enclosing group and page.
func CheckReferences(doc *models.Document) error {
	if doc == nil {
		return fmt.Errorf("document is nil")
	}

	groupIDs := make(map[uuid.UUID]struct{}, len(doc.Groups))
	pageIDs := make(map[uuid.UUID]struct{})
	for gi, group := range doc.Groups {
		if _, dup := groupIDs[group.ID]; dup {
			return fmt.Errorf("group %d: duplicate id %s", gi, group.ID)
		}
		groupIDs[group.ID] = struct{}{}

		subSections := make(map[int]struct{}, len(group.Pages))
		for pi, page := range group.Pages {
			if _, dup := pageIDs[page.ID]; dup {
				return fmt.Errorf("group %d page %d: duplicate id %s", gi, pi, page.ID)
			}
			pageIDs[page.ID] = struct{}{}

			if page.SubSection < 1 {
				return fmt.Errorf("group %d page %d: sub-section %d out of range", gi, pi, page.SubSection)
			}
			if _, dup := subSections[page.SubSection]; dup {
				return fmt.Errorf("group %d page %d: duplicate sub-section %d", gi, pi, page.SubSection)
			}
			subSections[page.SubSection] = struct{}{}

			for ii, item := range page.Items {
				if item.GroupID != group.ID {
					return fmt.Errorf("group %d page %d item %d: group reference %s does not resolve", gi, pi, ii, item.GroupID)
				}
				if item.PageID != page.ID {
					return fmt.Errorf("group %d page %d item %d: page reference %s does not resolve", gi, pi, ii, item.PageID)
				}
			}
		}
	}
	return nil
}
