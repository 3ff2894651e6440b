// Package models defines the catalog hierarchy produced by the scraper.
package models

import (
	"time"

	"github.com/google/uuid"
)

// GroupRef is a group as discovered on the catalog index, before any of its
// pages have been visited.
type GroupRef struct {
	ID   uuid.UUID
	Name string
	Link string
}

// Group is a top-level catalog category with its finalized pages.
type Group struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Link  string    `json:"link"`
	Pages []Page    `json:"pages"`
}

// NewGroup combines a discovered group with its finalized pages.
func NewGroup(ref GroupRef, pages []Page) Group {
	if pages == nil {
		pages = []Page{}
	}
	return Group{
		ID:    ref.ID,
		Name:  ref.Name,
		Link:  ref.Link,
		Pages: pages,
	}
}

// Page is one visited sub-section document of a group. SubSection is 1 for
// the group's primary page and 2..N for secondary pages.
type Page struct {
	ID         uuid.UUID `json:"id"`
	ImageFile  *string   `json:"image_file"`
	Name       string    `json:"name"`
	Link       string    `json:"link"`
	SubSection int       `json:"sub_section"`
	Items      []Item    `json:"items"`
}

// Item is a single product record, the leaf of the hierarchy.
type Item struct {
	Name            string    `json:"name"`
	Link            string    `json:"link"`
	ImagePartNumber string    `json:"image_part_number"`
	PartNumber      string    `json:"part_number"`
	Description     string    `json:"description"`
	ImageFile       *string   `json:"image_file"`
	ListPrice       *string   `json:"list_price"`
	OurPrice        *string   `json:"our_price"`
	GroupID         uuid.UUID `json:"group_id"`
	PageID          uuid.UUID `json:"page_id"`
}

// DraftItem is an item as read from its group page. Image and prices are
// only known after the item's own page has been visited.
type DraftItem struct {
	Name            string
	Link            string
	ImagePartNumber string
	PartNumber      string
	Description     string
	GroupID         uuid.UUID
	PageID          uuid.UUID
}

// Enrichment holds the fields read from an item's detail page. Nil fields
// were not found.
type Enrichment struct {
	ImageFile *string
	ListPrice *string
	OurPrice  *string
}

// Finalize builds the final item from the draft and its enrichment.
func (d DraftItem) Finalize(e Enrichment) Item {
	return Item{
		Name:            d.Name,
		Link:            d.Link,
		ImagePartNumber: d.ImagePartNumber,
		PartNumber:      d.PartNumber,
		Description:     d.Description,
		ImageFile:       e.ImageFile,
		ListPrice:       e.ListPrice,
		OurPrice:        e.OurPrice,
		GroupID:         d.GroupID,
		PageID:          d.PageID,
	}
}

// PageDraft is a visited page whose items have not been enriched yet.
type PageDraft struct {
	ID         uuid.UUID
	ImageFile  *string
	Name       string
	Link       string
	SubSection int
	Items      []DraftItem
}

// Document is the complete result of one crawl.
type Document struct {
	Groups []Group `json:"groups"`
}

// CrawlStats summarises a crawl run.
type CrawlStats struct {
	StartTime        time.Time
	EndTime          time.Time
	GroupCount       int
	SkippedGroups    int
	PageCount        int
	ItemCount        int
	Navigations      int
	ImagesDownloaded int
	FaultsByType     map[string]int
	FailedURLs       []string
}
