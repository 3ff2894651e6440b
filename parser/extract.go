package parser

import (
	"fmt"

	"github.com/aluiziolira/go-scrape-parts/browser"
	"github.com/aluiziolira/go-scrape-parts/models"
	"github.com/google/uuid"
)

// Selectors inside one detail block.
const (
	TitleLinkSelector   = "a.title"
	DescriptionSelector = "tbody tr td div.flayout_partno p span"
)

// Extract produces one draft item per position of the validated detail and
// marker collections. Item links are made absolute against pageURL.
func Extract(details, markers []browser.Element, pageURL string, groupID, pageID uuid.UUID) ([]models.DraftItem, error) {
	if err := CheckPair(details, markers); err != nil {
		return nil, err
	}

	items := make([]models.DraftItem, 0, len(details))
	for i, detail := range details {
		marker := markers[i]

		class, _ := marker.Attr("class")
		item := models.DraftItem{
			ImagePartNumber: ImagePartNumber(class, marker.InnerText()),
			GroupID:         groupID,
			PageID:          pageID,
		}

		if link, ok := detail.Find(TitleLinkSelector); ok {
			item.Name = link.InnerText()
			if href, ok := link.Attr("href"); ok && href != "" {
				abs, err := browser.ResolveURL(pageURL, href)
				if err != nil {
					return nil, fmt.Errorf("item %d link: %w", i, err)
				}
				item.Link = abs
				item.PartNumber = PartNumber(abs)
			}
		}

		if desc, ok := detail.Find(DescriptionSelector); ok {
			item.Description = desc.InnerText()
		}

		items = append(items, item)
	}
	return items, nil
}
