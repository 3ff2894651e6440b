package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aluiziolira/go-scrape-parts/browser"
	"github.com/aluiziolira/go-scrape-parts/config"
	"github.com/aluiziolira/go-scrape-parts/images"
	"github.com/aluiziolira/go-scrape-parts/models"
	"github.com/aluiziolira/go-scrape-parts/parser"
	"github.com/aluiziolira/go-scrape-parts/pipeline"
	"github.com/google/uuid"
)

// Catalog page selectors.
const (
	GroupLinkSelector   = "a.respon-btn-design.ds_link_clr"
	DetailSelector      = "div#item_list_flyout.table-responsive table.table tbody tr td table.table.table_flyout"
	MarkerSelector      = "div#item_list_flyout.table-responsive table.table tbody tr td.right-hotspot-td div.hotspot.right-hotspot span pp"
	SubPageSelector     = "div.thumb-image div.img-thumb-div a"
	PartNumberSelector  = "div.prod-benefit span.part-num"
	ListPriceSelector   = "div.prod-benefit span div span.line-cut"
	OurPriceSelector    = "div.prod-benefit span h5"
)

const primarySubSection = 1

// Navigation kinds used as metric labels.
const (
	navigationIndex     = "index"
	navigationGroupPage = "group"
	navigationSubPage   = "subpage"
	navigationItem      = "item"
)

// Scraper walks the catalog index, every group's pages and every item page
// with a single session, one navigation at a time.
type Scraper struct {
	cfg      *config.Config
	session  browser.Session
	resolver *images.Resolver
	Metrics  *Metrics

	navigations  int
	images       int
	skipped      int
	failedURLs   []string
	faultsByType map[string]int
}

// NewScraper builds a scraper that drives session and stores images through
// resolver.
func NewScraper(cfg *config.Config, session browser.Session, resolver *images.Resolver) *Scraper {
	return &Scraper{
		cfg:          cfg,
		session:      session,
		resolver:     resolver,
		Metrics:      NewMetrics(),
		faultsByType: make(map[string]int),
	}
}

// Run crawls the whole catalog and returns the assembled document. Page
// faults are logged and counted; any other error aborts the run and no
// document is returned.
func (s *Scraper) Run(ctx context.Context) (*models.Document, *models.CrawlStats, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	refs, err := s.discoverGroups(ctx)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("processing part groups", slog.Int("count", len(refs)))

	assembler := pipeline.NewAssembler()
	for i, ref := range refs {
		group, ok, err := s.crawlGroup(ctx, i+1, ref)
		if err != nil {
			return nil, nil, fmt.Errorf("part group %q: %w", ref.Name, err)
		}
		if !ok {
			s.skipped++
			continue
		}
		assembler.Append(group)
	}

	doc, err := assembler.Document()
	if err != nil {
		return nil, nil, fmt.Errorf("assemble document: %w", err)
	}

	stats := &models.CrawlStats{
		StartTime:        start,
		EndTime:          time.Now(),
		GroupCount:       len(doc.Groups),
		SkippedGroups:    s.skipped,
		Navigations:      s.navigations,
		ImagesDownloaded: s.images,
		FaultsByType:     s.snapshotFaults(),
		FailedURLs:       append([]string(nil), s.failedURLs...),
	}
	for _, group := range doc.Groups {
		stats.PageCount += len(group.Pages)
		for _, page := range group.Pages {
			stats.ItemCount += len(page.Items)
		}
	}
	return doc, stats, nil
}

func (s *Scraper) discoverGroups(ctx context.Context) ([]models.GroupRef, error) {
	if err := s.navigate(ctx, navigationIndex, s.cfg.CatalogURL); err != nil {
		return nil, err
	}
	if err := s.session.WaitForSelector(ctx, GroupLinkSelector, s.waitOptions()); err != nil {
		return nil, fmt.Errorf("catalog index: %w", err)
	}

	links, err := s.session.QuerySelectorAll(ctx, GroupLinkSelector)
	if err != nil {
		return nil, fmt.Errorf("query part groups: %w", err)
	}

	refs := make([]models.GroupRef, 0, len(links))
	for _, link := range links {
		href, _ := link.Attr("href")
		abs, err := browser.ResolveURL(s.session.URL(), href)
		if err != nil {
			return nil, fmt.Errorf("part group %q link: %w", link.InnerText(), err)
		}
		refs = append(refs, models.GroupRef{
			ID:   uuid.New(),
			Name: link.InnerText(),
			Link: abs,
		})
	}
	return refs, nil
}

// crawlGroup visits the group's primary page, its secondary pages and then
// every item found on them. ok is false when no page could be read.
func (s *Scraper) crawlGroup(ctx context.Context, number int, ref models.GroupRef) (models.Group, bool, error) {
	slog.Info("processing part group",
		slog.Int("number", number),
		slog.String("group", ref.Name),
		slog.String("url", ref.Link),
	)
	builder := pipeline.NewGroupBuilder(ref)

	if err := s.navigate(ctx, navigationGroupPage, ref.Link); err != nil {
		return models.Group{}, false, err
	}
	if err := s.readPage(ctx, builder, ref, primarySubSection); err != nil {
		return models.Group{}, false, err
	}
	subPages, err := s.discoverSubPages(ctx)
	if err != nil {
		return models.Group{}, false, err
	}

	for k, link := range subPages {
		subSection := primarySubSection + k + 1
		slog.Info("processing part group page",
			slog.String("group", ref.Name),
			slog.Int("sub_section", subSection),
			slog.String("url", link),
		)
		if err := s.navigate(ctx, navigationSubPage, link); err != nil {
			return models.Group{}, false, err
		}
		if err := s.readPage(ctx, builder, ref, subSection); err != nil {
			return models.Group{}, false, err
		}
	}

	if builder.Len() == 0 {
		slog.Warn("skipping part group without readable pages",
			slog.String("group", ref.Name),
			slog.String("url", ref.Link),
		)
		return models.Group{}, false, nil
	}

	drafts := builder.Drafts()
	enrichments := make([]models.Enrichment, len(drafts))
	for i, draft := range drafts {
		enrichment, err := s.enrichItem(ctx, draft)
		if fault, ok := pageScoped(err); ok {
			s.recordFault(fault, draft.Link)
			continue
		}
		if err != nil {
			return models.Group{}, false, fmt.Errorf("item %s: %w", draft.Link, err)
		}
		enrichments[i] = enrichment
	}

	group, err := builder.Build(enrichments)
	if err != nil {
		return models.Group{}, false, err
	}
	return group, true, nil
}

// readPage extracts the current page into builder. A wait timeout adds no
// page; a structural mismatch adds the page without items.
func (s *Scraper) readPage(ctx context.Context, builder *pipeline.GroupBuilder, ref models.GroupRef, subSection int) error {
	link := s.session.URL()
	page, err := s.extractPage(ctx, builder, ref, subSection)
	if fault, ok := pageScoped(err); ok {
		s.recordFault(fault, link)
	} else if err != nil {
		return err
	}
	if page == nil {
		return nil
	}
	return builder.AddPage(*page)
}

func (s *Scraper) extractPage(ctx context.Context, builder *pipeline.GroupBuilder, ref models.GroupRef, subSection int) (*models.PageDraft, error) {
	if err := s.session.WaitForSelector(ctx, DetailSelector, s.waitOptions()); err != nil {
		return nil, err
	}

	imageFile, err := s.resolveImage(ctx)
	if err != nil {
		return nil, err
	}
	link := s.session.URL()
	page := builder.NewPage(link, subSection, imageFile)

	details, err := s.session.QuerySelectorAll(ctx, DetailSelector)
	if err != nil {
		return nil, fmt.Errorf("query part details: %w", err)
	}
	markers, err := s.session.QuerySelectorAll(ctx, MarkerSelector)
	if err != nil {
		return nil, fmt.Errorf("query part numbers: %w", err)
	}

	if err := parser.CheckPair(details, markers); err != nil {
		var mismatch *parser.MismatchError
		if errors.As(err, &mismatch) {
			return &page, ErrStructuralMismatch{URL: link, Group: ref.Name, Err: mismatch}
		}
		return nil, err
	}

	items, err := parser.Extract(details, markers, link, ref.ID, page.ID)
	if err != nil {
		return nil, err
	}
	page.Items = items
	s.Metrics.AddItems(len(items))
	return &page, nil
}

// discoverSubPages lists the secondary pages linked from the current
// primary page. The first thumbnail is the primary page itself.
func (s *Scraper) discoverSubPages(ctx context.Context) ([]string, error) {
	thumbs, err := s.session.QuerySelectorAll(ctx, SubPageSelector)
	if err != nil {
		return nil, fmt.Errorf("query sub-pages: %w", err)
	}
	if len(thumbs) <= 1 {
		return nil, nil
	}

	links := make([]string, 0, len(thumbs)-1)
	for _, thumb := range thumbs[1:] {
		href, _ := thumb.Attr("href")
		if strings.TrimSpace(href) == "" {
			slog.Warn("sub-page thumbnail without link", slog.String("url", s.session.URL()))
			continue
		}
		abs, err := browser.ResolveURL(s.session.URL(), href)
		if err != nil {
			return nil, fmt.Errorf("sub-page link: %w", err)
		}
		links = append(links, abs)
	}
	return links, nil
}

// enrichItem visits an item page for its image and prices.
func (s *Scraper) enrichItem(ctx context.Context, draft models.DraftItem) (models.Enrichment, error) {
	if draft.Link == "" {
		slog.Warn("item without link", slog.String("part_number", draft.ImagePartNumber))
		return models.Enrichment{}, nil
	}
	if err := s.navigate(ctx, navigationItem, draft.Link); err != nil {
		return models.Enrichment{}, err
	}
	if err := s.session.WaitForSelector(ctx, PartNumberSelector, s.waitOptions()); err != nil {
		return models.Enrichment{}, err
	}

	var enrichment models.Enrichment
	imageFile, err := s.resolveImage(ctx)
	if err != nil {
		return models.Enrichment{}, err
	}
	enrichment.ImageFile = imageFile

	if el, ok, err := s.session.QuerySelector(ctx, ListPriceSelector); err != nil {
		return models.Enrichment{}, fmt.Errorf("query list price: %w", err)
	} else if ok {
		price := strings.TrimSpace(el.InnerText())
		enrichment.ListPrice = &price
	}

	if el, ok, err := s.session.QuerySelector(ctx, OurPriceSelector); err != nil {
		return models.Enrichment{}, fmt.Errorf("query our price: %w", err)
	} else if ok {
		price := parser.NormalizePrice(el.InnerText())
		enrichment.OurPrice = &price
	}
	return enrichment, nil
}

func (s *Scraper) resolveImage(ctx context.Context) (*string, error) {
	local, err := s.resolver.Resolve(ctx, s.session)
	if err != nil {
		return nil, fmt.Errorf("resolve image at %s: %w", s.session.URL(), err)
	}
	if local != nil {
		s.images++
		s.Metrics.IncImages()
	}
	return local, nil
}

func (s *Scraper) navigate(ctx context.Context, kind, link string) error {
	slog.Info("navigating", slog.String("kind", kind), slog.String("url", link))
	start := time.Now()
	err := s.session.Goto(ctx, link)
	s.navigations++
	s.Metrics.IncNavigation(kind)
	s.Metrics.ObserveNavigation(time.Since(start))
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", link, err)
	}
	return nil
}

func (s *Scraper) waitOptions() browser.WaitOptions {
	return browser.DefaultWaitOptions(s.cfg.WaitTimeout)
}

func (s *Scraper) recordFault(err error, link string) {
	label := faultLabel(err)
	s.faultsByType[label]++
	s.failedURLs = append(s.failedURLs, link)
	s.Metrics.IncFault(label)

	var mismatch ErrStructuralMismatch
	if errors.As(err, &mismatch) {
		slog.Error("part detail element count does not match part number element count",
			slog.String("url", mismatch.URL),
			slog.String("group", mismatch.Group),
			slog.Int("details", mismatch.Err.Details),
			slog.Int("markers", mismatch.Err.Markers),
		)
		return
	}
	slog.Warn("page skipped",
		slog.String("url", link),
		slog.String("fault", label),
		slog.Any("error", err),
	)
}

func (s *Scraper) snapshotFaults() map[string]int {
	out := make(map[string]int, len(s.faultsByType))
	for k, v := range s.faultsByType {
		out[k] = v
	}
	return out
}
