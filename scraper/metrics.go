package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry           *prometheus.Registry
	NavigationsTotal   *prometheus.CounterVec
	NavigationDuration prometheus.Histogram
	ItemsExtracted     prometheus.Counter
	PageFaultsTotal    *prometheus.CounterVec
	ImagesDownloaded   prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	navigations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parts_scraper_navigations_total",
			Help: "Total page navigations by page kind.",
		},
		[]string{"kind"},
	)
	navigationDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parts_scraper_navigation_duration_seconds",
			Help:    "Page load latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	items := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parts_scraper_items_extracted_total",
			Help: "Total items extracted from catalog pages.",
		},
	)
	faults := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parts_scraper_page_faults_total",
			Help: "Pages skipped or emptied by fault type.",
		},
		[]string{"fault"},
	)
	images := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parts_scraper_images_downloaded_total",
			Help: "Total images downloaded into the run directory.",
		},
	)

	registry.MustRegister(navigations, navigationDuration, items, faults, images)

	return &Metrics{
		Registry:           registry,
		NavigationsTotal:   navigations,
		NavigationDuration: navigationDuration,
		ItemsExtracted:     items,
		PageFaultsTotal:    faults,
		ImagesDownloaded:   images,
	}
}

// IncNavigation counts a page load of the given kind.
func (m *Metrics) IncNavigation(kind string) {
	if m == nil {
		return
	}
	m.NavigationsTotal.WithLabelValues(kind).Inc()
}

// ObserveNavigation records a page load duration.
func (m *Metrics) ObserveNavigation(d time.Duration) {
	if m == nil {
		return
	}
	m.NavigationDuration.Observe(d.Seconds())
}

// AddItems adds n extracted items.
func (m *Metrics) AddItems(n int) {
	if m == nil {
		return
	}
	m.ItemsExtracted.Add(float64(n))
}

// IncFault counts a page fault by label.
func (m *Metrics) IncFault(fault string) {
	if m == nil {
		return
	}
	m.PageFaultsTotal.WithLabelValues(fault).Inc()
}

// IncImages counts a downloaded image.
func (m *Metrics) IncImages() {
	if m == nil {
		return
	}
	m.ImagesDownloaded.Inc()
}
