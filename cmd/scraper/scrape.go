package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/aluiziolira/go-scrape-parts/browser"
	"github.com/aluiziolira/go-scrape-parts/config"
	"github.com/aluiziolira/go-scrape-parts/images"
	"github.com/aluiziolira/go-scrape-parts/models"
	"github.com/aluiziolira/go-scrape-parts/pipeline"
	"github.com/aluiziolira/go-scrape-parts/scraper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newScrapeCommand(v *viper.Viper, cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Crawl the catalog and write a run directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, *cfgFile)
			if err != nil {
				return err
			}
			return runScrape(cmd.Context(), cfg)
		},
	}

	defaults := config.DefaultConfig()
	flags := cmd.Flags()
	flags.String("catalog-url", defaults.CatalogURL, "Catalog index page to crawl")
	flags.String("browser", defaults.Browser, "Page session: static or chrome")
	flags.Bool("headless", defaults.Headless, "Run Chrome without a window")
	flags.Duration("wait-timeout", defaults.WaitTimeout, "Bound on every wait for an expected element")
	flags.Duration("request-timeout", defaults.RequestTimeout, "Bound on a single page or image request")
	flags.Duration("delay", defaults.Delay, "Delay between page requests")
	flags.String("user-agent", defaults.UserAgent, "User-Agent header")
	flags.Bool("respect-robots", defaults.RespectRobotsTxt, "Respect robots.txt directives")
	flags.Int("page-cache-size", defaults.PageCacheSize, "Parsed pages kept in memory (0 disables)")
	flags.String("runs-dir", defaults.RunsDirectory, "Parent directory of run directories")
	flags.String("log-dir", defaults.LogDirectory, "Directory for run log files (empty disables)")
	flags.String("run-name", defaults.RunName, "Run directory name prefix")
	flags.String("format", defaults.OutputFormat, "Output format: json or dual (json plus items csv)")
	flags.String("metrics-addr", defaults.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	flags.BoolP("verbose", "v", defaults.Verbose, "Enable verbose logging")

	bindings := map[string]string{
		"catalog_url":     "catalog-url",
		"browser":         "browser",
		"headless":        "headless",
		"wait_timeout":    "wait-timeout",
		"request_timeout": "request-timeout",
		"delay":           "delay",
		"user_agent":      "user-agent",
		"respect_robots":  "respect-robots",
		"page_cache_size": "page-cache-size",
		"runs_dir":        "runs-dir",
		"log_dir":         "log-dir",
		"run_name":        "run-name",
		"format":          "format",
		"metrics_addr":    "metrics-addr",
		"verbose":         "verbose",
	}
	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
	return cmd
}

func runScrape(ctx context.Context, cfg *config.Config) error {
	startTime := time.Now()
	layout := config.NewRunLayout(cfg, startTime)

	logFile, err := openLogFile(layout.LogFile)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger, level := newLogger(cfg.Verbose, logFile)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if err := layout.Create(); err != nil {
		return err
	}

	slog.Info("starting scrape",
		slog.String("catalog_url", cfg.CatalogURL),
		slog.String("browser", cfg.Browser),
		slog.String("run_dir", layout.Dir),
	)

	session, err := newSession(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialising browser: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			slog.Error("close browser", slog.Any("error", err))
		}
	}()

	downloader := images.NewHTTPDownloader(cfg.UserAgent, cfg.RequestTimeout)
	resolver := images.NewResolver(layout.ImagesDir, downloader)
	s := scraper.NewScraper(cfg, session, resolver)

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && s.Metrics != nil {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown failed", slog.Any("error", err))
			}
		}()
	}

	doc, stats, err := s.Run(ctx)
	if err != nil {
		slog.Error("crawl aborted, no results written", slog.Any("error", err))
		return err
	}

	writer, err := createWriter(cfg.OutputFormat, layout)
	if err != nil {
		return err
	}
	if err := writer.Write(doc); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if err := writer.Validate(); err != nil {
		return fmt.Errorf("output validation failed: %w", err)
	}

	printSummary(stats, time.Since(startTime), layout.ResultsFile)
	return nil
}

func newSession(ctx context.Context, cfg *config.Config) (browser.Session, error) {
	switch cfg.Browser {
	case config.BrowserChrome:
		return browser.NewChromeSession(ctx, browser.ChromeOptions{
			UserAgent:      cfg.UserAgent,
			Headless:       cfg.Headless,
			RequestTimeout: cfg.RequestTimeout,
		})
	case config.BrowserStatic:
		return browser.NewStaticSession(browser.StaticOptions{
			UserAgent:        cfg.UserAgent,
			RequestTimeout:   cfg.RequestTimeout,
			Delay:            cfg.Delay,
			RespectRobotsTxt: cfg.RespectRobotsTxt,
			CacheSize:        cfg.PageCacheSize,
		})
	default:
		return nil, fmt.Errorf("unsupported browser: %s", cfg.Browser)
	}
}

func createWriter(format string, layout config.RunLayout) (pipeline.OutputWriter, error) {
	switch format {
	case "json":
		return pipeline.NewJSONWriter(layout.ResultsFile), nil
	case "dual":
		return pipeline.NewDualWriter(layout.ResultsFile, layout.ItemsCSV), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func printSummary(stats *models.CrawlStats, duration time.Duration, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Scrape complete")

	fmt.Printf("  Groups:        %d\n", stats.GroupCount)
	fmt.Printf("  Skipped:       %d\n", stats.SkippedGroups)
	fmt.Printf("  Pages:         %d\n", stats.PageCount)
	fmt.Printf("  Items:         %d\n", stats.ItemCount)
	fmt.Printf("  Images:        %d\n", stats.ImagesDownloaded)
	fmt.Printf("  Navigations:   %d\n", stats.Navigations)
	fmt.Printf("  Failed URLs:   %d\n", len(stats.FailedURLs))
	if len(stats.FaultsByType) > 0 {
		fmt.Printf("  Fault types:   %v\n", stats.FaultsByType)
	}
	fmt.Printf("  Duration:      %v\n", duration)
	fmt.Printf("  Output file:   %s\n", outputFile)
	fmt.Println(separator)
}
