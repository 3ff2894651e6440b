package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aluiziolira/go-scrape-parts/config"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfgFile string
	v := config.NewViper()

	root := &cobra.Command{
		Use:           "parts-scraper",
		Short:         "Crawl a parts catalog into a group/page/item document",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml or ./config/config.yaml)")

	root.AddCommand(newScrapeCommand(v, &cfgFile))
	root.AddCommand(newVerifyCommand())
	return root
}
