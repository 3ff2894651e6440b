package main

import (
	"fmt"

	"github.com/aluiziolira/go-scrape-parts/models"
	"github.com/aluiziolira/go-scrape-parts/pipeline"
	"github.com/spf13/cobra"
)

func newVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <results.json>",
		Short: "Check a results document for referential integrity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := pipeline.ReadDocument(args[0])
			if err != nil {
				return err
			}
			if err := pipeline.CheckReferences(doc); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			groups, pages, items := countDocument(doc)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d groups, %d pages, %d items)\n", args[0], groups, pages, items)
			return nil
		},
	}
}

func countDocument(doc *models.Document) (groups, pages, items int) {
	groups = len(doc.Groups)
	for _, group := range doc.Groups {
		pages += len(group.Pages)
		for _, page := range group.Pages {
			items += len(page.Items)
		}
	}
	return groups, pages, items
}
