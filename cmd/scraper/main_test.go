package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aluiziolira/go-scrape-parts/config"
	"github.com/aluiziolira/go-scrape-parts/models"
	"github.com/aluiziolira/go-scrape-parts/pipeline"
	"github.com/google/uuid"
)

func TestVerifyCommand(t *testing.T) {
	groupID, pageID := uuid.New(), uuid.New()
	doc := &models.Document{Groups: []models.Group{{
		ID:   groupID,
		Name: "Bumpers",
		Link: "http://shop.test/bumpers",
		Pages: []models.Page{{
			ID:         pageID,
			Name:       "Bumpers",
			Link:       "http://shop.test/bumpers",
			SubSection: 1,
			Items: []models.Item{{
				Name:       "Clip",
				Link:       "http://shop.test/clip_C2D1-x",
				PartNumber: "C2D1",
				GroupID:    groupID,
				PageID:     pageID,
			}},
		}},
	}}}

	path := filepath.Join(t.TempDir(), "results.json")
	if err := pipeline.NewJSONWriter(path).Write(doc); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"verify", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !strings.Contains(out.String(), "1 groups, 1 pages, 1 items") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestVerifyCommandRejectsDanglingReference(t *testing.T) {
	doc := &models.Document{Groups: []models.Group{{
		ID:   uuid.New(),
		Name: "Bumpers",
		Pages: []models.Page{{
			ID:         uuid.New(),
			SubSection: 1,
			Items:      []models.Item{{GroupID: uuid.New(), PageID: uuid.New()}},
		}},
	}}}

	path := filepath.Join(t.TempDir(), "results.json")
	if err := pipeline.NewJSONWriter(path).Write(doc); err != nil {
		t.Fatalf("write: %v", err)
	}

	cmd := newRootCommand()
	cmd.SetArgs([]string{"verify", path})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected reference error")
	}
}

func TestCreateWriter(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RunsDirectory = t.TempDir()
	layout := config.NewRunLayout(cfg, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))

	tests := []struct {
		format  string
		wantErr bool
	}{
		{format: "json"},
		{format: "dual"},
		{format: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			writer, err := createWriter(tt.format, layout)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.format)
				}
				return
			}
			if err != nil || writer == nil {
				t.Fatalf("createWriter(%q) = %v, %v", tt.format, writer, err)
			}
		})
	}
}

func TestCountDocument(t *testing.T) {
	doc := &models.Document{Groups: []models.Group{
		{Pages: []models.Page{{Items: make([]models.Item, 2)}, {Items: nil}}},
		{Pages: []models.Page{}},
	}}
	groups, pages, items := countDocument(doc)
	if groups != 2 || pages != 2 || items != 2 {
		t.Fatalf("counts = %d/%d/%d, want 2/2/2", groups, pages, items)
	}
}
