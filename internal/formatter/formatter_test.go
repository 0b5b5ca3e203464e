package formatter

import (
	"encoding/csv"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/carekeep/internal/models"
	"github.com/desertthunder/carekeep/internal/shared"
	"github.com/desertthunder/carekeep/internal/syncer"
	th "github.com/desertthunder/carekeep/internal/testing"
)

func sampleRecords() []models.Record {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return []models.Record{
		models.Memory{RecordID: "7", Name: "Grandma Rose", Relationship: "Grandmother", Added: at},
		models.Memory{RecordID: "local-abc", Name: "Sam, Jr.", Notes: "Visits on Sunday"},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleRecords())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output should be valid CSV: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected header and 2 rows, got %d", len(rows))
		}
		if strings.Join(rows[0], ",") != "ID,Title,Description,Created,Synced" {
			t.Errorf("CSV missing headers, got: %v", rows[0])
		}
		if rows[2][1] != "Sam, Jr." {
			t.Errorf("comma in title should be quoted, got %q", rows[2][1])
		}
		if rows[1][4] != "yes" || rows[2][4] != "no" {
			t.Errorf("unexpected synced column: %q %q", rows[1][4], rows[2][4])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown("memories", sampleRecords())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "# Memories") {
			t.Errorf("Markdown missing heading, got: %s", output)
		}
		if !strings.Contains(output, "**Records**: 2") {
			t.Errorf("Markdown missing count")
		}
		if !strings.Contains(output, "1. **Grandma Rose** - Grandmother") {
			t.Errorf("Markdown missing first record, got: %s", output)
		}
		if !strings.Contains(output, "_(local only)_") {
			t.Errorf("Markdown should mark local records")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText("memories", sampleRecords())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Memories: 2\n") {
			t.Errorf("unexpected header, got: %s", output)
		}
		if !strings.Contains(output, "2. Sam, Jr. (local-abc)\n   Visits on Sunday\n") {
			t.Errorf("unexpected body, got: %s", output)
		}
	})

	t.Run("Render JSON", func(t *testing.T) {
		data, err := Render(FormatJSON, "memories", sampleRecords())
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if !strings.Contains(string(data), `"name": "Grandma Rose"`) {
			t.Errorf("JSON should use local field names, got: %s", data)
		}
	})

	t.Run("ExportStats", func(t *testing.T) {
		output := string(ExportStats("journals", syncer.ModeOffline, syncer.Stats{Total: 3, AddedThisWeek: 1}))
		if !strings.Contains(output, "Dataset: journals (offline)") || !strings.Contains(output, "Added this week: 1") {
			t.Errorf("unexpected stats output: %s", output)
		}
		if strings.Contains(output, "Newest") {
			t.Error("zero newest should be omitted")
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"CSV", FormatCSV, false},
		{"markdown", FormatMarkdown, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("expected %s, got %s (%v)", tt.want, got, err)
			}
		})
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("Writes file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "memories.csv")
		if err := WriteExport(path, []byte("ID\n")); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		th.AssertFileExists(t, path)
		if got := th.MustReadFile(t, path); got != "ID\n" {
			t.Errorf("unexpected content %q", got)
		}
	})

	t.Run("Requires a path", func(t *testing.T) {
		if err := WriteExport("", nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
