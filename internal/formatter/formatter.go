// package formatter renders cached records as CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/carekeep/internal/models"
	"github.com/desertthunder/carekeep/internal/shared"
	"github.com/desertthunder/carekeep/internal/syncer"
)

// Format names an output format accepted by `carekeep list --format`.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

const dateLayout = "2006-01-02 15:04"

// ParseFormat validates a format name. An empty name is [FormatText].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatMarkdown, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Render converts records using format.
func Render(format Format, dataset string, records []models.Record) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(records)
	case FormatMarkdown:
		return ExportToMarkdown(dataset, records)
	case FormatJSON:
		return shared.MarshalJSON(records, true)
	default:
		return ExportToText(dataset, records)
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(dateLayout)
}

// ExportToCSV converts records to CSV format with columns: ID, Title, Description, Created, Synced
func ExportToCSV(records []models.Record) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Description", "Created", "Synced"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range records {
		synced := "yes"
		if shared.IsLocalID(r.ID()) {
			synced = "no"
		}
		record := []string{r.ID(), r.Title(), r.Description(), formatDate(r.CreatedAt()), synced}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts records to a Markdown list under a dataset heading
func ExportToMarkdown(dataset string, records []models.Record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", titleCase(dataset)))
	buf.WriteString(fmt.Sprintf("**Records**: %d\n\n", len(records)))

	for i, r := range records {
		marker := ""
		if shared.IsLocalID(r.ID()) {
			marker = " _(local only)_"
		}
		buf.WriteString(fmt.Sprintf("%d. **%s**%s", i+1, r.Title(), marker))
		if d := r.Description(); d != "" {
			buf.WriteString(" - " + d)
		}
		if at := formatDate(r.CreatedAt()); at != "" {
			buf.WriteString(fmt.Sprintf(" [%s]", at))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts records to plain text format
func ExportToText(dataset string, records []models.Record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s: %d\n\n", titleCase(dataset), len(records)))

	for i, r := range records {
		buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, r.Title(), r.ID()))
		if d := r.Description(); d != "" {
			buf.WriteString("   " + d + "\n")
		}
	}

	return buf.Bytes(), nil
}

// ExportStats renders collection stats as plain text
func ExportStats(dataset string, mode syncer.Mode, s syncer.Stats) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Dataset: %s (%s)\n", dataset, mode))
	buf.WriteString(fmt.Sprintf("Total: %d\n", s.Total))
	buf.WriteString(fmt.Sprintf("Added this week: %d\n", s.AddedThisWeek))
	if newest := formatDate(s.Newest); newest != "" {
		buf.WriteString(fmt.Sprintf("Newest: %s\n", newest))
	}

	return buf.Bytes()
}

// WriteExport writes rendered data to path.
func WriteExport(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
