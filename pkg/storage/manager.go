package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"ohoucrawl/pkg/config"
	"ohoucrawl/pkg/crawler"
	"ohoucrawl/pkg/logger"
)

// Format is a record serialization format
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

const (
	textPreviewLength = 60
	tableTextWidth    = 64
)

// ParseFormat maps a format name to its Format
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatJSON, FormatJSONL, FormatYAML, FormatTable:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "ndjson":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("unknown output format %q", name)
	}
}

// FormatForPath guesses the format from a file extension, falling back to
// def when the extension is not recognised.
func FormatForPath(path string, def Format) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".yaml", ".yml":
		return FormatYAML
	case ".txt":
		return FormatTable
	default:
		return def
	}
}

// Manager serializes crawl results to a writer or a file
type Manager struct {
	format    Format
	overwrite bool
	logger    logger.Logger
}

// NewManager creates a storage manager from the output configuration
func NewManager(cfg *config.OutputConfig, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	return &Manager{
		format:    format,
		overwrite: cfg.Overwrite,
		logger:    log,
	}, nil
}

// Format returns the format the manager writes
func (m *Manager) Format() Format {
	return m.format
}

// Write serializes records to w
func (m *Manager) Write(w io.Writer, records []crawler.Record) error {
	switch m.format {
	case FormatJSON:
		return writeJSON(w, records)
	case FormatJSONL:
		return writeJSONLines(w, records)
	case FormatYAML:
		return writeYAML(w, records)
	case FormatTable:
		return writeTable(w, records)
	default:
		return fmt.Errorf("unknown output format %q", m.format)
	}
}

// Save writes records to path. The file is written to a temporary sibling
// first and renamed into place, so a failed write never leaves a truncated
// result behind. An existing file is only replaced when overwrite is enabled.
func (m *Manager) Save(path string, records []crawler.Record) error {
	if !m.overwrite && m.Exists(path) {
		return fmt.Errorf("output file %s already exists", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempFile := tmp.Name()

	buf := bufio.NewWriter(tmp)
	err = m.Write(buf, records)
	if err == nil {
		err = buf.Flush()
	}
	closeErr := tmp.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write records: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.logger.InfoWithFields("Saved results", map[string]interface{}{
		"path":    path,
		"format":  string(m.format),
		"records": len(records),
	})
	return nil
}

// Exists reports whether something is already present at path
func (m *Manager) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func writeJSON(w io.Writer, records []crawler.Record) error {
	if records == nil {
		records = []crawler.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func writeJSONLines(w io.Writer, records []crawler.Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range records {
		if err := enc.Encode(records[i]); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

// yamlRecord mirrors crawler.Record for YAML output. Keywords is a pointer
// so that absent tags encode as null while an empty list stays [].
type yamlRecord struct {
	Query     string    `yaml:"query"`
	Type      string    `yaml:"type"`
	URL       *string   `yaml:"url,omitempty"`
	Text      string    `yaml:"text"`
	Keywords  *[]string `yaml:"keywords"`
	Timestamp *string   `yaml:"timestamp"`
}

func toYAMLRecord(r crawler.Record) yamlRecord {
	out := yamlRecord{
		Query:     r.Query,
		Type:      r.Type.String(),
		URL:       r.URL,
		Text:      r.Text,
		Timestamp: r.Timestamp,
	}
	if r.Keywords != nil {
		keywords := r.Keywords
		out.Keywords = &keywords
	}
	return out
}

func writeYAML(w io.Writer, records []crawler.Record) error {
	out := make([]yamlRecord, 0, len(records))
	for _, r := range records {
		out = append(out, toYAMLRecord(r))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func writeTable(w io.Writer, records []crawler.Record) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Text", WidthMax: tableTextWidth},
	})

	t.AppendHeader(table.Row{"#", "Query", "Type", "URL", "Timestamp", "Keywords", "Text"})
	for i, r := range records {
		u := "-"
		if r.URL != nil {
			u = *r.URL
		}
		ts := "-"
		if r.Timestamp != nil {
			ts = *r.Timestamp
		}
		keywords := "-"
		if r.Keywords != nil {
			keywords = strings.Join(r.Keywords, ", ")
		}

		t.AppendRow(table.Row{
			i + 1,
			r.Query,
			r.Type.String(),
			u,
			ts,
			keywords,
			preview(r.Text),
		})
	}
	t.AppendFooter(table.Row{"Total", len(records)})

	t.Render()
	return nil
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return text.Snip(s, textPreviewLength, "~")
}
