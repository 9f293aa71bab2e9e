package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ExportVersion is written into every export file.
const ExportVersion = "1"

// ExportFormat represents the JSON structure for cache export/import.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry is one cached translation. Key is the cache key built by
// wptl.CacheKey, i.e. "<hash>:<lang>[:<model>]".
type ExportEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Exporter writes cache contents as JSON.
type Exporter struct {
	cache Enumerable
}

// NewExporter creates a new cache exporter.
func NewExporter(cache Enumerable) *Exporter {
	return &Exporter{cache: cache}
}

// Export writes the cache contents to w, entries sorted by key.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) error {
	data, err := e.cache.Entries()
	if err != nil {
		return fmt.Errorf("getting cache entries: %w", err)
	}

	entries := make([]ExportEntry, 0, len(data))
	for key, value := range data {
		entries = append(entries, ExportEntry{Key: key, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	export := ExportFormat{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    entries,
		Metadata:   metadata,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ExportToFile writes the export to path through a temporary file so a
// failed write never truncates an existing cache file.
func (e *Exporter) ExportToFile(path string, metadata map[string]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".wptl-cache-*")
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := e.Export(tmp, metadata); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing file: %w", err)
	}
	return nil
}

// Importer loads exported entries into a cache.
type Importer struct {
	cache TranslationCache
}

// NewImporter creates a new cache importer.
func NewImporter(cache TranslationCache) *Importer {
	return &Importer{cache: cache}
}

// Import reads cache entries from r and stores them.
func (i *Importer) Import(r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	for _, entry := range export.Entries {
		if entry.Key == "" {
			result.Failed++
			continue
		}
		if err := i.cache.Set(entry.Key, entry.Value); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports cache entries from a file.
func (i *Importer) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(f)
}

// ImportResult contains statistics about the import operation.
type ImportResult struct {
	Version  string            `json:"version"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Imported int               `json:"imported"`
	Failed   int               `json:"failed"`
}
