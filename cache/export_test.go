package cache

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

// setOnly is a cache that cannot enumerate its entries.
type setOnly struct{ m map[string]string }

func (s *setOnly) Get(key string) (string, bool) { v, ok := s.m[key]; return v, ok }
func (s *setOnly) Set(key, value string) error   { s.m[key] = value; return nil }

func TestExporter_Export(t *testing.T) {
	c := NewInMemoryCache(3600)
	c.Set("h2:tam_Taml:en", "sella")
	c.Set("h1:tam_Taml:en", "rom")

	exporter := NewExporter(c)
	var buf bytes.Buffer

	n, err := exporter.Export(&buf, map[string]string{"lang": "tam_Taml"})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 exported, got %d", n)
	}

	var export ExportFormat
	if err := json.Unmarshal(buf.Bytes(), &export); err != nil {
		t.Fatalf("Failed to parse export: %v", err)
	}

	if export.Version != ExportVersion {
		t.Errorf("Expected version %s, got %s", ExportVersion, export.Version)
	}

	if len(export.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(export.Entries))
	}
	if export.Entries[0].Key != "h1:tam_Taml:en" {
		t.Errorf("Entries should be sorted by key, got %v", export.Entries)
	}

	if export.Metadata["lang"] != "tam_Taml" {
		t.Errorf("Expected metadata lang=tam_Taml, got %v", export.Metadata)
	}
}

func TestExporter_Unsupported(t *testing.T) {
	exporter := NewExporter(&setOnly{m: map[string]string{}})

	if _, err := exporter.Export(&bytes.Buffer{}, nil); err == nil {
		t.Error("Expected error for a cache without Entries")
	}
}

func TestImporter_Import(t *testing.T) {
	jsonData := `{
		"version": "1.0",
		"exported_at": "2024-01-01T00:00:00Z",
		"entries": [
			{"key": "key1", "value": "rom"},
			{"key": "key2", "value": "sella"},
			{"key": "", "value": "orphan"}
		],
		"metadata": {"lang": "tam_Taml"}
	}`

	c := &setOnly{m: map[string]string{}}
	importer := NewImporter(c)

	result, err := importer.Import(strings.NewReader(jsonData))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if result.Imported != 2 {
		t.Errorf("Expected 2 imported, got %d", result.Imported)
	}

	if result.Failed != 1 {
		t.Errorf("Expected 1 failed, got %d", result.Failed)
	}

	if result.Metadata["lang"] != "tam_Taml" {
		t.Errorf("Unexpected metadata: %v", result.Metadata)
	}

	if val, ok := c.Get("key1"); !ok || val != "rom" {
		t.Errorf("key1 not found or wrong value: %s", val)
	}
}

func TestImporter_UnsupportedVersion(t *testing.T) {
	importer := NewImporter(NewInMemoryCache(0))

	_, err := importer.Import(strings.NewReader(`{"version": "9.0", "entries": []}`))
	if err == nil {
		t.Error("Expected error for unknown version")
	}
}

func TestExportImport_RoundTripFile(t *testing.T) {
	src := NewInMemoryCache(3600)
	src.Set("hash1:tam_Taml:en", "rom")
	src.Set("hash2:tam_Taml:en", "vendum")

	path := filepath.Join(t.TempDir(), "cache.json")
	if _, err := NewExporter(src).ExportToFile(path, nil); err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}

	dst := NewInMemoryCache(3600)
	result, err := NewImporter(dst).ImportFromFile(path)
	if err != nil {
		t.Fatalf("ImportFromFile failed: %v", err)
	}

	if result.Imported != 2 {
		t.Errorf("Expected 2 imported, got %d", result.Imported)
	}

	if val, ok := dst.Get("hash1:tam_Taml:en"); !ok || val != "rom" {
		t.Errorf("hash1 not found or wrong value")
	}
}

func TestExporter_EmptyCache(t *testing.T) {
	exporter := NewExporter(NewInMemoryCache(3600))

	var buf bytes.Buffer
	if _, err := exporter.Export(&buf, nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var export ExportFormat
	if err := json.Unmarshal(buf.Bytes(), &export); err != nil {
		t.Fatalf("Failed to parse export: %v", err)
	}

	if len(export.Entries) != 0 {
		t.Errorf("Expected 0 entries for empty cache, got %d", len(export.Entries))
	}
}

func TestImporter_InvalidJSON(t *testing.T) {
	importer := NewImporter(NewInMemoryCache(3600))

	if _, err := importer.Import(strings.NewReader("invalid json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestImporter_MissingFile(t *testing.T) {
	importer := NewImporter(NewInMemoryCache(3600))

	if _, err := importer.ImportFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}
