package batch

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/tradeops/formscan/internal/manifest"
	"github.com/tradeops/formscan/internal/schema"
)

// mapStore serves objects from memory.
type mapStore struct {
	objects map[string][]byte
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

func (s *mapStore) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// echoRecognizer returns the entry bytes as OCR text, failing on entries
// whose content starts with "fail".
type echoRecognizer struct{}

func (echoRecognizer) Recognize(_ context.Context, pdfData []byte) (string, error) {
	if bytes.HasPrefix(pdfData, []byte("fail")) {
		return "", errors.New("recognition failed")
	}
	return string(pdfData), nil
}

func formText(cusip string) string {
	return fmt.Sprintf("CUSIP: %s Security Description: TEST CORP Trade Date: 01/02/2024 Settlement Date:", cusip)
}

func buildBatchArchive(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("Failed to write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close archive: %v", err)
	}
	return buf.Bytes()
}

func TestScanMapsEveryRecord(t *testing.T) {
	zipData := buildBatchArchive(t, map[string]string{
		"scan_a.pdf": formText("111111111"),
		"scan_b.pdf": formText("222222222"),
		"batch.csv":  "file,form",
	})
	store := &mapStore{objects: map[string][]byte{"batch01.zip": zipData}}
	records := []manifest.Record{
		{FileName: "scan_a.pdf", FormNumber: schema.FormTypeTradeCorrection},
		{FileName: "scan_b.pdf", FormNumber: schema.FormTypeTradeCorrection},
	}

	scanner := NewScanner(store, echoRecognizer{}, 1)
	results := scanner.Scan(context.Background(), "batch01.zip", records)

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Fields.CUSIP != "111111111" {
		t.Errorf("Expected CUSIP '111111111', got %q", results[0].Fields.CUSIP)
	}
	if results[1].Fields.CUSIP != "222222222" {
		t.Errorf("Expected CUSIP '222222222', got %q", results[1].Fields.CUSIP)
	}
	if results[0].ZipFileName != "batch01.zip" {
		t.Errorf("Expected zip file name stamped, got %q", results[0].ZipFileName)
	}
	if results[0].FileName != "scan_a.pdf" {
		t.Errorf("Expected manifest record carried through, got %q", results[0].FileName)
	}
}

func TestScanDropsMissingEntries(t *testing.T) {
	zipData := buildBatchArchive(t, map[string]string{"scan_a.pdf": formText("111111111")})
	store := &mapStore{objects: map[string][]byte{"batch01.zip": zipData}}
	records := []manifest.Record{
		{FileName: "scan_a.pdf", FormNumber: schema.FormTypeTradeCorrection},
		{FileName: "absent.pdf", FormNumber: schema.FormTypeTradeCorrection},
	}

	scanner := NewScanner(store, echoRecognizer{}, 1)
	results := scanner.Scan(context.Background(), "batch01.zip", records)

	if len(results) != 1 {
		t.Fatalf("Expected missing entry dropped, got %d results", len(results))
	}
	if results[0].FileName != "scan_a.pdf" {
		t.Errorf("Expected surviving record scan_a.pdf, got %q", results[0].FileName)
	}
}

func TestScanDropsFailedRecognition(t *testing.T) {
	zipData := buildBatchArchive(t, map[string]string{
		"scan_a.pdf": "fail: unreadable scan",
		"scan_b.pdf": formText("222222222"),
	})
	store := &mapStore{objects: map[string][]byte{"batch01.zip": zipData}}
	records := []manifest.Record{
		{FileName: "scan_a.pdf", FormNumber: schema.FormTypeTradeCorrection},
		{FileName: "scan_b.pdf", FormNumber: schema.FormTypeTradeCorrection},
	}

	scanner := NewScanner(store, echoRecognizer{}, 1)
	results := scanner.Scan(context.Background(), "batch01.zip", records)

	if len(results) != 1 {
		t.Fatalf("Expected failed record dropped, got %d results", len(results))
	}
	if results[0].FileName != "scan_b.pdf" {
		t.Errorf("Expected surviving record scan_b.pdf, got %q", results[0].FileName)
	}
}

func TestScanArchiveFetchFailure(t *testing.T) {
	store := &mapStore{objects: map[string][]byte{}}
	records := []manifest.Record{{FileName: "scan_a.pdf", FormNumber: schema.FormTypeTradeCorrection}}

	scanner := NewScanner(store, echoRecognizer{}, 1)
	results := scanner.Scan(context.Background(), "missing.zip", records)

	if results != nil {
		t.Errorf("Expected nil results when the archive cannot be fetched, got %v", results)
	}
}

func TestScanConcurrentPreservesManifestOrder(t *testing.T) {
	entries := make(map[string]string)
	var records []manifest.Record
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("scan_%02d.pdf", i)
		entries[name] = formText(fmt.Sprintf("%09d", i))
		records = append(records, manifest.Record{FileName: name, FormNumber: schema.FormTypeTradeCorrection})
	}
	zipData := buildBatchArchive(t, entries)
	store := &mapStore{objects: map[string][]byte{"batch01.zip": zipData}}

	sequential := NewScanner(store, echoRecognizer{}, 1).Scan(context.Background(), "batch01.zip", records)
	concurrent := NewScanner(store, echoRecognizer{}, 8).Scan(context.Background(), "batch01.zip", records)

	if len(concurrent) != len(sequential) {
		t.Fatalf("Expected %d results, got %d", len(sequential), len(concurrent))
	}
	for i := range sequential {
		if concurrent[i].FileName != sequential[i].FileName {
			t.Errorf("Result %d: expected %q, got %q", i, sequential[i].FileName, concurrent[i].FileName)
		}
		if concurrent[i].Fields.CUSIP != sequential[i].Fields.CUSIP {
			t.Errorf("Result %d: expected CUSIP %q, got %q", i, sequential[i].Fields.CUSIP, concurrent[i].Fields.CUSIP)
		}
	}
}

func TestNewScannerClampsWorkers(t *testing.T) {
	scanner := NewScanner(&mapStore{}, echoRecognizer{}, 0)
	if scanner.workers != 1 {
		t.Errorf("Expected workers clamped to 1, got %d", scanner.workers)
	}
}
