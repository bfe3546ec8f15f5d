// Package batch drives the per-record pipeline: fetch the archive, extract
// each scanned form, recognize its text and map the declared fields. A
// failing record is logged and dropped; the batch always completes.
package batch

import (
	"context"
	"log"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/tradeops/formscan/internal/archive"
	"github.com/tradeops/formscan/internal/manifest"
	"github.com/tradeops/formscan/internal/schema"
	"github.com/tradeops/formscan/internal/storage"
)

// Recognizer produces OCR text for a PDF. Satisfied by ocr.Engine.
type Recognizer interface {
	Recognize(ctx context.Context, pdfData []byte) (string, error)
}

// Result pairs a manifest record with its extracted fields.
type Result struct {
	manifest.Record
	ZipFileName string        `json:"zipFileName"`
	Fields      schema.Fields `json:"pdfFields"`
}

// Scanner runs a batch of manifest records against one archive.
type Scanner struct {
	store      storage.Store
	recognizer Recognizer
	mapper     *schema.Mapper
	workers    int
}

// NewScanner creates a scanner. workers <= 1 processes records sequentially.
func NewScanner(store storage.Store, recognizer Recognizer, workers int) *Scanner {
	if workers < 1 {
		workers = 1
	}
	return &Scanner{
		store:      store,
		recognizer: recognizer,
		mapper:     schema.NewMapper(),
		workers:    workers,
	}
}

// Scan fetches the archive at zipKey and processes every manifest record
// against it. Records whose lookup or recognition fails are omitted from the
// result set; successful records keep their manifest order regardless of
// worker count.
func (s *Scanner) Scan(ctx context.Context, zipKey string, records []manifest.Record) []Result {
	zipData, err := s.store.Get(ctx, zipKey)
	if err != nil {
		log.Printf("Error fetching archive %s: %v", zipKey, err)
		return nil
	}
	return s.ScanData(ctx, zipKey, zipData, records)
}

// ScanData processes the records against an already-fetched archive.
func (s *Scanner) ScanData(ctx context.Context, zipKey string, zipData []byte, records []manifest.Record) []Result {
	log.Printf("Number of pdf files to process == %d", len(records))

	slots := make([]*Result, len(records))
	if s.workers > 1 {
		s.scanConcurrent(ctx, zipKey, zipData, records, slots)
	} else {
		for i, record := range records {
			slots[i] = s.process(ctx, zipKey, zipData, record)
		}
	}

	results := make([]Result, 0, len(records))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results
}

// scanConcurrent fans records out over an ants worker pool, writing each
// result into its manifest-order slot.
func (s *Scanner) scanConcurrent(ctx context.Context, zipKey string, zipData []byte, records []manifest.Record, slots []*Result) {
	pool, err := ants.NewPool(s.workers)
	if err != nil {
		log.Printf("Failed to create worker pool, falling back to sequential: %v", err)
		for i, record := range records {
			slots[i] = s.process(ctx, zipKey, zipData, record)
		}
		return
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, record := range records {
		i, record := i, record
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			slots[i] = s.process(ctx, zipKey, zipData, record)
		}); err != nil {
			wg.Done()
			log.Printf("Failed to submit record %s: %v", record.FileName, err)
		}
	}
	wg.Wait()
}

// process runs one record through lookup, recognition and field mapping.
// Any failure drops the record and returns nil.
func (s *Scanner) process(ctx context.Context, zipKey string, zipData []byte, record manifest.Record) *Result {
	pdfData, err := archive.ExtractEntry(zipData, record.FileName)
	if err != nil {
		log.Printf("Error occurred while processing pdf file %s: %v", record.FileName, err)
		return nil
	}
	if len(pdfData) == 0 {
		log.Printf("No archive entry found for %s", record.FileName)
		return nil
	}

	ocrText, err := s.recognizer.Recognize(ctx, pdfData)
	if err != nil {
		log.Printf("Error occurred while processing pdf file %s: %v", record.FileName, err)
		return nil
	}

	return &Result{
		Record:      record,
		ZipFileName: zipKey,
		Fields:      s.mapper.Map(ocrText, record.FormNumber),
	}
}
