// Package ocr turns the first page of a scanned PDF into recognized text.
// PDFs with a usable text layer are read directly; everything else is
// rendered to a raster image and run through Tesseract.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/ledongthuc/pdf"
	"github.com/otiai10/gosseract/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const (
	// DefaultDPI matches the render resolution the correction forms were
	// tuned against.
	DefaultDPI = 300

	// DefaultLanguage is the Tesseract language model.
	DefaultLanguage = "eng"

	// defaultMinTextLayer is the minimum number of non-space runes the
	// embedded text layer must yield before OCR is skipped. Scanned forms
	// typically carry no text layer at all.
	defaultMinTextLayer = 64
)

// Config holds the OCR engine settings.
type Config struct {
	Language     string
	DPI          int
	TessdataDir  string // empty means the system default
	MinTextLayer int
}

// Engine recognizes text on the first page of a PDF. It keeps no state
// between calls and is safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine, filling unset config values with defaults.
func NewEngine(cfg Config) *Engine {
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultDPI
	}
	if cfg.MinTextLayer <= 0 {
		cfg.MinTextLayer = defaultMinTextLayer
	}
	return &Engine{cfg: cfg}
}

// Recognize returns the text of the first page of pdfData. The renderer and
// recognizer are implementation details; callers only see the recognized
// string.
func (e *Engine) Recognize(ctx context.Context, pdfData []byte) (string, error) {
	if len(pdfData) == 0 {
		return "", errors.New("empty pdf data")
	}

	pages, err := api.PageCount(bytes.NewReader(pdfData), nil)
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}
	if pages < 1 {
		return "", errors.New("pdf has no pages")
	}
	log.Printf("Number of pages in pdf == %d", pages)

	if text := e.textLayer(pdfData); text != "" {
		return text, nil
	}

	img, err := e.renderFirstPage(ctx, pdfData)
	if err != nil {
		return "", err
	}
	return e.recognizeImage(img)
}

// textLayer extracts the first page's embedded text, or an empty string when
// the page has no usable text layer. Parser panics on odd files are treated
// the same as an absent layer.
func (e *Engine) textLayer(pdfData []byte) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(pdfData), int64(len(pdfData)))
	if err != nil || reader.NumPage() < 1 {
		return ""
	}
	page := reader.Page(1)
	if page.V.IsNull() {
		return ""
	}
	content, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	if utf8.RuneCountInString(strings.TrimSpace(content)) < e.cfg.MinTextLayer {
		return ""
	}
	return content
}

// renderFirstPage rasterizes page 1 to a grayscale PNG at the configured
// resolution using pdftoppm. pdfcpu's image extraction pulls embedded image
// objects rather than rendering, so the poppler renderer is used instead.
func (e *Engine) renderFirstPage(ctx context.Context, pdfData []byte) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "formscan-page-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "form.pdf")
	if err := os.WriteFile(pdfPath, pdfData, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write temp pdf: %w", err)
	}

	outputPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", "1",
		"-l", "1",
		"-r", strconv.Itoa(e.cfg.DPI),
		"-singlefile",
		pdfPath,
		outputPrefix,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	rendered, err := os.ReadFile(outputPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}
	return grayscalePNG(rendered)
}

// grayscalePNG re-encodes the rendered page as grayscale, which steadies
// Tesseract on low-contrast scans. Undecodable images pass through as-is.
func grayscalePNG(pngData []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(pngData))
	if err != nil {
		return pngData, nil
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Grayscale(img), imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode page image: %w", err)
	}
	return buf.Bytes(), nil
}

// recognizeImage runs Tesseract over the rendered page.
func (e *Engine) recognizeImage(pngData []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if e.cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(e.cfg.TessdataDir); err != nil {
			return "", fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(e.cfg.Language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(pngData); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}
