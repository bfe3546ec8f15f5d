package ocr

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/tradeops/formscan/internal/storage"
)

// FetchTessdata downloads a Tesseract training-data blob into destDir and
// returns the directory to use as the tessdata prefix. An already-present
// file of the same name is kept.
func FetchTessdata(ctx context.Context, store storage.Store, key, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create tessdata directory: %w", err)
	}

	dest := filepath.Join(destDir, path.Base(key))
	if _, err := os.Stat(dest); err == nil {
		return destDir, nil
	}

	data, err := store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to fetch tessdata %s: %w", key, err)
	}
	if err := os.WriteFile(dest, data, 0o640); err != nil {
		return "", fmt.Errorf("failed to write tessdata: %w", err)
	}
	return destDir, nil
}
