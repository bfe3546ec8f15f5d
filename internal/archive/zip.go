// Package archive looks up single entries inside the zip containers that
// scanned form batches are delivered in.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
)

// manifestExt marks the batch listing entry, which is never a scanned form
// and is excluded from filename matching.
const manifestExt = ".csv"

// ExtractEntry returns the bytes of the first archive entry whose base name
// equals filename. Entries carrying the manifest extension are skipped even
// on an exact name match. A nil slice with a nil error means no entry
// matched.
func ExtractEntry(zipData []byte, filename string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	for _, entry := range zr.File {
		if strings.HasSuffix(entry.Name, manifestExt) {
			continue
		}
		if path.Base(entry.Name) != filename {
			continue
		}
		return readEntry(entry)
	}
	return nil, nil
}

// ManifestEntry returns the bytes of the first manifest (.csv) entry in the
// archive, or nil when the archive carries none.
func ManifestEntry(zipData []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	for _, entry := range zr.File {
		if strings.HasSuffix(entry.Name, manifestExt) {
			return readEntry(entry)
		}
	}
	return nil, nil
}

func readEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", entry.Name, err)
	}
	return data, nil
}
