// Package storage retrieves batch archives and OCR training data from the
// configured blob backend. The extraction core never touches storage; only
// the batch layer drives it.
package storage

import "context"

// Store fetches raw blob contents by object key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}
