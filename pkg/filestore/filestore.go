// Package filestore stores submitted coursework artifacts and hands back
// stable references that are persisted verbatim on the submission record.
package filestore

import (
	"context"
	"errors"
	"io"
)

// ErrFileMissing indicates the referenced artifact is absent from the backing
// store. Callers translate this to a not-found response, never an
// authorization failure.
var ErrFileMissing = errors.New("stored file missing")

// StoredFile is the stable reference returned by a Store. Retrieval by
// reference is byte-exact.
type StoredFile struct {
	OriginalName string
	MimeType     string
	StoredName   string
	StoredPath   string
	SizeBytes    int64
}

// Store abstracts the artifact storage backend.
type Store interface {
	// Save persists the payload and returns its reference.
	Save(ctx context.Context, originalName, mimeType string, reader io.Reader) (StoredFile, error)
	// Open returns the artifact's content for streaming to a client.
	Open(ctx context.Context, ref StoredFile) (io.ReadCloser, error)
	// Remove deletes the artifact. Used to compensate when the submission
	// row fails to commit after the file was written.
	Remove(ctx context.Context, ref StoredFile) error
}
