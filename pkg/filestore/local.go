package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LocalStore writes artifacts to a directory on local disk under generated
// names, the way the portal has always stored uploads.
type LocalStore struct {
	dir    string
	logger zerolog.Logger
}

// NewLocalStore creates the target directory if needed.
func NewLocalStore(dir string, logger zerolog.Logger) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory must be provided")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &LocalStore{
		dir:    dir,
		logger: logger.With().Str("component", "local_filestore").Logger(),
	}, nil
}

// Save streams the payload to a uniquely named file. The original extension is
// kept so stored files remain recognizable on disk.
func (s *LocalStore) Save(ctx context.Context, originalName, mimeType string, reader io.Reader) (StoredFile, error) {
	storedName := uuid.NewString() + filepath.Ext(originalName)
	storedPath := filepath.Join(s.dir, storedName)

	target, err := os.Create(storedPath)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(target, reader)
	closeErr := target.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(storedPath)
		return StoredFile{}, fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug().Str("stored_name", storedName).Int64("size", written).Msg("file stored")

	return StoredFile{
		OriginalName: originalName,
		MimeType:     mimeType,
		StoredName:   storedName,
		StoredPath:   storedPath,
		SizeBytes:    written,
	}, nil
}

// Open returns the stored artifact, or ErrFileMissing when it has vanished
// from disk.
func (s *LocalStore) Open(_ context.Context, ref StoredFile) (io.ReadCloser, error) {
	handle, err := os.Open(ref.StoredPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileMissing
		}
		return nil, fmt.Errorf("failed to open stored file: %w", err)
	}

	return handle, nil
}

// Remove deletes the stored artifact. A file already gone is not an error.
func (s *LocalStore) Remove(_ context.Context, ref StoredFile) error {
	if err := os.Remove(ref.StoredPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stored file: %w", err)
	}

	return nil
}
