package backends

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/services/svc-list/internal/domain/model"
)

const (
	fileDirPerm  = 0o755
	fileDataPerm = 0o644
)

type fileDocument struct {
	List model.List `json:"list"`
}

// FileBackend stores the list as one pretty-printed JSON document.
type FileBackend struct {
	path   string
	logger logger.Logger
}

// NewFileBackend creates the data directory and an empty document when missing.
func NewFileBackend(dataDir, fileName string, log logger.Logger) (*FileBackend, error) {
	backend := &FileBackend{
		path:   filepath.Join(dataDir, fileName),
		logger: log.Component("file-backend"),
	}

	if err := os.MkdirAll(dataDir, fileDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}

	_, err := os.Stat(backend.path)

	switch {
	case err == nil:
		return backend, nil
	case errors.Is(err, os.ErrNotExist):
		if err := backend.write(model.List{}); err != nil {
			return nil, fmt.Errorf("failed to initialize data file: %w", err)
		}

		backend.logger.Info().Str("path", backend.path).Msg("created empty data file")

		return backend, nil
	default:
		return nil, fmt.Errorf("failed to stat data file %s: %w", backend.path, err)
	}
}

func (b *FileBackend) Name() string {
	return "file"
}

func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Load(ctx context.Context) (model.List, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", b.path, err)
	}

	list, err := DecodeFileDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.path, err)
	}

	return list, nil
}

func (b *FileBackend) Replace(ctx context.Context, list model.List) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(b.path), fileDirPerm); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := b.write(list); err != nil {
		return err
	}

	b.logger.Debug().Int("records", len(list)).Msg("list written")

	return nil
}

func (b *FileBackend) Ping(_ context.Context) error {
	info, err := os.Stat(b.path)
	if err != nil {
		return fmt.Errorf("data file unavailable: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("data file %s is a directory", b.path)
	}

	return nil
}

// EncodeFileDocument renders list in the on-disk format.
func EncodeFileDocument(list model.List) ([]byte, error) {
	if list == nil {
		list = model.List{}
	}

	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(fileDocument{List: list}); err != nil {
		return nil, fmt.Errorf("failed to encode list: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodeFileDocument parses the on-disk format.
func DecodeFileDocument(data []byte) (model.List, error) {
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode list document: %w", err)
	}

	if doc.List == nil {
		return model.List{}, nil
	}

	return doc.List.Normalize(), nil
}

// write swaps the document in with a rename so readers see the old or the new
// content, never a partial file.
func (b *FileBackend) write(list model.List) error {
	data, err := EncodeFileDocument(list)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	tmpName := tmp.Name()

	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpName, fileDataPerm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", b.path, err)
	}

	return nil
}
