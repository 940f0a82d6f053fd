package userdata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"reelist/internal/fileutil"
	"reelist/internal/logging"
)

const lockFileName = ".userdata.lock"

// FileBackend stores each record as <dir>/<key>.json. Writes are atomic and
// serialized across processes by an advisory lock file in dir.
type FileBackend struct {
	dir    string
	logger *slog.Logger
}

// NewFileBackend prepares dir for user data files.
func NewFileBackend(dir string, logger *slog.Logger) (*FileBackend, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("user data directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create user data directory: %w", err)
	}
	return &FileBackend{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "userdata.file"),
	}, nil
}

// Dir returns the backing directory.
func (b *FileBackend) Dir() string {
	return b.dir
}

// Path returns the file backing key.
func (b *FileBackend) Path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

func (b *FileBackend) Load(_ context.Context, key string) ([]byte, bool, error) {
	if !validKey(key) {
		return nil, false, fmt.Errorf("unknown record key %q", key)
	}
	data, err := os.ReadFile(b.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

func (b *FileBackend) Save(ctx context.Context, key string, data []byte) error {
	if !validKey(key) {
		return fmt.Errorf("unknown record key %q", key)
	}
	unlock, err := fileutil.Lock(ctx, filepath.Join(b.dir, lockFileName))
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(); err != nil {
			b.logger.Warn("failed to release user data lock", logging.Error(err))
		}
	}()
	if err := fileutil.WriteFileAtomic(b.Path(key), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	b.logger.Debug("user data record written", logging.String("key", key), logging.Int("bytes", len(data)))
	return nil
}

func (b *FileBackend) Close() error {
	return nil
}
