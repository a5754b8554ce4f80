package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/brokengap/internal/domain/screening"
	"github.com/okian/brokengap/pkg/logger"
)

const dirPermission = 0o755

// File keeps one JSON file per key in a directory. A stored file is written
// to a temporary name, synced and renamed in place, so a reader sees either
// the previous entry or the complete new one.
type File struct {
	dir     string
	ruleSet string
	now     func() time.Time
	logger  logger.Logger
}

// NewFile returns a cache rooted at dir. The directory is created on first store.
func NewFile(dir string, opts ...Option) *File {
	f := &File{
		dir:    dir,
		now:    time.Now,
		logger: logger.Get().Named("cache"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Load implements Cache.
func (f *File) Load(ctx context.Context, key string) ([]screening.Candidate, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	raw, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false, fmt.Errorf("%w: decode %s: %w", ErrLoad, f.path(key), err)
	}
	if e.Key != key {
		f.logger.Warn(ctx, "cache entry key mismatch", logger.String("file", f.path(key)))
		return nil, false, nil
	}
	return e.Candidates, true, nil
}

// Store implements Cache.
func (f *File) Store(ctx context.Context, key string, candidates []screening.Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(Entry{
		Key:        key,
		RuleSet:    f.ruleSet,
		CreatedAt:  f.now().UTC(),
		Candidates: candidates,
	})
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrStore, err)
	}

	if err := os.MkdirAll(f.dir, dirPermission); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	if err := writeAtomic(f.path(key), raw); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	f.logger.Debug(ctx, "cache entry stored",
		logger.String("file", f.path(key)),
		logger.Int("candidates", len(candidates)),
	)
	return nil
}

func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
