package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/okian/brokengap/internal/domain/material"
	"github.com/okian/brokengap/pkg/logger"
)

const filePermission = 0o644

// File reads a JSON array of rows from disk.
type File struct {
	path   string
	logger logger.Logger
}

// NewFile returns a source reading path.
func NewFile(path string, opts ...FileOption) *File {
	f := &File{
		path:   path,
		logger: logger.Get().Named("source"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ID implements Source. It changes when the file is replaced or rewritten.
func (f *File) ID() string {
	abs, err := filepath.Abs(f.path)
	if err != nil {
		abs = f.path
	}
	id := "file:" + abs
	if st, err := os.Stat(f.path); err == nil {
		id += "@" + strconv.FormatInt(st.ModTime().UnixNano(), 10) + ":" + strconv.FormatInt(st.Size(), 10)
	}
	return id
}

// Load implements Source.
func (f *File) Load(ctx context.Context) ([]material.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(raw, &raws); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, f.path, err)
	}

	rows := make([]Row, 0, len(raws))
	for i, r := range raws {
		var row Row
		if err := json.Unmarshal(r, &row); err != nil {
			f.logger.Warn(ctx, "row skipped",
				logger.String("path", f.path),
				logger.Int("row", i),
				logger.Error(fmt.Errorf("%w: %w", ErrDecode, err)),
			)
			continue
		}
		rows = append(rows, row)
	}

	records, skipped := Records(rows)
	skipped += len(raws) - len(rows)
	f.logger.Debug(ctx, "rows read",
		logger.String("path", f.path),
		logger.Int("rows", len(raws)),
		logger.Int("skipped", skipped),
	)
	return records, nil
}

// WriteFile exports records as a row file readable by File.
func WriteFile(path string, records []material.Record) error {
	rows := make([]Row, len(records))
	for i := range records {
		rows[i] = FromRecord(&records[i])
	}
	raw, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	if err := os.WriteFile(path, raw, filePermission); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
