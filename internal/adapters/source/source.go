// Package source loads material records from a catalogue export: a JSON file
// of c2db-style rows or a PostgreSQL table holding the same row documents.
package source

import (
	"context"

	"github.com/okian/brokengap/internal/domain/material"
)

// Source returns the full record set of one catalogue.
type Source interface {
	// ID identifies the catalogue, for cache keys and logs.
	ID() string
	// Load reads every usable row. Failures wrap ErrUnavailable or ErrDecode.
	Load(ctx context.Context) ([]material.Record, error)
}

// Static serves a fixed record set.
type Static struct {
	Name    string
	Records []material.Record
}

// ID implements Source.
func (s *Static) ID() string { return "static:" + s.Name }

// Load implements Source.
func (s *Static) Load(ctx context.Context) ([]material.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Records, nil
}
