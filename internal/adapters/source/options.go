package source

import "github.com/okian/brokengap/pkg/logger"

// FileOption configures a File source.
type FileOption func(*File)

// WithFileLogger sets the logger.
func WithFileLogger(l logger.Logger) FileOption {
	return func(f *File) {
		if l != nil {
			f.logger = l
		}
	}
}

// PostgresOption configures a Postgres source.
type PostgresOption func(*Postgres)

// WithTable sets the table rows are read from.
func WithTable(table string) PostgresOption {
	return func(p *Postgres) {
		if table != "" {
			p.table = table
		}
	}
}

// WithPostgresLogger sets the logger.
func WithPostgresLogger(l logger.Logger) PostgresOption {
	return func(p *Postgres) {
		if l != nil {
			p.logger = l
		}
	}
}
