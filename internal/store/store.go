// Package store holds diary records and notifies subscribers when they change.
//
// Two backends implement Store. Memory keeps records in process and rejects
// deletes of unknown ids with NOT_FOUND. SQLite persists them in a single
// table and treats such deletes as a successful no-op. Both notify
// subscribers synchronously, in registration order, after every create and
// delete.
package store

import (
	"fmt"
	"log/slog"

	"github.com/hpungsan/diary/internal/logging"
	"github.com/hpungsan/diary/internal/notify"
	"github.com/hpungsan/diary/internal/record"
)

// Store is the authoritative holder of records.
// Implementations are not safe for concurrent use.
type Store interface {
	// Create stores a new record and returns its id. Date is not validated.
	Create(title, text string, mood int, symptoms, date string) (int64, error)
	// Delete removes the record with id.
	Delete(id int64) error
	// List returns snapshots of every stored record.
	List() ([]record.Record, error)
	// ListBetween returns records with start <= date <= end, compared as text.
	ListBetween(start, end string) ([]record.Record, error)
	// Subscribe registers fn for every create and delete.
	Subscribe(fn func()) notify.Subscription
	// Unsubscribe removes one registration.
	Unsubscribe(sub notify.Subscription) bool
	// Close drops all subscribers.
	Close() error
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*SQLite)(nil)
)

// Backend names a Store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendSQLite Backend = "sqlite"
)

func (b Backend) String() string {
	return string(b)
}

// IsValid reports whether b names a known backend.
func (b Backend) IsValid() bool {
	switch b {
	case BackendMemory, BackendSQLite:
		return true
	default:
		return false
	}
}

// Config selects and configures a backend for Open.
type Config struct {
	Backend Backend
	// Path is the database file for the sqlite backend.
	Path   string
	Logger *slog.Logger
}

// Open creates the store described by cfg.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemory(WithLogger(cfg.Logger)), nil
	case BackendSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite backend requires a database path")
		}
		return NewSQLite(cfg.Path, WithLogger(cfg.Logger))
	default:
		return nil, fmt.Errorf("invalid backend type: %q", cfg.Backend)
	}
}

// Option configures a backend.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(backend Backend, opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.Component(o.logger, logging.ComponentStore).With("backend", backend.String())
	return o
}
