package store

import (
	"database/sql"
	"log/slog"

	"github.com/hpungsan/diary/internal/db"
	"github.com/hpungsan/diary/internal/errors"
	"github.com/hpungsan/diary/internal/logging"
	"github.com/hpungsan/diary/internal/notify"
	"github.com/hpungsan/diary/internal/record"
)

// SQLite is the durable backend. Every operation opens its own connection,
// runs one statement and closes it. Ids are rowids allocated by the engine.
type SQLite struct {
	path   string
	subs   notify.Registry
	logger *slog.Logger
}

// NewSQLite creates the entries table in the file at path if needed.
func NewSQLite(path string, opts ...Option) (*SQLite, error) {
	o := buildOptions(BackendSQLite, opts)
	s := &SQLite{path: path, logger: o.logger}

	conn, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := conn.Close(); err != nil {
		return nil, errors.NewStorageUnavailable("open", err)
	}

	return s, nil
}

// Path returns the database file.
func (s *SQLite) Path() string {
	return s.path
}

func (s *SQLite) Create(title, text string, mood int, symptoms, date string) (int64, error) {
	var id int64
	err := s.withConn(func(conn *sql.DB) error {
		var err error
		id, err = db.Insert(conn, record.Record{
			Title:    title,
			Text:     text,
			Mood:     mood,
			Symptoms: symptoms,
			Date:     date,
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	s.logger.Debug("record created", logging.FieldID, id, logging.FieldDate, date)

	s.subs.Notify()
	return id, nil
}

// Delete succeeds and notifies even when no row has id.
func (s *SQLite) Delete(id int64) error {
	var n int64
	err := s.withConn(func(conn *sql.DB) error {
		var err error
		n, err = db.Delete(conn, id)
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Debug("record deleted", logging.FieldID, id, logging.FieldCount, n)

	s.subs.Notify()
	return nil
}

func (s *SQLite) List() ([]record.Record, error) {
	var out []record.Record
	err := s.withConn(func(conn *sql.DB) error {
		var err error
		out, err = db.List(conn)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("records listed", logging.FieldCount, len(out))
	return out, nil
}

func (s *SQLite) ListBetween(start, end string) ([]record.Record, error) {
	var out []record.Record
	err := s.withConn(func(conn *sql.DB) error {
		var err error
		out, err = db.ListBetween(conn, start, end)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("records listed",
		logging.FieldStart, start, logging.FieldEnd, end, logging.FieldCount, len(out))
	return out, nil
}

func (s *SQLite) Subscribe(fn func()) notify.Subscription {
	return s.subs.Subscribe(fn)
}

func (s *SQLite) Unsubscribe(sub notify.Subscription) bool {
	return s.subs.Unsubscribe(sub)
}

// Close drops all subscribers. No connection outlives an operation.
func (s *SQLite) Close() error {
	s.subs = notify.Registry{}
	return nil
}

// withConn runs fn on a fresh connection and closes it afterwards.
func (s *SQLite) withConn(fn func(*sql.DB) error) error {
	conn, err := db.Open(s.path)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn)
}
