package store

import (
	"log/slog"
	"slices"

	"github.com/hpungsan/diary/internal/errors"
	"github.com/hpungsan/diary/internal/logging"
	"github.com/hpungsan/diary/internal/notify"
	"github.com/hpungsan/diary/internal/record"
)

// Memory is the volatile backend. Ids are never reused: each create takes
// one more than the highest id ever assigned. This departs from the
// max(existing ids)+1 rule, under which deleting the newest record frees
// its id for the next create.
type Memory struct {
	records []record.Record
	lastID  int64
	subs    notify.Registry
	logger  *slog.Logger
}

// NewMemory returns an empty in-process store.
func NewMemory(opts ...Option) *Memory {
	o := buildOptions(BackendMemory, opts)
	return &Memory{logger: o.logger}
}

func (m *Memory) Create(title, text string, mood int, symptoms, date string) (int64, error) {
	m.lastID++
	r := record.Record{
		ID:       m.lastID,
		Title:    title,
		Text:     text,
		Mood:     mood,
		Symptoms: symptoms,
		Date:     date,
	}
	m.records = append(m.records, r)
	m.logger.Debug("record created", logging.FieldID, r.ID, logging.FieldDate, date)

	m.subs.Notify()
	return r.ID, nil
}

func (m *Memory) Delete(id int64) error {
	i := slices.IndexFunc(m.records, func(r record.Record) bool { return r.ID == id })
	if i < 0 {
		return errors.NewNotFound(id)
	}
	m.records = slices.Delete(m.records, i, i+1)
	m.logger.Debug("record deleted", logging.FieldID, id)

	m.subs.Notify()
	return nil
}

func (m *Memory) List() ([]record.Record, error) {
	out := slices.Clone(m.records)
	m.logger.Debug("records listed", logging.FieldCount, len(out))
	return out, nil
}

func (m *Memory) ListBetween(start, end string) ([]record.Record, error) {
	var out []record.Record
	for _, r := range m.records {
		if r.InRange(start, end) {
			out = append(out, r)
		}
	}
	m.logger.Debug("records listed",
		logging.FieldStart, start, logging.FieldEnd, end, logging.FieldCount, len(out))
	return out, nil
}

func (m *Memory) Subscribe(fn func()) notify.Subscription {
	return m.subs.Subscribe(fn)
}

func (m *Memory) Unsubscribe(sub notify.Subscription) bool {
	return m.subs.Unsubscribe(sub)
}

// Close drops all subscribers. Records stay readable.
func (m *Memory) Close() error {
	m.subs = notify.Registry{}
	return nil
}
