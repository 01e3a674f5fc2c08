// Package view derives the entries list and the summary from a store and
// keeps whichever one is displayed current as the store changes.
package view

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/hpungsan/diary/internal/analytics"
	"github.com/hpungsan/diary/internal/errors"
	"github.com/hpungsan/diary/internal/logging"
	"github.com/hpungsan/diary/internal/notify"
	"github.com/hpungsan/diary/internal/record"
	"github.com/hpungsan/diary/internal/store"
)

// Mode is the derived view being displayed.
type Mode string

const (
	ModeEntries Mode = "entries"
	ModeSummary Mode = "summary"
)

// ParseMode maps a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeEntries, ModeSummary:
		return m, nil
	default:
		return "", errors.NewInvalidRequest(fmt.Sprintf("unknown view mode %q: want entries or summary", s))
	}
}

// Options says which views the presentation layer offers.
type Options struct {
	List    bool `json:"list"`
	Summary bool `json:"summary"`
}

func (o Options) enabled(m Mode) bool {
	switch m {
	case ModeEntries:
		return o.List
	case ModeSummary:
		return o.Summary
	}
	return false
}

// Filter restricts the records a view considers to an inclusive date range.
// The zero Filter means all time.
type Filter struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// IsZero reports whether f is the all-time filter.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// State is a snapshot of the controller. Only the field for Mode is
// guaranteed current; the other holds whatever was last computed.
type State struct {
	Mode    Mode              `json:"mode"`
	Filter  Filter            `json:"filter"`
	Entries []record.Record   `json:"entries,omitempty"`
	Summary analytics.Summary `json:"summary"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithOnChange registers fn to receive the state after every recompute.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// Controller tracks the display mode and date filter and recomputes the
// displayed view whenever its store notifies a change.
// It is not safe for concurrent use.
type Controller struct {
	store    store.Store
	opts     Options
	mode     Mode
	filter   Filter
	entries  []record.Record
	summary  analytics.Summary
	sub      notify.Subscription
	onChange func(State)
	logger   *slog.Logger
}

// New subscribes a controller to s and computes the initial view.
// With both views enabled the summary is shown first.
func New(s store.Store, opts Options, options ...Option) (*Controller, error) {
	if !opts.List && !opts.Summary {
		return nil, errors.NewInvalidRequest("at least one view must be enabled")
	}

	c := &Controller{store: s, opts: opts, mode: ModeEntries}
	if opts.Summary {
		c.mode = ModeSummary
	}
	for _, o := range options {
		o(c)
	}
	c.logger = logging.Component(c.logger, logging.ComponentController)

	if err := c.recompute(); err != nil {
		return nil, err
	}
	c.sub = s.Subscribe(c.storeChanged)

	return c, nil
}

// CreateRecord stores a new record. The displayed view is refreshed by the
// store notification before CreateRecord returns.
func (c *Controller) CreateRecord(title, text string, mood int, symptoms, date string) (int64, error) {
	return c.store.Create(title, text, mood, symptoms, date)
}

// DeleteRecord removes a record by id.
func (c *Controller) DeleteRecord(id int64) error {
	return c.store.Delete(id)
}

// ApplyDateFilter switches to target and filters by [start, end].
// If either date is not YYYY-MM-DD the filter is reset to all time instead
// and no error is returned for it. A disabled target falls back to the
// enabled view.
func (c *Controller) ApplyDateFilter(start, end string, target Mode) error {
	if _, err := ParseMode(string(target)); err != nil {
		return err
	}

	c.filter = Filter{Start: start, End: end}
	for _, v := range []string{start, end} {
		if !record.IsDate(v) {
			c.logger.Warn("date filter reset to all time",
				logging.FieldStart, start, logging.FieldEnd, end,
				logging.FieldError, errors.NewInvalidDateFormat(v))
			c.filter = Filter{}
			break
		}
	}

	c.mode = target
	if !c.opts.enabled(target) {
		c.mode = c.fallback(target)
		c.logger.Debug("requested view disabled",
			logging.FieldMode, target, "using", c.mode)
	}

	return c.recompute()
}

// ClearFilter resets the filter to all time and keeps the current mode.
func (c *Controller) ClearFilter() error {
	c.filter = Filter{}
	return c.recompute()
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	s := State{
		Mode:    c.mode,
		Filter:  c.filter,
		Entries: slices.Clone(c.entries),
		Summary: c.summary,
	}
	s.Summary.Symptoms = slices.Clone(c.summary.Symptoms)
	return s
}

// Close unsubscribes from the store. Further store changes are ignored.
func (c *Controller) Close() {
	if c.sub.IsZero() {
		return
	}
	c.store.Unsubscribe(c.sub)
	c.sub = notify.Subscription{}
}

func (c *Controller) fallback(m Mode) Mode {
	if m == ModeEntries {
		return ModeSummary
	}
	return ModeEntries
}

func (c *Controller) storeChanged() {
	// A failed refresh leaves the previous view in place.
	_ = c.recompute()
}

// recompute refreshes the displayed view from the store and publishes it.
func (c *Controller) recompute() error {
	var (
		records []record.Record
		err     error
	)
	if c.filter.IsZero() {
		records, err = c.store.List()
	} else {
		records, err = c.store.ListBetween(c.filter.Start, c.filter.End)
	}
	if err != nil {
		c.logger.Error("view recompute failed", logging.FieldMode, c.mode, logging.FieldError, err)
		return err
	}

	switch c.mode {
	case ModeEntries:
		c.entries = records
	case ModeSummary:
		c.summary = analytics.Summarize(records)
	}
	c.logger.Debug("view recomputed",
		logging.FieldMode, c.mode, logging.FieldStart, c.filter.Start,
		logging.FieldEnd, c.filter.End, logging.FieldCount, len(records))

	if c.onChange != nil {
		c.onChange(c.State())
	}
	return nil
}
