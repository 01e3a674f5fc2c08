// Package record defines the diary entry type and the helpers that interpret
// its text-encoded fields (ISO dates and the comma-joined symptom list).
package record

import (
	"time"
)

// DateLayout is the ISO calendar date layout used for Record.Date.
// Lexicographic order of strings in this layout equals chronological order.
const DateLayout = "2006-01-02"

// Mood scale accepted by the entry surfaces.
const (
	MinMood = 0
	MaxMood = 10
)

// Record is one diary entry.
// Values returned by a store are detached snapshots.
type Record struct {
	// ID is assigned by the store, strictly positive
	ID int64 `json:"id"`

	Title string `json:"title"`
	Text  string `json:"text"`

	// Mood is intended to be 0-10; the store does not validate it
	Mood int `json:"mood"`

	// Symptoms is the comma-joined symptom field as chosen by the caller ("" = none)
	Symptoms string `json:"symptoms"`

	// Date is an ISO YYYY-MM-DD string
	Date string `json:"date"`
}

// ParseDate parses s as a strict YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// IsDate reports whether s is a valid YYYY-MM-DD date.
func IsDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// ValidMood reports whether m lies on the mood scale.
func ValidMood(m int) bool {
	return m >= MinMood && m <= MaxMood
}

// Today returns now's local calendar date in DateLayout.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// InRange reports whether r.Date lies within [start, end], comparing the ISO
// strings directly. A reversed range matches nothing.
func (r Record) InRange(start, end string) bool {
	return start <= r.Date && r.Date <= end
}
