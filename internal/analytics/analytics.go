// Package analytics computes aggregate figures over a set of records.
// Every function is pure and total: empty input yields zero values.
package analytics

import (
	"slices"
	"strconv"
	"strings"

	"github.com/hpungsan/diary/internal/record"
)

// SymptomCount is one entry of a symptom ranking.
type SymptomCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (c SymptomCount) String() string {
	return c.Name + " (" + strconv.Itoa(c.Count) + ")"
}

// Summary aggregates a record set.
type Summary struct {
	Count        int            `json:"count"`
	AverageMood  float64        `json:"average_mood"`
	Symptoms     []SymptomCount `json:"symptoms"`
	SymptomsText string         `json:"symptoms_text"`
}

// AverageMood returns the mean mood rounded to one decimal place, or 0 for
// no records. Rounding works on the exact mean and sends ties to the even
// digit, so 1/4 gives 0.2 and 9/4 gives 2.2.
func AverageMood(records []record.Record) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += float64(r.Mood)
	}
	mean := sum / float64(len(records))
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(mean, 'f', 1, 64), 64)
	return rounded
}

// SymptomFrequency counts symptom names across records, highest count first.
// Ties keep the order in which names were first seen.
func SymptomFrequency(records []record.Record) []SymptomCount {
	var ranked []SymptomCount
	index := map[string]int{}

	for _, r := range records {
		for _, name := range record.SplitSymptoms(r.Symptoms) {
			if i, ok := index[name]; ok {
				ranked[i].Count++
				continue
			}
			index[name] = len(ranked)
			ranked = append(ranked, SymptomCount{Name: name, Count: 1})
		}
	}

	slices.SortStableFunc(ranked, func(a, b SymptomCount) int {
		return b.Count - a.Count
	})
	return ranked
}

// FormatSymptomFrequency renders a ranking as "name (count),name (count)".
func FormatSymptomFrequency(ranked []SymptomCount) string {
	parts := make([]string, len(ranked))
	for i, c := range ranked {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

// Summarize computes every aggregate for records.
func Summarize(records []record.Record) Summary {
	ranked := SymptomFrequency(records)
	return Summary{
		Count:        len(records),
		AverageMood:  AverageMood(records),
		Symptoms:     ranked,
		SymptomsText: FormatSymptomFrequency(ranked),
	}
}
