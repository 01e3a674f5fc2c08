package record

import (
	"slices"
	"strings"
)

// SymptomSeparator joins symptom names inside Record.Symptoms.
const SymptomSeparator = ","

// SplitSymptoms splits a symptom field into its names.
// An empty field yields nil. Names are returned as written, including
// duplicates and empty fragments.
func SplitSymptoms(field string) []string {
	if field == "" {
		return nil
	}
	return strings.Split(field, SymptomSeparator)
}

// JoinSymptoms joins names into a symptom field.
func JoinSymptoms(names []string) string {
	return strings.Join(names, SymptomSeparator)
}

// Catalog lists the symptom names offered by the picker.
var Catalog = []string{
	"Headache", "Abdominal pain", "Blood in stool", "Chest pain", "Constipation", "Cough", "Diarrhea",
	"Difficulty swallowing", "Dizziness", "Eye discomfort and redness", "Eye problems", "Foot pain",
	"ankle pain", "Foot swelling", "leg swelling", "Heart palpitations", "Hip pain", "Knee pain",
	"Low back pain", "Nasal congestion", "Nausea or vomiting", "Neck pain", "Numbness", "Tingling in hands",
	"Pelvic pain", "Shortness of breath", "Shoulder pain", "Sore throat", "Urinary problems", "Wheezing",
	"Blurred vision", "Brain fog", "Choking when eating", "Crossed eyed", "Decreased responsiveness",
	"Difficult to swallow", "Difficulty speaking", "Difficulty walking", "Difficulty writing",
	"Drooling from one side of the mouth", "Alteration in mental status", "Drooping eyelids",
	"Face or mouth numbness", "Fine tremors in hands", "Lost interest in people", "Limb spasms",
	"Limb weakness", "Seizure", "Sensitive to sound", "Sensitive to light", "Stuttering", "Tics",
	"Trembling of fingers or whole body", "Hangover", "Eye twitching", "Double vision",
}

// SearchSymptoms returns the catalog names containing query, in catalog order.
// Matching is case-sensitive. An empty query returns nil.
func SearchSymptoms(query string) []string {
	if query == "" {
		return nil
	}
	var out []string
	for _, name := range Catalog {
		if strings.Contains(name, query) {
			out = append(out, name)
		}
	}
	return out
}

// Picker accumulates the symptoms chosen for a new entry.
// The zero value is ready to use.
type Picker struct {
	chosen []string
}

// Add appends name unless it is already chosen.
func (p *Picker) Add(name string) {
	if !slices.Contains(p.chosen, name) {
		p.chosen = append(p.chosen, name)
	}
}

// Remove drops name from the selection. It reports whether name was chosen.
func (p *Picker) Remove(name string) bool {
	i := slices.Index(p.chosen, name)
	if i < 0 {
		return false
	}
	p.chosen = slices.Delete(p.chosen, i, i+1)
	return true
}

// Toggle adds name if absent and removes it otherwise.
func (p *Picker) Toggle(name string) {
	if !p.Remove(name) {
		p.Add(name)
	}
}

// Chosen returns a copy of the selection in the order names were added.
func (p *Picker) Chosen() []string {
	return slices.Clone(p.chosen)
}

// Field renders the selection as a Record.Symptoms value.
func (p *Picker) Field() string {
	return JoinSymptoms(p.chosen)
}

// Reset clears the selection.
func (p *Picker) Reset() {
	p.chosen = nil
}
