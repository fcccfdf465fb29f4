package events

import (
	"strings"

	"github.com/yungbote/gdelt-dashboard/internal/domain/gdelt"
)

// SelectAll is the UI's "no filter" choice.
const SelectAll = "All"

type Filters struct {
	Country   string `form:"country" json:"country,omitempty"`
	Category  string `form:"category" json:"category,omitempty"`
	EventType string `form:"event_type" json:"event_type,omitempty"`
}

func isUnset(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == SelectAll
}

// Normalize trims values, maps "All" to unset and reduces a country
// selection to its code.
func (f Filters) Normalize() Filters {
	out := Filters{}
	if !isUnset(f.Country) {
		out.Country = ParseCountrySelection(f.Country)
	}
	if !isUnset(f.Category) {
		out.Category = strings.TrimSpace(f.Category)
	}
	if !isUnset(f.EventType) {
		out.EventType = strings.TrimSpace(f.EventType)
	}
	return out
}

// ParseCountrySelection accepts a bare code ("USA") or the option label form
// "United States (USA)" and returns the code.
func ParseCountrySelection(sel string) string {
	sel = strings.TrimSpace(sel)
	open := strings.LastIndex(sel, "(")
	if open < 0 {
		return sel
	}
	rest := sel[open+1:]
	end := strings.Index(rest, ")")
	if end < 0 {
		return sel
	}
	return strings.TrimSpace(rest[:end])
}

// Filter keeps the rows matching every set filter. The result is a new slice.
func Filter(rows []gdelt.EnrichedEvent, f Filters) []gdelt.EnrichedEvent {
	f = f.Normalize()
	out := make([]gdelt.EnrichedEvent, 0, len(rows))
	for _, row := range rows {
		if f.Country != "" && !row.HasCountry(f.Country) {
			continue
		}
		if f.Category != "" && row.QuadClassDescription != f.Category {
			continue
		}
		if f.EventType != "" && row.EventRootDescription != f.EventType {
			continue
		}
		out = append(out, row)
	}
	return out
}
