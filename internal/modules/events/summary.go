package events

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/yungbote/gdelt-dashboard/internal/domain/gdelt"
)

const TopCountriesLimit = 10

type Metrics struct {
	AvgSocialImpact    float64 `json:"avg_social_impact"`
	AvgPoliticalImpact float64 `json:"avg_political_impact"`
	AvgEconomicImpact  float64 `json:"avg_economic_impact"`
	TotalEvents        int     `json:"total_events"`
}

type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type CountryCount struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type CountryOption struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type FilterOptions struct {
	Countries  []CountryOption `json:"countries"`
	Categories []string        `json:"categories"`
	EventTypes []string        `json:"event_types"`
}

func ComputeMetrics(rows []gdelt.EnrichedEvent) Metrics {
	m := Metrics{TotalEvents: len(rows)}
	if len(rows) == 0 {
		return m
	}
	for _, r := range rows {
		m.AvgSocialImpact += r.SocialImpact
		m.AvgPoliticalImpact += r.PoliticalImpact
		m.AvgEconomicImpact += r.EconomicImpact
	}
	n := float64(len(rows))
	m.AvgSocialImpact /= n
	m.AvgPoliticalImpact /= n
	m.AvgEconomicImpact /= n
	return m
}

// EventTypeDistribution counts rows per event-root label, most frequent first.
func EventTypeDistribution(rows []gdelt.EnrichedEvent) []LabelCount {
	counts := map[string]int{}
	for _, r := range rows {
		counts[r.EventRootDescription]++
	}
	out := make([]LabelCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, LabelCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// TopCountries counts involvement across both actor columns. Codes outside
// the country table are ignored.
func TopCountries(rows []gdelt.EnrichedEvent, n int) []CountryCount {
	counts := map[string]int{}
	tally := func(code *string) {
		if code == nil {
			return
		}
		if _, ok := gdelt.CountryName(*code); ok {
			counts[*code]++
		}
	}
	for _, r := range rows {
		tally(r.Actor1CountryCode)
		tally(r.Actor2CountryCode)
	}
	out := make([]CountryCount, 0, len(counts))
	for code, c := range counts {
		name, _ := gdelt.CountryName(code)
		out = append(out, CountryCount{Code: code, Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func BuildFilterOptions(rows []gdelt.EnrichedEvent) FilterOptions {
	seen := map[string]struct{}{}
	add := func(code *string) {
		if code == nil || strings.TrimSpace(*code) == "" {
			return
		}
		seen[*code] = struct{}{}
	}
	for _, r := range rows {
		add(r.Actor1CountryCode)
		add(r.Actor2CountryCode)
	}
	codes := make([]string, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Strings(codes)

	countries := make([]CountryOption, 0, len(codes)+1)
	countries = append(countries, CountryOption{Label: SelectAll})
	for _, c := range codes {
		countries = append(countries, CountryOption{
			Code:  c,
			Label: fmt.Sprintf("%s (%s)", gdelt.CountryDisplayName(c), c),
		})
	}
	return FilterOptions{
		Countries:  countries,
		Categories: append([]string{SelectAll}, gdelt.QuadClassLabels()...),
		EventTypes: append([]string{SelectAll}, gdelt.EventRootLabels()...),
	}
}

var summaryTmpl = template.Must(template.New("summary").Parse(
	`**Event Type:** {{.EventType}} ({{.EventCode}})
**Category:** {{.Category}}
**Countries Involved:**
- Primary Actor: {{.Actor1Country}} ({{.Actor1Code}})
- Target Actor: {{.Actor2Country}} ({{.Actor2Code}})
**Specific Location:** {{.Location}}
**Actors:** {{.Actor1Name}} → {{.Actor2Name}}
**Impact Scores:**
- Social: {{printf "%.2f" .Social}}
- Political: {{printf "%.2f" .Political}}
- Economic: {{printf "%.2f" .Economic}}
**Additional Info:**
- Mentions: {{.Mentions}}
- Sources: {{.Sources}}
- Tone: {{printf "%.2f" .Tone}}
[Source Article]({{.SourceURL}})
---
`))

type summaryView struct {
	EventType, EventCode, Category              string
	Actor1Country, Actor1Code                   string
	Actor2Country, Actor2Code                   string
	Location, Actor1Name, Actor2Name, SourceURL string
	Social, Political, Economic, Tone           float64
	Mentions, Sources                           int64
}

// FormatSummary renders one event as a markdown block.
func FormatSummary(e gdelt.EnrichedEvent) string {
	unknown := gdelt.UnknownLabel
	a1 := gdelt.StringOr(e.Actor1CountryCode, "")
	a2 := gdelt.StringOr(e.Actor2CountryCode, "")
	view := summaryView{
		EventType:     orUnknown(e.EventRootDescription),
		EventCode:     gdelt.StringOr(e.EventCode, unknown),
		Category:      orUnknown(e.QuadClassDescription),
		Actor1Country: gdelt.CountryDisplayName(a1),
		Actor1Code:    orUnknown(a1),
		Actor2Country: gdelt.CountryDisplayName(a2),
		Actor2Code:    orUnknown(a2),
		Location:      gdelt.StringOr(e.ActionGeoFullName, unknown),
		Actor1Name:    gdelt.StringOr(e.Actor1Name, unknown),
		Actor2Name:    gdelt.StringOr(e.Actor2Name, unknown),
		SourceURL:     gdelt.StringOr(e.SourceURL, "#"),
		Social:        e.SocialImpact,
		Political:     e.PoliticalImpact,
		Economic:      e.EconomicImpact,
		Tone:          gdelt.Float64Or(e.AvgTone, 0),
		Mentions:      gdelt.Int64Or(e.NumMentions, 0),
		Sources:       gdelt.Int64Or(e.NumSources, 0),
	}
	var b strings.Builder
	if err := summaryTmpl.Execute(&b, view); err != nil {
		return ""
	}
	return b.String()
}

func FormatSummaries(rows []gdelt.EnrichedEvent) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if s := FormatSummary(r); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return gdelt.UnknownLabel
	}
	return s
}
