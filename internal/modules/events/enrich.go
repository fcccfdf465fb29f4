package events

import (
	"math"

	"github.com/yungbote/gdelt-dashboard/internal/domain/gdelt"
)

// Enrich returns a new slice; the input rows are never modified.
func Enrich(rows []gdelt.EventRecord) []gdelt.EnrichedEvent {
	out := make([]gdelt.EnrichedEvent, len(rows))
	for i, row := range rows {
		out[i] = EnrichOne(row)
	}
	return out
}

func EnrichOne(row gdelt.EventRecord) gdelt.EnrichedEvent {
	rootKey := ""
	if row.EventRootCode != nil {
		rootKey = zeroPad2(*row.EventRootCode)
	}
	return gdelt.EnrichedEvent{
		EventRecord:          row,
		EventRootDescription: gdelt.EventRootDescription(rootKey),
		QuadClassDescription: gdelt.QuadClassDescription(gdelt.Int64Or(row.QuadClass, 0)),
		SocialImpact:         SocialImpact(row),
		PoliticalImpact:      PoliticalImpact(row),
		EconomicImpact:       EconomicImpact(row),
	}
}

// SocialImpact scales mention volume by tone intensity.
func SocialImpact(row gdelt.EventRecord) float64 {
	mentions := float64(gdelt.Int64Or(row.NumMentions, 0))
	tone := gdelt.Float64Or(row.AvgTone, 0)
	return clamp01((mentions / 100) * math.Abs(tone) / 20)
}

func PoliticalImpact(row gdelt.EventRecord) float64 {
	return clamp01(math.Abs(gdelt.Float64Or(row.GoldsteinScale, 0)) / 10)
}

func EconomicImpact(row gdelt.EventRecord) float64 {
	articles := float64(gdelt.Int64Or(row.NumArticles, 0))
	sources := float64(gdelt.Int64Or(row.NumSources, 0))
	return clamp01((articles / 50) * (sources / 10))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 1:
		return 1
	default:
		return v
	}
}

// zeroPad2 left-pads short codes ("1" -> "01"); longer codes pass through.
func zeroPad2(code string) string {
	if len(code) >= 2 {
		return code
	}
	return "00"[:2-len(code)] + code
}
