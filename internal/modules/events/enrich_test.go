package events

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/gdelt-dashboard/internal/domain/gdelt"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEnrichWorkedExample(t *testing.T) {
	row := gdelt.EventRecord{
		NumMentions:    gdelt.Ptr[int64](50),
		AvgTone:        gdelt.Ptr(-10.0),
		GoldsteinScale: gdelt.Ptr(5.0),
		NumArticles:    gdelt.Ptr[int64](25),
		NumSources:     gdelt.Ptr[int64](4),
	}
	got := EnrichOne(row)
	if !approx(got.SocialImpact, 0.25) {
		t.Fatalf("social: got=%v want=0.25", got.SocialImpact)
	}
	if !approx(got.PoliticalImpact, 0.5) {
		t.Fatalf("political: got=%v want=0.5", got.PoliticalImpact)
	}
	if !approx(got.EconomicImpact, 0.2) {
		t.Fatalf("economic: got=%v want=0.2", got.EconomicImpact)
	}
}

func TestEnrichMissingSourcesZeroesEconomic(t *testing.T) {
	row := gdelt.EventRecord{NumArticles: gdelt.Ptr[int64](500)}
	if got := EnrichOne(row).EconomicImpact; got != 0 {
		t.Fatalf("economic: got=%v want=0", got)
	}
}

func TestEnrichImpactsStayInUnitInterval(t *testing.T) {
	rows := []gdelt.EventRecord{
		{},
		{
			NumMentions:    gdelt.Ptr[int64](math.MaxInt64),
			AvgTone:        gdelt.Ptr(-1e300),
			GoldsteinScale: gdelt.Ptr(-1e9),
			NumArticles:    gdelt.Ptr[int64](1 << 40),
			NumSources:     gdelt.Ptr[int64](1 << 40),
		},
		{
			NumMentions: gdelt.Ptr[int64](-500),
			AvgTone:     gdelt.Ptr(30.0),
			NumArticles: gdelt.Ptr[int64](-50),
			NumSources:  gdelt.Ptr[int64](10),
		},
		{
			NumMentions:    gdelt.Ptr[int64](0),
			AvgTone:        gdelt.Ptr(math.Inf(-1)),
			GoldsteinScale: gdelt.Ptr(math.NaN()),
		},
		{
			NumMentions:    gdelt.Ptr[int64](10),
			AvgTone:        gdelt.Ptr(math.Inf(1)),
			GoldsteinScale: gdelt.Ptr(math.Inf(-1)),
		},
	}
	for i, e := range Enrich(rows) {
		for name, v := range map[string]float64{
			"social":    e.SocialImpact,
			"political": e.PoliticalImpact,
			"economic":  e.EconomicImpact,
		} {
			if math.IsNaN(v) || v < 0 || v > 1 {
				t.Fatalf("row %d %s impact out of range: %v", i, name, v)
			}
		}
	}
}

func TestEnrichLookupDefaults(t *testing.T) {
	cases := []struct {
		name     string
		row      gdelt.EventRecord
		wantRoot string
		wantQuad string
	}{
		{"padded root", gdelt.EventRecord{EventRootCode: gdelt.Ptr("4"), QuadClass: gdelt.Ptr[int64](1)}, "CONSULT", "Verbal Cooperation"},
		{"two digit root", gdelt.EventRecord{EventRootCode: gdelt.Ptr("19"), QuadClass: gdelt.Ptr[int64](4)}, "FIGHT", "Material Conflict"},
		{"unknown root", gdelt.EventRecord{EventRootCode: gdelt.Ptr("99"), QuadClass: gdelt.Ptr[int64](5)}, gdelt.UnknownLabel, gdelt.UnknownLabel},
		{"quad zero", gdelt.EventRecord{EventRootCode: gdelt.Ptr("01"), QuadClass: gdelt.Ptr[int64](0)}, "MAKE PUBLIC STATEMENT", gdelt.UnknownLabel},
		{"missing both", gdelt.EventRecord{}, gdelt.UnknownLabel, gdelt.UnknownLabel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EnrichOne(tc.row)
			if got.EventRootDescription != tc.wantRoot {
				t.Fatalf("root: got=%q want=%q", got.EventRootDescription, tc.wantRoot)
			}
			if got.QuadClassDescription != tc.wantQuad {
				t.Fatalf("quad: got=%q want=%q", got.QuadClassDescription, tc.wantQuad)
			}
		})
	}
}

func TestEnrichDeterministicAndNonMutating(t *testing.T) {
	rows := []gdelt.EventRecord{
		{EventRootCode: gdelt.Ptr("14"), NumMentions: gdelt.Ptr[int64](80), AvgTone: gdelt.Ptr(-4.5)},
		{EventRootCode: gdelt.Ptr("3"), GoldsteinScale: gdelt.Ptr(3.4)},
	}
	before := *rows[1].EventRootCode

	first := Enrich(rows)
	second := Enrich(rows)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("Enrich not deterministic (-first +second):\n%s", diff)
	}
	if *rows[1].EventRootCode != before {
		t.Fatalf("source row mutated: got=%q want=%q", *rows[1].EventRootCode, before)
	}
	if len(first) != len(rows) || first[0].EventRootDescription != "PROTEST" || first[1].EventRootDescription != "EXPRESS INTENT TO COOPERATE" {
		t.Fatalf("row order not preserved: %+v", first)
	}
}

func TestZeroPad2(t *testing.T) {
	for in, want := range map[string]string{"": "00", "7": "07", "07": "07", "123": "123"} {
		if got := zeroPad2(in); got != want {
			t.Fatalf("zeroPad2(%q): got=%q want=%q", in, got, want)
		}
	}
}
