package gdelt

import (
	"cloud.google.com/go/civil"
)

// EventRecord is one row of the GDELT events query. Nil pointers are columns
// the warehouse returned as NULL.
type EventRecord struct {
	EventDate         *civil.Date `json:"event_date,omitempty"`
	Actor1CountryCode *string     `json:"actor1_country_code,omitempty"`
	Actor2CountryCode *string     `json:"actor2_country_code,omitempty"`
	EventCode         *string     `json:"event_code,omitempty"`
	EventRootCode     *string     `json:"event_root_code,omitempty"`
	QuadClass         *int64      `json:"quad_class,omitempty"`
	GoldsteinScale    *float64    `json:"goldstein_scale,omitempty"`
	NumMentions       *int64      `json:"num_mentions,omitempty"`
	NumSources        *int64      `json:"num_sources,omitempty"`
	NumArticles       *int64      `json:"num_articles,omitempty"`
	AvgTone           *float64    `json:"avg_tone,omitempty"`
	Actor1Name        *string     `json:"actor1_name,omitempty"`
	Actor2Name        *string     `json:"actor2_name,omitempty"`
	ActionGeoFullName *string     `json:"action_geo_full_name,omitempty"`
	SourceURL         *string     `json:"source_url,omitempty"`
}

// EnrichedEvent is an EventRecord with its lookup labels and impact scores.
type EnrichedEvent struct {
	EventRecord

	EventRootDescription string  `json:"event_root_description"`
	QuadClassDescription string  `json:"quad_class_description"`
	SocialImpact         float64 `json:"social_impact"`
	PoliticalImpact      float64 `json:"political_impact"`
	EconomicImpact       float64 `json:"economic_impact"`
}

// HasCountry reports whether either actor carries the given country code.
func (e EventRecord) HasCountry(code string) bool {
	return StringOr(e.Actor1CountryCode, "") == code || StringOr(e.Actor2CountryCode, "") == code
}

func StringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func Int64Or(p *int64, def int64) int64 {
	if p == nil {
		return def
	}
	return *p
}

func Float64Or(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func Ptr[T any](v T) *T { return &v }
