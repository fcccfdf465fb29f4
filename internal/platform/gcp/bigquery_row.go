package gcp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/yungbote/gdelt-dashboard/internal/domain/gdelt"
)

// eventRow loads one result row into a gdelt.EventRecord. NULL columns stay
// nil; unknown columns are ignored.
type eventRow struct {
	rec gdelt.EventRecord
}

var _ bigquery.ValueLoader = (*eventRow)(nil)

func (r *eventRow) Load(values []bigquery.Value, schema bigquery.Schema) error {
	r.rec = gdelt.EventRecord{}
	for i, field := range schema {
		if i >= len(values) {
			break
		}
		v := values[i]
		if v == nil {
			continue
		}
		var err error
		switch field.Name {
		case "EventDate":
			r.rec.EventDate, err = dateValue(v)
		case "Actor1CountryCode":
			r.rec.Actor1CountryCode, err = stringValue(v)
		case "Actor2CountryCode":
			r.rec.Actor2CountryCode, err = stringValue(v)
		case "EventCode":
			r.rec.EventCode, err = stringValue(v)
		case "EventRootCode":
			r.rec.EventRootCode, err = stringValue(v)
		case "QuadClass":
			r.rec.QuadClass, err = intValue(v)
		case "GoldsteinScale":
			r.rec.GoldsteinScale, err = floatValue(v)
		case "NumMentions":
			r.rec.NumMentions, err = intValue(v)
		case "NumSources":
			r.rec.NumSources, err = intValue(v)
		case "NumArticles":
			r.rec.NumArticles, err = intValue(v)
		case "AvgTone":
			r.rec.AvgTone, err = floatValue(v)
		case "Actor1Name":
			r.rec.Actor1Name, err = stringValue(v)
		case "Actor2Name":
			r.rec.Actor2Name, err = stringValue(v)
		case "ActionGeo_FullName":
			r.rec.ActionGeoFullName, err = stringValue(v)
		case "SOURCEURL":
			r.rec.SourceURL, err = stringValue(v)
		}
		if err != nil {
			return fmt.Errorf("column %s: %w", field.Name, err)
		}
	}
	return nil
}

func stringValue(v bigquery.Value) (*string, error) {
	switch t := v.(type) {
	case string:
		return &t, nil
	case int64:
		s := strconv.FormatInt(t, 10)
		return &s, nil
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
}

func intValue(v bigquery.Value) (*int64, error) {
	switch t := v.(type) {
	case int64:
		return &t, nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, nil
		}
		n := int64(t)
		return &n, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return nil, err
		}
		return &n, nil
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
}

func floatValue(v bigquery.Value) (*float64, error) {
	switch t := v.(type) {
	case float64:
		return &t, nil
	case int64:
		f := float64(t)
		return &f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil, err
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
}

func dateValue(v bigquery.Value) (*civil.Date, error) {
	switch t := v.(type) {
	case civil.Date:
		return &t, nil
	case time.Time:
		d := civil.DateOf(t.UTC())
		return &d, nil
	case string:
		d, err := civil.ParseDate(strings.TrimSpace(t))
		if err != nil {
			return nil, err
		}
		return &d, nil
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
}
