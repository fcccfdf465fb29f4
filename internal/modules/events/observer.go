package events

import "time"

// Observer receives query and cache outcomes for metrics.
type Observer interface {
	ObserveWarehouse(status string, rows int, dur time.Duration)
	ObserveCache(result string)
}

type nopObserver struct{}

func (nopObserver) ObserveWarehouse(string, int, time.Duration) {}

func (nopObserver) ObserveCache(string) {}
