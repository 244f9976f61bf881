package domain

import (
	"context"
	"time"
)

// ViewStats is one aggregated row from the hit statistics service.
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// StatsClient talks to the external hit statistics service. Popularity
// reporting only; it plays no part in admission decisions.
type StatsClient interface {
	Hit(ctx context.Context, app, uri, ip string) error
	GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]ViewStats, error)
}

// ViewCounter tracks per-event views in process, as a fallback when the stats
// service is unreachable.
type ViewCounter interface {
	Increment(eventID, ip string) int64
	Views(eventID string) int64
}
