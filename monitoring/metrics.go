package monitoring

import (
	"sync/atomic"
	"time"
)

// Counters track how the prediction service behaves in production:
// how often the trained model answers versus the fallback table, and
// how often the plausibility clamp fires.
type Counters struct {
	modelPredictions    atomic.Int64
	fallbackPredictions atomic.Int64
	clampEvents         atomic.Int64
	invalidInputs       atomic.Int64
	searchQueries       atomic.Int64
	startTime           time.Time
}

func NewCounters() *Counters {
	return &Counters{startTime: time.Now()}
}

func (c *Counters) RecordPrediction(fallback, clamped bool) {
	if fallback {
		c.fallbackPredictions.Add(1)
	} else {
		c.modelPredictions.Add(1)
	}
	if clamped {
		c.clampEvents.Add(1)
	}
}

func (c *Counters) RecordInvalidInput() {
	c.invalidInputs.Add(1)
}

func (c *Counters) RecordSearch() {
	c.searchQueries.Add(1)
}

type Snapshot struct {
	ModelPredictions    int64   `json:"model_predictions"`
	FallbackPredictions int64   `json:"fallback_predictions"`
	ClampEvents         int64   `json:"clamp_events"`
	InvalidInputs       int64   `json:"invalid_inputs"`
	SearchQueries       int64   `json:"search_queries"`
	UptimeSeconds       float64 `json:"uptime_seconds"`
}

func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		ModelPredictions:    c.modelPredictions.Load(),
		FallbackPredictions: c.fallbackPredictions.Load(),
		ClampEvents:         c.clampEvents.Load(),
		InvalidInputs:       c.invalidInputs.Load(),
		SearchQueries:       c.searchQueries.Load(),
		UptimeSeconds:       time.Since(c.startTime).Seconds(),
	}
}
