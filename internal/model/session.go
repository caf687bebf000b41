package model

import (
	"encoding/json"
	"time"
)

// FocusSession is a single focused work interval on a task, as stored by the API.
type FocusSession struct {
	ID              int64      `json:"id"`
	Task            int64      `json:"task"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	Success         bool       `json:"success"`
	Notes           string     `json:"notes"`
	DurationMinutes *Minutes   `json:"duration_minutes"`
}

// Open reports whether the session has not been ended yet.
func (s FocusSession) Open() bool {
	return s.EndedAt == nil
}

// Minutes returns the server-computed duration, or 0 when absent.
func (s FocusSession) Minutes() float64 {
	if s.DurationMinutes == nil {
		return 0
	}
	return float64(*s.DurationMinutes)
}

// Minutes is a duration in minutes as returned by the API. Values that are
// not JSON numbers decode to 0 instead of failing the whole payload.
type Minutes float64

func (m *Minutes) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*m = 0
		return nil
	}
	*m = Minutes(f)
	return nil
}

// CreateSession is the payload for creating a focus session.
type CreateSession struct {
	Task      int64     `json:"task"`
	StartedAt time.Time `json:"started_at"`
	Notes     string    `json:"notes"`
	Success   bool      `json:"success"`
}

// EndSession is the payload for ending a focus session.
type EndSession struct {
	EndedAt time.Time `json:"ended_at"`
	Success bool      `json:"success"`
}
