package model

import (
	"fmt"
	"time"
)

// Availability is the derived slot projection the backend computes for a
// given scope and date. It is never persisted gateway-side.
type Availability struct {
	Date      string `json:"date"`
	Total     int    `json:"total"`
	Booked    int    `json:"booked"`
	Available int    `json:"available"`
}

// Normalize recomputes the available count from total and booked and
// rejects payloads that violate 0 <= booked <= total.
func (a *Availability) Normalize() error {
	if a.Total < 0 {
		return fmt.Errorf("invalid availability: total %d is negative", a.Total)
	}
	if a.Booked < 0 || a.Booked > a.Total {
		return fmt.Errorf("invalid availability: booked %d outside [0,%d]", a.Booked, a.Total)
	}
	a.Available = a.Total - a.Booked
	return nil
}

// HasCapacity reports whether at least one slot remains.
func (a *Availability) HasCapacity() bool {
	return a.Available > 0
}

// DateOnly serializes a calendar date as YYYY-MM-DD in its own location,
// not UTC-shifted.
func DateOnly(t time.Time) string {
	return t.Format(time.DateOnly)
}
