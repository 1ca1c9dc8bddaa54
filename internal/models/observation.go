// Package models defines the core domain entities: venue observations, benchmark records, and errors.
package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidObservationSet marks a timestamp group that cannot produce a benchmark.
	ErrInvalidObservationSet = errors.New("invalid observation set")
	// ErrOutOfOrderTimestamp marks a group that arrived before its predecessor.
	ErrOutOfOrderTimestamp = errors.New("out of order timestamp")
)

// VenueObservation is a single price/liquidity reading from one venue.
type VenueObservation struct {
	Timestamp time.Time `json:"timestamp"`
	Venue     string    `json:"venue"`
	Price     float64   `json:"price"`
	Liquidity float64   `json:"liquidity"`
}

// Validate checks observation field constraints.
func (o *VenueObservation) Validate() error {
	if o.Venue == "" {
		return errors.New("venue must not be empty")
	}
	if math.IsNaN(o.Price) || o.Price <= 0 {
		return errors.New("price must be positive")
	}
	if math.IsNaN(o.Liquidity) || o.Liquidity < 0 {
		return errors.New("liquidity must not be negative")
	}
	if o.Timestamp.IsZero() {
		return errors.New("timestamp must be set")
	}
	return nil
}

// ObservationGroup holds all venue observations sharing one timestamp.
type ObservationGroup struct {
	Timestamp    time.Time
	Observations []VenueObservation
}

// Validate reports ErrInvalidObservationSet for empty groups, negative
// liquidity, or observations stamped with a different timestamp.
func (g *ObservationGroup) Validate() error {
	if len(g.Observations) == 0 {
		return fmt.Errorf("%w: empty group at %s", ErrInvalidObservationSet, g.Timestamp.Format(time.RFC3339))
	}
	for i := range g.Observations {
		o := &g.Observations[i]
		if o.Liquidity < 0 || math.IsNaN(o.Liquidity) {
			return fmt.Errorf("%w: venue %s has negative liquidity %v", ErrInvalidObservationSet, o.Venue, o.Liquidity)
		}
		if !o.Timestamp.Equal(g.Timestamp) {
			return fmt.Errorf("%w: venue %s stamped %s, group is %s", ErrInvalidObservationSet,
				o.Venue, o.Timestamp.Format(time.RFC3339), g.Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}
