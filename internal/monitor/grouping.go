package monitor

import (
	"sort"

	"github.com/rewired-gh/venueoracle/internal/models"
)

// GroupByTimestamp merges a flat series from independent producers into
// timestamp-ordered groups. Venue order within a timestamp follows input order.
func GroupByTimestamp(obs []models.VenueObservation) []models.ObservationGroup {
	if len(obs) == 0 {
		return nil
	}
	sorted := append([]models.VenueObservation(nil), obs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return GroupContiguous(sorted)
}

// GroupContiguous groups runs of equal timestamps in input order without
// reordering, so a recorded stream that goes backwards still reaches the
// monitor as out-of-order groups.
func GroupContiguous(obs []models.VenueObservation) []models.ObservationGroup {
	var groups []models.ObservationGroup
	for _, o := range obs {
		n := len(groups)
		if n == 0 || !groups[n-1].Timestamp.Equal(o.Timestamp) {
			groups = append(groups, models.ObservationGroup{Timestamp: o.Timestamp})
			n++
		}
		groups[n-1].Observations = append(groups[n-1].Observations, o)
	}
	return groups
}
