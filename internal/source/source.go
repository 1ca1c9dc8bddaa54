// Package source loads recorded venue observation series from disk.
package source

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rewired-gh/venueoracle/internal/models"
)

// LoadFile reads observations from a .json array or a .csv file with the
// header timestamp,venue,price,liquidity. Timestamps are RFC 3339.
func LoadFile(path string) ([]models.VenueObservation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadJSON(f)
	case ".csv":
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("unsupported input format: %s", filepath.Ext(path))
	}
}

func ReadJSON(r io.Reader) ([]models.VenueObservation, error) {
	var out []models.VenueObservation
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode observations: %w", err)
	}
	for i := range out {
		if err := out[i].Validate(); err != nil {
			return nil, fmt.Errorf("observation %d: %w", i, err)
		}
	}
	return out, nil
}

func ReadCSV(r io.Reader) ([]models.VenueObservation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if strings.EqualFold(rows[0][0], "timestamp") {
		rows = rows[1:]
	}

	out := make([]models.VenueObservation, 0, len(rows))
	for i, row := range rows {
		ts, err := time.Parse(time.RFC3339Nano, row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid timestamp: %w", i+1, err)
		}
		price, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid price: %w", i+1, err)
		}
		liq, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid liquidity: %w", i+1, err)
		}
		obs := models.VenueObservation{Timestamp: ts, Venue: row[1], Price: price, Liquidity: liq}
		if err := obs.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, obs)
	}
	return out, nil
}
