package kml

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/arul-vhs/STORMSIGHT-AI/internal/domain"
)

// The description blob is an HTML table fragment embedded as text, so field
// extraction is literal substring slicing keyed by the exact label markup
// the best-track format emits. A general HTML parser would change behavior
// on the malformed input this format routinely contains; new labels are
// added to the table, not to control flow.
const cellClose = "</td>"

var descriptionMarkers = map[string]string{
	"dtg":       "DTG </B></td><td>",
	"intensity": "Intensity </B></td><td>",
	"mslp":      "MSLP </B></td><td>",
}

// descriptionField slices the value between a field's marker and the next
// closing cell tag. An absent marker means the field is simply unset.
func descriptionField(desc, name string) (string, bool) {
	marker, ok := descriptionMarkers[name]
	if !ok {
		return "", false
	}
	i := strings.Index(desc, marker)
	if i < 0 {
		return "", false
	}
	rest := desc[i+len(marker):]
	j := strings.Index(rest, cellClose)
	if j < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:j]), true
}

const dtgLayout = "2006010215"

// ParseDTG parses a date-time-group token. The only accepted shape is the
// fixed-width 11-character "YYYYMMDDHHZ"; anything else is rejected.
func ParseDTG(v string) (time.Time, error) {
	if len(v) != 11 || !strings.HasSuffix(v, "Z") {
		return time.Time{}, fmt.Errorf("unexpected DTG shape %q", v)
	}
	t, err := time.ParseInLocation(dtgLayout, v[:10], time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse DTG %q: %w", v, err)
	}
	return t, nil
}

// parseWindKts parses an intensity value in knots. Empty or non-numeric
// values mean "not reported" and yield nil, silently.
func parseWindKts(v string) *int {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

// parsePressureMb parses an MSLP value in millibars, tolerating a trailing
// " mb" unit suffix. Non-digit values yield nil, silently.
func parsePressureMb(v string) *int {
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "mb"))
	if v == "" || !isDigits(v) {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseCoordinates splits a KML "lon,lat[,alt]" tuple and parses the first
// two components.
func parseCoordinates(text string) (lon, lat float64, err error) {
	parts := strings.Split(strings.TrimSpace(text), ",")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("coordinate tuple %q has fewer than two components", text)
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse longitude %q: %w", parts[0], err)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse latitude %q: %w", parts[1], err)
	}
	return lon, lat, nil
}

// Counts reports placemarks seen versus records admitted, for operator
// visibility.
type Counts struct {
	PlacemarksSeen   int
	RecordsExtracted int
	Skipped          int
}

// ExtractTrackPoints walks every placemark in the document and builds one
// track point per placemark that yields both coordinates and a timestamp.
// Wind and pressure are independently optional. Placemarks missing either
// admission field are counted and skipped, never stored partially.
func ExtractTrackPoints(doc *Document, stormID string, logger *slog.Logger) ([]domain.TrackPoint, Counts) {
	placemarks := doc.Placemarks()
	counts := Counts{PlacemarksSeen: len(placemarks)}
	points := make([]domain.TrackPoint, 0, len(placemarks))

	for i, pm := range placemarks {
		var (
			lon, lat  float64
			hasCoords bool
			ts        time.Time
			hasTS     bool
			wind      *int
			pressure  *int
		)

		if text, ok := doc.Coordinates(pm); ok {
			lo, la, err := parseCoordinates(text)
			if err != nil {
				logger.Warn("could not parse coordinates", "placemark", i+1, "error", err)
			} else {
				lon, lat, hasCoords = lo, la, true
			}
		}

		if desc, ok := doc.Description(pm); ok {
			if v, ok := descriptionField(desc, "dtg"); ok {
				t, err := ParseDTG(v)
				if err != nil {
					logger.Warn("rejecting DTG value", "placemark", i+1, "error", err)
				} else {
					ts, hasTS = t, true
				}
			}
			if v, ok := descriptionField(desc, "intensity"); ok {
				wind = parseWindKts(v)
			}
			if v, ok := descriptionField(desc, "mslp"); ok {
				pressure = parsePressureMb(v)
			}
		}

		if !hasCoords || !hasTS {
			counts.Skipped++
			if hasCoords && !hasTS {
				logger.Warn("skipping placemark without valid timestamp",
					"placemark", i+1, "lat", lat, "lon", lon)
			}
			continue
		}

		points = append(points, domain.TrackPoint{
			StormID:    stormID,
			Timestamp:  domain.FormatTime(ts),
			Latitude:   lat,
			Longitude:  lon,
			Location:   domain.NewGeoPoint(lon, lat),
			WindKts:    wind,
			PressureMb: pressure,
		})
	}

	counts.RecordsExtracted = len(points)
	return points, counts
}
