package domain

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature maps a track point to a GeoJSON feature. The stored location is
// the authoritative geometry; redundant lat/lon columns are not consulted.
// Returns nil when the point has no location.
func (p TrackPoint) Feature() *geojson.Feature {
	if p.Location == nil {
		return nil
	}

	f := geojson.NewFeature(orb.Point{p.Location.Coordinates[0], p.Location.Coordinates[1]})
	f.Properties = geojson.Properties{
		"timestamp":   p.Timestamp,
		"wind_kts":    p.WindKts,
		"pressure_mb": p.PressureMb,
		"storm_id":    p.StormID,
	}
	return f
}

// NewFeatureCollection bundles track points into a feature collection,
// skipping any point without a stored geometry. The collection is never
// nil, so an empty result still serializes as {"type":"FeatureCollection",
// "features":[]}.
func NewFeatureCollection(points []TrackPoint) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range points {
		if f := p.Feature(); f != nil {
			fc.Append(f)
		}
	}
	return fc
}
