package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TimeLayout is the fixed serialization format for track timestamps.
// Timestamps are stored as strings in this shape so that lexicographic
// comparison in the store matches chronological order.
const TimeLayout = "2006-01-02T15:04:05Z"

// GeoPoint is a GeoJSON Point geometry as persisted in the document store.
// Coordinates are [lon, lat], per the GeoJSON spec.
type GeoPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a Point geometry from a lon/lat pair.
func NewGeoPoint(lon, lat float64) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: [2]float64{lon, lat}}
}

// TrackPoint is one best-track observation: a single Placemark from the
// source KML, one document in the track collection.
//
// WindKts and PressureMb are pointers because the source data omits them
// for some fixes; nil means "not reported", never zero.
type TrackPoint struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	StormID    string             `bson:"storm_id" json:"storm_id"`
	Timestamp  string             `bson:"timestamp" json:"timestamp"`
	Latitude   float64            `bson:"latitude" json:"latitude"`
	Longitude  float64            `bson:"longitude" json:"longitude"`
	Location   *GeoPoint          `bson:"location" json:"location"`
	WindKts    *int               `bson:"wind_kts" json:"wind_kts"`
	PressureMb *int               `bson:"pressure_mb" json:"pressure_mb"`

	// IngestedAt records when the loader wrote this document. Operator
	// forensics only; it is not exposed through the query API.
	IngestedAt time.Time `bson:"ingested_at" json:"-"`
}

// FormatTime renders an instant in the fixed track timestamp layout, in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// StampIngestion sets IngestedAt on every point from the package clock.
func StampIngestion(points []TrackPoint) {
	now := clock.Now().UTC()
	for i := range points {
		points[i].IngestedAt = now
	}
}
