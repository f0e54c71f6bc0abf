package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestFormatTime_NormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	in := time.Date(2020, time.November, 25, 17, 30, 0, 0, loc)

	assert.Equal(t, "2020-11-25T12:00:00Z", FormatTime(in))
}

func TestFeature_MapsGeometryAndProperties(t *testing.T) {
	p := TrackPoint{
		StormID:    "BESTTRACK_2020",
		Timestamp:  "2020-11-25T12:00:00Z",
		Latitude:   13.4,
		Longitude:  80.3,
		Location:   NewGeoPoint(80.3, 13.4),
		WindKts:    intPtr(85),
		PressureMb: intPtr(950),
	}

	f := p.Feature()
	require.NotNil(t, f)

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	geom, ok := decoded["geometry"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Point", geom["type"])
	assert.Equal(t, []any{80.3, 13.4}, geom["coordinates"])

	props, ok := decoded["properties"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2020-11-25T12:00:00Z", props["timestamp"])
	assert.Equal(t, float64(85), props["wind_kts"])
	assert.Equal(t, float64(950), props["pressure_mb"])
	assert.Equal(t, "BESTTRACK_2020", props["storm_id"])
}

func TestFeature_NilWithoutLocation(t *testing.T) {
	p := TrackPoint{StormID: "BESTTRACK_2020", Timestamp: "2020-11-25T12:00:00Z"}
	assert.Nil(t, p.Feature())
}

func TestFeature_UnsetOptionalsSerializeAsNull(t *testing.T) {
	p := TrackPoint{
		StormID:   "BESTTRACK_2020",
		Timestamp: "2020-11-25T12:00:00Z",
		Location:  NewGeoPoint(80.3, 13.4),
	}

	data, err := json.Marshal(p.Feature())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"wind_kts":null`)
	assert.Contains(t, string(data), `"pressure_mb":null`)
}

func TestNewFeatureCollection_SkipsPointsWithoutGeometry(t *testing.T) {
	points := []TrackPoint{
		{StormID: "s", Timestamp: "2020-11-25T00:00:00Z", Location: NewGeoPoint(80, 13)},
		{StormID: "s", Timestamp: "2020-11-25T06:00:00Z"}, // no geometry
		{StormID: "s", Timestamp: "2020-11-25T12:00:00Z", Location: NewGeoPoint(81, 14)},
	}

	fc := NewFeatureCollection(points)
	assert.Len(t, fc.Features, 2)
}

func TestNewFeatureCollection_EmptySerializesAsEmptyArray(t *testing.T) {
	fc := NewFeatureCollection(nil)

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))
}

func TestStampIngestion_UsesInjectedClock(t *testing.T) {
	frozen := time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	points := []TrackPoint{{StormID: "a"}, {StormID: "b"}}
	StampIngestion(points)

	for _, p := range points {
		assert.Equal(t, frozen, p.IngestedAt)
	}
}
