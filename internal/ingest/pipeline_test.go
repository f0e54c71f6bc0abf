package ingest_test

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arul-vhs/STORMSIGHT-AI/internal/domain"
	"github.com/arul-vhs/STORMSIGHT-AI/internal/ingest"
	"github.com/arul-vhs/STORMSIGHT-AI/internal/observability"
)

// --- mocks ---

type mockStore struct {
	deleteErr error
	insertErr error
	indexErr  error

	deletedStorm string
	inserted     []domain.TrackPoint
	calls        []string
}

func (m *mockStore) DeleteTrack(_ context.Context, stormID string) (int64, error) {
	m.calls = append(m.calls, "delete")
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.deletedStorm = stormID
	return 3, nil
}

func (m *mockStore) InsertTrack(_ context.Context, points []domain.TrackPoint) (int, error) {
	m.calls = append(m.calls, "insert")
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.inserted = points
	return len(points), nil
}

func (m *mockStore) EnsureIndexes(_ context.Context) error {
	m.calls = append(m.calls, "indexes")
	return m.indexErr
}

// --- fixture helpers ---

func placemarkXML(coords, dtg, intensity, mslp string) string {
	desc := fmt.Sprintf(
		`<table><tr><td><B>DTG </B></td><td>%s</td></tr>`+
			`<tr><td><B>Intensity </B></td><td>%s</td></tr>`+
			`<tr><td><B>MSLP </B></td><td>%s</td></tr></table>`,
		dtg, intensity, mslp)
	return fmt.Sprintf(
		`<Placemark><description><![CDATA[%s]]></description>`+
			`<Point><coordinates>%s</coordinates></Point></Placemark>`,
		desc, coords)
}

// writeTestKMZ builds a KMZ archive holding a KML document with the given
// placemarks.
func writeTestKMZ(t *testing.T, placemarks ...string) string {
	t.Helper()

	body := ""
	for _, pm := range placemarks {
		body += pm
	}
	doc := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<kml xmlns="http://www.opengis.net/kml/2.2"><Document>` + body + `</Document></kml>`

	path := filepath.Join(t.TempDir(), "besttracks.kmz")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("doc.kml")
	require.NoError(t, err)
	_, err = w.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return path
}

func newPipeline(path string, st *mockStore) *ingest.Pipeline {
	return ingest.New(path, "BESTTRACK_2020", st, slog.Default(), observability.NewMetricsForTesting())
}

// --- tests ---

func TestPipeline_Run_ReplacesBatch(t *testing.T) {
	path := writeTestKMZ(t,
		placemarkXML("80.3,13.4,0", "2020112506Z", "75", "960 mb"),
		placemarkXML("80.9,13.9,0", "2020112512Z", "85", "950 mb"),
		placemarkXML("81.5,14.5,0", "2020112518Z", "90", "945 mb"),
	)
	st := &mockStore{}

	err := newPipeline(path, st).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"delete", "insert", "indexes"}, st.calls)
	assert.Equal(t, "BESTTRACK_2020", st.deletedStorm)
	require.Len(t, st.inserted, 3)
	assert.Equal(t, "2020-11-25T06:00:00Z", st.inserted[0].Timestamp)
	assert.Equal(t, "BESTTRACK_2020", st.inserted[0].StormID)
	assert.False(t, st.inserted[0].IngestedAt.IsZero())
}

func TestPipeline_Run_MalformedPlacemarksExcluded(t *testing.T) {
	path := writeTestKMZ(t,
		placemarkXML("80.3,13.4", "2020112506Z", "75", "960 mb"),
		placemarkXML("80.9,13.9", "garbage", "85", "950 mb"), // bad DTG, dropped
	)
	st := &mockStore{}

	err := newPipeline(path, st).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, st.inserted, 1)
}

func TestPipeline_Run_NoRecordsAbortsBeforeStore(t *testing.T) {
	path := writeTestKMZ(t,
		placemarkXML("80.3,13.4", "not-a-dtg", "75", "960 mb"),
	)
	st := &mockStore{}

	err := newPipeline(path, st).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no records extracted")
	assert.Empty(t, st.calls)
}

func TestPipeline_Run_MissingArchive(t *testing.T) {
	st := &mockStore{}

	err := newPipeline(filepath.Join(t.TempDir(), "absent.kmz"), st).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read archive")
	assert.Empty(t, st.calls)
}

func TestPipeline_Run_DeleteFailureAbortsInsert(t *testing.T) {
	path := writeTestKMZ(t, placemarkXML("80.3,13.4", "2020112506Z", "75", "960 mb"))
	st := &mockStore{deleteErr: errors.New("server unreachable")}

	err := newPipeline(path, st).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete existing track")
	assert.Equal(t, []string{"delete"}, st.calls)
}

func TestPipeline_Run_InsertFailureAbortsIndexes(t *testing.T) {
	path := writeTestKMZ(t, placemarkXML("80.3,13.4", "2020112506Z", "75", "960 mb"))
	st := &mockStore{insertErr: errors.New("write failed")}

	err := newPipeline(path, st).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert track points")
	assert.Equal(t, []string{"delete", "insert"}, st.calls)
}
