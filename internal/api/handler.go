package api

import (
	"net/http"
	"time"

	"github.com/arul-vhs/STORMSIGHT-AI/internal/domain"
)

const instantFormatHint = "use ISO format like 2020-11-25T12:00:00Z"

// handleTrackData resolves the request's filter parameters into a store
// query and returns the matching points as a GeoJSON feature collection.
//
// Filter priority: exact instant (nearest point at or before it, falling
// back to the earliest point when the instant predates all data), then
// start+end range (inclusive, ascending), then the full track. storm_id
// defaults to the pre-loaded track.
func (s *Server) handleTrackData(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		s.metrics.QueryDuration.Observe(time.Since(start).Seconds())
	}()

	q := r.URL.Query()
	stormID := q.Get("storm_id")
	if stormID == "" {
		stormID = s.defaultStormID
	}

	ctx := r.Context()

	var (
		kind   string
		points []domain.TrackPoint
		err    error
	)

	switch {
	case q.Get("timestamp") != "":
		kind = "nearest"
		target, perr := parseInstant(q.Get("timestamp"))
		if perr != nil {
			s.clientError(w, kind, "invalid timestamp format, "+instantFormatHint)
			return
		}
		var pt *domain.TrackPoint
		pt, err = s.source.NearestBefore(ctx, stormID, target)
		if err == nil && pt != nil {
			points = []domain.TrackPoint{*pt}
		}

	case q.Get("start") != "" && q.Get("end") != "":
		kind = "range"
		from, errFrom := parseInstant(q.Get("start"))
		to, errTo := parseInstant(q.Get("end"))
		if errFrom != nil || errTo != nil {
			s.clientError(w, kind, "invalid start/end time format, "+instantFormatHint)
			return
		}
		points, err = s.source.Range(ctx, stormID, from, to)

	default:
		kind = "full"
		points, err = s.source.FullTrack(ctx, stormID)
	}

	if err != nil {
		s.logger.Error("track query failed", "kind", kind, "storm_id", stormID, "error", err)
		s.metrics.TrackQueries.WithLabelValues(kind, "server_error").Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "database query failed"})
		return
	}

	s.metrics.TrackQueries.WithLabelValues(kind, "success").Inc()
	writeJSON(w, http.StatusOK, domain.NewFeatureCollection(points))
}

func (s *Server) clientError(w http.ResponseWriter, kind, msg string) {
	s.metrics.TrackQueries.WithLabelValues(kind, "client_error").Inc()
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// parseInstant parses an ISO-8601 instant query parameter.
func parseInstant(v string) (time.Time, error) {
	return time.Parse(time.RFC3339, v)
}
