// Package store is the MongoDB adapter for the track collection.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/arul-vhs/STORMSIGHT-AI/internal/config"
	"github.com/arul-vhs/STORMSIGHT-AI/internal/domain"
)

// Store owns the MongoDB client for the track collection. The connection is
// established lazily on first use and reused; a failed attempt leaves the
// handle unset so the next call retries instead of sticking with a dead
// client. Concurrent callers share one session, guarded only for the
// connect itself — reads and writes rely on the server's own concurrency
// control.
type Store struct {
	uri            string
	db             string
	coll           string
	connectTimeout time.Duration
	logger         *slog.Logger

	mu     sync.Mutex
	client *mongo.Client
}

// New creates a Store. No connection is made until the first operation.
func New(cfg *config.Config, logger *slog.Logger) *Store {
	return &Store{
		uri:            cfg.MongoURI,
		db:             cfg.MongoDB,
		coll:           cfg.MongoCollection,
		connectTimeout: cfg.ConnectTimeout,
		logger:         logger,
	}
}

// collection returns the track collection, connecting and pinging first if
// no live client is held.
func (s *Store) collection(ctx context.Context) (*mongo.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		connectCtx, cancel := context.WithTimeout(ctx, s.connectTimeout)
		defer cancel()

		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(s.uri))
		if err != nil {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
			// Best-effort teardown; the next call starts fresh.
			_ = client.Disconnect(context.Background())
			return nil, fmt.Errorf("ping mongodb: %w", err)
		}
		s.logger.Info("mongodb connection established", "uri", s.uri, "db", s.db)
		s.client = client
	}

	return s.client.Database(s.db).Collection(s.coll), nil
}

// Ping verifies the store is reachable, connecting if necessary.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.collection(ctx)
	return err
}

// Disconnect closes the client if one was established.
func (s *Store) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client = nil
	return err
}

// DeleteTrack removes every stored point for the storm and returns how many
// documents went away.
func (s *Store) DeleteTrack(ctx context.Context, stormID string) (int64, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return 0, err
	}
	res, err := coll.DeleteMany(ctx, stormFilter(stormID))
	if err != nil {
		return 0, fmt.Errorf("delete track %s: %w", stormID, err)
	}
	return res.DeletedCount, nil
}

// InsertTrack bulk-writes track points and returns how many were inserted.
func (s *Store) InsertTrack(ctx context.Context, points []domain.TrackPoint) (int, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return 0, err
	}

	docs := make([]interface{}, len(points))
	for i := range points {
		docs[i] = points[i]
	}
	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert track points: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// EnsureIndexes creates the geospatial index on location and the ascending
// index on timestamp. Both are idempotent and part of the durable contract
// the query paths rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	coll, err := s.collection(ctx)
	if err != nil {
		return err
	}

	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: locationIndexKeys()},
		{Keys: timestampIndexKeys()},
	})
	if err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	return nil
}

// NearestBefore returns the latest point at or before t for the storm. When
// the requested instant predates all data it falls back to the earliest
// point overall. Returns nil when the storm has no points at all.
func (s *Store) NearestBefore(ctx context.Context, stormID string, t time.Time) (*domain.TrackPoint, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	var p domain.TrackPoint
	err = coll.FindOne(ctx,
		atOrBeforeFilter(stormID, domain.FormatTime(t)),
		options.FindOne().SetSort(sortByTimestampDesc()),
	).Decode(&p)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("query nearest point: %w", err)
	}

	err = coll.FindOne(ctx,
		stormFilter(stormID),
		options.FindOne().SetSort(sortByTimestampAsc()),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query earliest point: %w", err)
	}
	return &p, nil
}

// Range returns the storm's points with start <= timestamp <= end, ascending.
func (s *Store) Range(ctx context.Context, stormID string, start, end time.Time) ([]domain.TrackPoint, error) {
	return s.findSorted(ctx, rangeFilter(stormID, domain.FormatTime(start), domain.FormatTime(end)))
}

// FullTrack returns every point for the storm, ascending by timestamp.
func (s *Store) FullTrack(ctx context.Context, stormID string) ([]domain.TrackPoint, error) {
	return s.findSorted(ctx, stormFilter(stormID))
}

func (s *Store) findSorted(ctx context.Context, filter interface{}) ([]domain.TrackPoint, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	cur, err := coll.Find(ctx, filter, options.Find().SetSort(sortByTimestampAsc()))
	if err != nil {
		return nil, fmt.Errorf("query track points: %w", err)
	}
	defer cur.Close(ctx)

	var points []domain.TrackPoint
	if err := cur.All(ctx, &points); err != nil {
		return nil, fmt.Errorf("decode track points: %w", err)
	}
	return points, nil
}
