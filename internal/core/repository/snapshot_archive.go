package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"scouttrack/internal/core/model"
	"scouttrack/internal/core/snapshot"
)

// SnapshotRecord is the stored form of a published snapshot.
type SnapshotRecord struct {
	Version uint64       `bson:"version" json:"version"`
	Kind    string       `bson:"kind" json:"kind"`
	TakenAt time.Time    `bson:"takenAt" json:"takenAt"`
	Teams   []model.Team `bson:"teams" json:"teams"`
}

func NewSnapshotRecord(s *snapshot.Snapshot) SnapshotRecord {
	return SnapshotRecord{
		Version: s.Version,
		Kind:    s.Kind.String(),
		TakenAt: s.TakenAt,
		Teams:   s.Teams,
	}
}

type SnapshotRepository interface {
	Insert(rec SnapshotRecord) error
	FindRecent(limit int) ([]SnapshotRecord, error)
}

type MongoSnapshotRepository struct {
	collection *mongo.Collection
}

func NewMongoSnapshotRepository(db *mongo.Database) *MongoSnapshotRepository {
	return &MongoSnapshotRepository{
		collection: db.Collection("team_snapshots"),
	}
}

// recentSort orders by capture time first. Versions restart at 1 with
// every process, so they only break ties within a run.
var recentSort = bson.D{
	{Key: "takenAt", Value: -1},
	{Key: "version", Value: -1},
}

func recentOptions(limit int) *options.FindOptions {
	opts := options.Find().SetSort(recentSort)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

// EnsureIndexes creates the index backing FindRecent.
func (r *MongoSnapshotRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    recentSort,
		Options: options.Index().SetName("takenAt_version_desc"),
	})
	return err
}

func (r *MongoSnapshotRepository) Insert(rec SnapshotRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, rec)
	return err
}

func (r *MongoSnapshotRepository) FindRecent(limit int) ([]SnapshotRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, recentOptions(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recs []SnapshotRecord
	if err = cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// SnapshotArchive stores structural snapshots off the publish path. Periodic
// snapshots are skipped; when the queue is full the snapshot is dropped and
// counted.
type SnapshotArchive struct {
	repo    SnapshotRepository
	queue   chan SnapshotRecord
	dropped atomic.Int64
	log     zerolog.Logger
}

func NewSnapshotArchive(repo SnapshotRepository, queueSize int, log zerolog.Logger) *SnapshotArchive {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &SnapshotArchive{
		repo:  repo,
		queue: make(chan SnapshotRecord, queueSize),
		log:   log.With().Str("component", "archive").Logger(),
	}
}

// Observe implements snapshot.Observer. It never blocks.
func (a *SnapshotArchive) Observe(s *snapshot.Snapshot) {
	if s.Kind != snapshot.Structural {
		return
	}
	select {
	case a.queue <- NewSnapshotRecord(s):
	default:
		a.dropped.Add(1)
		a.log.Warn().Uint64("version", s.Version).Msg("archive queue full, snapshot dropped")
	}
}

// Run drains the queue until ctx is done, then flushes what is left.
func (a *SnapshotArchive) Run(ctx context.Context) {
	for {
		select {
		case rec := <-a.queue:
			a.store(rec)
		case <-ctx.Done():
			for {
				select {
				case rec := <-a.queue:
					a.store(rec)
				default:
					return
				}
			}
		}
	}
}

func (a *SnapshotArchive) store(rec SnapshotRecord) {
	if err := a.repo.Insert(rec); err != nil {
		a.log.Error().Err(err).Uint64("version", rec.Version).Msg("failed to archive snapshot")
	}
}

func (a *SnapshotArchive) Dropped() int64 {
	return a.dropped.Load()
}
