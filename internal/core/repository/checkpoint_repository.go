package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"scouttrack/internal/core/model"
)

type CheckpointRepository interface {
	Create(cp *model.Checkpoint) error
	Update(cp *model.Checkpoint) error
	Delete(id string) error
	FindByID(id string) (*model.Checkpoint, error)
	FindAll() ([]*model.Checkpoint, error)
}

type MongoCheckpointRepository struct {
	collection *mongo.Collection
}

func NewMongoCheckpointRepository(db *mongo.Database) *MongoCheckpointRepository {
	return &MongoCheckpointRepository{
		collection: db.Collection("checkpoints"),
	}
}

func (r *MongoCheckpointRepository) Create(cp *model.Checkpoint) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, cp)
	return err
}

func (r *MongoCheckpointRepository) Update(cp *model.Checkpoint) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"id": cp.ID}, cp)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return model.NotFoundError("checkpoint", cp.ID)
	}
	return nil
}

func (r *MongoCheckpointRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return model.NotFoundError("checkpoint", id)
	}
	return nil
}

func (r *MongoCheckpointRepository) FindByID(id string) (*model.Checkpoint, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cp model.Checkpoint
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&cp)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

func (r *MongoCheckpointRepository) FindAll() ([]*model.Checkpoint, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var cps []*model.Checkpoint
	if err = cursor.All(ctx, &cps); err != nil {
		return nil, err
	}
	return cps, nil
}
