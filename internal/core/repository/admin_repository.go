package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"scouttrack/internal/core/model"
)

type AdminRepository interface {
	Create(admin *model.Admin) error
	Update(admin *model.Admin) error
	Delete(id string) error
	FindByID(id string) (*model.Admin, error)
	FindByEmail(email string) (*model.Admin, error)
	FindAll() ([]*model.Admin, error)
}

type MongoAdminRepository struct {
	collection *mongo.Collection
}

func NewMongoAdminRepository(db *mongo.Database) *MongoAdminRepository {
	return &MongoAdminRepository{
		collection: db.Collection("admins"),
	}
}

func (r *MongoAdminRepository) Create(admin *model.Admin) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, admin)
	return err
}

func (r *MongoAdminRepository) Update(admin *model.Admin) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"id": admin.ID}, admin)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return model.NotFoundError("admin", admin.ID)
	}
	return nil
}

func (r *MongoAdminRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return model.NotFoundError("admin", id)
	}
	return nil
}

func (r *MongoAdminRepository) FindByID(id string) (*model.Admin, error) {
	return r.findOne(bson.M{"id": id})
}

func (r *MongoAdminRepository) FindByEmail(email string) (*model.Admin, error) {
	return r.findOne(bson.M{"email": email})
}

func (r *MongoAdminRepository) findOne(filter bson.M) (*model.Admin, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var admin model.Admin
	err := r.collection.FindOne(ctx, filter).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *MongoAdminRepository) FindAll() ([]*model.Admin, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var admins []*model.Admin
	if err = cursor.All(ctx, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}
