package repository

import (
	"context"
	"fmt"

	"productpulse-backend/internal/database"
	"productpulse-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type SubmissionRepo struct {
	collection *mongo.Collection
}

func NewSubmissionRepo(collection string) *SubmissionRepo {
	return &SubmissionRepo{
		collection: database.GetCollection(collection),
	}
}

// InsertSubmission always appends a new document; there is no upsert or
// duplicate check.
func (r *SubmissionRepo) InsertSubmission(ctx context.Context, record *models.SubmissionRecord) (string, error) {
	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return "", err
	}
	id, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	record.ID = id
	return id.Hex(), nil
}

// EnsureIndexes creates necessary indexes for the submissions collection
func (r *SubmissionRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("status_recent"),
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
