package repository

import (
	"context"
	"errors"
	"time"

	"productpulse-backend/internal/database"
	"productpulse-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// AuthTokenRepo stores the single-use links emailed to admins.
type AuthTokenRepo struct {
	collection *mongo.Collection
}

func NewAuthTokenRepo() *AuthTokenRepo {
	return &AuthTokenRepo{
		collection: database.GetCollection("auth_tokens"),
	}
}

func (r *AuthTokenRepo) Create(ctx context.Context, token *models.AuthToken) error {
	token.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, token)
	if err != nil {
		return err
	}
	token.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

// ConsumeToken marks an unused, unexpired token as used in a single update
// and returns it with consumed set. When the token cannot be consumed it
// returns the stored token (nil if unknown) so the caller can tell an
// expired link from a used one.
func (r *AuthTokenRepo) ConsumeToken(ctx context.Context, token string, now time.Time) (*models.AuthToken, bool, error) {
	filter := bson.M{
		"token":      token,
		"is_used":    false,
		"expires_at": bson.M{"$gt": now},
	}
	update := bson.M{"$set": bson.M{"is_used": true, "used_at": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var consumed models.AuthToken
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&consumed)
	if err == nil {
		return &consumed, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, err
	}

	var existing models.AuthToken
	err = r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&existing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// CountRecentByEmail counts links issued to an admin address within the
// last window. Used for rate limiting login requests.
func (r *AuthTokenRepo) CountRecentByEmail(ctx context.Context, email string, window time.Duration) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"email":      email,
		"created_at": bson.M{"$gte": time.Now().Add(-window)},
	})
}

func (r *AuthTokenRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("token_unique"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("email_recent"),
		},
		{
			// Mongo drops links a day after they expire; the window keeps
			// "expired" distinguishable from "unknown" for late clicks.
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32((24 * time.Hour).Seconds())).SetName("expires_ttl"),
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
