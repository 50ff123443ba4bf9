package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

var (
	client *mongo.Client
	DB     *mongo.Database
)

func Connect(ctx context.Context, uri, dbName string, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetAppName("productpulse-backend")
	c, err := mongo.Connect(clientOpts)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}

	// Ping the database to verify connection
	if err := c.Ping(ctx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return fmt.Errorf("ping mongo: %w", err)
	}

	client = c
	DB = c.Database(dbName)
	log.Info("connected to MongoDB", zap.String("database", dbName))
	return nil
}

func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func GetCollection(name string) *mongo.Collection {
	return DB.Collection(name)
}
