package config

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoConfig struct {
	URI      string `yaml:"uri" validate:"omitempty,uri"`
	Database string `yaml:"database" validate:"required"`
}

// Enabled reports whether a MongoDB URI was configured. Without one the
// in-memory repositories are used.
func (c MongoConfig) Enabled() bool {
	return c.URI != ""
}

func ConnectMongoDB(ctx context.Context, cfg MongoConfig, log zerolog.Logger) (*mongo.Client, *mongo.Database, error) {
	if !cfg.Enabled() {
		return nil, nil, fmt.Errorf("MongoDB URI not provided")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	log.Info().Str("database", cfg.Database).Msg("connecting to MongoDB")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info().Str("database", cfg.Database).Msg("connected to MongoDB")
	return client, client.Database(cfg.Database), nil
}
