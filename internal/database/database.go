// Package database manages the MongoDB connection used by the record store.
package database

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"trackd.sh/internal/terrors"
)

// Config holds connection settings.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// DB wraps a connected MongoDB client and the database handle the stores
// operate on.
type DB struct {
	client   *mongo.Client
	database *mongo.Database
}

// Connect establishes and verifies a MongoDB connection.
func Connect(ctx context.Context, cfg Config) (*DB, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, terrors.Wrap(err, terrors.ErrCodeUnavailable, "failed to create MongoDB client")
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, timeout)
	defer cancelPing()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, terrors.Wrap(err, terrors.ErrCodeUnavailable, "failed to ping MongoDB")
	}

	slog.Info("connected to MongoDB", "database", cfg.Database)
	return &DB{
		client:   client,
		database: client.Database(cfg.Database),
	}, nil
}

// Database returns the handle stores are built on.
func (d *DB) Database() *mongo.Database {
	return d.database
}

// Ping verifies the connection is still alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}
