package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Connect opens a client and pings it before returning.
func Connect(ctx context.Context, uri string, timeout time.Duration, log *logger.Logger) (*mongo.Client, error) {
	clientOpts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		clientOpts.SetConnectTimeout(timeout).SetServerSelectionTimeout(timeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	log.Info("Successfully connected and pinged MongoDB.")
	return client, nil
}

// Disconnect closes the client, logging rather than returning failures.
func Disconnect(client *mongo.Client, log *logger.Logger) {
	log.Info("Disconnecting from MongoDB...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Error("Error disconnecting from MongoDB", zap.Error(err))
		return
	}
	log.Info("Disconnected from MongoDB successfully.")
}
