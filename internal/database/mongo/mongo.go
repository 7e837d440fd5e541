package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"easyorders/internal/config"
	"easyorders/internal/lib/sl"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	countersCollection = "counters"
)

type counterDoc struct {
	Key       string    `bson:"key"`
	Count     int       `bson:"count"`
	ExpiresAt time.Time `bson:"expires_at"`
}

type MongoDB struct {
	clientOptions *options.ClientOptions
	database      string
	log           *slog.Logger
}

func NewMongoClient(conf *config.Config, logger *slog.Logger) (*MongoDB, error) {
	if !conf.Mongo.Enabled {
		return nil, nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
		log:           logger.With(sl.Module("mongodb")),
	}
	return client, nil
}

func (m *MongoDB) connect(ctx context.Context) (*mongo.Client, error) {
	connection, err := mongo.Connect(ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect error: %w", err)
	}
	return connection, nil
}

func (m *MongoDB) disconnect(ctx context.Context, connection *mongo.Client) {
	_ = connection.Disconnect(ctx)
}

// GetCounter returns the counter stored under key unless it has expired.
func (m *MongoDB) GetCounter(ctx context.Context, key string) (int, time.Time, bool, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return 0, time.Time{}, false, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(countersCollection)

	filter := bson.M{"key": key, "expires_at": bson.M{"$gt": time.Now()}}
	var doc counterDoc
	err = collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, time.Time{}, false, nil
		}
		return 0, time.Time{}, false, fmt.Errorf("mongodb find error: %w", err)
	}
	return doc.Count, doc.ExpiresAt, true, nil
}

func (m *MongoDB) SetCounter(ctx context.Context, key string, count int, expires time.Time) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(countersCollection)

	update := bson.M{"$set": counterDoc{Key: key, Count: count, ExpiresAt: expires}}
	_, err = collection.UpdateOne(ctx, bson.M{"key": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodb update error: %w", err)
	}
	return nil
}

// DeleteExpired removes expired counters. Returns the number of deleted documents.
func (m *MongoDB) DeleteExpired(ctx context.Context) (int64, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(countersCollection)

	filter := bson.M{"expires_at": bson.M{"$lt": time.Now()}}
	result, err := collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("mongodb delete error: %w", err)
	}

	if result.DeletedCount > 0 {
		m.log.Info("deleted expired counters from mongodb",
			slog.Int64("deleted_count", result.DeletedCount))
	}

	return result.DeletedCount, nil
}

// DeleteCounters removes every counter whose key starts with prefix.
func (m *MongoDB) DeleteCounters(ctx context.Context, prefix string) (int64, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return 0, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(countersCollection)

	filter := bson.M{"key": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	result, err := collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("mongodb delete error: %w", err)
	}
	return result.DeletedCount, nil
}
