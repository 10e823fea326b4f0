package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/herdfeed/internal/state"
)

// ErrStateNotFound is returned when no state has been saved under a key yet.
var ErrStateNotFound = errors.New("state not found")

// Repository defines whole-state storage keyed by a fixed identifier.
type Repository interface {
	LoadState(ctx context.Context, key string) (state.Herd, error)
	SaveState(ctx context.Context, key string, herd state.Herd) error
}

type stateDocument struct {
	Key       string     `bson:"_id"`
	Herd      state.Herd `bson:"state"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: "app_state",
	}, nil
}

// LoadState fetches the herd saved under key.
func (r *MongoDBRepository) LoadState(ctx context.Context, key string) (state.Herd, error) {
	var doc stateDocument
	err := r.collection().FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return state.Herd{}, ErrStateNotFound
	}
	if err != nil {
		return state.Herd{}, fmt.Errorf("failed to load state %s: %w", key, err)
	}
	return doc.Herd, nil
}

// SaveState replaces the herd stored under key, creating it when missing.
func (r *MongoDBRepository) SaveState(ctx context.Context, key string, herd state.Herd) error {
	doc := stateDocument{Key: key, Herd: herd, UpdatedAt: time.Now().UTC()}
	_, err := r.collection().ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save state %s: %w", key, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}
