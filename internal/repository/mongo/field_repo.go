package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/gym-dashboard/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const fieldCollectionName = "fields"

// fieldDocument is how one field is laid out in MongoDB. The JSON payload is
// kept as a string so the document mirrors the other backends byte for byte.
type fieldDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// mongoFieldRepository implements repository.FieldStore using MongoDB.
type mongoFieldRepository struct {
	collection *mongo.Collection
}

// NewMongoFieldRepository creates a field store backed by the "fields" collection.
func NewMongoFieldRepository(db *mongo.Database) repository.FieldStore {
	return &mongoFieldRepository{
		collection: db.Collection(fieldCollectionName),
	}
}

// Get retrieves the raw JSON stored under key.
func (r *mongoFieldRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var doc fieldDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return []byte(doc.Value), nil
}

// Put replaces (or inserts) the document for key. Last writer wins.
func (r *mongoFieldRepository) Put(ctx context.Context, key string, value []byte) error {
	doc := fieldDocument{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}

// EnsureFieldIndexes creates necessary indexes for the fields collection.
// Call this once during application startup.
func EnsureFieldIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "updatedAt", Value: -1}}, // recent-change audits
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// FieldCollection returns the collection the field store writes to.
func FieldCollection(db *mongo.Database) *mongo.Collection {
	return db.Collection(fieldCollectionName)
}
