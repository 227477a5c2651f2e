package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vborodin/storefront/internal/domain"
)

// MongoRepository stores the serialized cart in a single document keyed by
// namespace, for deployments that keep the session cart server-side.
type MongoRepository struct {
	collection *mongo.Collection
	namespace  string
}

type cartDocument struct {
	Namespace string    `bson:"namespace"`
	Payload   string    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

func NewMongoRepository(db *mongo.Database, namespace string) *MongoRepository {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &MongoRepository{
		collection: db.Collection("carts"),
		namespace:  namespace,
	}
}

func (r *MongoRepository) Load(ctx context.Context) (*domain.Cart, error) {
	var doc cartDocument
	filter := bson.M{"namespace": r.namespace}
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal([]byte(doc.Payload), &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}

	return &cart, nil
}

func (r *MongoRepository) Save(ctx context.Context, cart *domain.Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	filter := bson.M{"namespace": r.namespace}
	update := bson.M{"$set": cartDocument{
		Namespace: r.namespace,
		Payload:   string(payload),
		UpdatedAt: time.Now().UTC(),
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	return nil
}

func (r *MongoRepository) Delete(ctx context.Context) error {
	filter := bson.M{"namespace": r.namespace}
	if _, err := r.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
