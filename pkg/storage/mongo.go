package storage

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
)

const mongoConnectTimeout = 10 * time.Second

// mongoDocument is the stored form of one key.
type mongoDocument struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore keeps each document in a MongoDB collection, keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to the deployment in uri and pings it.
func NewMongoStore(ctx context.Context, uri *URI, logger *log.Logger) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri.Raw))
	if err != nil {
		return nil, mcerrors.Storagef(err, "connect to %s", uri)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, mcerrors.Storagef(err, "ping %s", uri)
	}

	coll := client.Database(uri.Database()).Collection(uri.Collection())
	logger.Info("MongoDB storage ready", "database", uri.Database(), "collection", uri.Collection())
	return &MongoStore{client: client, coll: coll}, nil
}

// Exists implements [Store].
func (s *MongoStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := mcerrors.ValidateKey(key); err != nil {
		return false, err
	}
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": key}, options.Count().SetLimit(1))
	if err != nil {
		return false, failed("stat", key, err)
	}
	return n > 0, nil
}

// Read implements [Store].
func (s *MongoStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := mcerrors.ValidateKey(key); err != nil {
		return nil, err
	}
	var doc mongoDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, failed("read", key, err)
	}
	return doc.Data, nil
}

// Write implements [Store] as an upsert.
func (s *MongoStore) Write(ctx context.Context, key string, data []byte) error {
	if err := mcerrors.ValidateKey(key); err != nil {
		return err
	}
	doc := mongoDocument{Key: key, Data: data, UpdatedAt: time.Now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return failed("write", key, err)
	}
	return nil
}

// Delete implements [Store].
func (s *MongoStore) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return failed("delete", key, err)
	}
	return nil
}

// List implements [Store].
func (s *MongoStore) List(ctx context.Context, prefix string) ([]string, error) {
	filter := bson.M{}
	if prefix != "" {
		filter["_id"] = bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}
	}
	cur, err := s.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, failed("list", prefix, err)
	}
	defer cur.Close(ctx)

	var keys []string
	for cur.Next(ctx) {
		var doc struct {
			Key string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, failed("list", prefix, err)
		}
		keys = append(keys, doc.Key)
	}
	if err := cur.Err(); err != nil {
		return nil, failed("list", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close disconnects from the deployment.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
