package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 5 * time.Second

// Mongo is the MongoDB-backed Store. A nil database means the connection
// was never established; operations report ErrNotAvailable and the
// diagnostics endpoint surfaces the state.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	logger *logrus.Logger
}

// Connect builds the process-wide store handle. Connection failure is not
// fatal: the returned handle is usable, degraded, and every operation on
// it fails with a StorageError until the process is restarted.
func Connect(ctx context.Context, uri, dbName string, logger *logrus.Logger) *Mongo {
	m := &Mongo{logger: logger}

	if uri == "" {
		logger.Warn("DATABASE_URL not set - starting without database")
		return m
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.WithError(err).Warn("Failed to connect to database - starting degraded")
		return m
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.WithError(err).Warn("Database unreachable - starting degraded")
		return m
	}

	m.client = client
	m.db = client.Database(dbName)
	logger.WithField("database", dbName).Info("Database connection established")
	return m
}

// Close releases the client. Safe on a degraded handle.
func (m *Mongo) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

func (m *Mongo) Create(ctx context.Context, collection string, doc interface{}) (string, error) {
	if m.db == nil {
		return "", &StorageError{Op: "insert", Err: ErrNotAvailable}
	}

	res, err := m.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", &StorageError{Op: "insert", Err: err}
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprintf("%v", res.InsertedID), nil
}

func (m *Mongo) List(ctx context.Context, collection string, filter map[string]interface{}, limit int64) ([]map[string]interface{}, error) {
	if m.db == nil {
		return nil, &StorageError{Op: "find", Err: ErrNotAvailable}
	}

	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	cur, err := m.db.Collection(collection).Find(ctx, query, options.Find().SetLimit(limit))
	if err != nil {
		return nil, &StorageError{Op: "find", Err: err}
	}
	defer cur.Close(ctx)

	var docs []map[string]interface{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, &StorageError{Op: "find", Err: err}
	}
	return docs, nil
}

func (m *Mongo) Health(ctx context.Context) Health {
	if m.db == nil {
		return Health{}
	}

	h := Health{Connected: true, Database: m.db.Name()}
	names, err := m.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		h.Err = err
		return h
	}
	h.Collections = names
	return h
}
