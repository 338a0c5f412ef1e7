package store

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store used in tests. Documents round-trip
// through bson so field names and shapes match what Mongo would hold,
// and identifiers are ObjectID hex strings like the real store's.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]map[string]interface{}
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]map[string]interface{})}
}

func (m *Memory) Create(ctx context.Context, collection string, doc interface{}) (string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return "", &StorageError{Op: "insert", Err: err}
	}
	var entry map[string]interface{}
	if err := bson.Unmarshal(raw, &entry); err != nil {
		return "", &StorageError{Op: "insert", Err: err}
	}

	id := primitive.NewObjectID().Hex()
	entry["_id"] = id

	m.mu.Lock()
	m.collections[collection] = append(m.collections[collection], entry)
	m.mu.Unlock()
	return id, nil
}

func (m *Memory) List(ctx context.Context, collection string, filter map[string]interface{}, limit int64) ([]map[string]interface{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []map[string]interface{}
	for _, doc := range m.collections[collection] {
		if int64(len(out)) >= limit {
			break
		}
		if !matches(doc, filter) {
			continue
		}
		copied := make(map[string]interface{}, len(doc))
		for k, v := range doc {
			copied[k] = v
		}
		out = append(out, copied)
	}
	return out, nil
}

func (m *Memory) Health(ctx context.Context) Health {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h := Health{Connected: true, Database: "memory"}
	for name := range m.collections {
		h.Collections = append(h.Collections, name)
	}
	return h
}

// Count reports how many documents a collection holds; tests use it to
// assert that rejected requests wrote nothing.
func (m *Memory) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}

func matches(doc, filter map[string]interface{}) bool {
	for k, want := range filter {
		if doc[k] != want {
			return false
		}
	}
	return true
}
