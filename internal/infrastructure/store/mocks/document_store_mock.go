package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/example/homemade-market/internal/infrastructure/store"
)

// MockDocumentStore is a mock implementation of DocumentStore for testing.
// It keeps documents in memory and records every call so tests can assert
// on exactly which writes a service issued.
type MockDocumentStore struct {
	mu   sync.RWMutex
	data map[string]map[string]store.Document // collection -> id -> doc

	// For tracking calls in tests
	SetCalls       []SetCall
	DeleteCalls    []DeleteCall
	IncrementCalls []IncrementCall
	BatchCalls     [][]store.WriteOp

	// Injected failures
	GetErr       error
	SetErr       error
	IncrementErr error
	QueryErr     error
	BatchErr     error
}

// SetCall records parameters passed to Set
type SetCall struct {
	Collection string
	ID         string
	Doc        store.Document
	Merge      bool
}

// DeleteCall records parameters passed to Delete
type DeleteCall struct {
	Collection string
	ID         string
}

// IncrementCall records parameters passed to Increment
type IncrementCall struct {
	Collection string
	ID         string
	Field      string
	Delta      int64
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		data:           make(map[string]map[string]store.Document),
		SetCalls:       make([]SetCall, 0),
		DeleteCalls:    make([]DeleteCall, 0),
		IncrementCalls: make([]IncrementCall, 0),
		BatchCalls:     make([][]store.WriteOp, 0),
	}
}

func (m *MockDocumentStore) Get(ctx context.Context, collection, id string) (store.Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	if m.data[collection] == nil {
		return nil, false, nil
	}
	doc, ok := m.data[collection][id]
	if !ok {
		return nil, false, nil
	}
	return doc.Clone(), true, nil
}

func (m *MockDocumentStore) Set(ctx context.Context, collection, id string, doc store.Document, merge bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls = append(m.SetCalls, SetCall{
		Collection: collection,
		ID:         id,
		Doc:        doc.Clone(),
		Merge:      merge,
	})
	if m.SetErr != nil {
		return m.SetErr
	}

	m.apply(collection, id, doc, merge)
	return nil
}

func (m *MockDocumentStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, DeleteCall{
		Collection: collection,
		ID:         id,
	})

	if m.data[collection] != nil {
		delete(m.data[collection], id)
	}
	return nil
}

func (m *MockDocumentStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IncrementCalls = append(m.IncrementCalls, IncrementCall{
		Collection: collection,
		ID:         id,
		Field:      field,
		Delta:      delta,
	})
	if m.IncrementErr != nil {
		return m.IncrementErr
	}

	if m.data[collection] == nil {
		m.data[collection] = make(map[string]store.Document)
	}
	doc, ok := m.data[collection][id]
	if !ok {
		doc = store.Document{}
		m.data[collection][id] = doc
	}
	doc[field] = doc.Int64(field) + delta
	return nil
}

func (m *MockDocumentStore) Query(ctx context.Context, q store.Query) ([]store.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.QueryErr != nil {
		return nil, m.QueryErr
	}

	var results []store.Document
	for id, doc := range m.data[q.Collection] {
		if matches(doc, q.Filters) {
			out := doc.Clone()
			if _, ok := out["id"]; !ok {
				out["id"] = id
			}
			results = append(results, out)
		}
	}
	sortDocs(results, q)
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}

func (m *MockDocumentStore) RunBatch(ctx context.Context, ops []store.WriteOp) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recorded := make([]store.WriteOp, len(ops))
	copy(recorded, ops)
	m.BatchCalls = append(m.BatchCalls, recorded)

	if m.BatchErr != nil {
		return m.BatchErr
	}
	if len(ops) == 0 {
		return store.ErrEmptyBatch
	}

	for _, op := range ops {
		switch op.Kind {
		case store.ChangeSet:
			m.apply(op.Collection, op.ID, op.Doc, op.Merge)
		case store.ChangeDelete:
			if m.data[op.Collection] != nil {
				delete(m.data[op.Collection], op.ID)
			}
		}
	}
	return nil
}

// apply assumes the lock is held.
func (m *MockDocumentStore) apply(collection, id string, doc store.Document, merge bool) {
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]store.Document)
	}
	if merge {
		if existing, ok := m.data[collection][id]; ok {
			merged := existing.Clone()
			for k, v := range doc {
				merged[k] = v
			}
			m.data[collection][id] = merged
			return
		}
	}
	m.data[collection][id] = doc.Clone()
}

// Reset clears all documents and recorded calls
func (m *MockDocumentStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]map[string]store.Document)
	m.SetCalls = make([]SetCall, 0)
	m.DeleteCalls = make([]DeleteCall, 0)
	m.IncrementCalls = make([]IncrementCall, 0)
	m.BatchCalls = make([][]store.WriteOp, 0)
	m.GetErr = nil
	m.SetErr = nil
	m.IncrementErr = nil
	m.QueryErr = nil
	m.BatchErr = nil
}

// Seed sets a document directly without recording a call
func (m *MockDocumentStore) Seed(collection, id string, doc store.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]store.Document)
	}
	m.data[collection][id] = doc.Clone()
}

// Doc reads a document directly without recording a call
func (m *MockDocumentStore) Doc(collection, id string) (store.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data[collection] == nil {
		return nil, false
	}
	doc, ok := m.data[collection][id]
	if !ok {
		return nil, false
	}
	return doc.Clone(), true
}

// Count returns the number of documents in a collection
func (m *MockDocumentStore) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[collection])
}

func matches(doc store.Document, filters []store.Filter) bool {
	for _, f := range filters {
		v, ok := doc[f.Field]
		if !ok || !equal(v, f.Value) {
			return false
		}
	}
	return true
}

func equal(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func sortDocs(docs []store.Document, q store.Query) {
	if q.OrderBy == "" {
		return
	}
	less := func(i, j int) bool {
		a, b := docs[i][q.OrderBy], docs[j][q.OrderBy]
		if af, ok := toFloat(a); ok {
			bf, _ := toFloat(b)
			return af < bf
		}
		as, _ := a.(string)
		bs, _ := b.(string)
		return as < bs
	}
	if q.Descending {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.Slice(docs, less)
}
