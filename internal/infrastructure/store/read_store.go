package store

import "sync"

// ReadStoreInterface is the projector's target: keyed read models grouped
// by collection.
type ReadStoreInterface interface {
	Set(collection, id string, data any) error
	Get(collection, id string) (any, bool, error)
	GetAll(collection string) ([]any, error)
	Delete(collection, id string) error

	// Update modifies a read model in place; it reports whether the model
	// existed.
	Update(collection, id string, updateFn func(current any) any) (bool, error)
}

// ReadStore is the in-memory ReadStoreInterface implementation.
type ReadStore struct {
	mu   sync.RWMutex
	data map[string]map[string]any // collection -> id -> model
}

func NewReadStore() *ReadStore {
	return &ReadStore{data: make(map[string]map[string]any)}
}

func (rs *ReadStore) Set(collection, id string, data any) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.data[collection] == nil {
		rs.data[collection] = make(map[string]any)
	}
	rs.data[collection][id] = data
	return nil
}

func (rs *ReadStore) Get(collection, id string) (any, bool, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	if rs.data[collection] == nil {
		return nil, false, nil
	}
	data, ok := rs.data[collection][id]
	return data, ok, nil
}

func (rs *ReadStore) GetAll(collection string) ([]any, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	var items []any
	for _, item := range rs.data[collection] {
		items = append(items, item)
	}
	return items, nil
}

func (rs *ReadStore) Delete(collection, id string) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.data[collection] != nil {
		delete(rs.data[collection], id)
	}
	return nil
}

func (rs *ReadStore) Update(collection, id string, updateFn func(current any) any) (bool, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.data[collection] == nil {
		return false, nil
	}
	current, ok := rs.data[collection][id]
	if !ok {
		return false, nil
	}
	rs.data[collection][id] = updateFn(current)
	return true, nil
}
