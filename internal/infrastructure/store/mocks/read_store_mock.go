package mocks

import (
	"sync"
)

// MockReadStore is a mock implementation of ReadStoreInterface for testing
type MockReadStore struct {
	mu   sync.RWMutex
	data map[string]map[string]any // collection -> id -> data

	// For tracking calls in tests
	SetCalls    []ReadSetCall
	GetCalls    []ReadGetCall
	DeleteCalls []ReadDeleteCall
	UpdateCalls []ReadUpdateCall

	// Injected failures
	SetErr    error
	GetErr    error
	UpdateErr error
}

// ReadSetCall records parameters passed to Set
type ReadSetCall struct {
	Collection string
	ID         string
	Data       any
}

// ReadGetCall records parameters passed to Get
type ReadGetCall struct {
	Collection string
	ID         string
}

// ReadDeleteCall records parameters passed to Delete
type ReadDeleteCall struct {
	Collection string
	ID         string
}

// ReadUpdateCall records parameters passed to Update
type ReadUpdateCall struct {
	Collection string
	ID         string
}

// NewMockReadStore creates a new MockReadStore
func NewMockReadStore() *MockReadStore {
	return &MockReadStore{
		data:        make(map[string]map[string]any),
		SetCalls:    make([]ReadSetCall, 0),
		GetCalls:    make([]ReadGetCall, 0),
		DeleteCalls: make([]ReadDeleteCall, 0),
		UpdateCalls: make([]ReadUpdateCall, 0),
	}
}

// Set stores a read model
func (m *MockReadStore) Set(collection, id string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls = append(m.SetCalls, ReadSetCall{
		Collection: collection,
		ID:         id,
		Data:       data,
	})
	if m.SetErr != nil {
		return m.SetErr
	}

	if m.data[collection] == nil {
		m.data[collection] = make(map[string]any)
	}
	m.data[collection][id] = data
	return nil
}

// Get retrieves a read model by id
func (m *MockReadStore) Get(collection, id string) (any, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, ReadGetCall{
		Collection: collection,
		ID:         id,
	})
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}

	if m.data[collection] == nil {
		return nil, false, nil
	}
	data, ok := m.data[collection][id]
	return data, ok, nil
}

// GetAll retrieves all items in a collection
func (m *MockReadStore) GetAll(collection string) ([]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]any, 0, len(m.data[collection]))
	for _, item := range m.data[collection] {
		items = append(items, item)
	}
	return items, nil
}

// Delete removes a read model
func (m *MockReadStore) Delete(collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, ReadDeleteCall{
		Collection: collection,
		ID:         id,
	})

	if m.data[collection] != nil {
		delete(m.data[collection], id)
	}
	return nil
}

// Update modifies a read model using an update function
func (m *MockReadStore) Update(collection, id string, updateFn func(current any) any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls = append(m.UpdateCalls, ReadUpdateCall{
		Collection: collection,
		ID:         id,
	})
	if m.UpdateErr != nil {
		return false, m.UpdateErr
	}

	if m.data[collection] == nil {
		return false, nil
	}
	current, ok := m.data[collection][id]
	if !ok {
		return false, nil
	}
	m.data[collection][id] = updateFn(current)
	return true, nil
}

// Reset clears all data and recorded calls
func (m *MockReadStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]map[string]any)
	m.SetCalls = make([]ReadSetCall, 0)
	m.GetCalls = make([]ReadGetCall, 0)
	m.DeleteCalls = make([]ReadDeleteCall, 0)
	m.UpdateCalls = make([]ReadUpdateCall, 0)
	m.SetErr = nil
	m.GetErr = nil
	m.UpdateErr = nil
}

// SetData sets data directly for testing
func (m *MockReadStore) SetData(collection, id string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]any)
	}
	m.data[collection][id] = data
}

// GetData gets data directly for testing (without recording the call)
func (m *MockReadStore) GetData(collection, id string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data[collection] == nil {
		return nil, false
	}
	data, ok := m.data[collection][id]
	return data, ok
}
