package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrEmptyBatch        = errors.New("batch contains no operations")
	ErrWatchNotSupported = errors.New("store does not support subscriptions")
)

// Document is the raw shape of a stored document. Values survive a JSON
// round trip, so numbers read back as float64 unless accessed through the
// typed helpers below.
type Document map[string]any

// ChangeKind identifies the type of a committed write.
type ChangeKind string

const (
	ChangeSet    ChangeKind = "set"
	ChangeDelete ChangeKind = "delete"
)

// Change describes a committed write, delivered to subscribers and to the
// Kafka change feed consumed by the projector and notifier.
type Change struct {
	Collection string     `json:"collection"`
	ID         string     `json:"id"`
	Kind       ChangeKind `json:"kind"`
	Doc        Document   `json:"doc,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Filter is an equality constraint on a document field.
type Filter struct {
	Field string
	Value any
}

// Query selects documents from a collection. Filters are ANDed. OrderBy
// sorts by a single field; Limit of 0 means no limit.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// WriteOp is a single operation inside a batch.
type WriteOp struct {
	Kind       ChangeKind
	Collection string
	ID         string
	Doc        Document // set only
	Merge      bool     // set only
}

// SetOp builds a batch write that replaces or creates a document.
func SetOp(collection, id string, doc Document) WriteOp {
	return WriteOp{Kind: ChangeSet, Collection: collection, ID: id, Doc: doc}
}

// MergeOp builds a batch write that merges fields into a document.
func MergeOp(collection, id string, doc Document) WriteOp {
	return WriteOp{Kind: ChangeSet, Collection: collection, ID: id, Doc: doc, Merge: true}
}

// DeleteOp builds a batch write that removes a document.
func DeleteOp(collection, id string) WriteOp {
	return WriteOp{Kind: ChangeDelete, Collection: collection, ID: id}
}

// DocumentStore is the storage contract the domain services depend on:
// point reads, filtered queries, merge-upserts, atomic numeric increments
// and all-or-nothing multi-document batches.
type DocumentStore interface {
	// Get returns a document. The boolean reports whether it exists.
	Get(ctx context.Context, collection, id string) (Document, bool, error)

	// Set creates or replaces a document. With merge, existing fields not
	// present in doc are preserved.
	Set(ctx context.Context, collection, id string, doc Document, merge bool) error

	// Delete removes a document. Deleting a missing document is a no-op.
	Delete(ctx context.Context, collection, id string) error

	// Increment atomically adds delta to a numeric field, creating the
	// document and treating a missing field as 0.
	Increment(ctx context.Context, collection, id, field string, delta int64) error

	// Query returns documents matching q.
	Query(ctx context.Context, q Query) ([]Document, error)

	// RunBatch applies every operation or none of them.
	RunBatch(ctx context.Context, ops []WriteOp) error
}

// Subscription is a cancellable handle on a stream of changes. Changes for
// one subscription arrive in commit order; no ordering holds across
// subscriptions.
type Subscription struct {
	C      <-chan Change
	cancel func()
}

// Cancel stops delivery and releases the subscription. Safe to call twice.
func (s *Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Watcher is implemented by stores that can deliver realtime changes
// in-process. Stores without it feed subscribers through Kafka instead.
type Watcher interface {
	Subscribe(collection string) *Subscription
}

// Decode unmarshals a document into a typed model via JSON.
func Decode(doc Document, v any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Encode converts a typed model into a Document via JSON.
func Encode(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Int64 reads a numeric field, tolerating the int64/float64 split that
// comes from JSON decoding. Missing or non-numeric fields read as 0.
func (d Document) Int64(field string) int64 {
	switch v := d[field].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	default:
		return 0
	}
}

// String reads a string field, returning "" when missing or mistyped.
func (d Document) String(field string) string {
	s, _ := d[field].(string)
	return s
}

// Clone returns a deep copy so callers can mutate without aliasing the
// store's internal state.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out, err := Encode(d)
	if err != nil {
		return nil
	}
	return out
}
