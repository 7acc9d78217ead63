package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ChangePublisher pushes committed changes onto the change feed.
type ChangePublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// MemoryStore is an in-memory DocumentStore with realtime subscriptions.
// Used by tests and dev mode; when a publisher is attached every committed
// change is also written to Kafka so the projector and notifier see the
// same feed they would in production.
type MemoryStore struct {
	mu        sync.RWMutex
	data      map[string]map[string]Document // collection -> id -> doc
	subs      map[string]map[int]*memSub     // collection -> subID -> sub
	nextSubID int
	publisher ChangePublisher
}

type memSub struct {
	ch chan Change
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]Document),
		subs: make(map[string]map[int]*memSub),
	}
}

// WithPublisher attaches a change-feed publisher. Not safe to call after
// the store is in use.
func (ms *MemoryStore) WithPublisher(p ChangePublisher) *MemoryStore {
	ms.publisher = p
	return ms
}

func (ms *MemoryStore) Get(ctx context.Context, collection, id string) (Document, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	doc, ok := ms.data[collection][id]
	if !ok {
		return nil, false, nil
	}
	return doc.Clone(), true, nil
}

func (ms *MemoryStore) Set(ctx context.Context, collection, id string, doc Document, merge bool) error {
	ms.mu.Lock()
	stored := ms.applySet(collection, id, doc, merge)
	ms.mu.Unlock()

	return ms.emit(ctx, Change{
		Collection: collection,
		ID:         id,
		Kind:       ChangeSet,
		Doc:        stored,
		Timestamp:  time.Now(),
	})
}

func (ms *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	ms.mu.Lock()
	_, existed := ms.data[collection][id]
	if existed {
		delete(ms.data[collection], id)
	}
	ms.mu.Unlock()

	if !existed {
		return nil
	}
	return ms.emit(ctx, Change{
		Collection: collection,
		ID:         id,
		Kind:       ChangeDelete,
		Timestamp:  time.Now(),
	})
}

func (ms *MemoryStore) Increment(ctx context.Context, collection, id, field string, delta int64) error {
	ms.mu.Lock()
	if ms.data[collection] == nil {
		ms.data[collection] = make(map[string]Document)
	}
	doc, ok := ms.data[collection][id]
	if !ok {
		doc = Document{}
	}
	doc[field] = doc.Int64(field) + delta
	ms.data[collection][id] = doc
	stored := doc.Clone()
	ms.mu.Unlock()

	return ms.emit(ctx, Change{
		Collection: collection,
		ID:         id,
		Kind:       ChangeSet,
		Doc:        stored,
		Timestamp:  time.Now(),
	})
}

func (ms *MemoryStore) Query(ctx context.Context, q Query) ([]Document, error) {
	ms.mu.RLock()
	var out []Document
	for _, doc := range ms.data[q.Collection] {
		if matchesFilters(doc, q.Filters) {
			out = append(out, doc.Clone())
		}
	}
	ms.mu.RUnlock()

	if q.OrderBy != "" {
		sortDocs(out, q.OrderBy, q.Descending)
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// RunBatch applies all operations under a single lock acquisition, so a
// reader never observes a half-applied batch.
func (ms *MemoryStore) RunBatch(ctx context.Context, ops []WriteOp) error {
	if len(ops) == 0 {
		return ErrEmptyBatch
	}

	changes := make([]Change, 0, len(ops))
	now := time.Now()

	ms.mu.Lock()
	for _, op := range ops {
		switch op.Kind {
		case ChangeSet:
			stored := ms.applySet(op.Collection, op.ID, op.Doc, op.Merge)
			changes = append(changes, Change{
				Collection: op.Collection, ID: op.ID,
				Kind: ChangeSet, Doc: stored, Timestamp: now,
			})
		case ChangeDelete:
			if _, ok := ms.data[op.Collection][op.ID]; ok {
				delete(ms.data[op.Collection], op.ID)
				changes = append(changes, Change{
					Collection: op.Collection, ID: op.ID,
					Kind: ChangeDelete, Timestamp: now,
				})
			}
		default:
			ms.mu.Unlock()
			return fmt.Errorf("unknown batch op kind %q", op.Kind)
		}
	}
	ms.mu.Unlock()

	for _, c := range changes {
		if err := ms.emit(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe returns a cancellable handle delivering changes for one
// collection in commit order. Slow consumers drop changes rather than
// block writers.
func (ms *MemoryStore) Subscribe(collection string) *Subscription {
	sub := &memSub{ch: make(chan Change, 64)}

	ms.mu.Lock()
	if ms.subs[collection] == nil {
		ms.subs[collection] = make(map[int]*memSub)
	}
	id := ms.nextSubID
	ms.nextSubID++
	ms.subs[collection][id] = sub
	ms.mu.Unlock()

	return &Subscription{
		C: sub.ch,
		cancel: func() {
			ms.mu.Lock()
			if _, ok := ms.subs[collection][id]; ok {
				delete(ms.subs[collection], id)
				close(sub.ch)
			}
			ms.mu.Unlock()
		},
	}
}

// applySet stores the document normalized through a JSON round trip so all
// drivers agree on field value types. Caller holds the write lock.
func (ms *MemoryStore) applySet(collection, id string, doc Document, merge bool) Document {
	if ms.data[collection] == nil {
		ms.data[collection] = make(map[string]Document)
	}
	normalized := doc.Clone()
	if merge {
		if current, ok := ms.data[collection][id]; ok {
			merged := current.Clone()
			for k, v := range normalized {
				merged[k] = v
			}
			normalized = merged
		}
	}
	ms.data[collection][id] = normalized
	return normalized.Clone()
}

func (ms *MemoryStore) emit(ctx context.Context, c Change) error {
	ms.mu.RLock()
	for _, sub := range ms.subs[c.Collection] {
		select {
		case sub.ch <- c:
		default:
		}
	}
	ms.mu.RUnlock()

	if ms.publisher != nil {
		if err := ms.publisher.Publish(ctx, c.Collection+"/"+c.ID, c); err != nil {
			return err
		}
	}
	return nil
}

func matchesFilters(doc Document, filters []Filter) bool {
	for _, f := range filters {
		if !valuesEqual(doc[f.Field], f.Value) {
			return false
		}
	}
	return true
}

// valuesEqual compares loosely across the int/float divide introduced by
// JSON decoding.
func valuesEqual(a, b any) bool {
	if an, aok := asFloat(a); aok {
		bn, bok := asFloat(b)
		return bok && an == bn
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func sortDocs(docs []Document, field string, descending bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		less := docLess(docs[i][field], docs[j][field])
		if descending {
			return docLess(docs[j][field], docs[i][field])
		}
		return less
	})
}

func docLess(a, b any) bool {
	if an, aok := asFloat(a); aok {
		bn, bok := asFloat(b)
		return bok && an < bn
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	return aok && bok && as < bs
}
