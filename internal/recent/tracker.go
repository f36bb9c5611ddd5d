// Package recent keeps a bounded, most-recently-used list of viewed items in
// a durable key-value slot.
package recent

//go:generate mockgen -destination=mocks/mock_storage.go -package=mocks github.com/nhle/plant-care/internal/recent Storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

const (
	// DefaultCapacity is the number of items kept when no capacity is configured.
	DefaultCapacity = 6

	// DefaultKey is the storage slot the sequence is persisted under.
	DefaultKey = "recentlyViewedPlants"
)

// ErrEmptyID is returned when an item without an identifier is recorded.
var ErrEmptyID = errors.New("recent: item id is empty")

// Storage is a durable string slot store.
type Storage interface {
	// Get returns the value stored under key. found is false when the key
	// has never been written.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// StorageWriteError reports that the updated sequence could not be persisted.
type StorageWriteError struct {
	Key string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("persisting recent items under %q: %v", e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// Item is one cached entry. Payload is a JSON snapshot of the entity taken
// when the view was recorded.
type Item struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// Decode unmarshals the payload snapshot of item into a T.
func Decode[T any](item Item) (T, error) {
	var v T
	if len(item.Payload) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(item.Payload, &v); err != nil {
		return v, fmt.Errorf("decoding recent item %s: %w", item.ID, err)
	}
	return v, nil
}

// Others returns items without the entry whose id matches excludeID.
func Others(items []Item, excludeID string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.ID != excludeID {
			out = append(out, it)
		}
	}
	return out
}

// Tracker maintains the recency sequence. Methods are safe for concurrent
// use within one process.
type Tracker struct {
	mu       sync.Mutex
	storage  Storage
	key      string
	capacity int
	logger   zerolog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithCapacity sets the default capacity. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.capacity = n
		}
	}
}

// WithKey overrides the storage slot name.
func WithKey(key string) Option {
	return func(t *Tracker) {
		if key != "" {
			t.key = key
		}
	}
}

// WithLogger sets the logger used to report corrupt or unreadable state.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// New creates a Tracker backed by storage.
func New(storage Storage, opts ...Option) *Tracker {
	t := &Tracker{
		storage:  storage,
		key:      DefaultKey,
		capacity: DefaultCapacity,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Capacity returns the configured default capacity.
func (t *Tracker) Capacity() int { return t.capacity }

// RecordView moves id to the front of the sequence with a snapshot of
// payload, evicting from the tail beyond the default capacity. The returned
// slice is the sequence as persisted.
func (t *Tracker) RecordView(ctx context.Context, id string, payload any) ([]Item, error) {
	return t.RecordViewWithCapacity(ctx, id, payload, t.capacity)
}

// RecordViewWithCapacity is RecordView with an explicit capacity.
func (t *Tracker) RecordViewWithCapacity(ctx context.Context, id string, payload any, capacity int) ([]Item, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	if capacity < 1 {
		capacity = t.capacity
	}

	snapshot, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("snapshotting recent item %s: %w", id, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	current := t.load(ctx)

	next := make([]Item, 0, capacity)
	next = append(next, Item{ID: id, Payload: snapshot})
	for _, it := range current {
		if len(next) == capacity {
			break
		}
		if it.ID == id {
			continue
		}
		next = append(next, it)
	}

	if err := t.persist(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Refresh replaces the snapshot of id in place, keeping the order. When id
// is not cached nothing is written. The sequence is persisted in one write.
func (t *Tracker) Refresh(ctx context.Context, id string, payload any) ([]Item, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	snapshot, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("snapshotting recent item %s: %w", id, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	items := t.load(ctx)
	i := slices.IndexFunc(items, func(it Item) bool { return it.ID == id })
	if i < 0 {
		return items, nil
	}
	items[i].Payload = snapshot
	if err := t.persist(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveItem deletes id from the sequence. Removing an absent id is a no-op
// apart from rewriting the unchanged sequence.
func (t *Tracker) RemoveItem(ctx context.Context, id string) ([]Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := Others(t.load(ctx), id)
	if err := t.persist(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Clear empties the sequence.
func (t *Tracker) Clear(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.persist(ctx, []Item{})
}

// LoadAll returns the persisted sequence, or an empty one when nothing valid
// is stored.
func (t *Tracker) LoadAll(ctx context.Context) ([]Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(ctx), nil
}

// load never fails: the cache is non-authoritative, so unreadable or corrupt
// state is treated as empty and overwritten on the next write.
func (t *Tracker) load(ctx context.Context) []Item {
	raw, found, err := t.storage.Get(ctx, t.key)
	if err != nil {
		t.logger.Warn().Err(err).Str("key", t.key).Msg("reading recent items failed, treating as empty")
		return []Item{}
	}
	if !found || raw == "" {
		return []Item{}
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		t.logger.Warn().Err(err).Str("key", t.key).Msg("recent items are corrupt, treating as empty")
		return []Item{}
	}

	// Drop entries that break the uniqueness invariant, keeping the first.
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}

func (t *Tracker) persist(ctx context.Context, items []Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return &StorageWriteError{Key: t.key, Err: err}
	}
	if err := t.storage.Set(ctx, t.key, string(data)); err != nil {
		return &StorageWriteError{Key: t.key, Err: err}
	}
	return nil
}
