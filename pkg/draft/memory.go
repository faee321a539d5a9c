package draft

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryBackend is an in-process Backend used for offline sessions and
// tests. It counts calls so callers can assert on commit traffic.
type MemoryBackend struct {
	mu      sync.Mutex
	records map[Identity]Record
	creates int
	updates int
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[Identity]Record)}
}

func (b *MemoryBackend) Create(_ context.Context, rec Record) (Identity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := Identity(uuid.NewString())
	b.records[id] = rec
	b.creates++
	return id, nil
}

func (b *MemoryBackend) Update(_ context.Context, id Identity, rec Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.records[id]; !ok {
		return ErrNotFound
	}
	b.records[id] = rec
	b.updates++
	return nil
}

func (b *MemoryBackend) Get(_ context.Context, id Identity) (Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Put seeds a record under a known identity.
func (b *MemoryBackend) Put(id Identity, rec Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[id] = rec
}

// Creates returns the number of Create calls that succeeded.
func (b *MemoryBackend) Creates() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.creates
}

// Updates returns the number of Update calls that succeeded.
func (b *MemoryBackend) Updates() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updates
}
