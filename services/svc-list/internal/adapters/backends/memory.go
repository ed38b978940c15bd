package backends

import (
	"context"
	"sync"

	"github.com/architeacher/device-list/services/svc-list/internal/domain/model"
)

// MemoryBackend keeps the list in process memory. Failures can be injected to
// exercise degraded reads and failed writes.
type MemoryBackend struct {
	mu         sync.RWMutex
	list       model.List
	loadErr    error
	replaceErr error
	replaces   int
}

func NewMemoryBackend(initial model.List) *MemoryBackend {
	return &MemoryBackend{list: initial.Clone()}
}

func (b *MemoryBackend) Name() string {
	return "memory"
}

func (b *MemoryBackend) Load(_ context.Context) (model.List, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.loadErr != nil {
		return nil, b.loadErr
	}

	return b.list.Clone(), nil
}

func (b *MemoryBackend) Replace(_ context.Context, list model.List) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.replaceErr != nil {
		return b.replaceErr
	}

	b.list = list.Clone()
	b.replaces++

	return nil
}

func (b *MemoryBackend) Ping(_ context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.loadErr
}

func (b *MemoryBackend) FailLoads(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.loadErr = err
}

func (b *MemoryBackend) FailReplaces(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.replaceErr = err
}

// Replaces reports how many successful Replace calls were made.
func (b *MemoryBackend) Replaces() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.replaces
}
