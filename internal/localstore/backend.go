package localstore

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/desertthunder/carekeep/internal/shared"
)

// Backend is a synchronous string-keyed store.
type Backend interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// KeyLister is implemented by backends that can enumerate their keys.
type KeyLister interface {
	Keys(prefix string) ([]string, error)
}

// MemoryBackend keeps values in a map. A positive quota bounds the total bytes of keys and values.
type MemoryBackend struct {
	mu    sync.RWMutex
	data  map[string]string
	quota int
	used  int
}

// NewMemoryBackend creates an empty [MemoryBackend]. A quota of 0 means unbounded.
func NewMemoryBackend(quota int) *MemoryBackend {
	return &MemoryBackend{data: make(map[string]string), quota: quota}
}

func (b *MemoryBackend) Get(key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v, ok := b.data[key]
	return v, ok, nil
}

func (b *MemoryBackend) Set(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	used := b.used + len(value)
	if old, ok := b.data[key]; ok {
		used -= len(old)
	} else {
		used += len(key)
	}

	if b.quota > 0 && used > b.quota {
		return fmt.Errorf("%w: %d of %d bytes", shared.ErrQuotaExceeded, used, b.quota)
	}

	b.data[key] = value
	b.used = used
	return nil
}

func (b *MemoryBackend) Remove(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.data[key]; ok {
		b.used -= len(key) + len(old)
		delete(b.data, key)
	}
	return nil
}

// Len returns the number of stored keys.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Keys returns every stored key with the given prefix, in key order.
func (b *MemoryBackend) Keys(prefix string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var keys []string
	for k := range b.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
