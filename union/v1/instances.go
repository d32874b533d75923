package v1

import "sync"

// Instances maps keys to lazily created values and guarantees that at most
// one value is ever created per key, even when many goroutines race for the
// same key. All creations of one Instances are serialized by a single mutex;
// writes are rare and reads dominate once the map is warm.
//
// The zero value is ready to use. Entries are never evicted.
type Instances[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]V
}

// GetOrCreate returns the value stored for key. If there is none, create is
// called exactly once, its result is stored and returned. When create fails
// nothing is stored and the error is returned, so a later call may retry.
//
// create runs while the Instances is locked and must not call back into the
// same Instances.
func (i *Instances[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if v, ok := i.entries[key]; ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	if i.entries == nil {
		i.entries = make(map[K]V)
	}
	i.entries[key] = v
	return v, nil
}

// Get returns the value stored for key, if any.
func (i *Instances[K, V]) Get(key K) (V, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	v, ok := i.entries[key]
	return v, ok
}

// Len returns the number of stored values.
func (i *Instances[K, V]) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.entries)
}
