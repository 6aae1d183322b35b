package engine

import (
	"fmt"
	"sort"
	"sync"
)

// KeyLocks serializes check-then-act sequences per resource. Two
// concurrent transitions touching the same raw material or product must
// not both read a stock level that looks sufficient before either
// commits; holding the resource's key for the duration of the
// check-and-write closes that race without blocking unrelated resources.
//
// Locks are in-process. The stores serialize writes at the database
// level too, but only the key lock makes the read-check-write span
// atomic per resource.
type KeyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyLocks() *KeyLocks {
	return &KeyLocks{locks: make(map[string]*sync.Mutex)}
}

// MaterialKey is the lock key for a raw material.
func MaterialKey(id int64) string { return fmt.Sprintf("material:%d", id) }

// ProductKey is the lock key for a finished product.
func ProductKey(id int64) string { return fmt.Sprintf("product:%d", id) }

func (kl *KeyLocks) get(key string) *sync.Mutex {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	m, ok := kl.locks[key]
	if !ok {
		m = &sync.Mutex{}
		kl.locks[key] = m
	}
	return m
}

// Lock acquires a single resource key. Returns the unlock function.
func (kl *KeyLocks) Lock(key string) func() {
	m := kl.get(key)
	m.Lock()
	return m.Unlock
}

// LockAll acquires several resource keys. Keys are deduplicated and
// acquired in sorted order so two callers locking overlapping sets can
// never deadlock. Returns the unlock function.
func (kl *KeyLocks) LockAll(keys []string) func() {
	uniq := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		uniq[k] = struct{}{}
	}
	ordered := make([]string, 0, len(uniq))
	for k := range uniq {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)

	held := make([]*sync.Mutex, 0, len(ordered))
	for _, k := range ordered {
		m := kl.get(k)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		// Release in reverse acquisition order.
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
