/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package cache

import (
	"sync"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/metrics"
)

// Entry is a cached (key, value) pair.
type Entry[T any] struct {
	Key   Key
	Value T
}

// TypeCache maps shapes to generated types. Lookups share a read lock;
// generation holds the write lock and re-checks before calling the
// factory, so a key is generated at most once.
type TypeCache[T any] struct {
	lock    apis.RWLocker
	metrics *metrics.Metrics
	label   string

	buckets map[uint64][]Entry[T]
	n       int
}

// New returns an empty cache guarded by lock (a fresh sync.RWMutex when
// nil). Hits and misses are counted under label.
func New[T any](lock apis.RWLocker, m *metrics.Metrics, label string) *TypeCache[T] {
	if lock == nil {
		lock = &sync.RWMutex{}
	}
	return &TypeCache[T]{lock: lock, metrics: m, label: label, buckets: make(map[uint64][]Entry[T])}
}

func (c *TypeCache[T]) find(k Key) (T, bool) {
	for _, e := range c.buckets[k.Hash()] {
		if e.Key.Equal(k) {
			return e.Value, true
		}
	}
	var zero T
	return zero, false
}

// Get returns the value cached for k.
func (c *TypeCache[T]) Get(k Key) (T, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.find(k)
}

// GetOrCreate returns the value cached for k, calling factory to create it
// on a miss. Factory errors and panics leave k absent.
func (c *TypeCache[T]) GetOrCreate(k Key, factory func() (T, error)) (T, error) {
	if err := k.Options().Validate(); err != nil {
		var zero T
		return zero, err
	}
	if v, ok := c.Get(k); ok {
		c.metrics.Hit(c.label)
		return v, nil
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	if v, ok := c.find(k); ok {
		c.metrics.Hit(c.label)
		return v, nil
	}
	c.metrics.Miss(c.label)

	v, err := factory()
	c.metrics.Generated(c.label, err)
	if err != nil {
		var zero T
		return zero, err
	}
	c.insert(k, v)
	return v, nil
}

// Put stores v under k unless k is present. It reports whether v was
// stored.
func (c *TypeCache[T]) Put(k Key, v T) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if _, ok := c.find(k); ok {
		return false
	}
	c.insert(k, v)
	return true
}

func (c *TypeCache[T]) insert(k Key, v T) {
	c.buckets[k.Hash()] = append(c.buckets[k.Hash()], Entry[T]{Key: k, Value: v})
	c.n++
}

// Len returns the number of cached entries.
func (c *TypeCache[T]) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.n
}

// Entries returns a snapshot of the cache (order is unspecified).
func (c *TypeCache[T]) Entries() []Entry[T] {
	c.lock.RLock()
	defer c.lock.RUnlock()
	out := make([]Entry[T], 0, c.n)
	for _, b := range c.buckets {
		out = append(out, b...)
	}
	return out
}
