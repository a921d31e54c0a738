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

package cache_test

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/cache"
	"dirpx.dev/dpx/config"
	"dirpx.dev/dpx/metrics"
)

type (
	iFoo interface{ Get() int }
	iBar interface{ Put(int) }
	base struct{}
)

var (
	fooT  = reflect.TypeOf((*iFoo)(nil)).Elem()
	barT  = reflect.TypeOf((*iBar)(nil)).Elem()
	baseT = reflect.TypeOf(base{})
)

type sliceHook struct {
	apis.AllMethodsHook
	names []string
}

type anyHook struct {
	apis.AllMethodsHook
	Extra any
}

type levelHook struct {
	apis.AllMethodsHook
	Level int
}

func extraA() reflect.Type {
	type Extra interface{ A() }
	return reflect.TypeOf((*Extra)(nil)).Elem()
}

func extraB() reflect.Type {
	type Extra interface{ B() }
	return reflect.TypeOf((*Extra)(nil)).Elem()
}

type countingLock struct {
	sync.RWMutex
	writes atomic.Int32
}

func (l *countingLock) Lock() {
	l.writes.Add(1)
	l.RWMutex.Lock()
}

func key(t *testing.T, kind apis.Kind, b reflect.Type, ifaces ...reflect.Type) cache.Key {
	t.Helper()
	k, err := cache.NewKey(kind, b, ifaces, config.DefaultOptions())
	require.NoError(t, err)
	return k
}

func TestKey_InterfacesAreASet(t *testing.T) {
	a := key(t, apis.KindClass, baseT, fooT, barT, fooT)
	b := key(t, apis.KindClass, baseT, barT, fooT)
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Equal(t, a.Descriptor(), b.Descriptor())
	assert.Len(t, a.Interfaces(), 2)

	c := key(t, apis.KindClassWithTarget, baseT, barT, fooT)
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Descriptor(), c.Descriptor())
}

func TestKey_RejectsOptionsWithoutEquality(t *testing.T) {
	_, err := cache.NewKey(apis.KindClass, baseT, nil, config.NewOptions(config.WithHook(sliceHook{names: []string{"x"}})))
	assert.ErrorIs(t, err, apis.ErrOptionsEquality)
	assert.ErrorIs(t, err, apis.ErrConfiguration)
}

func TestKey_SameNamedInterfacesAreASet(t *testing.T) {
	a, b := extraA(), extraB()
	require.Equal(t, a.String(), b.String())

	k1 := key(t, apis.KindInterfaceWithoutTarget, fooT, a, b)
	k2 := key(t, apis.KindInterfaceWithoutTarget, fooT, b, a)
	assert.True(t, k1.Equal(k2))
	assert.Equal(t, k1.Hash(), k2.Hash())

	c := cache.New[*int](nil, metrics.New("test", nil), metrics.CacheProxy)
	var calls atomic.Int32
	factory := func() (*int, error) {
		calls.Add(1)
		return new(int), nil
	}
	v1, err := c.GetOrCreate(k1, factory)
	require.NoError(t, err)
	v2, err := c.GetOrCreate(k2, factory)
	require.NoError(t, err)
	assert.Same(t, v1, v2)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestKey_RejectsHooksHoldingIncomparableValues(t *testing.T) {
	opts := config.NewOptions(config.WithHook(anyHook{Extra: []int{1}}))
	require.NotPanics(t, func() {
		_, err := cache.NewKey(apis.KindClass, baseT, nil, opts)
		assert.ErrorIs(t, err, apis.ErrOptionsEquality)
	})
	require.NotPanics(t, func() {
		assert.False(t, opts.Equal(opts))
	})

	_, err := cache.NewKey(apis.KindClass, baseT, nil, config.NewOptions(config.WithHook(anyHook{Extra: 1})))
	assert.NoError(t, err)
}

func TestKey_DescriptorDistinguishesHookValues(t *testing.T) {
	one, err := cache.NewKey(apis.KindClass, baseT, nil, config.NewOptions(config.WithHook(levelHook{Level: 1})))
	require.NoError(t, err)
	two, err := cache.NewKey(apis.KindClass, baseT, nil, config.NewOptions(config.WithHook(levelHook{Level: 2})))
	require.NoError(t, err)
	again, err := cache.NewKey(apis.KindClass, baseT, nil, config.NewOptions(config.WithHook(levelHook{Level: 1})))
	require.NoError(t, err)

	assert.False(t, one.Equal(two))
	assert.NotEqual(t, one.Descriptor(), two.Descriptor())
	assert.True(t, one.Equal(again))
	assert.Equal(t, one.Descriptor(), again.Descriptor())
}

func TestTypeCache_GeneratesOnce(t *testing.T) {
	m := metrics.New("test", nil)
	c := cache.New[*int](nil, m, metrics.CacheProxy)
	k := key(t, apis.KindInterfaceWithoutTarget, fooT)

	var calls atomic.Int32
	factory := func() (*int, error) {
		calls.Add(1)
		v := 42
		return &v, nil
	}

	const n = 32
	results := make([]*int, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			v, err := c.GetOrCreate(k, factory)
			results[i] = v
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues(metrics.CacheProxy)))
	assert.Equal(t, float64(n-1), testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues(metrics.CacheProxy)))
}

func TestTypeCache_FailuresAreNotCached(t *testing.T) {
	lock := &countingLock{}
	c := cache.New[string](lock, nil, metrics.CacheProxy)
	k := key(t, apis.KindInterfaceWithoutTarget, fooT)
	boom := errors.New("boom")

	_, err := c.GetOrCreate(k, func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	assert.Panics(t, func() {
		_, _ = c.GetOrCreate(k, func() (string, error) { panic("factory") })
	})

	v, err := c.GetOrCreate(k, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int32(3), lock.writes.Load())

	v, err = c.GetOrCreate(k, func() (string, error) { return "again", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int32(3), lock.writes.Load())
}

func TestTypeCache_PutAndEntries(t *testing.T) {
	c := cache.New[string](nil, nil, metrics.CacheProxy)
	a := key(t, apis.KindClass, baseT)
	b := key(t, apis.KindClassWithTarget, baseT)

	assert.True(t, c.Put(a, "a"))
	assert.False(t, c.Put(a, "again"))
	assert.True(t, c.Put(b, "b"))

	got := map[string]bool{}
	for _, e := range c.Entries() {
		got[e.Value] = true
	}
	assert.Equal(t, map[string]bool{"a": true, "b": true}, got)

	v, ok := c.Get(a)
	require.True(t, ok)
	assert.Equal(t, "a", v)
}
