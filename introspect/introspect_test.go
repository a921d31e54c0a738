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

package introspect_test

import (
	"reflect"
	"testing"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/introspect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Store interface {
	Get(key string) (int, error)
	Put(key string, v int)
}

type Base struct{}

func (*Base) Get(key string) (int, error) { return len(key), nil }
func (*Base) Put(string, int)             {}
func (*Base) Close() error                { return nil }
func (*Base) SealedMethods() []string     { return []string{"Close"} }

type Other struct{}

func (*Other) Get(key string, _ bool) (int, error) { return 0, nil }

type Box[T any] struct{ V T }

type Mapper[K comparable, V any] interface {
	Map(K) V
}

func TestMethods_Class(t *testing.T) {
	in := introspect.New(0)
	ms, err := in.Methods(reflect.TypeOf(Base{}))
	require.NoError(t, err)

	names := make([]string, 0, len(ms))
	for _, m := range ms {
		names = append(names, m.Name)
		assert.Equal(t, reflect.TypeOf(Base{}), m.Owner)
	}
	assert.Equal(t, []string{"Close", "Get", "Put"}, names)
	assert.False(t, ms[0].Overridable, "Close is sealed")
	assert.True(t, ms[1].Overridable)
	assert.Equal(t, reflect.TypeOf(func(string) (int, error) { return 0, nil }), ms[1].Type)

	// Pointer input resolves to the same table.
	ms2, err := in.Methods(reflect.TypeOf(&Base{}))
	require.NoError(t, err)
	assert.Equal(t, ms, ms2)
}

func TestMethods_Interface(t *testing.T) {
	in := introspect.New(4)
	ms, err := in.Methods(reflect.TypeOf((*Store)(nil)).Elem())
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "Get", ms[0].Name)
	assert.True(t, ms[0].ReturnsError())
	assert.Equal(t, "Put", ms[1].Name)
}

func TestMethods_RejectsNonClass(t *testing.T) {
	in := introspect.New(4)
	_, err := in.Methods(reflect.TypeOf(42))
	assert.ErrorIs(t, err, apis.ErrNotClass)
	_, err = in.Methods(nil)
	assert.ErrorIs(t, err, apis.ErrNilType)
}

func TestMethods_ResultsAreCopies(t *testing.T) {
	in := introspect.New(4)
	ms, err := in.Methods(reflect.TypeOf(Base{}))
	require.NoError(t, err)
	ms[0].Name = "Mutated"

	again, err := in.Methods(reflect.TypeOf(Base{}))
	require.NoError(t, err)
	assert.Equal(t, "Close", again[0].Name)
}

func TestResolveOverride(t *testing.T) {
	in := introspect.New(4)
	ms, err := in.Methods(reflect.TypeOf((*Store)(nil)).Elem())
	require.NoError(t, err)
	get := ms[0]

	got, ok := in.ResolveOverride(get, reflect.TypeOf(&Base{}))
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(Base{}), got.Owner)
	assert.Equal(t, get.Type, got.Type)

	_, ok = in.ResolveOverride(get, reflect.TypeOf(Base{}))
	assert.True(t, ok, "struct targets resolve through their pointer")

	_, ok = in.ResolveOverride(get, reflect.TypeOf(&Other{}))
	assert.False(t, ok, "different signature")

	_, ok = in.ResolveOverride(get, nil)
	assert.False(t, ok)
}

func TestOpenGenerics(t *testing.T) {
	in := introspect.New(4)
	def := reflect.TypeOf(Box[introspect.T1]{})
	assert.True(t, in.IsOpenGeneric(def))
	assert.True(t, in.IsOpenGeneric(reflect.TypeOf(&Box[introspect.T1]{})))
	assert.True(t, in.IsOpenGeneric(reflect.TypeOf((*Mapper[string, introspect.T2])(nil)).Elem()))
	assert.False(t, in.IsOpenGeneric(reflect.TypeOf(Box[int]{})))
	assert.False(t, in.IsOpenGeneric(reflect.TypeOf(Base{})))
}

func TestInstantiate(t *testing.T) {
	in := introspect.New(4)
	def := reflect.TypeOf(Box[introspect.T1]{})

	_, err := in.Instantiate(def, reflect.TypeOf(0))
	assert.ErrorIs(t, err, apis.ErrUnknownTypeName)

	in.Register(reflect.TypeOf(Box[int]{}), reflect.TypeOf(Box[string]{}))
	got, err := in.Instantiate(def, reflect.TypeOf(""))
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(Box[string]{}), got)

	_, err = in.Instantiate(reflect.TypeOf(Box[int]{}), reflect.TypeOf(""))
	assert.ErrorIs(t, err, apis.ErrOpenGeneric)
}
