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

package reflectemit

import (
	"reflect"
	"sync"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/emit"
)

// instance is a value of a concreteType. Field access is serialized by mu;
// method bodies run without holding it.
type instance struct {
	typ *concreteType
	mu  sync.RWMutex
	v   reflect.Value
}

var _ emit.Instance = (*instance)(nil)

func newInstance(t *concreteType) *instance {
	return &instance{typ: t, v: reflect.New(t.layout).Elem()}
}

func (i *instance) Type() emit.ConcreteType { return i.typ }

func (i *instance) String() string { return i.typ.name }

func (i *instance) Field(name string) (reflect.Value, error) {
	return i.load([]string{name})
}

func (i *instance) SetField(name string, v reflect.Value) error {
	return i.store([]string{name}, v)
}

func (i *instance) Invoke(method string, args ...reflect.Value) ([]reflect.Value, error) {
	m, ok := i.typ.methodIdx[method]
	if !ok {
		return nil, apis.Fail(apis.ErrNoMethod, "method", method, "type", i.typ.name)
	}
	def := i.typ.methods[m]
	in, err := exactAll(args, def.sig)
	if err != nil {
		return nil, with(err, "method", method)
	}
	return def.run(i, in)
}

func (i *instance) walk(path []string) (reflect.Value, error) {
	idx, ok := i.typ.fieldIdx[path[0]]
	if !ok {
		return reflect.Value{}, apis.Fail(apis.ErrEmission, "field", path[0], "type", i.typ.name)
	}
	v := i.v.Field(idx)
	for _, name := range path[1:] {
		f, err := fieldOf(v, name)
		if err != nil {
			return reflect.Value{}, err
		}
		v = f
	}
	return v, nil
}

// load returns a copy of the field at path. Struct values are returned in
// place.
func (i *instance) load(path []string) (reflect.Value, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, err := i.walk(path)
	if err != nil {
		return reflect.Value{}, err
	}
	if v.Kind() == reflect.Struct {
		return v, nil
	}
	cp := reflect.New(v.Type()).Elem()
	cp.Set(v)
	return cp, nil
}

func (i *instance) store(path []string, x reflect.Value) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	v, err := i.walk(path)
	if err != nil {
		return err
	}
	if !v.CanSet() {
		return apis.Fail(apis.ErrArguments, "field", path[len(path)-1], "reason", "not settable")
	}
	cv, err := exact(x, v.Type())
	if err != nil {
		return with(err, "field", path[len(path)-1])
	}
	v.Set(cv)
	return nil
}
