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

// Package introspect implements apis.Introspector on top of reflect.
//
// Go has no runtime generic instantiation, so open generic definitions are
// modeled as instantiations over the placeholder types T1, T2 and T3, and
// Instantiate resolves closed types among instantiations registered with
// Register.
package introspect

import (
	"reflect"
	"slices"
	"strings"
	"sync"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/config"
	uref "dirpx.dev/dpx/utils/reflect"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Placeholder type parameters. Box[T1] stands for the definition of Box.
type (
	T1 struct{}
	T2 struct{}
	T3 struct{}
)

var placeholders = []reflect.Type{
	reflect.TypeOf(T1{}),
	reflect.TypeOf(T2{}),
	reflect.TypeOf(T3{}),
}

// Introspector is the reflect-backed apis.Introspector. Member tables are
// memoized per type in a bounded LRU.
type Introspector struct {
	memo *lru.Cache[reflect.Type, []apis.Method]

	mu       sync.RWMutex
	generics map[string][]reflect.Type // family -> registered instantiations
}

// Ensure Introspector implements apis.Introspector.
var _ apis.Introspector = (*Introspector)(nil)

// New creates an Introspector memoizing up to size types. A non-positive
// size uses config.DefaultMemoSize.
func New(size int) *Introspector {
	if size <= 0 {
		size = config.DefaultMemoSize
	}
	memo, err := lru.New[reflect.Type, []apis.Method](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &Introspector{memo: memo, generics: make(map[string][]reflect.Type)}
}

// Methods enumerates the members of t. Struct classes (or pointers to them)
// yield the exported methods of *T with sealed members marked not
// overridable; interfaces yield their flattened method set. Results are
// sorted by name.
func (i *Introspector) Methods(t reflect.Type) ([]apis.Method, error) {
	if t == nil {
		return nil, apis.ErrNilType
	}
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		t = t.Elem()
	}
	if ms, ok := i.memo.Get(t); ok {
		return slices.Clone(ms), nil
	}

	var ms []apis.Method
	switch t.Kind() {
	case reflect.Interface:
		ms = interfaceMethods(t)
	case reflect.Struct:
		ms = classMethods(t)
	default:
		return nil, apis.Fail(apis.ErrNotClass, "type", t.String())
	}
	i.memo.Add(t, ms)
	return slices.Clone(ms), nil
}

// ResolveOverride finds the member of target implementing m.
func (i *Introspector) ResolveOverride(m apis.Method, target reflect.Type) (apis.Method, bool) {
	if target == nil {
		return apis.Method{}, false
	}
	owner := target
	if target.Kind() == reflect.Struct {
		target = reflect.PointerTo(target)
	} else if target.Kind() == reflect.Pointer {
		owner = target.Elem()
	}
	rm, ok := target.MethodByName(m.Name)
	if !ok {
		return apis.Method{}, false
	}
	ft := rm.Type
	if target.Kind() != reflect.Interface {
		ft = withoutReceiver(ft)
	}
	if ft != m.Type {
		return apis.Method{}, false
	}
	return apis.Method{Name: m.Name, Owner: owner, Type: ft, Overridable: true}, true
}

// IsOpenGeneric reports whether t is instantiated over a placeholder.
func (i *Introspector) IsOpenGeneric(t reflect.Type) bool {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for _, arg := range uref.GenericArgs(t) {
		for _, p := range placeholders {
			if strings.Contains(arg, uref.TypeArgString(p)) {
				return true
			}
		}
	}
	return false
}

// Register records closed instantiations so Instantiate can find them.
func (i *Introspector) Register(types ...reflect.Type) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, t := range types {
		family, ok := uref.GenericFamily(t)
		if !ok || slices.Contains(i.generics[family], t) {
			continue
		}
		i.generics[family] = append(i.generics[family], t)
	}
}

// Instantiate closes def over args. Placeholder Tn in def is replaced by
// args[n-1]; the result must have been registered.
func (i *Introspector) Instantiate(def reflect.Type, args ...reflect.Type) (reflect.Type, error) {
	if def == nil {
		return nil, apis.ErrNilType
	}
	family, ok := uref.GenericFamily(def)
	if !ok || !i.IsOpenGeneric(def) {
		return nil, apis.Fail(apis.ErrOpenGeneric, "type", def.String(), "reason", "not a generic definition")
	}
	want := uref.GenericArgs(def)
	for n, p := range placeholders {
		if n >= len(args) {
			break
		}
		ps, as := uref.TypeArgString(p), uref.TypeArgString(args[n])
		for k := range want {
			want[k] = strings.ReplaceAll(want[k], ps, as)
		}
	}

	i.mu.RLock()
	defer i.mu.RUnlock()
	for _, cand := range i.generics[family] {
		if slices.Equal(uref.GenericArgs(cand), want) {
			return cand, nil
		}
	}
	return nil, apis.Fail(apis.ErrUnknownTypeName,
		"type", family+"["+strings.Join(want, ",")+"]",
		"reason", "instantiation not registered")
}

func interfaceMethods(t reflect.Type) []apis.Method {
	out := make([]apis.Method, 0, t.NumMethod())
	for k := 0; k < t.NumMethod(); k++ {
		m := t.Method(k)
		out = append(out, apis.Method{Name: m.Name, Owner: t, Type: m.Type, Overridable: true})
	}
	return out
}

func classMethods(t reflect.Type) []apis.Method {
	pt := reflect.PointerTo(t)
	sealed := map[string]bool{}
	if pt.Implements(apis.SealerType) {
		for _, name := range reflect.New(t).Interface().(apis.Sealer).SealedMethods() {
			sealed[name] = true
		}
	}
	out := make([]apis.Method, 0, pt.NumMethod())
	for k := 0; k < pt.NumMethod(); k++ {
		m := pt.Method(k)
		if m.Name == apis.MethodSealedMethods && pt.Implements(apis.SealerType) {
			continue
		}
		out = append(out, apis.Method{
			Name:        m.Name,
			Owner:       t,
			Type:        withoutReceiver(m.Type),
			Overridable: !sealed[m.Name],
		})
	}
	return out
}

func withoutReceiver(ft reflect.Type) reflect.Type {
	in := make([]reflect.Type, 0, ft.NumIn()-1)
	for k := 1; k < ft.NumIn(); k++ {
		in = append(in, ft.In(k))
	}
	out := make([]reflect.Type, ft.NumOut())
	for k := range out {
		out[k] = ft.Out(k)
	}
	return reflect.FuncOf(in, out, ft.IsVariadic())
}
