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

// Package meta is the member model of a proxy type under construction.
// Contributors collect members into a MetaType; the assembler seals it
// before any code is emitted.
package meta

import (
	"reflect"
	"sort"
	"strings"

	"dirpx.dev/dpx/apis"
)

// MetaMethod is the disposition of one member of the proxy.
type MetaMethod struct {
	// Method is the member as declared on the proxied type.
	Method apis.Method
	// MethodOnTarget is the implementation the call ends in. Valid when
	// HasTarget is set.
	MethodOnTarget apis.Method
	HasTarget      bool
	// Proxyable members are routed through the interceptor chain; the
	// others are forwarded directly.
	Proxyable bool
	// Ignore drops the member from emission. Another contributor emits it.
	Ignore bool
	// Standalone members belong to the class itself rather than to one of
	// the proxied interfaces.
	Standalone bool
	// Owner names the contributor that claimed the member.
	Owner string
}

// Name is the member name.
func (m *MetaMethod) Name() string { return m.Method.Name }

// MetaProperty groups a getter X and an optional setter SetX.
type MetaProperty struct {
	Name   string
	Getter *MetaMethod
	Setter *MetaMethod
}

// MetaEvent groups AddX and RemoveX.
type MetaEvent struct {
	Name   string
	Add    *MetaMethod
	Remove *MetaMethod
}

// MetaType collects the members of one proxy type.
type MetaType struct {
	methods []*MetaMethod
	byName  map[string]*MetaMethod
	props   []MetaProperty
	events  []MetaEvent
	sealed  bool
}

// NewMetaType returns an empty model.
func NewMetaType() *MetaType {
	return &MetaType{byName: make(map[string]*MetaMethod)}
}

// AddMethod records m. Every member must be claimed once: a second claim
// with the same signature is an internal defect, a second claim with a
// different signature is a conflict between the proxied types.
func (t *MetaType) AddMethod(m *MetaMethod) error {
	if t.sealed {
		return apis.Fail(apis.ErrModelSealed, "method", m.Method.String())
	}
	if prev, ok := t.byName[m.Name()]; ok {
		if prev.Method.Type == m.Method.Type {
			return apis.Fail(apis.ErrDuplicateClaim,
				"method", m.Method.String(),
				"claimed_by", prev.Owner,
				"contributor", m.Owner)
		}
		return apis.Fail(apis.ErrMethodConflict,
			"method", m.Name(),
			"first", prev.Method.String(),
			"second", m.Method.String())
	}
	t.byName[m.Name()] = m
	t.methods = append(t.methods, m)
	return nil
}

// Claim is AddMethod for members that may already be claimed by a
// contributor of higher precedence. It reports whether m was added.
func (t *MetaType) Claim(m *MetaMethod) (bool, error) {
	if prev, ok := t.byName[m.Name()]; ok && prev.Method.Type == m.Method.Type && !t.sealed {
		return false, nil
	}
	if err := t.AddMethod(m); err != nil {
		return false, err
	}
	return true, nil
}

// Method returns the member named name.
func (t *MetaType) Method(name string) (*MetaMethod, bool) {
	m, ok := t.byName[name]
	return m, ok
}

// Methods returns every member in claim order.
func (t *MetaType) Methods() []*MetaMethod {
	return append([]*MetaMethod(nil), t.methods...)
}

// MethodsOf returns the members claimed by owner, in claim order.
func (t *MetaType) MethodsOf(owner string) []*MetaMethod {
	var out []*MetaMethod
	for _, m := range t.methods {
		if m.Owner == owner {
			out = append(out, m)
		}
	}
	return out
}

// Seal freezes the model and groups properties and events.
func (t *MetaType) Seal() {
	if t.sealed {
		return
	}
	t.group()
	t.sealed = true
}

// Sealed reports whether Seal was called.
func (t *MetaType) Sealed() bool { return t.sealed }

// Properties returns the grouped properties, sorted by name.
func (t *MetaType) Properties() []MetaProperty {
	return append([]MetaProperty(nil), t.props...)
}

// Events returns the grouped events, sorted by name.
func (t *MetaType) Events() []MetaEvent {
	return append([]MetaEvent(nil), t.events...)
}

func (t *MetaType) group() {
	t.props, t.events = nil, nil
	for _, m := range t.methods {
		if m.Ignore {
			continue
		}
		name, ft := m.Name(), m.Method.Type
		switch {
		case isGetter(ft):
			p := MetaProperty{Name: name, Getter: m}
			if s, ok := t.byName["Set"+name]; ok && !s.Ignore && isSetterOf(s.Method.Type, ft.Out(0)) {
				p.Setter = s
			}
			t.props = append(t.props, p)
		case strings.HasPrefix(name, "Add") && len(name) > 3 && isHandler(ft):
			r, ok := t.byName["Remove"+name[3:]]
			if ok && !r.Ignore && r.Method.Type == ft {
				t.events = append(t.events, MetaEvent{Name: name[3:], Add: m, Remove: r})
			}
		}
	}
	sort.Slice(t.props, func(i, j int) bool { return t.props[i].Name < t.props[j].Name })
	sort.Slice(t.events, func(i, j int) bool { return t.events[i].Name < t.events[j].Name })
}

// isGetter matches func() V where V is not error.
func isGetter(ft reflect.Type) bool {
	return ft.NumIn() == 0 && ft.NumOut() == 1 && ft.Out(0) != apis.ErrorType
}

func isSetterOf(ft, v reflect.Type) bool {
	return ft.NumIn() == 1 && ft.In(0) == v && !ft.IsVariadic() &&
		(ft.NumOut() == 0 || ft.NumOut() == 1 && ft.Out(0) == apis.ErrorType)
}

// isHandler matches func(F) with F a func type.
func isHandler(ft reflect.Type) bool {
	return ft.NumIn() == 1 && ft.In(0).Kind() == reflect.Func && ft.NumOut() == 0
}
