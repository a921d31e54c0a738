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

package contrib

import (
	"reflect"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/config"
	"dirpx.dev/dpx/emit"
	"dirpx.dev/dpx/invocation"
	"dirpx.dev/dpx/meta"
)

// Target claims the members of the proxied type and of the additional
// interfaces it implements. It also defines the interceptor, selector and
// target fields every later contributor relies on.
type Target struct {
	intro apis.Introspector
	kind  apis.Kind
	// proxied is the class for class kinds, the primary interface
	// otherwise.
	proxied reflect.Type
	// base is the class embedded by interface proxies, or nil.
	base       reflect.Type
	interfaces []reflect.Type
}

// NewTarget returns the target contributor. interfaces are the additional
// interfaces implemented by the proxied type.
func NewTarget(intro apis.Introspector, kind apis.Kind, proxied, base reflect.Type, interfaces []reflect.Type) *Target {
	return &Target{intro: intro, kind: kind, proxied: proxied, base: base, interfaces: interfaces}
}

// Name identifies the contributor as member owner.
func (t *Target) Name() string { return NameTarget }

// CollectElementsToProxy claims the members this contributor emits.
func (t *Target) CollectElementsToProxy(hook apis.Hook, model *meta.MetaType) error {
	c := meta.Collector{Introspector: t.intro, Hook: hook}
	if !t.kind.IsInterface() {
		ms, err := c.Class(t.proxied, NameTarget)
		if err != nil {
			return err
		}
		for _, mm := range ms {
			if err := model.AddMethod(mm); err != nil {
				return err
			}
		}
		for _, iface := range t.interfaces {
			ms, err := c.InterfaceOnClass(iface, t.proxied, NameTarget)
			if err != nil {
				return err
			}
			if err := claimAll(model, ms); err != nil {
				return err
			}
		}
		return nil
	}

	for _, iface := range append([]reflect.Type{t.proxied}, t.interfaces...) {
		ms, _, err := c.Interface(iface, nil, NameTarget)
		if err != nil {
			return err
		}
		if t.kind.HasTarget() {
			for _, mm := range ms {
				mm.MethodOnTarget, mm.HasTarget = mm.Method, true
			}
		}
		if err := claimAll(model, ms); err != nil {
			return err
		}
	}
	if t.base == nil {
		return nil
	}
	ms, err := t.intro.Methods(t.base)
	if err != nil {
		return err
	}
	for _, m := range ms {
		mm := &meta.MetaMethod{Method: m, MethodOnTarget: m, HasTarget: true, Standalone: true, Owner: NameTarget}
		if _, err := model.Claim(mm); err != nil {
			return err
		}
	}
	return nil
}

func claimAll(model *meta.MetaType, ms []*meta.MetaMethod) error {
	for _, mm := range ms {
		if _, err := model.Claim(mm); err != nil {
			return err
		}
	}
	return nil
}

// Generate emits the claimed members into class.
func (t *Target) Generate(class *Class, opts config.Options) error {
	b := class.Builder
	if err := b.DefineField(apis.FieldInterceptors, interceptorsType); err != nil {
		return err
	}
	if err := b.DefineField(apis.FieldSelector, selectorType); err != nil {
		return err
	}
	class.AddCtorParam(apis.FieldInterceptors, interceptorsType)
	if class.Base != nil {
		class.AddCtorParam(apis.FieldBase, class.Base)
	}
	if class.TargetType != nil {
		if err := b.DefineField(apis.FieldTarget, class.TargetType); err != nil {
			return err
		}
		class.AddCtorParam(apis.FieldTarget, class.TargetType)
	}

	for _, mm := range class.Model.MethodsOf(NameTarget) {
		if mm.Ignore {
			continue
		}
		if err := t.generate(class, mm); err != nil {
			return err
		}
	}
	return nil
}

func (t *Target) generate(class *Class, mm *meta.MetaMethod) error {
	m := mm.Method
	switch {
	case mm.Standalone && t.kind.IsInterface():
		return class.defineMember(mm, forwardBody(m, m.Name, emit.Field{Name: apis.FieldBase}))

	case t.kind == apis.KindClass:
		if !mm.Proxyable {
			return class.defineMember(mm, forwardBody(m, m.Name, emit.Field{Name: apis.FieldBase}))
		}
		cb := &meta.MetaMethod{Method: m}
		cb.Method.Name = m.Name + invocation.CallbackSuffix
		if err := class.defineMember(cb, forwardBody(m, m.Name, emit.Field{Name: apis.FieldBase})); err != nil {
			return err
		}
		return class.intercept(mm, emit.Self{}, invocation.CallbackProxy, false)

	case t.kind == apis.KindInterfaceWithoutTarget:
		if !mm.Proxyable {
			return class.defineMember(mm, nil)
		}
		return class.intercept(mm, emit.Const{Value: nil, Type: anyType}, invocation.CallbackNone, false)

	default:
		target := emit.Field{Name: apis.FieldTarget}
		if !mm.Proxyable {
			return class.defineMember(mm, forwardBody(m, m.Name, target))
		}
		return class.intercept(mm, target, invocation.CallbackTarget, class.CanChangeTarget())
	}
}
