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

// Mixins weaves the mixins of the options into the proxy. A mixin whose
// interface the target already implements is empty: its members are
// routed to the target and it gets no field.
type Mixins struct {
	intro  apis.Introspector
	target reflect.Type
	mixins []config.Mixin
	empty  map[reflect.Type]bool
}

// NewMixins returns the mixin contributor. target is the type whose
// implementations take precedence, or nil.
func NewMixins(intro apis.Introspector, target reflect.Type, mixins []config.Mixin) *Mixins {
	return &Mixins{intro: intro, target: target, mixins: config.SortMixins(mixins), empty: make(map[reflect.Type]bool)}
}

// Name identifies the contributor as member owner.
func (x *Mixins) Name() string { return NameMixin }

// Empty reports whether the mixin for iface is routed to the target.
func (x *Mixins) Empty(iface reflect.Type) bool { return x.empty[iface] }

// CollectElementsToProxy claims the members this contributor emits.
func (x *Mixins) CollectElementsToProxy(hook apis.Hook, model *meta.MetaType) error {
	c := meta.Collector{Introspector: x.intro, Hook: hook}
	for _, mx := range x.mixins {
		if x.target != nil && x.target.Implements(mx.Interface) {
			x.empty[mx.Interface] = true
			ms, err := x.intro.Methods(mx.Interface)
			if err != nil {
				return err
			}
			for _, m := range ms {
				if prev, ok := model.Method(m.Name); !ok || prev.Method.Type != m.Type {
					return apis.Fail(apis.ErrUnroutedMember, "interface", mx.Interface.String(), "method", m.Name)
				}
			}
			continue
		}
		ms, _, err := c.Interface(mx.Interface, nil, NameMixin)
		if err != nil {
			return err
		}
		for _, mm := range ms {
			mm.MethodOnTarget, mm.HasTarget = mm.Method, true
		}
		if err := claimAll(model, ms); err != nil {
			return err
		}
	}
	return nil
}

// Generate emits the claimed members into class.
func (x *Mixins) Generate(class *Class, _ config.Options) error {
	owners := make(map[string]reflect.Type)
	for _, mx := range x.mixins {
		if x.empty[mx.Interface] {
			continue
		}
		field := apis.MixinField(mx.Interface)
		if err := class.Builder.DefineField(field, mx.Interface); err != nil {
			return err
		}
		class.AddCtorParam(field, mx.Interface)
		ms, err := x.intro.Methods(mx.Interface)
		if err != nil {
			return err
		}
		for _, m := range ms {
			if _, seen := owners[m.Name]; !seen {
				owners[m.Name] = mx.Interface
			}
		}
	}

	for _, mm := range class.Model.MethodsOf(NameMixin) {
		if mm.Ignore {
			continue
		}
		iface, ok := owners[mm.Name()]
		if !ok {
			return apis.Fail(apis.ErrUnroutedMember, "method", mm.Name())
		}
		target := emit.Field{Name: apis.MixinField(iface)}
		var err error
		if mm.Proxyable {
			err = class.intercept(mm, target, invocation.CallbackTarget, false)
		} else {
			err = class.defineMember(mm, forwardBody(mm.Method, mm.Name(), target))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
