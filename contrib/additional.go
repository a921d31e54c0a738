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

// Additional implements interfaces nothing in the proxy implements. Their
// members exist only for the interceptors.
type Additional struct {
	intro      apis.Introspector
	interfaces []reflect.Type
}

// NewAdditional returns the additional-interface contributor.
func NewAdditional(intro apis.Introspector, interfaces []reflect.Type) *Additional {
	return &Additional{intro: intro, interfaces: interfaces}
}

// Name identifies the contributor as member owner.
func (a *Additional) Name() string { return NameAdditional }

// CollectElementsToProxy claims the members this contributor emits.
func (a *Additional) CollectElementsToProxy(hook apis.Hook, model *meta.MetaType) error {
	c := meta.Collector{Introspector: a.intro, Hook: hook}
	for _, iface := range a.interfaces {
		ms, _, err := c.Interface(iface, nil, NameAdditional)
		if err != nil {
			return err
		}
		if err := claimAll(model, ms); err != nil {
			return err
		}
	}
	return nil
}

// Generate emits the claimed members into class.
func (a *Additional) Generate(class *Class, _ config.Options) error {
	for _, mm := range class.Model.MethodsOf(NameAdditional) {
		if mm.Ignore {
			continue
		}
		var err error
		if mm.Proxyable {
			err = class.intercept(mm, emit.Const{Value: nil, Type: anyType}, invocation.CallbackNone, false)
		} else {
			err = class.defineMember(mm, nil)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
