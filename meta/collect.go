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

package meta

import (
	"reflect"

	"dirpx.dev/dpx/apis"
)

// Collector enumerates candidate members and asks the hook about each.
type Collector struct {
	Introspector apis.Introspector
	Hook         apis.Hook
}

// Class collects the members of the struct class t. Overridable members
// are proxyable when the hook agrees; sealed members are reported to the
// hook and forwarded.
func (c Collector) Class(t reflect.Type, owner string) ([]*MetaMethod, error) {
	ms, err := c.Introspector.Methods(t)
	if err != nil {
		return nil, err
	}
	out := make([]*MetaMethod, 0, len(ms))
	for _, m := range ms {
		out = append(out, c.decide(t, m, m, true, owner, true))
	}
	return out, nil
}

// Interface collects the members of iface. When target is set, members are
// resolved against it and those without an implementation are dropped
// from the result and returned as missing.
func (c Collector) Interface(iface, target reflect.Type, owner string) (found, missing []*MetaMethod, err error) {
	if iface == nil || iface.Kind() != reflect.Interface {
		return nil, nil, apis.Fail(apis.ErrNotInterface, "type", typeString(iface))
	}
	ms, err := c.Introspector.Methods(iface)
	if err != nil {
		return nil, nil, err
	}
	for _, m := range ms {
		if target == nil {
			found = append(found, c.decide(iface, m, apis.Method{}, false, owner, false))
			continue
		}
		impl, ok := c.Introspector.ResolveOverride(m, target)
		if !ok {
			missing = append(missing, &MetaMethod{Method: m, Owner: owner})
			continue
		}
		found = append(found, c.decide(iface, m, impl, true, owner, false))
	}
	return found, missing, nil
}

// InterfaceOnClass collects the members of iface implemented by the class
// t. The class member decides overridability.
func (c Collector) InterfaceOnClass(iface, t reflect.Type, owner string) ([]*MetaMethod, error) {
	ms, err := c.Introspector.Methods(iface)
	if err != nil {
		return nil, err
	}
	class, err := c.Introspector.Methods(t)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]apis.Method, len(class))
	for _, m := range class {
		byName[m.Name] = m
	}
	out := make([]*MetaMethod, 0, len(ms))
	for _, m := range ms {
		impl, ok := byName[m.Name]
		if !ok || impl.Type != m.Type {
			return nil, apis.Fail(apis.ErrUnroutedMember, "interface", iface.String(), "method", m.Name, "type", t.String())
		}
		out = append(out, c.decide(t, impl, impl, true, owner, false))
	}
	return out, nil
}

func (c Collector) decide(t reflect.Type, m, impl apis.Method, hasTarget bool, owner string, standalone bool) *MetaMethod {
	mm := &MetaMethod{
		Method:         m,
		MethodOnTarget: impl,
		HasTarget:      hasTarget,
		Standalone:     standalone,
		Owner:          owner,
	}
	if !m.Overridable {
		c.Hook.NonProxyableMemberNotification(t, m)
		return mm
	}
	mm.Proxyable = c.Hook.ShouldInterceptMethod(t, m)
	return mm
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
