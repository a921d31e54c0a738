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

package proxy

import (
	"reflect"
	"slices"

	"github.com/sirupsen/logrus"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/cache"
	"dirpx.dev/dpx/config"
	"dirpx.dev/dpx/contrib"
	"dirpx.dev/dpx/emit"
	"dirpx.dev/dpx/meta"
)

// request is one proxy type request.
type request struct {
	kind apis.Kind
	// proxied is the class for class kinds, the primary interface
	// otherwise.
	proxied reflect.Type
	// target is the concrete target type of KindInterfaceWithTarget.
	target     reflect.Type
	interfaces []reflect.Type
	opts       config.Options
}

// targetType is the type answering calls routed to the target, or nil.
func (r *request) targetType() reflect.Type {
	switch r.kind {
	case apis.KindClass, apis.KindClassWithTarget:
		return reflect.PointerTo(r.proxied)
	case apis.KindInterfaceWithTarget:
		return r.target
	case apis.KindInterfaceWithTargetInterface:
		return r.proxied
	default:
		return nil
	}
}

// fieldType is the type of the __target field, or nil.
func (r *request) fieldType() reflect.Type {
	if r.kind == apis.KindClass {
		return nil
	}
	return r.targetType()
}

// embedded is the struct embedded as __base, or nil.
func (r *request) embedded() reflect.Type {
	if r.kind.IsInterface() {
		return r.opts.BaseTypeForInterfaceProxy
	}
	return r.proxied
}

// assembler carries one generation from validation to the finished type.
type assembler struct {
	g   *Generator
	req *request
	key cache.Key
	log logrus.FieldLogger
}

// generate returns the proxy type for r, from the cache when possible.
func (g *Generator) generate(r *request) (*ProxyType, error) {
	if err := g.validate(r); err != nil {
		return nil, err
	}
	key, err := cache.NewKey(r.kind, r.proxied, r.interfaces, r.opts)
	if err != nil {
		return nil, err
	}
	if r.kind == apis.KindInterfaceWithTarget {
		key = key.WithTarget(r.target)
	}
	log := g.log.WithFields(logrus.Fields{"kind": r.kind.String(), "type": r.proxied.String()})

	if pt, ok := g.cache.Get(key); ok {
		log.Debug("found cached proxy type")
		return pt, nil
	}
	pt, err := g.cache.GetOrCreate(key, func() (*ProxyType, error) {
		log.Debug("no cached proxy type was found")
		a := &assembler{g: g, req: r, key: key, log: log}
		return a.run()
	})
	if err != nil {
		log.WithError(err).Debug("proxy type generation failed")
		return nil, err
	}
	return pt, nil
}

// validate rejects malformed requests and normalizes the interface list.
func (g *Generator) validate(r *request) error {
	if r.proxied == nil {
		return apis.Fail(apis.ErrNilType, "kind", r.kind.String())
	}
	if g.intro.IsOpenGeneric(r.proxied) {
		return apis.Fail(apis.ErrOpenGeneric, "type", r.proxied.String())
	}
	if r.kind.IsInterface() {
		if r.proxied.Kind() != reflect.Interface {
			return apis.Fail(apis.ErrNotInterface, "type", r.proxied.String())
		}
		if r.proxied.Implements(apis.ProxyTargetAccessorType) {
			return apis.Fail(apis.ErrReservedInterface, "type", r.proxied.String())
		}
	} else {
		if r.proxied.Kind() != reflect.Struct {
			return apis.Fail(apis.ErrNotClass, "type", r.proxied.String())
		}
		if reflect.PointerTo(r.proxied).Implements(apis.ProxyTargetAccessorType) {
			return apis.Fail(apis.ErrReservedInterface, "type", r.proxied.String())
		}
	}
	if r.kind == apis.KindInterfaceWithTarget {
		if r.target == nil {
			return apis.Fail(apis.ErrNilType, "kind", r.kind.String(), "reason", "nil target type")
		}
		if !r.target.Implements(r.proxied) {
			return apis.Fail(apis.ErrInvalidTarget, "type", r.target.String(), "interface", r.proxied.String())
		}
	}

	set := make([]reflect.Type, 0, len(r.interfaces))
	for _, it := range r.interfaces {
		switch {
		case it == nil:
			return apis.Fail(apis.ErrNilType, "type", r.proxied.String(), "reason", "nil interface")
		case it.Kind() != reflect.Interface:
			return apis.Fail(apis.ErrNotInterface, "type", it.String())
		case g.intro.IsOpenGeneric(it):
			return apis.Fail(apis.ErrOpenGeneric, "type", it.String())
		case it.Implements(apis.ProxyTargetAccessorType):
			return apis.Fail(apis.ErrReservedInterface, "type", it.String())
		}
		if it != r.proxied && !slices.Contains(set, it) {
			set = append(set, it)
		}
	}
	r.interfaces = set

	if b := r.opts.BaseTypeForInterfaceProxy; b != nil && reflect.PointerTo(b).Implements(apis.ProxyTargetAccessorType) {
		return apis.Fail(apis.ErrReservedInterface, "type", b.String())
	}
	return r.opts.Validate()
}

// run collects metadata, runs the contributors in their fixed order and
// emits the type.
func (a *assembler) run() (*ProxyType, error) {
	r := a.req
	target := r.targetType()
	hook := r.opts.HookOrDefault()
	mixins := r.opts.MixinInterfaces()

	// Interfaces the target implements are routed to it; mixin interfaces
	// go to their mixin unless the target implements them; the rest are
	// answered by interceptors alone.
	var onTarget, additional []reflect.Type
	for _, it := range append(slices.Clone(r.interfaces), mixins...) {
		switch {
		case slices.Contains(onTarget, it):
		case target != nil && target.Implements(it):
			onTarget = append(onTarget, it)
		case !slices.Contains(mixins, it) && !slices.Contains(additional, it):
			additional = append(additional, it)
		}
	}

	ser := contrib.NewSerialization(nil)
	if r.kind == apis.KindClass {
		ser = contrib.NewSerialization(r.proxied)
	}
	contributors := []contrib.Contributor{
		contrib.NewTarget(a.g.intro, r.kind, r.proxied, r.embedded(), onTarget),
		contrib.NewMixins(a.g.intro, target, r.opts.Mixins),
		contrib.NewAdditional(a.g.intro, additional),
		contrib.NewInfrastructure(r.kind),
	}
	if ser != nil {
		contributors = append(contributors, ser)
	}

	model := meta.NewMetaType()
	for _, c := range contributors {
		if err := c.CollectElementsToProxy(hook, model); err != nil {
			return nil, err
		}
	}
	hook.MethodsInspected()
	model.Seal()

	interfaces := []reflect.Type{apis.ProxyTargetAccessorType}
	if r.kind.IsInterface() {
		interfaces = append(interfaces, r.proxied)
	}
	for _, it := range append(slices.Clone(r.interfaces), mixins...) {
		if !slices.Contains(interfaces, it) {
			interfaces = append(interfaces, it)
		}
	}
	if ser != nil {
		interfaces = append(interfaces, apis.ObjectDataProviderType)
	}

	tb, err := a.g.backend.DefineType(a.name(), r.embedded(), interfaces, r.opts.Attributes)
	if err != nil {
		return nil, err
	}
	class := &contrib.Class{
		Builder:    tb,
		Kind:       r.kind,
		Base:       r.embedded(),
		TargetType: r.fieldType(),
		Model:      model,
		Synth:      a.g.synth,
	}
	for _, c := range contributors {
		if err := c.Generate(class, r.opts); err != nil {
			return nil, err
		}
		a.log.WithField("contributor", c.Name()).Debug("contributor generated")
	}
	if err := tb.DefineConstructor("", class.CtorTypes(), class.InitFields(0, r.opts.Selector)); err != nil {
		return nil, err
	}
	for _, p := range model.Properties() {
		setter := ""
		if p.Setter != nil {
			setter = p.Setter.Name()
		}
		if err := tb.DefineProperty(p.Name, p.Getter.Name(), setter); err != nil {
			return nil, err
		}
	}
	for _, e := range model.Events() {
		if err := tb.DefineEvent(e.Name, e.Add.Name(), e.Remove.Name()); err != nil {
			return nil, err
		}
	}

	ct, err := tb.Complete()
	if err != nil {
		return nil, err
	}
	for _, it := range interfaces {
		if !emit.Implements(ct, it) {
			return nil, apis.Fail(apis.ErrUnroutedMember, "type", ct.Name(), "interface", it.String())
		}
	}

	pt := &ProxyType{
		gen:    a.g,
		key:    a.key,
		ct:     ct,
		params: class.CtorParams(),
		class:  r.proxied,
		ser:    ser,
	}
	a.g.TypeName(r.proxied)
	for _, it := range r.interfaces {
		a.g.TypeName(it)
	}
	a.g.publish(pt)
	a.log.WithFields(logrus.Fields{
		"name":    ct.Name(),
		"members": len(model.Methods()),
	}).Debug("generated proxy type")
	return pt, nil
}

// name returns the pinned name of the shape when a loaded module recorded
// one, and a fresh unique name otherwise.
func (a *assembler) name() string {
	if name, ok := a.g.pinnedName(a.key.Descriptor()); ok && a.g.namer.Scope().Reserve(name) {
		return name
	}
	return a.g.namer.ProxyName(a.req.proxied)
}
