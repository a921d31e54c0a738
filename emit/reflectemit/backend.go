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

// Package reflectemit is the reflection backed emit.Backend. Field layouts
// are built with reflect.StructOf and member bodies are compiled into
// closures once, when they are defined.
package reflectemit

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/sirupsen/logrus"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/emit"
)

// Backend implements emit.Backend.
type Backend struct {
	log logrus.FieldLogger
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger completed types are reported to.
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Backend) {
		if l != nil {
			b.log = l
		}
	}
}

// New returns a Backend.
func New(opts ...Option) *Backend {
	b := &Backend{log: logrus.StandardLogger()}
	for _, o := range opts {
		o(b)
	}
	return b
}

var _ emit.Backend = (*Backend)(nil)

// DefineType starts a type embedding base, when not nil, as field __base.
func (b *Backend) DefineType(name string, base reflect.Type, interfaces []reflect.Type, attrs []apis.Attribute) (emit.TypeBuilder, error) {
	if name == "" {
		return nil, apis.Fail(apis.ErrEmission, "reason", "empty type name")
	}
	if base != nil && base.Kind() != reflect.Struct {
		return nil, apis.Fail(apis.ErrNotClass, "type", base.String())
	}
	for _, it := range interfaces {
		if it == nil || it.Kind() != reflect.Interface {
			return nil, apis.Fail(apis.ErrNotInterface, "type", fmt.Sprint(it))
		}
	}
	tb := &typeBuilder{
		log:        b.log,
		name:       name,
		base:       base,
		interfaces: append([]reflect.Type(nil), interfaces...),
		attrs:      append([]apis.Attribute(nil), attrs...),
		fieldIdx:   make(map[string]int),
		methodIdx:  make(map[string]int),
		ctorIdx:    make(map[string]int),
		roots:      make(map[string]string),
	}
	if base != nil {
		if err := tb.DefineField(apis.FieldBase, base); err != nil {
			return nil, err
		}
	}
	return tb, nil
}

type member struct {
	name string
	sig  reflect.Type
	run  runner
}

type typeBuilder struct {
	log        logrus.FieldLogger
	name       string
	base       reflect.Type
	interfaces []reflect.Type
	attrs      []apis.Attribute

	fields   []emit.FieldInfo
	fieldIdx map[string]int

	methods   []member
	methodIdx map[string]int
	ctors     []member
	ctorIdx   map[string]int

	props  []emit.PropertyInfo
	events []emit.EventInfo

	// roots maps each self field read by a body to the member reading it.
	roots map[string]string
	done  bool
}

func (tb *typeBuilder) Name() string { return tb.name }

func (tb *typeBuilder) completed() error {
	if tb.done {
		return apis.Fail(apis.ErrTypeCompleted, "type", tb.name)
	}
	return nil
}

func (tb *typeBuilder) DefineField(name string, t reflect.Type) error {
	if err := tb.completed(); err != nil {
		return err
	}
	if name == "" || t == nil {
		return apis.Fail(apis.ErrEmission, "type", tb.name, "reason", "field needs a name and a type")
	}
	if _, dup := tb.fieldIdx[name]; dup {
		return apis.Fail(apis.ErrEmission, "type", tb.name, "field", name, "reason", "duplicate field")
	}
	tb.fieldIdx[name] = len(tb.fields)
	tb.fields = append(tb.fields, emit.FieldInfo{Name: name, Type: t})
	return nil
}

func (tb *typeBuilder) HasField(name string) bool {
	_, ok := tb.fieldIdx[name]
	return ok
}

func (tb *typeBuilder) HasMethod(name string) bool {
	_, ok := tb.methodIdx[name]
	return ok
}

func (tb *typeBuilder) compile(name string, sig reflect.Type, body []emit.Stmt) (runner, error) {
	c := newCompiler(tb.name+"."+name, sig)
	run, err := c.compile(body)
	if err != nil {
		return nil, err
	}
	for root := range c.roots {
		if _, seen := tb.roots[root]; !seen {
			tb.roots[root] = name
		}
	}
	return run, nil
}

func (tb *typeBuilder) DefineMethod(name string, sig reflect.Type, body []emit.Stmt) error {
	if err := tb.completed(); err != nil {
		return err
	}
	if name == "" || sig == nil || sig.Kind() != reflect.Func {
		return apis.Fail(apis.ErrEmission, "type", tb.name, "method", name, "reason", "method needs a name and a func signature")
	}
	if tb.HasMethod(name) {
		return apis.Fail(apis.ErrEmission, "type", tb.name, "method", name, "reason", "duplicate method")
	}
	run, err := tb.compile(name, sig, body)
	if err != nil {
		return err
	}
	tb.methodIdx[name] = len(tb.methods)
	tb.methods = append(tb.methods, member{name: name, sig: sig, run: run})
	return nil
}

func (tb *typeBuilder) DefineConstructor(name string, params []reflect.Type, body []emit.Stmt) error {
	if err := tb.completed(); err != nil {
		return err
	}
	if _, dup := tb.ctorIdx[name]; dup {
		return apis.Fail(apis.ErrEmission, "type", tb.name, "constructor", name, "reason", "duplicate constructor")
	}
	sig := reflect.FuncOf(params, nil, false)
	run, err := tb.compile("ctor:"+name, sig, body)
	if err != nil {
		return err
	}
	tb.ctorIdx[name] = len(tb.ctors)
	tb.ctors = append(tb.ctors, member{name: name, sig: sig, run: run})
	return nil
}

func (tb *typeBuilder) DefineProperty(name, getter, setter string) error {
	if err := tb.completed(); err != nil {
		return err
	}
	if name == "" || getter == "" {
		return apis.Fail(apis.ErrEmission, "type", tb.name, "property", name, "reason", "property needs a getter")
	}
	tb.props = append(tb.props, emit.PropertyInfo{Name: name, Getter: getter, Setter: setter})
	return nil
}

func (tb *typeBuilder) DefineEvent(name, add, remove string) error {
	if err := tb.completed(); err != nil {
		return err
	}
	if name == "" || add == "" || remove == "" {
		return apis.Fail(apis.ErrEmission, "type", tb.name, "event", name, "reason", "event needs add and remove")
	}
	tb.events = append(tb.events, emit.EventInfo{Name: name, Add: add, Remove: remove})
	return nil
}

func (tb *typeBuilder) Complete() (emit.ConcreteType, error) {
	if err := tb.completed(); err != nil {
		return nil, err
	}
	for root, by := range tb.roots {
		if !tb.HasField(root) {
			return nil, apis.Fail(apis.ErrEmission, "type", tb.name, "member", by, "field", root, "reason", "undefined field")
		}
	}
	for _, p := range tb.props {
		for _, m := range []string{p.Getter, p.Setter} {
			if m != "" && !tb.HasMethod(m) {
				return nil, apis.Fail(apis.ErrEmission, "type", tb.name, "property", p.Name, "method", m, "reason", "undefined accessor")
			}
		}
	}
	for _, e := range tb.events {
		for _, m := range []string{e.Add, e.Remove} {
			if !tb.HasMethod(m) {
				return nil, apis.Fail(apis.ErrEmission, "type", tb.name, "event", e.Name, "method", m, "reason", "undefined accessor")
			}
		}
	}

	sf := make([]reflect.StructField, len(tb.fields))
	for i, f := range tb.fields {
		sf[i] = reflect.StructField{Name: physical(i, f.Name), Type: f.Type}
	}
	tb.done = true
	ct := &concreteType{
		name:       tb.name,
		base:       tb.base,
		interfaces: tb.interfaces,
		attrs:      tb.attrs,
		layout:     reflect.StructOf(sf),
		fields:     tb.fields,
		fieldIdx:   tb.fieldIdx,
		methods:    tb.methods,
		methodIdx:  tb.methodIdx,
		ctors:      tb.ctors,
		ctorIdx:    tb.ctorIdx,
		props:      tb.props,
		events:     tb.events,
	}
	tb.log.WithFields(logrus.Fields{
		"type":    tb.name,
		"fields":  len(tb.fields),
		"methods": len(tb.methods),
	}).Debug("emitted type")
	return ct, nil
}

// physical maps a logical field name to an exported Go identifier that is
// unique within the layout.
func physical(i int, logical string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "F%d_", i)
	for _, r := range logical {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

type concreteType struct {
	name       string
	base       reflect.Type
	interfaces []reflect.Type
	attrs      []apis.Attribute
	layout     reflect.Type

	fields   []emit.FieldInfo
	fieldIdx map[string]int

	methods   []member
	methodIdx map[string]int
	ctors     []member
	ctorIdx   map[string]int

	props  []emit.PropertyInfo
	events []emit.EventInfo
}

var _ emit.ConcreteType = (*concreteType)(nil)

func (t *concreteType) Name() string                 { return t.name }
func (t *concreteType) Base() reflect.Type           { return t.base }
func (t *concreteType) Interfaces() []reflect.Type   { return append([]reflect.Type(nil), t.interfaces...) }
func (t *concreteType) Attributes() []apis.Attribute { return append([]apis.Attribute(nil), t.attrs...) }
func (t *concreteType) Layout() reflect.Type         { return t.layout }
func (t *concreteType) Fields() []emit.FieldInfo     { return append([]emit.FieldInfo(nil), t.fields...) }
func (t *concreteType) Properties() []emit.PropertyInfo {
	return append([]emit.PropertyInfo(nil), t.props...)
}
func (t *concreteType) Events() []emit.EventInfo { return append([]emit.EventInfo(nil), t.events...) }

func infos(ms []member) []emit.MethodInfo {
	out := make([]emit.MethodInfo, len(ms))
	for i, m := range ms {
		out[i] = emit.MethodInfo{Name: m.name, Type: m.sig}
	}
	return out
}

func (t *concreteType) Methods() []emit.MethodInfo      { return infos(t.methods) }
func (t *concreteType) Constructors() []emit.MethodInfo { return infos(t.ctors) }

func (t *concreteType) Method(name string) (emit.MethodInfo, bool) {
	i, ok := t.methodIdx[name]
	if !ok {
		return emit.MethodInfo{}, false
	}
	return emit.MethodInfo{Name: name, Type: t.methods[i].sig}, true
}

// New runs constructor ctor. A type without constructors accepts the empty
// name and no arguments, yielding a zeroed instance.
func (t *concreteType) New(ctor string, args ...reflect.Value) (emit.Instance, error) {
	inst := newInstance(t)
	i, ok := t.ctorIdx[ctor]
	if !ok {
		if ctor == "" && len(t.ctors) == 0 && len(args) == 0 {
			return inst, nil
		}
		return nil, apis.Fail(apis.ErrNoMethod, "constructor", ctor, "type", t.name)
	}
	c := t.ctors[i]
	in, err := exactAll(args, c.sig)
	if err != nil {
		return nil, with(err, "constructor", ctor)
	}
	if _, err := c.run(inst, in); err != nil {
		return nil, err
	}
	return inst, nil
}
