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

// Package invocation synthesizes the per-method invocation types of proxies
// and implements the interceptor chain they walk.
package invocation

import (
	"reflect"
	"slices"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/emit"
)

// Member and field names of synthesized invocation types.
const (
	FieldCore            = "__core"
	MethodInvokeOnTarget = "InvokeMethodOnTarget"
	CallbackSuffix       = "_callback"
)

// CallbackKind says what a call runs once the chain is exhausted.
type CallbackKind int

const (
	// CallbackTarget calls the method on the invocation target.
	CallbackTarget CallbackKind = iota + 1
	// CallbackProxy calls the <Method>_callback member of the proxy, which
	// runs the base class implementation.
	CallbackProxy
	// CallbackNone has nothing to call. Reaching the end of the chain fails
	// with ErrNoTarget.
	CallbackNone
)

// String returns the lower-case name of k.
func (k CallbackKind) String() string {
	switch k {
	case CallbackTarget:
		return "target"
	case CallbackProxy:
		return "proxy"
	case CallbackNone:
		return "none"
	default:
		return "unknown"
	}
}

// Descriptor is the static part of an invocation, shared by every call of
// one invocation type.
type Descriptor struct {
	Method          apis.Method
	Callback        CallbackKind
	CanChangeTarget bool
}

// Core is the state of one intercepted call. It implements
// apis.ChangeableInvocation.
type Core struct {
	desc     *Descriptor
	resolver *TargetResolver
	owner    emit.Instance
	proxy    emit.Instance
	target   any
	args     []any
	results  []any
	chain    []apis.Interceptor
	idx      int
}

var _ apis.ChangeableInvocation = (*Core)(nil)

// NewCore prepares a call. The selector, when set, picks the chain.
func NewCore(desc *Descriptor, resolver *TargetResolver, owner, proxy emit.Instance, target any, interceptors []apis.Interceptor, selector apis.InterceptorSelector, args []any) *Core {
	c := &Core{
		desc:     desc,
		resolver: resolver,
		owner:    owner,
		proxy:    proxy,
		target:   target,
		args:     args,
	}
	if ft := desc.Method.Type; ft != nil {
		c.results = make([]any, ft.NumOut())
		for i := range c.results {
			c.results[i] = reflect.Zero(ft.Out(i)).Interface()
		}
	}
	t := c.TargetType()
	if t == nil {
		t = desc.Method.Owner
	}
	c.chain = Select(selector, t, desc.Method, interceptors)
	return c
}

// Select applies selector to interceptors. A nil selector keeps them all.
func Select(selector apis.InterceptorSelector, t reflect.Type, m apis.Method, interceptors []apis.Interceptor) []apis.Interceptor {
	if selector == nil {
		return interceptors
	}
	return selector.SelectInterceptors(t, m, slices.Clone(interceptors))
}

// Method returns the intercepted member as declared on the proxied type.
func (c *Core) Method() apis.Method { return c.desc.Method }

// MethodInvocationTarget returns the member the callback will run, resolved
// on the current target for target kinds.
func (c *Core) MethodInvocationTarget() (apis.Method, bool) {
	switch c.desc.Callback {
	case CallbackProxy:
		return c.desc.Method, true
	case CallbackTarget:
		if isNil(c.target) {
			return apis.Method{}, false
		}
		if c.resolver == nil {
			return c.desc.Method, true
		}
		return c.resolver.Resolve(c.desc.Method, reflect.TypeOf(c.target))
	default:
		return apis.Method{}, false
	}
}

// Proxy returns the generated instance that received the call.
func (c *Core) Proxy() any { return c.proxy }

// ProxyInstance is Proxy with its static type.
func (c *Core) ProxyInstance() emit.Instance { return c.proxy }

// InvocationTarget returns the object the callback runs on.
func (c *Core) InvocationTarget() any { return c.target }

// TargetType returns the dynamic type of the target, or nil without one.
func (c *Core) TargetType() reflect.Type {
	if isNil(c.target) {
		return nil
	}
	return reflect.TypeOf(c.target)
}

// Arguments returns a copy of the call arguments.
func (c *Core) Arguments() []any { return slices.Clone(c.args) }

// Argument returns argument i.
func (c *Core) Argument(i int) any { return c.args[i] }

// SetArgument replaces argument i before Proceed.
func (c *Core) SetArgument(i int, v any) { c.args[i] = v }

// ReturnValues returns a copy of the results.
func (c *Core) ReturnValues() []any { return slices.Clone(c.results) }

// ReturnValue returns result i.
func (c *Core) ReturnValue(i int) any { return c.results[i] }

// SetReturnValue replaces result i.
func (c *Core) SetReturnValue(i int, v any) { c.results[i] = v }

// Proceed runs the next interceptor, or the callback once the chain is
// exhausted.
func (c *Core) Proceed() error {
	if c.idx < len(c.chain) {
		ic := c.chain[c.idx]
		c.idx++
		defer func() { c.idx-- }()
		if ic == nil {
			return c.Proceed()
		}
		return ic.Intercept(c)
	}
	switch c.desc.Callback {
	case CallbackNone:
		return apis.Fail(apis.ErrNoTarget, "method", c.desc.Method.String())
	case CallbackTarget:
		if isNil(c.target) {
			return apis.Fail(apis.ErrNoTarget, "method", c.desc.Method.String())
		}
	}
	_, err := c.owner.Invoke(MethodInvokeOnTarget)
	return err
}

// ChangeInvocationTarget replaces the target for the rest of this call.
func (c *Core) ChangeInvocationTarget(target any) error {
	if !c.desc.CanChangeTarget {
		return apis.Fail(apis.ErrNotSupported, "method", c.desc.Method.String(), "operation", "ChangeInvocationTarget")
	}
	if err := c.checkTarget(target); err != nil {
		return err
	}
	c.target = target
	return nil
}

// ChangeProxyTarget replaces the target of this call and of the proxy.
func (c *Core) ChangeProxyTarget(target any) error {
	if !c.desc.CanChangeTarget {
		return apis.Fail(apis.ErrNotSupported, "method", c.desc.Method.String(), "operation", "ChangeProxyTarget")
	}
	if err := c.checkTarget(target); err != nil {
		return err
	}
	if err := c.proxy.SetField(apis.FieldTarget, reflect.ValueOf(target)); err != nil {
		return err
	}
	c.target = target
	return nil
}

func (c *Core) checkTarget(target any) error {
	owner := c.desc.Method.Owner
	if isNil(target) || owner == nil || owner.Kind() != reflect.Interface {
		return nil
	}
	if !reflect.TypeOf(target).Implements(owner) {
		return apis.Fail(apis.ErrInvalidTarget, "type", reflect.TypeOf(target).String(), "interface", owner.String())
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
