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

package apis

import "reflect"

// Interceptor is invoked for every intercepted call on a proxy. It may
// inspect or rewrite arguments and return values, and decides whether the
// call continues down the chain by calling Invocation.Proceed.
//
// A non-nil error aborts the call. Proxy methods whose last result is an
// error return it there; other methods surface it to the caller of
// Proxy.Call (or panic when called through a bound func).
type Interceptor interface {
	Intercept(inv Invocation) error
}

// InterceptorFunc adapts a plain function to the Interceptor interface.
type InterceptorFunc func(inv Invocation) error

// Intercept calls f(inv).
func (f InterceptorFunc) Intercept(inv Invocation) error {
	return f(inv)
}

// Invocation carries the state of one intercepted call.
//
// An Invocation is created per call and used by a single goroutine; it is
// not safe for concurrent use and must not be retained after the
// interceptor returns.
type Invocation interface {
	// Method is the proxied member being called.
	Method() Method
	// MethodInvocationTarget is the member that will run once the chain is
	// exhausted. It reports false when the call has no target.
	MethodInvocationTarget() (Method, bool)
	// Proxy is the generated instance that received the call.
	Proxy() any
	// InvocationTarget is the object the call is forwarded to, or nil.
	InvocationTarget() any
	// TargetType is the dynamic type of InvocationTarget, or nil.
	TargetType() reflect.Type

	// Arguments returns the current argument values. ByRef parameters hold
	// the pointed-to value rather than the pointer.
	Arguments() []any
	// Argument returns argument i.
	Argument(i int) any
	// SetArgument replaces argument i. Changes to ByRef arguments are written
	// back to the caller after the outermost call returns.
	SetArgument(i int, v any)

	// ReturnValues returns the current result values. They start as the zero
	// values of the method's results.
	ReturnValues() []any
	// ReturnValue returns result i.
	ReturnValue(i int) any
	// SetReturnValue replaces result i.
	SetReturnValue(i int, v any)

	// Proceed passes control to the next interceptor, or to the target when
	// the chain is exhausted. It may be called more than once.
	Proceed() error
}

// ChangeableInvocation is implemented by invocations of proxies whose
// target may be swapped at runtime. Invocations of other proxies implement
// it too but fail with ErrNotSupported.
type ChangeableInvocation interface {
	Invocation
	// ChangeInvocationTarget redirects this call only.
	ChangeInvocationTarget(target any) error
	// ChangeProxyTarget redirects this call and every later call on the proxy.
	ChangeProxyTarget(target any) error
}

// InterceptorSelector picks, per call, which interceptors apply to a method.
// It is consulted on every call with the full interceptor list of the
// instance and may return any subset in any order.
type InterceptorSelector interface {
	SelectInterceptors(t reflect.Type, m Method, interceptors []Interceptor) []Interceptor
}

// InterceptorType is the reflect.Type of Interceptor.
var InterceptorType = reflect.TypeOf((*Interceptor)(nil)).Elem()
