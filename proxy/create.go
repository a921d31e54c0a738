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

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/config"
)

// CreateClassProxyType returns the proxy type of the struct class, which
// also implements interfaces. Calls end in the class's own methods.
func (g *Generator) CreateClassProxyType(class reflect.Type, interfaces []reflect.Type, opts config.Options) (*ProxyType, error) {
	return g.generate(&request{kind: apis.KindClass, proxied: class, interfaces: interfaces, opts: opts})
}

// CreateClassProxyTypeWithTarget returns the proxy type of the struct
// class forwarding to a separate *class target.
func (g *Generator) CreateClassProxyTypeWithTarget(class reflect.Type, interfaces []reflect.Type, opts config.Options) (*ProxyType, error) {
	return g.generate(&request{kind: apis.KindClassWithTarget, proxied: class, interfaces: interfaces, opts: opts})
}

// CreateInterfaceProxyTypeWithTarget returns the proxy type of iface
// forwarding to targets of type target. Additional interfaces implemented
// by target are forwarded too.
func (g *Generator) CreateInterfaceProxyTypeWithTarget(iface reflect.Type, interfaces []reflect.Type, target reflect.Type, opts config.Options) (*ProxyType, error) {
	return g.generate(&request{kind: apis.KindInterfaceWithTarget, proxied: iface, target: target, interfaces: interfaces, opts: opts})
}

// CreateInterfaceProxyTypeWithTargetInterface returns the proxy type of
// iface forwarding to any implementation of it. The target can be swapped
// per instance and per invocation.
func (g *Generator) CreateInterfaceProxyTypeWithTargetInterface(iface reflect.Type, interfaces []reflect.Type, opts config.Options) (*ProxyType, error) {
	return g.generate(&request{kind: apis.KindInterfaceWithTargetInterface, proxied: iface, interfaces: interfaces, opts: opts})
}

// CreateInterfaceProxyTypeWithoutTarget returns the proxy type of iface
// without target. Interceptors must answer every call.
func (g *Generator) CreateInterfaceProxyTypeWithoutTarget(iface reflect.Type, interfaces []reflect.Type, opts config.Options) (*ProxyType, error) {
	return g.generate(&request{kind: apis.KindInterfaceWithoutTarget, proxied: iface, interfaces: interfaces, opts: opts})
}

// CreateClassProxy creates a class proxy instance. base, when not nil,
// seeds the embedded class state.
func (g *Generator) CreateClassProxy(class reflect.Type, base any, opts config.Options, interceptors ...apis.Interceptor) (*Proxy, error) {
	pt, err := g.CreateClassProxyType(class, nil, opts)
	if err != nil {
		return nil, err
	}
	return pt.New(Args{Interceptors: interceptors, Base: base})
}

// CreateClassProxyWithTarget creates a class proxy forwarding to target,
// which must be a *class.
func (g *Generator) CreateClassProxyWithTarget(class reflect.Type, target any, opts config.Options, interceptors ...apis.Interceptor) (*Proxy, error) {
	pt, err := g.CreateClassProxyTypeWithTarget(class, nil, opts)
	if err != nil {
		return nil, err
	}
	return pt.New(Args{Interceptors: interceptors, Target: target})
}

// CreateInterfaceProxyWithTarget creates a proxy of iface forwarding to
// target. The proxy type is bound to the dynamic type of target.
func (g *Generator) CreateInterfaceProxyWithTarget(iface reflect.Type, target any, opts config.Options, interceptors ...apis.Interceptor) (*Proxy, error) {
	if target == nil {
		return nil, apis.Fail(apis.ErrNoTarget, "interface", typeString(iface))
	}
	pt, err := g.CreateInterfaceProxyTypeWithTarget(iface, nil, reflect.TypeOf(target), opts)
	if err != nil {
		return nil, err
	}
	return pt.New(Args{Interceptors: interceptors, Target: target})
}

// CreateInterfaceProxyWithTargetInterface creates a proxy of iface whose
// target may be nil and may change later.
func (g *Generator) CreateInterfaceProxyWithTargetInterface(iface reflect.Type, target any, opts config.Options, interceptors ...apis.Interceptor) (*Proxy, error) {
	pt, err := g.CreateInterfaceProxyTypeWithTargetInterface(iface, nil, opts)
	if err != nil {
		return nil, err
	}
	return pt.New(Args{Interceptors: interceptors, Target: target})
}

// CreateInterfaceProxyWithoutTarget creates a proxy of iface answered by
// interceptors alone.
func (g *Generator) CreateInterfaceProxyWithoutTarget(iface reflect.Type, opts config.Options, interceptors ...apis.Interceptor) (*Proxy, error) {
	pt, err := g.CreateInterfaceProxyTypeWithoutTarget(iface, nil, opts)
	if err != nil {
		return nil, err
	}
	return pt.New(Args{Interceptors: interceptors})
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
