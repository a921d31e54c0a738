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

package dpx

import (
	"reflect"
	"sync"
	"sync/atomic"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/config"
	"dirpx.dev/dpx/proxy"
)

var (
	// cur holds the default generator.
	cur atomic.Pointer[proxy.Generator]
	// buildMu serializes replacements of the default generator.
	buildMu sync.Mutex
)

// init installs a generator with default settings.
func init() {
	cur.Store(proxy.NewGenerator())
}

// Default returns the default generator.
func Default() *proxy.Generator {
	return cur.Load()
}

// SetDefault replaces the default generator. A nil generator is ignored.
// It returns the previous generator.
func SetDefault(g *proxy.Generator) *proxy.Generator {
	if g == nil {
		return cur.Load()
	}
	buildMu.Lock()
	defer buildMu.Unlock()
	return cur.Swap(g)
}

// Configure replaces the default generator with one built from s and
// opts. Proxy types generated so far are not carried over.
func Configure(s config.Settings, opts ...proxy.Option) *proxy.Generator {
	buildMu.Lock()
	defer buildMu.Unlock()
	g := proxy.NewGenerator(append([]proxy.Option{proxy.WithSettings(s)}, opts...)...)
	cur.Store(g)
	return g
}

// Reset restores a generator with default settings.
func Reset() {
	Configure(config.DefaultSettings())
}

// ClassOf returns the struct class T.
func ClassOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// InterfaceOf returns the interface type T.
func InterfaceOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// CreateClassProxy creates a class proxy with the default generator.
func CreateClassProxy(class reflect.Type, base any, opts config.Options, interceptors ...apis.Interceptor) (*proxy.Proxy, error) {
	return Default().CreateClassProxy(class, base, opts, interceptors...)
}

// CreateClassProxyWithTarget creates a class proxy forwarding to target
// with the default generator.
func CreateClassProxyWithTarget(class reflect.Type, target any, opts config.Options, interceptors ...apis.Interceptor) (*proxy.Proxy, error) {
	return Default().CreateClassProxyWithTarget(class, target, opts, interceptors...)
}

// CreateInterfaceProxyWithTarget creates an interface proxy forwarding to
// target with the default generator.
func CreateInterfaceProxyWithTarget(iface reflect.Type, target any, opts config.Options, interceptors ...apis.Interceptor) (*proxy.Proxy, error) {
	return Default().CreateInterfaceProxyWithTarget(iface, target, opts, interceptors...)
}

// CreateInterfaceProxyWithTargetInterface creates an interface proxy with a
// swappable target with the default generator.
func CreateInterfaceProxyWithTargetInterface(iface reflect.Type, target any, opts config.Options, interceptors ...apis.Interceptor) (*proxy.Proxy, error) {
	return Default().CreateInterfaceProxyWithTargetInterface(iface, target, opts, interceptors...)
}

// CreateInterfaceProxyWithoutTarget creates an interface proxy answered by
// interceptors with the default generator.
func CreateInterfaceProxyWithoutTarget(iface reflect.Type, opts config.Options, interceptors ...apis.Interceptor) (*proxy.Proxy, error) {
	return Default().CreateInterfaceProxyWithoutTarget(iface, opts, interceptors...)
}

// RegisterType names t for serialization in the default generator.
func RegisterType(t reflect.Type, name string) error {
	return Default().Registry().Register(t, name)
}
