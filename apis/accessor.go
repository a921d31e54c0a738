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

// ProxyTargetAccessor is the infrastructure surface every generated proxy
// exposes. It is reserved: a type that implements it is already a proxy and
// cannot be proxied again.
type ProxyTargetAccessor interface {
	// DynProxyGetTarget returns the current target, the proxy itself for
	// class proxies, or nil for proxies without target.
	DynProxyGetTarget() any
	// GetInterceptors returns the interceptor chain fixed at construction.
	GetInterceptors() []Interceptor
}

// ProxyTargetAccessorType is the reflect.Type of ProxyTargetAccessor.
var ProxyTargetAccessorType = reflect.TypeOf((*ProxyTargetAccessor)(nil)).Elem()

// Infrastructure member names emitted on every generated type.
const (
	MethodGetTarget       = "DynProxyGetTarget"
	MethodSetTarget       = "DynProxySetTarget"
	MethodGetInterceptors = "GetInterceptors"
	MethodGetObjectData   = "GetObjectData"
	MethodSetObjectData   = "SetObjectData"
	MethodSealedMethods   = "SealedMethods"
	MethodSerializable    = "Serializable"
)

// Reserved field names shared between contributors.
const (
	FieldTarget         = "__target"
	FieldInterceptors   = "__interceptors"
	FieldSelector       = "__selector"
	FieldBase           = "__base"
	FieldDelegateToBase = "__delegateToBase"
	FieldMixinPrefix    = "__mixin_"
)

// MixinField returns the field name holding the mixin for iface.
func MixinField(iface reflect.Type) string {
	return FieldMixinPrefix + iface.String()
}

// RWLocker is the reader/writer lock injected into generators and caches.
// *sync.RWMutex satisfies it.
type RWLocker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}
