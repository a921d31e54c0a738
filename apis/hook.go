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

// Hook takes part in deciding which members of a type get intercepted.
//
// ShouldInterceptMethod is asked once per overridable member.
// NonProxyableMemberNotification is told about members that cannot be
// intercepted (sealed class members); they are still forwarded, never
// dropped. MethodsInspected is called once per generation after every
// member has been inspected.
//
// A Hook is part of the generation options and therefore part of the cache
// key: it must be comparable or implement Equaler.
type Hook interface {
	ShouldInterceptMethod(t reflect.Type, m Method) bool
	NonProxyableMemberNotification(t reflect.Type, m Method)
	MethodsInspected()
}

//go:generate mockgen -source=hook.go -destination=mocks/mock_hook.go -package=mocks

// AllMethodsHook intercepts every overridable member and ignores
// notifications. It is the default hook.
type AllMethodsHook struct{}

// ShouldInterceptMethod returns true.
func (AllMethodsHook) ShouldInterceptMethod(reflect.Type, Method) bool { return true }

// NonProxyableMemberNotification does nothing.
func (AllMethodsHook) NonProxyableMemberNotification(reflect.Type, Method) {}

// MethodsInspected does nothing.
func (AllMethodsHook) MethodsInspected() {}

// Equaler is implemented by option values that are not comparable with ==
// but still provide value equality. Hash must agree with Equal.
type Equaler interface {
	Equal(other any) bool
	Hash() uint64
}
