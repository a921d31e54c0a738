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

import (
	"go.trai.ch/zerr"
)

// Error categories. Every error raised by dpx wraps exactly one of them, so
// callers can branch with errors.Is on the category or on the specific
// sentinel below.
var (
	// ErrConfiguration marks invalid generation requests. Raised before any
	// emission begins and never cached.
	ErrConfiguration = zerr.New("dpx: configuration error")
	// ErrInternal marks broken generation-time invariants. Seeing one in
	// correct usage is a bug in dpx or in a custom contributor/backend.
	ErrInternal = zerr.New("dpx: internal error")
	// ErrInvocation marks failures raised while a generated method executes.
	ErrInvocation = zerr.New("dpx: invocation error")
)

// Configuration errors.
var (
	ErrNilType                           = zerr.Wrap(ErrConfiguration, "nil type")
	ErrOpenGeneric                       = zerr.Wrap(ErrConfiguration, "open generic type definition cannot be proxied")
	ErrReservedInterface                 = zerr.Wrap(ErrConfiguration, "type implements the reserved proxy infrastructure interface; proxying a proxy is not supported")
	ErrNotInterface                      = zerr.Wrap(ErrConfiguration, "type is not an interface")
	ErrNotClass                          = zerr.Wrap(ErrConfiguration, "type is not a struct class")
	ErrMethodConflict                    = zerr.Wrap(ErrConfiguration, "interfaces declare the same method with different signatures")
	ErrOptionsEquality                   = zerr.Wrap(ErrConfiguration, "generation options must provide value equality")
	ErrMixin                             = zerr.Wrap(ErrConfiguration, "invalid mixin")
	ErrDuplicateMixin                    = zerr.Wrap(ErrConfiguration, "interface is implemented by more than one mixin")
	ErrSealedObjectData                  = zerr.Wrap(ErrConfiguration, "serializable type seals GetObjectData")
	ErrMissingDeserializationConstructor = zerr.Wrap(ErrConfiguration, "serializable type provides GetObjectData but no SetObjectData")
	ErrInvalidTarget                     = zerr.Wrap(ErrConfiguration, "target does not match the proxied type")
	ErrNotSerializable                   = zerr.Wrap(ErrConfiguration, "proxy type is not serializable")
	ErrUnknownTypeName                   = zerr.Wrap(ErrConfiguration, "type name is not registered")
)

// Internal defects.
var (
	ErrModelSealed    = zerr.Wrap(ErrInternal, "member collected after emission began")
	ErrDuplicateClaim = zerr.Wrap(ErrInternal, "member claimed by more than one contributor")
	ErrUnroutedMember = zerr.Wrap(ErrInternal, "interface member is routed to no implementation")
	ErrEmission       = zerr.Wrap(ErrInternal, "emission failed")
	ErrTypeCompleted  = zerr.Wrap(ErrInternal, "type builder already completed")
	ErrMethodNotFound = zerr.Wrap(ErrInternal, "could not find method on target")
)

// Invocation errors.
var (
	ErrNoTarget     = zerr.Wrap(ErrInvocation, "proceed reached the end of the interceptor chain but the proxy has no target")
	ErrNotSupported = zerr.Wrap(ErrInvocation, "operation is not supported for this method")
	ErrArguments    = zerr.Wrap(ErrInvocation, "invalid call arguments")
	ErrNoMethod     = zerr.Wrap(ErrInvocation, "proxy type has no such method")
	ErrPanic        = zerr.Wrap(ErrInvocation, "recovered panic in guarded block")
)

// Fail wraps sentinel so it stays in the error chain and attaches the
// key/value pairs in kv as metadata. Odd trailing keys are ignored.
func Fail(sentinel error, kv ...any) error {
	err := zerr.Wrap(sentinel, "")
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		err = zerr.With(err, key, kv[i+1])
	}
	return err
}
