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
	"reflect"

	"dirpx.dev/dpx/serial"
)

// Serializable marks classes whose proxies can be serialized.
type Serializable interface {
	Serializable()
}

// ObjectDataProvider is implemented (on *T) by serializable classes that
// write their own state. Proxies call it instead of capturing exported
// fields.
type ObjectDataProvider interface {
	GetObjectData(info *serial.Info) error
}

// ObjectDataReceiver restores state written by ObjectDataProvider. A class
// providing object data must also receive it.
type ObjectDataReceiver interface {
	SetObjectData(info *serial.Info) error
}

// Reflected forms of the serialization interfaces.
var (
	SerializableType       = reflect.TypeOf((*Serializable)(nil)).Elem()
	ObjectDataProviderType = reflect.TypeOf((*ObjectDataProvider)(nil)).Elem()
	ObjectDataReceiverType = reflect.TypeOf((*ObjectDataReceiver)(nil)).Elem()
)
