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

package reflect

import (
	"reflect"
	"strings"
)

// QualifiedName returns "import/path.Name" for named types and the reflect
// string form otherwise.
func QualifiedName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if p := t.PkgPath(); p != "" && t.Name() != "" {
		return p + "." + t.Name()
	}
	return t.String()
}

// TypeArgString renders t the way the runtime spells it inside the type
// argument list of an instantiated generic type name.
func TypeArgString(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Name() != "" {
		return QualifiedName(t)
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + TypeArgString(t.Elem())
	case reflect.Slice:
		return "[]" + TypeArgString(t.Elem())
	case reflect.Map:
		return "map[" + TypeArgString(t.Key()) + "]" + TypeArgString(t.Elem())
	default:
		return t.String()
	}
}

// SplitGeneric splits an instantiated generic name "Box[a,b]" into its
// family "Box" and its type arguments. ok is false for non-generic names.
func SplitGeneric(name string) (family string, args []string, ok bool) {
	open := strings.IndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return name, nil, false
	}
	family = name[:open]
	inner := name[open+1 : len(name)-1]

	depth, start := 0, 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(inner[start:]))
	return family, args, true
}

// GenericArgs returns the type argument strings of t, or nil when t is not
// an instantiated generic type.
func GenericArgs(t reflect.Type) []string {
	if t == nil {
		return nil
	}
	_, args, ok := SplitGeneric(t.Name())
	if !ok {
		return nil
	}
	return args
}

// GenericFamily returns "import/path.Box" for an instantiated Box[...].
func GenericFamily(t reflect.Type) (string, bool) {
	if t == nil {
		return "", false
	}
	family, _, ok := SplitGeneric(t.Name())
	if !ok {
		return "", false
	}
	return t.PkgPath() + "." + family, true
}
