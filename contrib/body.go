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

package contrib

import (
	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/emit"
	"dirpx.dev/dpx/invocation"
)

// interceptedBody packs the arguments into an invocation of type it,
// proceeds, and unpacks results and by-ref arguments. Failures land in the
// trailing error result when the method has one.
func interceptedBody(m apis.Method, it emit.ConcreteType, target emit.Expr) []emit.Stmt {
	params := m.Params()
	items := make([]emit.Expr, len(params))
	for i, p := range params {
		if p.ByRef {
			items[i] = emit.Deref{X: emit.Arg{Index: i}}
		} else {
			items[i] = emit.Arg{Index: i}
		}
	}
	core := emit.Local{Name: "core"}
	body := []emit.Stmt{
		emit.Assign{Names: []string{"inv"}, X: emit.NewObject{Type: it, Args: []emit.Expr{
			emit.Self{},
			target,
			emit.Field{Name: apis.FieldInterceptors},
			emit.Field{Name: apis.FieldSelector},
			emit.MakeSlice{Elem: invocation.ArgType, Items: items},
		}}},
		emit.Assign{Names: []string{"core"}, X: emit.Field{Recv: emit.Local{Name: "inv"}, Name: invocation.FieldCore}},
		emit.Assign{Names: []string{"err"}, X: emit.Call{Recv: core, Method: "Proceed"}},
	}

	var ok []emit.Stmt
	for _, p := range params {
		if !p.ByRef {
			continue
		}
		ok = append(ok, emit.If{
			Cond: emit.Not{X: emit.IsNil{X: emit.Arg{Index: p.Index}}},
			Then: []emit.Stmt{emit.Store{
				Ptr: emit.Arg{Index: p.Index},
				X:   emit.Convert{To: p.Type.Elem(), X: emit.Call{Recv: core, Method: "Argument", Args: []emit.Expr{emit.Const{Value: p.Index}}}},
			}},
		})
	}
	results := make([]emit.Expr, m.Type.NumOut())
	for i := range results {
		results[i] = emit.Convert{To: m.Type.Out(i), X: emit.Call{Recv: core, Method: "ReturnValue", Args: []emit.Expr{emit.Const{Value: i}}}}
	}
	ok = append(ok, emit.Return{Values: results})

	body = append(body, emit.If{Cond: emit.IsNil{X: emit.Local{Name: "err"}}, Then: ok})
	return append(body, failWith(m, emit.Local{Name: "err"})...)
}

// failWith ends m with err: in its error result when it has one,
// otherwise as a failure of the call.
func failWith(m apis.Method, err emit.Expr) []emit.Stmt {
	if !m.ReturnsError() {
		return []emit.Stmt{emit.Fail{Err: err}}
	}
	n := m.Type.NumOut()
	vals := make([]emit.Expr, n)
	for i := 0; i < n-1; i++ {
		vals[i] = emit.Zero{Type: m.Type.Out(i)}
	}
	vals[n-1] = emit.Convert{To: apis.ErrorType, X: err}
	return []emit.Stmt{emit.Return{Values: vals}}
}

// forwardBody calls m on recv with the member's own arguments.
func forwardBody(m apis.Method, name string, recv emit.Expr) []emit.Stmt {
	call := emit.Call{Recv: recv, Method: name, Args: emit.Args(m.Type.NumIn())}
	if m.Type.NumOut() == 0 {
		return []emit.Stmt{emit.Do{X: call}}
	}
	return []emit.Stmt{emit.Return{Values: []emit.Expr{call}}}
}

// notSupported fails every call of m.
func notSupported(m apis.Method) []emit.Stmt {
	err := apis.Fail(apis.ErrNotSupported, "method", m.String(), "reason", "generic explicit interface method")
	return failWith(m, emit.Const{Value: err, Type: apis.ErrorType})
}
