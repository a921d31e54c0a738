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

// Package dpx generates proxy types at runtime.
//
// A proxy type is synthesized from a struct class and/or a set of
// interfaces. Every intercepted call on an instance is packed into an
// invocation and handed to a chain of interceptors, which may inspect or
// rewrite arguments and results and decide whether the call continues to
// the real implementation: the class itself, a separate target, or a
// mixin.
//
// # Proxy families
//
//   - Class proxies embed the class and reach its own methods once the
//     chain is exhausted.
//   - Class proxies with target forward to a separate *T.
//   - Interface proxies with target forward to a target of a fixed
//     concrete type.
//   - Interface proxies with target interface forward to any
//     implementation; the target can be swapped per call or per proxy.
//   - Interface proxies without target are answered by interceptors alone.
//
// # Design
//
// Generated types are cached by shape: the proxy family, the proxied type,
// the set of additional interfaces and the generation options. Two
// requests of the same shape always return the same *proxy.ProxyType, and
// a shape is generated at most once even under concurrent requests.
//
// Types are assembled by member contributors (target, mixins, additional
// interfaces, infrastructure, serialization) over a metadata model, and
// emitted through an emission backend. The default backend lays fields out
// with reflect.StructOf and compiles member bodies into closures.
//
// Go has no runtime method definition, so proxies are used dynamically:
//
//	p, _ := dpx.CreateInterfaceProxyWithoutTarget(dpx.InterfaceOf[Calc](), config.DefaultOptions(), ic)
//	out, _ := p.Call("Add", 1, 2)
//
//	var add func(int, int) int
//	_ = p.Bind("Add", &add)
//
// # Default generator
//
// This package holds a process-wide generator behind an atomic pointer.
// Reads never lock; Configure and SetDefault publish a new generator and
// every later call uses it. Types generated by a replaced generator stay
// valid. Applications that need isolation create their own
// proxy.Generator instead.
package dpx
