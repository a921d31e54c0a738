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

package naming

import (
	"reflect"
	"strings"

	"dirpx.dev/dpx/apis"
)

// ProxyNamer derives the names of generated types from the names of the
// types they proxy, through a naming chain.
type ProxyNamer struct {
	res         apis.Resolver
	cfg         apis.NameConfig
	namespace   string
	invocations string
	scope       *Scope
}

// NewProxyNamer creates a namer drawing unique names from scope.
func NewProxyNamer(res apis.Resolver, cfg apis.NameConfig, namespace, invocationNamespace string, scope *Scope) *ProxyNamer {
	if scope == nil {
		scope = NewScope()
	}
	return &ProxyNamer{
		res:         res,
		cfg:         cfg,
		namespace:   namespace,
		invocations: invocationNamespace,
		scope:       scope,
	}
}

// Scope returns the scope names are drawn from.
func (n *ProxyNamer) Scope() *Scope {
	return n.scope
}

// ProxyName returns a unique name such as "dpx.proxies.ServiceProxy".
func (n *ProxyNamer) ProxyName(base reflect.Type) string {
	return n.scope.GetUniqueName(n.namespace + "." + n.short(base) + "Proxy")
}

// InvocationName returns a unique name such as
// "dpx.invocations.Service_Get".
func (n *ProxyNamer) InvocationName(decl reflect.Type, method string) string {
	return n.scope.GetUniqueName(n.invocations + "." + n.short(decl) + "_" + method)
}

// TypeName resolves the registry name of t.
func (n *ProxyNamer) TypeName(t reflect.Type) string {
	if n.res == nil {
		return ""
	}
	return n.res.ResolveType(t, n.cfg)
}

// short keeps the last element of the resolved name.
func (n *ProxyNamer) short(t reflect.Type) string {
	name := ""
	if n.res != nil && t != nil {
		name = n.res.ResolveType(t, n.cfg)
	}
	if i := strings.LastIndexAny(name, "./"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "Anonymous"
	}
	return name
}
