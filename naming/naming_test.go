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

package naming_test

import (
	"reflect"
	"sync"
	"testing"

	"dirpx.dev/dpx/builder"
	"dirpx.dev/dpx/config"
	"dirpx.dev/dpx/naming"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Service struct{}

type tagged struct{}

func (tagged) EntityName() string { return "billing.ledger" }

func TestScope_GetUniqueName(t *testing.T) {
	s := naming.NewScope()
	assert.Equal(t, "dpx.proxies.FooProxy", s.GetUniqueName("dpx.proxies.FooProxy"))
	assert.Equal(t, "dpx.proxies.FooProxy_1", s.GetUniqueName("dpx.proxies.FooProxy"))
	assert.Equal(t, "dpx.proxies.FooProxy_2", s.GetUniqueName("dpx.proxies.FooProxy"))
	assert.Equal(t, "Bar", s.GetUniqueName("Bar"))
}

func TestScope_SuffixSkipsReservedNames(t *testing.T) {
	s := naming.NewScope()
	require.True(t, s.Reserve("X_1"))
	assert.Equal(t, "X", s.GetUniqueName("X"))
	assert.Equal(t, "X_2", s.GetUniqueName("X"))
	assert.False(t, s.Reserve("X"))
}

func TestScope_ChildIsIsolated(t *testing.T) {
	root := naming.NewScope()
	child := root.Child()
	assert.Equal(t, "Get_callback", child.GetUniqueName("Get_callback"))
	assert.Equal(t, "Get_callback", root.GetUniqueName("Get_callback"))
	assert.Same(t, root, child.Parent())
}

func TestScope_Concurrent(t *testing.T) {
	s := naming.NewScope()
	const n = 64
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]struct{}, n)
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			name := s.GetUniqueName("P")
			mu.Lock()
			seen[name] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
}

func TestProxyNamer(t *testing.T) {
	cfg := config.DefaultNameConfig()
	b := builder.New()
	reg := b.BuildRegistry(cfg, nil, nil)
	res := b.BuildResolver(cfg, reg, nil, nil)
	n := naming.NewProxyNamer(res, cfg, config.DefaultNamespace, config.DefaultInvocationNamespace, nil)

	st := reflect.TypeOf(Service{})
	assert.Equal(t, "dpx.proxies.ServiceProxy", n.ProxyName(st))
	assert.Equal(t, "dpx.proxies.ServiceProxy_1", n.ProxyName(st))
	assert.Equal(t, "dpx.invocations.Service_Get", n.InvocationName(st, "Get"))
	assert.Equal(t, "dpx.proxies.ledgerProxy", n.ProxyName(reflect.TypeOf(tagged{})))

	require.NoError(t, reg.Register(st, "acme.Billing"))
	assert.Equal(t, "acme.Billing", n.TypeName(st))
	assert.Equal(t, "dpx.proxies.BillingProxy", n.ProxyName(st))
}
