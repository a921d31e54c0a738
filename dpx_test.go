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

package dpx_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/dpx"
	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/config"
	"dirpx.dev/dpx/proxy"
)

type Greeter interface {
	Greet(name string) string
}

type english struct{}

func (english) Greet(name string) string { return "hello " + name }

type Counter struct{ N int }

func (c *Counter) Inc() int {
	c.N++
	return c.N
}

func upper() apis.Interceptor {
	return apis.InterceptorFunc(func(inv apis.Invocation) error {
		if err := inv.Proceed(); err != nil {
			return err
		}
		inv.SetReturnValue(0, inv.ReturnValue(0).(string)+"!")
		return nil
	})
}

func TestDefault_CreatesProxies(t *testing.T) {
	dpx.Reset()
	p, err := dpx.CreateInterfaceProxyWithTarget(dpx.InterfaceOf[Greeter](), english{}, config.DefaultOptions(), upper())
	require.NoError(t, err)

	out, err := p.Call("Greet", "bo")
	require.NoError(t, err)
	assert.Equal(t, []any{"hello bo!"}, out)

	c, err := dpx.CreateClassProxy(dpx.ClassOf[Counter](), &Counter{N: 1}, config.DefaultOptions())
	require.NoError(t, err)
	out, err = c.Call("Inc")
	require.NoError(t, err)
	assert.Equal(t, []any{2}, out)
	assert.Equal(t, 2, dpx.Default().Len())
}

func TestConfigure_ReplacesGenerator(t *testing.T) {
	dpx.Reset()
	before := dpx.Default()

	s := config.DefaultSettings()
	s.Namespace = "acme.proxies"
	g := dpx.Configure(s)
	assert.NotSame(t, before, g)
	assert.Same(t, g, dpx.Default())

	pt, err := g.CreateInterfaceProxyTypeWithoutTarget(dpx.InterfaceOf[Greeter](), nil, config.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "acme.proxies.GreeterProxy", pt.Name())

	custom := proxy.NewGenerator()
	assert.Same(t, g, dpx.SetDefault(custom))
	assert.Same(t, custom, dpx.SetDefault(nil))
	assert.Same(t, custom, dpx.Default())
}

func TestDefault_ConcurrentReadsAndSwaps(t *testing.T) {
	dpx.Reset()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%4 == 0 {
				dpx.Reset()
				return
			}
			_, err := dpx.CreateInterfaceProxyWithoutTarget(dpx.InterfaceOf[Greeter](), config.DefaultOptions())
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.NotNil(t, dpx.Default())
}

func TestRegisterType(t *testing.T) {
	dpx.Reset()
	require.NoError(t, dpx.RegisterType(dpx.ClassOf[Counter](), "acme.Counter"))
	name, ok := dpx.Default().Registry().Lookup(dpx.ClassOf[Counter]())
	require.True(t, ok)
	assert.Equal(t, "acme.Counter", name)
}
