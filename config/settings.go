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

package config

import (
	"os"
	"strings"

	"dirpx.dev/dpx/apis"
	"github.com/sirupsen/logrus"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultNamespace prefixes the names of generated proxy types.
	DefaultNamespace = "dpx.proxies"
	// DefaultInvocationNamespace prefixes the names of invocation types.
	DefaultInvocationNamespace = "dpx.invocations"
	// DefaultLogLevel is the logrus level of the default generator logger.
	DefaultLogLevel = "warn"
	// DefaultMemoSize bounds the introspection memo (types, not members).
	DefaultMemoSize = 512
	// DefaultMetricsNamespace prefixes exported Prometheus metrics.
	DefaultMetricsNamespace = "dpx"

	// DefaultIncludeBuiltins keeps predeclared types in generated names.
	DefaultIncludeBuiltins = true
	// DefaultMaxUnwrap bounds pointer, slice and map unwrapping while naming.
	DefaultMaxUnwrap = 8
	// DefaultMapPreferElem names maps after their element type.
	DefaultMapPreferElem = true
	// DefaultQualified leaves generated names unqualified.
	DefaultQualified = false
)

var (
	// ErrSettingsRead is returned when a settings file cannot be read.
	ErrSettingsRead = zerr.New("dpx(config): failed to read settings")
	// ErrSettingsParse is returned when a settings file is not valid YAML.
	ErrSettingsParse = zerr.New("dpx(config): failed to parse settings")
)

// Settings configure a generator as a whole, as opposed to Options which
// configure one generation request.
type Settings struct {
	// Namespace prefixes generated proxy type names.
	Namespace string `yaml:"namespace"`
	// InvocationNamespace prefixes generated invocation type names.
	InvocationNamespace string `yaml:"invocation_namespace"`
	// LogLevel is a logrus level name.
	LogLevel string `yaml:"log_level"`
	// MemoSize bounds the number of types whose members are memoized.
	MemoSize int `yaml:"memo_size"`
	// ModulePath, when set, is where SaveModule writes and LoadModule reads
	// the on-disk shape mapping by default.
	ModulePath string `yaml:"module_path"`
	// MetricsNamespace prefixes exported metrics.
	MetricsNamespace string `yaml:"metrics_namespace"`
	// Naming controls how proxied types are named.
	Naming NamingSettings `yaml:"naming"`
}

// NamingSettings is the YAML form of apis.NameConfig. Unset keys take the
// package defaults.
type NamingSettings struct {
	IncludeBuiltins *bool `yaml:"include_builtins"`
	// MaxUnwrap of zero or less means DefaultMaxUnwrap.
	MaxUnwrap     int   `yaml:"max_unwrap"`
	MapPreferElem *bool `yaml:"map_prefer_elem"`
	Qualified     *bool `yaml:"qualified"`
}

// NameConfig resolves n against the defaults.
func (n NamingSettings) NameConfig() apis.NameConfig {
	cfg := apis.NameConfig{
		IncludeBuiltins: DefaultIncludeBuiltins,
		MaxUnwrap:       DefaultMaxUnwrap,
		MapPreferElem:   DefaultMapPreferElem,
		Qualified:       DefaultQualified,
	}
	if n.IncludeBuiltins != nil {
		cfg.IncludeBuiltins = *n.IncludeBuiltins
	}
	if n.MaxUnwrap > 0 {
		cfg.MaxUnwrap = n.MaxUnwrap
	}
	if n.MapPreferElem != nil {
		cfg.MapPreferElem = *n.MapPreferElem
	}
	if n.Qualified != nil {
		cfg.Qualified = *n.Qualified
	}
	return cfg
}

// NameOption sets one key of the naming section.
type NameOption func(*NamingSettings)

// WithIncludeBuiltins sets include_builtins.
func WithIncludeBuiltins(include bool) NameOption {
	return func(n *NamingSettings) { n.IncludeBuiltins = &include }
}

// WithMaxUnwrap sets max_unwrap. A negative value resets to the default.
func WithMaxUnwrap(max int) NameOption {
	return func(n *NamingSettings) { n.MaxUnwrap = max }
}

// WithMapPreferElem sets map_prefer_elem.
func WithMapPreferElem(prefer bool) NameOption {
	return func(n *NamingSettings) { n.MapPreferElem = &prefer }
}

// WithQualified sets qualified.
func WithQualified(qualified bool) NameOption {
	return func(n *NamingSettings) { n.Qualified = &qualified }
}

// NewNameConfig resolves a naming section built from opts.
func NewNameConfig(opts ...NameOption) apis.NameConfig {
	var n NamingSettings
	for _, opt := range opts {
		opt(&n)
	}
	return n.NameConfig()
}

// DefaultNameConfig is the naming configuration of an empty naming section.
func DefaultNameConfig() apis.NameConfig { return NamingSettings{}.NameConfig() }

// DefaultSettings returns the settings used when none are provided.
func DefaultSettings() Settings {
	return Settings{
		Namespace:           DefaultNamespace,
		InvocationNamespace: DefaultInvocationNamespace,
		LogLevel:            DefaultLogLevel,
		MemoSize:            DefaultMemoSize,
		MetricsNamespace:    DefaultMetricsNamespace,
	}
}

// LoadSettings reads YAML settings from path. Missing keys keep their
// defaults.
func LoadSettings(path string) (Settings, error) {
	// #nosec G304 -- path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, zerr.With(zerr.Wrap(err, ErrSettingsRead.Error()), "path", path)
	}
	s, err := ParseSettings(data)
	if err != nil {
		return Settings{}, zerr.With(err, "path", path)
	}
	return s, nil
}

// ParseSettings decodes YAML settings. Missing keys keep their defaults.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, zerr.Wrap(err, ErrSettingsParse.Error())
	}
	return s.normalized(), nil
}

func (s Settings) normalized() Settings {
	def := DefaultSettings()
	if strings.TrimSpace(s.Namespace) == "" {
		s.Namespace = def.Namespace
	}
	if strings.TrimSpace(s.InvocationNamespace) == "" {
		s.InvocationNamespace = def.InvocationNamespace
	}
	if s.LogLevel == "" {
		s.LogLevel = def.LogLevel
	}
	if s.MemoSize <= 0 {
		s.MemoSize = def.MemoSize
	}
	if s.MetricsNamespace == "" {
		s.MetricsNamespace = def.MetricsNamespace
	}
	return s
}

// NameConfig converts the naming section into an apis.NameConfig.
func (s Settings) NameConfig() apis.NameConfig { return s.Naming.NameConfig() }

// Logger builds a logrus logger at the configured level. Unknown levels
// fall back to DefaultLogLevel.
func (s Settings) Logger() *logrus.Logger {
	l := logrus.New()
	lvl, err := logrus.ParseLevel(s.LogLevel)
	if err != nil {
		lvl, _ = logrus.ParseLevel(DefaultLogLevel)
	}
	l.SetLevel(lvl)
	return l
}
