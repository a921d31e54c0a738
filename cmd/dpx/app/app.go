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

// Package app holds the components of the dpx command.
package app

import (
	"os"

	"github.com/sirupsen/logrus"

	"dirpx.dev/dpx/apis"
	"dirpx.dev/dpx/config"
	"dirpx.dev/dpx/store"
)

// EnvConfig names the environment variable pointing at a settings file.
const EnvConfig = "DPX_CONFIG"

// LoadSettings reads the file named by EnvConfig, or returns the defaults
// when it is unset.
func LoadSettings() (config.Settings, error) {
	path := os.Getenv(EnvConfig)
	if path == "" {
		return config.DefaultSettings(), nil
	}
	return config.LoadSettings(path)
}

// App reads and checks persisted shape mappings.
type App struct {
	settings config.Settings
	log      logrus.FieldLogger
}

// New creates an App.
func New(s config.Settings, log logrus.FieldLogger) *App {
	return &App{settings: s, log: log}
}

// Settings returns the loaded settings.
func (a *App) Settings() config.Settings { return a.settings }

// Logger returns the application logger.
func (a *App) Logger() logrus.FieldLogger { return a.log }

// ModulePath returns path, or the configured module path when path is
// empty.
func (a *App) ModulePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if a.settings.ModulePath == "" {
		return "", apis.Fail(apis.ErrConfiguration, "reason", "no module path given and none configured")
	}
	return a.settings.ModulePath, nil
}

// Inspect loads the module at path.
func (a *App) Inspect(path string) (*store.Module, error) {
	path, err := a.ModulePath(path)
	if err != nil {
		return nil, err
	}
	m, err := store.Load(path)
	if err != nil {
		return nil, err
	}
	a.log.WithFields(logrus.Fields{"path": path, "id": m.ID}).Debug("module loaded")
	return m, nil
}

// Verify checks the module at path and returns the number of mappings.
func (a *App) Verify(path string) (int, error) {
	m, err := a.Inspect(path)
	if err != nil {
		return 0, err
	}
	return len(m.Mappings), nil
}
