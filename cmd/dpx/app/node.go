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

package app

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"github.com/sirupsen/logrus"

	"dirpx.dev/dpx/config"
)

const (
	// SettingsNodeID provides config.Settings.
	SettingsNodeID graft.ID = "dpx.settings"
	// LoggerNodeID provides the logger.
	LoggerNodeID graft.ID = "dpx.logger"
	// AppNodeID provides the App.
	AppNodeID graft.ID = "dpx.app"
)

func init() {
	graft.Register(graft.Node[config.Settings]{
		ID:        SettingsNodeID,
		Cacheable: true,
		Run: func(context.Context) (config.Settings, error) {
			return LoadSettings()
		},
	})

	graft.Register(graft.Node[logrus.FieldLogger]{
		ID:        LoggerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{SettingsNodeID},
		Run: func(ctx context.Context) (logrus.FieldLogger, error) {
			s, err := graft.Dep[config.Settings](ctx)
			if err != nil {
				return nil, err
			}
			l := s.Logger()
			l.SetOutput(os.Stderr)
			return l, nil
		},
	})

	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{SettingsNodeID, LoggerNodeID},
		Run: func(ctx context.Context) (*App, error) {
			s, err := graft.Dep[config.Settings](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[logrus.FieldLogger](ctx)
			if err != nil {
				return nil, err
			}
			return New(s, log), nil
		},
	})
}
