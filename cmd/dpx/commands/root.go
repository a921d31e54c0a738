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

// Package commands implements the dpx command line.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"dirpx.dev/dpx/cmd/dpx/app"
)

// CLI is the dpx command line.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates the CLI over a.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "dpx",
		Short:         "Inspect persisted proxy shape mappings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{app: a, rootCmd: rootCmd}
	rootCmd.AddCommand(c.newModuleCmd())
	return c
}

// Execute runs the root command with ctx.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects standard and error output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}
