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

package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func (c *CLI) newModuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Work with persisted shape mappings",
	}
	cmd.AddCommand(c.newInspectCmd(), c.newVerifyCmd())
	return cmd
}

func (c *CLI) newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print the mappings of a module",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.app.Inspect(firstArg(args))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "id:       %s\n", m.ID)
			_, _ = fmt.Fprintf(out, "schema:   %d\n", m.Schema)
			_, _ = fmt.Fprintf(out, "created:  %s\n", m.Created.UTC().Format(time.RFC3339))
			_, _ = fmt.Fprintf(out, "checksum: %016x\n\n", m.Checksum)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "TYPE\tKIND\tDESCRIPTOR")
			for _, mp := range m.Mappings {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", mp.TypeName, mp.Kind, mp.Descriptor)
			}
			return tw.Flush()
		},
	}
}

func (c *CLI) newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [file]",
		Short: "Check the schema and checksum of a module",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.app.Verify(firstArg(args))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ok: %d mappings\n", n)
			return nil
		},
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
