package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mapstyle/pkg/errors"
	"github.com/matzehuels/mapstyle/pkg/schema"
)

// schemaCommand creates the schema command group.
func (c *CLI) schemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect the defaults schemas",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the built-in schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			current := c.config().Schema
			for _, name := range schema.Names() {
				if name == current {
					fmt.Fprintln(cmd.OutOrStdout(), StyleHighlight.Render(name)+" "+StyleDim.Render("(active)"))
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	})
	cmd.AddCommand(c.schemaShowCommand())

	return cmd
}

func (c *CLI) schemaShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show [NAME|FILE]",
		Short: "Print a schema; without an argument, the active one with config overrides",
		Args:  cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return schema.Names(), cobra.ShellCompDirectiveDefault
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				s   *schema.Schema
				err error
			)
			if len(args) == 1 {
				s, err = schema.Use(args[0])
			} else {
				s, err = c.config().LoadSchema()
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch format {
			case formatJSON:
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(s.Map())
			case formatYAML:
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(s); err != nil {
					return err
				}
				return enc.Close()
			}
			return errors.New(errors.ErrCodeInvalidInput, "format must be yaml or json, got %q", format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", formatYAML, "output format: yaml or json")

	return cmd
}
