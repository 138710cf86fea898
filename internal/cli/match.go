package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mapstyle/pkg/errors"
	"github.com/matzehuels/mapstyle/pkg/pipeline"
	"github.com/matzehuels/mapstyle/pkg/style"
)

// matchCommand creates the match command.
func (c *CLI) matchCommand() *cobra.Command {
	var (
		file   string
		asJSON bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "match [key=value...]",
		Short: "Show which style record matches dataset metadata",
		Example: `  mapstyle match shortName=tp
  mapstyle match paramId=228228 levtype=sfc --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := parseMetadata(file, args)
			if err != nil {
				return err
			}
			if err := pipeline.ValidateMetadata(md); err != nil {
				return err
			}
			cat, err := c.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			rec, ok := cat.Match(style.Attrs(md))
			c.Logger.Debug("match", "metadata", md, "matched", ok)

			w := cmd.OutOrStdout()
			if asJSON {
				out := map[string]any{"matched": ok}
				if ok {
					out["id"] = rec.ID
					out["preferred_style"] = rec.Preferred
					out["source"] = rec.Source
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(out); err != nil {
					return err
				}
			} else if ok {
				printSuccess(w, "%s", StyleHighlight.Render(rec.ID))
				if rec.Description != "" {
					printDetail(w, "%s", rec.Description)
				}
				printKeyValue(w, "preferred", rec.Preferred)
				printKeyValue(w, "styles", strings.Join(rec.Names(), ", "))
				printKeyValue(w, "source", rec.Source)
			} else {
				printWarning(w, "No style matched")
			}

			if !ok && strict {
				return errors.New(errors.ErrCodeStyleNotFound, "no style matches %v", md)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read metadata from a YAML or JSON file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with an error when nothing matches")

	return cmd
}
