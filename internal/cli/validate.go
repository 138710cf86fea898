package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mapstyle/pkg/catalog"
	"github.com/matzehuels/mapstyle/pkg/errors"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate PATH...",
		Short: "Check style files or directories",
		Long: `Validate loads each path as a style source and reports the records it
defines. Records whose id also exists in the built-in styles are reported,
since they take priority over the built-in record.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			builtin, err := catalog.Load(ctx, catalog.Builtin())
			if err != nil {
				return err
			}

			failed := 0
			for _, p := range args {
				src, err := catalog.PathSource(p)
				if err != nil {
					printError(w, "%s: %s", p, errors.UserMessage(err))
					failed++
					continue
				}
				cat, err := catalog.Load(ctx, src)
				if err != nil {
					printError(w, "%s: %s", p, errors.UserMessage(err))
					failed++
					continue
				}
				printSuccess(w, "%s: %d records", p, cat.Len())
				for _, rec := range cat.Records() {
					if _, err := builtin.Get(rec.ID); err == nil {
						printWarning(w, "%s overrides the built-in record %s", rec.Source, rec.ID)
					}
				}
			}

			if failed > 0 {
				return errors.New(errors.ErrCodeInvalidDocument, "%d of %d paths failed validation", failed, len(args))
			}
			return nil
		},
	}
}
