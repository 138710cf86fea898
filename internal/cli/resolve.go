package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mapstyle/pkg/errors"
	"github.com/matzehuels/mapstyle/pkg/pipeline"
	"github.com/matzehuels/mapstyle/pkg/style"
)

// Output formats of resolve.
const (
	formatYAML = "yaml"
	formatJSON = "json"
	formatText = "text"
)

// resolveFlags holds the flags of the resolve command.
type resolveFlags struct {
	file       string
	style      string
	units      string
	layer      string
	format     string
	noFallback bool
	noCache    bool
	refresh    bool
}

func (f *resolveFlags) options(args []string) (pipeline.Options, error) {
	md, err := parseMetadata(f.file, args)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Metadata:   md,
		Style:      f.style,
		Units:      f.units,
		Layer:      f.layer,
		NoFallback: f.noFallback,
		Refresh:    f.refresh,
	}, nil
}

func validateFormat(format string) error {
	switch format {
	case formatYAML, formatJSON, formatText:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput, "format must be yaml, json or text, got %q", format)
}

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "resolve [key=value...]",
		Short: "Resolve plotting parameters for dataset metadata",
		Long: `Resolve matches the metadata against the catalog, picks a sub-style and
prints the complete plotting parameters with the defaults filled in.

Values are typed like YAML: integers, floats and true/false are converted,
anything else is a string. Quote a value to keep it a string.`,
		Example: `  mapstyle resolve shortName=tp
  mapstyle resolve paramId=167 --units degC --format json
  mapstyle resolve -f field.yaml --style temperature_in_kelvin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(flags.format); err != nil {
				return err
			}
			opts, err := flags.options(args)
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())
			opts.Logger = logger

			runner, err := c.newRunner(cmd.Context(), flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.Execute(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if res.CacheHit {
				logger.Debug("served from cache", "id", res.StyleID)
			}
			return writeResult(cmd.OutOrStdout(), res, flags.format)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "read metadata from a YAML or JSON file")
	cmd.Flags().StringVarP(&flags.style, "style", "s", "", "sub-style to use instead of the preferred one")
	cmd.Flags().StringVarP(&flags.units, "units", "u", "", "select the sub-style for these units")
	cmd.Flags().StringVar(&flags.layer, "layer", "", "layer kind to resolve as: contour or point")
	cmd.Flags().StringVarP(&flags.format, "format", "o", formatYAML, "output format: yaml, json or text")
	cmd.Flags().BoolVar(&flags.noFallback, "no-fallback", false, "fail instead of using generic defaults when nothing matches")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the resolve cache")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "resolve again even when cached")

	return cmd
}

// resultDoc orders the YAML rendering of a result.
type resultDoc struct {
	Matched bool         `yaml:"matched"`
	ID      string       `yaml:"id,omitempty"`
	Style   string       `yaml:"style,omitempty"`
	Source  string       `yaml:"source,omitempty"`
	Label   string       `yaml:"label,omitempty"`
	Params  style.Params `yaml:"params"`
}

func writeResult(w io.Writer, res *pipeline.Result, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case formatText:
		printResult(w, res)
		return nil
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(resultDoc{
		Matched: res.Matched,
		ID:      res.StyleID,
		Style:   res.StyleName,
		Source:  res.Source,
		Label:   res.Label,
		Params:  res.Params,
	}); err != nil {
		return err
	}
	return enc.Close()
}

func printResult(w io.Writer, res *pipeline.Result) {
	if res.Matched {
		printSuccess(w, "%s %s %s", StyleHighlight.Render(res.StyleID), StyleDim.Render(iconArrow), res.StyleName)
		printDetail(w, "%s", res.Source)
	} else {
		printWarning(w, "No style matched; using generic defaults")
	}
	if res.Label != "" {
		printKeyValue(w, "label", res.Label)
	}
	printKeyValue(w, "params", "")
	printParams(w, res.Params)
}
