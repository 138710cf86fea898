// Package pipeline provides the match → select → resolve pipeline shared by
// the CLI and the HTTP service.
//
// By centralizing this logic, the command line and the server select the
// same sub-style for the same metadata and cache results the same way.
//
// # Stages
//
//  1. Match: find the first catalog record whose criteria hold for the
//     dataset metadata. No match falls back to generic defaults.
//  2. Select: pick a sub-style, by explicit name, by requested units, or
//     the record's preferred sub-style.
//  3. Resolve: merge the sub-style over the defaults schema (package
//     resolve).
//  4. Label: format the legend label template from the metadata.
//
// # Usage
//
//	runner := pipeline.NewRunner(cat, schema.Default(), nil, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Metadata: map[string]any{"shortName": "tp"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.StyleID, res.StyleName) // precipitation precipitation_in_mm
package pipeline

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mapstyle/pkg/cache"
	"github.com/matzehuels/mapstyle/pkg/errors"
	"github.com/matzehuels/mapstyle/pkg/resolve"
	"github.com/matzehuels/mapstyle/pkg/style"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options describes one resolve request. It supports JSON serialization for
// API requests.
type Options struct {
	// Metadata holds the dataset attributes matched against the catalog.
	Metadata map[string]any `json:"metadata"`

	// Style names the sub-style to use instead of the preferred one.
	Style string `json:"style,omitempty"`

	// Units selects the first sub-style whose units are equivalent.
	Units string `json:"units,omitempty"`

	// Layer forces the layer kind ("contour", "point").
	Layer string `json:"layer,omitempty"`

	// NoFallback turns "no matching style" into an error instead of
	// resolving generic defaults.
	NoFallback bool `json:"no_fallback,omitempty"`

	// Refresh bypasses the cache lookup. The fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result is the outcome of a pipeline run.
type Result struct {
	// Matched reports whether a catalog record matched. False means Params
	// hold the generic defaults.
	Matched bool `json:"matched"`

	// StyleID is the id of the matched record.
	StyleID string `json:"id,omitempty"`

	// StyleName is the selected sub-style.
	StyleName string `json:"style,omitempty"`

	// Source is the file the matched record was loaded from.
	Source string `json:"source,omitempty"`

	// Params are the resolved rendering parameters. Numbers are float64,
	// numeric lists []float64, string lists []string and mappings
	// style.Params, for fresh and cached results alike.
	Params style.Params `json:"params"`

	// Label is the formatted legend label.
	Label string `json:"label,omitempty"`

	// CacheHit reports whether the result came from the cache.
	CacheHit bool `json:"-"`

	// Duration is the time spent in Execute.
	Duration time.Duration `json:"-"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateLayer checks that a layer kind is known. Empty is valid and means
// the kind of the selected sub-style.
func ValidateLayer(layer string) error {
	if layer == "" {
		return nil
	}
	if _, ok := resolve.Defaults(layer); !ok {
		return errors.New(errors.ErrCodeInvalidInput, "invalid layer: %q (must be one of: contour, point)", layer)
	}
	return nil
}

// ValidateMetadata checks every metadata key and that values are scalars.
// NaN and infinite numbers are rejected: they match nothing and cannot be
// encoded into a cache key.
func ValidateMetadata(md map[string]any) error {
	for k, v := range md {
		if err := errors.ValidateMetadataKey(k); err != nil {
			return err
		}
		switch n := v.(type) {
		case nil, string, bool, int, int32, int64, uint, uint32, uint64:
		case float32:
			if !finite(float64(n)) {
				return errors.New(errors.ErrCodeInvalidInput, "metadata %q must be a finite number, got %v", k, n)
			}
		case float64:
			if !finite(n) {
				return errors.New(errors.ErrCodeInvalidInput, "metadata %q must be a finite number, got %v", k, n)
			}
		default:
			return errors.New(errors.ErrCodeInvalidInput, "metadata %q must be a string, number or boolean, got %T", k, v)
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the request and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Metadata == nil {
		o.Metadata = map[string]any{}
	}
	if err := ValidateMetadata(o.Metadata); err != nil {
		return err
	}
	if o.Style != "" {
		if err := errors.ValidateStyleID(o.Style); err != nil {
			return err
		}
	}
	if err := ValidateLayer(o.Layer); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Attrs returns the metadata as matchable attributes.
func (o *Options) Attrs() style.Attrs {
	return style.Attrs(o.Metadata)
}

// KeyOpts returns cache key options for the request.
func (o *Options) KeyOpts() cache.ResolveKeyOpts {
	return cache.ResolveKeyOpts{
		Metadata:   o.Metadata,
		Style:      o.Style,
		Units:      o.Units,
		Layer:      o.Layer,
		NoFallback: o.NoFallback,
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
