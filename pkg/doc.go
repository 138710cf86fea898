// Package pkg provides the core libraries for mapstyle weather map styling.
//
// # Overview
//
// Mapstyle decides how a gridded weather field should be drawn. A catalog of
// style records is matched against the field's metadata (GRIB keys such as
// shortName and paramId, or CF attributes such as standard_name), and the
// winning record's sub-style is resolved into a complete set of plotting
// parameters. The pkg directory is organized into four main areas:
//
//  1. [style], [catalog] - Style records, criteria and the ordered catalog
//  2. [resolve], [schema] - Parameter resolution against chart defaults
//  3. [colors], [levels], [units], [labels], [magics] - Value helpers
//  4. [pipeline], [server], [cache] - Orchestration and delivery
//
// # Architecture
//
// The typical data flow through mapstyle:
//
//	Dataset metadata
//	       ↓
//	  [catalog] package (first matching record wins)
//	       ↓
//	  [pipeline] package (pick a sub-style by name or units)
//	       ↓
//	  [resolve] package (layer defaults → schema → sub-style → overrides)
//	       ↓
//	  Plotting parameters + legend label
//
// # Quick Start
//
//	cat, _ := catalog.Default()
//	runner := pipeline.NewRunner(cat, nil, nil, nil, nil)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Metadata: map[string]any{"shortName": "2t"},
//	    Units:    "celsius",
//	})
//	// res.StyleName == "temperature_in_celsius"
//	// res.Params["levels"], res.Params["colors"], res.Label
//
// # Main Packages
//
// [style] - Style records, sub-style parameters and the criteria that match
// metadata. Documents are decoded from YAML with merge keys and anchors.
//
// [catalog] - Loads style documents from the embedded built-in set and user
// directories. Later sources take priority; inside a source, load order.
//
// [schema] - Named chart-wide defaults (fonts, colormap, per-layer sections).
//
// [resolve] - Merges layer defaults, the schema and a sub-style into final
// parameters, expanding level ranges and colormaps.
//
// [pipeline] - Match → select → resolve → label with caching, shared by the
// CLI and the HTTP service.
//
// [server] - HTTP service exposing lookups and resolution.
//
// [cache] - File and Redis result caches with content-derived keys.
//
// [config] - TOML configuration with environment overrides.
//
// [observability] - Hooks for logging and metrics around the pipeline.
//
// [errors] - Coded errors shared by every package.
//
// [catalog]: https://pkg.go.dev/github.com/matzehuels/mapstyle/pkg/catalog
// [style]: https://pkg.go.dev/github.com/matzehuels/mapstyle/pkg/style
// [resolve]: https://pkg.go.dev/github.com/matzehuels/mapstyle/pkg/resolve
// [schema]: https://pkg.go.dev/github.com/matzehuels/mapstyle/pkg/schema
// [colors]: https://pkg.go.dev/github.com/matzehuels/mapstyle/pkg/colors
// [levels]: https://pkg.go.dev/github.com/matzehuels/mapstyle/pkg/levels
// [units]: https://pkg.go.dev/github.com/matzehuels/mapstyle/pkg/units
// [labels]: https://pkg.go.dev/github.com/matzehuels/mapstyle/pkg/labels
// [magics]: https://pkg.go.dev/github.com/matzehuels/mapstyle/pkg/magics
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/mapstyle/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/mapstyle/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/mapstyle/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/mapstyle/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/mapstyle/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/mapstyle/pkg/errors
package pkg
