package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mapstyle/pkg/cache"
	"github.com/matzehuels/mapstyle/pkg/catalog"
	"github.com/matzehuels/mapstyle/pkg/errors"
	"github.com/matzehuels/mapstyle/pkg/labels"
	"github.com/matzehuels/mapstyle/pkg/observability"
	"github.com/matzehuels/mapstyle/pkg/resolve"
	"github.com/matzehuels/mapstyle/pkg/schema"
	"github.com/matzehuels/mapstyle/pkg/style"
	"github.com/matzehuels/mapstyle/pkg/units"
)

// cacheKeyType labels resolve entries in cache hooks.
const cacheKeyType = "resolve"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating matching and caching logic.
//
// The Runner holds no per-request state. Catalog and Schema are immutable,
// so multiple goroutines can safely use the same Runner with different
// options.
type Runner struct {
	Catalog *catalog.Catalog
	Schema  *schema.Schema
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	// TTL is how long resolved results are cached.
	TTL time.Duration
}

// NewRunner creates a runner.
// If s is nil, the embedded default schema is used.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(cat *catalog.Catalog, s *schema.Schema, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if s == nil {
		s = schema.Default()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Catalog: cat,
		Schema:  s,
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		TTL:     cache.DefaultTTL,
	}
}

// Execute runs match → select → resolve → label with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if r.Catalog == nil {
		return nil, errors.New(errors.ErrCodeInternal, "pipeline runner has no catalog")
	}
	start := time.Now()
	key := r.Keyer.ResolveKey(r.Catalog.Fingerprint(), r.Schema.Hash(), opts.KeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if res, err := decodeResult(data); err == nil {
				observability.Cache().OnCacheHit(ctx, cacheKeyType)
				res.CacheHit = true
				res.Duration = time.Since(start)
				return res, nil
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			r.Logger.Warn("cache read failed", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
	}

	res, err := r.Resolve(ctx, opts)
	observability.Resolve().OnResolve(ctx, res.styleID(), res.styleName(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	// Cache the result
	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}

	res.Duration = time.Since(start)
	opts.Logger.Debug("resolved style",
		"id", res.StyleID,
		"style", res.StyleName,
		"matched", res.Matched,
		"duration", res.Duration)
	return res, nil
}

// Match returns the catalog record for the options' metadata.
func (r *Runner) Match(ctx context.Context, opts Options) (*style.Record, bool) {
	rec, ok := r.Catalog.Match(opts.Attrs())
	id := ""
	if ok {
		id = rec.ID
	}
	observability.Resolve().OnMatch(ctx, id, ok)
	return rec, ok
}

// Resolve runs the pipeline without the cache.
func (r *Runner) Resolve(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	rec, ok := r.Match(ctx, opts)
	if !ok && opts.NoFallback {
		return nil, errors.New(errors.ErrCodeStyleNotFound, "no style matches metadata %v", opts.Metadata)
	}

	name, err := SelectStyle(rec, opts.Style, r.selectionUnits(opts))
	if err != nil {
		return nil, err
	}

	var ropts []resolve.Option
	if opts.Layer != "" {
		ropts = append(ropts, resolve.WithKind(opts.Layer))
	}
	if rec == nil && opts.Units != "" {
		ropts = append(ropts, resolve.WithOverrides(style.Params{resolve.KeyUnits: opts.Units}))
	}
	params, err := resolve.Resolve(rec, name, r.Schema, ropts...)
	if err != nil {
		return nil, err
	}

	res := &Result{Matched: rec != nil, Params: canonicalParams(params)}
	if rec != nil {
		res.StyleID = rec.ID
		res.StyleName = name
		res.Source = rec.Source
	}
	res.Label, err = Label(params, opts.Attrs(), opts.Units)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// selectionUnits returns the units a sub-style is selected by. With
// use_preferred_styles disabled, a request without units selects by the
// dataset's own "units" attribute instead of the preferred sub-style.
func (r *Runner) selectionUnits(opts Options) string {
	if opts.Units != "" || r.Schema.UsePreferredStyles {
		return opts.Units
	}
	if v, ok := opts.Metadata[resolve.KeyUnits]; ok && v != nil {
		return style.FormatValue(v)
	}
	return ""
}

// SelectStyle picks the sub-style of rec: name if given, else the first
// sub-style in document order whose units are equivalent to u, else the
// preferred sub-style. A nil rec has no sub-styles; naming one fails.
func SelectStyle(rec *style.Record, name, u string) (string, error) {
	if rec == nil {
		if name != "" {
			return "", errors.New(errors.ErrCodeStyleNotFound, "no style matched, cannot select sub-style %q", name)
		}
		return "", nil
	}
	switch {
	case name != "":
		if _, ok := rec.Styles[name]; !ok {
			// Let Record.Style report the available names.
			_, err := rec.Style(name)
			return "", err
		}
		return name, nil
	case u != "":
		found, ok := rec.SelectStyle(func(_ string, p style.Params) bool {
			v, has := p[resolve.KeyUnits]
			return has && units.Equal(style.FormatValue(v), u)
		})
		if !ok {
			return "", errors.New(errors.ErrCodeStyleNotFound, "style %q has no sub-style in units %q", rec.ID, u)
		}
		return found, nil
	}
	return rec.Preferred, nil
}

// Label formats the legend label of resolved parameters. The template is
// the legend "label" parameter, defaulting to [labels.DefaultLegend]. The
// units field shows the resolved units, falling back to u.
func Label(params style.Params, md style.Metadata, u string) (string, error) {
	tmpl := labels.DefaultLegend
	if legend, ok := params.Map(resolve.KeyLegend); ok {
		if s, ok := legend.String("label"); ok {
			tmpl = s
		}
	}
	if v, ok := params[resolve.KeyUnits]; ok && v != nil {
		u = style.FormatValue(v)
	}
	return labels.Format(tmpl, labels.Fields{Metadata: md, Units: u})
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (res *Result) styleID() string {
	if res == nil {
		return ""
	}
	return res.StyleID
}

func (res *Result) styleName() string {
	if res == nil {
		return ""
	}
	return res.StyleName
}
