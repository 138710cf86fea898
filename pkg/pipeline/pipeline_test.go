package pipeline

import (
	"context"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/matzehuels/mapstyle/pkg/cache"
	"github.com/matzehuels/mapstyle/pkg/catalog"
	"github.com/matzehuels/mapstyle/pkg/errors"
	"github.com/matzehuels/mapstyle/pkg/schema"
	"github.com/matzehuels/mapstyle/pkg/style"
)

func newRunner(t *testing.T, c cache.Cache) *Runner {
	t.Helper()
	cat, err := catalog.Load(context.Background(), catalog.Builtin())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return NewRunner(cat, nil, c, nil, nil)
}

func TestValidateLayer(t *testing.T) {
	tests := []struct {
		layer   string
		wantErr bool
	}{
		{"", false},
		{"contour", false},
		{"point", false},
		{"Contour", true}, // case-sensitive
		{"hatched", true},
	}

	for _, tt := range tests {
		err := ValidateLayer(tt.layer)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateLayer(%q) error = %v, wantErr %v", tt.layer, err, tt.wantErr)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"empty", Options{}, false},
		{"scalars", Options{Metadata: map[string]any{"shortName": "tp", "paramId": 228, "level": 500.0, "ens": true}}, false},
		{"bad key", Options{Metadata: map[string]any{"bad key": 1}}, true},
		{"nested value", Options{Metadata: map[string]any{"a": map[string]any{"b": 1}}}, true},
		{"nan value", Options{Metadata: map[string]any{"shortName": "tp", "x": math.NaN()}}, true},
		{"infinite value", Options{Metadata: map[string]any{"level": math.Inf(1)}}, true},
		{"bad style", Options{Style: "../etc"}, true},
		{"bad layer", Options{Layer: "wind-barbs"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (tt.opts.Metadata == nil || tt.opts.Logger == nil) {
				t.Error("defaults not applied")
			}
		})
	}
}

func TestExecutePrecipitation(t *testing.T) {
	r := newRunner(t, nil)
	res, err := r.Execute(context.Background(), Options{
		Metadata: map[string]any{"shortName": "tp", "long_name": "Total precipitation"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Matched || res.StyleID != "precipitation" || res.StyleName != "precipitation_in_mm" {
		t.Errorf("got %+v", res)
	}
	levels, ok := res.Params.Floats("levels")
	if !ok || len(levels) != 10 || levels[0] != 0.1 || levels[9] != 100 {
		t.Errorf("levels = %v", res.Params["levels"])
	}
	if res.Label != "Total precipitation (mm)" {
		t.Errorf("Label = %q", res.Label)
	}
	if res.Source != "builtin/precipitation.yaml" {
		t.Errorf("Source = %q", res.Source)
	}
}

func TestSelectByUnits(t *testing.T) {
	r := newRunner(t, nil)
	ctx := context.Background()

	tests := []struct {
		md    map[string]any
		units string
		want  string
	}{
		{map[string]any{"shortName": "tp"}, "m", "precipitation_in_m"},
		{map[string]any{"shortName": "tp"}, "millimetres", "precipitation_in_mm"},
		{map[string]any{"shortName": "2t"}, "degC", "temperature_in_celsius"},
		{map[string]any{"shortName": "2t"}, "kelvin", "temperature_in_kelvin"},
		{map[string]any{"paramId": 167}, "degF", "temperature_in_fahrenheit"},
	}
	for _, tt := range tests {
		res, err := r.Execute(ctx, Options{Metadata: tt.md, Units: tt.units})
		if err != nil {
			t.Errorf("%v in %s: %v", tt.md, tt.units, err)
			continue
		}
		if res.StyleName != tt.want {
			t.Errorf("%v in %s: got %s, want %s", tt.md, tt.units, res.StyleName, tt.want)
		}
	}

	_, err := r.Execute(ctx, Options{Metadata: map[string]any{"shortName": "tp"}, Units: "inch"})
	if !errors.Is(err, errors.ErrCodeStyleNotFound) {
		t.Errorf("unknown units: got %v, want STYLE_NOT_FOUND", err)
	}
}

func TestExplicitStyle(t *testing.T) {
	r := newRunner(t, nil)
	ctx := context.Background()

	res, err := r.Execute(ctx, Options{Metadata: map[string]any{"shortName": "tp"}, Style: "precipitation_in_m"})
	if err != nil || res.StyleName != "precipitation_in_m" {
		t.Fatalf("got %+v, %v", res, err)
	}

	_, err = r.Execute(ctx, Options{Metadata: map[string]any{"shortName": "tp"}, Style: "nope"})
	if !errors.Is(err, errors.ErrCodeStyleNotFound) {
		t.Errorf("got %v, want STYLE_NOT_FOUND", err)
	}
}

func TestFallback(t *testing.T) {
	r := newRunner(t, nil)
	ctx := context.Background()
	md := map[string]any{"shortName": "xyz", "long_name": "Mystery field", "units": "K"}

	res, err := r.Execute(ctx, Options{Metadata: md})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Matched || res.StyleID != "" {
		t.Errorf("expected no match, got %+v", res)
	}
	if res.Params["colors"] != "viridis" {
		t.Errorf("colors = %v, want schema cmap", res.Params["colors"])
	}
	if res.Label != "Mystery field (K)" {
		t.Errorf("Label = %q", res.Label)
	}

	res, err = r.Execute(ctx, Options{Metadata: md, Units: "celsius"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Label != "Mystery field (°C)" {
		t.Errorf("Label = %q", res.Label)
	}

	_, err = r.Execute(ctx, Options{Metadata: md, NoFallback: true})
	if !errors.Is(err, errors.ErrCodeStyleNotFound) {
		t.Errorf("NoFallback: got %v", err)
	}
	_, err = r.Execute(ctx, Options{Metadata: md, Style: "anything"})
	if !errors.Is(err, errors.ErrCodeStyleNotFound) {
		t.Errorf("style without match: got %v", err)
	}
}

func TestUsePreferredStylesDisabled(t *testing.T) {
	r := newRunner(t, nil)
	s, err := schema.Default().With(map[string]any{"use_preferred_styles": false})
	if err != nil {
		t.Fatal(err)
	}
	r.Schema = s
	ctx := context.Background()

	tests := []struct {
		name      string
		opts      Options
		wantStyle string
	}{
		{"dataset units", Options{Metadata: map[string]any{"shortName": "2t", "units": "K"}}, "temperature_in_kelvin"},
		{"requested units win", Options{Metadata: map[string]any{"shortName": "2t", "units": "K"}, Units: "fahrenheit"}, "temperature_in_fahrenheit"},
		{"no units keeps preferred", Options{Metadata: map[string]any{"shortName": "tp"}}, "precipitation_in_mm"},
		{"explicit style", Options{Metadata: map[string]any{"shortName": "tp", "units": "m"}, Style: "precipitation_in_mm"}, "precipitation_in_mm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Execute(ctx, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if !res.Matched || res.StyleName != tt.wantStyle {
				t.Errorf("got matched=%v style=%q, want %q", res.Matched, res.StyleName, tt.wantStyle)
			}
		})
	}

	_, err = r.Execute(ctx, Options{Metadata: map[string]any{"shortName": "tp", "units": "furlongs"}})
	if !errors.Is(err, errors.ErrCodeStyleNotFound) {
		t.Errorf("dataset units without a sub-style: got %v", err)
	}

	r.Schema = schema.Default()
	res, err := r.Execute(ctx, Options{Metadata: map[string]any{"shortName": "2t", "units": "K"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.StyleName != "temperature_in_celsius" {
		t.Errorf("preferred styles enabled: got %q", res.StyleName)
	}
}

func TestLayerOverride(t *testing.T) {
	r := newRunner(t, nil)
	res, err := r.Execute(context.Background(), Options{
		Metadata: map[string]any{"shortName": "tp"},
		Layer:    style.KindPoint,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Params.Kind() != style.KindPoint {
		t.Errorf("kind = %s", res.Params.Kind())
	}
}

func TestExecuteCaches(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := newRunner(t, fc)
	defer r.Close()
	ctx := context.Background()
	opts := Options{Metadata: map[string]any{"shortName": "msl"}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit {
		t.Error("first run should miss")
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Error("second run should hit")
	}
	if second.StyleID != first.StyleID || second.Label != first.Label {
		t.Errorf("cached result differs: %+v vs %+v", second, first)
	}
	if step, _ := second.Params.Float("level_step"); step != 4 {
		t.Errorf("level_step = %v", second.Params["level_step"])
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestCachedResultKeepsParamTypes(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := newRunner(t, fc)
	defer r.Close()
	ctx := context.Background()

	for _, md := range []map[string]any{
		{"shortName": "tp"},
		{"shortName": "2t", "units": "K"},
		{"shortName": "tcwv"},
		{"shortName": "xyz"},
	} {
		miss, err := r.Execute(ctx, Options{Metadata: md})
		if err != nil {
			t.Fatal(err)
		}
		hit, err := r.Execute(ctx, Options{Metadata: md})
		if err != nil {
			t.Fatal(err)
		}
		if miss.CacheHit || !hit.CacheHit {
			t.Fatalf("%v: cache hit flags %v/%v", md, miss.CacheHit, hit.CacheHit)
		}
		if !reflect.DeepEqual(miss.Params, hit.Params) {
			t.Errorf("%v: cached params differ\nmiss %#v\nhit  %#v", md, miss.Params, hit.Params)
		}
		if _, ok := hit.Params["levels"].([]float64); hit.Params.Has("levels") && !ok {
			t.Errorf("%v: cached levels are %T", md, hit.Params["levels"])
		}
		if _, ok := hit.Params["legend"].(style.Params); !ok {
			t.Errorf("%v: cached legend is %T", md, hit.Params["legend"])
		}
	}
}

func TestRunnerConcurrent(t *testing.T) {
	r := newRunner(t, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := r.Execute(context.Background(), Options{Metadata: map[string]any{"shortName": "tp"}})
			if err != nil || res.StyleID != "precipitation" {
				t.Errorf("got %v, %v", res, err)
			}
		}()
	}
	wg.Wait()
}

func TestSelectStyleNilRecord(t *testing.T) {
	name, err := SelectStyle(nil, "", "")
	if err != nil || name != "" {
		t.Errorf("got %q, %v", name, err)
	}
}
