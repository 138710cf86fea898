package levels

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mapstyle/pkg/errors"
	"github.com/matzehuels/mapstyle/pkg/style"
)

func ptr(v float64) *float64 { return &v }

func TestAutoRange(t *testing.T) {
	got, err := AutoRange([]float64{-1, 4}, 5, ptr(0))
	require.NoError(t, err)
	assert.Equal(t, []float64{-4, -2, 0, 2, 4}, got)

	got, err = AutoRange([]float64{0.3, 9.2}, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, got)

	got, err = AutoRange([]float64{3, 3}, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, got)

	got, err = AutoRange([]float64{math.NaN(), 0.02, 0.11}, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.025, 0.05, 0.075, 0.1, 0.125}, got)

	_, err = AutoRange([]float64{1, 2}, 0, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidLevels))
}

func TestStepRange(t *testing.T) {
	tests := []struct {
		values    []float64
		step, ref float64
		want      []float64
	}{
		{[]float64{3}, 4, 0, []float64{0, 4}},
		{[]float64{2}, 4, 3, []float64{-1, 3}},
		{[]float64{3.2}, 0.5, 0, []float64{3, 3.5}},
		{[]float64{1, 3, 7}, 4, 0, []float64{0, 4, 8}},
		{[]float64{1, 3, 7}, 4, 2, []float64{-2, 2, 6, 10}},
		{[]float64{983, 1023}, 4, 1000, []float64{980, 984, 988, 992, 996, 1000, 1004, 1008, 1012, 1016, 1020, 1024}},
		{[]float64{983, 1023}, 4, 1001, []float64{981, 985, 989, 993, 997, 1001, 1005, 1009, 1013, 1017, 1021, 1025}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v/%v/%v", tt.values, tt.step, tt.ref), func(t *testing.T) {
			got, err := StepRange(tt.values, tt.step, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := StepRange([]float64{1}, 0, 0)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidLevels))
	_, err = StepRange(nil, 1, 0)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidLevels))
}

func TestLevelsApply(t *testing.T) {
	tests := []struct {
		name   string
		levels Levels
		values []float64
		want   []float64
	}{
		{"diverging", Levels{DivergencePoint: ptr(0)}, []float64{-5, 8}, []float64{-8, -6, -4, -2, 0, 2, 4, 6, 8}},
		{"step", Levels{Step: 4}, []float64{3}, []float64{0, 4}},
		{"step with reference", Levels{Step: 4, Reference: ptr(3)}, []float64{2}, []float64{-1, 3}},
		{"pressure", Levels{Step: 4, Reference: ptr(1000)}, []float64{983, 1023},
			[]float64{980, 984, 988, 992, 996, 1000, 1004, 1008, 1012, 1016, 1020, 1024}},
		{"explicit ignores data", Levels{Explicit: []float64{0.1, 0.2}}, []float64{-100, 100}, []float64{0.1, 0.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.levels.Apply(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.True(t, Levels{}.IsZero())
	assert.False(t, Levels{N: 5}.IsZero())
}

func TestRange(t *testing.T) {
	got, err := Range(-48, 57, 4)
	require.NoError(t, err)
	require.Len(t, got, 27)
	assert.Equal(t, -48.0, got[0])
	assert.Equal(t, 56.0, got[26])

	got, err = Range(0, 0.5, 0.1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.1, 0.2, 0.3, 0.4}, got)

	got, err = Range(5, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Range(0, 1, 0)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidLevels))
}

func TestBetween(t *testing.T) {
	tests := []struct {
		lo, hi, step float64
		want         []float64
	}{
		{0, 20, 5, []float64{0, 5, 10, 15, 20}},
		{0, 0.7, 0.1, []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7}},
		{0.3, 0.6, 0.1, []float64{0.3, 0.4, 0.5, 0.6}},
		{0, 1.05, 0.5, []float64{0, 0.5, 1}},
		{2, 2, 1, []float64{2}},
	}
	for _, tt := range tests {
		got, err := Between(tt.lo, tt.hi, tt.step)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Between(%v, %v, %v)", tt.lo, tt.hi, tt.step)
	}

	_, err := Between(3, 1, 1)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidLevels))
	_, err = Between(0, 1, -0.5)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidLevels))
}

func TestFromParams(t *testing.T) {
	l, err := FromParams(style.Params{
		"levels": map[string]any{"start": -40, "stop": 41, "step": 5},
	})
	require.NoError(t, err)
	require.Len(t, l.Explicit, 17)
	assert.Equal(t, 40.0, l.Explicit[16])

	l, err = FromParams(style.Params{"level_step": 4, "level_reference": 1000, "n_levels": 8})
	require.NoError(t, err)
	assert.Equal(t, 4.0, l.Step)
	require.NotNil(t, l.Reference)
	assert.Equal(t, 1000.0, *l.Reference)
	assert.Equal(t, 8, l.N)

	l, err = FromParams(style.Params{"divergence_point": 0})
	require.NoError(t, err)
	require.NotNil(t, l.DivergencePoint)

	for _, bad := range []style.Params{
		{"levels": []any{1, "two"}},
		{"levels": []any{3, 2, 1}},
		{"levels": map[string]any{"start": 0}},
		{"levels": map[string]any{"start": 0, "stop": 10, "step": -1}},
		{"level_step": 0},
		{"level_reference": "x"},
		{"n_levels": 2.5},
	} {
		_, err := FromParams(bad)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidLevels), "params %v: %v", bad, err)
	}
}

func ExampleStepRange() {
	levels, _ := StepRange([]float64{983, 1023}, 8, 1000)
	fmt.Println(levels)
	// Output: [976 984 992 1000 1008 1016 1024]
}
