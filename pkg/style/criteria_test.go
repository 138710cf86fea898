package style

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{"tp", "tp", true},
		{"tp", "TP", false},
		{228, 228.0, true},
		{int64(228), uint16(228), true},
		{float32(0.5), 0.5, true},
		{228, "228", false},
		{true, true, true},
		{true, 1, false},
		{nil, nil, true},
		{nil, 0, false},
		{math.NaN(), math.NaN(), true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Equal(tt.a, tt.b), "Equal(%v, %v)", tt.a, tt.b)
	}
}

func TestConstraintMatch(t *testing.T) {
	md := Attrs{"shortName": "tp", "paramId": 228, "levtype": "sfc"}

	tests := []struct {
		name string
		con  Constraint
		want bool
	}{
		{"exact", Constraint{Key: "shortName", Values: []any{"tp"}}, true},
		{"mismatch", Constraint{Key: "shortName", Values: []any{"2t"}}, false},
		{"in set", Constraint{Key: "paramId", Values: []any{228, 228228}, Set: true}, true},
		{"float in set", Constraint{Key: "paramId", Values: []any{228.0}, Set: true}, true},
		{"not in set", Constraint{Key: "paramId", Values: []any{167, 168}, Set: true}, false},
		{"missing key", Constraint{Key: "number", Values: []any{1}}, false},
		{"null selects missing", Constraint{Key: "number", Values: []any{nil}}, true},
		{"null rejects present", Constraint{Key: "levtype", Values: []any{nil}}, false},
		{"null or value", Constraint{Key: "levtype", Values: []any{nil, "sfc"}, Set: true}, true},
		{"empty set", Constraint{Key: "levtype", Set: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.con.Match(md))
		})
	}
}

func TestCriteriaMatch(t *testing.T) {
	criteria := Criteria{
		{{Key: "shortName", Values: []any{"tp"}}},
		{{Key: "paramId", Values: []any{228, 228228}, Set: true}},
		{
			{Key: "standard_name", Values: []any{"precipitation_amount"}},
			{Key: "units", Values: []any{"m"}},
		},
	}

	tests := []struct {
		name  string
		md    Attrs
		index int
	}{
		{"first clause", Attrs{"shortName": "tp"}, 0},
		{"second clause", Attrs{"paramId": 228228}, 1},
		{"all constraints", Attrs{"standard_name": "precipitation_amount", "units": "m"}, 2},
		{"partial clause", Attrs{"standard_name": "precipitation_amount"}, -1},
		{"no match", Attrs{"shortName": "2t"}, -1},
		{"empty metadata", Attrs{}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, ok := criteria.MatchIndex(tt.md)
			assert.Equal(t, tt.index, i)
			assert.Equal(t, tt.index >= 0, ok)
			assert.Equal(t, ok, criteria.Match(tt.md))
		})
	}
}

func TestEmptyClauseMatchesAnything(t *testing.T) {
	criteria := Criteria{{}}
	assert.True(t, criteria.Match(Attrs{}))
	assert.True(t, criteria.Match(Attrs{"shortName": "anything"}))
}

func TestClauseFromAttrs(t *testing.T) {
	md := Attrs{"shortName": "tp", "paramId": 228}
	clause := ClauseFromAttrs(md)
	assert.Equal(t, []string{"paramId", "shortName"}, clause.Keys())
	assert.True(t, clause.Match(md))
	assert.Equal(t, "paramId=228 and shortName=tp", clause.String())
}

func TestConstraintString(t *testing.T) {
	assert.Equal(t, "shortName=tp", Constraint{Key: "shortName", Values: []any{"tp"}}.String())
	assert.Equal(t, "paramId in [228, 228228]",
		Constraint{Key: "paramId", Values: []any{228, 228228}, Set: true}.String())
	assert.Equal(t, "{}", Clause{}.String())
}
