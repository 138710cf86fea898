// Package style defines style records and the rules that match them against
// dataset metadata.
//
// # Overview
//
// A [Record] is a named bundle of matching [Criteria] plus one or more
// rendering parameter sets ("sub-styles"). Records are written as YAML
// documents:
//
//	id: precipitation
//	criteria:
//	  - shortName: tp
//	  - paramId: [228, 228228]
//	preferred-style: precipitation_in_mm
//	styles:
//	  precipitation_in_mm:
//	    colors: &precip [...]
//	    levels: [0.1, 0.2, 0.5, 1, 2, 5, 10, 20, 50, 100]
//	    units: mm
//	  precipitation_in_m:
//	    colors: *precip
//	    levels: [0.0001, 0.0002, 0.0005, 0.001]
//	    units: m
//
// # Matching
//
// [Criteria] is an ordered list of alternative [Clause] values. A dataset
// matches when ANY clause matches; a clause matches when ALL of its
// constraints hold. A constraint whose value is a list accepts any member of
// the list. Numbers compare numerically regardless of integer or float
// representation, so a clause written as `paramId: 167` matches metadata
// carrying 167.0.
//
// # Parameters
//
// [Params] holds the rendering parameters of a sub-style. Its typed getters
// ([Params.Float], [Params.Floats], [Params.String]...) follow YAML's loose
// typing so that `levels: [1, 2.5]` reads back as []float64.
package style
