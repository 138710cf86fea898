package style

import (
	"fmt"
	"strings"
)

// Constraint restricts one metadata key to a set of accepted values.
type Constraint struct {
	Key    string
	Values []any
	// Set is true when the document listed the values (`key: [a, b]`).
	Set bool
}

// Match reports whether md satisfies the constraint.
//
// A nil accepted value matches a missing key, so `key: null` selects
// datasets that do not carry key at all.
func (c Constraint) Match(md Metadata) bool {
	got, ok := md.Lookup(c.Key)
	for _, want := range c.Values {
		if want == nil {
			if !ok || got == nil {
				return true
			}
			continue
		}
		if ok && Equal(got, want) {
			return true
		}
	}
	return false
}

func (c Constraint) String() string {
	if !c.Set && len(c.Values) == 1 {
		return fmt.Sprintf("%s=%v", c.Key, c.Values[0])
	}
	parts := make([]string, len(c.Values))
	for i, v := range c.Values {
		parts[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("%s in [%s]", c.Key, strings.Join(parts, ", "))
}

// Clause is one alternative condition set. All constraints must hold.
// An empty clause matches any metadata.
type Clause []Constraint

// Match reports whether every constraint in the clause holds for md.
func (c Clause) Match(md Metadata) bool {
	for _, con := range c {
		if !con.Match(md) {
			return false
		}
	}
	return true
}

// Keys returns the metadata keys the clause inspects, in document order.
func (c Clause) Keys() []string {
	keys := make([]string, len(c))
	for i, con := range c {
		keys[i] = con.Key
	}
	return keys
}

func (c Clause) String() string {
	if len(c) == 0 {
		return "{}"
	}
	parts := make([]string, len(c))
	for i, con := range c {
		parts[i] = con.String()
	}
	return strings.Join(parts, " and ")
}

// Criteria is an ordered list of alternative clauses.
type Criteria []Clause

// Match reports whether any clause matches md.
func (c Criteria) Match(md Metadata) bool {
	_, ok := c.MatchIndex(md)
	return ok
}

// MatchIndex returns the index of the first matching clause.
func (c Criteria) MatchIndex(md Metadata) (int, bool) {
	for i, clause := range c {
		if clause.Match(md) {
			return i, true
		}
	}
	return -1, false
}

// ClauseFromAttrs builds a clause requiring every attribute in attrs,
// with keys in sorted order.
func ClauseFromAttrs(attrs Attrs) Clause {
	keys := attrs.Keys()
	clause := make(Clause, len(keys))
	for i, k := range keys {
		clause[i] = Constraint{Key: k, Values: []any{attrs[k]}}
	}
	return clause
}
