package style

import (
	"strings"

	"github.com/matzehuels/mapstyle/pkg/errors"
)

// Record is a style record: matching criteria plus named sub-styles.
type Record struct {
	ID          string
	Description string
	Criteria    Criteria
	// Preferred names the sub-style used when the caller does not ask for one.
	Preferred string
	Styles    map[string]Params
	// Order lists the sub-style names in document order.
	Order []string
	// Source is the file the record was loaded from.
	Source string
}

// Matches reports whether md satisfies the record's criteria.
func (r *Record) Matches(md Metadata) bool {
	return r.Criteria.Match(md)
}

// Names returns the sub-style names in document order.
func (r *Record) Names() []string {
	return append([]string(nil), r.Order...)
}

// Style returns a copy of the named sub-style. An empty name selects the
// preferred sub-style. Unknown names fail with STYLE_NOT_FOUND.
func (r *Record) Style(name string) (Params, error) {
	if name == "" {
		name = r.Preferred
	}
	p, ok := r.Styles[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeStyleNotFound,
			"style %q has no sub-style %q (available: %s)", r.ID, name, strings.Join(r.Order, ", "))
	}
	return p.Clone(), nil
}

// Validate checks the record invariants: a valid id, at least one clause,
// at least one sub-style, and a preferred sub-style that exists.
func (r *Record) Validate() error {
	if r.ID == "" {
		return errors.New(errors.ErrCodeMissingField, "style record has no id")
	}
	if err := errors.ValidateStyleID(r.ID); err != nil {
		return err
	}
	if len(r.Criteria) == 0 {
		return errors.New(errors.ErrCodeMissingField, "style %q: criteria must list at least one clause", r.ID)
	}
	for _, clause := range r.Criteria {
		for _, con := range clause {
			if err := errors.ValidateMetadataKey(con.Key); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidDocument, err, "style %q", r.ID)
			}
		}
	}
	if len(r.Styles) == 0 {
		return errors.New(errors.ErrCodeMissingField, "style %q: styles must define at least one sub-style", r.ID)
	}
	if len(r.Order) != len(r.Styles) {
		return errors.New(errors.ErrCodeInternal, "style %q: sub-style order out of sync", r.ID)
	}
	for _, name := range r.Order {
		if err := errors.ValidateStyleID(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "style %q", r.ID)
		}
	}
	if _, ok := r.Styles[r.Preferred]; !ok {
		return errors.New(errors.ErrCodeInvalidDocument,
			"style %q: preferred-style %q is not one of its styles (%s)", r.ID, r.Preferred, strings.Join(r.Order, ", "))
	}
	return nil
}

// SelectStyle returns the name of the first sub-style, in document order,
// for which accept returns true.
func (r *Record) SelectStyle(accept func(name string, p Params) bool) (string, bool) {
	for _, name := range r.Order {
		if accept(name, r.Styles[name]) {
			return name, true
		}
	}
	return "", false
}
