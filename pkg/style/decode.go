package style

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mapstyle/pkg/errors"
)

// Document field names.
const (
	FieldID          = "id"
	FieldDescription = "description"
	FieldCriteria    = "criteria"
	FieldPreferred   = "preferred-style"
	FieldStyles      = "styles"
)

// Decode parses every YAML document in data into a record. A file may hold
// several documents separated by "---"; empty documents are skipped. source
// names the origin of data in errors and is stored on each record.
func Decode(data []byte, source string) ([]*Record, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var records []*Record
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "parse %s", source)
		}
		if len(doc.Content) == 0 {
			continue
		}
		root := deref(doc.Content[0])
		if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
			continue
		}
		rec, err := decodeRecord(root, source)
		if err != nil {
			return nil, errors.Prefix(err, "%s:%d", source, root.Line)
		}
		records = append(records, rec)
	}
	return records, nil
}

// DecodeOne parses data that must hold exactly one style document.
func DecodeOne(data []byte, source string) (*Record, error) {
	records, err := Decode(data, source)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "%s: expected one style document, found %d", source, len(records))
	}
	return records[0], nil
}

func decodeRecord(node *yaml.Node, source string) (*Record, error) {
	if node.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "style document must be a mapping")
	}
	fields := make(map[string]*yaml.Node)
	for _, f := range mappingPairs(node) {
		fields[f.key] = f.value
	}

	rec := &Record{Source: source, Styles: make(map[string]Params)}

	idNode, ok := fields[FieldID]
	if !ok {
		return nil, errors.New(errors.ErrCodeMissingField, "style document has no %q", FieldID)
	}
	if err := decodeString(idNode, &rec.ID); err != nil {
		return nil, errors.Prefix(err, "field %q", FieldID)
	}

	if n, ok := fields[FieldDescription]; ok {
		if err := decodeString(n, &rec.Description); err != nil {
			return nil, errors.Prefix(err, "style %q: field %q", rec.ID, FieldDescription)
		}
	}

	critNode, ok := fields[FieldCriteria]
	if !ok {
		return nil, errors.New(errors.ErrCodeMissingField, "style %q has no %q", rec.ID, FieldCriteria)
	}
	criteria, err := decodeCriteria(critNode)
	if err != nil {
		return nil, errors.Prefix(err, "style %q", rec.ID)
	}
	rec.Criteria = criteria

	stylesNode, ok := fields[FieldStyles]
	if !ok {
		return nil, errors.New(errors.ErrCodeMissingField, "style %q has no %q", rec.ID, FieldStyles)
	}
	if err := decodeStyles(stylesNode, rec); err != nil {
		return nil, errors.Prefix(err, "style %q", rec.ID)
	}

	if n, ok := fields[FieldPreferred]; ok {
		if err := decodeString(n, &rec.Preferred); err != nil {
			return nil, errors.Prefix(err, "style %q: field %q", rec.ID, FieldPreferred)
		}
	} else if len(rec.Order) > 0 {
		rec.Preferred = rec.Order[0]
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

func decodeCriteria(node *yaml.Node) (Criteria, error) {
	node = deref(node)
	if node.Kind != yaml.SequenceNode {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "line %d: criteria must be a list of clauses", node.Line)
	}
	criteria := make(Criteria, 0, len(node.Content))
	for _, item := range node.Content {
		item = deref(item)
		if item.Kind != yaml.MappingNode {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "line %d: criteria clause must be a mapping", item.Line)
		}
		var clause Clause
		for _, f := range mappingPairs(item) {
			con, err := decodeConstraint(f.key, f.value)
			if err != nil {
				return nil, err
			}
			clause = append(clause, con)
		}
		criteria = append(criteria, clause)
	}
	return criteria, nil
}

func decodeConstraint(key string, node *yaml.Node) (Constraint, error) {
	node = deref(node)
	con := Constraint{Key: key}
	switch node.Kind {
	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return con, errors.Wrap(errors.ErrCodeInvalidDocument, err, "line %d: criteria value for %q", node.Line, key)
		}
		con.Values = []any{v}
	case yaml.SequenceNode:
		var vs []any
		if err := node.Decode(&vs); err != nil {
			return con, errors.Wrap(errors.ErrCodeInvalidDocument, err, "line %d: criteria values for %q", node.Line, key)
		}
		for _, v := range vs {
			switch v.(type) {
			case map[string]any, []any:
				return con, errors.New(errors.ErrCodeInvalidDocument, "line %d: criteria values for %q must be scalars", node.Line, key)
			}
		}
		con.Values = vs
		con.Set = true
	default:
		return con, errors.New(errors.ErrCodeInvalidDocument, "line %d: criteria value for %q must be a scalar or a list", node.Line, key)
	}
	return con, nil
}

func decodeStyles(node *yaml.Node, rec *Record) error {
	node = deref(node)
	if node.Kind != yaml.MappingNode {
		return errors.New(errors.ErrCodeInvalidDocument, "line %d: styles must be a mapping of names to parameters", node.Line)
	}
	for _, f := range mappingPairs(node) {
		value := deref(f.value)
		if value.Kind != yaml.MappingNode {
			return errors.New(errors.ErrCodeInvalidDocument, "line %d: sub-style %q must be a mapping", value.Line, f.key)
		}
		var params map[string]any
		if err := value.Decode(&params); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDocument, err, "line %d: sub-style %q", value.Line, f.key)
		}
		if params == nil {
			params = map[string]any{}
		}
		rec.Styles[f.key] = Params(params)
		rec.Order = append(rec.Order, f.key)
	}
	return nil
}

func decodeString(node *yaml.Node, dst *string) error {
	node = deref(node)
	if node.Kind != yaml.ScalarNode {
		return errors.New(errors.ErrCodeInvalidDocument, "line %d: expected a string", node.Line)
	}
	*dst = node.Value
	return nil
}

type pair struct {
	key   string
	value *yaml.Node
}

// mappingPairs returns the key/value pairs of a mapping node in document
// order. Merge keys ("<<") are expanded; explicit keys win over merged ones
// and merged keys are appended after the explicit ones.
func mappingPairs(node *yaml.Node) []pair {
	var explicit, merged []pair
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Tag == "!!merge" || k.Value == "<<" {
			merged = append(merged, mergeSources(v)...)
			continue
		}
		if seen[k.Value] {
			continue
		}
		seen[k.Value] = true
		explicit = append(explicit, pair{key: k.Value, value: v})
	}
	for _, p := range merged {
		if !seen[p.key] {
			seen[p.key] = true
			explicit = append(explicit, p)
		}
	}
	return explicit
}

func mergeSources(node *yaml.Node) []pair {
	node = deref(node)
	switch node.Kind {
	case yaml.MappingNode:
		return mappingPairs(node)
	case yaml.SequenceNode:
		var out []pair
		for _, item := range node.Content {
			out = append(out, mergeSources(item)...)
		}
		return out
	}
	return nil
}

func deref(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}
