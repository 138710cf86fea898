package pipeline

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/matzehuels/mapstyle/pkg/style"
)

// canonicalParams rewrites resolved parameters into the types a Result
// always carries, whether it was resolved now or read back from the cache:
//
//   - numbers are float64
//   - lists of numbers are []float64
//   - lists of strings are []string
//   - mappings are style.Params
//
// Other lists become []any with their elements converted the same way.
func canonicalParams(p style.Params) style.Params {
	if p == nil {
		return nil
	}
	out := make(style.Params, len(p))
	for k, v := range p {
		out[k] = canonicalValue(v)
	}
	return out
}

func canonicalValue(v any) any {
	switch t := v.(type) {
	case style.Params:
		return canonicalParams(t)
	case map[string]any:
		return canonicalParams(style.Params(t))
	case []string:
		return append(make([]string, 0, len(t)), t...)
	case []float64:
		return append(make([]float64, 0, len(t)), t...)
	case []int:
		list, _ := style.AsFloats(t)
		return list
	case []any:
		return canonicalList(t)
	case json.Number:
		if f, err := strconv.ParseFloat(t.String(), 64); err == nil {
			return f
		}
		return t.String()
	}
	if f, ok := style.Number(v); ok {
		return f
	}
	return v
}

func canonicalList(list []any) any {
	if len(list) == 0 {
		return []any{}
	}
	items := make([]any, len(list))
	allNum, allStr := true, true
	for i, e := range list {
		items[i] = canonicalValue(e)
		_, isNum := items[i].(float64)
		_, isStr := items[i].(string)
		allNum = allNum && isNum
		allStr = allStr && isStr
	}
	switch {
	case allNum:
		out := make([]float64, len(items))
		for i, e := range items {
			out[i] = e.(float64)
		}
		return out
	case allStr:
		out := make([]string, len(items))
		for i, e := range items {
			out[i] = e.(string)
		}
		return out
	}
	return items
}

// decodeResult reads a cached Result and restores canonical parameter types.
func decodeResult(data []byte) (*Result, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var res Result
	if err := dec.Decode(&res); err != nil {
		return nil, err
	}
	res.Params = canonicalParams(res.Params)
	return &res, nil
}
