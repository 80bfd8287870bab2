package apifeatures

import "encoding/json"

// Shape renders items as JSON objects restricted to id plus fields. With no
// fields, items are returned unchanged.
func Shape[T any](items []T, fields []string) (any, error) {
	if len(fields) == 0 {
		return items, nil
	}

	keep := map[string]struct{}{"id": {}}
	for _, f := range fields {
		keep[f] = struct{}{}
	}

	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		for k := range doc {
			if _, ok := keep[k]; !ok {
				delete(doc, k)
			}
		}
		out = append(out, doc)
	}
	return out, nil
}
