package listing

import (
	"bytes"
	"encoding/json"
)

var jsonNull = json.RawMessage("null")

// NormalizeRelations rewrites a JSON array of rows so every relation named in
// rels holds a single object or null. A one-element array collapses to its
// element, an empty array to null; objects pass through. Nested relations are
// handled recursively. Applying it twice yields the same output.
func NormalizeRelations(raw []byte, rels []Relation) ([]byte, error) {
	if len(rels) == 0 {
		return raw, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	for i, row := range rows {
		n, err := normalizeRow(row, rels)
		if err != nil {
			return nil, err
		}
		rows[i] = n
	}
	return json.Marshal(rows)
}

func normalizeRow(row json.RawMessage, rels []Relation) (json.RawMessage, error) {
	t := bytes.TrimSpace(row)
	if len(t) == 0 || t[0] != '{' {
		return row, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(t, &obj); err != nil {
		return nil, err
	}
	for _, rel := range rels {
		v, ok := obj[rel.Name]
		if !ok {
			continue
		}
		one, err := collapse(v)
		if err != nil {
			return nil, err
		}
		if len(rel.Relations) > 0 {
			if one, err = normalizeRow(one, rel.Relations); err != nil {
				return nil, err
			}
		}
		obj[rel.Name] = one
	}
	return json.Marshal(obj)
}

func collapse(v json.RawMessage) (json.RawMessage, error) {
	t := bytes.TrimSpace(v)
	if len(t) == 0 || t[0] != '[' {
		return v, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(t, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return jsonNull, nil
	}
	return items[0], nil
}
