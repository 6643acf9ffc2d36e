package migration

import (
	"bytes"
	"encoding/json"
	"reflect"

	"festadmin/internal/content"
	"festadmin/internal/media"
	"festadmin/internal/mediadoc"
)

// FieldChange is one media key whose stored value differs from the canonical
// value. A nil Before or After means the key is absent.
type FieldChange struct {
	Field  string `json:"field" yaml:"field"`
	Before any    `json:"before" yaml:"before"`
	After  any    `json:"after" yaml:"after"`
}

// Outcome is the result of running one document through
// normalize, validate, and repair.
type Outcome struct {
	Final   media.Record
	Changes []FieldChange
	Issues  []string
	Skips   []mediadoc.Skip
}

// Changed reports whether the stored document differs from its final form.
func (o Outcome) Changed() bool {
	return len(o.Changes) > 0
}

// Process computes the final media record for doc and the structural diff
// against what is stored. It performs no I/O.
func Process(doc content.Document) Outcome {
	canonical, skips := mediadoc.Normalize(doc.ID, doc.Fields)
	result := media.Validate(canonical)
	final := canonical
	if !result.Valid {
		final = media.Repair(canonical)
	}
	return Outcome{
		Final:   final,
		Changes: Diff(doc.Fields, final),
		Issues:  result.Issues,
		Skips:   skips,
	}
}

// Diff compares the stored media keys with the canonical fields of rec by JSON
// value equality. Null and absent are the same; a missing images list equals
// an empty one.
func Diff(stored map[string]any, rec media.Record) []FieldChange {
	want := mediadoc.Fields(rec)
	var changes []FieldChange
	for _, key := range mediadoc.MediaKeys {
		before, after := stored[key], want[key]
		if key == mediadoc.ImagesKey && before == nil {
			if assets, _ := after.([]string); len(assets) == 0 {
				continue
			}
		}
		if jsonEqual(before, after) {
			continue
		}
		changes = append(changes, FieldChange{Field: key, Before: before, After: after})
	}
	return changes
}

func jsonEqual(a, b any) bool {
	av, aok := jsonValue(a)
	bv, bok := jsonValue(b)
	if !aok || !bok {
		return reflect.DeepEqual(a, b)
	}
	return reflect.DeepEqual(av, bv)
}

func jsonValue(v any) (any, bool) {
	if v == nil {
		return nil, true
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, false
	}
	return normalizeNumbers(out), true
}

// normalizeNumbers folds integral json.Numbers so 2 and 2.0 compare equal.
func normalizeNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if n, ok := mediadoc.IntValue(val); ok {
			return int64(n)
		}
		return val.String()
	case []any:
		for i := range val {
			val[i] = normalizeNumbers(val[i])
		}
		return val
	case map[string]any:
		for k := range val {
			val[k] = normalizeNumbers(val[k])
		}
		return val
	default:
		return v
	}
}
