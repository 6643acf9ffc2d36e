package docstore

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	idField       = "_id"
	revisionField = "_rev"
)

// plain converts a decoded BSON value into maps, slices, and scalars.
func plain(v any) any {
	switch val := v.(type) {
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = plain(e.Value)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = plain(item)
		}
		return out
	case map[string]any:
		return plain(bson.M(val))
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plain(item)
		}
		return out
	case []any:
		return plain(bson.A(val))
	case bson.ObjectID:
		return val.Hex()
	case bson.DateTime:
		return val.Time().UTC().Format(time.RFC3339Nano)
	case bson.Decimal128:
		return val.String()
	default:
		return v
	}
}

// documentFields splits a raw BSON document into its ID, revision, and the
// remaining fields.
func documentFields(raw bson.D) (id string, revision int64, fields map[string]any) {
	fields = make(map[string]any, len(raw))
	for _, e := range raw {
		switch e.Key {
		case idField:
			id = fmt.Sprint(plain(e.Value))
		case revisionField:
			revision = revisionValue(e.Value)
		default:
			fields[e.Key] = plain(e.Value)
		}
	}
	return id, revision, fields
}

func revisionValue(v any) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// idFilter matches a document by its string ID or by any other representation
// that documentFields would have rendered as id: a hex ObjectID or a number.
// Mongo compares numbers across types, so one int64 matches int32, int64, and
// double IDs of the same value.
func idFilter(id string) bson.M {
	candidates := bson.A{id}
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		candidates = append(candidates, oid)
	}
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		candidates = append(candidates, n)
	} else if f, err := strconv.ParseFloat(id, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		candidates = append(candidates, f)
	}
	if len(candidates) == 1 {
		return bson.M{idField: id}
	}
	return bson.M{idField: bson.M{"$in": candidates}}
}
