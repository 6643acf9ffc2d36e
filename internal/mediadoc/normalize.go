package mediadoc

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"festadmin/internal/media"
)

// Stored document keys.
const (
	ImagesKey     = "images"
	CoverIndexKey = "coverIndex"
	LogoIndexKey  = "logoIndex"
	PosterKey     = "poster"

	EntryURLKey   = "url"
	EntryCoverKey = "isCover"
	EntryLogoKey  = "isLogo"
)

// MediaKeys lists the document keys owned by the canonical media form.
var MediaKeys = []string{ImagesKey, CoverIndexKey, LogoIndexKey}

// Skip records a dropped collection entry or an unusable field value.
// Position is the entry's index in the stored array, or -1 for whole fields.
type Skip struct {
	Field    string `json:"field"`
	Position int    `json:"position"`
	Reason   string `json:"reason"`
}

func (s Skip) String() string {
	if s.Position < 0 {
		return fmt.Sprintf("%s: %s", s.Field, s.Reason)
	}
	return fmt.Sprintf("%s[%d]: %s", s.Field, s.Position, s.Reason)
}

// Normalize decodes the media fields of a stored document into canonical form.
//
// Entries are appended in order; malformed ones are dropped, and every role
// position refers to the filtered output, never to the stored array. An
// explicit coverIndex/logoIndex field wins over inline flags: it is remapped to
// the canonical position of the entry it addressed, cleared if that entry was
// dropped, and kept verbatim when it lies outside the stored array so the
// validator can see it. Among inline flags the first occurrence wins. A bare
// non-blank string stored in place of the images array is read as a
// one-element collection.
//
// Normalize is pure and idempotent, and a canonical document passes through
// unchanged.
func Normalize(id string, fields map[string]any) (media.Record, []Skip) {
	var skips []Skip
	items, skip := collectionItems(fields[ImagesKey])
	if skip != nil {
		skips = append(skips, *skip)
	}

	assets := make([]string, 0, len(items))
	positions := make([]int, len(items))
	var flagCover, flagLogo *int
	for i, item := range items {
		switch e := DecodeEntry(item).(type) {
		case CanonicalEntry:
			positions[i] = len(assets)
			assets = append(assets, e.URL)
		case TaggedEntry:
			pos := len(assets)
			positions[i] = pos
			assets = append(assets, e.URL)
			if e.IsCover && flagCover == nil {
				flagCover = media.Index(pos)
			}
			if e.IsLogo && flagLogo == nil {
				flagLogo = media.Index(pos)
			}
		case MalformedEntry:
			positions[i] = -1
			skips = append(skips, Skip{Field: ImagesKey, Position: i, Reason: e.Reason})
		}
	}

	cover, skip := resolveIndex(fields, CoverIndexKey, positions, flagCover)
	if skip != nil {
		skips = append(skips, *skip)
	}
	logo, skip := resolveIndex(fields, LogoIndexKey, positions, flagLogo)
	if skip != nil {
		skips = append(skips, *skip)
	}

	rec := media.Record{
		ID: id,
		Collection: media.Collection{
			Assets:     assets,
			CoverIndex: cover,
			LogoIndex:  logo,
		},
	}
	switch poster := fields[PosterKey].(type) {
	case nil:
	case string:
		rec.Poster = poster
	default:
		skips = append(skips, Skip{Field: PosterKey, Position: -1, Reason: fmt.Sprintf("poster has type %T", poster)})
	}
	return rec, skips
}

// Fields encodes the canonical media keys of rec. images is always present;
// index keys appear only when the role is assigned.
func Fields(rec media.Record) map[string]any {
	assets := make([]string, len(rec.Collection.Assets))
	copy(assets, rec.Collection.Assets)
	out := map[string]any{ImagesKey: assets}
	if p := rec.Collection.CoverIndex; p != nil {
		out[CoverIndexKey] = *p
	}
	if p := rec.Collection.LogoIndex; p != nil {
		out[LogoIndexKey] = *p
	}
	return out
}

// Apply returns a copy of fields with the media keys replaced by the canonical
// form of rec. Unset role pointers are removed; every other key is preserved.
func Apply(fields map[string]any, rec media.Record) map[string]any {
	out := make(map[string]any, len(fields)+len(MediaKeys))
	for k, v := range fields {
		out[k] = v
	}
	for _, key := range MediaKeys {
		delete(out, key)
	}
	for k, v := range Fields(rec) {
		out[k] = v
	}
	return out
}

func collectionItems(v any) ([]any, *Skip) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return val, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, &Skip{Field: ImagesKey, Position: -1, Reason: "images is a blank string"}
		}
		return []any{val}, nil
	case []string:
		items := make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}
		return items, nil
	default:
		return nil, &Skip{Field: ImagesKey, Position: -1, Reason: fmt.Sprintf("images has type %T", v)}
	}
}

func resolveIndex(fields map[string]any, key string, positions []int, fallback *int) (*int, *Skip) {
	raw, ok := fields[key]
	if !ok || raw == nil {
		return fallback, nil
	}
	n, ok := IntValue(raw)
	if !ok {
		return fallback, &Skip{Field: key, Position: -1, Reason: fmt.Sprintf("value %v is not an integer", raw)}
	}
	if n < 0 || n >= len(positions) {
		return media.Index(n), nil
	}
	if positions[n] < 0 {
		return nil, &Skip{Field: key, Position: -1, Reason: fmt.Sprintf("addressed entry %d was dropped", n)}
	}
	return media.Index(positions[n]), nil
}

// maxExactFloat bounds the whole floats accepted as indexes; beyond it float64
// cannot represent every integer.
const maxExactFloat = 1 << 53

// IntValue converts a decoded JSON or BSON number to an int when it is integral.
func IntValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if math.Trunc(n) != n || math.IsInf(n, 0) || math.Abs(n) > maxExactFloat {
			return 0, false
		}
		return int(n), true
	case float32:
		return IntValue(float64(n))
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return IntValue(f)
		}
		return 0, false
	default:
		return 0, false
	}
}
