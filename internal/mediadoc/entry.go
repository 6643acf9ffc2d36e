package mediadoc

import (
	"fmt"
	"strings"
)

// Entry is one decoded collection element. It is exactly one of
// CanonicalEntry, TaggedEntry or MalformedEntry.
type Entry interface {
	entry()
}

// CanonicalEntry is a plain URL string.
type CanonicalEntry struct {
	URL string
}

// TaggedEntry is a legacy object carrying inline role flags.
type TaggedEntry struct {
	URL     string
	IsCover bool
	IsLogo  bool
}

// MalformedEntry is anything that cannot contribute an asset.
type MalformedEntry struct {
	Reason string
}

func (CanonicalEntry) entry() {}
func (TaggedEntry) entry()    {}
func (MalformedEntry) entry() {}

// DecodeEntry classifies a raw collection element. It never fails.
func DecodeEntry(v any) Entry {
	switch val := v.(type) {
	case string:
		return CanonicalEntry{URL: val}
	case map[string]any:
		return decodeTagged(val)
	case nil:
		return MalformedEntry{Reason: "null entry"}
	default:
		return MalformedEntry{Reason: fmt.Sprintf("unsupported entry type %T", v)}
	}
}

func decodeTagged(obj map[string]any) Entry {
	raw, ok := obj[EntryURLKey]
	if !ok {
		return MalformedEntry{Reason: "object entry has no url"}
	}
	url, ok := raw.(string)
	if !ok {
		return MalformedEntry{Reason: fmt.Sprintf("object entry url has type %T", raw)}
	}
	if strings.TrimSpace(url) == "" {
		return MalformedEntry{Reason: "object entry url is empty"}
	}
	return TaggedEntry{
		URL:     url,
		IsCover: flag(obj[EntryCoverKey]),
		IsLogo:  flag(obj[EntryLogoKey]),
	}
}

// flag accepts only a literal true; "true" strings and 1s are not roles.
func flag(v any) bool {
	b, ok := v.(bool)
	return ok && b
}
