package mediadoc_test

import (
	"encoding/json"
	"reflect"
	"slices"
	"testing"

	"festadmin/internal/media"
	"festadmin/internal/mediadoc"
)

func decodeJSON(t *testing.T, raw string) map[string]any {
	t.Helper()
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return fields
}

func assertIndex(t *testing.T, label string, got *int, want *int) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil || want == nil:
		t.Fatalf("%s = %v, want %v", label, got, want)
	case *got != *want:
		t.Fatalf("%s = %d, want %d", label, *got, *want)
	}
}

func TestNormalizeLegacyTaggedArray(t *testing.T) {
	fields := decodeJSON(t, `{"images":[{"url":"x.jpg","isCover":true},{"url":"y.jpg"},{"url":"z.jpg","isLogo":true}]}`)
	rec, skips := mediadoc.Normalize("film-1", fields)
	if len(skips) != 0 {
		t.Fatalf("unexpected skips %v", skips)
	}
	if !slices.Equal(rec.Collection.Assets, []string{"x.jpg", "y.jpg", "z.jpg"}) {
		t.Fatalf("unexpected assets %v", rec.Collection.Assets)
	}
	assertIndex(t, "coverIndex", rec.Collection.CoverIndex, media.Index(0))
	assertIndex(t, "logoIndex", rec.Collection.LogoIndex, media.Index(2))
	if rec.ID != "film-1" {
		t.Fatalf("unexpected id %q", rec.ID)
	}
}

func TestNormalizeDropsEntryWithoutURL(t *testing.T) {
	fields := decodeJSON(t, `{"images":["a.jpg",{"isCover":true},"b.jpg"]}`)
	rec, skips := mediadoc.Normalize("film-2", fields)
	if !slices.Equal(rec.Collection.Assets, []string{"a.jpg", "b.jpg"}) {
		t.Fatalf("unexpected assets %v", rec.Collection.Assets)
	}
	if rec.Collection.CoverIndex != nil {
		t.Fatalf("expected cover unset, got %d", *rec.Collection.CoverIndex)
	}
	if len(skips) != 1 || skips[0].Position != 1 || skips[0].Field != mediadoc.ImagesKey {
		t.Fatalf("unexpected skips %+v", skips)
	}
}

func TestNormalizeUsesFilteredPositions(t *testing.T) {
	fields := decodeJSON(t, `{"images":[42,{"url":""},"a.jpg",{"url":"b.jpg","isLogo":true},{"url":"c.jpg","isCover":true},{"url":"d.jpg","isCover":true}]}`)
	rec, skips := mediadoc.Normalize("news-1", fields)
	if !slices.Equal(rec.Collection.Assets, []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"}) {
		t.Fatalf("unexpected assets %v", rec.Collection.Assets)
	}
	assertIndex(t, "coverIndex", rec.Collection.CoverIndex, media.Index(2))
	assertIndex(t, "logoIndex", rec.Collection.LogoIndex, media.Index(1))
	if len(skips) != 2 {
		t.Fatalf("expected 2 skips, got %+v", skips)
	}
}

func TestNormalizeExplicitIndexes(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		cover *int
		logo  *int
		skips int
	}{
		{"canonical", `{"images":["a","b","c"],"coverIndex":1,"logoIndex":2}`, media.Index(1), media.Index(2), 0},
		{"remapped past dropped entry", `{"images":[null,"a","b"],"coverIndex":2}`, media.Index(1), nil, 1},
		{"addresses dropped entry", `{"images":["a",false,"b"],"coverIndex":1}`, nil, nil, 2},
		{"out of range kept verbatim", `{"images":["a","b","c"],"coverIndex":5,"logoIndex":-2}`, media.Index(5), media.Index(-2), 0},
		{"explicit wins over flag", `{"images":[{"url":"a","isCover":true},"b"],"coverIndex":1}`, media.Index(1), nil, 0},
		{"non integer falls back to flag", `{"images":[{"url":"a","isCover":true},"b"],"coverIndex":1.5}`, media.Index(0), nil, 1},
		{"string index ignored", `{"images":["a","b"],"logoIndex":"1"}`, nil, nil, 1},
		{"null index", `{"images":["a"],"coverIndex":null}`, nil, nil, 0},
		{"float integral", `{"images":["a","b"],"coverIndex":1.0}`, media.Index(1), nil, 0},
		{"large whole float kept verbatim", `{"images":["a","b"],"coverIndex":3e9}`, media.Index(3000000000), nil, 0},
		{"whole float past exact range", `{"images":["a","b"],"logoIndex":1e300}`, nil, nil, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, skips := mediadoc.Normalize("id", decodeJSON(t, tc.raw))
			assertIndex(t, "coverIndex", rec.Collection.CoverIndex, tc.cover)
			assertIndex(t, "logoIndex", rec.Collection.LogoIndex, tc.logo)
			if len(skips) != tc.skips {
				t.Fatalf("expected %d skips, got %+v", tc.skips, skips)
			}
		})
	}
}

func TestNormalizeBadCollectionAndPoster(t *testing.T) {
	cases := []struct {
		name   string
		images any
		poster any
		assets []string
		want   string
		skips  int
	}{
		{"bare string wrapped", "a.jpg", 12, []string{"a.jpg"}, "", 1},
		{"blank string dropped", "  ", nil, nil, "", 1},
		{"unsupported type", 7, nil, nil, "", 1},
		{"string slice", []string{"a", "b"}, "poster.jpg", []string{"a", "b"}, "poster.jpg", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := map[string]any{mediadoc.ImagesKey: tc.images}
			if tc.poster != nil {
				fields[mediadoc.PosterKey] = tc.poster
			}
			rec, skips := mediadoc.Normalize("p-1", fields)
			if !slices.Equal(rec.Collection.Assets, tc.assets) || rec.Poster != tc.want {
				t.Fatalf("unexpected record %+v", rec)
			}
			if len(skips) != tc.skips {
				t.Fatalf("expected %d skips, got %+v", tc.skips, skips)
			}
		})
	}
}

func normalizeFields(rec media.Record) map[string]any {
	fields := mediadoc.Fields(rec)
	if rec.Poster != "" {
		fields[mediadoc.PosterKey] = rec.Poster
	}
	return fields
}

func TestNormalizeIsIdempotent(t *testing.T) {
	fixtures := []string{
		`{}`,
		`{"images":[]}`,
		`{"images":["a","b"],"coverIndex":1}`,
		`{"images":[{"url":"x.jpg","isCover":true},{"url":"y.jpg"},{"url":"z.jpg","isLogo":true}]}`,
		`{"images":["a.jpg",{"isCover":true},"b.jpg"]}`,
		`{"images":[7,{"url":"a","isLogo":true,"isCover":true},"b"],"coverIndex":9,"poster":"p.jpg"}`,
		`{"images":{"url":"a"},"logoIndex":"x"}`,
		`{"images":["", "a"],"coverIndex":-1,"logoIndex":0}`,
	}
	for _, raw := range fixtures {
		first, _ := mediadoc.Normalize("id", decodeJSON(t, raw))
		second, skips := mediadoc.Normalize("id", normalizeFields(first))
		if !second.Equal(first) {
			t.Fatalf("not idempotent for %s: %+v vs %+v", raw, first, second)
		}
		if len(skips) != 0 {
			t.Fatalf("canonical output produced skips for %s: %+v", raw, skips)
		}
	}
}

func TestFieldsOmitsUnsetRoles(t *testing.T) {
	got := mediadoc.Fields(media.Record{Collection: media.Collection{Assets: []string{"a"}, LogoIndex: media.Index(0)}})
	want := map[string]any{mediadoc.ImagesKey: []string{"a"}, mediadoc.LogoIndexKey: 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Fields = %#v, want %#v", got, want)
	}
	empty := mediadoc.Fields(media.Record{})
	if images, ok := empty[mediadoc.ImagesKey].([]string); !ok || len(images) != 0 {
		t.Fatalf("expected empty images slice, got %#v", empty[mediadoc.ImagesKey])
	}
}

func TestApplyPreservesOtherFields(t *testing.T) {
	fields := decodeJSON(t, `{"title":"Opening Night","coverIndex":4,"logoIndex":1,"images":[{"url":"a"}],"poster":"p.jpg"}`)
	rec := media.Record{Collection: media.Collection{Assets: []string{"a"}, CoverIndex: media.Index(0)}}

	got := mediadoc.Apply(fields, rec)
	want := map[string]any{
		"title":                "Opening Night",
		"poster":               "p.jpg",
		mediadoc.ImagesKey:     []string{"a"},
		mediadoc.CoverIndexKey: 0,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Apply = %#v, want %#v", got, want)
	}
	if _, ok := fields[mediadoc.LogoIndexKey]; !ok {
		t.Fatal("Apply mutated its input")
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]mediadoc.Shape{
		`{}`:                              mediadoc.ShapeCanonical,
		`{"images":["a"],"coverIndex":0}`: mediadoc.ShapeCanonical,
		`{"images":[{"url":"a","isCover":true}]}`: mediadoc.ShapeTagged,
		`{"images":["a",{"url":"b"}]}`:            mediadoc.ShapeMixed,
		`{"images":["a",{"isCover":true}]}`:       mediadoc.ShapeMalformed,
		`{"images":"a"}`:                          mediadoc.ShapeMalformed,
		`{"images":["a"],"coverIndex":"0"}`:       mediadoc.ShapeMalformed,
	}
	for raw, want := range cases {
		if got := mediadoc.Classify(decodeJSON(t, raw)); got != want {
			t.Fatalf("Classify(%s) = %s, want %s", raw, got, want)
		}
	}
}
