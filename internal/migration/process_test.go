package migration_test

import (
	"encoding/json"
	"slices"
	"testing"

	"festadmin/internal/content"
	"festadmin/internal/media"
	"festadmin/internal/migration"
)

func TestDiffUsesJSONEquality(t *testing.T) {
	rec := media.Record{Collection: media.Collection{Assets: []string{"a", "b"}, CoverIndex: media.Index(1)}}

	tests := []struct {
		name   string
		stored map[string]any
		want   []string
	}{
		{"float index", map[string]any{"images": []any{"a", "b"}, "coverIndex": 1.0}, nil},
		{"int32 index", map[string]any{"images": []string{"a", "b"}, "coverIndex": int32(1)}, nil},
		{"json number", map[string]any{"images": []any{"a", "b"}, "coverIndex": json.Number("1"), "logoIndex": nil}, nil},
		{"different cover", map[string]any{"images": []any{"a", "b"}, "coverIndex": 0}, []string{"coverIndex"}},
		{"extra logo", map[string]any{"images": []any{"a", "b"}, "coverIndex": 1, "logoIndex": 0}, []string{"logoIndex"}},
		{"tagged images", map[string]any{"images": []any{map[string]any{"url": "a"}, "b"}, "coverIndex": 1}, []string{"images"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := migration.Diff(tt.stored, rec)
			var got []string
			for _, c := range changes {
				got = append(got, c.Field)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Diff fields = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Diff fields = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestDiffTreatsMissingImagesAsEmpty(t *testing.T) {
	if changes := migration.Diff(map[string]any{"title": "x"}, media.Record{}); len(changes) != 0 {
		t.Fatalf("expected no changes for a document without media, got %+v", changes)
	}
	changes := migration.Diff(map[string]any{}, media.Record{Collection: media.Collection{Assets: []string{"a"}}})
	if len(changes) != 1 || changes[0].Field != "images" {
		t.Fatalf("expected images change, got %+v", changes)
	}
}

func TestProcessRepairsOnlyInvalidRecords(t *testing.T) {
	valid := migration.Process(content.Document{ID: "v", Fields: map[string]any{"images": []any{"a"}, "coverIndex": 0.0}})
	if valid.Changed() || len(valid.Issues) != 0 {
		t.Fatalf("expected untouched valid record, got %+v", valid)
	}

	broken := migration.Process(content.Document{ID: "b", Fields: map[string]any{"images": []any{}, "coverIndex": 0.0}})
	if !broken.Changed() || broken.Final.Collection.CoverIndex != nil {
		t.Fatalf("expected cover cleared on empty collection, got %+v", broken)
	}
	if len(broken.Issues) != 1 {
		t.Fatalf("expected the validation issue reported, got %v", broken.Issues)
	}
}

func TestProcessPreservesAssetsInOddEncodings(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		assets []string
		cover  *int
	}{
		{"bare string images", map[string]any{"images": "a.jpg", "coverIndex": 0.0}, []string{"a.jpg"}, media.Index(0)},
		{"large double cover", map[string]any{"images": []any{"a", "b"}, "coverIndex": 3e9}, []string{"a", "b"}, media.Index(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := migration.Process(content.Document{ID: "x", Fields: tt.fields})
			if !out.Changed() {
				t.Fatalf("expected a rewrite, got %+v", out)
			}
			got := out.Final.Collection
			if !slices.Equal(got.Assets, tt.assets) {
				t.Fatalf("assets = %v, want %v", got.Assets, tt.assets)
			}
			if got.CoverIndex == nil || *got.CoverIndex != *tt.cover {
				t.Fatalf("coverIndex = %v, want %d", got.CoverIndex, *tt.cover)
			}
		})
	}
}
