package main

import (
	"bytes"
	"errors"
	"testing"

	"festadmin/internal/services"
)

func TestParseOutputFormat(t *testing.T) {
	tests := map[string]outputFormat{
		"":      outputTable,
		"TABLE": outputTable,
		"json":  outputJSON,
		" yml ": outputYAML,
	}
	for input, want := range tests {
		got, err := parseOutputFormat(input)
		if err != nil || got != want {
			t.Fatalf("parseOutputFormat(%q) = %q, %v; want %q", input, got, err, want)
		}
	}
	if _, err := parseOutputFormat("csv"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCollectionLabel(t *testing.T) {
	tests := map[string]string{
		"films":          "Films",
		"press_releases": "Press Releases",
		"side-events":    "Side Events",
		"  ":             "-",
	}
	for input, want := range tests {
		if got := collectionLabel(input); got != want {
			t.Fatalf("collectionLabel(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestCompactValue(t *testing.T) {
	if got := compactValue(nil); got != "(absent)" {
		t.Fatalf("compactValue(nil) = %q", got)
	}
	if got := compactValue([]string{"a.jpg", "b.jpg"}); got != `["a.jpg","b.jpg"]` {
		t.Fatalf("compactValue(slice) = %q", got)
	}
}

func TestShouldColorizeIgnoresBuffers(t *testing.T) {
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("buffers are never terminals")
	}
	if got := paint("x", ansiRed, false); got != "x" {
		t.Fatalf("paint without colour = %q", got)
	}
}
