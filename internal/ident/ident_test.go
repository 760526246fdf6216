package ident

import "testing"

func TestRandomIDsAreShortAndDistinct(t *testing.T) {
	seen := map[string]struct{}{}
	var gen Random
	for i := 0; i < 1000; i++ {
		id := gen.NewID()
		if len(id) != 12 {
			t.Fatalf("expected 12 characters, got %q", id)
		}
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestSequence(t *testing.T) {
	seq := NewSequence("scan-", "abc123", "abc123")
	want := []string{"abc123", "abc123", "scan-1", "scan-2"}
	for i, w := range want {
		if got := seq.NewID(); got != w {
			t.Fatalf("id %d: expected %q, got %q", i, w, got)
		}
	}
}
