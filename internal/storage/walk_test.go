package storage

import (
	"context"
	"io/fs"
	"strings"
	"testing"
)

func TestWalkSkipPrunesSubtree(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, "keep/a.txt", "a")
	writeFile(t, s, "skip/b.txt", "b")
	writeFile(t, s, "skip/nested/c.txt", "c")

	var visited []string
	skip := func(rel string, d fs.DirEntry) bool { return rel == "skip" }
	err := Walk(context.Background(), s.Root(), skip, func(abs, rel string, d fs.DirEntry) error {
		visited = append(visited, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	for _, rel := range visited {
		if strings.HasPrefix(rel, "skip") {
			t.Fatalf("walk entered pruned subtree: %v", visited)
		}
	}
	want := []string{".trash", "keep", "keep/a.txt"}
	if !equalStrings(visited, want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	err := Walk(context.Background(), "/definitely/not/here", nil, func(string, string, fs.DirEntry) error { return nil })
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}
