package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestListRootExcludesTrash(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, "a.txt", "a")
	writeFile(t, s, "Photos/p.jpg", "jpg")
	writeFile(t, s, ".trash/old.txt", "old")

	entries, err := s.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := names(entries)
	want := []string{"Photos", "a.txt"}
	if !equalStrings(got, want) {
		t.Fatalf("List root = %v, want %v", got, want)
	}
	for _, e := range entries {
		if e.Name == DefaultTrashDir {
			t.Fatal("trash directory leaked into listing")
		}
	}
}

func TestListSubdirectory(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, "Photos/2024/a.jpg", "aaaa")
	writeFile(t, s, "Photos/b.jpg", "bb")

	entries, err := s.List(context.Background(), "/Photos/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	byName := map[string]Entry{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	if len(byName) != 2 {
		t.Fatalf("expected 2 entries, got %v", names(entries))
	}
	if e := byName["2024"]; e.Kind != KindFolder || e.VirtualPath != "Photos/2024" || e.Size != 0 {
		t.Errorf("unexpected folder entry: %+v", e)
	}
	if e := byName["b.jpg"]; e.Kind != KindFile || e.VirtualPath != "Photos/b.jpg" || e.Size != 2 {
		t.Errorf("unexpected file entry: %+v", e)
	}
}

func TestListIsStable(t *testing.T) {
	s := newTestStore(t)
	for _, n := range []string{"c", "a", "b", "d/x"} {
		writeFile(t, s, n, n)
	}
	ctx := context.Background()

	first, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := s.List(ctx, "")
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("listing length changed: %d vs %d", len(again), len(first))
		}
		for j := range first {
			if first[j].VirtualPath != again[j].VirtualPath {
				t.Fatalf("order changed at %d: %s vs %s", j, first[j].VirtualPath, again[j].VirtualPath)
			}
		}
	}
}

func TestListDirectoryNotFound(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, "file.txt", "x")
	ctx := context.Background()

	for _, vp := range []string{"missing", "file.txt", ".trash", ".trash/anything"} {
		if _, err := s.List(ctx, vp); !errors.Is(err, ErrDirectoryNotFound) {
			t.Errorf("List(%q): got %v, want ErrDirectoryNotFound", vp, err)
		}
	}
}

func TestListTraversalListsRoot(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, "inside.txt", "x")

	entries, err := s.List(context.Background(), "../../..")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := names(entries); !equalStrings(got, []string{"inside.txt"}) {
		t.Fatalf("expected root listing, got %v", got)
	}
}

func TestListSkipsEscapingSymlinks(t *testing.T) {
	s := newTestStore(t)
	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("s"), 0644); err != nil {
		t.Fatal(err)
	}
	writeFile(t, s, "real.txt", "r")
	if err := os.Symlink(outside, filepath.Join(s.Root(), "escape")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(s.Root(), "real.txt"), filepath.Join(s.Root(), "alias.txt")); err != nil {
		t.Fatal(err)
	}

	entries, err := s.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := names(entries); !equalStrings(got, []string{"alias.txt", "real.txt"}) {
		t.Fatalf("List = %v, want alias.txt and real.txt only", got)
	}

	if _, err := s.List(context.Background(), "escape"); !errors.Is(err, ErrDirectoryNotFound) {
		t.Fatalf("List(escape): got %v, want ErrDirectoryNotFound", err)
	}
}

func TestListTrash(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, "docs/report.txt", "r")
	ctx := context.Background()

	if _, err := s.MoveToTrash(ctx, "docs/report.txt"); err != nil {
		t.Fatalf("MoveToTrash: %v", err)
	}
	trash, err := s.ListTrash(ctx)
	if err != nil {
		t.Fatalf("ListTrash: %v", err)
	}
	if len(trash) != 1 || trash[0].VirtualPath != "report.txt" {
		t.Fatalf("unexpected trash listing: %+v", trash)
	}
}

func TestListThroughFileIsDirectoryNotFound(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, "a.txt", "x")

	if _, err := s.List(context.Background(), "a.txt/x"); !errors.Is(err, ErrDirectoryNotFound) {
		t.Fatalf("got %v, want ErrDirectoryNotFound", err)
	}
}

func TestListHidesStagedUploads(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, "docs/keep.txt", "x")
	writeFile(t, s, "docs/.upload-123.tmp", "partial")

	entries, err := s.List(context.Background(), "docs")
	if err != nil {
		t.Fatal(err)
	}
	if got := names(entries); !equalStrings(got, []string{"keep.txt"}) {
		t.Fatalf("listed %v, want only keep.txt", got)
	}
}
