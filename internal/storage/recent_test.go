package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestScanRecentOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	paths := []string{"a.txt", "docs/b.txt", "docs/deep/c.txt", "Photos/d.jpg", "e.txt"}
	for i, p := range paths {
		abs := writeFile(t, s, p, p)
		setModTime(t, abs, base.Add(time.Duration(i)*time.Hour))
	}
	trashed := writeFile(t, s, ".trash/newest.txt", "trash")
	setModTime(t, trashed, base.Add(48*time.Hour))

	got, err := s.ScanRecent(context.Background(), 3)
	if err != nil {
		t.Fatalf("ScanRecent: %v", err)
	}
	want := []string{"e.txt", "Photos/d.jpg", "docs/deep/c.txt"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.VirtualPath != want[i] {
			t.Errorf("entry %d = %s, want %s", i, e.VirtualPath, want[i])
		}
		if e.Kind != KindFile {
			t.Errorf("entry %s has kind %s", e.VirtualPath, e.Kind)
		}
	}
}

func TestScanRecentPropertiesHold(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 80; i++ {
		abs := writeFile(t, s, fmt.Sprintf("d%d/f%d.txt", i%7, i), "x")
		// Repeat timestamps to exercise ties.
		setModTime(t, abs, base.Add(time.Duration(i%13)*time.Minute))
	}

	for _, limit := range []int{1, 10, 50, 200} {
		got, err := s.ScanRecent(context.Background(), limit)
		if err != nil {
			t.Fatalf("ScanRecent(%d): %v", limit, err)
		}
		if len(got) > limit {
			t.Fatalf("ScanRecent(%d) returned %d entries", limit, len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].ModifiedAt.After(got[i-1].ModifiedAt) {
				t.Fatalf("ScanRecent(%d) not sorted at %d", limit, i)
			}
		}
	}

	first, _ := s.ScanRecent(context.Background(), 80)
	second, _ := s.ScanRecent(context.Background(), 80)
	for i := range first {
		if first[i].VirtualPath != second[i].VirtualPath {
			t.Fatalf("scan not deterministic at %d: %s vs %s", i, first[i].VirtualPath, second[i].VirtualPath)
		}
	}
}

func TestScanRecentDefaultLimit(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < DefaultRecentLimit+5; i++ {
		writeFile(t, s, fmt.Sprintf("f%03d.txt", i), "x")
	}
	got, err := s.ScanRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("ScanRecent: %v", err)
	}
	if len(got) != DefaultRecentLimit {
		t.Fatalf("got %d entries, want %d", len(got), DefaultRecentLimit)
	}
}

func TestScanRecentSkipsUnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	s := newTestStore(t)
	writeFile(t, s, "ok/visible.txt", "v")
	writeFile(t, s, "locked/hidden.txt", "h")

	locked := filepath.Join(s.Root(), "locked")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	got, err := s.ScanRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("ScanRecent: %v", err)
	}
	if len(got) != 1 || got[0].VirtualPath != "ok/visible.txt" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestScanRecentEmptyTree(t *testing.T) {
	s := newTestStore(t)
	got, err := s.ScanRecent(context.Background(), 5)
	if err != nil {
		t.Fatalf("ScanRecent: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no files, got %+v", got)
	}
}

func TestScanRecentSymlinkedRoot(t *testing.T) {
	dir := t.TempDir()
	realDir := filepath.Join(dir, "real")
	if err := os.Mkdir(realDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(realDir, "a.txt"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(realDir, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	s, err := New(link, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	listed, err := s.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	recent, err := s.ScanRecent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != len(listed) || len(recent) != 1 {
		t.Fatalf("ScanRecent found %d files, List shows %d", len(recent), len(listed))
	}
	if recent[0].VirtualPath != "a.txt" {
		t.Fatalf("VirtualPath = %q, want a.txt", recent[0].VirtualPath)
	}
}
