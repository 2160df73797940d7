package storage

import (
	"context"
	"errors"
	"io"
	"testing"
)

func TestOpen(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, "docs/a.txt", "hello")
	writeFile(t, s, ".trash/b.txt", "gone")
	ctx := context.Background()

	f, info, err := s.Open(ctx, "docs/a.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	data, _ := io.ReadAll(f)
	if string(data) != "hello" || info.Size() != 5 {
		t.Fatalf("read %q (size %d)", data, info.Size())
	}

	writeFile(t, s, "docs/.upload-1.tmp", "partial")

	for _, vp := range []string{"", "docs", "missing", ".trash/b.txt", "../../etc/passwd", "docs/a.txt/x", "docs/.upload-1.tmp"} {
		if _, _, err := s.Open(ctx, vp); !errors.Is(err, ErrNotFound) {
			t.Errorf("Open(%q): got %v, want ErrNotFound", vp, err)
		}
	}
}
