package storage

import (
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{".", ""},
		{"/", ""},
		{"Photos", "Photos"},
		{"/Photos/", "Photos"},
		{"Photos//2024/./trip", "Photos/2024/trip"},
		{`Photos\2024`, "Photos/2024"},
		{"a/b/../c", "a/c"},
		{"a/..", ""},
		{"..", ""},
		{"../../etc", ""},
		{"/../../etc/passwd", ""},
		{"a/../../etc", ""},
		{`..\..\windows`, ""},
		{"report (1).txt", "report (1).txt"},
		{"..hidden", "..hidden"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveEscapesCollapseToRoot(t *testing.T) {
	base := filepath.Join(t.TempDir(), "root")
	for _, in := range []string{"../../etc", "../", "/..", "a/../../..", `..\..`} {
		if got := Resolve(in, base); got != base {
			t.Errorf("Resolve(%q) = %q, want root %q", in, got, base)
		}
	}
	if got := Resolve("Photos/trip", base); got != filepath.Join(base, "Photos", "trip") {
		t.Errorf("Resolve(Photos/trip) = %q", got)
	}
}

func TestResolveNeverLeavesBase(t *testing.T) {
	base := filepath.Join(t.TempDir(), "root")
	segments := []string{"..", ".", "", "a", "b", "..a", "...", `\`, "/", "//", `..\`, "c d"}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 5000; i++ {
		n := 1 + rng.Intn(8)
		parts := make([]string, n)
		for j := range parts {
			parts[j] = segments[rng.Intn(len(segments))]
		}
		in := strings.Join(parts, "/")
		if rng.Intn(2) == 0 {
			in = "/" + in
		}

		got := Resolve(in, base)
		if !within(base, got) {
			t.Fatalf("Resolve(%q) = %q escapes %q", in, got, base)
		}
		norm := Normalize(in)
		if strings.HasPrefix(norm, "/") {
			t.Fatalf("Normalize(%q) = %q has a leading slash", in, norm)
		}
		for _, seg := range strings.Split(norm, "/") {
			if seg == ".." {
				t.Fatalf("Normalize(%q) = %q contains ..", in, norm)
			}
		}
	}
}
