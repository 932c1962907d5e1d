package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "app.trace")
	other := filepath.Join(dir, "other.trace")
	if err := os.WriteFile(target, []byte("1: malloc 0x10 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New([]string{target}, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 16)
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx, func(p string) { got <- p }) }()

	for _, p := range []string{other, target + ".repair", target} {
		if err := os.WriteFile(p, []byte("1: free 0x10\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case p := <-got:
		if p != target {
			t.Errorf("reported %q, want %q", p, target)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case p := <-got:
		if p != target {
			t.Errorf("unexpected report %q", p)
		}
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcher_Directory(t *testing.T) {
	dir := t.TempDir()

	w, err := New([]string{dir}, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 16)
	go func() { _ = w.Run(ctx, func(p string) { got <- p }) }()

	if err := os.WriteFile(filepath.Join(dir, "x.trace.repair"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "new.trace")
	if err := os.WriteFile(want, []byte("1: free 0x0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-got:
		if p != want {
			t.Errorf("reported %q, want %q", p, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestMatch(t *testing.T) {
	w := &Watcher{
		files: map[string]string{"/data/a.trace": "a.trace"},
		dirs:  map[string]string{"/spool": "spool"},
	}
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"/data/a.trace", "a.trace", true},
		{"/data/b.trace", "", false},
		{"/data/a.trace.repair", "", false},
		{"/spool/x", filepath.Join("spool", "x"), true},
		{"/spool/x.repair", "", false},
		{"/spool/sub/x", "", false},
	}
	for _, tt := range tests {
		got, ok := w.match(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("match(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNew_BadPath(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing", "dir", "x.trace")})
	if err == nil {
		t.Error("expected error watching a missing directory")
	}
}
