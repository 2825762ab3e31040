package configsrc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFetchLocalPassthrough(t *testing.T) {
	dir := t.TempDir()
	got, err := Fetch(context.Background(), dir, "")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != dir {
		t.Fatalf("got %q want %q", got, dir)
	}
	if _, err := Fetch(context.Background(), filepath.Join(dir, "missing"), ""); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestFetchForcedFileGetter(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "tuning.yaml"), []byte("world:\n  seed: 5\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	dst := filepath.Join(t.TempDir(), "configs")
	got, err := Fetch(context.Background(), "file::"+src, dst)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(got, "tuning.yaml"))
	if err != nil {
		t.Fatalf("read fetched file: %v", err)
	}
	if string(raw) != "world:\n  seed: 5\n" {
		t.Fatalf("content = %q", raw)
	}
}

func TestIsRemote(t *testing.T) {
	cases := map[string]bool{
		"./configs":                          false,
		"/etc/blockworld":                    false,
		"git::https://example.com/cfg.git":   true,
		"https://example.com/configs.tar.gz": true,
		"s3::https://s3.amazonaws.com/b/k":   true,
	}
	for src, want := range cases {
		if got := IsRemote(src); got != want {
			t.Fatalf("IsRemote(%q) = %v", src, got)
		}
	}
}
