package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLatestSnapshot_PicksHighestSeq(t *testing.T) {
	dir := t.TempDir()
	snaps := filepath.Join(dir, "snapshots")
	if err := os.MkdirAll(snaps, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"9.snap.zst", "120.snap.zst", "15.snap.zst", "junk.snap.zst", "200.txt"} {
		if err := os.WriteFile(filepath.Join(snaps, name), nil, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if got, want := latestSnapshot(dir), filepath.Join(snaps, "120.snap.zst"); got != want {
		t.Fatalf("latest=%q want %q", got, want)
	}
	if got := latestSnapshot(t.TempDir()); got != "" {
		t.Fatalf("empty dir: %q", got)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("TUBE_TEST_FLAG", "off")
	if envBool("TUBE_TEST_FLAG", true) {
		t.Fatalf("off should be false")
	}
	t.Setenv("TUBE_TEST_FLAG", "YES")
	if !envBool("TUBE_TEST_FLAG", false) {
		t.Fatalf("YES should be true")
	}
	t.Setenv("TUBE_TEST_FLAG", "maybe")
	if !envBool("TUBE_TEST_FLAG", true) {
		t.Fatalf("unparseable should keep default")
	}
}
