package log

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tubecraft.ai/internal/sim/world"
)

func TestReadAudit_AcrossRotatedFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLZstdWriter(dir, "audit")
	clock := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)
	w.now = func() time.Time { return clock }
	for seq := uint64(1); seq <= 4; seq++ {
		if err := w.Write(world.AuditEntry{Seq: seq, Action: "SET_BLOCK"}); err != nil {
			t.Fatalf("write: %v", err)
		}
		clock = clock.Add(20 * time.Minute)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Foreign files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	files, err := AuditFiles(dir)
	if err != nil || len(files) != 2 {
		t.Fatalf("files=%v err=%v", files, err)
	}

	var seqs []uint64
	if err := ReadAudit(dir, func(e world.AuditEntry) error {
		seqs = append(seqs, e.Seq)
		return nil
	}); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(seqs) != 4 || seqs[0] != 1 || seqs[3] != 4 {
		t.Fatalf("seqs=%v", seqs)
	}

	stop := errors.New("stop")
	n := 0
	err = ReadAudit(dir, func(world.AuditEntry) error {
		n++
		return stop
	})
	if !errors.Is(err, stop) || n != 1 {
		t.Fatalf("err=%v n=%d", err, n)
	}
}
