package main

import (
	"flag"
	"fmt"
	"os"

	"tubecraft.ai/internal/persistence/snapshot"
	"tubecraft.ai/internal/sim/catalogs"
	"tubecraft.ai/internal/sim/world"
)

func main() {
	var (
		snapPath  = flag.String("snapshot", "", "path to .snap.zst")
		auditDir  = flag.String("audit", "", "audit dir containing audit-*.jsonl.zst (optional)")
		configDir = flag.String("configs", "./configs", "config directory")
	)
	flag.Parse()

	if *snapPath == "" {
		fmt.Fprintln(os.Stderr, "missing -snapshot")
		os.Exit(2)
	}

	snap, err := snapshot.ReadSnapshot(*snapPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}

	fmt.Printf("snapshot v%d world=%s seq=%d boundary_r=%d reachability=%s cells=%d stations=%d bookings=%d\n",
		snap.Header.Version, snap.Header.WorldID, snap.Header.Seq, snap.BoundaryR, snap.Reachability,
		len(snap.Cells), len(snap.Stations), len(snap.Bookings))

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalogs:", err)
		os.Exit(1)
	}

	// Import rebuilds junction routes and re-verifies every tube chain.
	w, err := world.NewFromSnapshot(world.WorldConfig{}, cats, snap)
	if err != nil {
		fmt.Fprintln(os.Stderr, "verify snapshot:", err)
		os.Exit(1)
	}
	m := w.Metrics()
	fmt.Printf("verify ok: junctions=%d loaded_chunks=%d digest=%s\n", m.Junctions, m.LoadedChunks, m.Digest)

	if *auditDir == "" {
		return
	}
	tail, err := auditTail(*auditDir, snap.Header.Seq)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read audit:", err)
		os.Exit(1)
	}
	fmt.Printf("audit: %d entries after seq=%d\n", tail.Total, snap.Header.Seq)
	for _, a := range tail.Actions() {
		fmt.Printf("  %s=%d\n", a, tail.ByAction[a])
	}
	if tail.Gap {
		fmt.Fprintf(os.Stderr, "audit seq gap after snapshot: first=%d want=%d\n", tail.First, snap.Header.Seq+1)
		os.Exit(1)
	}
}
