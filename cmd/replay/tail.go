package main

import (
	"sort"

	persistlog "tubecraft.ai/internal/persistence/log"
	"tubecraft.ai/internal/sim/world"
)

// tailStats summarizes the audit entries written after a snapshot.
type tailStats struct {
	Total    int
	First    uint64
	Gap      bool
	ByAction map[string]int
}

func (t tailStats) Actions() []string {
	out := make([]string, 0, len(t.ByAction))
	for a := range t.ByAction {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func auditTail(dir string, afterSeq uint64) (tailStats, error) {
	st := tailStats{ByAction: map[string]int{}}
	err := persistlog.ReadAudit(dir, func(e world.AuditEntry) error {
		if e.Seq <= afterSeq {
			return nil
		}
		if st.Total == 0 {
			st.First = e.Seq
			st.Gap = e.Seq != afterSeq+1
		}
		st.Total++
		st.ByAction[e.Action]++
		return nil
	})
	return st, err
}
