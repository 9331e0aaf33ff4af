package main

import (
	"testing"

	"tubecraft.ai/internal/sim/world"
)

func TestParseAABB_NormalizesCorners(t *testing.T) {
	min, max, err := parseAABB("5, 0,-3:1,2,4")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if min != [3]int{1, 0, -3} || max != [3]int{5, 2, 4} {
		t.Fatalf("min=%v max=%v", min, max)
	}
	for _, bad := range []string{"1,2,3", "1,2:3,4,5", "a,b,c:1,2,3"} {
		if _, _, err := parseAABB(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}

func TestAuditFilter(t *testing.T) {
	box := [2][3]int{{0, 0, 0}, {10, 10, 10}}
	cases := []struct {
		name string
		f    auditFilter
		e    world.AuditEntry
		want bool
	}{
		{"empty filter matches", auditFilter{}, world.AuditEntry{Seq: 1}, true},
		{"since seq", auditFilter{SinceSeq: 5}, world.AuditEntry{Seq: 4}, false},
		{"action", auditFilter{Action: "BOOK"}, world.AuditEntry{Action: "SET_BLOCK"}, false},
		{"station as origin", auditFilter{Station: "A"}, world.AuditEntry{Station: "A"}, true},
		{"station as destination", auditFilter{Station: "B"}, world.AuditEntry{Station: "A", Destination: "B"}, true},
		{"other station", auditFilter{Station: "C"}, world.AuditEntry{Station: "A", Destination: "B"}, false},
		{"inside box", auditFilter{Box: &box}, world.AuditEntry{Pos: [3]int{10, 0, 5}}, true},
		{"outside box", auditFilter{Box: &box}, world.AuditEntry{Pos: [3]int{11, 0, 5}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.f.match(tc.e); got != tc.want {
				t.Fatalf("match=%v want %v", got, tc.want)
			}
		})
	}
}
