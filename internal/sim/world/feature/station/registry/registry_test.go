package registry

import (
	"errors"
	"testing"

	modelpkg "tubecraft.ai/internal/sim/world/kernel/model"
)

func TestRegister_DuplicateName(t *testing.T) {
	r := New(0)
	if err := r.Register("A", modelpkg.Vec3i{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register("A", modelpkg.Vec3i{X: 5}); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("err=%v want ErrDuplicateName", err)
	}
	if err := r.Register("  ", modelpkg.Vec3i{}); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("err=%v want ErrEmptyName", err)
	}
	st, _ := r.Lookup("A")
	if st.Pos != (modelpkg.Vec3i{}) {
		t.Fatalf("duplicate register overwrote station: %+v", st)
	}
}

func TestBindBooking_DistanceBoundary(t *testing.T) {
	cases := []struct {
		name     string
		terminal modelpkg.Vec3i
		wantErr  error
	}{
		{"near", modelpkg.Vec3i{Z: 5}, nil},
		{"exactly 30", modelpkg.Vec3i{Z: 30}, nil},
		{"31", modelpkg.Vec3i{Z: 31}, ErrTooFar},
		{"just over 30", modelpkg.Vec3i{X: 1, Z: 30}, ErrTooFar},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := New(0)
			_ = r.Register("A", modelpkg.Vec3i{})
			err := r.BindBooking("A", tc.terminal, "info")
			if tc.wantErr == nil && err != nil {
				t.Fatalf("BindBooking: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("err=%v want %v", err, tc.wantErr)
			}
			st, _ := r.Lookup("A")
			if st.HasBooking != (tc.wantErr == nil) {
				t.Fatalf("HasBooking=%v", st.HasBooking)
			}
		})
	}
}

func TestBindBooking_AlreadyBoundKeepsFirst(t *testing.T) {
	r := New(0)
	_ = r.Register("A", modelpkg.Vec3i{})
	if err := r.BindBooking("A", modelpkg.Vec3i{Z: 5}, "first"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := r.BindBooking("A", modelpkg.Vec3i{Z: 6}, "second"); !errors.Is(err, ErrAlreadyBound) {
		t.Fatalf("err=%v want ErrAlreadyBound", err)
	}
	st, _ := r.Lookup("A")
	if st.BookingPos != (modelpkg.Vec3i{Z: 5}) || st.Info != "first" {
		t.Fatalf("first binding changed: %+v", st)
	}
	if got, ok := r.ByTerminal(modelpkg.Vec3i{Z: 5}); !ok || got.Name != "A" {
		t.Fatalf("ByTerminal=%+v,%v", got, ok)
	}
}

func TestBindBooking_UnknownStation(t *testing.T) {
	r := New(0)
	if err := r.BindBooking("nope", modelpkg.Vec3i{}, ""); !errors.Is(err, ErrUnknownStation) {
		t.Fatalf("err=%v want ErrUnknownStation", err)
	}
}

func TestUnbindBooking_Idempotent(t *testing.T) {
	r := New(0)
	_ = r.Register("A", modelpkg.Vec3i{})
	_ = r.BindBooking("A", modelpkg.Vec3i{X: 1}, "x")
	r.UnbindBooking("A")
	r.UnbindBooking("A")
	r.UnbindBooking("missing")
	st, _ := r.Lookup("A")
	if st.HasBooking || st.Info != "" {
		t.Fatalf("binding not cleared: %+v", st)
	}
	if err := r.BindBooking("A", modelpkg.Vec3i{X: 2}, "y"); err != nil {
		t.Fatalf("rebind after unbind: %v", err)
	}
}

func TestNames_Sorted(t *testing.T) {
	r := New(0)
	for _, n := range []string{"Zeta", "alpha", "Beta"} {
		_ = r.Register(n, modelpkg.Vec3i{})
	}
	got := r.Names()
	want := []string{"Beta", "Zeta", "alpha"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names=%v want %v", got, want)
		}
	}
	if !r.Remove("Zeta") || r.Remove("Zeta") {
		t.Fatalf("Remove not reporting presence")
	}
}
