package topology

import modelpkg "tubecraft.ai/internal/sim/world/kernel/model"

type Class int

const (
	// ClassIsolated: no chain neighbours, the cell becomes a Single.
	ClassIsolated Class = iota
	// ClassExtend: one neighbouring end, the cell becomes that chain's new Head.
	ClassExtend
	// ClassBridge: two neighbouring ends of different chains, the cell becomes
	// a Link splicing them.
	ClassBridge
	ClassInvalid
)

func (c Class) String() string {
	switch c {
	case ClassIsolated:
		return "ISOLATED"
	case ClassExtend:
		return "EXTEND"
	case ClassBridge:
		return "BRIDGE"
	default:
		return "INVALID"
	}
}

type Classification struct {
	Class     Class
	Ends      []modelpkg.Vec3i
	Junctions []modelpkg.Vec3i
	Reason    string
}

func invalid(reason string) Classification {
	return Classification{Class: ClassInvalid, Reason: reason}
}

// Classify inspects the six neighbours of p and decides how a tube segment at
// p joins the topology. It never writes.
func (e *Engine) Classify(p modelpkg.Vec3i) Classification {
	var cls Classification
	links := 0
	for _, n := range modelpkg.Neighbors6(p) {
		switch e.grid.Kind(n) {
		case modelpkg.KindSingle, modelpkg.KindHead:
			cls.Ends = append(cls.Ends, n)
		case modelpkg.KindLink:
			links++
		case modelpkg.KindJunction:
			cls.Junctions = append(cls.Junctions, n)
		}
	}
	if links > 0 {
		return invalid("touches the middle of a chain")
	}
	if len(cls.Ends)+len(cls.Junctions) >= 3 {
		return invalid("would branch into three or more tubes")
	}

	switch len(cls.Ends) {
	case 0:
		cls.Class = ClassIsolated
	case 1:
		if !e.canDemote(cls.Ends[0]) {
			return invalid("neighbouring end is docked at a junction")
		}
		cls.Class = ClassExtend
	case 2:
		a, b := cls.Ends[0], cls.Ends[1]
		if e.far(a) == b {
			return invalid("would close a loop")
		}
		if !e.canDemote(a) || !e.canDemote(b) {
			return invalid("neighbouring end is docked at a junction")
		}
		cls.Class = ClassBridge
	}
	return cls
}

// canDemote reports whether the end at p can take one more chain neighbour.
func (e *Engine) canDemote(p modelpkg.Vec3i) bool {
	docks := e.dockCount(p, p)
	switch e.grid.Kind(p) {
	case modelpkg.KindSingle:
		return docks <= 1
	case modelpkg.KindHead:
		return docks == 0
	}
	return false
}
