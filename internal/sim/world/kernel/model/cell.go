package model

// Kind classifies a grid cell within the tube topology.
type Kind uint8

const (
	KindEmpty Kind = iota
	// KindSingle is a one-cell chain; it is both of its own ends.
	KindSingle
	// KindHead is one end of a chain of two or more cells.
	KindHead
	// KindLink is interior chain filler. It is never addressable.
	KindLink
	// KindJunction is a purpose-built connector where chain ends meet.
	KindJunction
)

var kindNames = [...]string{"EMPTY", "SINGLE", "HEAD", "LINK", "JUNCTION"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN"
}

func ParseKind(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return KindEmpty, false
}

// IsTube reports whether the kind is any tube material.
func (k Kind) IsTube() bool { return k != KindEmpty }

// IsChain reports whether the kind is part of a linear chain.
func (k Kind) IsChain() bool { return k == KindSingle || k == KindHead || k == KindLink }

// IsEnd reports whether the kind is an addressable chain end.
func (k Kind) IsEnd() bool { return k == KindSingle || k == KindHead }

// Cell is the authoritative content of one grid position.
//
// Peer is only meaningful on Single/Head cells and points at the opposite end
// of the chain (a Single points at itself).
type Cell struct {
	Block    uint16
	Kind     Kind
	Peer     Vec3i
	HasPeer  bool
	Diggable bool
}

func (c Cell) IsZero() bool { return c == Cell{} }
