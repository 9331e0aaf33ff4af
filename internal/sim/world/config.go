package world

type WorldConfig struct {
	ID        string
	BoundaryR int

	// Booking terminals must be within this Euclidean distance of their station.
	MaxBookingDistance int
	// "registry" or "topology".
	Reachability string

	// Operational parameters.
	SnapshotEveryActions int
	MaxOpenForms         int

	// Digest of the tuning file the config was built from, echoed to clients.
	TuningDigest string
}

func (c WorldConfig) withDefaults() WorldConfig {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.MaxBookingDistance <= 0 {
		c.MaxBookingDistance = 30
	}
	if c.Reachability == "" {
		c.Reachability = "registry"
	}
	if c.MaxOpenForms <= 0 {
		c.MaxOpenForms = 1024
	}
	return c
}
