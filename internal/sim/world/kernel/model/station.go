package model

// Station is a named pod bay. BookingPos is set once a booking terminal binds to it.
type Station struct {
	Name       string
	Pos        Vec3i
	BookingPos Vec3i
	HasBooking bool
	Info       string
}

// PendingBooking is the trip a station will dispatch on its next departure.
type PendingBooking struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Seq         uint64 `json:"seq"`
}
