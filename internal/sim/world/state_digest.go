package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// stateDigest hashes the grid (via per-chunk digests), the station table and
// the pending bookings in a deterministic order.
func (w *World) stateDigest() string {
	h := sha256.New()
	var buf [8]byte
	writeInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	writeStr := func(s string) {
		writeInt(int64(len(s)))
		h.Write([]byte(s))
	}

	for _, k := range w.grid.LoadedChunkKeys() {
		ch := w.grid.Chunks[k]
		writeInt(int64(k.CX))
		writeInt(int64(k.CY))
		writeInt(int64(k.CZ))
		d := ch.Digest()
		h.Write(d[:])
	}
	for _, st := range w.stations.All() {
		writeStr(st.Name)
		writeInt(int64(st.Pos.X))
		writeInt(int64(st.Pos.Y))
		writeInt(int64(st.Pos.Z))
		if st.HasBooking {
			writeInt(1)
			writeInt(int64(st.BookingPos.X))
			writeInt(int64(st.BookingPos.Y))
			writeInt(int64(st.BookingPos.Z))
		} else {
			writeInt(0)
		}
		writeStr(st.Info)
	}
	for _, pb := range w.bookings.All() {
		writeStr(pb.Origin)
		writeStr(pb.Destination)
	}
	return hex.EncodeToString(h.Sum(nil))
}
