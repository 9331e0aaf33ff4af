package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Seq     uint64 `json:"seq"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	BoundaryR          int    `json:"boundary_r"`
	MaxBookingDistance int    `json:"max_booking_distance"`
	Reachability       string `json:"reachability"`
	CatalogDigest      string `json:"catalog_digest,omitempty"`

	Cells    []CellV1    `json:"cells"`
	Stations []StationV1 `json:"stations"`
	Bookings []BookingV1 `json:"bookings"`
	Counters CountersV1  `json:"counters"`
}

// CellV1 is one occupied grid cell. Peer is nil for non-end cells.
type CellV1 struct {
	Pos      [3]int  `json:"pos"`
	Block    uint16  `json:"block"`
	Kind     string  `json:"kind"`
	Diggable bool    `json:"diggable"`
	Peer     *[3]int `json:"peer,omitempty"`
}

type StationV1 struct {
	Name       string  `json:"name"`
	Pos        [3]int  `json:"pos"`
	BookingPos *[3]int `json:"booking_pos,omitempty"`
	Info       string  `json:"info,omitempty"`
}

type BookingV1 struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Seq         uint64 `json:"seq"`
}

type CountersV1 struct {
	BookingSeq uint64 `json:"booking_seq"`
	Placements uint64 `json:"placements"`
	Removals   uint64 `json:"removals"`
	Rejections uint64 `json:"rejections"`
	Bookings   uint64 `json:"bookings"`
	Departures uint64 `json:"departures"`
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	hb, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(hb, &h); err != nil {
		return snap, fmt.Errorf("decode header: %w", err)
	}
	if h.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", h.Version)
	}

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}

// ReadHeader returns only the json header line, without decoding the body.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()
	hb, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, err
	}
	err = json.Unmarshal(hb, &h)
	return h, err
}
