package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version" json:"protocol_version"`

	WorldBoundaryR     int    `yaml:"world_boundary_r" json:"world_boundary_r"`
	BookingMaxDistance int    `yaml:"booking_max_distance" json:"booking_max_distance"`
	Reachability       string `yaml:"reachability" json:"reachability"`

	SnapshotEveryActions int `yaml:"snapshot_every_actions" json:"snapshot_every_actions"`
	MaxOpenForms         int `yaml:"max_open_forms" json:"max_open_forms"`
	EventQueue           int `yaml:"event_queue" json:"event_queue"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:      "1.0",
		WorldBoundaryR:       4096,
		BookingMaxDistance:   30,
		Reachability:         "registry",
		SnapshotEveryActions: 500,
		MaxOpenForms:         1024,
		EventQueue:           256,
	}
}

// Load reads path over Defaults; keys missing from the file keep their default.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.BookingMaxDistance <= 0 {
		return fmt.Errorf("booking_max_distance must be > 0")
	}
	switch t.Reachability {
	case "registry", "topology":
	default:
		return fmt.Errorf("reachability must be registry or topology, got %q", t.Reachability)
	}
	if t.WorldBoundaryR < 0 || t.SnapshotEveryActions < 0 || t.MaxOpenForms < 0 || t.EventQueue < 0 {
		return fmt.Errorf("negative limits are not allowed")
	}
	return nil
}

// Digest hashes the canonical JSON of the applied values.
func (t Tuning) Digest() string {
	b, _ := json.Marshal(t)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
