package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Block roles understood by the world.
const (
	RolePlain    = ""
	RoleTube     = "TUBE"
	RoleJunction = "JUNCTION"
	RoleStation  = "STATION"
	RoleTerminal = "TERMINAL"
)

type Catalogs struct {
	Blocks BlockCatalog
}

type BlockCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]BlockDef
	PaletteDigest string
	DefsDigest    string
}

type BlockDef struct {
	ID        string `json:"id"`
	Role      string `json:"role,omitempty"`
	Solid     bool   `json:"solid"`
	Breakable bool   `json:"breakable"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs
	if err := loadBlocks(filepath.Join(configDir, "blocks.json"), &c.Blocks); err != nil {
		return nil, err
	}
	return &c, nil
}

// Role returns the role of palette id, or RolePlain for unknown ids.
func (b *BlockCatalog) Role(id uint16) string {
	if int(id) >= len(b.Palette) {
		return RolePlain
	}
	return b.Defs[b.Palette[id]].Role
}

// ByRole returns the palette id of the first block (palette order) with role.
func (b *BlockCatalog) ByRole(role string) (uint16, bool) {
	for i, id := range b.Palette {
		if b.Defs[id].Role == role {
			return uint16(i), true
		}
	}
	return 0, false
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadBlocks(path string, out *BlockCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return parseBlocks(raw, out)
}

func parseBlocks(raw []byte, out *BlockCatalog) error {
	out.DefsDigest = sha256Hex(raw)

	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	out.Defs = map[string]BlockDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("blocks.json: empty id")
		}
		switch d.Role {
		case RolePlain, RoleTube, RoleJunction, RoleStation, RoleTerminal:
		default:
			return fmt.Errorf("blocks.json: %s: unknown role %q", d.ID, d.Role)
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Ensure AIR exists and is palette id 0.
	if _, ok := out.Defs["AIR"]; !ok {
		return fmt.Errorf("blocks.json: missing AIR")
	}
	ids = append([]string{"AIR"}, filterOut(ids, "AIR")...)

	for _, role := range []string{RoleTube, RoleJunction, RoleStation, RoleTerminal} {
		found := false
		for _, d := range out.Defs {
			if d.Role == role {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("blocks.json: no block with role %s", role)
		}
	}

	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func filterOut(in []string, remove string) []string {
	out := in[:0]
	for _, s := range in {
		if s != remove {
			out = append(out, s)
		}
	}
	return out
}
