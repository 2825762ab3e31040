package blocks

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// ID indexes into a Registry. Air (0) is reserved.
type ID uint16

const (
	Air        ID = 0
	Stone      ID = 1
	Dirt       ID = 2
	Grass      ID = 3
	Wood       ID = 4
	Sand       ID = 5
	Water      ID = 6
	Bedrock    ID = 7
	Leaves     ID = 8
	CoalOre    ID = 9
	IronOre    ID = 10
	GoldOre    ID = 11
	DiamondOre ID = 12
)

// Props are the static properties of one block type.
type Props struct {
	Name        string
	Solid       bool
	Transparent bool
	Gravity     bool
	Hardness    float32
	Color       mgl32.Vec4
	Texture     string // empty: untextured
}

// Def is the on-disk form of one registry entry (blocks.json).
type Def struct {
	ID          ID         `json:"id"`
	Name        string     `json:"name"`
	Solid       bool       `json:"solid"`
	Transparent bool       `json:"transparent,omitempty"`
	Gravity     bool       `json:"gravity,omitempty"`
	Hardness    float32    `json:"hardness,omitempty"`
	Color       mgl32.Vec4 `json:"color"`
	Texture     string     `json:"texture,omitempty"`
}

func (d Def) props() Props {
	return Props{
		Name:        d.Name,
		Solid:       d.Solid,
		Transparent: d.Transparent,
		Gravity:     d.Gravity,
		Hardness:    d.Hardness,
		Color:       d.Color,
		Texture:     d.Texture,
	}
}

// Registry is read-only once built; share one instance between the world
// and whatever draws it.
type Registry struct {
	defs   map[ID]Props
	byName map[string]ID
	ids    []ID
	digest string
}

func NewRegistry(defs []Def) (*Registry, error) {
	r := &Registry{
		defs:   make(map[ID]Props, len(defs)+1),
		byName: make(map[string]ID, len(defs)+1),
	}
	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("block %d: empty name", d.ID)
		}
		if _, dup := r.defs[d.ID]; dup {
			return nil, fmt.Errorf("block %d: duplicate id", d.ID)
		}
		if prev, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("block %q: name already used by id %d", d.Name, prev)
		}
		if d.ID == Air && d.Solid {
			return nil, fmt.Errorf("block 0 (%s): air must not be solid", d.Name)
		}
		r.defs[d.ID] = d.props()
		r.byName[d.Name] = d.ID
	}

	air, ok := r.defs[Air]
	if !ok {
		air = Props{Name: "AIR"}
		r.byName[air.Name] = Air
	}
	air.Solid = false
	air.Transparent = true
	r.defs[Air] = air

	r.ids = make([]ID, 0, len(r.defs))
	for id := range r.defs {
		r.ids = append(r.ids, id)
	}
	sort.Slice(r.ids, func(i, j int) bool { return r.ids[i] < r.ids[j] })

	canon := make([]Def, 0, len(r.ids))
	for _, id := range r.ids {
		p := r.defs[id]
		canon = append(canon, Def{
			ID: id, Name: p.Name, Solid: p.Solid, Transparent: p.Transparent,
			Gravity: p.Gravity, Hardness: p.Hardness, Color: p.Color, Texture: p.Texture,
		})
	}
	raw, _ := json.Marshal(canon)
	sum := sha256.Sum256(raw)
	r.digest = hex.EncodeToString(sum[:])
	return r, nil
}

// Lookup resolves an id. The second result is false for unregistered ids.
func (r *Registry) Lookup(id ID) (Props, bool) {
	p, ok := r.defs[id]
	return p, ok
}

func (r *Registry) Name(id ID) string {
	if p, ok := r.defs[id]; ok {
		return p.Name
	}
	return ""
}

func (r *Registry) ByName(name string) (ID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// IsSolid is false for air and for unknown ids.
func (r *Registry) IsSolid(id ID) bool {
	if id == Air {
		return false
	}
	return r.defs[id].Solid
}

func (r *Registry) Len() int { return len(r.defs) }

// IDs returns registered ids in ascending order.
func (r *Registry) IDs() []ID {
	out := make([]ID, len(r.ids))
	copy(out, r.ids)
	return out
}

// Digest identifies the registry content; clients compare it against their palette.
func (r *Registry) Digest() string { return r.digest }
