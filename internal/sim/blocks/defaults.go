package blocks

import "github.com/go-gl/mathgl/mgl32"

// DefaultDefs is the built-in palette used when no blocks.json is configured.
func DefaultDefs() []Def {
	return []Def{
		{ID: Air, Name: "AIR", Transparent: true},
		{ID: Stone, Name: "STONE", Solid: true, Hardness: 1.5, Color: mgl32.Vec4{0.5, 0.5, 0.5, 1}},
		{ID: Dirt, Name: "DIRT", Solid: true, Hardness: 0.5, Color: mgl32.Vec4{0.55, 0.35, 0.2, 1}},
		{ID: Grass, Name: "GRASS", Solid: true, Hardness: 0.6, Color: mgl32.Vec4{0.3, 0.7, 0.2, 1}},
		{ID: Wood, Name: "WOOD", Solid: true, Hardness: 0.8, Color: mgl32.Vec4{0.6, 0.4, 0.2, 1}},
		{ID: Sand, Name: "SAND", Solid: true, Gravity: true, Hardness: 0.5, Color: mgl32.Vec4{0.95, 0.9, 0.6, 1}},
		{ID: Water, Name: "WATER", Transparent: true, Hardness: 100, Color: mgl32.Vec4{0.2, 0.4, 0.9, 0.6}},
		{ID: Bedrock, Name: "BEDROCK", Solid: true, Hardness: -1, Color: mgl32.Vec4{0.1, 0.1, 0.1, 1}},
		{ID: Leaves, Name: "LEAVES", Solid: true, Transparent: true, Hardness: 0.2, Color: mgl32.Vec4{0.2, 0.55, 0.15, 0.9}},
		{ID: CoalOre, Name: "COAL_ORE", Solid: true, Hardness: 3, Color: mgl32.Vec4{0.25, 0.25, 0.25, 1}},
		{ID: IronOre, Name: "IRON_ORE", Solid: true, Hardness: 3, Color: mgl32.Vec4{0.75, 0.6, 0.5, 1}},
		{ID: GoldOre, Name: "GOLD_ORE", Solid: true, Hardness: 3, Color: mgl32.Vec4{0.95, 0.8, 0.2, 1}},
		{ID: DiamondOre, Name: "DIAMOND_ORE", Solid: true, Hardness: 3, Color: mgl32.Vec4{0.4, 0.9, 0.9, 1}},
	}
}

// Defaults builds a registry from DefaultDefs.
func Defaults() *Registry {
	r, err := NewRegistry(DefaultDefs())
	if err != nil {
		panic("blocks: default palette invalid: " + err.Error())
	}
	return r
}
