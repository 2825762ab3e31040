package main

import (
	"strings"
	"unicode"

	"github.com/go-gl/mathgl/mgl32"

	"blockworld.dev/internal/sim/blocks"
	"blockworld.dev/internal/sim/world/render"
)

var namedGlyphs = map[string]rune{
	"STONE":       '#',
	"DIRT":        'd',
	"GRASS":       '"',
	"WOOD":        'w',
	"SAND":        ':',
	"WATER":       '~',
	"BEDROCK":     '=',
	"LEAVES":      '*',
	"COAL_ORE":    'c',
	"IRON_ORE":    'i',
	"GOLD_ORE":    'g',
	"DIAMOND_ORE": 'D',
}

// glyphsFor maps quads back to block glyphs by colour. Blocks sharing a
// colour draw with the glyph of the lowest id.
func glyphsFor(reg *blocks.Registry) func(render.Quad) rune {
	byColor := map[mgl32.Vec4]rune{}
	for _, id := range reg.IDs() {
		p, _ := reg.Lookup(id)
		if id == blocks.Air {
			continue
		}
		if _, ok := byColor[p.Color]; ok {
			continue
		}
		byColor[p.Color] = glyphFor(p.Name)
	}
	return func(q render.Quad) rune {
		if r, ok := byColor[q.Color]; ok {
			return r
		}
		return '?'
	}
}

func glyphFor(name string) rune {
	if r, ok := namedGlyphs[strings.ToUpper(name)]; ok {
		return r
	}
	for _, r := range name {
		return unicode.ToLower(r)
	}
	return '?'
}
