// Package view renders a world onto a tcell screen. Map y grows upwards, so
// the top screen row shows the highest visible map row.
package view

import (
	"github.com/gdamore/tcell/v2"

	"github.com/signalsfoundry/factory-simulator/core"
	"github.com/signalsfoundry/factory-simulator/grid"
	"github.com/signalsfoundry/factory-simulator/model"
)

var (
	styleDirt  = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleWater = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleLava  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleWall  = tcell.StyleDefault.Foreground(tcell.ColorGray)

	styleCopper = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	styleIron   = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleCoal   = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)

	styleBuilding   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleCore       = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleUnpowered  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleGenerating = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleHUD        = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

var (
	conveyorGlyphs = [4]rune{'▲', '▶', '▼', '◀'}

	terrainGlyphs = map[model.Terrain]rune{
		model.TerrainDirt:  '.',
		model.TerrainWater: '~',
		model.TerrainLava:  '%',
		model.TerrainWall:  '#',
	}
	terrainStyles = map[model.Terrain]tcell.Style{
		model.TerrainDirt:  styleDirt,
		model.TerrainWater: styleWater,
		model.TerrainLava:  styleLava,
		model.TerrainWall:  styleWall,
	}
	oreGlyphs = map[model.Ore]rune{
		model.OreCopper: 'c',
		model.OreIron:   'i',
		model.OreCoal:   'k',
	}
	oreStyles = map[model.Ore]tcell.Style{
		model.OreCopper: styleCopper,
		model.OreIron:   styleIron,
		model.OreCoal:   styleCoal,
	}
	variantGlyphs = map[core.Variant]rune{
		core.VariantDrill:     'D',
		core.VariantFactory:   'F',
		core.VariantGenerator: 'G',
		core.VariantCore:      '@',
		core.VariantBattery:   'B',
		core.VariantPowerPole: '+',
	}
)

// Cell returns the glyph and style for a tile and the building covering it,
// if any.
func Cell(t *grid.Tile, b core.Building) (rune, tcell.Style) {
	if b != nil {
		return buildingCell(b)
	}
	if t == nil {
		return ' ', tcell.StyleDefault
	}
	if r, ok := oreGlyphs[t.Ore]; ok {
		return r, oreStyles[t.Ore]
	}
	r, ok := terrainGlyphs[t.Terrain]
	if !ok {
		return '?', tcell.StyleDefault
	}
	return r, terrainStyles[t.Terrain]
}

func buildingCell(b core.Building) (rune, tcell.Style) {
	def := b.Def()
	p := b.Power()
	style := styleBuilding
	switch {
	case def.Variant == core.VariantCore:
		style = styleCore
	case p.Production > 0:
		style = styleGenerating
	case p.Consumption > 0 && !p.Satisfied:
		style = styleUnpowered
	}
	if def.Variant == core.VariantConveyor {
		return conveyorGlyphs[b.Facing()%4], style
	}
	if r, ok := variantGlyphs[def.Variant]; ok {
		return r, style
	}
	return '?', style
}

// Renderer draws a window of the map onto a screen.
type Renderer struct {
	screen tcell.Screen
	// OriginX and OriginY are the map cell shown at the bottom-left corner.
	OriginX, OriginY int
}

// NewRenderer wraps an initialised screen.
func NewRenderer(s tcell.Screen) *Renderer {
	return &Renderer{screen: s}
}

// Pan moves the visible window by (dx, dy) map cells.
func (r *Renderer) Pan(dx, dy int) {
	r.OriginX += dx
	r.OriginY += dy
}

// Center places (x, y) in the middle of the map area.
func (r *Renderer) Center(x, y int) {
	w, h := r.mapArea()
	r.OriginX = x - w/2
	r.OriginY = y - h/2
}

// mapArea is the screen minus the status lines.
func (r *Renderer) mapArea() (int, int) {
	w, h := r.screen.Size()
	return w, max(h-1, 0)
}

// ScreenToMap converts a screen cell to map coordinates.
func (r *Renderer) ScreenToMap(sx, sy int) (int, int) {
	_, h := r.mapArea()
	return r.OriginX + sx, r.OriginY + (h - 1 - sy)
}

// Draw paints the visible part of w and a status line, then shows the screen.
func (r *Renderer) Draw(w *core.World, status string) {
	r.screen.Clear()
	width, height := r.mapArea()
	for sy := 0; sy < height; sy++ {
		for sx := 0; sx < width; sx++ {
			x, y := r.ScreenToMap(sx, sy)
			t := w.Tile(x, y)
			if t == nil {
				continue
			}
			ch, style := Cell(t, w.BuildingAt(x, y))
			r.screen.SetContent(sx, sy, ch, nil, style)
		}
	}
	_, h := r.screen.Size()
	if h > 0 {
		col := 0
		for _, ch := range status {
			if col >= width {
				break
			}
			r.screen.SetContent(col, h-1, ch, nil, styleHUD)
			col++
		}
	}
	r.screen.Show()
}
