// Package treemap lays out weighted labels as non-overlapping
// rectangles on a fixed logical canvas, using the squarified treemap
// algorithm so tile aspect ratios stay close to 1. Layout and colors
// are deterministic for a given input.
package treemap

import (
	"hash/fnv"
	"sort"

	"github.com/spendlens/spendlens/internal/normalize"
)

// Logical canvas the tiles are packed into. Consumers scale to their
// viewport.
const (
	CanvasWidth  = 1000.0
	CanvasHeight = 650.0
)

// palette holds the fixed tile colors. A label hashes to the same
// slot on every run and in every process.
var palette = []string{
	"#4E79A7", "#F28E2B", "#E15759", "#76B7B2",
	"#59A14F", "#EDC948", "#B07AA1", "#FF9DA7",
	"#9C755F", "#BAB0AC", "#1F77B4", "#8C564B",
}

// TileInput is one weighted entry before layout.
type TileInput struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// Tile is a packed rectangle. W*H is proportional to the input value's
// share of the canvas area.
type Tile struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
}

// ColorForLabel hashes a label into the fixed palette. Identical
// labels receive identical colors across runs and restarts.
func ColorForLabel(label string) string {
	h := fnv.New32a()
	h.Write([]byte(label))
	return palette[h.Sum32()%uint32(len(palette))]
}

// BuildFromCategories packs a category→total mapping. Map iteration
// order never leaks into the layout: entries are sorted by descending
// value, ties by label, before packing.
func BuildFromCategories(byCategory map[string]float64) []Tile {
	inputs := make([]TileInput, 0, len(byCategory))
	for label, value := range byCategory {
		inputs = append(inputs, TileInput{
			ID:    normalize.StableID("tile", label),
			Label: label,
			Value: value,
		})
	}
	return Build(inputs)
}

// Build packs the inputs into the canvas. Entries with non-positive
// values are excluded; an empty (or fully excluded) input yields an
// empty tile list. Tiles never overlap and together cover the canvas.
func Build(inputs []TileInput) []Tile {
	items := make([]TileInput, 0, len(inputs))
	total := 0.0
	for _, in := range inputs {
		if in.Value > 0 {
			items = append(items, in)
			total += in.Value
		}
	}
	if len(items) == 0 {
		return []Tile{}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Value != items[j].Value {
			return items[i].Value > items[j].Value
		}
		return items[i].Label < items[j].Label
	})

	// Scale values to canvas areas.
	scale := CanvasWidth * CanvasHeight / total
	areas := make([]float64, len(items))
	for i, it := range items {
		areas[i] = it.Value * scale
	}

	tiles := make([]Tile, 0, len(items))
	free := rect{x: 0, y: 0, w: CanvasWidth, h: CanvasHeight}

	i := 0
	for i < len(items) {
		short := free.shortSide()
		row := []int{i}
		rowSum := areas[i]
		i++
		for i < len(items) {
			if worstAspect(areas, row, rowSum+areas[i], short, areas[i]) > worstAspect(areas, row, rowSum, short, -1) {
				break
			}
			row = append(row, i)
			rowSum += areas[i]
			i++
		}
		free = layoutRow(items, areas, row, rowSum, free, &tiles)
	}
	return tiles
}

type rect struct {
	x, y, w, h float64
}

func (r rect) shortSide() float64 {
	if r.w < r.h {
		return r.w
	}
	return r.h
}

// worstAspect returns the worst tile aspect ratio the row would have
// at the given row area, laid along a side of the given length. extra,
// when non-negative, is a candidate area considered part of the row.
func worstAspect(areas []float64, row []int, rowSum, side, extra float64) float64 {
	thickness := rowSum / side
	worst := 0.0
	consider := func(a float64) {
		aspect := thickness * thickness / a
		if inv := a / (thickness * thickness); inv > aspect {
			aspect = inv
		}
		if aspect > worst {
			worst = aspect
		}
	}
	for _, idx := range row {
		consider(areas[idx])
	}
	if extra >= 0 {
		consider(extra)
	}
	return worst
}

// layoutRow places one row of tiles along the shorter side of the free
// rectangle and returns the remaining free rectangle.
func layoutRow(items []TileInput, areas []float64, row []int, rowSum float64, free rect, tiles *[]Tile) rect {
	horizontal := free.w <= free.h // row spans the full width
	if horizontal {
		thickness := rowSum / free.w
		x := free.x
		for _, idx := range row {
			w := areas[idx] / thickness
			*tiles = append(*tiles, makeTile(items[idx], x, free.y, w, thickness))
			x += w
		}
		return rect{x: free.x, y: free.y + thickness, w: free.w, h: free.h - thickness}
	}
	thickness := rowSum / free.h
	y := free.y
	for _, idx := range row {
		h := areas[idx] / thickness
		*tiles = append(*tiles, makeTile(items[idx], free.x, y, thickness, h))
		y += h
	}
	return rect{x: free.x + thickness, y: free.y, w: free.w - thickness, h: free.h}
}

func makeTile(in TileInput, x, y, w, h float64) Tile {
	color := in.Color
	if color == "" {
		color = ColorForLabel(in.Label)
	}
	return Tile{
		ID:    in.ID,
		Label: in.Label,
		Value: in.Value,
		Color: color,
		X:     x,
		Y:     y,
		W:     w,
		H:     h,
	}
}
