package internal

import (
	"fmt"
	"math"
	"os"

	"github.com/fogleman/gg"
	imgcat "github.com/martinlindhe/imgcat/lib"
	"github.com/osuushi/delaunay/dbg"
	"golang.org/x/image/font/basicfont"
)

// Padding around the drawing so hull sites aren't clipped
const dbgDrawPadding = 40

// Render the triangulation: faces that are pending emission filled, edges
// stroked, and sites colored by their report state (yellow for reported, green
// for pending, white otherwise). Rendering does not consume the triangles.
func (t *Triangulation) Render(scale float64) *gg.Context {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range t.sites {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	if t.Size() == 0 {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}

	width := int(scale*(maxX-minX)) + dbgDrawPadding*2
	height := int(scale*(maxY-minY)) + dbgDrawPadding*2
	c := gg.NewContext(width, height)
	c.SetRGB(0, 0, 0)
	c.DrawRectangle(0, 0, float64(width), float64(height))
	c.Fill()

	// Flip so the origin is at the bottom left, then pad, scale and move to min
	c.Translate(0, float64(height))
	c.Scale(1, -1)
	c.Translate(dbgDrawPadding, dbgDrawPadding)
	c.Scale(scale, scale)
	c.Translate(-minX, -minY)

	emit := t.toReport.Difference(t.reported)
	for s := range emit.All() {
		for f := range t.facesAround(s) {
			c.MoveTo(t.sites[f[0]].X, t.sites[f[0]].Y)
			c.LineTo(t.sites[f[1]].X, t.sites[f[1]].Y)
			c.LineTo(t.sites[f[2]].X, t.sites[f[2]].Y)
			c.ClosePath()
		}
	}
	c.SetRGBA(0.3, 0.2, 1, 0.4)
	c.Fill()

	c.SetLineWidth(1.5)
	c.SetRGB(0, 1, 1)
	for a, b := range t.Edges() {
		c.MoveTo(t.sites[a].X, t.sites[a].Y)
		c.LineTo(t.sites[b].X, t.sites[b].Y)
	}
	c.Stroke()

	for i, p := range t.sites {
		switch {
		case t.reported.Contains(i):
			c.SetRGB(1, 1, 0)
		case t.toReport.Contains(i):
			c.SetRGB(0, 1, 0)
		default:
			c.SetRGB(1, 1, 1)
		}
		c.DrawCircle(p.X, p.Y, 3/scale)
		c.Fill()
	}

	// Text goes on in native coordinates
	c.Identity()
	c.SetFontFace(basicfont.Face7x13)
	c.SetRGB(1, 1, 1)
	c.DrawString(fmt.Sprintf("%s: %d sites, %d edges", dbg.Name(t), t.Size(), t.EdgeCount()), 4, 14)
	return c
}

func (t *Triangulation) DrawPNG(path string, scale float64) error {
	return t.Render(scale).SavePNG(path)
}

// Helper to draw and print a triangulation in the terminal (iTerm only) for
// debugging.
func (t *Triangulation) dbgDraw(scale float64) {
	t.DrawPNG("/tmp/triangulation.png", scale)
	imgcat.CatFile("/tmp/triangulation.png", os.Stdout)
}
