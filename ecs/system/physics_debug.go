package system

import (
	"image/color"
	"math/bits"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/damagebehaviors/common"
	"github.com/milk9111/damagebehaviors/ecs"
	"github.com/milk9111/damagebehaviors/hitreg"
	"github.com/milk9111/damagebehaviors/physics"
	"golang.org/x/image/colornames"
)

const debugDotSize = 4

// DebugView maps world coordinates to the screen.
type DebugView struct {
	X, Y float64
	Zoom float64
}

// DrawHitDebug draws hurt shapes, every detector capsule and the recorded
// sweeps. Nothing is drawn unless the debug sink has HitBoxes set.
func DrawHitDebug(w *ecs.World, screen *ebiten.Image, view DebugView) {
	if w == nil || screen == nil {
		return
	}
	env, ok := hitreg.EnvOf(w)
	if !ok || env.Debug == nil || !env.Debug.HitBoxes {
		return
	}
	if view.Zoom <= 0 {
		view.Zoom = 1
	}
	drawer := &hitDebugDrawer{screen: screen, view: view}

	if pw, ok := physics.Of(w); ok {
		cp.DrawSpace(pw.Space(), drawer)
	}

	ecs.ForEach(w, hitreg.DetectorsComponent.Kind(), func(_ ecs.Entity, set *hitreg.Detectors) {
		for _, d := range set.All() {
			c, ok := d.Capsule()
			if !ok {
				continue
			}
			clr := colornames.Slategray
			if d.Enabled() {
				clr = colornames.Gold
			}
			drawer.drawCapsule(c, clr)
		}
	})

	for _, r := range env.Debug.Records() {
		clr := colornames.Deepskyblue
		if len(r.Hits) > 0 {
			clr = colornames.Orangered
		}
		drawer.drawCapsule(r.From, clr)
		if !r.Overlap {
			drawer.drawCapsule(r.To, clr)
			drawer.drawLine(r.From.Center, r.To.Center, toFColor(clr))
		}
		for _, h := range r.Hits {
			drawer.DrawDot(debugDotSize*2, h.ImpactPoint, toFColor(colornames.Red), nil)
			drawer.drawLine(h.ImpactPoint, h.ImpactPoint.Add(h.ImpactNormal.Mult(12)), toFColor(colornames.White))
		}
	}
}

// hitDebugDrawer implements cp.Drawer for the hurt shape space and draws
// detector capsules on the same screen.
type hitDebugDrawer struct {
	screen *ebiten.Image
	view   DebugView
}

// hurtPalette colors hurt shapes by their lowest channel bit.
var hurtPalette = []color.RGBA{
	colornames.Limegreen,
	colornames.Mediumpurple,
	colornames.Turquoise,
	colornames.Hotpink,
}

func (d *hitDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawCircle(pos, radius, fill)
	if radius > 0 {
		d.drawLine(pos, pos.Add(cp.ForAngle(angle).Mult(radius)), outline)
	}
}

func (d *hitDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *hitDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		d.drawLine(a, b, fill)
		return
	}
	d.drawCapsuleSides(a, b, radius, fill)
}

func (d *hitDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count > len(verts) {
		count = len(verts)
	}
	for i := 0; i < count; i++ {
		d.drawLine(verts[i], verts[(i+1)%count], fill)
	}
}

func (d *hitDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	x, y := d.toScreen(pos)
	vector.DrawFilledCircle(d.screen, float32(x), float32(y), float32(size*d.view.Zoom/2), toNRGBA(fill), true)
}

func (d *hitDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *hitDebugDrawer) OutlineColor() cp.FColor {
	return toFColor(colornames.Limegreen)
}

func (d *hitDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	cats := shape.Filter.Categories
	if cats == 0 || cats == cp.ALL_CATEGORIES {
		return toFColor(hurtPalette[0])
	}
	return toFColor(hurtPalette[bits.TrailingZeros(cats)%len(hurtPalette)])
}

func (d *hitDebugDrawer) ConstraintColor() cp.FColor {
	return toFColor(colornames.Darkorange)
}

func (d *hitDebugDrawer) CollisionPointColor() cp.FColor {
	return toFColor(colornames.Red)
}

func (d *hitDebugDrawer) Data() interface{} {
	return nil
}

// drawCapsule outlines both caps and the two flat sides.
func (d *hitDebugDrawer) drawCapsule(c physics.Capsule, clr color.RGBA) {
	a, b := c.Segment()
	d.drawCapsuleSides(a, b, c.Radius, toFColor(clr))
}

func (d *hitDebugDrawer) drawCapsuleSides(a, b cp.Vector, radius float64, clr cp.FColor) {
	d.drawCircle(a, radius, clr)
	d.drawCircle(b, radius, clr)
	if a.Equal(b) {
		return
	}
	side := b.Sub(a).Normalize().Perp().Mult(radius)
	d.drawLine(a.Add(side), b.Add(side), clr)
	d.drawLine(a.Sub(side), b.Sub(side), clr)
}

func (d *hitDebugDrawer) drawLine(a, b cp.Vector, clr cp.FColor) {
	x1, y1 := d.toScreen(a)
	x2, y2 := d.toScreen(b)
	vector.StrokeLine(d.screen, float32(x1), float32(y1), float32(x2), float32(y2), 1, toNRGBA(clr), true)
}

func (d *hitDebugDrawer) drawCircle(center cp.Vector, radius float64, clr cp.FColor) {
	if radius <= 0 {
		return
	}
	x, y := d.toScreen(center)
	vector.StrokeCircle(d.screen, float32(x), float32(y), float32(radius*d.view.Zoom), 1, toNRGBA(clr), true)
}

func (d *hitDebugDrawer) toScreen(v cp.Vector) (float64, float64) {
	return (v.X - d.view.X) * d.view.Zoom, (v.Y - d.view.Y) * d.view.Zoom
}

func toFColor(c color.RGBA) cp.FColor {
	return cp.FColor{R: float32(c.R) / 255, G: float32(c.G) / 255, B: float32(c.B) / 255, A: float32(c.A) / 255}
}

func toNRGBA(c cp.FColor) color.NRGBA {
	unit := func(v float32) uint8 { return uint8(common.Clamp(float64(v), 0, 1) * 255) }
	return color.NRGBA{R: unit(c.R), G: unit(c.G), B: unit(c.B), A: unit(c.A)}
}
