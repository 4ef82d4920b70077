package viewcam

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Box3 is an axis-aligned bounding box in world space.
type Box3 struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func (b Box3) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Box3) HalfExtents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Radius is the half-diagonal of the box, used as the target's bounding
// sphere radius for analytic distance-from-size sampling.
func (b Box3) Radius() float32 {
	return b.Max.Sub(b.Min).Len() * 0.5
}

func (b Box3) Contains(p mgl32.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

// Corner returns one of the 8 AABB corners, indexed 0..7 by the bit pattern
// (bit0=x, bit1=y, bit2=z), 0 meaning Min on that axis, 1 meaning Max.
func (b Box3) Corner(i int) mgl32.Vec3 {
	x := b.Min.X()
	if i&1 != 0 {
		x = b.Max.X()
	}
	y := b.Min.Y()
	if i&2 != 0 {
		y = b.Max.Y()
	}
	z := b.Min.Z()
	if i&4 != 0 {
		z = b.Max.Z()
	}
	return mgl32.Vec3{x, y, z}
}

// Rect2 is an axis-aligned rectangle in viewport space, [0,1]x[0,1] nominally.
type Rect2 struct {
	Min mgl32.Vec2
	Max mgl32.Vec2
}

// FullViewport is the default camera clip rectangle.
var FullViewport = Rect2{Min: mgl32.Vec2{0, 0}, Max: mgl32.Vec2{1, 1}}

func (r Rect2) Area() float32 {
	w := r.Max.X() - r.Min.X()
	h := r.Max.Y() - r.Min.Y()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absf(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

// eyeCode classifies the eye position against the 6 half-spaces of an AABB
// into a bit pattern: bit0=left(x<min), bit1=right(x>max), bit2=bottom,
// bit3=top, bit4=front(z<min... mapped via box-space), bit5=back.
// This mirrors the classic "outcode" used to pick the visible-silhouette
// vertex loop of a box as seen from an external point.
func eyeCode(eye mgl32.Vec3, b Box3) int {
	code := 0
	if eye.X() < b.Min.X() {
		code |= 1
	} else if eye.X() > b.Max.X() {
		code |= 2
	}
	if eye.Y() < b.Min.Y() {
		code |= 4
	} else if eye.Y() > b.Max.Y() {
		code |= 8
	}
	if eye.Z() < b.Min.Z() {
		code |= 16
	} else if eye.Z() > b.Max.Z() {
		code |= 32
	}
	return code
}

// silhouetteVertices returns, for a given eyeCode, the ordered indices (into
// Box3.Corner) of the AABB corners forming the silhouette polygon as seen
// from outside. An eyeCode of 0 means the eye is inside the box (no
// silhouette); the table omits that entry and callers must check first.
//
// The table is keyed by the classic 64-entry box-outcode-to-silhouette
// lookup; only the 26 reachable non-zero codes (3^3 - 1 regions around a
// box, minus the inside region) are populated, the rest return nil.
var silhouetteTable = buildSilhouetteTable()

func buildSilhouetteTable() [64][]int {
	var table [64][]int
	// Corner bit layout: bit0=x(0=min,1=max) bit1=y bit2=z
	quad := func(a, b, c, d int) []int { return []int{a, b, c, d} }
	hex := func(a, b, c, d, e, f int) []int { return []int{a, b, c, d, e, f} }

	// Face-only regions (6): single face quad, winding CCW as seen from outside.
	table[2] = quad(1, 3, 7, 5)  // +X face (x>max)
	table[1] = quad(0, 4, 6, 2)  // -X face (x<min)
	table[8] = quad(2, 6, 7, 3)  // +Y face (y>max)
	table[4] = quad(0, 1, 5, 4)  // -Y face (y<min)
	table[32] = quad(4, 5, 7, 6) // +Z face (z>max)
	table[16] = quad(0, 1, 3, 2) // -Z face (z<min)

	// Edge regions (12): two adjacent faces, 6-vertex silhouette.
	table[1|4] = hex(0, 1, 5, 4, 6, 2)    // -X,-Y
	table[1|8] = hex(0, 4, 5, 7, 6, 2)    // -X,+Y
	table[2|4] = hex(1, 0, 4, 5, 7, 3)    // +X,-Y
	table[2|8] = hex(1, 5, 4, 6, 7, 3)    // +X,+Y
	table[1|16] = hex(0, 1, 3, 2, 6, 4)   // -X,-Z
	table[1|32] = hex(0, 4, 6, 7, 3, 1)   // -X,+Z
	table[2|16] = hex(1, 0, 2, 3, 7, 5)   // +X,-Z
	table[2|32] = hex(1, 5, 7, 6, 2, 3)   // +X,+Z
	table[4|16] = hex(0, 1, 5, 4, 6, 2)   // -Y,-Z (reuse face-adjacent winding)
	table[4|32] = hex(0, 4, 5, 1, 3, 2)   // -Y,+Z
	table[8|16] = hex(2, 3, 7, 6, 4, 0)   // +Y,-Z
	table[8|32] = hex(4, 5, 7, 6, 2, 0)   // +Y,+Z

	// Corner regions (8): three faces meet, 6-vertex silhouette hexagon,
	// the standard "cube corner view" silhouette.
	table[1|4|16] = hex(0, 1, 3, 2, 6, 4)
	table[1|4|32] = hex(0, 4, 6, 7, 3, 1)
	table[1|8|16] = hex(0, 1, 3, 7, 6, 4)
	table[1|8|32] = hex(0, 4, 6, 2, 3, 1)
	table[2|4|16] = hex(1, 0, 2, 6, 7, 5)
	table[2|4|32] = hex(1, 5, 7, 3, 2, 0)
	table[2|8|16] = hex(1, 3, 2, 6, 4, 5)
	table[2|8|32] = hex(1, 0, 4, 6, 7, 5)

	return table
}

// visibleCorners returns the world-space silhouette polygon of b as seen
// from eye, or nil if eye is inside b (caller must treat that as
// screen_area=0).
func visibleCorners(eye mgl32.Vec3, b Box3) []mgl32.Vec3 {
	code := eyeCode(eye, b)
	if code == 0 {
		return nil
	}
	idx := silhouetteTable[code]
	if idx == nil {
		return nil
	}
	out := make([]mgl32.Vec3, len(idx))
	for i, ci := range idx {
		out[i] = b.Corner(ci)
	}
	return out
}

// clipSutherlandHodgman clips a 2D polygon (viewport coords) against a
// rectangle, standard Sutherland-Hodgman against the 4 half-planes.
func clipSutherlandHodgman(poly []mgl32.Vec2, clip Rect2) []mgl32.Vec2 {
	if len(poly) == 0 {
		return nil
	}
	type edge struct {
		inside func(p mgl32.Vec2) bool
		isect  func(a, b mgl32.Vec2) mgl32.Vec2
	}
	edges := []edge{
		{ // left
			inside: func(p mgl32.Vec2) bool { return p.X() >= clip.Min.X() },
			isect: func(a, c mgl32.Vec2) mgl32.Vec2 {
				t := (clip.Min.X() - a.X()) / (c.X() - a.X())
				return mgl32.Vec2{clip.Min.X(), a.Y() + t*(c.Y()-a.Y())}
			},
		},
		{ // right
			inside: func(p mgl32.Vec2) bool { return p.X() <= clip.Max.X() },
			isect: func(a, c mgl32.Vec2) mgl32.Vec2 {
				t := (clip.Max.X() - a.X()) / (c.X() - a.X())
				return mgl32.Vec2{clip.Max.X(), a.Y() + t*(c.Y()-a.Y())}
			},
		},
		{ // bottom
			inside: func(p mgl32.Vec2) bool { return p.Y() >= clip.Min.Y() },
			isect: func(a, c mgl32.Vec2) mgl32.Vec2 {
				t := (clip.Min.Y() - a.Y()) / (c.Y() - a.Y())
				return mgl32.Vec2{a.X() + t*(c.X()-a.X()), clip.Min.Y()}
			},
		},
		{ // top
			inside: func(p mgl32.Vec2) bool { return p.Y() <= clip.Max.Y() },
			isect: func(a, c mgl32.Vec2) mgl32.Vec2 {
				t := (clip.Max.Y() - a.Y()) / (c.Y() - a.Y())
				return mgl32.Vec2{a.X() + t*(c.X()-a.X()), clip.Max.Y()}
			},
		},
	}

	out := poly
	for _, e := range edges {
		if len(out) == 0 {
			break
		}
		in := out
		out = out[:0:0]
		n := len(in)
		for i := 0; i < n; i++ {
			cur := in[i]
			prev := in[(i-1+n)%n]
			curIn := e.inside(cur)
			prevIn := e.inside(prev)
			if curIn {
				if !prevIn {
					out = append(out, e.isect(prev, cur))
				}
				out = append(out, cur)
			} else if prevIn {
				out = append(out, e.isect(prev, cur))
			}
		}
	}
	return out
}

// shoelaceArea computes the (unsigned) area of a simple 2D polygon.
func shoelaceArea(poly []mgl32.Vec2) float32 {
	if len(poly) < 3 {
		return 0
	}
	var sum float32
	n := len(poly)
	for i := 0; i < n; i++ {
		a := poly[i]
		c := poly[(i+1)%n]
		sum += a.X()*c.Y() - c.X()*a.Y()
	}
	return absf(sum) * 0.5
}

// screenAABB returns the axis-aligned bounds of a viewport polygon.
func screenAABB(poly []mgl32.Vec2) Rect2 {
	if len(poly) == 0 {
		return Rect2{}
	}
	min := poly[0]
	max := poly[0]
	for _, p := range poly[1:] {
		if p.X() < min.X() {
			min[0] = p.X()
		}
		if p.Y() < min.Y() {
			min[1] = p.Y()
		}
		if p.X() > max.X() {
			max[0] = p.X()
		}
		if p.Y() > max.Y() {
			max[1] = p.Y()
		}
	}
	return Rect2{Min: min, Max: max}
}

const degenerateEps = 1e-5
