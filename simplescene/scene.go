// Package simplescene is a minimal in-memory SceneOracle implementation:
// axis-aligned box colliders with a position/rotation/layer, good enough to
// drive end-to-end solver tests and examples without pulling in a real
// rendering engine. Its AABB overlap and raycast logic follow the same
// slab/separating-axis style as a physics broadphase.
package simplescene

import (
	"math"
	"math/rand"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/viewcam"
)

// Object is a single box collider/renderable in the scene.
type Object struct {
	ID          viewcam.ObjectID
	Position    mgl32.Vec3
	Rotation    mgl32.Quat
	HalfExtents mgl32.Vec3
	Layer       uint32
}

// localCorner returns one of the 8 box corners in the object's local
// space, indexed like Box3.Corner (bit0=x, bit1=y, bit2=z).
func (o *Object) localCorner(i int) mgl32.Vec3 {
	x, y, z := -o.HalfExtents.X(), -o.HalfExtents.Y(), -o.HalfExtents.Z()
	if i&1 != 0 {
		x = o.HalfExtents.X()
	}
	if i&2 != 0 {
		y = o.HalfExtents.Y()
	}
	if i&4 != 0 {
		z = o.HalfExtents.Z()
	}
	return mgl32.Vec3{x, y, z}
}

func (o *Object) worldCorner(i int) mgl32.Vec3 {
	return o.Position.Add(o.Rotation.Rotate(o.localCorner(i)))
}

// Scene is a flat map of named Objects, implementing viewcam.SceneOracle.
type Scene struct {
	Objects map[viewcam.ObjectID]*Object
	Aspect  float32
	Near    float32
	Far     float32
}

func New(aspect float32) *Scene {
	return &Scene{
		Objects: make(map[viewcam.ObjectID]*Object),
		Aspect:  aspect,
		Near:    0.05,
		Far:     1000,
	}
}

func (s *Scene) Add(o *Object) {
	s.Objects[o.ID] = o
}

// WorldAABB returns the world-space axis-aligned bounds of o's (possibly
// rotated) box, computed as the min/max of its 8 transformed corners.
func (s *Scene) WorldAABB(id viewcam.ObjectID) viewcam.Box3 {
	o, ok := s.Objects[id]
	if !ok {
		return viewcam.Box3{}
	}
	min := o.worldCorner(0)
	max := min
	for i := 1; i < 8; i++ {
		c := o.worldCorner(i)
		min = componentMin(min, c)
		max = componentMax(max, c)
	}
	return viewcam.Box3{Min: min, Max: max}
}

// Project maps worldPoint to viewport space under camera, following the
// mathematical convention that Y increases upward (not the top-down pixel
// convention a renderer's framebuffer would use). Z holds view-space depth
// and is negative when worldPoint is behind the camera's near plane,
// mirroring a standard perspective-divide clip test.
func (s *Scene) Project(camera viewcam.Camera, worldPoint mgl32.Vec3) mgl32.Vec3 {
	view := mgl32.LookAtV(camera.Position, camera.LookAt, camera.ComputeUp())
	proj := mgl32.Perspective(mgl32.DegToRad(camera.Fov), s.Aspect, s.Near, s.Far)
	clip := proj.Mul4(view).Mul4x1(mgl32.Vec4{worldPoint.X(), worldPoint.Y(), worldPoint.Z(), 1})

	if clip.W() < s.Near {
		return mgl32.Vec3{0, 0, -1}
	}
	ndcX := clip.X() / clip.W()
	ndcY := clip.Y() / clip.W()
	depth := clip.W()
	return mgl32.Vec3{ndcX*0.5 + 0.5, ndcY*0.5 + 0.5, depth}
}

type hit struct {
	id viewcam.ObjectID
	t  float32
}

// Linecast casts from a to b, returning the nearest box collider in
// layerMask, if any, via the standard ray/AABB slab test against each
// object's (rotated) local space.
func (s *Scene) Linecast(a, b mgl32.Vec3, layerMask uint32) (viewcam.ObjectID, bool) {
	dir := b.Sub(a)
	length := dir.Len()
	if length < 1e-8 {
		return "", false
	}
	dir = dir.Mul(1 / length)

	var hits []hit
	for id, o := range s.Objects {
		if o.Layer&layerMask == 0 {
			continue
		}
		if t, ok := rayBoxIntersect(a, dir, length, o); ok {
			hits = append(hits, hit{id: id, t: t})
		}
	}
	if len(hits) == 0 {
		return "", false
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].t < hits[j].t })
	return hits[0].id, true
}

// rayBoxIntersect transforms the ray into o's local (unrotated) space and
// runs the slab method against the resulting AABB.
func rayBoxIntersect(origin, dir mgl32.Vec3, maxT float32, o *Object) (float32, bool) {
	inv := o.Rotation.Inverse()
	localOrigin := inv.Rotate(origin.Sub(o.Position))
	localDir := inv.Rotate(dir)

	tMin, tMax := float32(0), maxT
	for axis := 0; axis < 3; axis++ {
		d := localDir[axis]
		o0 := localOrigin[axis]
		lo, hi := -o.HalfExtents[axis], o.HalfExtents[axis]
		if absf(d) < 1e-9 {
			if o0 < lo || o0 > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o0) / d
		t2 := (hi - o0) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// SphereOverlap reports whether a sphere at center overlaps any box
// collider in layerMask, via closest-point-on-AABB distance.
func (s *Scene) SphereOverlap(center mgl32.Vec3, radius float32, layerMask uint32) bool {
	for _, o := range s.Objects {
		if o.Layer&layerMask == 0 {
			continue
		}
		inv := o.Rotation.Inverse()
		local := inv.Rotate(center.Sub(o.Position))
		closest := mgl32.Vec3{
			clampf(local.X(), -o.HalfExtents.X(), o.HalfExtents.X()),
			clampf(local.Y(), -o.HalfExtents.Y(), o.HalfExtents.Y()),
			clampf(local.Z(), -o.HalfExtents.Z(), o.HalfExtents.Z()),
		}
		if local.Sub(closest).Len() <= radius {
			return true
		}
	}
	return false
}

func (s *Scene) SetObjectLayer(id viewcam.ObjectID, layer uint32) {
	if o, ok := s.Objects[id]; ok {
		o.Layer = layer
	}
}

func (s *Scene) GetObjectLayer(id viewcam.ObjectID) uint32 {
	if o, ok := s.Objects[id]; ok {
		return o.Layer
	}
	return 0
}

// LocalAxes returns o's right/up/forward basis derived from its rotation,
// plus the fixed world-up reference.
func (s *Scene) LocalAxes(id viewcam.ObjectID) (right, up, forward, worldUp mgl32.Vec3) {
	o, ok := s.Objects[id]
	worldUp = mgl32.Vec3{0, 1, 0}
	if !ok {
		return mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, -1}, worldUp
	}
	right = o.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
	up = o.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
	forward = o.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
	return
}

func (s *Scene) TransformPoint(id viewcam.ObjectID, local mgl32.Vec3) mgl32.Vec3 {
	o, ok := s.Objects[id]
	if !ok {
		return local
	}
	return o.Position.Add(o.Rotation.Rotate(local))
}

func (s *Scene) RandomPointInBox(box viewcam.Box3, rng *rand.Rand) mgl32.Vec3 {
	return mgl32.Vec3{
		lerp(box.Min.X(), box.Max.X(), rng.Float32()),
		lerp(box.Min.Y(), box.Max.Y(), rng.Float32()),
		lerp(box.Min.Z(), box.Max.Z(), rng.Float32()),
	}
}

func lerp(lo, hi, t float32) float32 { return lo + t*(hi-lo) }

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

func componentMin(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{minf(a.X(), b.X()), minf(a.Y(), b.Y()), minf(a.Z(), b.Z())}
}
func componentMax(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{maxf(a.X(), b.X()), maxf(a.Y(), b.Y()), maxf(a.Z(), b.Z())}
}
func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
