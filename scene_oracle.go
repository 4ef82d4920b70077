package viewcam

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is the physical pose a CameraMan binds a parameter vector to.
type Camera struct {
	Position mgl32.Vec3
	LookAt   mgl32.Vec3
	Up       mgl32.Vec3
	Roll     float32 // degrees, about the forward axis
	Fov      float32 // vertical field of view, degrees
	ClipRect Rect2   // viewport clip rectangle, default FullViewport
}

// Forward returns the normalized look direction, falling back to -Z if the
// look-at point coincides with the camera position.
func (c Camera) Forward() mgl32.Vec3 {
	f := c.LookAt.Sub(c.Position)
	if f.Len() < 1e-8 {
		return mgl32.Vec3{0, 0, -1}
	}
	return f.Normalize()
}

// Orientation returns the camera's full orientation as a quaternion: the
// rotation that takes -Z to Forward(), then rolled about that forward axis
// by Roll. Unlike comparing forward vectors alone, this distinguishes two
// cameras that look the same direction but are rolled differently.
func (c Camera) Orientation() mgl32.Quat {
	align := quatBetween(mgl32.Vec3{0, 0, -1}, c.Forward())
	if c.Roll == 0 {
		return align
	}
	roll := mgl32.QuatRotate(mgl32.DegToRad(c.Roll), c.Forward())
	return roll.Mul(align)
}

// quatBetween returns the shortest-arc rotation taking from to to (both
// assumed non-degenerate; a near-antipodal pair picks an arbitrary
// orthogonal axis since the arc is otherwise undefined).
func quatBetween(from, to mgl32.Vec3) mgl32.Quat {
	from, to = from.Normalize(), to.Normalize()
	d := clampf(from.Dot(to), -1, 1)
	if d > 1-1e-6 {
		return mgl32.QuatIdent()
	}
	if d < -1+1e-6 {
		axis := from.Cross(mgl32.Vec3{0, 1, 0})
		if axis.Len() < 1e-6 {
			axis = from.Cross(mgl32.Vec3{1, 0, 0})
		}
		return mgl32.QuatRotate(math.Pi, axis.Normalize())
	}
	axis := from.Cross(to).Normalize()
	angle := float32(math.Acos(float64(d)))
	return mgl32.QuatRotate(angle, axis)
}

// ComputeUp derives the camera's up vector from its forward direction and
// roll: a world-up-derived basis, rotated about the forward axis by Roll.
// Mirrors the teacher's flying-camera forward/right/up construction.
func (c Camera) ComputeUp() mgl32.Vec3 {
	forward := c.Forward()
	worldUp := mgl32.Vec3{0, 1, 0}
	right := forward.Cross(worldUp)
	if right.Len() < 1e-6 {
		right = mgl32.Vec3{1, 0, 0}
	}
	right = right.Normalize()
	up := right.Cross(forward).Normalize()
	if c.Roll == 0 {
		return up
	}
	q := mgl32.QuatRotate(mgl32.DegToRad(c.Roll), forward)
	return q.Rotate(up).Normalize()
}

// SceneOracle is the host 3D engine's read interface, consumed by the core
// evaluator/optimizer. Implementations are expected to be fast and
// allocation-light since Evaluate is called millions of times by the solver.
type SceneOracle interface {
	// WorldAABB returns the world-space bounding box of a renderable or
	// collider.
	WorldAABB(id ObjectID) Box3

	// Project maps a world point to viewport coordinates under the given
	// camera. X and Y are in [0,1] when the point lands on screen; Z holds
	// the view-space depth and is negative when the point is behind the
	// camera (mirrors the teacher's clip.W() < near-plane check).
	Project(camera Camera, worldPoint mgl32.Vec3) mgl32.Vec3

	// Linecast casts a ray from a to b, restricted to layerMask, and
	// returns the first collider hit (if any).
	Linecast(a, b mgl32.Vec3, layerMask uint32) (ObjectID, bool)

	// SphereOverlap reports whether a sphere at center overlaps any
	// collider in layerMask.
	SphereOverlap(center mgl32.Vec3, radius float32, layerMask uint32) bool

	// SetObjectLayer and GetObjectLayer support the scoped layer-mask
	// mutation used to suppress self-occlusion during occlusion casts.
	SetObjectLayer(id ObjectID, layer uint32)
	GetObjectLayer(id ObjectID) uint32

	// LocalAxes returns an object's stable local coordinate frame.
	LocalAxes(id ObjectID) (right, up, forward, worldUp mgl32.Vec3)

	// TransformPoint maps a point from an object's local space to world
	// space using its current transform.
	TransformPoint(id ObjectID, local mgl32.Vec3) mgl32.Vec3

	// RandomPointInBox returns a uniformly-distributed random point inside
	// box, using rng for determinism when the caller supplies a seeded one.
	RandomPointInBox(box Box3, rng *rand.Rand) mgl32.Vec3
}

// withLayerMasked scopes a self-occlusion-suppressing layer change: every
// id in ids is moved to ignoreLayer for the duration of fn, and restored to
// its original layer on every exit path (including panics), per the
// scoped-guard design note.
func withLayerMasked(oracle SceneOracle, ids []ObjectID, ignoreLayer uint32, fn func()) {
	prev := make([]uint32, len(ids))
	for i, id := range ids {
		prev[i] = oracle.GetObjectLayer(id)
		oracle.SetObjectLayer(id, ignoreLayer)
	}
	defer func() {
		for i, id := range ids {
			oracle.SetObjectLayer(id, prev[i])
		}
	}()
	fn()
}
