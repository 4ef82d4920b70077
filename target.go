package viewcam

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// VisibilityMethod selects how a target's visibility sample points are
// precomputed in UpdateBounds.
type VisibilityMethod int

const (
	VisibilityRandom VisibilityMethod = iota
	VisibilityUniformInBB
	VisibilityOnMesh
)

// Axis names a local-frame axis, used by orientation properties.
type Axis int

const (
	AxisRight Axis = iota
	AxisUp
	AxisForward
	AxisWorldUp
)

const maxVisibilityPoints = 8

// Target is a named scene object referenced by one or more properties. Its
// AABB, bounding-sphere radius, and visibility points are refreshed by
// UpdateBounds whenever the scene moves; per-evaluation scratch (rendered
// flag, projected polygon, screen area...) is NOT stored here — it lives in
// the parallel TargetScratch slice a CameraMan owns, indexed by the
// target's position in CameraMan.Targets, so a Target value itself stays safe to share across evaluations.
type Target struct {
	Name string

	// SizeSources are the renderables/colliders whose combined AABB defines
	// this target's bounds and projected silhouette.
	SizeSources []ObjectID
	// Occluders are the colliders considered "this target's own geometry"
	// for self-occlusion suppression; occlusion rays ignore these.
	Occluders []ObjectID

	NRays            int
	VisibilityMethod VisibilityMethod
	LayersToExclude  uint32

	// derived, refreshed by UpdateBounds
	AABB             Box3
	Radius           float32
	VisibilityPoints []mgl32.Vec3

	// PropertyIndices back-references the properties (by arena index) that
	// reference this target, used only by smart sampling.
	PropertyIndices []int
}

// NewTarget constructs a Target with sane defaults (8 visibility points,
// random method) that the caller can override before the first
// UpdateBounds.
func NewTarget(name string, sizeSources, occluders []ObjectID) *Target {
	return &Target{
		Name:             name,
		SizeSources:      append([]ObjectID(nil), sizeSources...),
		Occluders:        append([]ObjectID(nil), occluders...),
		NRays:            maxVisibilityPoints,
		VisibilityMethod: VisibilityRandom,
	}
}

// UpdateBounds recomputes AABB, Radius, and VisibilityPoints from the scene
// oracle. Call whenever the underlying scene objects move.
func (t *Target) UpdateBounds(oracle SceneOracle, rng *rand.Rand) {
	t.AABB = unionAABBs(oracle, t.SizeSources)
	t.Radius = t.AABB.Radius()

	n := t.NRays
	if n <= 0 || n > maxVisibilityPoints {
		n = maxVisibilityPoints
	}

	switch t.VisibilityMethod {
	case VisibilityOnMesh:
		t.VisibilityPoints = t.onMeshPoints(oracle, n)
	case VisibilityUniformInBB:
		t.VisibilityPoints = t.uniformInBBPoints(n)
	default:
		t.VisibilityPoints = t.randomPoints(oracle, rng, n)
	}
}

func unionAABBs(oracle SceneOracle, ids []ObjectID) Box3 {
	if len(ids) == 0 {
		return Box3{}
	}
	box := oracle.WorldAABB(ids[0])
	for _, id := range ids[1:] {
		b := oracle.WorldAABB(id)
		box.Min = componentMin(box.Min, b.Min)
		box.Max = componentMax(box.Max, b.Max)
	}
	return box
}

func componentMin(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{min32(a.X(), b.X()), min32(a.Y(), b.Y()), min32(a.Z(), b.Z())}
}
func componentMax(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{max32(a.X(), b.X()), max32(a.Y(), b.Y()), max32(a.Z(), b.Z())}
}
func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// randomPoints: the centers of the first min(len(Occluders), n) colliders
// are seeded first, one per collider; the remainder is uniform-random in
// the AABB.
func (t *Target) randomPoints(oracle SceneOracle, rng *rand.Rand, n int) []mgl32.Vec3 {
	pts := make([]mgl32.Vec3, 0, n)
	seedCount := len(t.Occluders)
	if seedCount > n {
		seedCount = n
	}
	for i := 0; i < seedCount; i++ {
		b := oracle.WorldAABB(t.Occluders[i])
		pts = append(pts, b.Center())
	}
	for len(pts) < n {
		pts = append(pts, oracle.RandomPointInBox(t.AABB, rng))
	}
	return pts
}

// uniformInBBPoints places a fixed pattern: the centroid, then symmetric
// placements offset along the longest/second-longest/shortest extent at
// 25%/75% positions, in that order, truncated to n. The pattern has 7
// points, so at most 7 are returned: for n=8 (the most the caller passes,
// since it clamps n to maxVisibilityPoints) the result has 7 points, not 8.
func (t *Target) uniformInBBPoints(n int) []mgl32.Vec3 {
	c := t.AABB.Center()
	he := t.AABB.HalfExtents()
	// axes sorted by extent, descending
	type axisExtent struct {
		axis int
		ext  float32
	}
	axes := []axisExtent{{0, he.X()}, {1, he.Y()}, {2, he.Z()}}
	for i := 1; i < len(axes); i++ {
		for j := i; j > 0 && axes[j].ext > axes[j-1].ext; j-- {
			axes[j], axes[j-1] = axes[j-1], axes[j]
		}
	}
	offsetAlong := func(axisIdx int, frac float32) mgl32.Vec3 {
		p := c
		extent := he
		var e float32
		switch axisIdx {
		case 0:
			e = extent.X()
		case 1:
			e = extent.Y()
		case 2:
			e = extent.Z()
		}
		d := (frac*2 - 1) * e // frac=0.25 -> -0.5e, frac=0.75 -> +0.5e
		p[axisIdx] += d
		return p
	}

	pts := []mgl32.Vec3{c}
	fracs := []float32{0.25, 0.75}
	for _, ax := range axes {
		for _, f := range fracs {
			if len(pts) >= n {
				return pts[:n]
			}
			pts = append(pts, offsetAlong(ax.axis, f))
		}
	}
	if len(pts) > n {
		pts = pts[:n]
	}
	return pts
}

// onMeshPoints generates a Fibonacci-lattice sphere around the bounding
// sphere, raycasts each lattice point toward the AABB center, and keeps the
// hits that land on the target's own colliders.
func (t *Target) onMeshPoints(oracle SceneOracle, n int) []mgl32.Vec3 {
	center := t.AABB.Center()
	radius := t.Radius
	if radius <= 0 {
		radius = 0.01
	}
	lattice := fibonacciSphere(n * 3)
	ownSet := make(map[ObjectID]bool, len(t.Occluders)+len(t.SizeSources))
	for _, id := range t.Occluders {
		ownSet[id] = true
	}
	for _, id := range t.SizeSources {
		ownSet[id] = true
	}

	pts := make([]mgl32.Vec3, 0, n)
	for _, dir := range lattice {
		if len(pts) >= n {
			break
		}
		origin := center.Add(dir.Mul(radius * 1.5))
		hitID, hit := oracle.Linecast(origin, center, ^uint32(0))
		if !hit || !ownSet[hitID] {
			continue
		}
		// Approximate hit point: oracle only returns the object id, so we
		// take the midpoint between the lattice origin and the center as
		// the surface sample (consistent with the precompute-once, approximate nature
		// of visibility points).
		pts = append(pts, origin.Add(center.Sub(origin).Mul(0.5)))
	}
	if len(pts) == 0 {
		return t.randomPoints(oracle, rand.New(rand.NewSource(1)), n)
	}
	for len(pts) < n {
		pts = append(pts, pts[len(pts)%len(pts)])
	}
	return pts
}

// fibonacciSphere returns n unit directions approximately evenly spread
// over the sphere via the golden-angle spiral construction.
func fibonacciSphere(n int) []mgl32.Vec3 {
	if n <= 0 {
		return nil
	}
	out := make([]mgl32.Vec3, n)
	goldenAngle := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		y := 1 - (float64(i)/float64(n-1+boolToInt(n == 1)))*2
		r := math.Sqrt(max(0, 1-y*y))
		theta := goldenAngle * float64(i)
		x := math.Cos(theta) * r
		z := math.Sin(theta) * r
		out[i] = mgl32.Vec3{float32(x), float32(y), float32(z)}
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// PickVisibilityRays returns n rays (possibly with replacement if n exceeds
// the precomputed set), used per-evaluation by occlusion properties.
func (t *Target) PickVisibilityRays(n int, rng *rand.Rand) []mgl32.Vec3 {
	if len(t.VisibilityPoints) == 0 {
		return nil
	}
	if n <= 0 {
		n = len(t.VisibilityPoints)
	}
	if n <= len(t.VisibilityPoints) {
		return t.VisibilityPoints[:n]
	}
	out := make([]mgl32.Vec3, n)
	copy(out, t.VisibilityPoints)
	for i := len(t.VisibilityPoints); i < n; i++ {
		out[i] = t.VisibilityPoints[rng.Intn(len(t.VisibilityPoints))]
	}
	return out
}

// AngleWithAxis returns the angle in degrees, [0,180], between v and one of
// the target's local-frame axes.
func AngleWithAxis(oracle SceneOracle, id ObjectID, axis Axis, v mgl32.Vec3) float32 {
	right, up, forward, worldUp := oracle.LocalAxes(id)
	var ref mgl32.Vec3
	switch axis {
	case AxisRight:
		ref = right
	case AxisUp:
		ref = up
	case AxisForward:
		ref = forward
	default:
		ref = worldUp
	}
	if v.Len() < 1e-8 || ref.Len() < 1e-8 {
		return 0
	}
	cosA := clampf(v.Normalize().Dot(ref.Normalize()), -1, 1)
	return mgl32.RadToDeg(float32(math.Acos(float64(cosA))))
}

// DistanceFromSize computes the analytic camera distance that would make
// the target's bounding sphere occupy the desired on-screen size s (in the
// units of mode) under vertical field of view alphaDeg.
func DistanceFromSize(radius float32, s float32, mode SizeMode, aspect float32, alphaDeg float32) float32 {
	if radius <= 0 {
		radius = 1e-3
	}
	var halfHeight float32
	switch mode {
	case SizeModeWidth:
		halfHeight = s * aspect / 2
	case SizeModeArea:
		if s < 0 {
			s = 0
		}
		halfHeight = float32(math.Sqrt(float64(s*aspect) / math.Pi))
	default: // SizeModeHeight
		halfHeight = s / 2
	}
	if halfHeight <= 1e-6 {
		halfHeight = 1e-6
	}
	projectedRadius := halfHeight
	halfWorld := radius * 0.5 / projectedRadius
	alpha := mgl32.DegToRad(alphaDeg)
	t := float32(math.Tan(float64(alpha) / 2))
	if t <= 1e-6 {
		t = 1e-6
	}
	return halfWorld / t
}
