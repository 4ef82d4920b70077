package viewcam

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// TargetScratch holds the per-evaluation state Render/Occlusion/Framing
// mutate: kept out of Target itself (design note §9) so a Target value can
// be shared read-only across concurrent evaluations if a caller clones the
// scratch slice per goroutine.
type TargetScratch struct {
	Rendered      bool
	BehindCamera  bool
	Polygon       []mgl32.Vec2
	ScreenAABB    Rect2
	ScreenArea    float32
	InScreenRatio float32
}

func (s *TargetScratch) reset() {
	s.Rendered = false
	s.BehindCamera = false
	s.Polygon = s.Polygon[:0]
	s.ScreenAABB = Rect2{}
	s.ScreenArea = 0
	s.InScreenRatio = 0
}

// Render computes the visible silhouette of a target's AABB as seen from
// camera.Position, memoized into scratch. Subsequent calls for the same
// evaluation (scratch.Rendered already true) are a no-op, guaranteeing a
// target is projected at most once per camera evaluation even when several
// properties reference it.
func Render(oracle SceneOracle, camera Camera, t *Target, scratch *TargetScratch) {
	if scratch.Rendered {
		return
	}
	scratch.reset()
	scratch.Rendered = true

	corners := visibleCorners(camera.Position, t.AABB)
	if corners == nil {
		// eye inside the AABB
		scratch.ScreenArea = 0
		scratch.InScreenRatio = 0
		return
	}

	projected := make([]mgl32.Vec2, 0, len(corners))
	behind := false
	for _, c := range corners {
		p := oracle.Project(camera, c)
		if p.Z() < 0 {
			behind = true
			continue
		}
		projected = append(projected, mgl32.Vec2{p.X(), p.Y()})
	}
	scratch.BehindCamera = behind

	clip := camera.ClipRect
	if clip.Max.X() == 0 && clip.Max.Y() == 0 {
		clip = FullViewport
	}
	clipped := clipSutherlandHodgman(projected, clip)

	unclippedArea := shoelaceArea(projected)
	var clippedArea float32
	if len(clipped) >= 3 {
		clippedArea = shoelaceArea(clipped)
		if clippedArea > 1.0 {
			clippedArea = 1.0
		}
	}

	scratch.Polygon = clipped
	scratch.ScreenArea = clippedArea
	scratch.ScreenAABB = screenAABB(clipped)

	wasClipped := len(clipped) != len(projected)
	switch {
	case behind && !wasClipped:
		scratch.InScreenRatio = 0.5
	case unclippedArea <= degenerateEps:
		scratch.InScreenRatio = 0
	default:
		ratio := clippedArea / unclippedArea
		if wasClipped {
			if ratio > 1 {
				ratio = 0
			}
		} else if ratio > 1 {
			ratio = 1
		}
		scratch.InScreenRatio = ratio
	}
}

// FramingRatio returns the fraction of a target's already-clipped polygon
// that falls inside frame, or 0 if the target's on-screen area is
// negligible.
func FramingRatio(scratch *TargetScratch, frame Rect2) float32 {
	if scratch.ScreenArea < degenerateEps {
		return 0
	}
	clipped := clipSutherlandHodgman(scratch.Polygon, frame)
	if len(clipped) < 3 {
		return 0
	}
	area := shoelaceArea(clipped)
	return clampf(area/scratch.ScreenArea, 0, 1)
}

// ComputeOcclusion raycasts from camera.Position to nRays of the target's
// visibility points, counting a ray as occluded if any collider other than
// the target's own occluders blocks it. In double-sided mode, a reverse
// cast also counts if it is blocked. The target's own colliders are
// temporarily moved to an ignore layer for the duration of the casts
// (restored on every exit, including panics) to suppress self-hits cheaply
// without per-ray membership checks.
func ComputeOcclusion(oracle SceneOracle, camera Camera, t *Target, nRays int, doubleSided bool, randomRays bool, rng *rand.Rand, ignoreLayer uint32) float32 {
	if nRays <= 0 {
		nRays = len(t.VisibilityPoints)
	}
	if nRays == 0 {
		return 0
	}

	var rays []mgl32.Vec3
	if randomRays {
		rays = t.PickVisibilityRays(nRays, rng)
	} else {
		rays = t.VisibilityPoints
		if nRays < len(rays) {
			rays = rays[:nRays]
		}
	}
	if len(rays) == 0 {
		return 0
	}

	var occluded int
	withLayerMasked(oracle, t.Occluders, ignoreLayer, func() {
		for _, p := range rays {
			blocked := linecastBlocked(oracle, camera.Position, p, t.LayersToExclude)
			if !blocked && doubleSided {
				blocked = linecastBlocked(oracle, p, camera.Position, t.LayersToExclude)
			}
			if blocked {
				occluded++
			}
		}
	})

	ratio := float32(occluded) / float32(len(rays))
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

func linecastBlocked(oracle SceneOracle, a, b mgl32.Vec3, excludeMask uint32) bool {
	_, hit := oracle.Linecast(a, b, ^excludeMask)
	return hit
}
