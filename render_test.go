package viewcam

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRenderIsMemoized(t *testing.T) {
	oracle := &fakeOracle{boxes: map[ObjectID]Box3{}}
	target := newFakeTarget(oracle, "box", Box3{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}})
	camera := Camera{Position: mgl32.Vec3{0, 0, 10}, LookAt: mgl32.Vec3{0, 0, 0}, Fov: 60}

	var scratch TargetScratch
	Render(oracle, camera, target, &scratch)
	if !scratch.Rendered {
		t.Fatal("expected scratch to be marked rendered")
	}
	firstArea := scratch.ScreenArea

	// Mutate scratch directly and call Render again: since Rendered is
	// already true, it must be a no-op.
	scratch.ScreenArea = -1
	Render(oracle, camera, target, &scratch)
	if scratch.ScreenArea != -1 {
		t.Errorf("expected memoized Render to skip recomputation, area changed to %f (was %f)", scratch.ScreenArea, firstArea)
	}
}

func TestRenderEyeInsideAABBYieldsZeroArea(t *testing.T) {
	oracle := &fakeOracle{boxes: map[ObjectID]Box3{}}
	target := newFakeTarget(oracle, "box", Box3{Min: mgl32.Vec3{-5, -5, -5}, Max: mgl32.Vec3{5, 5, 5}})
	camera := Camera{Position: mgl32.Vec3{0, 0, 0}, LookAt: mgl32.Vec3{0, 0, -1}, Fov: 60}

	var scratch TargetScratch
	Render(oracle, camera, target, &scratch)
	if scratch.ScreenArea != 0 || scratch.InScreenRatio != 0 {
		t.Errorf("expected zero area/ratio with eye inside the box, got area=%f ratio=%f", scratch.ScreenArea, scratch.InScreenRatio)
	}
}

func TestFramingRatioDegenerateIsZero(t *testing.T) {
	scratch := &TargetScratch{ScreenArea: 0}
	if got := FramingRatio(scratch, FullViewport); got != 0 {
		t.Errorf("expected 0 for degenerate screen area, got %f", got)
	}
}

func TestFramingRatioFullyFramed(t *testing.T) {
	scratch := &TargetScratch{
		ScreenArea: 0.25,
		Polygon:    []mgl32.Vec2{{0.25, 0.25}, {0.75, 0.25}, {0.75, 0.75}, {0.25, 0.75}},
	}
	if got := FramingRatio(scratch, FullViewport); absf(got-1) > 1e-4 {
		t.Errorf("expected ratio ~1 when fully inside the frame, got %f", got)
	}
}

type noOcclusionOracle struct{ fakeOracle }

func (n *noOcclusionOracle) Linecast(a, b mgl32.Vec3, layerMask uint32) (ObjectID, bool) {
	return "", false
}

type alwaysOccludedOracle struct{ fakeOracle }

func (a *alwaysOccludedOracle) Linecast(from, to mgl32.Vec3, layerMask uint32) (ObjectID, bool) {
	return "wall", true
}

func TestComputeOcclusionNoHitsIsZero(t *testing.T) {
	oracle := &noOcclusionOracle{fakeOracle{boxes: map[ObjectID]Box3{}}}
	target := newFakeTarget(&oracle.fakeOracle, "box", Box3{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}})
	camera := Camera{Position: mgl32.Vec3{0, 0, 10}, LookAt: mgl32.Vec3{0, 0, 0}, Fov: 60}

	ratio := ComputeOcclusion(oracle, camera, target, 4, false, false, rand.New(rand.NewSource(1)), 0)
	if ratio != 0 {
		t.Errorf("expected 0 occlusion ratio, got %f", ratio)
	}
}

func TestComputeOcclusionAllBlockedIsOne(t *testing.T) {
	oracle := &alwaysOccludedOracle{fakeOracle{boxes: map[ObjectID]Box3{}}}
	target := newFakeTarget(&oracle.fakeOracle, "box", Box3{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}})
	camera := Camera{Position: mgl32.Vec3{0, 0, 10}, LookAt: mgl32.Vec3{0, 0, 0}, Fov: 60}

	ratio := ComputeOcclusion(oracle, camera, target, 4, false, false, rand.New(rand.NewSource(1)), 0)
	if ratio != 1 {
		t.Errorf("expected 1 occlusion ratio, got %f", ratio)
	}
}
