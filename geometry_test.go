package viewcam

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func unitBox() Box3 {
	return Box3{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
}

func TestVisibleCornersInsideReturnsNil(t *testing.T) {
	if corners := visibleCorners(mgl32.Vec3{0, 0, 0}, unitBox()); corners != nil {
		t.Fatalf("expected nil corners for eye inside box, got %v", corners)
	}
}

func TestVisibleCornersFaceView(t *testing.T) {
	corners := visibleCorners(mgl32.Vec3{0, 0, 5}, unitBox())
	if len(corners) != 4 {
		t.Fatalf("expected 4-vertex face silhouette, got %d vertices", len(corners))
	}
	for _, c := range corners {
		if c.Z() != 1 {
			t.Errorf("expected all silhouette corners on z=1 face, got %v", c)
		}
	}
}

func TestVisibleCornersCornerView(t *testing.T) {
	corners := visibleCorners(mgl32.Vec3{5, 5, 5}, unitBox())
	if len(corners) != 6 {
		t.Fatalf("expected 6-vertex corner silhouette, got %d vertices", len(corners))
	}
}

func TestShoelaceAreaSquare(t *testing.T) {
	square := []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	if got := shoelaceArea(square); got != 1 {
		t.Errorf("got area %f, want 1", got)
	}
}

func TestClipSutherlandHodgmanFullyInside(t *testing.T) {
	square := []mgl32.Vec2{{0.25, 0.25}, {0.75, 0.25}, {0.75, 0.75}, {0.25, 0.75}}
	clipped := clipSutherlandHodgman(square, FullViewport)
	if got := shoelaceArea(clipped); got != 0.25 {
		t.Errorf("got clipped area %f, want 0.25", got)
	}
}

func TestClipSutherlandHodgmanPartialOverlap(t *testing.T) {
	square := []mgl32.Vec2{{-0.5, -0.5}, {0.5, -0.5}, {0.5, 0.5}, {-0.5, 0.5}}
	clipped := clipSutherlandHodgman(square, FullViewport)
	if got := shoelaceArea(clipped); got != 0.25 {
		t.Errorf("got clipped area %f, want 0.25 (quarter inside viewport)", got)
	}
}

func TestClipSutherlandHodgmanNoOverlapReturnsEmpty(t *testing.T) {
	square := []mgl32.Vec2{{2, 2}, {3, 2}, {3, 3}, {2, 3}}
	clipped := clipSutherlandHodgman(square, FullViewport)
	if len(clipped) != 0 {
		t.Errorf("expected no vertices for disjoint polygon, got %d", len(clipped))
	}
}

func TestScreenAABB(t *testing.T) {
	poly := []mgl32.Vec2{{0.1, 0.2}, {0.9, 0.3}, {0.5, 0.8}}
	r := screenAABB(poly)
	if r.Min.X() != 0.1 || r.Min.Y() != 0.2 || r.Max.X() != 0.9 || r.Max.Y() != 0.8 {
		t.Errorf("unexpected screen AABB: %+v", r)
	}
}
