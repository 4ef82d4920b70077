package viewcam

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// fakeOracle is a minimal SceneOracle: axis-aligned boxes, a real
// perspective projection, and no occluders. Enough to drive property
// evaluation tests without pulling in a full scene implementation.
type fakeOracle struct {
	boxes map[ObjectID]Box3
}

func (f *fakeOracle) WorldAABB(id ObjectID) Box3 { return f.boxes[id] }

func (f *fakeOracle) Project(camera Camera, p mgl32.Vec3) mgl32.Vec3 {
	view := mgl32.LookAtV(camera.Position, camera.LookAt, camera.ComputeUp())
	proj := mgl32.Perspective(mgl32.DegToRad(camera.Fov), 1, 0.1, 1000)
	clip := proj.Mul4(view).Mul4x1(mgl32.Vec4{p.X(), p.Y(), p.Z(), 1})
	if clip.W() < 0.1 {
		return mgl32.Vec3{0, 0, -1}
	}
	return mgl32.Vec3{clip.X()/clip.W()*0.5 + 0.5, clip.Y()/clip.W()*0.5 + 0.5, clip.W()}
}

func (f *fakeOracle) Linecast(a, b mgl32.Vec3, layerMask uint32) (ObjectID, bool) { return "", false }
func (f *fakeOracle) SphereOverlap(center mgl32.Vec3, radius float32, layerMask uint32) bool {
	return false
}
func (f *fakeOracle) SetObjectLayer(id ObjectID, layer uint32) {}
func (f *fakeOracle) GetObjectLayer(id ObjectID) uint32        { return 0 }
func (f *fakeOracle) LocalAxes(id ObjectID) (right, up, forward, worldUp mgl32.Vec3) {
	return mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}
}
func (f *fakeOracle) TransformPoint(id ObjectID, local mgl32.Vec3) mgl32.Vec3 { return local }
func (f *fakeOracle) RandomPointInBox(box Box3, rng *rand.Rand) mgl32.Vec3 {
	return box.Center()
}

func newFakeTarget(oracle *fakeOracle, id ObjectID, box Box3) *Target {
	oracle.boxes[id] = box
	t := NewTarget(string(id), []ObjectID{id}, nil)
	t.UpdateBounds(oracle, rand.New(rand.NewSource(1)))
	return t
}

func TestEvaluateSizePropertyMatchesSpline(t *testing.T) {
	oracle := &fakeOracle{boxes: map[ObjectID]Box3{}}
	target := newFakeTarget(oracle, "cube", Box3{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}})

	spline, err := NewSatSpline([]float32{0, 1}, []float32{0, 1})
	if err != nil {
		t.Fatal(err)
	}
	sizeProp, err := NewSizeProperty([]int{0}, SizeModeArea, spline, 1)
	if err != nil {
		t.Fatal(err)
	}
	root, err := NewAggregation("root", []int{1}, []float32{1}, 1)
	if err != nil {
		t.Fatal(err)
	}
	ps := NewPropertySet([]Property{*root, *sizeProp})

	ctx := &EvalContext{
		Oracle:        oracle,
		Camera:        Camera{Position: mgl32.Vec3{0, 0, 10}, LookAt: mgl32.Vec3{0, 0, 0}, Fov: 60},
		Targets:       []*Target{target},
		TargetScratch: make([]TargetScratch, 1),
		Rng:           rand.New(rand.NewSource(1)),
	}

	got := ps.Evaluate(0, ctx, 0)
	if got < 0 || got > 1 {
		t.Fatalf("expected satisfaction in [0,1], got %f", got)
	}
}

func TestLazyAggregationPrunesUnneededChildren(t *testing.T) {
	oracle := &fakeOracle{boxes: map[ObjectID]Box3{}}
	small := newFakeTarget(oracle, "small", Box3{Min: mgl32.Vec3{-0.01, -0.01, -0.01}, Max: mgl32.Vec3{0.01, 0.01, 0.01}})
	big := newFakeTarget(oracle, "big", Box3{Min: mgl32.Vec3{-5, -5, -5}, Max: mgl32.Vec3{5, 5, 5}})

	lowSpline, err := NewSatSpline([]float32{0, 1}, []float32{0, 0.01})
	if err != nil {
		t.Fatal(err)
	}
	highSpline, err := NewSatSpline([]float32{0, 1}, []float32{1, 1})
	if err != nil {
		t.Fatal(err)
	}

	lowChild, err := NewSizeProperty([]int{0}, SizeModeArea, lowSpline, 1)
	if err != nil {
		t.Fatal(err)
	}
	highChild, err := NewSizeProperty([]int{1}, SizeModeArea, highSpline, 1)
	if err != nil {
		t.Fatal(err)
	}
	root, err := NewAggregation("root", []int{1, 2}, []float32{0.5, 0.5}, 1)
	if err != nil {
		t.Fatal(err)
	}
	ps := NewPropertySet([]Property{*root, *lowChild, *highChild})

	ctx := &EvalContext{
		Oracle:        oracle,
		Camera:        Camera{Position: mgl32.Vec3{0, 0, 10}, LookAt: mgl32.Vec3{0, 0, 0}, Fov: 60},
		Targets:       []*Target{small, big},
		TargetScratch: make([]TargetScratch, 2),
		Rng:           rand.New(rand.NewSource(1)),
	}

	// A lazy threshold above what the low child's contribution plus the
	// maximum possible remainder could reach should prune before ever
	// touching the second (expensive) child.
	ps.ResetScratch()
	got := ps.Evaluate(0, ctx, 0.9)
	if got != EvalPruned {
		t.Fatalf("expected EvalPruned, got %f", got)
	}
	if ps.scratch[2].Evaluated {
		t.Errorf("second child should not have been evaluated when pruned")
	}

	// threshold 0 never prunes: both children evaluate.
	ps.ResetScratch()
	got = ps.Evaluate(0, ctx, 0)
	if got == EvalPruned {
		t.Fatalf("did not expect a prune at threshold 0")
	}
	if !ps.scratch[2].Evaluated {
		t.Errorf("expected second child to be evaluated at threshold 0")
	}
}

func TestAggregationWeightsNormalize(t *testing.T) {
	agg, err := NewAggregation("root", []int{1, 2}, []float32{1, 3}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if agg.Weights[0] != 0.25 || agg.Weights[1] != 0.75 {
		t.Errorf("expected normalized weights [0.25, 0.75], got %v", agg.Weights)
	}
}

func TestNewAggregationRejectsInvalidWeights(t *testing.T) {
	if _, err := NewAggregation("root", nil, nil, 1); err != ErrNoChildren {
		t.Errorf("expected ErrNoChildren, got %v", err)
	}
	if _, err := NewAggregation("root", []int{1}, []float32{1, 2}, 1); err != ErrWeightsMismatch {
		t.Errorf("expected ErrWeightsMismatch, got %v", err)
	}
	if _, err := NewAggregation("root", []int{1}, []float32{0}, 1); err != ErrWeightsNonPositiv {
		t.Errorf("expected ErrWeightsNonPositiv, got %v", err)
	}
}

func TestEvalCameraOrientationPenalizesRollMismatch(t *testing.T) {
	spline, err := NewSatSpline([]float32{0, 90, 180}, []float32{1, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	prop, err := NewCameraOrientationProperty(mgl32.QuatIdent(), spline, 1)
	if err != nil {
		t.Fatal(err)
	}
	ps := NewPropertySet([]Property{*prop})
	oracle := &fakeOracle{boxes: map[ObjectID]Box3{}}

	straight := Camera{Position: mgl32.Vec3{0, 0, 5}, LookAt: mgl32.Vec3{0, 0, 0}, Roll: 0}
	ctx := &EvalContext{Oracle: oracle, Camera: straight}
	gotStraight := ps.Evaluate(0, ctx, 0)

	ps.ResetScratch()
	rolled := Camera{Position: mgl32.Vec3{0, 0, 5}, LookAt: mgl32.Vec3{0, 0, 0}, Roll: 90}
	ctx = &EvalContext{Oracle: oracle, Camera: rolled}
	gotRolled := ps.Evaluate(0, ctx, 0)

	if gotRolled >= gotStraight {
		t.Errorf("expected a 90-degree roll mismatch to score lower than an exact match, straight=%f rolled=%f", gotStraight, gotRolled)
	}
}
