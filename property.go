package viewcam

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// EvalPruned and EvalOutOfDomain are the sentinel satisfaction values
// defined by the external API contract (spec §6/§7): a property evaluation
// returns EvalPruned when lazy aggregation short-circuited it, a candidate
// evaluation returns EvalOutOfDomain when its parameters fall outside the
// problem domain. Both are outside [0,1] by construction.
const (
	EvalPruned      float32 = -1
	EvalOutOfDomain float32 = -2
)

// Evaluation is a small ergonomic wrapper around the float32 sentinel
// contract above (the design-note "open question" on sum types): the wire
// value stays a plain float32, but call sites that want to branch on it can
// use these predicates instead of comparing against magic numbers.
type Evaluation float32

func (e Evaluation) IsPruned() bool      { return float32(e) == EvalPruned }
func (e Evaluation) IsOutOfDomain() bool { return float32(e) == EvalOutOfDomain }
func (e Evaluation) IsValid() bool       { return float32(e) >= 0 }

type PropertyKind int

const (
	PropertyAggregation PropertyKind = iota
	PropertySize
	PropertyOcclusion
	PropertyOrientation
	PropertyFraming
	PropertyRelativePosition
	PropertyTargetPosition
	PropertyCameraOrientation
	PropertyCameraFOV
)

type SizeMode int

const (
	SizeModeArea SizeMode = iota
	SizeModeWidth
	SizeModeHeight
)

type OrientationMode int

const (
	OrientationHorizontalLocal OrientationMode = iota
	OrientationVerticalLocal
	OrientationVerticalWorld
)

type RelativeDirection int

const (
	RelativeLeft RelativeDirection = iota
	RelativeRight
	RelativeAbove
	RelativeBelow
)

var (
	ErrNoChildren        = errors.New("viewcam: aggregation requires at least one child")
	ErrWeightsMismatch   = errors.New("viewcam: aggregation children/weights length mismatch")
	ErrWeightsNonPositiv = errors.New("viewcam: aggregation weights must sum to a positive value")
	ErrPropertyNoTargets = errors.New("viewcam: property requires at least one target")
)

// Property is a tagged-variant visual criterion: one Go struct carrying the
// fields common to every variant plus the fields specific to whichever Kind
// it is. This removes virtual dispatch from the evaluator's hot inner loop
// in favor of a small switch (design note §9).
type Property struct {
	Name string
	Kind PropertyKind
	Cost float32

	// Targets holds indices into the CameraMan's target slice: most
	// variants use Targets[0], a few (Size in two-target mode,
	// RelativePosition) also use Targets[1]. CameraOrientation/CameraFOV
	// use none.
	Targets []int
	Spline  *SatSpline

	SizeMode SizeMode

	OcclusionDoubleSided bool
	OcclusionRandomRays  bool
	OcclusionIgnoreLayer uint32

	OrientationMode OrientationMode

	FramingRect Rect2

	RelativeDirection RelativeDirection

	TargetPositionPoint mgl32.Vec2

	CameraOrientationRef mgl32.Quat

	// Aggregation / TradeOff
	Children []int
	Weights  []float32
}

func newGroundProperty(name string, kind PropertyKind, targets []int, spline *SatSpline, cost float32) (*Property, error) {
	if len(targets) == 0 && kind != PropertyCameraOrientation && kind != PropertyCameraFOV {
		return nil, ErrPropertyNoTargets
	}
	return &Property{
		Name:    name,
		Kind:    kind,
		Cost:    cost,
		Targets: append([]int(nil), targets...),
		Spline:  spline,
	}, nil
}

func NewSizeProperty(targets []int, mode SizeMode, spline *SatSpline, cost float32) (*Property, error) {
	p, err := newGroundProperty("size", PropertySize, targets, spline, cost)
	if err != nil {
		return nil, err
	}
	p.SizeMode = mode
	return p, nil
}

func NewOcclusionProperty(target int, doubleSided, randomRays bool, ignoreLayer uint32, spline *SatSpline, cost float32) (*Property, error) {
	p, err := newGroundProperty("occlusion", PropertyOcclusion, []int{target}, spline, cost)
	if err != nil {
		return nil, err
	}
	p.OcclusionDoubleSided = doubleSided
	p.OcclusionRandomRays = randomRays
	p.OcclusionIgnoreLayer = ignoreLayer
	return p, nil
}

func NewOrientationProperty(target int, mode OrientationMode, spline *SatSpline, cost float32) (*Property, error) {
	p, err := newGroundProperty("orientation", PropertyOrientation, []int{target}, spline, cost)
	if err != nil {
		return nil, err
	}
	p.OrientationMode = mode
	return p, nil
}

func NewFramingProperty(target int, rect Rect2, spline *SatSpline, cost float32) (*Property, error) {
	p, err := newGroundProperty("framing", PropertyFraming, []int{target}, spline, cost)
	if err != nil {
		return nil, err
	}
	p.FramingRect = rect
	return p, nil
}

func NewRelativePositionProperty(targetA, targetB int, dir RelativeDirection, spline *SatSpline, cost float32) (*Property, error) {
	p, err := newGroundProperty("relative_position", PropertyRelativePosition, []int{targetA, targetB}, spline, cost)
	if err != nil {
		return nil, err
	}
	p.RelativeDirection = dir
	return p, nil
}

func NewTargetPositionProperty(target int, point mgl32.Vec2, spline *SatSpline, cost float32) (*Property, error) {
	p, err := newGroundProperty("target_position", PropertyTargetPosition, []int{target}, spline, cost)
	if err != nil {
		return nil, err
	}
	p.TargetPositionPoint = point
	return p, nil
}

func NewCameraOrientationProperty(ref mgl32.Quat, spline *SatSpline, cost float32) (*Property, error) {
	p, err := newGroundProperty("camera_orientation", PropertyCameraOrientation, nil, spline, cost)
	if err != nil {
		return nil, err
	}
	p.CameraOrientationRef = ref
	return p, nil
}

func NewCameraFOVProperty(spline *SatSpline, cost float32) (*Property, error) {
	return newGroundProperty("camera_fov", PropertyCameraFOV, nil, spline, cost)
}

// NewAggregation builds a weighted-sum property over children (arena
// indices into the owning PropertySet), normalizing weights to sum to 1.
// Children must already be ordered by increasing evaluation cost; this
// constructor preserves whatever order the caller supplies.
func NewAggregation(name string, children []int, weights []float32, cost float32) (*Property, error) {
	if len(children) == 0 {
		return nil, ErrNoChildren
	}
	if len(children) != len(weights) {
		return nil, ErrWeightsMismatch
	}
	var sum float32
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		return nil, ErrWeightsNonPositiv
	}
	normalized := make([]float32, len(weights))
	for i, w := range weights {
		normalized[i] = w / sum
	}
	return &Property{
		Name:     name,
		Kind:     PropertyAggregation,
		Cost:     cost,
		Children: append([]int(nil), children...),
		Weights:  normalized,
	}, nil
}

// PropScratch holds per-evaluation memoization for one Property.
type PropScratch struct {
	Evaluated     bool
	Satisfaction  float32
	InScreenRatio float32
}

// PropertySet is the arena of Property values a CameraMan owns; index 0 is
// conventionally the root aggregator (the objective).
type PropertySet struct {
	Props   []Property
	scratch []PropScratch
}

func NewPropertySet(props []Property) *PropertySet {
	return &PropertySet{
		Props:   props,
		scratch: make([]PropScratch, len(props)),
	}
}

func (ps *PropertySet) ResetScratch() {
	for i := range ps.scratch {
		ps.scratch[i] = PropScratch{}
	}
}

// EvalContext bundles everything a property evaluation needs beyond its own
// arena: the scene oracle, the bound camera, and the target list with its
// parallel scratch.
type EvalContext struct {
	Oracle        SceneOracle
	Camera        Camera
	Targets       []*Target
	TargetScratch []TargetScratch
	Rng           *rand.Rand
}

func (ctx *EvalContext) target(i int) (*Target, *TargetScratch) {
	return ctx.Targets[i], &ctx.TargetScratch[i]
}

// Evaluate computes property idx's satisfaction, memoizing into scratch so
// repeated references within one camera evaluation are free after the
// first. lazyThreshold is the upper-bound cutoff passed down from the root
// (spec §4.3); a pruned aggregation sub-tree returns EvalPruned.
func (ps *PropertySet) Evaluate(idx int, ctx *EvalContext, lazyThreshold float32) float32 {
	sc := &ps.scratch[idx]
	if sc.Evaluated {
		return sc.Satisfaction
	}
	p := &ps.Props[idx]

	var result float32
	if p.Kind == PropertyAggregation {
		result = ps.evaluateAggregation(idx, ctx, lazyThreshold)
	} else {
		result = ps.evaluateGround(idx, ctx)
	}

	sc.Evaluated = true
	sc.Satisfaction = result
	return result
}

func (ps *PropertySet) evaluateAggregation(idx int, ctx *EvalContext, lazyThreshold float32) float32 {
	p := &ps.Props[idx]
	sc := &ps.scratch[idx]

	var accSat float32
	remaining := float32(1)
	ratioProduct := float32(1)

	for i, childIdx := range p.Children {
		w := p.Weights[i]
		s := ps.Evaluate(childIdx, ctx, lazyThreshold)
		if s < 0 {
			// child itself pruned: propagate immediately, nothing more to
			// learn from the remaining children at this lazy threshold.
			return EvalPruned
		}
		accSat += w * s
		remaining -= w
		ratioProduct *= ps.scratch[childIdx].InScreenRatio

		upperBound := accSat + remaining
		if upperBound < lazyThreshold {
			return EvalPruned
		}
	}

	sc.InScreenRatio = ratioProduct
	return accSat
}

func (ps *PropertySet) evaluateGround(idx int, ctx *EvalContext) float32 {
	p := &ps.Props[idx]
	sc := &ps.scratch[idx]

	switch p.Kind {
	case PropertySize:
		return ps.evalSize(p, sc, ctx)
	case PropertyOcclusion:
		return ps.evalOcclusion(p, sc, ctx)
	case PropertyOrientation:
		return ps.evalOrientation(p, sc, ctx)
	case PropertyFraming:
		return ps.evalFraming(p, sc, ctx)
	case PropertyRelativePosition:
		return ps.evalRelativePosition(p, sc, ctx)
	case PropertyTargetPosition:
		return ps.evalTargetPosition(p, sc, ctx)
	case PropertyCameraOrientation:
		return ps.evalCameraOrientation(p, sc, ctx)
	case PropertyCameraFOV:
		sc.InScreenRatio = 1
		return p.Spline.Eval(ctx.Camera.Fov)
	default:
		panic(fmt.Sprintf("viewcam: unknown property kind %d", p.Kind))
	}
}

func sizeMeasure(mode SizeMode, ts *TargetScratch) float32 {
	switch mode {
	case SizeModeWidth:
		return ts.ScreenAABB.Max.X() - ts.ScreenAABB.Min.X()
	case SizeModeHeight:
		return ts.ScreenAABB.Max.Y() - ts.ScreenAABB.Min.Y()
	default:
		return ts.ScreenArea
	}
}

func (ps *PropertySet) evalSize(p *Property, sc *PropScratch, ctx *EvalContext) float32 {
	t0, ts0 := ctx.target(p.Targets[0])
	Render(ctx.Oracle, ctx.Camera, t0, ts0)

	var measured float32
	if len(p.Targets) == 2 {
		_, ts1 := ctx.target(p.Targets[1])
		Render(ctx.Oracle, ctx.Camera, ctx.Targets[p.Targets[1]], ts1)
		denom := sizeMeasure(p.SizeMode, ts1)
		if denom < degenerateEps {
			measured = 0
		} else {
			measured = sizeMeasure(p.SizeMode, ts0) / denom
		}
	} else {
		measured = sizeMeasure(p.SizeMode, ts0)
	}
	sc.InScreenRatio = ts0.InScreenRatio
	return p.Spline.Eval(measured)
}

func (ps *PropertySet) evalOcclusion(p *Property, sc *PropScratch, ctx *EvalContext) float32 {
	t0, ts0 := ctx.target(p.Targets[0])
	Render(ctx.Oracle, ctx.Camera, t0, ts0)
	ratio := ComputeOcclusion(ctx.Oracle, ctx.Camera, t0, t0.NRays, p.OcclusionDoubleSided, p.OcclusionRandomRays, ctx.Rng, p.OcclusionIgnoreLayer)
	sc.InScreenRatio = ts0.InScreenRatio
	return p.Spline.Eval(ratio)
}

func (ps *PropertySet) evalOrientation(p *Property, sc *PropScratch, ctx *EvalContext) float32 {
	t0, ts0 := ctx.target(p.Targets[0])
	Render(ctx.Oracle, ctx.Camera, t0, ts0)

	toCamera := ctx.Camera.Position.Sub(t0.AABB.Center())
	var axis Axis
	switch p.OrientationMode {
	case OrientationHorizontalLocal:
		axis = AxisRight
	case OrientationVerticalLocal:
		axis = AxisUp
	default:
		axis = AxisWorldUp
	}
	var objID ObjectID
	if len(t0.SizeSources) > 0 {
		objID = t0.SizeSources[0]
	}
	angle := AngleWithAxis(ctx.Oracle, objID, axis, toCamera)
	sc.InScreenRatio = ts0.InScreenRatio
	return p.Spline.Eval(angle)
}

func (ps *PropertySet) evalFraming(p *Property, sc *PropScratch, ctx *EvalContext) float32 {
	t0, ts0 := ctx.target(p.Targets[0])
	Render(ctx.Oracle, ctx.Camera, t0, ts0)
	ratio := FramingRatio(ts0, p.FramingRect)
	sc.InScreenRatio = ts0.InScreenRatio
	return p.Spline.Eval(ratio)
}

func (ps *PropertySet) evalRelativePosition(p *Property, sc *PropScratch, ctx *EvalContext) float32 {
	t0, ts0 := ctx.target(p.Targets[0])
	Render(ctx.Oracle, ctx.Camera, t0, ts0)
	t1, ts1 := ctx.target(p.Targets[1])
	Render(ctx.Oracle, ctx.Camera, t1, ts1)

	var value float32
	switch p.RelativeDirection {
	case RelativeLeft:
		value = ts1.ScreenAABB.Min.X() - ts0.ScreenAABB.Max.X()
	case RelativeRight:
		value = ts0.ScreenAABB.Min.X() - ts1.ScreenAABB.Max.X()
	case RelativeAbove:
		value = ts1.ScreenAABB.Min.Y() - ts0.ScreenAABB.Max.Y()
	default: // RelativeBelow
		value = ts0.ScreenAABB.Min.Y() - ts1.ScreenAABB.Max.Y()
	}
	sc.InScreenRatio = ts0.InScreenRatio * ts1.InScreenRatio
	return p.Spline.Eval(value)
}

func rectCenter(r Rect2) mgl32.Vec2 {
	return mgl32.Vec2{(r.Min.X() + r.Max.X()) / 2, (r.Min.Y() + r.Max.Y()) / 2}
}

func (ps *PropertySet) evalTargetPosition(p *Property, sc *PropScratch, ctx *EvalContext) float32 {
	t0, ts0 := ctx.target(p.Targets[0])
	Render(ctx.Oracle, ctx.Camera, t0, ts0)
	centroid := rectCenter(ts0.ScreenAABB)
	dist := centroid.Sub(p.TargetPositionPoint).Len()
	sc.InScreenRatio = ts0.InScreenRatio
	return p.Spline.Eval(dist)
}

// evalCameraOrientation scores the full angular distance between the
// camera's current orientation and CameraOrientationRef — forward
// direction and roll both count, so two cameras aimed the same way but
// rolled differently aren't treated as equally satisfying.
func (ps *PropertySet) evalCameraOrientation(p *Property, sc *PropScratch, ctx *EvalContext) float32 {
	rel := ctx.Camera.Orientation().Mul(p.CameraOrientationRef.Inverse())
	w := clampf(absf(rel.W), -1, 1)
	angle := mgl32.RadToDeg(2 * float32(math.Acos(float64(w))))
	sc.InScreenRatio = 1
	return p.Spline.Eval(angle)
}
