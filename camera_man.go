package viewcam

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraMan binds a parameter vector to a Camera pose within a
// ProblemDomain, owns the Target list and PropertySet a configuration
// references, and produces both plain-random and property-aware ("smart")
// candidate samples for the solver.
type CameraMan struct {
	Oracle     SceneOracle
	Domain     *ProblemDomain
	Targets    []*Target
	Properties *PropertySet
	Rng        *rand.Rand

	// LookAtTarget indexes Targets for DomainLookAt binding; ignored by
	// DomainOrbit, which always looks at its own pivot.
	LookAtTarget int

	targetScratch []TargetScratch

	// SmartSampleGiveUps counts how many SmartSample calls exhausted their
	// retry budget and fell back to an unbiased domain-random draw (the
	// diagnostic resolving the "silent retry give-up" open question).
	SmartSampleGiveUps int
}

func NewCameraMan(oracle SceneOracle, domain *ProblemDomain, targets []*Target, properties *PropertySet, lookAtTarget int, rng *rand.Rand) *CameraMan {
	cm := &CameraMan{
		Oracle:       oracle,
		Domain:       domain,
		Targets:      targets,
		Properties:   properties,
		LookAtTarget: lookAtTarget,
		Rng:          rng,
	}
	cm.RefreshTargets()
	return cm
}

// RefreshTargets recomputes every target's bounds/visibility points and
// rebuilds the target->property back-references used by smart sampling.
// Call whenever the underlying scene has moved.
func (cm *CameraMan) RefreshTargets() {
	for _, t := range cm.Targets {
		t.UpdateBounds(cm.Oracle, cm.Rng)
		t.PropertyIndices = t.PropertyIndices[:0]
	}
	cm.targetScratch = make([]TargetScratch, len(cm.Targets))

	for i := range cm.Properties.Props {
		p := &cm.Properties.Props[i]
		for _, ti := range p.Targets {
			cm.Targets[ti].PropertyIndices = append(cm.Targets[ti].PropertyIndices, i)
		}
	}
}

// Dim returns the domain's parameter vector length.
func (cm *CameraMan) Dim() int { return cm.Domain.Dim() }

// Bind maps params to a Camera pose. When the domain's look-at point isn't
// itself a searched parameter (Dim()<6), the look-at point falls back to
// LookAtTarget's current bounds center instead of the domain's static
// default, so a moving target is still tracked; with no valid LookAtTarget
// the domain's DefaultLookAt is used.
func (cm *CameraMan) Bind(params []float32) Camera {
	fallbackLookAt := cm.Domain.DefaultLookAt
	if cm.LookAtTarget >= 0 && cm.LookAtTarget < len(cm.Targets) {
		fallbackLookAt = cm.Targets[cm.LookAtTarget].AABB.Center()
	}
	return cm.Domain.Bind(params, fallbackLookAt)
}

// Evaluate returns EvalOutOfDomain if params falls outside the domain,
// otherwise the root property's satisfaction (possibly EvalPruned, per the
// lazy-aggregation algorithm, if lazyThreshold rules it out early).
func (cm *CameraMan) Evaluate(params []float32, lazyThreshold float32) float32 {
	if !cm.Domain.InDomain(params, cm.Oracle) {
		return EvalOutOfDomain
	}
	camera := cm.Bind(params)

	cm.Properties.ResetScratch()
	for i := range cm.targetScratch {
		cm.targetScratch[i].reset()
	}

	ctx := &EvalContext{
		Oracle:        cm.Oracle,
		Camera:        camera,
		Targets:       cm.Targets,
		TargetScratch: cm.targetScratch,
		Rng:           cm.Rng,
	}
	return cm.Properties.Evaluate(0, ctx, lazyThreshold)
}

// EvaluateDetailed re-evaluates params at lazyThreshold 0 (no pruning) and
// returns the root objective alongside every property's satisfaction and
// in-screen ratio in arena order (index 0 is always the root aggregator,
// matching Properties.Props). A property the evaluation never reached —
// impossible at threshold 0 but kept for symmetry with the pruned case —
// reports -1/0, the same sentinel Viewpoint uses for "no solution".
func (cm *CameraMan) EvaluateDetailed(params []float32) (objective float32, satisfactions []float32, inScreenRatios []float32) {
	n := len(cm.Properties.Props)
	satisfactions = make([]float32, n)
	inScreenRatios = make([]float32, n)

	objective = cm.Evaluate(params, 0)
	if objective < 0 {
		for i := range satisfactions {
			satisfactions[i] = -1
		}
		return objective, satisfactions, inScreenRatios
	}
	for i := 0; i < n; i++ {
		sc := cm.Properties.scratch[i]
		if sc.Evaluated {
			satisfactions[i] = sc.Satisfaction
			inScreenRatios[i] = sc.InScreenRatio
		} else {
			satisfactions[i] = -1
		}
	}
	return objective, satisfactions, inScreenRatios
}

// BindViewpoint derives the Camera pose a Viewpoint's parameters describe.
// Viewpoint itself only carries the parameter vector and satisfactions, so
// this is the usual way a caller turns a Solve result into a usable pose.
func (cm *CameraMan) BindViewpoint(v Viewpoint) Camera {
	return cm.Bind(v.Params)
}

// RandomViewpoint draws an unbiased uniform sample from the domain.
func (cm *CameraMan) RandomViewpoint() []float32 {
	return cm.Domain.RandomViewpoint(cm.Rng)
}

// SmartSample draws a property-aware sample: it picks a ground property at
// random and derives camera parameters that would plausibly satisfy it
// (e.g. the distance at which the target shows a size drawn from a Size
// property's spline, or a polar angle drawn from a vertical-world
// Orientation property's spline, both drawn with density proportional to
// satisfaction via SatSpline.SampleX), then retries
// up to maxRetries times against InDomain before silently giving up and
// falling back to an unbiased RandomViewpoint (the give-up is counted in
// SmartSampleGiveUps, never surfaced as an error per the spec's smart
// sampling design).
func (cm *CameraMan) SmartSample(maxRetries int) []float32 {
	if maxRetries <= 0 {
		maxRetries = 1
	}
	for i := 0; i < maxRetries; i++ {
		params := cm.smartSampleOnce()
		if cm.Domain.InDomain(params, cm.Oracle) {
			return params
		}
	}
	cm.SmartSampleGiveUps++
	return cm.RandomViewpoint()
}

func (cm *CameraMan) smartSampleOnce() []float32 {
	leafIdx := cm.randomBiasableLeaf()
	if leafIdx < 0 {
		return cm.RandomViewpoint()
	}
	leaf := &cm.Properties.Props[leafIdx]
	if cm.Domain.Kind == DomainOrbit {
		return cm.smartSampleOrbit(leaf)
	}
	return cm.smartSampleLookAt(leaf)
}

// randomBiasableLeaf returns the arena index of a random ground property
// this package knows how to bias a sample toward (Size or Orientation),
// or -1 if none exist.
func (cm *CameraMan) randomBiasableLeaf() int {
	var candidates []int
	for i := range cm.Properties.Props {
		p := &cm.Properties.Props[i]
		if len(p.Targets) == 0 {
			continue
		}
		if p.Kind == PropertySize || p.Kind == PropertyOrientation {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	return candidates[cm.Rng.Intn(len(candidates))]
}

func (cm *CameraMan) smartSampleLookAt(leaf *Property) []float32 {
	fov := lerpf(cm.Domain.MinFov, cm.Domain.MaxFov, cm.Rng.Float32())
	roll := lerpf(cm.Domain.MinRoll, cm.Domain.MaxRoll, cm.Rng.Float32())
	t := cm.Targets[leaf.Targets[0]]
	center := t.AABB.Center()

	dir := randomUnitVector(cm.Rng)
	dist := t.Radius * 3
	switch leaf.Kind {
	case PropertySize:
		desired := leaf.Spline.SampleX(cm.Rng)
		dist = DistanceFromSize(t.Radius, desired, leaf.SizeMode, 1, fov)
	case PropertyOrientation:
		if leaf.OrientationMode == OrientationVerticalWorld {
			desiredAngle := leaf.Spline.SampleX(cm.Rng)
			dir = directionFromWorldUpAngle(desiredAngle, cm.Rng)
		}
	}

	pos := center.Add(dir.Mul(dist))
	// center itself is also the natural look-at guess when the domain
	// searches it (Dim()>=6); EncodeLookAt drops it otherwise.
	return cm.Domain.EncodeLookAt(pos, center, roll, fov)
}

// smartSampleOrbit biases distance (from a Size property) or pitch (from a
// vertical-world Orientation property); yaw always stays uniform random.
// Orbit's single shared pivot means a Size/Orientation property on a
// non-pivot target can't be satisfied by construction the way LookAt's
// free position can, so this variant only ever biases the two parameters
// that are geometry-independent of which target was picked.
func (cm *CameraMan) smartSampleOrbit(leaf *Property) []float32 {
	params := make([]float32, orbitDim)
	fov := lerpf(cm.Domain.MinFov, cm.Domain.MaxFov, cm.Rng.Float32())
	dist := lerpf(cm.Domain.MinDistance, cm.Domain.MaxDistance, cm.Rng.Float32())
	pitch := lerpf(cm.Domain.MinPitchDeg, cm.Domain.MaxPitchDeg, cm.Rng.Float32())

	switch leaf.Kind {
	case PropertySize:
		t := cm.Targets[leaf.Targets[0]]
		desired := leaf.Spline.SampleX(cm.Rng)
		dist = clampf(DistanceFromSize(t.Radius, desired, leaf.SizeMode, 1, fov), cm.Domain.MinDistance, cm.Domain.MaxDistance)
	case PropertyOrientation:
		if leaf.OrientationMode == OrientationVerticalWorld {
			desiredAngle := leaf.Spline.SampleX(cm.Rng)
			pitch = clampf(90-desiredAngle, cm.Domain.MinPitchDeg, cm.Domain.MaxPitchDeg)
		}
	}

	params[0] = cm.Rng.Float32() * 360
	params[1] = pitch
	params[2] = dist
	params[3] = fov
	params[4] = lerpf(cm.Domain.MinRoll, cm.Domain.MaxRoll, cm.Rng.Float32())
	return params
}

func randomUnitVector(rng *rand.Rand) mgl32.Vec3 {
	for i := 0; i < 32; i++ {
		v := mgl32.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}
		if l := v.Len(); l > 1e-6 && l <= 1 {
			return v.Mul(1 / l)
		}
	}
	return mgl32.Vec3{0, 0, 1}
}

// directionFromWorldUpAngle returns a unit direction whose angle against
// +Y is angleDeg, with a uniformly random azimuth.
func directionFromWorldUpAngle(angleDeg float32, rng *rand.Rand) mgl32.Vec3 {
	theta := float64(mgl32.DegToRad(angleDeg))
	azimuth := rng.Float64() * 2 * math.Pi
	y := math.Cos(theta)
	r := math.Sin(theta)
	x := r * math.Cos(azimuth)
	z := r * math.Sin(azimuth)
	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}
