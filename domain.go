package viewcam

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// DomainKind selects a ProblemDomain's parameterization.
type DomainKind int

const (
	// DomainLookAt parameterizes the camera by free position, with the
	// look-at point, roll and FOV optionally promoted to searched
	// parameters too (see the LookAtDim* constants).
	DomainLookAt DomainKind = iota
	// DomainOrbit parameterizes the camera by yaw/pitch/distance around a
	// fixed pivot, plus FOV and roll.
	DomainOrbit
)

// LookAt dimensionality stages: each adds one more trailing block of the
// parameter vector [px,py,pz, lx,ly,lz, roll, fov] to the search, leaving
// whatever isn't searched pinned at its domain default.
const (
	LookAtDimPositionOnly = 3 // [px,py,pz]
	LookAtDimWithLookAt   = 6 // + [lx,ly,lz]
	LookAtDimWithRoll     = 7 // + [roll]
	LookAtDimWithFov      = 8 // + [fov]
)

const orbitDim = 5

// ProblemDomain is a tagged-variant parameter space binding a fixed-length
// parameter vector to a Camera pose, and constraining which vectors are
// admissible (bounds plus a minimum clearance from scene geometry).
type ProblemDomain struct {
	Kind DomainKind

	// DomainLookAt
	Bounds        Box3       // camera position search box, always active
	LookAtBox     Box3       // look-at point search box, active when Dim()>=6
	DefaultLookAt mgl32.Vec3 // look-at point used when Dim()<6
	DefaultRoll   float32    // roll used when Dim()<7
	DefaultFov    float32    // fov used when Dim()<8
	dim           int        // one of the LookAtDim* constants

	// DomainOrbit
	Pivot       mgl32.Vec3
	MinDistance float32
	MaxDistance float32
	MinPitchDeg float32
	MaxPitchDeg float32

	// shared
	MinFov  float32
	MaxFov  float32
	MinRoll float32
	MaxRoll float32

	// MinClearance rejects any candidate whose camera position overlaps
	// scene geometry within this radius on ClearanceLayerMask; 0 disables
	// the check.
	MinClearance       float32
	ClearanceLayerMask uint32
}

// LookAtDomainConfig configures NewLookAtDomain. Dim selects how much of
// [px,py,pz, lx,ly,lz, roll, fov] the solver actually searches; fields not
// promoted to search parameters fall back to the Default* values below.
type LookAtDomainConfig struct {
	Bounds    Box3
	LookAtBox Box3
	Dim       int // LookAtDimPositionOnly/WithLookAt/WithRoll/WithFov; 0 defaults to LookAtDimWithFov

	DefaultLookAt mgl32.Vec3
	DefaultRoll   float32
	DefaultFov    float32

	MinFov, MaxFov   float32
	MinRoll, MaxRoll float32
}

// NewLookAtDomain builds a DomainLookAt variant. cfg.Dim stages which of
// the look-at point, roll and FOV are themselves searched parameters
// (spec's "Look-at point inside lookat_box" when Dim>=6) versus pinned at
// a fixed default.
func NewLookAtDomain(cfg LookAtDomainConfig) *ProblemDomain {
	dim := cfg.Dim
	switch dim {
	case LookAtDimPositionOnly, LookAtDimWithLookAt, LookAtDimWithRoll, LookAtDimWithFov:
	default:
		dim = LookAtDimWithFov
	}
	return &ProblemDomain{
		Kind:          DomainLookAt,
		Bounds:        cfg.Bounds,
		LookAtBox:     cfg.LookAtBox,
		DefaultLookAt: cfg.DefaultLookAt,
		DefaultRoll:   cfg.DefaultRoll,
		DefaultFov:    cfg.DefaultFov,
		dim:           dim,
		MinFov:        cfg.MinFov,
		MaxFov:        cfg.MaxFov,
		MinRoll:       cfg.MinRoll,
		MaxRoll:       cfg.MaxRoll,
	}
}

// NewOrbitDomain builds a DomainOrbit variant around pivot.
func NewOrbitDomain(pivot mgl32.Vec3, minDist, maxDist, minPitch, maxPitch, minFov, maxFov, minRoll, maxRoll float32) *ProblemDomain {
	return &ProblemDomain{
		Kind:        DomainOrbit,
		Pivot:       pivot,
		MinDistance: minDist,
		MaxDistance: maxDist,
		MinPitchDeg: minPitch,
		MaxPitchDeg: maxPitch,
		MinFov:      minFov,
		MaxFov:      maxFov,
		MinRoll:     minRoll,
		MaxRoll:     maxRoll,
	}
}

// Dim is the parameter vector length every candidate in this domain uses.
func (d *ProblemDomain) Dim() int {
	if d.Kind == DomainOrbit {
		return orbitDim
	}
	return d.dim
}

// Bind maps a parameter vector to a camera pose. fallbackLookAt is only
// consulted by DomainLookAt when Dim()<6 (DomainOrbit always looks at its
// own pivot); it lets CameraMan supply a live target center instead of the
// domain's static DefaultLookAt.
func (d *ProblemDomain) Bind(params []float32, fallbackLookAt mgl32.Vec3) Camera {
	switch d.Kind {
	case DomainOrbit:
		yaw, pitch, dist, fov, roll := params[0], params[1], params[2], params[3], params[4]
		return Camera{
			Position: orbitPosition(d.Pivot, yaw, pitch, dist),
			LookAt:   d.Pivot,
			Roll:     roll,
			Fov:      fov,
		}
	default:
		pos := mgl32.Vec3{params[0], params[1], params[2]}
		lookAt := fallbackLookAt
		if d.dim >= LookAtDimWithLookAt {
			lookAt = mgl32.Vec3{params[3], params[4], params[5]}
		}
		roll := d.DefaultRoll
		if d.dim >= LookAtDimWithRoll {
			roll = params[6]
		}
		fov := d.DefaultFov
		if d.dim >= LookAtDimWithFov {
			fov = params[7]
		}
		return Camera{
			Position: pos,
			LookAt:   lookAt,
			Roll:     roll,
			Fov:      fov,
		}
	}
}

// EncodeLookAt packs a camera pose into this domain's parameter vector,
// dropping whatever trailing fields Dim() doesn't search. Used by
// CameraMan's smart sampling so it never has to know the layout directly.
func (d *ProblemDomain) EncodeLookAt(pos, lookAt mgl32.Vec3, roll, fov float32) []float32 {
	params := make([]float32, d.dim)
	params[0], params[1], params[2] = pos.X(), pos.Y(), pos.Z()
	if d.dim >= LookAtDimWithLookAt {
		params[3], params[4], params[5] = lookAt.X(), lookAt.Y(), lookAt.Z()
	}
	if d.dim >= LookAtDimWithRoll {
		params[6] = roll
	}
	if d.dim >= LookAtDimWithFov {
		params[7] = fov
	}
	return params
}

func orbitPosition(pivot mgl32.Vec3, yawDeg, pitchDeg, dist float32) mgl32.Vec3 {
	yaw := mgl32.DegToRad(yawDeg)
	pitch := mgl32.DegToRad(pitchDeg)
	cy, sy := float32(math.Cos(float64(yaw))), float32(math.Sin(float64(yaw)))
	cp, sp := float32(math.Cos(float64(pitch))), float32(math.Sin(float64(pitch)))
	dir := mgl32.Vec3{cp * sy, sp, cp * cy}
	return pivot.Add(dir.Mul(dist))
}

// InDomain reports whether params satisfies this domain's bounds and, when
// MinClearance > 0, that the resulting camera position does not overlap
// scene geometry within that radius. For DomainLookAt, the checks are
// staged by Dim(): the look-at box is only checked when Dim()>=6, roll
// only when Dim()>=7, and FOV only when Dim()>=8 — whatever isn't a
// searched parameter is pinned at a domain default and so never rejected.
func (d *ProblemDomain) InDomain(params []float32, oracle SceneOracle) bool {
	if len(params) != d.Dim() {
		return false
	}
	var pos mgl32.Vec3
	switch d.Kind {
	case DomainOrbit:
		yaw, pitch, dist, fov, roll := params[0], params[1], params[2], params[3], params[4]
		if dist < d.MinDistance || dist > d.MaxDistance {
			return false
		}
		if pitch < d.MinPitchDeg || pitch > d.MaxPitchDeg {
			return false
		}
		if fov < d.MinFov || fov > d.MaxFov {
			return false
		}
		if roll < d.MinRoll || roll > d.MaxRoll {
			return false
		}
		pos = orbitPosition(d.Pivot, yaw, pitch, dist)
	default:
		pos = mgl32.Vec3{params[0], params[1], params[2]}
		if !d.Bounds.Contains(pos) {
			return false
		}
		if d.dim >= LookAtDimWithLookAt {
			lookAt := mgl32.Vec3{params[3], params[4], params[5]}
			if !d.LookAtBox.Contains(lookAt) {
				return false
			}
		}
		if d.dim >= LookAtDimWithRoll {
			roll := params[6]
			if roll < d.MinRoll || roll > d.MaxRoll {
				return false
			}
		}
		if d.dim >= LookAtDimWithFov {
			fov := params[7]
			if fov < d.MinFov || fov > d.MaxFov {
				return false
			}
		}
	}

	if d.MinClearance > 0 && oracle != nil {
		if oracle.SphereOverlap(pos, d.MinClearance, d.ClearanceLayerMask) {
			return false
		}
	}
	return true
}

// RandomViewpoint draws a uniform parameter vector from this domain's
// bounds, ignoring properties entirely — the unbiased fallback used when
// smart sampling exhausts its retry budget (spec design note on
// smart-sampling give-ups).
func (d *ProblemDomain) RandomViewpoint(rng *rand.Rand) []float32 {
	switch d.Kind {
	case DomainOrbit:
		params := make([]float32, orbitDim)
		params[0] = rng.Float32() * 360
		params[1] = lerpf(d.MinPitchDeg, d.MaxPitchDeg, rng.Float32())
		params[2] = lerpf(d.MinDistance, d.MaxDistance, rng.Float32())
		params[3] = lerpf(d.MinFov, d.MaxFov, rng.Float32())
		params[4] = lerpf(d.MinRoll, d.MaxRoll, rng.Float32())
		return params
	default:
		pos := randomInBox3(d.Bounds, rng)
		lookAt := d.DefaultLookAt
		if d.dim >= LookAtDimWithLookAt {
			lookAt = randomInBox3(d.LookAtBox, rng)
		}
		roll := d.DefaultRoll
		if d.dim >= LookAtDimWithRoll {
			roll = lerpf(d.MinRoll, d.MaxRoll, rng.Float32())
		}
		fov := d.DefaultFov
		if d.dim >= LookAtDimWithFov {
			fov = lerpf(d.MinFov, d.MaxFov, rng.Float32())
		}
		return d.EncodeLookAt(pos, lookAt, roll, fov)
	}
}

// ParamRange returns each dimension's (max-min) search extent, in the same
// layout Bind/InDomain use. The PSO clamps velocity to +/-range[j] per
// dimension and uses it again to decide when the swarm has gone steady.
func (d *ProblemDomain) ParamRange() []float32 {
	switch d.Kind {
	case DomainOrbit:
		return []float32{360, d.MaxPitchDeg - d.MinPitchDeg, d.MaxDistance - d.MinDistance, d.MaxFov - d.MinFov, d.MaxRoll - d.MinRoll}
	default:
		ranges := make([]float32, d.dim)
		ranges[0] = d.Bounds.Max.X() - d.Bounds.Min.X()
		ranges[1] = d.Bounds.Max.Y() - d.Bounds.Min.Y()
		ranges[2] = d.Bounds.Max.Z() - d.Bounds.Min.Z()
		if d.dim >= LookAtDimWithLookAt {
			ranges[3] = d.LookAtBox.Max.X() - d.LookAtBox.Min.X()
			ranges[4] = d.LookAtBox.Max.Y() - d.LookAtBox.Min.Y()
			ranges[5] = d.LookAtBox.Max.Z() - d.LookAtBox.Min.Z()
		}
		if d.dim >= LookAtDimWithRoll {
			ranges[6] = d.MaxRoll - d.MinRoll
		}
		if d.dim >= LookAtDimWithFov {
			ranges[7] = d.MaxFov - d.MinFov
		}
		return ranges
	}
}

func lerpf(lo, hi, t float32) float32 {
	return lo + t*(hi-lo)
}

func randomInBox3(b Box3, rng *rand.Rand) mgl32.Vec3 {
	return mgl32.Vec3{
		lerpf(b.Min.X(), b.Max.X(), rng.Float32()),
		lerpf(b.Min.Y(), b.Max.Y(), rng.Float32()),
		lerpf(b.Min.Z(), b.Max.Z(), rng.Float32()),
	}
}
