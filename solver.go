package viewcam

import (
	"context"
	"math/rand"
	"time"
)

// ExitCondition reports why Solve stopped.
type ExitCondition int

const (
	// ExitMaxIterations means the search ran every iteration it was given.
	ExitMaxIterations ExitCondition = iota
	// ExitSatThreshold means the global best reached SatThreshold early.
	ExitSatThreshold
	// ExitCancelled means ctx was done (cancelled, or TimeLimitMs elapsed)
	// before MaxIterations was reached.
	ExitCancelled
)

func (e ExitCondition) String() string {
	switch e {
	case ExitSatThreshold:
		return "sat_threshold"
	case ExitCancelled:
		return "cancelled"
	default:
		return "max_iterations"
	}
}

// Solver is a Particle Swarm Optimizer over a CameraMan's parameter space,
// with a linearly-decreasing inertia weight and lazy-aggregation-aware
// evaluation: each iteration's pruning threshold is the best satisfaction
// found so far, so later iterations skip more and more of the property
// tree as the swarm converges.
type Solver struct {
	CameraMan *CameraMan
	Logger    Logger
	Rng       *rand.Rand

	SwarmSize     int
	MaxIterations int

	// TimeLimitMs, if >0, bounds Solve's wall-clock budget; 0 means only
	// MaxIterations and the caller's ctx apply.
	TimeLimitMs int

	InertiaStart float32
	InertiaEnd   float32
	Cognitive    float32
	Social       float32

	// SmartSampleRatio is the fraction of the initial swarm seeded via
	// CameraMan.SmartSample rather than a plain uniform random draw.
	SmartSampleRatio      float32
	SmartSampleMaxRetries int

	// SatThreshold, if > 0, ends the search as soon as the global best
	// satisfaction reaches it (ExitSatThreshold), rather than always
	// running to MaxIterations.
	SatThreshold float32

	// InitialCandidates seeds swarm slots 0..len(InitialCandidates)-1 with
	// these exact parameter vectors on a fresh (init=true) Solve call,
	// instead of smart/random sampling those slots. Ignored on a
	// warm-started (init=false) call that continues an existing swarm,
	// since initSwarm itself is skipped.
	InitialCandidates [][]float32

	// BestHistory accumulates the global-best Viewpoint after every
	// iteration. A fresh (init=true) Solve call resets it; a warm-started
	// (init=false) call keeps appending to the same trace.
	BestHistory []Viewpoint

	swarm                  []Candidate
	paramRanges            []float32
	globalBestParams       []float32
	globalBestSatisfaction float32
	steady                 bool
	lastRunID              string
}

func NewSolver(cm *CameraMan, logger Logger, rng *rand.Rand) *Solver {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Solver{
		CameraMan:             cm,
		Logger:                logger,
		Rng:                   rng,
		SwarmSize:             24,
		MaxIterations:         80,
		InertiaStart:          0.9,
		InertiaEnd:            0.4,
		Cognitive:             1.6,
		Social:                1.6,
		SmartSampleRatio:      0.5,
		SmartSampleMaxRetries: 30,
	}
}

// SetParameters overrides the PSO tuning knobs in one call; zero-valued
// fields are left at whatever NewSolver set.
func (s *Solver) SetParameters(swarmSize, maxIterations int, inertiaStart, inertiaEnd, cognitive, social float32) {
	if swarmSize > 0 {
		s.SwarmSize = swarmSize
	}
	if maxIterations > 0 {
		s.MaxIterations = maxIterations
	}
	if inertiaStart > 0 {
		s.InertiaStart = inertiaStart
	}
	if inertiaEnd > 0 {
		s.InertiaEnd = inertiaEnd
	}
	if cognitive > 0 {
		s.Cognitive = cognitive
	}
	if social > 0 {
		s.Social = social
	}
}

// Steady reports whether every candidate's velocity has settled to within
// 0.1% of the domain's range on every dimension: |v[j]| <= 0.001*range[j]
// for the whole swarm, the PSO's convergence/stagnation diagnostic.
func (s *Solver) Steady() bool {
	return s.steady
}

// Solve runs the PSO search to find the camera parameters maximizing the
// CameraMan's root property satisfaction. init selects a fresh swarm
// (InitialCandidates seeded into slots 0..k-1, the rest smart/random
// sampled) versus a warm start that continues evaluating the swarm left
// over from a previous Solve call. A warm start on a Solver that has no
// swarm yet logs a warning and initializes a fresh swarm as if init were
// true. Cancellation (ctx.Done, or TimeLimitMs elapsing) is cooperative:
// checked once per iteration, never mid-evaluation, so a single slow
// Evaluate call always completes.
func (s *Solver) Solve(ctx context.Context, init bool) (Viewpoint, ExitCondition, error) {
	runID := newRunID()
	s.lastRunID = runID
	dim := s.CameraMan.Dim()
	s.paramRanges = s.CameraMan.Domain.ParamRange()

	if s.TimeLimitMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.TimeLimitMs)*time.Millisecond)
		defer cancel()
	}

	if init {
		if len(s.InitialCandidates) > s.SwarmSize {
			s.Logger.Warnf("solve %s: %d initial candidates exceeds swarm size %d, the rest are dropped", runID, len(s.InitialCandidates), s.SwarmSize)
		}
		s.initSwarm(dim)
		s.BestHistory = nil
	} else if s.swarm == nil {
		s.Logger.Warnf("solve %s: warm start requested with no prior swarm, initializing fresh", runID)
		s.initSwarm(dim)
		s.BestHistory = nil
	}

	s.Logger.Infof("solve %s start: swarm=%d iterations=%d dim=%d init=%t sat_threshold=%.3f", runID, s.SwarmSize, s.MaxIterations, dim, init, s.SatThreshold)

	exitCondition := ExitMaxIterations
	var solveErr error

	if err := ctx.Err(); err != nil {
		exitCondition, solveErr = ExitCancelled, err
	} else {
		for iter := 0; iter < s.MaxIterations; iter++ {
			select {
			case <-ctx.Done():
				s.Logger.Warnf("solve %s cancelled at iteration %d/%d", runID, iter, s.MaxIterations)
				exitCondition, solveErr = ExitCancelled, ctx.Err()
			default:
			}
			if solveErr != nil {
				break
			}

			inertia := lerpf(s.InertiaStart, s.InertiaEnd, float32(iter)/float32(maxInt(s.MaxIterations-1, 1)))
			lazyThreshold := maxf32(s.globalBestSatisfaction, 0)
			s.stepSwarm(dim, inertia, lazyThreshold)
			s.steady = s.computeSteady(dim)

			best := s.result()
			s.BestHistory = append(s.BestHistory, best)

			if s.Logger.DebugEnabled() {
				s.Logger.Debugf("solve %s iter %d: best=%.4f inertia=%.3f steady=%t", runID, iter, best.Objective(), inertia, s.steady)
			}

			if s.SatThreshold > 0 && s.globalBestSatisfaction >= s.SatThreshold {
				exitCondition = ExitSatThreshold
				break
			}
		}
	}

	result := s.result()
	s.Logger.Infof("solve %s done: exit=%s best=%.4f steady=%t give_ups=%d", runID, exitCondition, result.Objective(), s.steady, s.CameraMan.SmartSampleGiveUps)
	return result, exitCondition, solveErr
}

func (s *Solver) initSwarm(dim int) {
	s.swarm = make([]Candidate, s.SwarmSize)
	s.globalBestParams = nil
	s.globalBestSatisfaction = EvalOutOfDomain
	s.steady = false

	smartCount := int(float32(s.SwarmSize) * s.SmartSampleRatio)
	for i := 0; i < s.SwarmSize; i++ {
		var params []float32
		switch {
		case i < len(s.InitialCandidates):
			params = append([]float32(nil), s.InitialCandidates[i]...)
		case i < smartCount:
			params = s.CameraMan.SmartSample(s.SmartSampleMaxRetries)
		default:
			params = s.CameraMan.RandomViewpoint()
		}
		s.swarm[i] = newCandidate(dim, params)
		s.evaluateAndPromote(&s.swarm[i], -1)
	}
}

// stepSwarm advances every candidate one PSO iteration.
func (s *Solver) stepSwarm(dim int, inertia, lazyThreshold float32) {
	for i := range s.swarm {
		c := &s.swarm[i]
		for d := 0; d < dim; d++ {
			r1, r2 := s.Rng.Float32(), s.Rng.Float32()
			cognitive := s.Cognitive * r1 * (c.BestParams[d] - c.Params[d])
			social := float32(0)
			if s.globalBestParams != nil {
				social = s.Social * r2 * (s.globalBestParams[d] - c.Params[d])
			}
			v := inertia*c.Velocity[d] + cognitive + social
			if rng := s.paramRanges[d]; rng > 0 {
				v = clampf(v, -rng, rng)
			}
			c.Velocity[d] = v
			c.Params[d] += v
		}
		s.evaluateAndPromote(c, lazyThreshold)
	}
}

// computeSteady reports whether every candidate's velocity has settled to
// within 0.1% of the domain range on every dimension.
func (s *Solver) computeSteady(dim int) bool {
	const tol = 0.001
	for i := range s.swarm {
		v := s.swarm[i].Velocity
		for d := 0; d < dim; d++ {
			if absf(v[d]) > tol*s.paramRanges[d] {
				return false
			}
		}
	}
	return true
}

// evaluateAndPromote evaluates c in place, updates its personal best, and
// promotes it to global best if it beats the current one. Out-of-domain
// and pruned evaluations (negative sentinels) never win a best-update,
// which is the PSO's implicit penalty for leaving the domain.
func (s *Solver) evaluateAndPromote(c *Candidate, lazyThreshold float32) {
	c.Satisfaction = s.CameraMan.Evaluate(c.Params, lazyThreshold)
	if c.Satisfaction < 0 {
		return
	}

	if c.Satisfaction > c.BestSatisfaction {
		c.BestSatisfaction = c.Satisfaction
		copy(c.BestParams, c.Params)
	}
	if c.Satisfaction > s.globalBestSatisfaction {
		s.globalBestSatisfaction = c.Satisfaction
		if s.globalBestParams == nil {
			s.globalBestParams = make([]float32, len(c.Params))
		}
		copy(s.globalBestParams, c.Params)
	}
}

// result builds the Viewpoint for the current global best, re-evaluating
// it once at threshold 0 to recover its per-property satisfactions (the
// shared PropertySet scratch otherwise only reflects whichever candidate
// was evaluated last).
func (s *Solver) result() Viewpoint {
	if s.globalBestParams == nil {
		return s.noSolutionViewpoint()
	}
	_, satisfactions, ratios := s.CameraMan.EvaluateDetailed(s.globalBestParams)
	return Viewpoint{
		Params:         append([]float32(nil), s.globalBestParams...),
		Satisfactions:  satisfactions,
		InScreenRatios: ratios,
	}
}

// noSolutionViewpoint is the documented "no solution" sentinel sized to
// this Solver's own PropertySet: every satisfaction -1, and — for the
// spec's LookAt domain — the literal default params
// [0,0,0, 1,0,0, 0,60] truncated to however many of those are actually
// searched. DomainOrbit has no equivalent literal in the spec, so it gets
// a zero vector of its own dimension instead.
func (s *Solver) noSolutionViewpoint() Viewpoint {
	n := len(s.CameraMan.Properties.Props)
	satisfactions := make([]float32, n)
	for i := range satisfactions {
		satisfactions[i] = -1
	}
	ratios := make([]float32, n)

	dim := s.CameraMan.Dim()
	var params []float32
	if s.CameraMan.Domain.Kind == DomainLookAt {
		sentinel := []float32{0, 0, 0, 1, 0, 0, 0, 60}
		params = append([]float32(nil), sentinel[:dim]...)
	} else {
		params = make([]float32, dim)
	}
	return Viewpoint{Params: params, Satisfactions: satisfactions, InScreenRatios: ratios}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxf32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
