package viewcam

// Candidate is one particle in the swarm: its current position in
// parameter space, its velocity, and its personal best. Params and
// Velocity are fixed-length and mutated in place every iteration so the
// swarm update itself allocates no new candidate state beyond the
// one-time swarm setup.
type Candidate struct {
	Params   []float32
	Velocity []float32

	Satisfaction float32

	BestParams       []float32
	BestSatisfaction float32
}

func newCandidate(dim int, params []float32) Candidate {
	return Candidate{
		Params:           params,
		Velocity:         make([]float32, dim),
		Satisfaction:     EvalOutOfDomain,
		BestParams:       append([]float32(nil), params...),
		BestSatisfaction: EvalOutOfDomain,
	}
}
