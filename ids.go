package viewcam

import "github.com/google/uuid"

// ObjectID identifies a renderable or collider in the host scene. It is
// opaque to this package and defined entirely by the Scene Oracle's caller.
type ObjectID string

// newRunID stamps a Solver.Solve invocation for log correlation, the same
// id-per-resource convention the host engine uses for asset handles.
func newRunID() string {
	return uuid.NewString()
}
