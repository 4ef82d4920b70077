// Package presets bundles common shot-framing properties (close-up,
// medium, wide, eye-level...) as ready-to-use viewcam.Property values, the
// same parameter-bundle convenience the teacher's preset module offered
// for entity/camera state, just without any file or JSON round-trip —
// camera presets here are pure in-memory constructors.
package presets

import "github.com/gekko3d/viewcam"

// CloseUp builds a Size property favoring a target filling most of the
// frame (area ratio peaking around 0.6-1.0).
func CloseUp(target int, cost float32) (*viewcam.Property, error) {
	spline, err := viewcam.NewSatSpline(
		[]float32{0, 0.35, 0.6, 1},
		[]float32{0, 0.4, 1, 1},
	)
	if err != nil {
		return nil, err
	}
	return viewcam.NewSizeProperty([]int{target}, viewcam.SizeModeArea, spline, cost)
}

// MediumShot favors a target occupying a moderate fraction of the frame
// (area ratio peaking around 0.15-0.35).
func MediumShot(target int, cost float32) (*viewcam.Property, error) {
	spline, err := viewcam.NewSatSpline(
		[]float32{0, 0.05, 0.15, 0.35, 0.55},
		[]float32{0, 0.5, 1, 1, 0.2},
	)
	if err != nil {
		return nil, err
	}
	return viewcam.NewSizeProperty([]int{target}, viewcam.SizeModeArea, spline, cost)
}

// WideShot favors a target occupying a small fraction of the frame, with
// room for surrounding context (area ratio peaking around 0.02-0.1).
func WideShot(target int, cost float32) (*viewcam.Property, error) {
	spline, err := viewcam.NewSatSpline(
		[]float32{0, 0.01, 0.02, 0.1, 0.3},
		[]float32{0, 0.6, 1, 1, 0.1},
	)
	if err != nil {
		return nil, err
	}
	return viewcam.NewSizeProperty([]int{target}, viewcam.SizeModeArea, spline, cost)
}

// EyeLevel favors cameras at roughly the same height as the target
// (vertical-world angle near 90 degrees).
func EyeLevel(target int, cost float32) (*viewcam.Property, error) {
	spline, err := viewcam.NewSatSpline(
		[]float32{0, 60, 90, 120, 180},
		[]float32{0, 0.2, 1, 0.2, 0},
	)
	if err != nil {
		return nil, err
	}
	return viewcam.NewOrientationProperty(target, viewcam.OrientationVerticalWorld, spline, cost)
}

// HighAngle favors cameras looking down at the target from above.
func HighAngle(target int, cost float32) (*viewcam.Property, error) {
	spline, err := viewcam.NewSatSpline(
		[]float32{0, 20, 45, 70},
		[]float32{1, 1, 0.3, 0},
	)
	if err != nil {
		return nil, err
	}
	return viewcam.NewOrientationProperty(target, viewcam.OrientationVerticalWorld, spline, cost)
}

// LowAngle favors cameras looking up at the target from below.
func LowAngle(target int, cost float32) (*viewcam.Property, error) {
	spline, err := viewcam.NewSatSpline(
		[]float32{110, 135, 160, 180},
		[]float32{0, 0.3, 1, 1},
	)
	if err != nil {
		return nil, err
	}
	return viewcam.NewOrientationProperty(target, viewcam.OrientationVerticalWorld, spline, cost)
}

// NoOcclusion builds an Occlusion property favoring fully unoccluded
// visibility of target (occlusion ratio near 0).
func NoOcclusion(target int, cost float32) (*viewcam.Property, error) {
	spline, err := viewcam.NewSatSpline(
		[]float32{0, 0.2, 0.5, 1},
		[]float32{1, 0.6, 0.1, 0},
	)
	if err != nil {
		return nil, err
	}
	return viewcam.NewOcclusionProperty(target, false, false, 0, spline, cost)
}
