// Package sensor defines the simple scalar sensors (range finders, limit switches, line sensors) a robot polls.
package sensor

import (
	"context"

	"github.com/pkg/errors"
)

// A Sensor returns a single integer reading, such as a distance in millimeters or a switch state.
type Sensor interface {
	Value(ctx context.Context) (int, error)
}

// AtOrAbove reports whether s currently reads at least threshold.
func AtOrAbove(ctx context.Context, s Sensor, threshold int) (bool, error) {
	v, err := s.Value(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to read sensor")
	}
	return v >= threshold, nil
}

// Pressed reports whether a digital sensor such as a limit switch reads nonzero.
func Pressed(ctx context.Context, s Sensor) (bool, error) {
	return AtOrAbove(ctx, s, 1)
}
