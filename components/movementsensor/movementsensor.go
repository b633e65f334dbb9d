// Package movementsensor defines the heading sensor closed-loop motion is referenced against.
package movementsensor

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/drivecore/utils"
)

// ErrHeadingNotReady is returned when a heading sensor never produced a usable reading.
var ErrHeadingNotReady = errors.New("heading sensor is not ready")

// A HeadingSensor reports the robot's heading in degrees, increasing clockwise. It is unbounded
// rather than wrapped to [0, 360), so a turn from 350 to 370 is a 20 degree turn.
// Before it is ready it reports NaN or an infinity.
type HeadingSensor interface {
	Heading(ctx context.Context) (float64, error)
}

// A Calibrator is a heading sensor that must be reset and allowed to settle before use.
type Calibrator interface {
	Reset(ctx context.Context) error
	IsCalibrating(ctx context.Context) (bool, error)
}

// ValidHeading reports whether h is a usable reading.
func ValidHeading(h float64) bool {
	return !math.IsNaN(h) && !math.IsInf(h, 0)
}

// WaitForValidHeading polls hs every pollPeriod until it returns a valid reading. If ctx ends first
// the returned error matches both ErrHeadingNotReady and the context's error.
func WaitForValidHeading(
	ctx context.Context,
	hs HeadingSensor,
	clk clock.Clock,
	pollPeriod time.Duration,
) (float64, error) {
	for {
		h, err := hs.Heading(ctx)
		if err != nil {
			return 0, errors.Wrap(err, "failed to read heading")
		}
		if ValidHeading(h) {
			return h, nil
		}
		if !utils.SelectContextOrWaitClock(ctx, clk, pollPeriod) {
			return 0, multierr.Combine(ErrHeadingNotReady, ctx.Err())
		}
	}
}

// Calibrate resets c and blocks until it reports it is no longer calibrating.
func Calibrate(ctx context.Context, c Calibrator, clk clock.Clock, pollPeriod time.Duration) error {
	if err := c.Reset(ctx); err != nil {
		return errors.Wrap(err, "failed to reset heading sensor")
	}
	for {
		calibrating, err := c.IsCalibrating(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to read heading sensor calibration state")
		}
		if !calibrating {
			return nil
		}
		if !utils.SelectContextOrWaitClock(ctx, clk, pollPeriod) {
			return multierr.Combine(ErrHeadingNotReady, ctx.Err())
		}
	}
}
