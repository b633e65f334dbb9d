package sensorcontrolled

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"go.viam.com/drivecore/control"
	"go.viam.com/drivecore/utils"
)

// Turn rotates in place to the absolute heading target, in degrees clockwise.
//
// The coarse phase runs the coarse PID until the error is within tolerance. The fine phase retunes
// to the fine gains, drops the integral, and runs at least MinCorrectionIterations cycles and then
// until the error is within tolerance and no longer moving, or MaxFineIterations is reached.
func (c *Controller) Turn(ctx context.Context, target float64) (Result, error) {
	cfg := c.motion.Turn
	return c.run(ctx, "Turn", target, cfg.Timeout(), func(ctx context.Context, res *Result) error {
		return c.turn(ctx, res, target)
	})
}

// TurnBy rotates in place by delta degrees relative to the current heading.
func (c *Controller) TurnBy(ctx context.Context, delta float64) (Result, error) {
	cfg := c.motion.Turn
	return c.run(ctx, "TurnBy", delta, cfg.Timeout(), func(ctx context.Context, res *Result) error {
		start, err := c.readHeading(ctx)
		if err != nil {
			return err
		}
		return c.turn(ctx, res, start+delta)
	})
}

func (c *Controller) turn(ctx context.Context, res *Result, target float64) error {
	cfg := c.motion.Turn
	h, err := c.readHeading(ctx)
	if err != nil {
		return err
	}
	res.FinalError = target - h

	pid := control.NewPID(cfg.Coarse)
	pid.Reset(target - h)

	ticker := c.clock.Ticker(cfg.CyclePeriod())
	defer ticker.Stop()

	measure := func() (float64, error) {
		h, err := c.readHeading(ctx)
		if err != nil {
			return 0, err
		}
		res.FinalError = target - h
		return res.FinalError, nil
	}
	command := func(e float64) (float64, error) {
		out, derivative := pid.Next(e)
		v := utils.TruncToInt(out)
		if err := c.chassis.SetDriveSpeed(ctx, v, -v); err != nil {
			return 0, errors.Wrap(err, "failed to command turn")
		}
		res.Iterations++
		return derivative, waitCycle(ctx, ticker)
	}

	// coarse phase checks tolerance before commanding, so a turn starting within it goes straight
	// to the fine phase
	for coarse := 0; ; coarse++ {
		e, err := measure()
		if err != nil {
			return err
		}
		if math.Abs(e) <= cfg.Tolerance {
			break
		}
		if cfg.MaxCoarseIterations > 0 && coarse >= cfg.MaxCoarseIterations {
			return errors.Wrapf(ErrTimedOut, "coarse turn did not come within %v degrees in %d cycles",
				cfg.Tolerance, cfg.MaxCoarseIterations)
		}
		if _, err := command(e); err != nil {
			return err
		}
	}

	pid.Retune(cfg.Fine)
	pid.ResetIntegral()
	for fine := 1; ; fine++ {
		e, err := measure()
		if err != nil {
			return err
		}
		derivative, err := command(e)
		if err != nil {
			return err
		}
		settled := math.Abs(e) <= cfg.Tolerance && math.Abs(derivative) <= cfg.SettleDerivative
		if fine >= cfg.MaxFineIterations || (fine >= cfg.MinCorrectionIterations && settled) {
			break
		}
	}

	// the robot coasts after the last command; report where it actually stopped
	if err := c.chassis.Stop(ctx); err != nil {
		return err
	}
	h, err = c.readHeading(ctx)
	if err != nil {
		return err
	}
	res.FinalError = target - h
	res.Reached = math.Abs(res.FinalError) <= cfg.Tolerance
	return nil
}
