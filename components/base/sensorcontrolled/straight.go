package sensorcontrolled

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/drivecore/utils"
)

// DriveStraight drives distance units holding the heading captured at the start. The sign of
// distance picks the direction and |speed| is the base command. The heading error, scaled by the
// straight heading gain, is added to the left side and taken from the right.
func (c *Controller) DriveStraight(ctx context.Context, distance float64, speed int) (Result, error) {
	cfg := c.motion.Straight
	base := speedSign(distance) * utils.AbsInt(speed)
	target := math.Abs(distance) * c.geometry.TicksPerUnit()
	return c.run(ctx, "DriveStraight", distance, cfg.Timeout(), func(ctx context.Context, res *Result) error {
		return c.holdHeading(ctx, res, target, cfg.HeadingGain, cfg.CyclePeriod(), func(float64) int {
			return base
		})
	})
}

// holdHeading runs the shared straight-line loop: until the mean drive encoder magnitude reaches
// target it commands baseSpeed(ticks) corrected by gain times the heading error.
func (c *Controller) holdHeading(
	ctx context.Context,
	res *Result,
	target, gain float64,
	period time.Duration,
	baseSpeed func(ticks float64) int,
) error {
	if err := c.chassis.ResetPositions(ctx); err != nil {
		return err
	}
	initial, err := c.readHeading(ctx)
	if err != nil {
		return err
	}

	ticker := c.clock.Ticker(period)
	defer ticker.Stop()
	for {
		avg, err := c.chassis.AveragePosition(ctx)
		if err != nil {
			return err
		}
		travelled := math.Abs(avg)
		res.FinalError = target - travelled
		if travelled >= target {
			res.Reached = true
			return nil
		}

		h, err := c.readHeading(ctx)
		if err != nil {
			return err
		}
		correction := gain * (initial - h)
		speed := float64(baseSpeed(travelled))
		left := utils.TruncToInt(speed + correction)
		right := utils.TruncToInt(speed - correction)
		if err := c.chassis.SetDriveSpeed(ctx, left, right); err != nil {
			return errors.Wrap(err, "failed to command straight drive")
		}
		res.Iterations++

		if err := waitCycle(ctx, ticker); err != nil {
			return err
		}
	}
}

func speedSign(distance float64) int {
	if distance < 0 {
		return -1
	}
	return 1
}
