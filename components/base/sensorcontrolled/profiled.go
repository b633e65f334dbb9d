package sensorcontrolled

import (
	"context"
	"math"

	"go.viam.com/drivecore/utils"
)

// DriveProfiled drives distance units with the base speed taken from the velocity profile each
// cycle, never below the ramp floor, holding the starting heading like DriveStraight.
func (c *Controller) DriveProfiled(ctx context.Context, distance float64) (Result, error) {
	cfg := c.motion.Profile
	sign := float64(speedSign(distance))
	target := c.profile.TargetTicks(distance)
	return c.run(ctx, "DriveProfiled", distance, cfg.Timeout(), func(ctx context.Context, res *Result) error {
		return c.holdHeading(ctx, res, target, cfg.HeadingGain, cfg.CyclePeriod(), func(ticks float64) int {
			speed := math.Max(c.profile.Speed(ticks, distance), cfg.RampFloor)
			return utils.TruncToInt(sign * speed)
		})
	})
}
