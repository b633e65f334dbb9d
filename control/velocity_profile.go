package control

import (
	"math"

	"github.com/pkg/errors"
)

// ProfileConfig tunes the square-root ramp velocity profile.
type ProfileConfig struct {
	// MaxVelocity is the cruise command.
	MaxVelocity float64 `json:"max_velocity"`
	// TicksToAccelerate is the length of each ramp window in encoder ticks.
	TicksToAccelerate float64 `json:"ticks_to_accelerate"`
	// RampFloor is the command at the very start of a move, so the robot breaks static friction.
	RampFloor float64 `json:"ramp_floor"`
	// WheelCircumference is in the same length unit as the distances handed to Speed.
	WheelCircumference float64 `json:"wheel_circumference"`
	TicksPerRevolution float64 `json:"ticks_per_revolution"`
}

// Validate ensures the profile can produce finite speeds.
func (c ProfileConfig) Validate() error {
	if c.MaxVelocity <= 0 {
		return errors.Errorf("profile max_velocity must be positive, got %v", c.MaxVelocity)
	}
	if c.TicksToAccelerate <= 0 {
		return errors.Errorf("profile ticks_to_accelerate must be positive, got %v", c.TicksToAccelerate)
	}
	if c.WheelCircumference <= 0 || c.TicksPerRevolution <= 0 {
		return errors.New("profile needs a positive wheel_circumference and ticks_per_revolution")
	}
	if c.RampFloor < 0 || c.RampFloor > c.MaxVelocity {
		return errors.Errorf("profile ramp_floor must be within [0, max_velocity], got %v", c.RampFloor)
	}
	return nil
}

// VelocityProfile maps encoder position along a point-to-point move onto a speed command. It is
// stateless: callers re-evaluate it every cycle with a fresh encoder reading.
type VelocityProfile struct {
	cfg ProfileConfig
}

// NewVelocityProfile returns a profile for the given tuning.
func NewVelocityProfile(cfg ProfileConfig) VelocityProfile {
	return VelocityProfile{cfg: cfg}
}

// Config returns the profile's tuning.
func (vp VelocityProfile) Config() ProfileConfig {
	return vp.cfg
}

// TargetTicks converts a distance into encoder ticks.
func (vp VelocityProfile) TargetTicks(distance float64) float64 {
	return math.Abs(distance) / vp.cfg.WheelCircumference * vp.cfg.TicksPerRevolution
}

// IsShort reports whether a move is too short to reach cruise, i.e. shorter than two ramp windows.
func (vp VelocityProfile) IsShort(distance float64) bool {
	return vp.TargetTicks(distance) < 2*vp.cfg.TicksToAccelerate
}

// Speed returns the commanded speed at currentTicks along a move of the given distance.
//
// Long moves ramp from RampFloor to MaxVelocity over the first TicksToAccelerate ticks, cruise,
// then ramp down to zero over the last TicksToAccelerate ticks. Short moves never cruise: they ramp
// to a reduced peak at the midpoint and straight back down. Both ramps follow a square root of the
// fraction of the window covered, which softens the corners of a plain trapezoid.
func (vp VelocityProfile) Speed(currentTicks, distance float64) float64 {
	current := math.Max(0, currentTicks)
	target := vp.TargetTicks(distance)
	if current >= target {
		return 0
	}
	remaining := target - current
	accel := vp.cfg.TicksToAccelerate

	if vp.IsShort(distance) {
		half := target / 2
		peak := vp.cfg.MaxVelocity * math.Sqrt(half/accel)
		if current < half {
			return vp.rampUp(current, half, peak)
		}
		return peak * math.Sqrt(remaining/half)
	}

	switch {
	case current < accel:
		return vp.rampUp(current, accel, vp.cfg.MaxVelocity)
	case remaining < accel:
		return vp.cfg.MaxVelocity * math.Sqrt(remaining/accel)
	default:
		return vp.cfg.MaxVelocity
	}
}

func (vp VelocityProfile) rampUp(current, window, peak float64) float64 {
	floor := math.Min(vp.cfg.RampFloor, peak)
	return floor + (peak-floor)*math.Sqrt(current/window)
}
