// Package actuator enforces software position limits on mechanisms that have no physical hard stop.
package actuator

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/drivecore/components/motor"
	"go.viam.com/drivecore/utils"
)

// Bounds is the range of encoder positions an actuator may occupy.
type Bounds struct {
	Lower int `json:"lower"`
	Upper int `json:"upper"`
}

// Validate ensures the bounds describe a non-empty range.
func (b Bounds) Validate(path string) error {
	if b.Lower > b.Upper {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("lower bound %d is above upper bound %d", b.Lower, b.Upper))
	}
	return nil
}

// Policy selects how an actuator behaves at a bound.
type Policy string

const (
	// PolicyHardStop refuses motion further past a bound.
	PolicyHardStop Policy = "hard_stop"
	// PolicyForceCorrect actively drives back inside the bounds, for mechanisms that would
	// otherwise sag or stall against a limit.
	PolicyForceCorrect Policy = "force_correct"
	// PolicyNone passes every command through.
	PolicyNone Policy = "none"
)

// Validate ensures the policy is known. The zero value means PolicyHardStop.
func (p Policy) Validate(path string) error {
	switch p {
	case "", PolicyHardStop, PolicyForceCorrect, PolicyNone:
		return nil
	default:
		return goutils.NewConfigValidationError(path, errors.Errorf("unknown limit policy %q", p))
	}
}

// HardStop returns the speed to command given the current position: zero when speed would move
// further past a bound already reached, speed otherwise.
func HardStop(position, speed int, b Bounds) int {
	if (position <= b.Lower && speed < 0) || (position >= b.Upper && speed > 0) {
		return 0
	}
	return speed
}

// ForceCorrect returns the speed to command given the current position: at or below the lower
// bound a non-positive request becomes +correction, at or above the upper bound a non-negative
// request becomes -correction, and anything else passes through.
func ForceCorrect(position, speed, correction int, b Bounds) int {
	correction = utils.AbsInt(correction)
	switch {
	case position <= b.Lower && speed <= 0:
		return correction
	case position >= b.Upper && speed >= 0:
		return -correction
	default:
		return speed
	}
}

// LimitMotor reads m's position once, applies HardStop, and commands the result.
// It returns the speed actually commanded.
func LimitMotor(ctx context.Context, m motor.Motor, speed int, b Bounds) (int, error) {
	position, err := m.Position(ctx)
	if err != nil {
		return 0, err
	}
	out := HardStop(position, motor.ClampSpeed(speed), b)
	return out, m.SetSpeed(ctx, out)
}

// ForceLimitMotor reads m's position once, applies ForceCorrect, and commands the result.
// It returns the speed actually commanded.
func ForceLimitMotor(ctx context.Context, m motor.Motor, speed, correctionSpeed int, b Bounds) (int, error) {
	position, err := m.Position(ctx)
	if err != nil {
		return 0, err
	}
	out := ForceCorrect(position, motor.ClampSpeed(speed), motor.ClampSpeed(correctionSpeed), b)
	return out, m.SetSpeed(ctx, out)
}

// An Actuator is a motor-driven mechanism bound to a position range, such as a lift or a tray.
type Actuator struct {
	Name            string
	Motor           motor.Motor
	Bounds          Bounds
	Policy          Policy
	CorrectionSpeed int
}

// SetSpeed commands speed through the actuator's limit policy and returns the speed actually commanded.
func (a *Actuator) SetSpeed(ctx context.Context, speed int) (int, error) {
	var (
		out int
		err error
	)
	switch a.policy() {
	case PolicyForceCorrect:
		out, err = ForceLimitMotor(ctx, a.Motor, speed, a.CorrectionSpeed, a.Bounds)
	case PolicyNone:
		out = motor.ClampSpeed(speed)
		err = a.Motor.SetSpeed(ctx, out)
	default:
		out, err = LimitMotor(ctx, a.Motor, speed, a.Bounds)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "actuator %s", a.Name)
	}
	return out, nil
}

// Stop commands zero without consulting the limits.
func (a *Actuator) Stop(ctx context.Context) error {
	return errors.Wrapf(a.Motor.SetSpeed(ctx, 0), "actuator %s", a.Name)
}

// Position returns the actuator's encoder reading.
func (a *Actuator) Position(ctx context.Context) (int, error) {
	return a.Motor.Position(ctx)
}

func (a *Actuator) String() string {
	return fmt.Sprintf("%s[%d, %d] %s", a.Name, a.Bounds.Lower, a.Bounds.Upper, a.policy())
}

func (a *Actuator) policy() Policy {
	if a.Policy == "" {
		return PolicyHardStop
	}
	return a.Policy
}
