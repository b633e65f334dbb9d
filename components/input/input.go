// Package input provides the operator's handheld controller: two analog sticks, a d-pad and buttons.
package input

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/drivecore/utils"
)

// AxisRange is the largest magnitude an analog stick reports.
const AxisRange = 127

// Control identifies the input (specific Axis or Button) of a controller.
type Control string

// Controls for a two-stick competition controller.
const (
	// Axes. Positive Y is stick forward; positive X is stick right.
	AbsoluteX  Control = "AbsoluteX"
	AbsoluteY  Control = "AbsoluteY"
	AbsoluteRX Control = "AbsoluteRX"
	AbsoluteRY Control = "AbsoluteRY"

	// Face buttons.
	ButtonNorth Control = "ButtonNorth" // X
	ButtonEast  Control = "ButtonEast"  // A
	ButtonSouth Control = "ButtonSouth" // B
	ButtonWest  Control = "ButtonWest"  // Y

	// Shoulder buttons, upper and lower.
	ButtonLT  Control = "ButtonLT"  // L1
	ButtonLT2 Control = "ButtonLT2" // L2
	ButtonRT  Control = "ButtonRT"  // R1
	ButtonRT2 Control = "ButtonRT2" // R2

	// D-pad.
	ButtonDPadUp    Control = "ButtonDPadUp"
	ButtonDPadDown  Control = "ButtonDPadDown"
	ButtonDPadLeft  Control = "ButtonDPadLeft"
	ButtonDPadRight Control = "ButtonDPadRight"
)

// IsAxis reports whether c is an analog axis rather than a button.
func (c Control) IsAxis() bool {
	switch c {
	case AbsoluteX, AbsoluteY, AbsoluteRX, AbsoluteRY:
		return true
	default:
		return false
	}
}

// Controller is the operator's controller as polled once per control cycle.
type Controller interface {
	// Axis returns a stick position in [-AxisRange, AxisRange].
	Axis(ctx context.Context, control Control) (int, error)

	// Button returns whether a button is held.
	Button(ctx context.Context, control Control) (bool, error)
}

// JoystickAxes is one sample of the arcade sticks.
type JoystickAxes struct {
	Speed     int `json:"speed"`
	Direction int `json:"direction"`
}

// TankAxes is one sample of the tank sticks.
type TankAxes struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// ReadArcade samples arcade drive: the right stick's Y axis is speed, the left stick's X axis is direction.
func ReadArcade(ctx context.Context, c Controller) (JoystickAxes, error) {
	speed, err := readAxis(ctx, c, AbsoluteRY)
	if err != nil {
		return JoystickAxes{}, err
	}
	direction, err := readAxis(ctx, c, AbsoluteX)
	if err != nil {
		return JoystickAxes{}, err
	}
	return JoystickAxes{Speed: speed, Direction: direction}, nil
}

// ReadTank samples tank drive: each stick's Y axis drives its side.
func ReadTank(ctx context.Context, c Controller) (TankAxes, error) {
	left, err := readAxis(ctx, c, AbsoluteY)
	if err != nil {
		return TankAxes{}, err
	}
	right, err := readAxis(ctx, c, AbsoluteRY)
	if err != nil {
		return TankAxes{}, err
	}
	return TankAxes{Left: left, Right: right}, nil
}

func readAxis(ctx context.Context, c Controller, control Control) (int, error) {
	v, err := c.Axis(ctx, control)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read %s", control)
	}
	return utils.Trim(v, -AxisRange, AxisRange), nil
}
