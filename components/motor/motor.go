// Package motor defines the speed-commanded, encoder-reporting motors the drive and mechanisms are built from.
package motor

import (
	"context"

	"go.viam.com/drivecore/utils"
)

// MaxSpeed is the largest speed magnitude a motor accepts.
const MaxSpeed = 127

// A Motor is a speed-controlled motor with an integrated encoder.
//
// SetSpeed example:
//
//	// Drive forward at half speed.
//	err := myMotor.SetSpeed(ctx, 64)
//
// Position example:
//
//	// Read the encoder, in ticks since the last zero.
//	ticks, err := myMotor.Position(ctx)
type Motor interface {
	// SetSpeed commands a signed speed in [-MaxSpeed, MaxSpeed]. Negative is backward.
	SetSpeed(ctx context.Context, speed int) error

	// Position reports encoder ticks relative to the last zero.
	Position(ctx context.Context) (int, error)

	// ResetZeroPosition makes the current encoder reading the new zero.
	ResetZeroPosition(ctx context.Context) error
}

// ClampSpeed bounds a speed to [-MaxSpeed, MaxSpeed].
func ClampSpeed(speed int) int {
	return utils.Trim(speed, -MaxSpeed, MaxSpeed)
}

// Inverted returns a motor whose speed and position are negated, for motors mounted mirrored to their partner.
func Inverted(m Motor) Motor {
	if inv, ok := m.(*inverted); ok {
		return inv.Motor
	}
	return &inverted{Motor: m}
}

type inverted struct {
	Motor
}

func (i *inverted) SetSpeed(ctx context.Context, speed int) error {
	return i.Motor.SetSpeed(ctx, -speed)
}

func (i *inverted) Position(ctx context.Context) (int, error) {
	pos, err := i.Motor.Position(ctx)
	return -pos, err
}
