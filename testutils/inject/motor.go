package inject

import (
	"context"

	"go.viam.com/drivecore/components/motor"
)

// Motor is an injected motor.
type Motor struct {
	motor.Motor
	SetSpeedFunc          func(ctx context.Context, speed int) error
	PositionFunc          func(ctx context.Context) (int, error)
	ResetZeroPositionFunc func(ctx context.Context) error
}

// NewMotor returns a new injected motor.
func NewMotor() *Motor {
	return &Motor{}
}

// SetSpeed calls the injected SetSpeed or the real version.
func (m *Motor) SetSpeed(ctx context.Context, speed int) error {
	if m.SetSpeedFunc == nil {
		return m.Motor.SetSpeed(ctx, speed)
	}
	return m.SetSpeedFunc(ctx, speed)
}

// Position calls the injected Position or the real version.
func (m *Motor) Position(ctx context.Context) (int, error) {
	if m.PositionFunc == nil {
		return m.Motor.Position(ctx)
	}
	return m.PositionFunc(ctx)
}

// ResetZeroPosition calls the injected ResetZeroPosition or the real version.
func (m *Motor) ResetZeroPosition(ctx context.Context) error {
	if m.ResetZeroPositionFunc == nil {
		return m.Motor.ResetZeroPosition(ctx)
	}
	return m.ResetZeroPositionFunc(ctx)
}
