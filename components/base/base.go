// Package base defines the drive chassis: two sides of motors commanded together, shaped from
// operator input or driven directly by closed-loop control.
package base

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/drivecore/components/input"
	"go.viam.com/drivecore/components/motor"
	"go.viam.com/drivecore/control"
	"go.viam.com/drivecore/logging"
)

// DriveMode selects how operator sticks map onto the chassis.
type DriveMode int

const (
	// ModeArcade drives with one stick for speed and the other for direction.
	ModeArcade DriveMode = iota
	// ModeTank drives each side from its own stick.
	ModeTank
)

func (m DriveMode) String() string {
	switch m {
	case ModeArcade:
		return "arcade"
	case ModeTank:
		return "tank"
	default:
		return "unknown"
	}
}

// MotionCommand is the pair of side speeds written to the drive.
type MotionCommand struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// DriveState is the last commanded side speeds, the reference the acceleration limiter steps from.
type DriveState struct {
	LeftSpeed  int `json:"left_speed"`
	RightSpeed int `json:"right_speed"`
}

// DriveConfig tunes operator driving.
type DriveConfig struct {
	DeadbandThreshold int                        `json:"deadband_threshold"`
	Acceleration      control.AccelerationLimits `json:"acceleration"`
	// TurnAuthority scales the direction stick in arcade mode.
	TurnAuthority float64 `json:"turn_authority"`
	// CubicTank applies the cubic response curve in tank mode as well as arcade.
	CubicTank bool `json:"cubic_tank,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *DriveConfig) Validate(path string) error {
	if cfg.DeadbandThreshold < 0 || cfg.DeadbandThreshold >= control.JoystickRange {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("deadband_threshold must be in [0, %d), got %d", control.JoystickRange, cfg.DeadbandThreshold))
	}
	if cfg.Acceleration.Accel <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "acceleration.accel")
	}
	if cfg.Acceleration.Decel <= 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "acceleration.decel")
	}
	if cfg.TurnAuthority <= 0 || cfg.TurnAuthority > 1 {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("turn_authority must be in (0, 1], got %v", cfg.TurnAuthority))
	}
	return nil
}

// A Chassis owns the drive motors and the acceleration-limited drive state.
type Chassis struct {
	mu     sync.Mutex
	left   *motor.Group
	right  *motor.Group
	cfg    DriveConfig
	state  DriveState
	logger logging.Logger
}

// NewChassis returns a stopped chassis over the two sides.
func NewChassis(left, right *motor.Group, cfg DriveConfig, logger logging.Logger) *Chassis {
	return &Chassis{left: left, right: right, cfg: cfg, logger: logger}
}

// Config returns the drive tuning.
func (c *Chassis) Config() DriveConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// State returns the last operator-driven side speeds.
func (c *Chassis) State() DriveState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// TankDrive runs one cycle of tank driving from raw stick values.
func (c *Chassis) TankDrive(ctx context.Context, left, right int, noLimit bool) (MotionCommand, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	leftTarget := control.Deadband(left, c.cfg.DeadbandThreshold)
	rightTarget := control.Deadband(right, c.cfg.DeadbandThreshold)
	if c.cfg.CubicTank {
		leftTarget = control.CubifySpeed(leftTarget)
		rightTarget = control.CubifySpeed(rightTarget)
	}
	return c.commandLocked(ctx, leftTarget, rightTarget, noLimit)
}

// ArcadeDrive runs one cycle of arcade driving from raw stick values.
func (c *Chassis) ArcadeDrive(ctx context.Context, axes input.JoystickAxes, noLimit bool) (MotionCommand, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	speed := control.Deadband(axes.Speed, c.cfg.DeadbandThreshold)
	direction := control.Deadband(axes.Direction, c.cfg.DeadbandThreshold)
	left, right := control.ArcadeMix(speed, direction, c.cfg.TurnAuthority)
	return c.commandLocked(ctx, left, right, noLimit)
}

func (c *Chassis) commandLocked(ctx context.Context, leftTarget, rightTarget int, noLimit bool) (MotionCommand, error) {
	if noLimit {
		c.state.LeftSpeed = motor.ClampSpeed(leftTarget)
		c.state.RightSpeed = motor.ClampSpeed(rightTarget)
	} else {
		c.state.LeftSpeed = motor.ClampSpeed(c.cfg.Acceleration.Limit(c.state.LeftSpeed, leftTarget))
		c.state.RightSpeed = motor.ClampSpeed(c.cfg.Acceleration.Limit(c.state.RightSpeed, rightTarget))
	}
	cmd := MotionCommand{Left: c.state.LeftSpeed, Right: c.state.RightSpeed}
	return cmd, c.writeLocked(ctx, cmd.Left, cmd.Right)
}

// SetDriveSpeed writes side speeds directly, bypassing shaping and the limiter.
func (c *Chassis) SetDriveSpeed(ctx context.Context, left, right int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeLocked(ctx, left, right)
}

// SetSpeed writes the same speed to both sides.
func (c *Chassis) SetSpeed(ctx context.Context, speed int) error {
	return c.SetDriveSpeed(ctx, speed, speed)
}

// Stop halts the drive and forgets the limiter state.
func (c *Chassis) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = DriveState{}
	return c.writeLocked(ctx, 0, 0)
}

func (c *Chassis) writeLocked(ctx context.Context, left, right int) error {
	left = motor.ClampSpeed(left)
	right = motor.ClampSpeed(right)
	c.logger.CDebugw(ctx, "drive", "left", left, "right", right)
	return multierr.Combine(c.left.SetSpeed(ctx, left), c.right.SetSpeed(ctx, right))
}

// ResetPositions zeroes every drive encoder.
func (c *Chassis) ResetPositions(ctx context.Context) error {
	return multierr.Combine(c.left.ResetZeroPosition(ctx), c.right.ResetZeroPosition(ctx))
}

// AveragePosition is the mean encoder reading over every drive motor, in ticks.
func (c *Chassis) AveragePosition(ctx context.Context) (float64, error) {
	left, err := c.left.Positions(ctx)
	if err != nil {
		return 0, err
	}
	right, err := c.right.Positions(ctx)
	if err != nil {
		return 0, err
	}
	all := append(left, right...)
	return float64(lo.Sum(all)) / float64(len(all)), nil
}
