package autonomous

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/drivecore/components/sensor"
	"go.viam.com/drivecore/utils"
)

// DriveStep drives a heading-held straight line.
type DriveStep struct {
	Distance float64
	Speed    int
}

// Run drives the step's distance.
func (s DriveStep) Run(ctx context.Context, env *Env) error {
	_, err := env.Motion.DriveStraight(ctx, s.Distance, s.Speed)
	return err
}

func (s DriveStep) String() string {
	return fmt.Sprintf("drive %v at %d", s.Distance, s.Speed)
}

// ProfiledDriveStep drives a straight line on the velocity profile.
type ProfiledDriveStep struct {
	Distance float64
}

// Run drives the step's distance.
func (s ProfiledDriveStep) Run(ctx context.Context, env *Env) error {
	_, err := env.Motion.DriveProfiled(ctx, s.Distance)
	return err
}

func (s ProfiledDriveStep) String() string {
	return fmt.Sprintf("profiled drive %v", s.Distance)
}

// TurnStep turns in place, to an absolute heading or by a relative amount.
type TurnStep struct {
	Degrees  float64
	Relative bool
}

// Run turns.
func (s TurnStep) Run(ctx context.Context, env *Env) error {
	var err error
	if s.Relative {
		_, err = env.Motion.TurnBy(ctx, s.Degrees)
	} else {
		_, err = env.Motion.Turn(ctx, s.Degrees)
	}
	return err
}

func (s TurnStep) String() string {
	if s.Relative {
		return fmt.Sprintf("turn by %v", s.Degrees)
	}
	return fmt.Sprintf("turn to %v", s.Degrees)
}

// TimedDriveStep drives the sides open loop for a fixed time, then stops the drive. Equal sides
// drive straight; opposite sides spin in place.
type TimedDriveStep struct {
	Left     int
	Right    int
	Duration time.Duration
}

// Run commands the sides and waits out the duration.
func (s TimedDriveStep) Run(ctx context.Context, env *Env) error {
	if err := env.Chassis.SetDriveSpeed(ctx, s.Left, s.Right); err != nil {
		return multierr.Combine(err, env.Chassis.Stop(context.WithoutCancel(ctx)))
	}
	finished := env.Waits.NewTimedWaitOp(ctx, s.Duration)
	if err := env.Chassis.Stop(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	if !finished {
		return errors.Wrap(contextErr(ctx), "timed drive interrupted")
	}
	return nil
}

func (s TimedDriveStep) String() string {
	return fmt.Sprintf("drive %d/%d for %v", s.Left, s.Right, s.Duration)
}

// IntakeStep sets the intake speed and leaves it running.
type IntakeStep struct {
	Speed int
}

// Run sets the intake.
func (s IntakeStep) Run(ctx context.Context, env *Env) error {
	return errors.Wrap(env.Intake.SetSpeed(ctx, s.Speed), "failed to set intake")
}

func (s IntakeStep) String() string {
	return fmt.Sprintf("intake %d", s.Speed)
}

// WaitStep pauses the routine.
type WaitStep struct {
	Duration time.Duration
}

// Run waits out the duration.
func (s WaitStep) Run(ctx context.Context, env *Env) error {
	if !env.Waits.NewTimedWaitOp(ctx, s.Duration) {
		return errors.Wrap(contextErr(ctx), "wait interrupted")
	}
	return nil
}

func (s WaitStep) String() string {
	return fmt.Sprintf("wait %v", s.Duration)
}

// DriveUntilStep drives both sides at Speed until the named sensor reads at or above Threshold,
// polling every PollPeriod. A positive Timeout bounds the drive.
type DriveUntilStep struct {
	Speed      int
	Sensor     string
	Threshold  int
	PollPeriod time.Duration
	Timeout    time.Duration
}

// Run drives until the sensor trips.
func (s DriveUntilStep) Run(ctx context.Context, env *Env) error {
	sens, ok := env.Sensors[s.Sensor]
	if !ok {
		return utils.NewDependencyNotFoundError("sensor", s.Sensor)
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = env.clock().WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	if err := env.Chassis.SetSpeed(ctx, s.Speed); err != nil {
		return multierr.Combine(err, env.Chassis.Stop(context.WithoutCancel(ctx)))
	}
	err := env.Waits.WaitForSuccess(ctx, s.PollPeriod, func(ctx context.Context) (bool, error) {
		return sensor.AtOrAbove(ctx, sens, s.Threshold)
	})
	return multierr.Combine(err, env.Chassis.Stop(context.WithoutCancel(ctx)))
}

func (s DriveUntilStep) String() string {
	return fmt.Sprintf("drive at %d until %s >= %d", s.Speed, s.Sensor, s.Threshold)
}

// contextErr is ctx's error, or a cancellation if the wait was preempted by another operation.
func contextErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return context.Canceled
}
