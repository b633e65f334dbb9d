// Package autonomous runs scripted routines: ordered steps executed strictly one after another,
// each finishing before the next starts.
package autonomous

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/drivecore/components/base"
	"go.viam.com/drivecore/components/base/sensorcontrolled"
	"go.viam.com/drivecore/components/motor"
	"go.viam.com/drivecore/components/sensor"
	"go.viam.com/drivecore/logging"
	"go.viam.com/drivecore/operation"
)

// Env is what steps act on.
type Env struct {
	Motion  *sensorcontrolled.Controller
	Chassis *base.Chassis
	Intake  motor.Motor
	Sensors map[string]sensor.Sensor
	// Waits runs the open-loop timed and polling waits.
	Waits  *operation.SingleOperationManager
	Clock  clock.Clock
	Logger logging.Logger
}

// Validate ensures the env can run every kind of step.
func (env *Env) Validate() error {
	switch {
	case env.Motion == nil:
		return errors.New("autonomous needs a motion controller")
	case env.Chassis == nil:
		return errors.New("autonomous needs a chassis")
	case env.Intake == nil:
		return errors.New("autonomous needs an intake")
	case env.Waits == nil:
		return errors.New("autonomous needs an operation manager")
	case env.Logger == nil:
		return errors.New("autonomous needs a logger")
	}
	return nil
}

func (env *Env) clock() clock.Clock {
	if env.Clock == nil {
		return clock.New()
	}
	return env.Clock
}

// A Step is one action of a routine. Run blocks until the action is complete.
type Step interface {
	fmt.Stringer
	Run(ctx context.Context, env *Env) error
}

// A Routine is a named sequence of steps.
type Routine struct {
	Name  string
	Steps []Step
}

// StepNames describes each step in order.
func (r Routine) StepNames() []string {
	return lo.Map(r.Steps, func(s Step, _ int) string {
		return s.String()
	})
}

// Run executes the steps in order and stops at the first failure. The drive and intake are stopped
// when it returns, whether or not every step ran.
func (r Routine) Run(ctx context.Context, env *Env) (err error) {
	if err := env.Validate(); err != nil {
		return err
	}
	logger := env.Logger
	defer func() {
		stopCtx := context.WithoutCancel(ctx)
		err = multierr.Combine(err,
			env.Motion.Stop(stopCtx),
			errors.Wrap(env.Intake.SetSpeed(stopCtx, 0), "failed to stop intake"),
		)
	}()

	logger.CInfow(ctx, "routine started", "routine", r.Name, "steps", len(r.Steps))
	start := env.clock().Now()
	for i, step := range r.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.CDebugw(ctx, "step started", "routine", r.Name, "step", i, "name", step.String())
		if err := step.Run(ctx, env); err != nil {
			logger.CWarnw(ctx, "step failed", "routine", r.Name, "step", i, "name", step.String(), "error", err)
			return errors.Wrapf(err, "routine %s step %d (%s)", r.Name, i, step)
		}
	}
	logger.CInfow(ctx, "routine finished", "routine", r.Name, "elapsed", env.clock().Since(start))
	return nil
}
