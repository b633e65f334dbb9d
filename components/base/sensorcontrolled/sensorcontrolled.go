// Package sensorcontrolled drives the chassis in closed loop against its encoders and heading
// sensor: heading-held straight drives, velocity-profiled drives and two-phase PID point turns.
package sensorcontrolled

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/drivecore/components/base"
	"go.viam.com/drivecore/components/movementsensor"
	"go.viam.com/drivecore/config"
	"go.viam.com/drivecore/control"
	"go.viam.com/drivecore/logging"
	"go.viam.com/drivecore/operation"
	"go.viam.com/drivecore/utils"
)

// ErrTimedOut is returned when a motion does not finish within its timeout or iteration cap.
var ErrTimedOut = errors.New("motion timed out")

// Result describes how a motion ended.
type Result struct {
	Reached    bool `json:"reached"`
	Iterations int  `json:"iterations"`
	// FinalError is degrees of heading for turns and ticks of distance for drives.
	FinalError  float64       `json:"final_error"`
	Elapsed     time.Duration `json:"elapsed"`
	OperationID uuid.UUID     `json:"operation_id"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock times control cycles and timeouts on clk.
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) {
		c.clock = clk
	}
}

// WithOperationManager registers motions with ops.
func WithOperationManager(ops *operation.Manager) Option {
	return func(c *Controller) {
		c.ops = ops
	}
}

// A Controller runs closed-loop motions on a chassis. Only one motion runs at a time: starting a
// new one cancels the one in progress.
type Controller struct {
	chassis  *base.Chassis
	heading  movementsensor.HeadingSensor
	motion   config.MotionConfig
	geometry config.GeometryConfig
	profile  control.VelocityProfile
	opMgr    *operation.SingleOperationManager
	ops      *operation.Manager
	clock    clock.Clock
	logger   logging.Logger
}

// NewController returns a controller driving chassis against heading.
func NewController(
	chassis *base.Chassis,
	heading movementsensor.HeadingSensor,
	motion config.MotionConfig,
	geometry config.GeometryConfig,
	logger logging.Logger,
	opts ...Option,
) *Controller {
	c := &Controller{
		chassis:  chassis,
		heading:  heading,
		motion:   motion,
		geometry: geometry,
		profile:  control.NewVelocityProfile(motion.Profile.Control(geometry)),
		clock:    clock.New(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.ops == nil {
		c.ops = operation.NewManagerWithClock(c.clock, logger)
	}
	c.opMgr = operation.NewSingleOperationManager(c.clock)
	return c
}

// Profile returns the velocity profile used by DriveProfiled.
func (c *Controller) Profile() control.VelocityProfile {
	return c.profile
}

// IsMoving reports whether a motion is running.
func (c *Controller) IsMoving() bool {
	return c.opMgr.OpRunning()
}

// Stop cancels any running motion and stops the drive.
func (c *Controller) Stop(ctx context.Context) error {
	c.opMgr.CancelRunning(ctx)
	return c.chassis.Stop(ctx)
}

// run executes one motion under the single-operation manager and the given timeout, and always
// stops the drive afterward.
func (c *Controller) run(
	ctx context.Context,
	method string,
	target float64,
	timeout time.Duration,
	motion func(ctx context.Context, res *Result) error,
) (Result, error) {
	ctx, done := c.opMgr.New(ctx)
	defer done()
	ctx, cleanup := c.ops.Create(ctx, method, target)
	defer cleanup()

	parent := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = c.clock.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res := Result{OperationID: operation.Get(ctx).ID}
	opID := res.OperationID.String()
	start := c.clock.Now()
	stopSlowLogger := utils.SlowLogger(ctx, c.clock, "motion still running", "op", opID, c.logger)
	defer stopSlowLogger()
	c.logger.CDebugw(ctx, "motion started", "op", opID, "method", method, "target", target)

	err := motion(ctx, &res)
	if err != nil && parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrTimedOut) {
		err = multierr.Combine(ErrTimedOut, err)
	}
	err = multierr.Combine(err, c.chassis.Stop(context.WithoutCancel(ctx)))
	res.Elapsed = c.clock.Since(start)

	c.logger.CInfow(ctx, "motion finished",
		"op", opID,
		"method", method,
		"target", target,
		"reached", res.Reached,
		"iterations", res.Iterations,
		"final_error", res.FinalError,
		"elapsed", res.Elapsed,
	)
	return res, err
}

// readHeading returns the next valid heading, waiting for the sensor if it is not ready.
func (c *Controller) readHeading(ctx context.Context) (float64, error) {
	return movementsensor.WaitForValidHeading(ctx, c.heading, c.clock, c.motion.HeadingPollPeriod())
}

// waitCycle blocks until the ticker fires or ctx ends.
func waitCycle(ctx context.Context, ticker *clock.Ticker) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ticker.C:
		return nil
	}
}
