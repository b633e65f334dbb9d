// Package robot assembles the drive, mechanisms and closed-loop motion controller from a config and
// the named hardware they are wired to.
package robot

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/drivecore/components/actuator"
	"go.viam.com/drivecore/components/base"
	"go.viam.com/drivecore/components/base/sensorcontrolled"
	"go.viam.com/drivecore/components/input"
	"go.viam.com/drivecore/components/motor"
	"go.viam.com/drivecore/components/movementsensor"
	"go.viam.com/drivecore/components/sensor"
	"go.viam.com/drivecore/config"
	"go.viam.com/drivecore/logging"
	"go.viam.com/drivecore/operation"
	"go.viam.com/drivecore/services/autonomous"
	"go.viam.com/drivecore/services/remotecontrol"
	"go.viam.com/drivecore/utils"
)

// Dependencies is the hardware a robot can be wired to, by name.
type Dependencies struct {
	Motors  map[string]motor.Motor
	Heading movementsensor.HeadingSensor
	Sensors map[string]sensor.Sensor
}

// Option configures a Robot.
type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock times every control loop, wait and timeout on clk.
func WithClock(clk clock.Clock) Option {
	return func(o *options) {
		o.clock = clk
	}
}

// A Robot is the assembled robot.
type Robot struct {
	cfg     config.Config
	chassis *base.Chassis
	motion  *sensorcontrolled.Controller
	intake  *motor.Group
	lift    *actuator.Actuator
	tray    *actuator.Actuator
	heading movementsensor.HeadingSensor
	sensors map[string]sensor.Sensor
	ops     *operation.Manager
	waits   *operation.SingleOperationManager
	clock   clock.Clock
	logger  logging.Logger

	mu     sync.Mutex
	teleop *remotecontrol.Service
}

// New validates cfg and wires the robot to deps.
func New(ctx context.Context, deps Dependencies, cfg config.Config, logger logging.Logger, opts ...Option) (*Robot, error) {
	o := options{clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	if deps.Heading == nil {
		return nil, utils.NewDependencyNotFoundError("heading sensor", cfg.Hardware.Heading)
	}

	hw := cfg.Hardware
	motorByName := func(name string) (motor.Motor, error) {
		m, ok := deps.Motors[name]
		if !ok {
			return nil, utils.NewDependencyNotFoundError("motor", name)
		}
		if lo.Contains(hw.Inverted, name) {
			return motor.Inverted(m), nil
		}
		return m, nil
	}
	group := func(name string, names ...string) (*motor.Group, error) {
		motors := make([]motor.Motor, 0, len(names))
		for _, n := range names {
			m, err := motorByName(n)
			if err != nil {
				return nil, err
			}
			motors = append(motors, m)
		}
		return motor.NewGroup(name, names, motors)
	}
	bind := func(name, motorName string, ac config.ActuatorConfig) (*actuator.Actuator, error) {
		m, err := motorByName(motorName)
		if err != nil {
			return nil, err
		}
		return &actuator.Actuator{
			Name:            name,
			Motor:           m,
			Bounds:          ac.Bounds,
			Policy:          ac.Policy,
			CorrectionSpeed: ac.CorrectionSpeed,
		}, nil
	}

	left, err := group("left", hw.LeftDrive...)
	if err != nil {
		return nil, err
	}
	right, err := group("right", hw.RightDrive...)
	if err != nil {
		return nil, err
	}
	intake, err := group("intake", hw.LeftIntake, hw.RightIntake)
	if err != nil {
		return nil, err
	}
	lift, err := bind("lift", hw.Lift, cfg.Actuators.Lift)
	if err != nil {
		return nil, err
	}
	tray, err := bind("tray", hw.Tray, cfg.Actuators.Tray)
	if err != nil {
		return nil, err
	}

	sensors := map[string]sensor.Sensor{}
	for _, name := range []string{hw.RearUltrasonic, hw.FrontLimitSwitch} {
		if name == "" {
			continue
		}
		s, ok := deps.Sensors[name]
		if !ok {
			return nil, utils.NewDependencyNotFoundError("sensor", name)
		}
		sensors[name] = s
	}

	ops := operation.NewManagerWithClock(o.clock, logger.Sublogger("operations"))
	chassis := base.NewChassis(left, right, cfg.Drive, logger.Sublogger("chassis"))
	r := &Robot{
		cfg:     cfg,
		chassis: chassis,
		motion: sensorcontrolled.NewController(chassis, deps.Heading, cfg.Motion, cfg.Geometry,
			logger.Sublogger("sensorcontrolled"),
			sensorcontrolled.WithClock(o.clock),
			sensorcontrolled.WithOperationManager(ops)),
		intake:  intake,
		lift:    lift,
		tray:    tray,
		heading: deps.Heading,
		sensors: sensors,
		ops:     ops,
		waits:   operation.NewSingleOperationManager(o.clock),
		clock:   o.clock,
		logger:  logger,
	}
	logger.CInfow(ctx, "robot wired",
		"left", hw.LeftDrive, "right", hw.RightDrive, "lift", lift.String(), "tray", tray.String())
	return r, nil
}

// Config returns the config the robot was built from.
func (r *Robot) Config() config.Config {
	return r.cfg
}

// Chassis returns the drive.
func (r *Robot) Chassis() *base.Chassis {
	return r.chassis
}

// Motion returns the closed-loop motion controller.
func (r *Robot) Motion() *sensorcontrolled.Controller {
	return r.motion
}

// Intake returns the intake rollers.
func (r *Robot) Intake() *motor.Group {
	return r.intake
}

// Lift returns the soft-limited lift.
func (r *Robot) Lift() *actuator.Actuator {
	return r.lift
}

// Tray returns the soft-limited tray.
func (r *Robot) Tray() *actuator.Actuator {
	return r.tray
}

// SensorByName returns the named sensor.
func (r *Robot) SensorByName(name string) (sensor.Sensor, bool) {
	s, ok := r.sensors[name]
	return s, ok
}

// Operations returns the registry of running motions.
func (r *Robot) Operations() *operation.Manager {
	return r.ops
}

// Initialize resets the heading sensor, if it can be, and waits for it to finish calibrating
// within the configured calibration timeout.
func (r *Robot) Initialize(ctx context.Context) error {
	c, ok := r.heading.(movementsensor.Calibrator)
	if !ok {
		return nil
	}
	motion := r.cfg.Motion
	if timeout := motion.CalibrationTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = r.clock.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := r.clock.Now()
	if err := movementsensor.Calibrate(ctx, c, r.clock, motion.CalibrationPollPeriod()); err != nil {
		return errors.Wrap(err, "heading sensor did not calibrate")
	}
	r.logger.CInfow(ctx, "heading sensor calibrated", "elapsed", r.clock.Since(start))
	return nil
}

// Mechanisms returns the outputs operator control drives.
func (r *Robot) Mechanisms() remotecontrol.Mechanisms {
	return remotecontrol.Mechanisms{
		Chassis: r.chassis,
		Intake:  r.intake,
		Lift:    r.lift,
		Tray:    r.tray,
	}
}

// StartRemoteControl starts operator control from controller, replacing any running session.
func (r *Robot) StartRemoteControl(ctx context.Context, controller input.Controller) (*remotecontrol.Service, error) {
	svc, err := remotecontrol.New(controller, r.Mechanisms(), r.cfg.Operator,
		r.logger.Sublogger("remotecontrol"), remotecontrol.WithClock(r.clock))
	if err != nil {
		return nil, err
	}
	if err := r.stopRemoteControl(ctx); err != nil {
		r.logger.CWarnw(ctx, "failed to stop previous remote control", "error", err)
	}
	if err := r.motion.Stop(ctx); err != nil {
		r.logger.CWarnw(ctx, "failed to stop motion before remote control", "error", err)
	}
	r.mu.Lock()
	r.teleop = svc
	r.mu.Unlock()
	svc.Start()
	return svc, nil
}

func (r *Robot) stopRemoteControl(ctx context.Context) error {
	r.mu.Lock()
	svc := r.teleop
	r.teleop = nil
	r.mu.Unlock()
	if svc == nil {
		return nil
	}
	return svc.Close(ctx)
}

// AutonomousEnv returns what autonomous steps act on.
func (r *Robot) AutonomousEnv() *autonomous.Env {
	return &autonomous.Env{
		Motion:  r.motion,
		Chassis: r.chassis,
		Intake:  r.intake,
		Sensors: r.sensors,
		Waits:   r.waits,
		Clock:   r.clock,
		Logger:  r.logger.Sublogger("autonomous"),
	}
}

// RunAutonomous stops operator control and runs the named routine to completion.
func (r *Robot) RunAutonomous(ctx context.Context, routines autonomous.Routines, name string) error {
	routine, err := routines.Lookup(name)
	if err != nil {
		return err
	}
	if err := r.stopRemoteControl(ctx); err != nil {
		return err
	}
	return routine.Run(ctx, r.AutonomousEnv())
}

// Close stops operator control, cancels any motion and stops every mechanism.
func (r *Robot) Close(ctx context.Context) error {
	r.ops.CancelAll()
	return multierr.Combine(
		r.stopRemoteControl(ctx),
		r.motion.Stop(ctx),
		errors.Wrap(r.intake.SetSpeed(ctx, 0), "failed to stop intake"),
		r.lift.Stop(ctx),
		r.tray.Stop(ctx),
	)
}
