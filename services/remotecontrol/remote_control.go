// Package remotecontrol implements the operator control loop: each cycle it reads the handheld
// controller and commands the drive, intake, lift and tray.
package remotecontrol

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/drivecore/components/actuator"
	"go.viam.com/drivecore/components/base"
	"go.viam.com/drivecore/components/input"
	"go.viam.com/drivecore/components/motor"
	"go.viam.com/drivecore/config"
	"go.viam.com/drivecore/logging"
	"go.viam.com/drivecore/utils"
)

// Button bindings.
const (
	ArcadeButton  = input.ButtonNorth
	TankButton    = input.ButtonSouth
	NoLimitButton = input.ButtonEast

	IntakeInButton  = input.ButtonLT
	IntakeOutButton = input.ButtonLT2

	LiftUpButton   = input.ButtonDPadUp
	LiftDownButton = input.ButtonDPadDown

	TrayRaiseButton = input.ButtonRT
	TrayLowerButton = input.ButtonRT2
)

// Mechanisms are the outputs the operator drives.
type Mechanisms struct {
	Chassis *base.Chassis
	Intake  motor.Motor
	Lift    *actuator.Actuator
	Tray    *actuator.Actuator
}

// Validate ensures every mechanism is present.
func (m Mechanisms) Validate() error {
	switch {
	case m.Chassis == nil:
		return errors.New("remote control needs a chassis")
	case m.Intake == nil:
		return errors.New("remote control needs an intake")
	case m.Lift == nil:
		return errors.New("remote control needs a lift")
	case m.Tray == nil:
		return errors.New("remote control needs a tray")
	}
	return nil
}

// Status is what one cycle commanded.
type Status struct {
	Mode    base.DriveMode     `json:"mode"`
	NoLimit bool               `json:"no_limit"`
	Drive   base.MotionCommand `json:"drive"`
	Intake  int                `json:"intake"`
	Lift    int                `json:"lift"`
	Tray    int                `json:"tray"`
}

// Option configures a Service.
type Option func(*Service)

// WithClock runs the control loop on clk.
func WithClock(clk clock.Clock) Option {
	return func(s *Service) {
		s.clock = clk
	}
}

// A Service runs operator control. Step runs one cycle; Start runs cycles in the background until
// Close.
type Service struct {
	controller input.Controller
	mech       Mechanisms
	cfg        config.OperatorConfig
	clock      clock.Clock
	logger     logging.Logger

	mu      sync.Mutex
	mode    base.DriveMode
	last    Status
	workers *goutils.StoppableWorkers
}

// New returns a stopped operator control service.
func New(
	controller input.Controller,
	mech Mechanisms,
	cfg config.OperatorConfig,
	logger logging.Logger,
	opts ...Option,
) (*Service, error) {
	if controller == nil {
		return nil, errors.New("remote control needs an input controller")
	}
	if err := mech.Validate(); err != nil {
		return nil, err
	}
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}
	s := &Service{
		controller: controller,
		mech:       mech,
		cfg:        cfg,
		clock:      clock.New(),
		logger:     logger,
		mode:       mode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Mode returns the current drive mode.
func (s *Service) Mode() base.DriveMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Status returns what the last cycle commanded.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Step runs one operator control cycle. A failing mechanism does not keep the others from being
// commanded; all failures are returned together.
func (s *Service) Step(ctx context.Context) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs error
	pressed := func(c input.Control) bool {
		down, err := s.controller.Button(ctx, c)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "failed to read %s", c))
			return false
		}
		return down
	}

	if pressed(ArcadeButton) {
		s.setModeLocked(ctx, base.ModeArcade)
	}
	if pressed(TankButton) {
		s.setModeLocked(ctx, base.ModeTank)
	}
	status := Status{Mode: s.mode, NoLimit: pressed(NoLimitButton)}

	drive, err := s.driveLocked(ctx, status.NoLimit)
	errs = multierr.Append(errs, err)
	status.Drive = drive

	switch {
	case pressed(IntakeInButton):
		status.Intake = s.cfg.IntakeSpeed
	case pressed(IntakeOutButton):
		status.Intake = -s.cfg.IntakeSpeed
	}
	errs = multierr.Append(errs, errors.Wrap(s.mech.Intake.SetSpeed(ctx, status.Intake), "intake"))

	lift := 0
	switch {
	case pressed(LiftUpButton):
		lift = s.cfg.LiftUpSpeed
	case pressed(LiftDownButton):
		lift = s.cfg.LiftDownSpeed
	}
	status.Lift, err = s.mech.Lift.SetSpeed(ctx, lift)
	errs = multierr.Append(errs, err)

	tray := 0
	switch {
	case pressed(TrayRaiseButton):
		pos, err := s.mech.Tray.Position(ctx)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrap(err, "failed to read tray position"))
			break
		}
		tray = TrayRaiseSpeed(pos, s.cfg.TrayRaise)
	case pressed(TrayLowerButton):
		tray = s.cfg.TrayLowerSpeed
	}
	status.Tray, err = s.mech.Tray.SetSpeed(ctx, tray)
	errs = multierr.Append(errs, err)

	s.last = status
	return status, errs
}

func (s *Service) setModeLocked(ctx context.Context, mode base.DriveMode) {
	if s.mode == mode {
		return
	}
	s.logger.CInfow(ctx, "drive mode changed", "from", s.mode.String(), "to", mode.String())
	s.mode = mode
}

func (s *Service) driveLocked(ctx context.Context, noLimit bool) (base.MotionCommand, error) {
	if s.mode == base.ModeArcade {
		axes, err := input.ReadArcade(ctx, s.controller)
		if err != nil {
			return base.MotionCommand{}, err
		}
		return s.mech.Chassis.ArcadeDrive(ctx, axes, noLimit)
	}
	axes, err := input.ReadTank(ctx, s.controller)
	if err != nil {
		return base.MotionCommand{}, err
	}
	return s.mech.Chassis.TankDrive(ctx, axes.Left, axes.Right, noLimit)
}

// TrayRaiseSpeed slows the tray as it rises: full speed up to SlowdownStart, then a linear fall
// from MaxSpeed to MinSpeed at SlowdownEnd, never below MinSpeed.
func TrayRaiseSpeed(position int, cfg config.TrayRaiseConfig) int {
	if position <= cfg.SlowdownStart {
		return cfg.MaxSpeed
	}
	speed := utils.TruncToInt(utils.Scale(float64(position),
		float64(cfg.SlowdownStart), float64(cfg.SlowdownEnd), float64(cfg.MaxSpeed), float64(cfg.MinSpeed)))
	return utils.Trim(speed, cfg.MinSpeed, cfg.MaxSpeed)
}

// Start runs Step every cycle period in the background. Starting a running service is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workers != nil {
		return
	}
	period := s.cfg.CyclePeriod()
	s.logger.Infow("operator control started", "cycle_period", period, "mode", s.mode.String())
	s.workers = goutils.NewBackgroundStoppableWorkers(func(ctx context.Context) {
		ticker := s.clock.Ticker(period)
		defer ticker.Stop()
		for {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if _, err := s.Step(ctx); err != nil {
				s.logger.CWarnw(ctx, "operator control cycle failed", "error", err)
			}
		}
	})
}

// Close stops the background loop, if running, and then every mechanism.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	workers := s.workers
	s.workers = nil
	s.mu.Unlock()
	if workers != nil {
		workers.Stop()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = Status{Mode: s.mode}
	return multierr.Combine(
		s.mech.Chassis.Stop(ctx),
		errors.Wrap(s.mech.Intake.SetSpeed(ctx, 0), "intake"),
		s.mech.Lift.Stop(ctx),
		s.mech.Tray.Stop(ctx),
	)
}
