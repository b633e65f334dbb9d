// Package config defines the structures to configure a robot's drive, motion control, mechanisms
// and the hardware they are wired to.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.viam.com/utils"

	"go.viam.com/drivecore/components/actuator"
	"go.viam.com/drivecore/components/base"
	"go.viam.com/drivecore/control"
)

// A Config describes the configuration of a robot.
type Config struct {
	Drive     base.DriveConfig `json:"drive"`
	Geometry  GeometryConfig   `json:"geometry"`
	Motion    MotionConfig     `json:"motion"`
	Actuators ActuatorsConfig  `json:"actuators"`
	Operator  OperatorConfig   `json:"operator"`
	Hardware  HardwareConfig   `json:"hardware"`
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	if err := c.Drive.Validate(joinPath(path, "drive")); err != nil {
		return err
	}
	if err := c.Geometry.Validate(joinPath(path, "geometry")); err != nil {
		return err
	}
	if err := c.Motion.Validate(joinPath(path, "motion")); err != nil {
		return err
	}
	if err := c.Actuators.Validate(joinPath(path, "actuators")); err != nil {
		return err
	}
	if err := c.Operator.Validate(joinPath(path, "operator")); err != nil {
		return err
	}
	if _, err := c.Hardware.Validate(joinPath(path, "hardware")); err != nil {
		return err
	}
	return nil
}

// GeometryConfig describes the drive wheels and encoders. Lengths are in inches.
type GeometryConfig struct {
	WheelDiameter      float64 `json:"wheel_diameter"`
	TicksPerRevolution float64 `json:"ticks_per_revolution"`
	// GearRatio is wheel revolutions per motor revolution.
	GearRatio float64 `json:"gear_ratio"`
	// UnitLength is how many inches one unit of commanded distance is; 12 drives in feet.
	UnitLength float64 `json:"unit_length"`
}

// Validate ensures all parts of the config are valid.
func (g *GeometryConfig) Validate(path string) error {
	for field, v := range map[string]float64{
		"wheel_diameter":       g.WheelDiameter,
		"ticks_per_revolution": g.TicksPerRevolution,
		"gear_ratio":           g.GearRatio,
		"unit_length":          g.UnitLength,
	} {
		if v <= 0 {
			return utils.NewConfigValidationError(path, errors.Errorf("%s must be positive, got %v", field, v))
		}
	}
	return nil
}

// WheelCircumference is the distance, in units, one wheel revolution covers.
func (g GeometryConfig) WheelCircumference() float64 {
	return math.Pi * g.WheelDiameter / g.UnitLength
}

// TicksPerWheelRevolution is the encoder count for one turn of the wheel.
func (g GeometryConfig) TicksPerWheelRevolution() float64 {
	return g.TicksPerRevolution * g.GearRatio
}

// TicksPerUnit is the encoder count for one unit of travel.
func (g GeometryConfig) TicksPerUnit() float64 {
	return g.TicksPerWheelRevolution() / g.WheelCircumference()
}

// MotionConfig tunes the closed-loop motion primitives.
type MotionConfig struct {
	Straight StraightConfig `json:"straight"`
	Turn     TurnConfig     `json:"turn"`
	Profile  ProfileConfig  `json:"profile"`
	// HeadingPollPeriodMs is how often a not-yet-ready heading sensor is polled.
	HeadingPollPeriodMs int `json:"heading_poll_period_ms"`
	// CalibrationPollPeriodMs is how often a calibrating heading sensor is polled.
	CalibrationPollPeriodMs int `json:"calibration_poll_period_ms"`
	CalibrationTimeoutMs    int `json:"calibration_timeout_ms"`
}

// Validate ensures all parts of the config are valid.
func (m *MotionConfig) Validate(path string) error {
	if err := m.Straight.Validate(joinPath(path, "straight")); err != nil {
		return err
	}
	if err := m.Turn.Validate(joinPath(path, "turn")); err != nil {
		return err
	}
	if err := m.Profile.Validate(joinPath(path, "profile")); err != nil {
		return err
	}
	if m.HeadingPollPeriodMs <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "heading_poll_period_ms")
	}
	if m.CalibrationPollPeriodMs <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "calibration_poll_period_ms")
	}
	return nil
}

// HeadingPollPeriod returns the heading poll period.
func (m MotionConfig) HeadingPollPeriod() time.Duration {
	return ms(m.HeadingPollPeriodMs)
}

// CalibrationPollPeriod returns the calibration poll period.
func (m MotionConfig) CalibrationPollPeriod() time.Duration {
	return ms(m.CalibrationPollPeriodMs)
}

// CalibrationTimeout returns the calibration timeout; zero means none.
func (m MotionConfig) CalibrationTimeout() time.Duration {
	return ms(m.CalibrationTimeoutMs)
}

// StraightConfig tunes heading-held straight driving.
type StraightConfig struct {
	// HeadingGain scales the heading error added to one side and taken from the other.
	HeadingGain   float64 `json:"heading_gain"`
	CyclePeriodMs int     `json:"cycle_period_ms"`
	// TimeoutMs bounds the whole move; zero means no timeout.
	TimeoutMs int `json:"timeout_ms,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (s *StraightConfig) Validate(path string) error {
	if s.CyclePeriodMs <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "cycle_period_ms")
	}
	if s.HeadingGain < 0 || s.TimeoutMs < 0 {
		return utils.NewConfigValidationError(path, errors.New("heading_gain and timeout_ms cannot be negative"))
	}
	return nil
}

// CyclePeriod returns the control cycle period.
func (s StraightConfig) CyclePeriod() time.Duration {
	return ms(s.CyclePeriodMs)
}

// Timeout returns the move timeout; zero means none.
func (s StraightConfig) Timeout() time.Duration {
	return ms(s.TimeoutMs)
}

// TurnConfig tunes the two-phase point turn.
type TurnConfig struct {
	Coarse control.PIDConfig `json:"coarse"`
	Fine   control.PIDConfig `json:"fine"`
	// Tolerance in degrees ends the coarse phase and is the settle band of the fine phase.
	Tolerance float64 `json:"tolerance"`
	// SettleDerivative is the largest per-cycle error change still counted as settled.
	SettleDerivative        float64 `json:"settle_derivative"`
	MinCorrectionIterations int     `json:"min_correction_iterations"`
	MaxFineIterations       int     `json:"max_fine_iterations"`
	// MaxCoarseIterations caps the coarse phase; zero means no cap.
	MaxCoarseIterations int `json:"max_coarse_iterations,omitempty"`
	CyclePeriodMs       int `json:"cycle_period_ms"`
	TimeoutMs           int `json:"timeout_ms,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (t *TurnConfig) Validate(path string) error {
	if err := t.Coarse.Validate(); err != nil {
		return utils.NewConfigValidationError(joinPath(path, "coarse"), err)
	}
	if err := t.Fine.Validate(); err != nil {
		return utils.NewConfigValidationError(joinPath(path, "fine"), err)
	}
	if t.Tolerance <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "tolerance")
	}
	if t.CyclePeriodMs <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "cycle_period_ms")
	}
	if t.MaxFineIterations < t.MinCorrectionIterations {
		return utils.NewConfigValidationError(path, errors.Errorf(
			"max_fine_iterations (%d) must be at least min_correction_iterations (%d)",
			t.MaxFineIterations, t.MinCorrectionIterations))
	}
	if t.SettleDerivative < 0 || t.MaxCoarseIterations < 0 || t.TimeoutMs < 0 {
		return utils.NewConfigValidationError(path,
			errors.New("settle_derivative, max_coarse_iterations and timeout_ms cannot be negative"))
	}
	return nil
}

// CyclePeriod returns the control cycle period.
func (t TurnConfig) CyclePeriod() time.Duration {
	return ms(t.CyclePeriodMs)
}

// Timeout returns the turn timeout; zero means none.
func (t TurnConfig) Timeout() time.Duration {
	return ms(t.TimeoutMs)
}

// ProfileConfig tunes velocity-profiled straight driving.
type ProfileConfig struct {
	MaxVelocity       float64 `json:"max_velocity"`
	TicksToAccelerate float64 `json:"ticks_to_accelerate"`
	RampFloor         float64 `json:"ramp_floor"`
	HeadingGain       float64 `json:"heading_gain"`
	CyclePeriodMs     int     `json:"cycle_period_ms"`
	TimeoutMs         int     `json:"timeout_ms,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (p *ProfileConfig) Validate(path string) error {
	if p.CyclePeriodMs <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "cycle_period_ms")
	}
	if p.RampFloor <= 0 {
		// a zero floor would never start the move
		return utils.NewConfigValidationFieldRequiredError(path, "ramp_floor")
	}
	cfg := p.Control(GeometryConfig{WheelDiameter: 1, TicksPerRevolution: 1, GearRatio: 1, UnitLength: 1})
	if err := cfg.Validate(); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	return nil
}

// Control returns the profile tuning for the given wheels.
func (p ProfileConfig) Control(g GeometryConfig) control.ProfileConfig {
	return control.ProfileConfig{
		MaxVelocity:        p.MaxVelocity,
		TicksToAccelerate:  p.TicksToAccelerate,
		RampFloor:          p.RampFloor,
		WheelCircumference: g.WheelCircumference(),
		TicksPerRevolution: g.TicksPerWheelRevolution(),
	}
}

// CyclePeriod returns the control cycle period.
func (p ProfileConfig) CyclePeriod() time.Duration {
	return ms(p.CyclePeriodMs)
}

// Timeout returns the move timeout; zero means none.
func (p ProfileConfig) Timeout() time.Duration {
	return ms(p.TimeoutMs)
}

// ActuatorConfig binds a mechanism's limits.
type ActuatorConfig struct {
	Bounds          actuator.Bounds `json:"bounds"`
	Policy          actuator.Policy `json:"policy,omitempty"`
	CorrectionSpeed int             `json:"correction_speed,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (a *ActuatorConfig) Validate(path string) error {
	if err := a.Policy.Validate(joinPath(path, "policy")); err != nil {
		return err
	}
	if a.Policy == actuator.PolicyNone {
		return nil
	}
	if err := a.Bounds.Validate(joinPath(path, "bounds")); err != nil {
		return err
	}
	if a.Policy == actuator.PolicyForceCorrect && a.CorrectionSpeed == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "correction_speed")
	}
	return nil
}

// ActuatorsConfig holds the limits of every mechanism.
type ActuatorsConfig struct {
	Tray ActuatorConfig `json:"tray"`
	Lift ActuatorConfig `json:"lift"`
}

// Validate ensures all parts of the config are valid.
func (a *ActuatorsConfig) Validate(path string) error {
	if err := a.Tray.Validate(joinPath(path, "tray")); err != nil {
		return err
	}
	return a.Lift.Validate(joinPath(path, "lift"))
}

// TrayRaiseConfig shapes the tray's raise speed: full speed until SlowdownStart, then
// scaled down toward MinSpeed as the tray approaches SlowdownEnd.
type TrayRaiseConfig struct {
	SlowdownStart int `json:"slowdown_start"`
	SlowdownEnd   int `json:"slowdown_end"`
	MaxSpeed      int `json:"max_speed"`
	MinSpeed      int `json:"min_speed"`
}

// OperatorConfig tunes the operator control loop.
type OperatorConfig struct {
	CyclePeriodMs  int             `json:"cycle_period_ms"`
	InitialMode    string          `json:"initial_mode"`
	IntakeSpeed    int             `json:"intake_speed"`
	LiftUpSpeed    int             `json:"lift_up_speed"`
	LiftDownSpeed  int             `json:"lift_down_speed"`
	TrayLowerSpeed int             `json:"tray_lower_speed"`
	TrayRaise      TrayRaiseConfig `json:"tray_raise"`
}

// Validate ensures all parts of the config are valid.
func (o *OperatorConfig) Validate(path string) error {
	if o.CyclePeriodMs <= 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "cycle_period_ms")
	}
	if _, err := o.Mode(); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if o.TrayRaise.SlowdownEnd <= o.TrayRaise.SlowdownStart {
		return utils.NewConfigValidationError(joinPath(path, "tray_raise"),
			errors.New("slowdown_end must be above slowdown_start"))
	}
	return nil
}

// Mode parses InitialMode.
func (o OperatorConfig) Mode() (base.DriveMode, error) {
	switch o.InitialMode {
	case "", base.ModeTank.String():
		return base.ModeTank, nil
	case base.ModeArcade.String():
		return base.ModeArcade, nil
	default:
		return 0, errors.Errorf("unknown initial_mode %q", o.InitialMode)
	}
}

// CyclePeriod returns the operator loop period.
func (o OperatorConfig) CyclePeriod() time.Duration {
	return ms(o.CyclePeriodMs)
}

// HardwareConfig names the hardware each part of the robot is wired to.
type HardwareConfig struct {
	LeftDrive        []string `json:"left_drive"`
	RightDrive       []string `json:"right_drive"`
	LeftIntake       string   `json:"left_intake"`
	RightIntake      string   `json:"right_intake"`
	Lift             string   `json:"lift"`
	Tray             string   `json:"tray"`
	Heading          string   `json:"heading"`
	RearUltrasonic   string   `json:"rear_ultrasonic,omitempty"`
	FrontLimitSwitch string   `json:"front_limit_switch,omitempty"`
	// Inverted names motors mounted mirrored to their partner.
	Inverted []string `json:"inverted,omitempty"`
}

// Validate ensures all parts of the config are valid and returns the names of the motors it
// depends on.
func (h *HardwareConfig) Validate(path string) ([]string, error) {
	if len(h.LeftDrive) == 0 {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "left_drive")
	}
	if len(h.RightDrive) == 0 {
		return nil, utils.NewConfigValidationFieldRequiredError(path, "right_drive")
	}
	required := map[string]string{
		"left_intake":  h.LeftIntake,
		"right_intake": h.RightIntake,
		"lift":         h.Lift,
		"tray":         h.Tray,
		"heading":      h.Heading,
	}
	for _, field := range []string{"left_intake", "right_intake", "lift", "tray", "heading"} {
		if required[field] == "" {
			return nil, utils.NewConfigValidationFieldRequiredError(path, field)
		}
	}

	motors := h.MotorNames()
	if dupes := lo.FindDuplicates(motors); len(dupes) > 0 {
		return nil, utils.NewConfigValidationError(path, errors.Errorf("motors wired twice: %v", dupes))
	}
	for idx, name := range h.Inverted {
		if !lo.Contains(motors, name) {
			return nil, utils.NewConfigValidationError(fmt.Sprintf("%s.inverted.%d", path, idx),
				errors.Errorf("%q is not a configured motor", name))
		}
	}
	return motors, nil
}

// MotorNames lists every configured motor.
func (h HardwareConfig) MotorNames() []string {
	names := append([]string{}, h.LeftDrive...)
	names = append(names, h.RightDrive...)
	return append(names, h.LeftIntake, h.RightIntake, h.Lift, h.Tray)
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
