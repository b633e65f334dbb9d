// Package fake implements a simulated drivetrain: four fake drive motors and a heading sensor
// that integrates the commanded speed differential.
package fake

import (
	"context"
	"math"
	"sync"

	"go.viam.com/drivecore/components/base"
	"go.viam.com/drivecore/components/motor"
	fakemotor "go.viam.com/drivecore/components/motor/fake"
	"go.viam.com/drivecore/components/movementsensor"
	"go.viam.com/drivecore/logging"
)

var (
	_ movementsensor.HeadingSensor = &Drivetrain{}
	_ movementsensor.Calibrator    = &Drivetrain{}
)

// Default plant constants: roughly a 2.5 ft/s, 300 deg/s drivetrain sampled every 10ms.
const (
	DefaultTicksPerSpeed   = 0.25
	DefaultDegreesPerSpeed = 0.02
)

// A Drivetrain is a deterministic drive simulation. Every heading read advances the simulation one
// control cycle: each motor integrates its commanded speed into ticks and the heading integrates
// the left/right speed differential, clockwise positive.
type Drivetrain struct {
	LeftFront  *fakemotor.Motor
	LeftBack   *fakemotor.Motor
	RightFront *fakemotor.Motor
	RightBack  *fakemotor.Motor

	// DegreesPerSpeed is the heading change per cycle per unit of half the side difference.
	DegreesPerSpeed float64
	// Drift is added to the heading every cycle the drive is moving, modelling a pulling chassis.
	Drift float64
	// NotReadyReads is how many heading reads report NaN before the sensor is ready.
	NotReadyReads int
	// CalibrationPolls is how many calibration polls report busy after a Reset.
	CalibrationPolls int

	mu      sync.Mutex
	heading float64
	reads   int
	polls   int
	cycles  int
}

// NewDrivetrain returns a stopped drivetrain at heading zero.
func NewDrivetrain(ticksPerSpeed, degreesPerSpeed float64) *Drivetrain {
	return &Drivetrain{
		LeftFront:       fakemotor.NewMotor("left_front", ticksPerSpeed),
		LeftBack:        fakemotor.NewMotor("left_back", ticksPerSpeed),
		RightFront:      fakemotor.NewMotor("right_front", ticksPerSpeed),
		RightBack:       fakemotor.NewMotor("right_back", ticksPerSpeed),
		DegreesPerSpeed: degreesPerSpeed,
	}
}

// Motors returns the drive motors keyed by name.
func (d *Drivetrain) Motors() map[string]motor.Motor {
	return map[string]motor.Motor{
		d.LeftFront.Name:  d.LeftFront,
		d.LeftBack.Name:   d.LeftBack,
		d.RightFront.Name: d.RightFront,
		d.RightBack.Name:  d.RightBack,
	}
}

// Chassis returns a chassis driving this drivetrain.
func (d *Drivetrain) Chassis(cfg base.DriveConfig, logger logging.Logger) (*base.Chassis, error) {
	left, err := motor.NewGroup("left",
		[]string{d.LeftFront.Name, d.LeftBack.Name}, []motor.Motor{d.LeftFront, d.LeftBack})
	if err != nil {
		return nil, err
	}
	right, err := motor.NewGroup("right",
		[]string{d.RightFront.Name, d.RightBack.Name}, []motor.Motor{d.RightFront, d.RightBack})
	if err != nil {
		return nil, err
	}
	return base.NewChassis(left, right, cfg, logger), nil
}

// Step advances the simulation one cycle.
func (d *Drivetrain) Step() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stepLocked()
}

func (d *Drivetrain) stepLocked() {
	left := float64(d.LeftFront.Speed()+d.LeftBack.Speed()) / 2
	right := float64(d.RightFront.Speed()+d.RightBack.Speed()) / 2
	for _, m := range []*fakemotor.Motor{d.LeftFront, d.LeftBack, d.RightFront, d.RightBack} {
		m.Step()
	}
	d.heading += d.DegreesPerSpeed * (left - right) / 2
	if left != 0 || right != 0 {
		d.heading += d.Drift
	}
	d.cycles++
}

// Heading advances the simulation one cycle and returns the new heading.
func (d *Drivetrain) Heading(ctx context.Context) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reads++
	if d.reads <= d.NotReadyReads {
		return math.NaN(), nil
	}
	d.stepLocked()
	return d.heading, nil
}

// TrueHeading returns the simulated heading without advancing the simulation.
func (d *Drivetrain) TrueHeading() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.heading
}

// SetHeading places the robot at heading.
func (d *Drivetrain) SetHeading(heading float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.heading = heading
}

// Cycles returns how many cycles have been simulated.
func (d *Drivetrain) Cycles() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cycles
}

// Reset zeroes the heading and restarts calibration.
func (d *Drivetrain) Reset(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.heading = 0
	d.polls = 0
	return nil
}

// IsCalibrating reports true until CalibrationPolls polls have passed since the last Reset.
func (d *Drivetrain) IsCalibrating(ctx context.Context) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.polls++
	return d.polls <= d.CalibrationPolls, nil
}
