package config

import (
	"go.viam.com/drivecore/components/actuator"
	"go.viam.com/drivecore/components/base"
	"go.viam.com/drivecore/control"
)

// Default returns the configuration of the competition robot the tunings were made on: 3.25"
// wheels behind a 3:5 reduction on 900 tick/rev motors, distances in feet.
func Default() *Config {
	return &Config{
		Drive: base.DriveConfig{
			DeadbandThreshold: 5,
			Acceleration:      control.AccelerationLimits{Accel: 3, Decel: 5},
			TurnAuthority:     0.8,
		},
		Geometry: GeometryConfig{
			WheelDiameter:      3.25,
			TicksPerRevolution: 900,
			GearRatio:          3.0 / 5.0,
			UnitLength:         12,
		},
		Motion: MotionConfig{
			Straight: StraightConfig{
				HeadingGain:   1,
				CyclePeriodMs: 25,
				TimeoutMs:     10000,
			},
			Turn: TurnConfig{
				Coarse:                  control.PIDConfig{Kp: 1, Kd: 5, Ki: .1, Scale: 1, IntegralBand: 10, MaxOutput: 110},
				Fine:                    control.PIDConfig{Kp: 2, Kd: .32, Ki: .04, Scale: 2.1, IntegralBand: 10, MaxOutput: 110},
				Tolerance:               1,
				SettleDerivative:        0.05,
				MinCorrectionIterations: 10,
				MaxFineIterations:       300,
				MaxCoarseIterations:     1500,
				CyclePeriodMs:           10,
				TimeoutMs:               5000,
			},
			Profile: ProfileConfig{
				MaxVelocity:       110,
				TicksToAccelerate: 600,
				RampFloor:         20,
				HeadingGain:       1,
				CyclePeriodMs:     25,
				TimeoutMs:         10000,
			},
			HeadingPollPeriodMs:     25,
			CalibrationPollPeriodMs: 10,
			CalibrationTimeoutMs:    5000,
		},
		Actuators: ActuatorsConfig{
			Tray: ActuatorConfig{
				Bounds: actuator.Bounds{Lower: 0, Upper: 3500},
				Policy: actuator.PolicyHardStop,
			},
			Lift: ActuatorConfig{
				Policy: actuator.PolicyNone,
			},
		},
		Operator: OperatorConfig{
			CyclePeriodMs:  20,
			InitialMode:    base.ModeTank.String(),
			IntakeSpeed:    100,
			LiftUpSpeed:    -100,
			LiftDownSpeed:  50,
			TrayLowerSpeed: -80,
			TrayRaise: TrayRaiseConfig{
				SlowdownStart: 1200,
				SlowdownEnd:   3400,
				MaxSpeed:      128,
				MinSpeed:      30,
			},
		},
		Hardware: HardwareConfig{
			LeftDrive:        []string{"left_front", "left_back"},
			RightDrive:       []string{"right_front", "right_back"},
			LeftIntake:       "left_intake",
			RightIntake:      "right_intake",
			Lift:             "lift",
			Tray:             "tray",
			Heading:          "imu",
			RearUltrasonic:   "rear_ultrasonic",
			FrontLimitSwitch: "front_limit_switch",
			Inverted:         []string{"right_front", "right_back", "right_intake"},
		},
	}
}
