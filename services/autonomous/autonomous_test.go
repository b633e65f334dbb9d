package autonomous

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	basefake "go.viam.com/drivecore/components/base/fake"
	"go.viam.com/drivecore/components/base/sensorcontrolled"
	motorfake "go.viam.com/drivecore/components/motor/fake"
	"go.viam.com/drivecore/components/sensor"
	sensorfake "go.viam.com/drivecore/components/sensor/fake"
	"go.viam.com/drivecore/config"
	"go.viam.com/drivecore/logging"
	"go.viam.com/drivecore/operation"
)

type testRig struct {
	env        *Env
	drivetrain *basefake.Drivetrain
	intake     *motorfake.Motor
	ultrasonic *sensorfake.Sensor
}

func newTestRig(t *testing.T, clk clock.Clock) *testRig {
	t.Helper()
	logger := logging.NewTestLogger(t)
	cfg := config.Default()
	motion := cfg.Motion
	motion.Straight.CyclePeriodMs = 1
	motion.Turn.CyclePeriodMs = 1
	motion.Profile.CyclePeriodMs = 1
	motion.HeadingPollPeriodMs = 1

	dt := basefake.NewDrivetrain(basefake.DefaultTicksPerSpeed, basefake.DefaultDegreesPerSpeed)
	chassis, err := dt.Chassis(cfg.Drive, logger)
	test.That(t, err, test.ShouldBeNil)
	intake := motorfake.NewMotor("intake", 1)
	ultrasonic := sensorfake.NewSensor(0)
	return &testRig{
		env: &Env{
			Motion:  sensorcontrolled.NewController(chassis, dt, motion, cfg.Geometry, logger),
			Chassis: chassis,
			Intake:  intake,
			Sensors: map[string]sensor.Sensor{"rear_ultrasonic": ultrasonic},
			Waits:   operation.NewSingleOperationManager(clk),
			Clock:   clk,
			Logger:  logger,
		},
		drivetrain: dt,
		intake:     intake,
		ultrasonic: ultrasonic,
	}
}

func TestEnvValidate(t *testing.T) {
	env := &Env{}
	err := env.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "motion controller")
	test.That(t, Default()[DefaultRoutine].Run(context.Background(), env), test.ShouldBeError, err)

	rig := newTestRig(t, nil)
	test.That(t, rig.env.Validate(), test.ShouldBeNil)
}

func TestRoutines(t *testing.T) {
	rs := Default()
	test.That(t, rs.Names(), test.ShouldResemble, []string{"default", "none"})

	r, err := rs.Lookup("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Name, test.ShouldEqual, DefaultRoutine)
	test.That(t, r.StepNames(), test.ShouldResemble, []string{"intake 100", "drive 25/25 for 8s"})

	_, err = rs.Lookup("skills")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "skills")

	test.That(t, rs.Register(Routine{}), test.ShouldNotBeNil)
	test.That(t, rs.Register(Routine{Name: "skills", Steps: []Step{WaitStep{Duration: time.Second}}}), test.ShouldBeNil)
	r, err = rs.Lookup("skills")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.StepNames(), test.ShouldResemble, []string{"wait 1s"})
}

func TestDefaultRoutine(t *testing.T) {
	mock := clock.NewMock()
	rig := newTestRig(t, mock)
	r, err := Default().Lookup(DefaultRoutine)
	test.That(t, err, test.ShouldBeNil)

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run(context.Background(), rig.env)
	}()
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, rig.drivetrain.LeftFront.Speed(), test.ShouldEqual, 25)
	})
	// both sides forward: the robot drives straight instead of turning
	test.That(t, rig.drivetrain.RightBack.Speed(), test.ShouldEqual, 25)
	test.That(t, rig.drivetrain.RightFront.Speed(), test.ShouldEqual, 25)
	test.That(t, rig.drivetrain.LeftBack.Speed(), test.ShouldEqual, 25)
	test.That(t, rig.drivetrain.LeftFront.Speed()*rig.drivetrain.RightFront.Speed(), test.ShouldBeGreaterThan, 0)
	test.That(t, rig.intake.Speed(), test.ShouldEqual, 100)

	// nothing stops before eight seconds have passed
	mock.Add(7 * time.Second)
	test.That(t, rig.drivetrain.LeftFront.Speed(), test.ShouldEqual, 25)

	var (
		runErr error
		done   bool
	)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		mock.Add(time.Second)
		select {
		case runErr = <-errCh:
			done = true
		default:
		}
		test.That(tb, done, test.ShouldBeTrue)
	})
	test.That(t, runErr, test.ShouldBeNil)
	test.That(t, rig.drivetrain.LeftFront.Speed(), test.ShouldEqual, 0)
	test.That(t, rig.drivetrain.RightBack.Speed(), test.ShouldEqual, 0)
	test.That(t, rig.intake.Speed(), test.ShouldEqual, 0)
}

func TestRoutineStopsOnFailure(t *testing.T) {
	rig := newTestRig(t, nil)
	r := Routine{
		Name: "broken",
		Steps: []Step{
			IntakeStep{Speed: 100},
			DriveUntilStep{Speed: 40, Sensor: "missing", Threshold: 10},
			IntakeStep{Speed: -50},
		},
	}
	err := r.Run(context.Background(), rig.env)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "step 1")
	test.That(t, err.Error(), test.ShouldContainSubstring, `sensor "missing" not found`)
	test.That(t, rig.intake.Speed(), test.ShouldEqual, 0)
	// the last step never ran
	test.That(t, rig.intake.Writes(), test.ShouldEqual, 2)
}

func TestRoutineCancelled(t *testing.T) {
	rig := newTestRig(t, nil)
	r := Routine{
		Name:  "long",
		Steps: []Step{IntakeStep{Speed: 100}, WaitStep{Duration: time.Hour}, IntakeStep{Speed: -50}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run(ctx, rig.env)
	}()
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, rig.env.Waits.OpRunning(), test.ShouldBeTrue)
	})
	cancel()
	err := <-errCh
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "wait interrupted")
	test.That(t, rig.intake.Speed(), test.ShouldEqual, 0)
	test.That(t, rig.intake.Writes(), test.ShouldEqual, 2)
}

func TestClosedLoopSteps(t *testing.T) {
	rig := newTestRig(t, nil)
	r := Routine{
		Name: "square",
		Steps: []Step{
			DriveStep{Distance: 1, Speed: 80},
			TurnStep{Degrees: 90},
			ProfiledDriveStep{Distance: 1},
			TurnStep{Degrees: -45, Relative: true},
		},
	}
	test.That(t, r.StepNames(), test.ShouldResemble, []string{
		"drive 1 at 80", "turn to 90", "profiled drive 1", "turn by -45",
	})
	test.That(t, r.Run(context.Background(), rig.env), test.ShouldBeNil)
	test.That(t, rig.drivetrain.TrueHeading(), test.ShouldAlmostEqual, 45, 2.5)
	test.That(t, rig.drivetrain.LeftFront.Speed(), test.ShouldEqual, 0)
}

func TestDriveUntilStep(t *testing.T) {
	rig := newTestRig(t, nil)
	step := DriveUntilStep{Speed: -40, Sensor: "rear_ultrasonic", Threshold: 300, PollPeriod: time.Millisecond}

	errCh := make(chan error, 1)
	go func() {
		errCh <- step.Run(context.Background(), rig.env)
	}()
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, rig.drivetrain.LeftBack.Speed(), test.ShouldEqual, -40)
	})
	rig.ultrasonic.SetValue(300)
	test.That(t, <-errCh, test.ShouldBeNil)
	test.That(t, rig.drivetrain.LeftBack.Speed(), test.ShouldEqual, 0)

	step.Timeout = 20 * time.Millisecond
	step.Threshold = 1000
	err := step.Run(context.Background(), rig.env)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, context.DeadlineExceeded), test.ShouldBeTrue)
	test.That(t, rig.drivetrain.LeftBack.Speed(), test.ShouldEqual, 0)
}
