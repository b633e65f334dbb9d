package remotecontrol

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/drivecore/components/actuator"
	"go.viam.com/drivecore/components/base"
	basefake "go.viam.com/drivecore/components/base/fake"
	"go.viam.com/drivecore/components/input"
	inputfake "go.viam.com/drivecore/components/input/fake"
	"go.viam.com/drivecore/components/motor"
	motorfake "go.viam.com/drivecore/components/motor/fake"
	"go.viam.com/drivecore/config"
	"go.viam.com/drivecore/control"
	"go.viam.com/drivecore/logging"
	"go.viam.com/drivecore/testutils/inject"
)

type testRig struct {
	svc         *Service
	controller  *inputfake.Controller
	drivetrain  *basefake.Drivetrain
	leftIntake  *motorfake.Motor
	rightIntake *motorfake.Motor
	lift        *motorfake.Motor
	tray        *motorfake.Motor
}

func newTestRig(t *testing.T, intake motor.Motor, opts ...Option) *testRig {
	t.Helper()
	logger := logging.NewTestLogger(t)
	cfg := config.Default()

	rig := &testRig{
		controller:  inputfake.NewController(),
		drivetrain:  basefake.NewDrivetrain(basefake.DefaultTicksPerSpeed, basefake.DefaultDegreesPerSpeed),
		leftIntake:  motorfake.NewMotor("left_intake", 1),
		rightIntake: motorfake.NewMotor("right_intake", 1),
		lift:        motorfake.NewMotor("lift", 1),
		tray:        motorfake.NewMotor("tray", 1),
	}
	chassis, err := rig.drivetrain.Chassis(cfg.Drive, logger)
	test.That(t, err, test.ShouldBeNil)
	if intake == nil {
		intake, err = motor.NewGroup("intake",
			[]string{"left_intake", "right_intake"}, []motor.Motor{rig.leftIntake, rig.rightIntake})
		test.That(t, err, test.ShouldBeNil)
	}
	mech := Mechanisms{
		Chassis: chassis,
		Intake:  intake,
		Lift: &actuator.Actuator{
			Name: "lift", Motor: rig.lift,
			Bounds: cfg.Actuators.Lift.Bounds, Policy: cfg.Actuators.Lift.Policy,
		},
		Tray: &actuator.Actuator{
			Name: "tray", Motor: rig.tray,
			Bounds: cfg.Actuators.Tray.Bounds, Policy: cfg.Actuators.Tray.Policy,
		},
	}
	rig.svc, err = New(rig.controller, mech, cfg.Operator, logger, opts...)
	test.That(t, err, test.ShouldBeNil)
	return rig
}

func TestNew(t *testing.T) {
	logger := logging.NewTestLogger(t)
	_, err := New(nil, Mechanisms{}, config.Default().Operator, logger)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = New(inputfake.NewController(), Mechanisms{}, config.Default().Operator, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "chassis")

	rig := newTestRig(t, nil)
	test.That(t, rig.svc.Mode(), test.ShouldEqual, base.ModeTank)
}

func TestTrayRaiseSpeed(t *testing.T) {
	cfg := config.Default().Operator.TrayRaise
	for _, tc := range []struct {
		position int
		expected int
	}{
		{-50, 128},
		{0, 128},
		{1200, 128},
		{1750, 103},
		{2000, 92},
		{3400, 30},
		{5000, 30},
	} {
		test.That(t, TrayRaiseSpeed(tc.position, cfg), test.ShouldEqual, tc.expected)
	}
}

func TestStepDrive(t *testing.T) {
	rig := newTestRig(t, nil)
	ctx := context.Background()

	rig.controller.SetAxis(input.AbsoluteY, 127)
	rig.controller.SetAxis(input.AbsoluteRY, -64)
	rig.controller.SetButton(NoLimitButton, true)
	status, err := rig.svc.Step(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, status.Mode, test.ShouldEqual, base.ModeTank)
	test.That(t, status.NoLimit, test.ShouldBeTrue)
	test.That(t, status.Drive, test.ShouldResemble, base.MotionCommand{
		Left:  motor.ClampSpeed(control.Deadband(127, 5)),
		Right: control.Deadband(-64, 5),
	})
	test.That(t, rig.drivetrain.LeftBack.Speed(), test.ShouldEqual, status.Drive.Left)
	test.That(t, rig.drivetrain.RightFront.Speed(), test.ShouldEqual, status.Drive.Right)

	// without the override the limiter steps down from the last command
	rig.controller.Release()
	status, err = rig.svc.Step(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, status.NoLimit, test.ShouldBeFalse)
	test.That(t, status.Drive.Left, test.ShouldEqual, motor.ClampSpeed(control.Deadband(127, 5))-5)

	rig.controller.SetButton(ArcadeButton, true)
	rig.controller.SetButton(NoLimitButton, true)
	rig.controller.SetAxis(input.AbsoluteRY, 64)
	status, err = rig.svc.Step(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, status.Mode, test.ShouldEqual, base.ModeArcade)
	test.That(t, status.Drive.Left, test.ShouldEqual, status.Drive.Right)
	test.That(t, status.Drive.Left, test.ShouldEqual, control.CubifySpeed(control.Deadband(64, 5)))

	// the mode sticks after the button is released
	rig.controller.SetButton(ArcadeButton, false)
	_, err = rig.svc.Step(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rig.svc.Mode(), test.ShouldEqual, base.ModeArcade)

	rig.controller.SetButton(TankButton, true)
	status, err = rig.svc.Step(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, status.Mode, test.ShouldEqual, base.ModeTank)
	test.That(t, rig.svc.Status(), test.ShouldResemble, status)
}

func TestStepMechanisms(t *testing.T) {
	rig := newTestRig(t, nil)
	ctx := context.Background()

	rig.controller.SetButton(IntakeInButton, true)
	rig.controller.SetButton(LiftUpButton, true)
	rig.tray.SetPosition(100)
	rig.controller.SetButton(TrayRaiseButton, true)
	status, err := rig.svc.Step(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, status.Intake, test.ShouldEqual, 100)
	test.That(t, rig.leftIntake.Speed(), test.ShouldEqual, 100)
	test.That(t, rig.rightIntake.Speed(), test.ShouldEqual, 100)
	test.That(t, status.Lift, test.ShouldEqual, -100)
	test.That(t, rig.lift.Speed(), test.ShouldEqual, -100)
	test.That(t, status.Tray, test.ShouldEqual, motor.MaxSpeed)

	rig.controller.Release()
	rig.controller.SetButton(IntakeOutButton, true)
	rig.controller.SetButton(LiftDownButton, true)
	rig.tray.SetPosition(2000)
	rig.controller.SetButton(TrayRaiseButton, true)
	status, err = rig.svc.Step(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, status.Intake, test.ShouldEqual, -100)
	test.That(t, status.Lift, test.ShouldEqual, 50)
	test.That(t, status.Tray, test.ShouldEqual, 92)

	// the tray refuses to go past its hard stops
	rig.tray.SetPosition(3500)
	status, err = rig.svc.Step(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, status.Tray, test.ShouldEqual, 0)

	rig.controller.Release()
	rig.controller.SetButton(TrayLowerButton, true)
	status, err = rig.svc.Step(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, status.Tray, test.ShouldEqual, -80)

	rig.tray.SetPosition(0)
	status, err = rig.svc.Step(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, status.Tray, test.ShouldEqual, 0)

	rig.controller.Release()
	status, err = rig.svc.Step(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, status.Intake, test.ShouldEqual, 0)
	test.That(t, status.Lift, test.ShouldEqual, 0)
	test.That(t, status.Tray, test.ShouldEqual, 0)
	test.That(t, rig.lift.Speed(), test.ShouldEqual, 0)
}

func TestStepKeepsGoingOnFailure(t *testing.T) {
	intake := inject.NewMotor()
	intake.SetSpeedFunc = func(ctx context.Context, speed int) error {
		return errors.New("intake port fault")
	}
	rig := newTestRig(t, intake)

	rig.controller.SetButton(IntakeInButton, true)
	rig.controller.SetButton(LiftUpButton, true)
	rig.controller.SetButton(NoLimitButton, true)
	rig.controller.SetAxis(input.AbsoluteY, 100)
	status, err := rig.svc.Step(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "intake port fault")
	test.That(t, status.Drive.Left, test.ShouldBeGreaterThan, 0)
	test.That(t, rig.drivetrain.LeftFront.Speed(), test.ShouldEqual, status.Drive.Left)
	test.That(t, rig.lift.Speed(), test.ShouldEqual, -100)
}

func TestStartClose(t *testing.T) {
	mock := clock.NewMock()
	rig := newTestRig(t, nil, WithClock(mock))
	ctx := context.Background()

	rig.controller.SetButton(IntakeInButton, true)
	rig.svc.Start()
	rig.svc.Start()
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		mock.Add(20 * time.Millisecond)
		test.That(tb, rig.leftIntake.Speed(), test.ShouldEqual, 100)
	})
	test.That(t, rig.svc.Status().Intake, test.ShouldEqual, 100)

	test.That(t, rig.svc.Close(ctx), test.ShouldBeNil)
	test.That(t, rig.leftIntake.Speed(), test.ShouldEqual, 0)
	test.That(t, rig.svc.Status().Intake, test.ShouldEqual, 0)

	// stopped loops no longer command anything
	writes := rig.leftIntake.Writes()
	mock.Add(time.Second)
	test.That(t, rig.leftIntake.Writes(), test.ShouldEqual, writes)
	test.That(t, rig.svc.Close(ctx), test.ShouldBeNil)
}
