package motor_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/drivecore/components/motor"
	"go.viam.com/drivecore/components/motor/fake"
	"go.viam.com/drivecore/testutils/inject"
)

func TestClampSpeed(t *testing.T) {
	test.That(t, motor.ClampSpeed(0), test.ShouldEqual, 0)
	test.That(t, motor.ClampSpeed(127), test.ShouldEqual, 127)
	test.That(t, motor.ClampSpeed(128), test.ShouldEqual, 127)
	test.That(t, motor.ClampSpeed(-1000), test.ShouldEqual, -127)
}

func TestInverted(t *testing.T) {
	ctx := context.Background()
	m := fake.NewMotor("right_front", 1)
	inv := motor.Inverted(m)

	test.That(t, inv.SetSpeed(ctx, 40), test.ShouldBeNil)
	test.That(t, m.Speed(), test.ShouldEqual, -40)
	m.Step()
	pos, err := inv.Position(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos, test.ShouldEqual, 40)

	test.That(t, motor.Inverted(inv), test.ShouldEqual, m)
}

func TestGroup(t *testing.T) {
	ctx := context.Background()

	_, err := motor.NewGroup("left", nil, nil)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = motor.NewGroup("left", []string{"a"}, []motor.Motor{fake.NewMotor("a", 1), fake.NewMotor("b", 1)})
	test.That(t, err, test.ShouldNotBeNil)

	front := fake.NewMotor("front", 1)
	back := fake.NewMotor("back", 2)
	g, err := motor.NewGroup("left", []string{"front", "back"}, []motor.Motor{front, back})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.Name(), test.ShouldEqual, "left")
	test.That(t, g.Len(), test.ShouldEqual, 2)

	test.That(t, g.SetSpeed(ctx, 200), test.ShouldBeNil)
	test.That(t, front.Speed(), test.ShouldEqual, 127)
	test.That(t, back.Speed(), test.ShouldEqual, 127)

	test.That(t, g.SetSpeed(ctx, 10), test.ShouldBeNil)
	front.Step()
	back.Step()
	positions, err := g.Positions(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, positions, test.ShouldResemble, []int{10, 20})
	pos, err := g.Position(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos, test.ShouldEqual, 15)

	test.That(t, g.ResetZeroPosition(ctx), test.ShouldBeNil)
	pos, err = g.Position(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos, test.ShouldEqual, 0)
}

func TestGroupErrors(t *testing.T) {
	ctx := context.Background()
	good := fake.NewMotor("good", 1)
	bad := inject.NewMotor()
	bad.SetSpeedFunc = func(ctx context.Context, speed int) error {
		return errors.New("port unplugged")
	}
	bad.PositionFunc = func(ctx context.Context) (int, error) {
		return 0, errors.New("encoder unplugged")
	}
	bad.ResetZeroPositionFunc = func(ctx context.Context) error {
		return errors.New("encoder unplugged")
	}

	g, err := motor.NewGroup("right", []string{"bad", "good"}, []motor.Motor{bad, good})
	test.That(t, err, test.ShouldBeNil)

	err = g.SetSpeed(ctx, 50)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to set motor bad to speed 50")
	// the healthy motor is still written
	test.That(t, good.Speed(), test.ShouldEqual, 50)

	_, err = g.Position(ctx)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "encoder unplugged")

	err = g.ResetZeroPosition(ctx)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to zero motor bad")
}
