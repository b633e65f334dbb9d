package input_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/drivecore/components/input"
	"go.viam.com/drivecore/components/input/fake"
	"go.viam.com/drivecore/testutils/inject"
)

func TestReadSticks(t *testing.T) {
	ctx := context.Background()
	c := fake.NewController()
	c.SetAxis(input.AbsoluteY, 40)
	c.SetAxis(input.AbsoluteX, -20)
	c.SetAxis(input.AbsoluteRY, 300)

	arcade, err := input.ReadArcade(ctx, c)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, arcade, test.ShouldResemble, input.JoystickAxes{Speed: 127, Direction: -20})

	tank, err := input.ReadTank(ctx, c)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tank, test.ShouldResemble, input.TankAxes{Left: 40, Right: 127})

	c.Release()
	tank, err = input.ReadTank(ctx, c)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tank, test.ShouldResemble, input.TankAxes{})
}

func TestFakeController(t *testing.T) {
	ctx := context.Background()
	c := fake.NewController()
	c.SetButton(input.ButtonNorth, true)

	pressed, err := c.Button(ctx, input.ButtonNorth)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pressed, test.ShouldBeTrue)
	pressed, err = c.Button(ctx, input.ButtonSouth)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pressed, test.ShouldBeFalse)

	_, err = c.Button(ctx, input.AbsoluteX)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = c.Axis(ctx, input.ButtonLT)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReadFailure(t *testing.T) {
	c := inject.NewInputController()
	c.AxisFunc = func(ctx context.Context, control input.Control) (int, error) {
		return 0, errors.New("disconnected")
	}
	_, err := input.ReadArcade(context.Background(), c)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldEqual, "failed to read AbsoluteRY: disconnected")
}
