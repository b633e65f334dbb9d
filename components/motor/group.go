package motor

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
)

var _ Motor = (*Group)(nil)

// A Group drives several motors as one, such as every motor on one side of a chassis.
// Writes reach every motor even when one of them fails.
type Group struct {
	name   string
	names  []string
	motors []Motor
}

// NewGroup returns a group over the named motors. names and motors are matched by index.
func NewGroup(name string, names []string, motors []Motor) (*Group, error) {
	if len(motors) == 0 || len(names) != len(motors) {
		return nil, NewEmptyGroupError(name)
	}
	return &Group{name: name, names: names, motors: motors}, nil
}

// Name returns the group's name.
func (g *Group) Name() string {
	return g.name
}

// Len returns the number of motors in the group.
func (g *Group) Len() int {
	return len(g.motors)
}

// SetSpeed clamps speed and writes it to every motor.
func (g *Group) SetSpeed(ctx context.Context, speed int) error {
	speed = ClampSpeed(speed)
	var errs error
	for i, m := range g.motors {
		if err := m.SetSpeed(ctx, speed); err != nil {
			errs = multierr.Combine(errs, NewSetSpeedError(err, g.names[i], speed))
		}
	}
	return errs
}

// Positions returns every motor's encoder reading in group order.
func (g *Group) Positions(ctx context.Context) ([]int, error) {
	positions := make([]int, 0, len(g.motors))
	for i, m := range g.motors {
		pos, err := m.Position(ctx)
		if err != nil {
			return nil, NewPositionError(err, g.names[i])
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

// Position returns the mean encoder reading across the group.
func (g *Group) Position(ctx context.Context) (int, error) {
	positions, err := g.Positions(ctx)
	if err != nil {
		return 0, err
	}
	return lo.Sum(positions) / len(positions), nil
}

// ResetZeroPosition zeroes every motor's encoder.
func (g *Group) ResetZeroPosition(ctx context.Context) error {
	var errs error
	for i, m := range g.motors {
		if err := m.ResetZeroPosition(ctx); err != nil {
			errs = multierr.Combine(errs, errors.Wrapf(err, "failed to zero motor %s", g.names[i]))
		}
	}
	return errs
}
