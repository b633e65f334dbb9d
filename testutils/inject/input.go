package inject

import (
	"context"

	"go.viam.com/drivecore/components/input"
)

// InputController is an injected InputController.
type InputController struct {
	input.Controller
	AxisFunc   func(ctx context.Context, control input.Control) (int, error)
	ButtonFunc func(ctx context.Context, control input.Control) (bool, error)
}

// NewInputController returns a new injected input controller.
func NewInputController() *InputController {
	return &InputController{}
}

// Axis calls the injected function or the real version.
func (s *InputController) Axis(ctx context.Context, control input.Control) (int, error) {
	if s.AxisFunc == nil {
		return s.Controller.Axis(ctx, control)
	}
	return s.AxisFunc(ctx, control)
}

// Button calls the injected function or the real version.
func (s *InputController) Button(ctx context.Context, control input.Control) (bool, error) {
	if s.ButtonFunc == nil {
		return s.Controller.Button(ctx, control)
	}
	return s.ButtonFunc(ctx, control)
}
