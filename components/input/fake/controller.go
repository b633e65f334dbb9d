// Package fake implements a fake input controller.
package fake

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/drivecore/components/input"
)

var _ input.Controller = &Controller{}

// Controller is a fake input controller whose sticks and buttons are set directly.
type Controller struct {
	mu      sync.Mutex
	axes    map[input.Control]int
	buttons map[input.Control]bool
}

// NewController returns a controller with centered sticks and nothing pressed.
func NewController() *Controller {
	return &Controller{
		axes:    map[input.Control]int{},
		buttons: map[input.Control]bool{},
	}
}

// Axis returns the set axis position.
func (c *Controller) Axis(ctx context.Context, control input.Control) (int, error) {
	if !control.IsAxis() {
		return 0, errors.Errorf("%s is not an axis", control)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.axes[control], nil
}

// Button returns the set button state.
func (c *Controller) Button(ctx context.Context, control input.Control) (bool, error) {
	if control.IsAxis() {
		return false, errors.Errorf("%s is not a button", control)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buttons[control], nil
}

// SetAxis moves a stick.
func (c *Controller) SetAxis(control input.Control, value int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.axes[control] = value
}

// SetButton presses or releases a button.
func (c *Controller) SetButton(control input.Control, pressed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buttons[control] = pressed
}

// Release centers every stick and releases every button.
func (c *Controller) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.axes = map[input.Control]int{}
	c.buttons = map[input.Control]bool{}
}
