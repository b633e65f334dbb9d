// Package fake implements a fake motor.
package fake

import (
	"context"
	"sync"

	"go.viam.com/drivecore/components/motor"
)

var _ motor.Motor = &Motor{}

// A Motor records the last commanded speed and integrates it into encoder ticks each time Step is
// called, so tests control exactly how far it has turned.
type Motor struct {
	Name string
	// TicksPerSpeed is how many ticks one unit of speed advances the encoder per Step.
	TicksPerSpeed float64

	mu       sync.Mutex
	speed    int
	position float64
	writes   int
}

// NewMotor returns a stopped fake motor at position zero.
func NewMotor(name string, ticksPerSpeed float64) *Motor {
	return &Motor{Name: name, TicksPerSpeed: ticksPerSpeed}
}

// SetSpeed stores the clamped speed.
func (m *Motor) SetSpeed(ctx context.Context, speed int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speed = motor.ClampSpeed(speed)
	m.writes++
	return nil
}

// Position returns the integrated encoder ticks, truncated.
func (m *Motor) Position(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int(m.position), nil
}

// ResetZeroPosition zeroes the encoder.
func (m *Motor) ResetZeroPosition(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = 0
	return nil
}

// Speed returns the last commanded speed.
func (m *Motor) Speed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speed
}

// Writes returns how many times SetSpeed has been called.
func (m *Motor) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// SetPosition moves the encoder to ticks, as if the mechanism had been pushed there.
func (m *Motor) SetPosition(ticks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = float64(ticks)
}

// Step advances the encoder by one cycle at the current speed.
func (m *Motor) Step() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position += float64(m.speed) * m.TicksPerSpeed
}
