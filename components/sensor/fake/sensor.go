// Package fake implements a fake Sensor.
package fake

import (
	"context"
	"sync"

	"go.viam.com/drivecore/components/sensor"
)

var _ sensor.Sensor = &Sensor{}

// Sensor is a fake Sensor device that always returns the set value.
type Sensor struct {
	mu    sync.Mutex
	value int
}

// NewSensor returns a sensor reading value.
func NewSensor(value int) *Sensor {
	return &Sensor{value: value}
}

// Value always returns the set value.
func (s *Sensor) Value(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, nil
}

// SetValue changes the value future reads return.
func (s *Sensor) SetValue(value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
}
