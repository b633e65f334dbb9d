package inject

import (
	"context"

	"go.viam.com/drivecore/components/sensor"
)

// Sensor is an injected sensor.
type Sensor struct {
	sensor.Sensor
	ValueFunc func(ctx context.Context) (int, error)
}

// NewSensor returns a new injected sensor.
func NewSensor() *Sensor {
	return &Sensor{}
}

// Value calls the injected Value or the real version.
func (s *Sensor) Value(ctx context.Context) (int, error) {
	if s.ValueFunc == nil {
		return s.Sensor.Value(ctx)
	}
	return s.ValueFunc(ctx)
}
