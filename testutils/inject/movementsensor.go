package inject

import (
	"context"

	"go.viam.com/drivecore/components/movementsensor"
)

// HeadingSensor is an injected heading sensor.
type HeadingSensor struct {
	movementsensor.HeadingSensor
	HeadingFunc       func(ctx context.Context) (float64, error)
	ResetFunc         func(ctx context.Context) error
	IsCalibratingFunc func(ctx context.Context) (bool, error)
}

// NewHeadingSensor returns a new injected heading sensor.
func NewHeadingSensor() *HeadingSensor {
	return &HeadingSensor{}
}

// Heading calls the injected Heading or the real version.
func (h *HeadingSensor) Heading(ctx context.Context) (float64, error) {
	if h.HeadingFunc == nil {
		return h.HeadingSensor.Heading(ctx)
	}
	return h.HeadingFunc(ctx)
}

// Reset calls the injected Reset or the real version, if it has one.
func (h *HeadingSensor) Reset(ctx context.Context) error {
	if h.ResetFunc == nil {
		if c, ok := h.HeadingSensor.(movementsensor.Calibrator); ok {
			return c.Reset(ctx)
		}
		return nil
	}
	return h.ResetFunc(ctx)
}

// IsCalibrating calls the injected IsCalibrating or the real version, if it has one.
func (h *HeadingSensor) IsCalibrating(ctx context.Context) (bool, error) {
	if h.IsCalibratingFunc == nil {
		if c, ok := h.HeadingSensor.(movementsensor.Calibrator); ok {
			return c.IsCalibrating(ctx)
		}
		return false, nil
	}
	return h.IsCalibratingFunc(ctx)
}
