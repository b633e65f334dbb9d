// Package fake implements a fake heading sensor.
package fake

import (
	"context"
	"math"
	"sync"

	"go.viam.com/drivecore/components/movementsensor"
)

var (
	_ movementsensor.HeadingSensor = &HeadingSensor{}
	_ movementsensor.Calibrator    = &HeadingSensor{}
)

// HeadingSensor is a fake heading sensor that returns the set heading. It reports NaN for its
// first NotReadyReads reads and stays calibrating for CalibrationPolls polls after each Reset.
type HeadingSensor struct {
	mu               sync.Mutex
	heading          float64
	NotReadyReads    int
	CalibrationPolls int
	reads            int
	polls            int
	resets           int
}

// NewHeadingSensor returns a ready sensor reading heading.
func NewHeadingSensor(heading float64) *HeadingSensor {
	return &HeadingSensor{heading: heading}
}

// Heading returns the set heading, or NaN while not ready.
func (h *HeadingSensor) Heading(ctx context.Context) (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reads++
	if h.reads <= h.NotReadyReads {
		return math.NaN(), nil
	}
	return h.heading, nil
}

// SetHeading sets the heading future reads return.
func (h *HeadingSensor) SetHeading(heading float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.heading = heading
}

// Reads returns how many times Heading has been called.
func (h *HeadingSensor) Reads() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reads
}

// Reset zeroes the heading and restarts calibration.
func (h *HeadingSensor) Reset(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.heading = 0
	h.polls = 0
	h.resets++
	return nil
}

// Resets returns how many times Reset has been called.
func (h *HeadingSensor) Resets() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resets
}

// IsCalibrating reports true until CalibrationPolls polls have passed since the last Reset.
func (h *HeadingSensor) IsCalibrating(ctx context.Context) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.polls++
	return h.polls <= h.CalibrationPolls, nil
}
