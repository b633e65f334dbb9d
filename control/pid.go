package control

import (
	"math"
	"sync"

	"github.com/pkg/errors"
)

// PIDConfig holds the gains and limits of one PID stage. Output is
// Scale * (Kp*error + Kd*derivative + Ki*integral), clamped to ±MaxOutput.
type PIDConfig struct {
	Kp    float64 `json:"kp"`
	Ki    float64 `json:"ki"`
	Kd    float64 `json:"kd"`
	Scale float64 `json:"scale,omitempty"`
	// IntegralBand gates integration: error only accumulates while |error| < IntegralBand.
	// Zero disables the integral term entirely.
	IntegralBand float64 `json:"integral_band"`
	MaxOutput    float64 `json:"max_output"`
}

// Validate ensures the gains describe a usable controller.
func (c PIDConfig) Validate() error {
	if c.Kp == 0 && c.Ki == 0 && c.Kd == 0 {
		return errors.New("pid should have at least one Ki, Kp or Kd field")
	}
	if c.MaxOutput <= 0 {
		return errors.Errorf("pid max_output must be positive, got %v", c.MaxOutput)
	}
	if c.IntegralBand < 0 {
		return errors.Errorf("pid integral_band cannot be negative, got %v", c.IntegralBand)
	}
	return nil
}

func (c PIDConfig) scale() float64 {
	if c.Scale == 0 {
		return 1
	}
	return c.Scale
}

// PID is a discrete controller stepped once per control cycle. The derivative is the per-cycle
// change in error, so gains are only valid for the cycle period they were tuned at.
type PID struct {
	mu        sync.Mutex
	cfg       PIDConfig
	prevError float64
	integral  float64
}

// NewPID returns a controller with no accumulated state.
func NewPID(cfg PIDConfig) *PID {
	return &PID{cfg: cfg}
}

// Reset clears the integral and seeds the previous error so the first derivative is zero.
func (p *PID) Reset(initialError float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prevError = initialError
	p.integral = 0
}

// ResetIntegral drops the accumulated integral but keeps the derivative history.
func (p *PID) ResetIntegral() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.integral = 0
}

// Retune swaps the gains in place. Derivative history carries over so a coarse-to-fine hand-off
// does not kick.
func (p *PID) Retune(cfg PIDConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
}

// Config returns the gains currently in use.
func (p *PID) Config() PIDConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// Integral returns the accumulated integral.
func (p *PID) Integral() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.integral
}

// Next steps the controller with the current error and returns the clamped output together with
// the derivative used to compute it.
func (p *PID) Next(err float64) (float64, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	derivative := err - p.prevError
	p.prevError = err

	// anti-windup by gating, not clamping
	if math.Abs(err) < p.cfg.IntegralBand {
		p.integral += err
	}

	output := p.cfg.scale() * (err*p.cfg.Kp + derivative*p.cfg.Kd + p.integral*p.cfg.Ki)
	if output > p.cfg.MaxOutput {
		output = p.cfg.MaxOutput
	} else if output < -p.cfg.MaxOutput {
		output = -p.cfg.MaxOutput
	}
	return output, derivative
}
