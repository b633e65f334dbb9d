// Package control implements the motion shaping and feedback blocks used by the drive and the
// closed-loop motion primitives: joystick deadband and cubic response, acceleration limiting, a
// PID block, and a square-root ramp velocity profile. Everything here is pure or owns only its own
// small state; none of it touches hardware.
package control

import (
	"math"

	"go.viam.com/drivecore/utils"
)

// JoystickRange is the magnitude of a full joystick deflection.
const JoystickRange = 128

// Deadband suppresses joystick noise near center. Inputs are clamped to [-128, 128]. The result is
// 0 exactly when |raw| < threshold; beyond the threshold the remaining travel is stretched back
// over [1, 128] with the sign of raw preserved, so the first live value past the band is ±1 and a
// full deflection stays at ±128.
func Deadband(raw, threshold int) int {
	raw = utils.Trim(raw, -JoystickRange, JoystickRange)
	threshold = utils.AbsInt(threshold)
	if threshold == 0 {
		return raw
	}
	mag := utils.AbsInt(raw)
	if mag < threshold {
		return 0
	}
	if threshold >= JoystickRange {
		return utils.Sign(raw) * JoystickRange
	}
	live := 1 + (mag-threshold)*(JoystickRange-1)/(JoystickRange-threshold)
	return utils.Sign(raw) * live
}

// CubifySpeed applies the cubic response curve: fine control near center, full authority at the
// extremes. The result is truncated toward zero, which keeps the curve odd.
func CubifySpeed(v int) int {
	normalized := utils.Scale(float64(utils.Trim(v, -JoystickRange, JoystickRange)), -JoystickRange, JoystickRange, -1, 1)
	return utils.TruncToInt(utils.Scale(math.Pow(normalized, 3), -1, 1, -JoystickRange, JoystickRange))
}

// ArcadeMix combines a speed and a direction axis into cubic-shaped left and right commands.
// turnAuthority scales how much of the direction axis is mixed in (0.8–0.85 on the robot).
func ArcadeMix(speed, direction int, turnAuthority float64) (int, int) {
	turn := float64(direction) * turnAuthority
	left := CubifySpeed(utils.TruncToInt(float64(speed) + turn))
	right := CubifySpeed(utils.TruncToInt(float64(speed) - turn))
	return left, right
}
