package control

import "go.viam.com/drivecore/utils"

// AccelerationLimits bounds how far a commanded speed may move in one control cycle. Decel
// applies while the speed is heading back toward zero and is usually larger than Accel so the
// robot stops faster than it starts.
type AccelerationLimits struct {
	Accel int `json:"accel"`
	Decel int `json:"decel"`
}

// Limit steps current toward target under these limits.
func (l AccelerationLimits) Limit(current, target int) int {
	return LimitAcceleration(current, target, l.Accel, l.Decel)
}

// LimitAcceleration returns the next commanded value moving from current toward target.
//
//  1. A gap smaller than accelLimit snaps straight to target.
//  2. While decelerating (moving back toward zero from current's side) the step is decelLimit,
//     or target itself once the gap fits inside decelLimit.
//  3. Otherwise the step is accelLimit toward target.
//
// The result always lies between current and target inclusive.
func LimitAcceleration(current, target, accelLimit, decelLimit int) int {
	accelLimit = utils.AbsInt(accelLimit)
	decelLimit = utils.AbsInt(decelLimit)
	gap := utils.AbsInt(target - current)

	if gap < accelLimit || gap == 0 {
		return target
	}

	switch {
	case target < current && current > 0:
		if gap > decelLimit {
			return current - decelLimit
		}
		return target
	case target < current:
		return current - accelLimit
	case target > current && current < 0:
		if gap > decelLimit {
			return current + decelLimit
		}
		return target
	default:
		return current + accelLimit
	}
}
