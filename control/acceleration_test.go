package control

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/drivecore/utils"
)

func TestLimitAcceleration(t *testing.T) {
	for _, tc := range []struct {
		name                   string
		current, target        int
		accel, decel, expected int
	}{
		{"snap when close", 10, 12, 3, 5, 12},
		{"already there", 40, 40, 3, 5, 40},
		{"accelerate forward", 0, 100, 3, 5, 3},
		{"accelerate backward", 0, -100, 3, 5, -3},
		{"decelerate forward", 100, 0, 3, 5, 95},
		{"decelerate backward", -100, 0, 3, 5, -95},
		{"decel snap", 4, 0, 3, 5, 0},
		{"decel snap negative", -8, -4, 3, 5, -4},
		{"reverse through zero", 20, -127, 3, 5, 15},
		{"speeding up from negative side", -2, -50, 3, 5, -5},
		{"zero accel with equal values", 7, 7, 0, 0, 7},
	} {
		t.Run(tc.name, func(t *testing.T) {
			test.That(t, LimitAcceleration(tc.current, tc.target, tc.accel, tc.decel), test.ShouldEqual, tc.expected)
		})
	}
}

func TestLimitAccelerationBounds(t *testing.T) {
	for _, limits := range []AccelerationLimits{{3, 5}, {5, 3}, {1, 1}, {10, 2}} {
		maxStep := utils.MaxInt(limits.Accel, limits.Decel)
		for current := -127; current <= 127; current += 7 {
			for target := -127; target <= 127; target += 11 {
				out := limits.Limit(current, target)
				lo, hi := utils.MinInt(current, target), utils.MaxInt(current, target)
				test.That(t, out, test.ShouldBeGreaterThanOrEqualTo, lo)
				test.That(t, out, test.ShouldBeLessThanOrEqualTo, hi)
				test.That(t, utils.AbsInt(out-current), test.ShouldBeLessThanOrEqualTo, maxStep)
			}
		}
	}
}

func TestLimitAccelerationConverges(t *testing.T) {
	limits := AccelerationLimits{Accel: 3, Decel: 5}
	speed := 0
	for i := 0; i < 100 && speed != 127; i++ {
		speed = limits.Limit(speed, 127)
	}
	test.That(t, speed, test.ShouldEqual, 127)

	cycles := 0
	for speed != 0 {
		speed = limits.Limit(speed, 0)
		cycles++
	}
	// stopping uses the larger decel step
	test.That(t, cycles, test.ShouldEqual, 26)
}
