package motor

import "github.com/pkg/errors"

// NewEmptyGroupError returns an error for a motor group configured with no motors.
func NewEmptyGroupError(groupName string) error {
	return errors.Errorf("motor group %s has no motors", groupName)
}

// NewSetSpeedError wraps a failed speed write with the motor it was meant for.
func NewSetSpeedError(err error, motorName string, speed int) error {
	return errors.Wrapf(err, "failed to set motor %s to speed %d", motorName, speed)
}

// NewPositionError wraps a failed encoder read with the motor it came from.
func NewPositionError(err error, motorName string) error {
	return errors.Wrapf(err, "failed to read position of motor %s", motorName)
}
