package pwmutils

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned when a duty cycle, angle, frequency or step count is out of range.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnconfiguredChannel is returned when an operation targets a channel that has no pin.
	// It is also an ErrInvalidArgument.
	ErrUnconfiguredChannel = errors.Wrap(ErrInvalidArgument, "channel has no pin assigned")

	// ErrClosed is returned by operations on a closed controller or generator.
	ErrClosed = errors.New("already closed")
)

// InvalidArgumentf returns an ErrInvalidArgument annotated with the formatted message.
func InvalidArgumentf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

// ValidateDutyCycle checks that duty is within [0, MaxDutyCycle].
func ValidateDutyCycle(duty int) error {
	if duty < 0 || duty > MaxDutyCycle {
		return InvalidArgumentf("duty cycle %d out of range [0, %d]", duty, MaxDutyCycle)
	}
	return nil
}
