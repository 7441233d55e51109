//go:build !linux

package pwmutils

import (
	"context"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
)

// ConsumerLabel is the consumer name shown by gpioinfo for lines held by the soft PWM drivers.
const ConsumerLabel = "soft-pwm"

// ChipDriver is only available on linux.
type ChipDriver struct{}

// NewChipDriver always fails off linux.
func NewChipDriver(chip string, logger logging.Logger) (*ChipDriver, error) {
	return nil, errors.New("gpio character devices are only supported on linux")
}

// ConfigurePin is unsupported.
func (d *ChipDriver) ConfigurePin(ctx context.Context, pin string, mode PinMode) error {
	return errors.New("gpio character devices are only supported on linux")
}

// WriteDigital is unsupported.
func (d *ChipDriver) WriteDigital(ctx context.Context, pin string, level Level) error {
	return errors.New("gpio character devices are only supported on linux")
}

// Close does nothing.
func (d *ChipDriver) Close() error {
	return nil
}
