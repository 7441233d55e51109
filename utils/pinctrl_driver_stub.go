//go:build !linux

package pwmutils

import (
	"context"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
)

// PinctrlDriver is only available on linux.
type PinctrlDriver struct{}

// NewPinctrlDriver always fails off linux.
func NewPinctrlDriver(logger logging.Logger) (*PinctrlDriver, error) {
	return nil, errors.New("pinctrl is only supported on linux")
}

// ConfigurePin is unsupported.
func (d *PinctrlDriver) ConfigurePin(ctx context.Context, pin string, mode PinMode) error {
	return errors.New("pinctrl is only supported on linux")
}

// WriteDigital is unsupported.
func (d *PinctrlDriver) WriteDigital(ctx context.Context, pin string, level Level) error {
	return errors.New("pinctrl is only supported on linux")
}

// Close does nothing.
func (d *PinctrlDriver) Close() error {
	return nil
}
