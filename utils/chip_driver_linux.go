//go:build linux

package pwmutils

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/multierr"
	"go.viam.com/rdk/logging"
)

// ConsumerLabel is the consumer name shown by gpioinfo for lines held by the soft PWM drivers.
const ConsumerLabel = "soft-pwm"

// ChipDriver drives lines of a GPIO character device directly, without a board resource.
type ChipDriver struct {
	chip   string
	logger logging.Logger

	mu    sync.Mutex
	lines map[string]*gpiocdev.Line
}

// NewChipDriver returns a driver for the named chip, e.g. "gpiochip0".
func NewChipDriver(chip string, logger logging.Logger) (*ChipDriver, error) {
	if chip == "" {
		return nil, errors.New("need a gpio chip name")
	}
	return &ChipDriver{chip: chip, logger: logger, lines: map[string]*gpiocdev.Line{}}, nil
}

// ConfigurePin requests the line for pin, or reconfigures it if we already hold it.
func (d *ChipDriver) ConfigurePin(ctx context.Context, pin string, mode PinMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if line, ok := d.lines[pin]; ok {
		switch mode {
		case PinOutput:
			return line.Reconfigure(gpiocdev.AsOutput(0))
		case PinInput:
			return line.Reconfigure(gpiocdev.AsInput)
		}
		return errors.Errorf("unexpected pin mode %d for pin %s", mode, pin)
	}

	offset, ok := BroadcomPinFromHardwareLabel(pin)
	if !ok {
		return errors.Errorf("no hw pin for (%s)", pin)
	}
	var opt gpiocdev.LineReqOption
	switch mode {
	case PinOutput:
		opt = gpiocdev.AsOutput(0)
	case PinInput:
		opt = gpiocdev.AsInput
	default:
		return errors.Errorf("unexpected pin mode %d for pin %s", mode, pin)
	}
	line, err := gpiocdev.RequestLine(d.chip, int(offset), opt, gpiocdev.WithConsumer(ConsumerLabel))
	if err != nil {
		return errors.Wrapf(err, "failed to request %s line %d for pin %s", d.chip, offset, pin)
	}
	d.logger.Debugw("requested gpio line", "chip", d.chip, "offset", offset, "pin", pin)
	d.lines[pin] = line
	return nil
}

// WriteDigital sets the line for pin. The pin must have been configured first.
func (d *ChipDriver) WriteDigital(ctx context.Context, pin string, level Level) error {
	d.mu.Lock()
	line, ok := d.lines[pin]
	d.mu.Unlock()
	if !ok {
		return errors.Errorf("pin %s has not been configured", pin)
	}
	v := 0
	if level {
		v = 1
	}
	return line.SetValue(v)
}

// Close releases every requested line.
func (d *ChipDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var err error
	for pin, line := range d.lines {
		err = multierr.Combine(err, line.Close())
		delete(d.lines, pin)
	}
	return err
}
