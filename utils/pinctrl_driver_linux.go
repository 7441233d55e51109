//go:build linux

package pwmutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/viam-modules/pinctrl/pinctrl"
	"go.uber.org/multierr"
	gl "go.viam.com/rdk/components/board/genericlinux"
	"go.viam.com/rdk/logging"
)

// pi5GPIOChip is the RP1 gpio chip; its lines 0-27 are broadcom GPIO0-27.
const pi5GPIOChip = "gpiochip0"

// pinctrlPin is the part of a pinctrl GPIO pin the driver uses.
type pinctrlPin interface {
	Set(ctx context.Context, high bool, extra map[string]interface{}) error
	Get(ctx context.Context, extra map[string]interface{}) (bool, error)
	Close() error
}

// PinctrlDriver drives Raspberry Pi 5 pins by writing the RP1 registers mapped from /dev/gpiomem0,
// which skips the character device round trip on every edge.
type PinctrlDriver struct {
	logger    logging.Logger
	newPin    func(mapping gl.GPIOBoardMapping) pinctrlPin
	closeCtrl func() error

	mu   sync.Mutex
	pins map[string]pinctrlPin
}

// NewPinctrlDriver maps the pi5 GPIO registers. It fails on boards without /dev/gpiomem0.
func NewPinctrlDriver(logger logging.Logger) (*PinctrlDriver, error) {
	ctrl, err := pinctrl.SetupPinControl(pinctrl.Config{
		GPIOChipPath: "gpio0", DevMemPath: "/dev/gpiomem0",
		ChipSize: 0x30000, UseAlias: true, UseGPIOMem: true,
	}, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to set up pin control")
	}
	return newPinctrlDriver(func(mapping gl.GPIOBoardMapping) pinctrlPin {
		return ctrl.CreateGpioPin(mapping, DefaultFrequencyHz)
	}, ctrl.Close, logger), nil
}

func newPinctrlDriver(
	newPin func(mapping gl.GPIOBoardMapping) pinctrlPin,
	closeCtrl func() error,
	logger logging.Logger,
) *PinctrlDriver {
	return &PinctrlDriver{logger: logger, newPin: newPin, closeCtrl: closeCtrl, pins: map[string]pinctrlPin{}}
}

// pi5Mapping returns the board mapping of the line behind pin.
func pi5Mapping(pin string) (gl.GPIOBoardMapping, error) {
	bcom, ok := BroadcomPinFromHardwareLabel(pin)
	if !ok {
		return gl.GPIOBoardMapping{}, errors.Errorf("no hw pin for (%s)", pin)
	}
	return gl.GPIOBoardMapping{
		GPIOChipDev: pi5GPIOChip,
		GPIO:        int(bcom),
		GPIOName:    fmt.Sprintf("GPIO%d", bcom),
	}, nil
}

func (d *PinctrlDriver) pin(name string) (pinctrlPin, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pins[name]; ok {
		return p, nil
	}
	mapping, err := pi5Mapping(name)
	if err != nil {
		return nil, err
	}
	p := d.newPin(mapping)
	d.logger.Debugw("created pinctrl gpio", "pin", name, "gpio", mapping.GPIO)
	d.pins[name] = p
	return p, nil
}

// ConfigurePin creates the pin and puts it into the requested mode.
func (d *PinctrlDriver) ConfigurePin(ctx context.Context, pin string, mode PinMode) error {
	p, err := d.pin(pin)
	if err != nil {
		return err
	}
	switch mode {
	case PinOutput:
		return p.Set(ctx, false, nil)
	case PinInput:
		_, err := p.Get(ctx, nil)
		return err
	default:
		return errors.Errorf("unexpected pin mode %d for pin %s", mode, pin)
	}
}

// WriteDigital sets the pin. The pin must have been configured first.
func (d *PinctrlDriver) WriteDigital(ctx context.Context, pin string, level Level) error {
	d.mu.Lock()
	p, ok := d.pins[pin]
	d.mu.Unlock()
	if !ok {
		return errors.Errorf("pin %s has not been configured", pin)
	}
	return p.Set(ctx, bool(level), nil)
}

// Close releases every pin, then unmaps the registers.
func (d *PinctrlDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var err error
	for name, p := range d.pins {
		err = multierr.Combine(err, p.Close())
		delete(d.pins, name)
	}
	if d.closeCtrl != nil {
		err = multierr.Combine(err, d.closeCtrl())
		d.closeCtrl = nil
	}
	return err
}
