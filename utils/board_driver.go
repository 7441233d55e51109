package pwmutils

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.viam.com/rdk/components/board"
	"go.viam.com/rdk/resource"
)

// BoardDriver drives pins through the GPIO API of an RDK board. The Raspberry Pi boards
// configure a pin as an output on the first Set and as an input on the first Get.
type BoardDriver struct {
	board board.Board

	mu   sync.Mutex
	pins map[string]board.GPIOPin
}

// NewBoardDriver returns a driver for the given board.
func NewBoardDriver(b board.Board) *BoardDriver {
	return &BoardDriver{board: b, pins: map[string]board.GPIOPin{}}
}

// BoardFromDependencies finds the named board in deps.
func BoardFromDependencies(deps resource.Dependencies, name string) (board.Board, error) {
	res, err := deps.Lookup(board.Named(name))
	if err != nil {
		return nil, errors.Wrapf(err, "board %q not found in dependencies", name)
	}
	b, ok := res.(board.Board)
	if !ok {
		return nil, errors.Errorf("dependency %q is a %T, not a board", name, res)
	}
	return b, nil
}

func (d *BoardDriver) gpioPin(name string) (board.GPIOPin, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if pin, ok := d.pins[name]; ok {
		return pin, nil
	}
	pin, err := d.board.GPIOPinByName(name)
	if err != nil {
		return nil, err
	}
	d.pins[name] = pin
	return pin, nil
}

// ConfigurePin looks up the pin on the board and puts it into the requested mode.
func (d *BoardDriver) ConfigurePin(ctx context.Context, pin string, mode PinMode) error {
	gp, err := d.gpioPin(pin)
	if err != nil {
		return err
	}
	switch mode {
	case PinOutput:
		return gp.Set(ctx, false, nil)
	case PinInput:
		_, err := gp.Get(ctx, nil)
		return err
	default:
		return errors.Errorf("unexpected pin mode %d for pin %s", mode, pin)
	}
}

// WriteDigital sets the pin high or low.
func (d *BoardDriver) WriteDigital(ctx context.Context, pin string, level Level) error {
	gp, err := d.gpioPin(pin)
	if err != nil {
		return err
	}
	return gp.Set(ctx, bool(level), nil)
}
