package pwmutils

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// A Write is one recorded call to WriteDigital.
type Write struct {
	Pin   string
	Level Level
	At    time.Time
}

// FakeDriver records pin configuration and writes in memory. It backs the tests and the demo's
// dry run mode.
type FakeDriver struct {
	keepHistory bool

	mu       sync.Mutex
	modes    map[string]PinMode
	history  []Write
	counts   map[string]map[Level]int
	last     map[string]Level
	writeErr error
}

// NewFakeDriver returns an empty FakeDriver. With keepHistory unset only counts and the last
// level per pin are kept, so long dry runs do not grow without bound.
func NewFakeDriver(keepHistory bool) *FakeDriver {
	return &FakeDriver{
		keepHistory: keepHistory,
		modes:       map[string]PinMode{},
		counts:      map[string]map[Level]int{},
		last:        map[string]Level{},
	}
}

// ConfigurePin records the mode of pin.
func (d *FakeDriver) ConfigurePin(ctx context.Context, pin string, mode PinMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.modes[pin] = mode
	return nil
}

// WriteDigital records the write, or returns the error set with FailWrites.
func (d *FakeDriver) WriteDigital(ctx context.Context, pin string, level Level) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.writeErr != nil {
		return d.writeErr
	}
	if mode, ok := d.modes[pin]; !ok || mode != PinOutput {
		return errors.Errorf("pin %s is not configured as an output", pin)
	}
	if d.keepHistory {
		d.history = append(d.history, Write{Pin: pin, Level: level, At: time.Now()})
	}
	if d.counts[pin] == nil {
		d.counts[pin] = map[Level]int{}
	}
	d.counts[pin][level]++
	d.last[pin] = level
	return nil
}

// FailWrites makes every following write return err. A nil err restores normal behavior.
func (d *FakeDriver) FailWrites(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writeErr = err
}

// Mode returns the configured mode of pin and whether it was configured at all.
func (d *FakeDriver) Mode(pin string) (PinMode, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	mode, ok := d.modes[pin]
	return mode, ok
}

// Count returns how many times level was written to pin.
func (d *FakeDriver) Count(pin string, level Level) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[pin][level]
}

// Writes returns the total number of writes to pin.
func (d *FakeDriver) Writes(pin string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[pin][High] + d.counts[pin][Low]
}

// Last returns the last level written to pin and whether pin was ever written.
func (d *FakeDriver) Last(pin string) (Level, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.last[pin]
	return l, ok
}

// History returns a copy of every recorded write, oldest first.
func (d *FakeDriver) History() []Write {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Write(nil), d.history...)
}

// Pins returns every pin that has been written.
func (d *FakeDriver) Pins() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	pins := make([]string, 0, len(d.last))
	for pin := range d.last {
		pins = append(pins, pin)
	}
	return pins
}
