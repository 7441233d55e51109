// Package tone emits square wave tones on a plain digital output pin.
package tone

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/rdk/logging"

	pwmutils "raspberry-pi-softpwm/utils"
)

// HalfPeriod is how long each of the HIGH and LOW phases of one cycle lasts.
func HalfPeriod(frequencyHz float64) time.Duration {
	return time.Duration(float64(time.Second) / (2 * frequencyHz))
}

// CycleCount is the number of whole cycles that fit in durationMs. There is never a partial
// final cycle.
func CycleCount(frequencyHz float64, durationMs int) int {
	return int(math.Floor(float64(durationMs) * frequencyHz / 1000))
}

// A Note is one entry of a melody. A zero frequency is a rest.
type Note struct {
	FrequencyHz float64
	DurationMs  int
}

// Generator plays tones on one pin, one at a time.
type Generator struct {
	pin    string
	driver pwmutils.DigitalDriver
	logger logging.Logger

	// playMu serializes tones; stateMu guards closed.
	playMu  sync.Mutex
	stateMu sync.Mutex
	closed  bool

	// cancelCtx is done once Close starts, which stops a tone in progress.
	cancelCtx  context.Context
	cancelFunc context.CancelFunc
}

// NewGenerator configures pin as an output.
func NewGenerator(
	ctx context.Context,
	driver pwmutils.DigitalDriver,
	pin string,
	logger logging.Logger,
) (*Generator, error) {
	if pin == "" {
		return nil, errors.Wrap(pwmutils.ErrUnconfiguredChannel, "tone generator needs a pin")
	}
	if err := driver.ConfigurePin(ctx, pin, pwmutils.PinOutput); err != nil {
		return nil, errors.Wrapf(err, "failed to configure pin %s as output", pin)
	}
	cancelCtx, cancelFunc := context.WithCancel(context.Background())
	return &Generator{pin: pin, driver: driver, logger: logger, cancelCtx: cancelCtx, cancelFunc: cancelFunc}, nil
}

// withClose returns a context that is also done when the generator is closed.
func (g *Generator) withClose(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(g.cancelCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// interrupted reports why ctx ended: ErrClosed if Close stopped us, ctx.Err() otherwise.
func (g *Generator) interrupted(ctx context.Context) error {
	if g.cancelCtx.Err() != nil {
		return pwmutils.ErrClosed
	}
	return ctx.Err()
}

func (g *Generator) isClosed() bool {
	g.stateMu.Lock()
	defer g.stateMu.Unlock()
	return g.closed
}

// Tone plays frequencyHz for durationMs, truncated to whole cycles. It blocks until the tone is
// done, ctx is cancelled or the generator is closed; in every case the pin is left LOW.
func (g *Generator) Tone(ctx context.Context, frequencyHz float64, durationMs int) error {
	if frequencyHz <= 0 || math.IsNaN(frequencyHz) || math.IsInf(frequencyHz, 0) {
		return pwmutils.InvalidArgumentf("frequency must be positive, got %v", frequencyHz)
	}
	if durationMs <= 0 {
		return pwmutils.InvalidArgumentf("duration must be positive, got %dms", durationMs)
	}
	if g.isClosed() {
		return pwmutils.ErrClosed
	}

	g.playMu.Lock()
	defer g.playMu.Unlock()
	if g.isClosed() {
		return pwmutils.ErrClosed
	}
	ctx, done := g.withClose(ctx)
	defer done()

	cycles := CycleCount(frequencyHz, durationMs)
	half := HalfPeriod(frequencyHz)
	g.logger.Debugw("playing tone", "pin", g.pin, "frequency_hz", frequencyHz, "duration_ms", durationMs, "cycles", cycles)
	for i := 0; i < cycles; i++ {
		if err := g.driver.WriteDigital(ctx, g.pin, pwmutils.High); err != nil {
			return multierr.Combine(err, g.NoTone(context.Background()))
		}
		if !pwmutils.Sleep(ctx, half) {
			return multierr.Combine(g.interrupted(ctx), g.NoTone(context.Background()))
		}
		if err := g.driver.WriteDigital(ctx, g.pin, pwmutils.Low); err != nil {
			return err
		}
		if !pwmutils.Sleep(ctx, half) {
			return g.interrupted(ctx)
		}
	}
	return nil
}

// Play plays notes in order. Notes with a zero frequency are rests.
func (g *Generator) Play(ctx context.Context, notes []Note) error {
	ctx, done := g.withClose(ctx)
	defer done()
	for i, n := range notes {
		if n.FrequencyHz == 0 {
			if n.DurationMs < 0 {
				return pwmutils.InvalidArgumentf("note %d: rest duration must not be negative, got %dms", i, n.DurationMs)
			}
			if !pwmutils.Sleep(ctx, time.Duration(n.DurationMs)*time.Millisecond) {
				return g.interrupted(ctx)
			}
			continue
		}
		if err := g.Tone(ctx, n.FrequencyHz, n.DurationMs); err != nil {
			return errors.Wrapf(err, "note %d", i)
		}
	}
	return nil
}

// NoTone drives the pin LOW. It does not wait for a running tone.
func (g *Generator) NoTone(ctx context.Context) error {
	return g.driver.WriteDigital(ctx, g.pin, pwmutils.Low)
}

// Close stops a tone in progress, waits for it to return and silences the pin. Later tones
// return ErrClosed.
func (g *Generator) Close(ctx context.Context) error {
	g.stateMu.Lock()
	if g.closed {
		g.stateMu.Unlock()
		return nil
	}
	g.closed = true
	g.stateMu.Unlock()

	g.cancelFunc()
	g.playMu.Lock()
	defer g.playMu.Unlock()
	return g.NoTone(ctx)
}
