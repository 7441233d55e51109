package pwmutils

import (
	"context"
	"time"

	"go.viam.com/utils"
)

// MaxDutyCycle is the duty cycle that keeps a pin HIGH for the whole period.
const MaxDutyCycle = 255

// Level is the logic level written to a pin.
type Level bool

const (
	// Low drives the pin to 0.
	Low Level = false
	// High drives the pin to 1.
	High Level = true
)

func (l Level) String() string {
	if l {
		return "HIGH"
	}
	return "LOW"
}

// PinMode tracks what a pin is configured as.
type PinMode int

const (
	PinOutput PinMode = iota // PinOutput is a digital output
	PinInput                 // PinInput is a digital input
)

// A DigitalDriver sets pin modes and writes levels. Implementations must be safe to call from
// several goroutines at once, one per soft PWM channel.
type DigitalDriver interface {
	ConfigurePin(ctx context.Context, pin string, mode PinMode) error
	WriteDigital(ctx context.Context, pin string, level Level) error
}

// Polarity maps logical levels onto physical ones.
type Polarity bool

const (
	// ActiveHigh writes levels unchanged.
	ActiveHigh Polarity = false
	// ActiveLow inverts every level before it is written.
	ActiveLow Polarity = true
)

// Apply returns the physical level for the logical level l.
func (p Polarity) Apply(l Level) Level {
	if p == ActiveLow {
		return !l
	}
	return l
}

// Sleep suspends the caller for d. It returns false if ctx was done first.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	return utils.SelectContextOrWait(ctx, d)
}
