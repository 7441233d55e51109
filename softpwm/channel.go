// Package softpwm implements software PWM on plain digital output pins.
package softpwm

/*
	A Channel owns one pin and one goroutine. Every period the goroutine reads the target duty
	cycle once and reproduces it as a HIGH phase followed by a LOW phase, so a new target is only
	ever observed at a period boundary. Timing is sleep based: scheduler jitter is not corrected.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.viam.com/rdk/logging"
	"go.viam.com/utils"

	pwmutils "raspberry-pi-softpwm/utils"
)

// OnTime returns how long a pin stays HIGH during one period at the given duty cycle.
func OnTime(period time.Duration, duty int) time.Duration {
	return period * time.Duration(duty) / pwmutils.MaxDutyCycle
}

// OffTime returns the rest of the period. OnTime + OffTime is always exactly period.
func OffTime(period time.Duration, duty int) time.Duration {
	return period - OnTime(period, duty)
}

// A Channel reproduces a 0-255 duty cycle on one pin.
type Channel struct {
	name     string
	pin      string
	driver   pwmutils.DigitalDriver
	period   time.Duration
	polarity pwmutils.Polarity
	logger   logging.Logger

	mu      sync.Mutex
	duty    int
	started bool
	closed  bool

	periods atomic.Uint64

	// observed is called with every duty cycle the loop reads, stored with every accepted
	// target. Only set in tests.
	observed func(duty int)
	stored   func(duty int)

	cancelCtx               context.Context
	cancelFunc              context.CancelFunc
	activeBackgroundWorkers sync.WaitGroup
}

// NewChannel returns a stopped channel. An empty pin makes an unbound channel, which never
// starts a loop and never touches the driver.
func NewChannel(
	name, pin string,
	driver pwmutils.DigitalDriver,
	period time.Duration,
	polarity pwmutils.Polarity,
	logger logging.Logger,
) *Channel {
	cancelCtx, cancelFunc := context.WithCancel(context.Background())
	return &Channel{
		name:       name,
		pin:        pin,
		driver:     driver,
		period:     period,
		polarity:   polarity,
		logger:     logger,
		cancelCtx:  cancelCtx,
		cancelFunc: cancelFunc,
	}
}

// Name returns the channel name, e.g. "red".
func (c *Channel) Name() string {
	return c.name
}

// Pin returns the pin the channel drives, or "" if it is unbound.
func (c *Channel) Pin() string {
	return c.pin
}

// Bound reports whether the channel has a pin.
func (c *Channel) Bound() bool {
	return c.pin != ""
}

// Periods returns how many full periods the loop has completed.
func (c *Channel) Periods() uint64 {
	return c.periods.Load()
}

// SetDutyCycle stores a new target. It takes effect at the next period boundary.
func (c *Channel) SetDutyCycle(duty int) error {
	if err := pwmutils.ValidateDutyCycle(duty); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duty = duty
	if c.stored != nil {
		c.stored(duty)
	}
	return nil
}

// DutyCycle returns the current target.
func (c *Channel) DutyCycle() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duty
}

// Start launches the loop. It does nothing for unbound, running or closed channels.
func (c *Channel) Start() {
	if !c.Bound() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.closed {
		return
	}
	c.started = true
	c.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(c.run, c.activeBackgroundWorkers.Done)
}

func (c *Channel) run() {
	failing := false
	for {
		duty := c.DutyCycle()
		if c.observed != nil {
			c.observed(duty)
		}

		if duty == 0 {
			// nothing to toggle, hold LOW for the whole period
			failing = c.write(pwmutils.Low, failing)
			if !pwmutils.Sleep(c.cancelCtx, c.period) {
				return
			}
			c.periods.Add(1)
			continue
		}

		on := OnTime(c.period, duty)
		failing = c.write(pwmutils.High, failing)
		if !pwmutils.Sleep(c.cancelCtx, on) {
			return
		}
		failing = c.write(pwmutils.Low, failing)
		if !pwmutils.Sleep(c.cancelCtx, c.period-on) {
			return
		}
		c.periods.Add(1)
	}
}

// write logs the first failure of a streak and the recovery, and returns whether the write failed.
func (c *Channel) write(level pwmutils.Level, failing bool) bool {
	err := c.driver.WriteDigital(c.cancelCtx, c.pin, c.polarity.Apply(level))
	switch {
	case err != nil && !failing:
		if c.cancelCtx.Err() == nil {
			c.logger.Warnw("soft pwm write failed", "channel", c.name, "pin", c.pin, "level", level, "error", err)
		}
		return true
	case err == nil && failing:
		c.logger.Infow("soft pwm writes recovered", "channel", c.name, "pin", c.pin)
		return false
	}
	return err != nil
}

// Close stops the loop, waits for it to exit and drives the pin to its OFF level.
func (c *Channel) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancelFunc()
	c.activeBackgroundWorkers.Wait()

	if !c.Bound() {
		return nil
	}
	return c.driver.WriteDigital(ctx, c.pin, c.polarity.Apply(pwmutils.Low))
}
