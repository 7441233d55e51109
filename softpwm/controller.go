package softpwm

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/rdk/logging"

	pwmutils "raspberry-pi-softpwm/utils"
)

// Defaults used by the generic channel fade.
const (
	DefaultFadeDelay = 20 * time.Millisecond
	DefaultFadeStep  = 5
)

// ControllerConfig assigns pins to the four channels of a Controller. Any pin may be empty.
type ControllerConfig struct {
	RedPin      string
	GreenPin    string
	BluePin     string
	GenericPin  string
	FrequencyHz int
	LEDType     pwmutils.LEDType
}

// Validate checks the LED type and frequency, and that no pin drives two channels.
func (cfg ControllerConfig) Validate() error {
	if err := cfg.LEDType.Validate(); err != nil {
		return err
	}
	if cfg.FrequencyHz < 0 {
		return pwmutils.InvalidArgumentf("frequency_hz must not be negative, got %d", cfg.FrequencyHz)
	}
	if int64(cfg.FrequencyHz) > int64(time.Second) {
		return pwmutils.InvalidArgumentf("frequency_hz %d is too high", cfg.FrequencyHz)
	}
	seen := map[string]string{}
	for _, assigned := range []struct{ channel, pin string }{
		{"red", cfg.RedPin}, {"green", cfg.GreenPin}, {"blue", cfg.BluePin}, {"generic", cfg.GenericPin},
	} {
		if assigned.pin == "" {
			continue
		}
		if other, ok := seen[assigned.pin]; ok {
			return pwmutils.InvalidArgumentf("pin %s is assigned to both the %s and %s channels", assigned.pin, other, assigned.channel)
		}
		seen[assigned.pin] = assigned.channel
	}
	return nil
}

// Period returns the PWM period shared by every channel.
func (cfg ControllerConfig) Period() time.Duration {
	freq := cfg.FrequencyHz
	if freq == 0 {
		freq = pwmutils.DefaultFrequencyHz
	}
	return time.Second / time.Duration(freq)
}

// Color is an RGB triple, each field 0-255.
type Color struct {
	R, G, B int
}

// Validate checks every field is a valid duty cycle.
func (c Color) Validate() error {
	for _, v := range []int{c.R, c.G, c.B} {
		if err := pwmutils.ValidateDutyCycle(v); err != nil {
			return errors.Wrapf(err, "color (%d, %d, %d)", c.R, c.G, c.B)
		}
	}
	return nil
}

// Interpolate returns step i of a linear fade from one color to another over steps steps,
// rounded to the nearest integer. Step 0 is from and step steps is to.
func Interpolate(from, to Color, i, steps int) Color {
	if steps <= 0 {
		return to
	}
	lerp := func(a, b int) int {
		return int(math.Round(float64(a) + float64(b-a)*float64(i)/float64(steps)))
	}
	return Color{R: lerp(from.R, to.R), G: lerp(from.G, to.G), B: lerp(from.B, to.B)}
}

// Controller aggregates a red, green, blue and generic channel. The RGB channels share one
// color record; the generic channel has its own duty cycle.
type Controller struct {
	logger logging.Logger

	red, green, blue, generic *Channel

	mu     sync.Mutex
	color  Color
	closed bool
}

// NewController configures every assigned pin as an output and starts a loop for each one.
func NewController(
	ctx context.Context,
	cfg ControllerConfig,
	driver pwmutils.DigitalDriver,
	logger logging.Logger,
) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, pin := range []string{cfg.RedPin, cfg.GreenPin, cfg.BluePin, cfg.GenericPin} {
		if pin == "" {
			continue
		}
		if err := driver.ConfigurePin(ctx, pin, pwmutils.PinOutput); err != nil {
			return nil, errors.Wrapf(err, "failed to configure pin %s as output", pin)
		}
	}

	period := cfg.Period()
	rgbPolarity := cfg.LEDType.Polarity()
	newChannel := func(name, pin string, polarity pwmutils.Polarity) *Channel {
		return NewChannel(name, pin, driver, period, polarity, logger.Sublogger(name))
	}
	c := &Controller{
		logger:  logger,
		red:     newChannel("red", cfg.RedPin, rgbPolarity),
		green:   newChannel("green", cfg.GreenPin, rgbPolarity),
		blue:    newChannel("blue", cfg.BluePin, rgbPolarity),
		generic: newChannel("generic", cfg.GenericPin, pwmutils.ActiveHigh),
	}
	for _, ch := range c.channels() {
		ch.Start()
	}
	logger.Debugw("soft pwm controller started", "period", period, "channels", len(c.Channels()))
	return c, nil
}

func (c *Controller) channels() []*Channel {
	return []*Channel{c.red, c.green, c.blue, c.generic}
}

// Channels returns the bound channels.
func (c *Controller) Channels() []*Channel {
	var bound []*Channel
	for _, ch := range c.channels() {
		if ch.Bound() {
			bound = append(bound, ch)
		}
	}
	return bound
}

// SetRGB sets the color. Channels without a pin are skipped silently.
func (c *Controller) SetRGB(r, g, b int) error {
	color := Color{R: r, G: g, B: b}
	if err := color.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return pwmutils.ErrClosed
	}
	for _, update := range []struct {
		ch    *Channel
		value int
		field *int
	}{
		{c.red, r, &c.color.R}, {c.green, g, &c.color.G}, {c.blue, b, &c.color.B},
	} {
		if !update.ch.Bound() {
			continue
		}
		if err := update.ch.SetDutyCycle(update.value); err != nil {
			return err
		}
		*update.field = update.value
	}
	c.logger.Debugw("setting RGB", "r", r, "g", g, "b", b)
	return nil
}

// Color returns the current color. Fields of unbound channels stay 0.
func (c *Controller) Color() Color {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.color
}

// SetRandomColor picks three independent uniform values and sets them.
func (c *Controller) SetRandomColor() (Color, error) {
	color := Color{
		R: rand.IntN(pwmutils.MaxDutyCycle + 1),
		G: rand.IntN(pwmutils.MaxDutyCycle + 1),
		B: rand.IntN(pwmutils.MaxDutyCycle + 1),
	}
	return color, c.SetRGB(color.R, color.G, color.B)
}

// FadeRGB steps linearly from one color to another, sleeping delay between steps. Zero steps
// jumps straight to the target color.
func (c *Controller) FadeRGB(ctx context.Context, from, to Color, steps int, delay time.Duration) error {
	if steps < 0 {
		return pwmutils.InvalidArgumentf("fade steps must not be negative, got %d", steps)
	}
	if err := from.Validate(); err != nil {
		return err
	}
	if err := to.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if steps == 0 {
		return c.SetRGB(to.R, to.G, to.B)
	}
	for i := 0; i <= steps; i++ {
		step := Interpolate(from, to, i, steps)
		if err := c.SetRGB(step.R, step.G, step.B); err != nil {
			return err
		}
		if i < steps && !pwmutils.Sleep(ctx, delay) {
			return ctx.Err()
		}
	}
	return nil
}

// FadeRamp returns the duty cycles Fade sets: 0, step, 2*step, ... up to at most 255, then
// 255, 255-step, ... down to at least 0.
func FadeRamp(step int) []int {
	if step <= 0 {
		return nil
	}
	var ramp []int
	for duty := 0; duty <= pwmutils.MaxDutyCycle; duty += step {
		ramp = append(ramp, duty)
	}
	for duty := pwmutils.MaxDutyCycle; duty >= 0; duty -= step {
		ramp = append(ramp, duty)
	}
	return ramp
}

// Fade ramps the generic channel through FadeRamp(step), sleeping delay after every change.
func (c *Controller) Fade(ctx context.Context, delay time.Duration, step int) error {
	if !c.generic.Bound() {
		return errors.Wrap(pwmutils.ErrUnconfiguredChannel, "fade needs a generic pin")
	}
	if step <= 0 {
		return pwmutils.InvalidArgumentf("fade step must be positive, got %d", step)
	}
	for _, duty := range FadeRamp(step) {
		if err := c.fadeTo(ctx, duty, delay); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) fadeTo(ctx context.Context, duty int, delay time.Duration) error {
	if err := c.SetDutyCycle(duty); err != nil {
		return err
	}
	if !pwmutils.Sleep(ctx, delay) {
		return ctx.Err()
	}
	return nil
}

// SetDutyCycle sets the generic channel directly.
func (c *Controller) SetDutyCycle(duty int) error {
	if !c.generic.Bound() {
		return errors.Wrap(pwmutils.ErrUnconfiguredChannel, "no generic pin")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return pwmutils.ErrClosed
	}
	return c.generic.SetDutyCycle(duty)
}

// DutyCycle returns the generic channel's duty cycle.
func (c *Controller) DutyCycle() (int, error) {
	if !c.generic.Bound() {
		return 0, errors.Wrap(pwmutils.ErrUnconfiguredChannel, "no generic pin")
	}
	return c.generic.DutyCycle(), nil
}

// Off sets every bound channel to 0.
func (c *Controller) Off() error {
	err := c.SetRGB(0, 0, 0)
	if c.generic.Bound() {
		err = multierr.Combine(err, c.SetDutyCycle(0))
	}
	return err
}

// Close stops every loop and drives every bound pin to its OFF level. Closing twice is a no-op.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	var err error
	for _, ch := range c.channels() {
		err = multierr.Combine(err, ch.Close(ctx))
	}
	return err
}
