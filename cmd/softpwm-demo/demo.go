package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/rdk/logging"

	softservo "raspberry-pi-softpwm/soft-servo"
	"raspberry-pi-softpwm/softpwm"
	"raspberry-pi-softpwm/tone"
	pwmutils "raspberry-pi-softpwm/utils"
)

var (
	black  = softpwm.Color{}
	white  = softpwm.Color{R: 255, G: 255, B: 255}
	red    = softpwm.Color{R: 255}
	green  = softpwm.Color{G: 255}
	blue   = softpwm.Color{B: 255}
	yellow = softpwm.Color{R: 128, G: 128}
	cyan   = softpwm.Color{G: 255, B: 255}
)

// melody is the opening of "Ode to Joy".
var melody = []tone.Note{
	{FrequencyHz: 329.63, DurationMs: 250}, {FrequencyHz: 329.63, DurationMs: 250},
	{FrequencyHz: 349.23, DurationMs: 250}, {FrequencyHz: 392.00, DurationMs: 250},
	{FrequencyHz: 392.00, DurationMs: 250}, {FrequencyHz: 349.23, DurationMs: 250},
	{FrequencyHz: 329.63, DurationMs: 250}, {FrequencyHz: 293.66, DurationMs: 250},
	{FrequencyHz: 0, DurationMs: 250},
}

// demo owns one device per configured pin group. Any of them may be nil.
type demo struct {
	logger logging.Logger
	rgb    *softpwm.Controller
	pwmLED *softpwm.Controller
	buzzer *tone.Generator
	servo  *softservo.Controller
}

func newDemo(ctx context.Context, cfg Config, driver pwmutils.DigitalDriver, logger logging.Logger) (*demo, error) {
	d := &demo{logger: logger}
	var err error
	defer func() {
		if err != nil {
			// already failing, the close error adds nothing
			_ = d.Close(context.Background())
		}
	}()

	if cfg.RGB != (RGBConfig{}) {
		if d.rgb, err = softpwm.NewController(ctx, cfg.rgbConfig(), driver, logger.Sublogger("rgb")); err != nil {
			return nil, err
		}
	}
	if cfg.PWMLED != "" {
		if d.pwmLED, err = softpwm.NewController(ctx, cfg.pwmLEDConfig(), driver, logger.Sublogger("pwm_led")); err != nil {
			return nil, err
		}
	}
	if cfg.TonePin != "" {
		if d.buzzer, err = tone.NewGenerator(ctx, driver, cfg.TonePin, logger.Sublogger("tone")); err != nil {
			return nil, err
		}
	}
	if cfg.ServoPin != "" {
		if d.servo, err = softservo.NewController(ctx, driver, cfg.ServoPin, softservo.Options{}, logger.Sublogger("servo")); err != nil {
			return nil, err
		}
	}
	return d, nil
}

type effect struct {
	name string
	run  func(ctx context.Context) error
}

func (d *demo) effects() []effect {
	var effects []effect
	if d.rgb != nil {
		effects = append(effects,
			effect{"simple fade from off to full brightness", d.simpleFade},
			effect{"smooth color transition from red to green to blue", d.colorTransition},
			effect{"random color transitions for 10 seconds", d.randomColors},
			effect{"pulse effect, fading in and out 5 times", d.pulse},
			effect{"slow fade from dim yellow to bright cyan", d.slowFade},
			effect{"strobe effect with rapid on-off flashing", d.strobe},
		)
	}
	if d.pwmLED != nil {
		effects = append(effects,
			effect{"fade test on the PWM LED", d.ledFade},
			effect{"ramp the PWM LED between 10 and 255", d.ledRamp},
		)
	}
	if d.buzzer != nil {
		effects = append(effects, effect{"play a melody", d.playMelody})
	}
	if d.servo != nil {
		effects = append(effects, effect{"sweep the servo", d.sweepServo})
	}
	return effects
}

// Run plays every effect in order, then turns the LEDs off.
func (d *demo) Run(ctx context.Context) error {
	for i, e := range d.effects() {
		d.logger.Infof("Running example %d: %s", i+1, e.name)
		if err := e.run(ctx); err != nil {
			return errors.Wrap(err, e.name)
		}
	}
	d.logger.Info("Turning off LEDs after completing the effects")
	var err error
	if d.rgb != nil {
		err = multierr.Combine(err, d.rgb.Off())
	}
	if d.pwmLED != nil {
		err = multierr.Combine(err, d.pwmLED.Off())
	}
	return err
}

func (d *demo) simpleFade(ctx context.Context) error {
	return d.rgb.FadeRGB(ctx, black, white, 100, 10*time.Millisecond)
}

func (d *demo) colorTransition(ctx context.Context) error {
	for _, leg := range [][2]softpwm.Color{{red, green}, {green, blue}, {blue, red}} {
		if err := d.rgb.FadeRGB(ctx, leg[0], leg[1], 100, 10*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

func (d *demo) randomColors(ctx context.Context) error {
	for range 10 {
		if _, err := d.rgb.SetRandomColor(); err != nil {
			return err
		}
		if !pwmutils.Sleep(ctx, time.Second) {
			return ctx.Err()
		}
	}
	return nil
}

func (d *demo) pulse(ctx context.Context) error {
	for range 5 {
		if err := d.rgb.FadeRGB(ctx, black, white, 50, 20*time.Millisecond); err != nil {
			return err
		}
		if err := d.rgb.FadeRGB(ctx, white, black, 50, 20*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}

func (d *demo) slowFade(ctx context.Context) error {
	return d.rgb.FadeRGB(ctx, yellow, cyan, 200, 50*time.Millisecond)
}

func (d *demo) strobe(ctx context.Context) error {
	for range 20 {
		for _, c := range []softpwm.Color{white, black} {
			if err := d.rgb.SetRGB(c.R, c.G, c.B); err != nil {
				return err
			}
			if !pwmutils.Sleep(ctx, 50*time.Millisecond) {
				return ctx.Err()
			}
		}
	}
	return nil
}

func (d *demo) ledFade(ctx context.Context) error {
	for range 10 {
		if err := d.pwmLED.Fade(ctx, softpwm.DefaultFadeDelay, softpwm.DefaultFadeStep); err != nil {
			return err
		}
	}
	return nil
}

func (d *demo) ledRamp(ctx context.Context) error {
	set := func(duty int) error {
		if err := d.pwmLED.SetDutyCycle(duty); err != nil {
			return err
		}
		if !pwmutils.Sleep(ctx, 20*time.Millisecond) {
			return ctx.Err()
		}
		return nil
	}
	for range 10 {
		for duty := 10; duty <= pwmutils.MaxDutyCycle; duty += 5 {
			if err := set(duty); err != nil {
				return err
			}
		}
		for duty := pwmutils.MaxDutyCycle; duty >= 10; duty -= 5 {
			if err := set(duty); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *demo) playMelody(ctx context.Context) error {
	return d.buzzer.Play(ctx, melody)
}

func (d *demo) sweepServo(ctx context.Context) error {
	for _, angle := range []int{0, 45, 90, 135, 180, 90} {
		// a single frame rarely moves the horn all the way
		for range 25 {
			if err := d.servo.Write(ctx, angle); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close drives every pin to its OFF level.
func (d *demo) Close(ctx context.Context) error {
	var err error
	if d.rgb != nil {
		err = multierr.Combine(err, d.rgb.Close(ctx))
	}
	if d.pwmLED != nil {
		err = multierr.Combine(err, d.pwmLED.Close(ctx))
	}
	if d.buzzer != nil {
		err = multierr.Combine(err, d.buzzer.Close(ctx))
	}
	if d.servo != nil {
		err = multierr.Combine(err, d.servo.Off(ctx))
	}
	return err
}
