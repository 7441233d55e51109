package softpwm

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/rdk/components/generic"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	"go.viam.com/test"

	pwmutils "raspberry-pi-softpwm/utils"
)

func TestConfigValidate(t *testing.T) {
	conf := &Config{BoardName: "board", RedPin: "11", GreenPin: "13", BluePin: "15"}
	deps, _, err := conf.Validate("path")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldResemble, []string{"board"})

	_, _, err = (&Config{RedPin: "11"}).Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "board")

	_, _, err = (&Config{BoardName: "board"}).Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "at least one")

	_, _, err = (&Config{BoardName: "board", Pin: "12", LEDType: "bipolar"}).Validate("path")
	test.That(t, err, test.ShouldNotBeNil)

	_, _, err = (&Config{BoardName: "board", RedPin: "12", Pin: "12"}).Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "both")
}

func TestRegistration(t *testing.T) {
	reg, ok := resource.LookupRegistration(generic.API, Model)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, reg, test.ShouldNotBeNil)
}

func TestLEDDoCommand(t *testing.T) {
	logger := logging.NewTestLogger(t)
	ctx := context.Background()
	d := pwmutils.NewFakeDriver(false)
	led, err := newLEDWithDriver(ctx, generic.Named("led"),
		&Config{BoardName: "board", RedPin: "11", GreenPin: "13", BluePin: "15", Pin: "12"}, d, logger)
	test.That(t, err, test.ShouldBeNil)

	t.Run("set_rgb", func(t *testing.T) {
		_, err := led.DoCommand(ctx, map[string]interface{}{CmdSetRGB: []interface{}{255.0, 128.0, 0.0}})
		test.That(t, err, test.ShouldBeNil)
		resp, err := led.DoCommand(ctx, map[string]interface{}{CmdStatus: true})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, resp["color"], test.ShouldResemble, []int{255, 128, 0})

		_, err = led.DoCommand(ctx, map[string]interface{}{CmdSetRGB: []interface{}{255.0, 300.0, 0.0}})
		test.That(t, errors.Is(err, pwmutils.ErrInvalidArgument), test.ShouldBeTrue)
		test.That(t, led.ctrl.Color(), test.ShouldResemble, Color{R: 255, G: 128})
	})

	t.Run("off runs before set_rgb", func(t *testing.T) {
		_, err := led.DoCommand(ctx, map[string]interface{}{
			CmdSetRGB: []interface{}{1.0, 2.0, 3.0},
			CmdOff:    true,
		})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, led.ctrl.Color(), test.ShouldResemble, Color{R: 1, G: 2, B: 3})
	})

	t.Run("set_random_color", func(t *testing.T) {
		resp, err := led.DoCommand(ctx, map[string]interface{}{CmdSetRandomColor: true})
		test.That(t, err, test.ShouldBeNil)
		rgb, ok := resp[CmdSetRandomColor].([]int)
		test.That(t, ok, test.ShouldBeTrue)
		c := led.ctrl.Color()
		test.That(t, rgb, test.ShouldResemble, []int{c.R, c.G, c.B})
	})

	t.Run("fade_rgb", func(t *testing.T) {
		_, err := led.DoCommand(ctx, map[string]interface{}{CmdFadeRGB: map[string]interface{}{
			"from":     []interface{}{0.0, 0.0, 0.0},
			"to":       []interface{}{0.0, 0.0, 255.0},
			"steps":    4.0,
			"delay_ms": 1.0,
		}})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, led.ctrl.Color(), test.ShouldResemble, Color{B: 255})

		_, err = led.DoCommand(ctx, map[string]interface{}{CmdFadeRGB: map[string]interface{}{}})
		test.That(t, errors.Is(err, pwmutils.ErrInvalidArgument), test.ShouldBeTrue)
	})

	t.Run("duty cycle", func(t *testing.T) {
		_, err := led.DoCommand(ctx, map[string]interface{}{CmdSetDutyCycle: 64.0})
		test.That(t, err, test.ShouldBeNil)
		resp, err := led.DoCommand(ctx, map[string]interface{}{CmdStatus: true})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, resp["duty_cycle"], test.ShouldEqual, 64)

		_, err = led.DoCommand(ctx, map[string]interface{}{CmdSetDutyCyclePct: 1.0})
		test.That(t, err, test.ShouldBeNil)
		duty, err := led.ctrl.DutyCycle()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, duty, test.ShouldEqual, pwmutils.MaxDutyCycle)

		_, err = led.DoCommand(ctx, map[string]interface{}{CmdSetDutyCyclePct: 1.5})
		test.That(t, errors.Is(err, pwmutils.ErrInvalidArgument), test.ShouldBeTrue)
	})

	t.Run("fade", func(t *testing.T) {
		_, err := led.DoCommand(ctx, map[string]interface{}{CmdFade: map[string]interface{}{"delay_ms": 0.0, "step": 51.0}})
		test.That(t, err, test.ShouldBeNil)
		duty, err := led.ctrl.DutyCycle()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, duty, test.ShouldEqual, 0)
	})

	t.Run("status reports periods per channel", func(t *testing.T) {
		resp, err := led.DoCommand(ctx, map[string]interface{}{CmdStatus: true})
		test.That(t, err, test.ShouldBeNil)
		periods, ok := resp["periods"].(map[string]interface{})
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, periods, test.ShouldContainKey, "red")
		test.That(t, periods, test.ShouldContainKey, "generic")
	})

	t.Run("unknown command", func(t *testing.T) {
		_, err := led.DoCommand(ctx, map[string]interface{}{"blink": true})
		test.That(t, err, test.ShouldNotBeNil)
	})

	test.That(t, led.Close(ctx), test.ShouldBeNil)
	for _, pin := range []string{"11", "12", "13", "15"} {
		last, ok := d.Last(pin)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, last, test.ShouldEqual, pwmutils.Low)
	}
}
