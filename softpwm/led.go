package softpwm

/*
	led.go: exposes a Controller as a generic component. The LED pins are driven through the GPIO
	API of the board named in the config, so any board model works, not just the pis.
*/

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/rdk/components/board"
	"go.viam.com/rdk/components/generic"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/operation"
	"go.viam.com/rdk/resource"
	rdkutils "go.viam.com/rdk/utils"

	pwmutils "raspberry-pi-softpwm/utils"
)

// Model is the model for a soft PWM LED.
var Model = pwmutils.SoftPWMFamily.WithModel("led")

// DoCommand keys understood by the LED.
const (
	CmdSetRGB           = "set_rgb"
	CmdSetRandomColor   = "set_random_color"
	CmdFadeRGB          = "fade_rgb"
	CmdFade             = "fade"
	CmdSetDutyCycle     = "set_duty_cycle"
	CmdSetDutyCyclePct  = "set_duty_cycle_pct"
	CmdOff              = "off"
	CmdStatus           = "status"
	defaultFadeRGBSteps = 100
	defaultFadeRGBDelay = 10 * time.Millisecond
)

func init() {
	resource.RegisterComponent(
		generic.API,
		Model,
		resource.Registration[resource.Resource, *Config]{
			Constructor: newLED,
		})
}

type softLED struct {
	resource.Named
	resource.AlwaysRebuild
	logger logging.Logger
	ctrl   *Controller
	opMgr  *operation.SingleOperationManager
}

func newLED(
	ctx context.Context,
	deps resource.Dependencies,
	conf resource.Config,
	logger logging.Logger,
) (resource.Resource, error) {
	newConf, err := resource.NativeConfig[*Config](conf)
	if err != nil {
		return nil, err
	}
	b, err := pwmutils.BoardFromDependencies(deps, newConf.BoardName)
	if err != nil {
		return nil, err
	}
	pwmutils.WarnHardwarePWMConflicts(pwmutils.GetBootConfigPath(),
		[]string{newConf.RedPin, newConf.GreenPin, newConf.BluePin, newConf.Pin}, logger)
	return newLEDWithDriver(ctx, conf.ResourceName(), newConf, pwmutils.NewBoardDriver(b), logger)
}

func newLEDWithDriver(
	ctx context.Context,
	name resource.Name,
	conf *Config,
	driver pwmutils.DigitalDriver,
	logger logging.Logger,
) (*softLED, error) {
	ctrl, err := NewController(ctx, conf.controllerConfig(), driver, logger)
	if err != nil {
		return nil, err
	}
	return &softLED{
		Named:  name.AsNamed(),
		logger: logger,
		ctrl:   ctrl,
		opMgr:  operation.NewSingleOperationManager(),
	}, nil
}

// DoCommand runs every recognized key in cmd. Fades block until done; any command other than a
// bare status cancels a fade that is still running.
func (l *softLED) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	if _, statusOnly := cmd[CmdStatus]; !statusOnly || len(cmd) > 1 {
		var done func()
		ctx, done = l.opMgr.New(ctx)
		defer done()
	}

	resp := map[string]interface{}{}
	handled := false
	for _, key := range []string{
		CmdOff, CmdSetRGB, CmdSetRandomColor, CmdFadeRGB, CmdSetDutyCycle, CmdSetDutyCyclePct, CmdFade, CmdStatus,
	} {
		arg, ok := cmd[key]
		if !ok {
			continue
		}
		handled = true
		if err := l.runCommand(ctx, key, arg, resp); err != nil {
			return nil, errors.Wrapf(err, "%s failed", key)
		}
	}
	if !handled {
		return nil, errors.Errorf("no known command in %v", cmd)
	}
	return resp, nil
}

func (l *softLED) runCommand(ctx context.Context, key string, arg interface{}, resp map[string]interface{}) error {
	switch key {
	case CmdOff:
		return l.ctrl.Off()
	case CmdSetRGB:
		rgb, err := pwmutils.ToIntSlice(arg, 3)
		if err != nil {
			return err
		}
		return l.ctrl.SetRGB(rgb[0], rgb[1], rgb[2])
	case CmdSetRandomColor:
		color, err := l.ctrl.SetRandomColor()
		if err != nil {
			return err
		}
		resp[CmdSetRandomColor] = []int{color.R, color.G, color.B}
	case CmdFadeRGB:
		return l.fadeRGB(ctx, arg)
	case CmdSetDutyCycle:
		duty, err := pwmutils.ToInt(arg)
		if err != nil {
			return err
		}
		return l.ctrl.SetDutyCycle(duty)
	case CmdSetDutyCyclePct:
		pct, err := pwmutils.ToFloat(arg)
		if err != nil {
			return err
		}
		pct, err = board.ValidatePWMDutyCycle(pct)
		if err != nil {
			return pwmutils.InvalidArgumentf("%v", err)
		}
		return l.ctrl.SetDutyCycle(rdkutils.ScaleByPct(pwmutils.MaxDutyCycle, pct))
	case CmdFade:
		args := map[string]interface{}{}
		if m, ok := arg.(map[string]interface{}); ok {
			args = m
		}
		delay, err := pwmutils.MillisecondsArg(args, "delay_ms", DefaultFadeDelay)
		if err != nil {
			return err
		}
		step, err := pwmutils.IntArg(args, "step", DefaultFadeStep)
		if err != nil {
			return err
		}
		return l.ctrl.Fade(ctx, delay, step)
	case CmdStatus:
		color := l.ctrl.Color()
		resp["color"] = []int{color.R, color.G, color.B}
		if duty, err := l.ctrl.DutyCycle(); err == nil {
			resp["duty_cycle"] = duty
		}
		periods := map[string]interface{}{}
		for _, ch := range l.ctrl.Channels() {
			periods[ch.Name()] = ch.Periods()
		}
		resp["periods"] = periods
	}
	return nil
}

func (l *softLED) fadeRGB(ctx context.Context, arg interface{}) error {
	args, err := pwmutils.ArgsMap(arg)
	if err != nil {
		return err
	}
	from := l.ctrl.Color()
	if raw, ok := args["from"]; ok {
		rgb, err := pwmutils.ToIntSlice(raw, 3)
		if err != nil {
			return errors.Wrap(err, "from")
		}
		from = Color{R: rgb[0], G: rgb[1], B: rgb[2]}
	}
	raw, ok := args["to"]
	if !ok {
		return pwmutils.InvalidArgumentf("fade_rgb needs a target color in \"to\"")
	}
	rgb, err := pwmutils.ToIntSlice(raw, 3)
	if err != nil {
		return errors.Wrap(err, "to")
	}
	steps, err := pwmutils.IntArg(args, "steps", defaultFadeRGBSteps)
	if err != nil {
		return err
	}
	delay, err := pwmutils.MillisecondsArg(args, "delay_ms", defaultFadeRGBDelay)
	if err != nil {
		return err
	}
	return l.ctrl.FadeRGB(ctx, from, Color{R: rgb[0], G: rgb[1], B: rgb[2]}, steps, delay)
}

// Close stops every channel and turns the LED off.
func (l *softLED) Close(ctx context.Context) error {
	l.opMgr.CancelRunning(ctx)
	return l.ctrl.Close(ctx)
}
