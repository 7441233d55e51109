// Package main replays the classic soft PWM LED effects on real GPIO lines, or on an in-memory
// driver when dry_run is set. Ctrl-C stops the current effect and turns every pin off.
package main

import (
	"context"
	"flag"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/rdk/logging"
	"go.viam.com/utils"

	pwmutils "raspberry-pi-softpwm/utils"
)

func main() {
	utils.ContextualMain(mainWithArgs, logging.NewLogger("softpwm-demo"))
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) (err error) {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	configPath := flags.String("config", "./demo.yaml", "Path to YAML config")
	if err := flags.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := Load(*configPath)
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}

	driver, closeDriver, err := newDriver(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, closeDriver())
	}()

	pwmutils.WarnHardwarePWMConflicts(pwmutils.GetBootConfigPath(), cfg.Pins(), logger)

	d, err := newDemo(ctx, cfg, driver, logger)
	if err != nil {
		return err
	}
	defer func() {
		// ctx may already be cancelled here; the OFF writes must still go out.
		err = multierr.Combine(err, d.Close(context.Background()))
		logger.Info("pins turned off safely")
	}()

	logger.Infow("softpwm-demo starting", "driver", cfg.Driver, "chip", cfg.Chip, "dry_run", cfg.DryRun,
		"frequency_hz", cfg.FrequencyHz, "led_type", cfg.LEDType)
	if err := d.Run(ctx); err != nil {
		if ctx.Err() != nil {
			logger.Info("exiting")
			return nil
		}
		return err
	}
	return nil
}

// newDriver returns the GPIO driver for cfg and a func releasing it.
func newDriver(cfg Config, logger logging.Logger) (pwmutils.DigitalDriver, func() error, error) {
	if cfg.DryRun {
		fake := pwmutils.NewFakeDriver(false)
		return fake, func() error {
			for _, pin := range fake.Pins() {
				logger.Infow("dry run writes", "pin", pin,
					"high", fake.Count(pin, pwmutils.High), "low", fake.Count(pin, pwmutils.Low))
			}
			return nil
		}, nil
	}
	if cfg.Driver == driverPinctrl {
		ctrl, err := pwmutils.NewPinctrlDriver(logger)
		if err != nil {
			return nil, nil, err
		}
		return ctrl, ctrl.Close, nil
	}
	chip, err := pwmutils.NewChipDriver(cfg.Chip, logger)
	if err != nil {
		return nil, nil, err
	}
	return chip, chip.Close, nil
}
