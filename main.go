package main

import (
	"context"

	"go.viam.com/rdk/components/generic"
	"go.viam.com/rdk/components/servo"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/module"
	"go.viam.com/utils"

	softservo "raspberry-pi-softpwm/soft-servo"
	"raspberry-pi-softpwm/softpwm"
	"raspberry-pi-softpwm/tone"
)

func main() {
	utils.ContextualMain(mainWithArgs, module.NewLoggerFromArgs("soft-pwm"))
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) error {
	module, err := module.NewModuleFromArgs(ctx)
	if err != nil {
		return err
	}

	if err = module.AddModelFromRegistry(ctx, generic.API, softpwm.Model); err != nil {
		return err
	}
	if err = module.AddModelFromRegistry(ctx, generic.API, tone.Model); err != nil {
		return err
	}
	if err = module.AddModelFromRegistry(ctx, servo.API, softservo.Model); err != nil {
		return err
	}

	err = module.Start(ctx)
	defer module.Close(ctx)
	if err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}
