package softservo

/*
	This driver positions a hobby servo by bit-banging its control frames on a plain GPIO pin
	of the configured board, for pins or boards without servo or PWM hardware. Every Move sends
	frames_per_move frames: a 500-2500us HIGH pulse followed by a LOW wait. The servo only holds
	its position while frames keep coming, so Move is meant to be called repeatedly or with
	enough frames for the horn to settle.
*/

import (
	"context"

	"go.viam.com/rdk/components/servo"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/operation"
	"go.viam.com/rdk/resource"

	pwmutils "raspberry-pi-softpwm/utils"
)

// Model is the model for a soft servo.
var Model = pwmutils.SoftPWMFamily.WithModel("soft-servo")

// init registers a soft servo.
func init() {
	resource.RegisterComponent(
		servo.API,
		Model,
		resource.Registration[servo.Servo, *ServoConfig]{
			Constructor: newSoftServo,
		},
	)
}

func newSoftServo(
	ctx context.Context,
	deps resource.Dependencies,
	conf resource.Config,
	logger logging.Logger,
) (servo.Servo, error) {
	newConf, err := resource.NativeConfig[*ServoConfig](conf)
	if err != nil {
		return nil, err
	}
	if _, _, err := newConf.Validate(""); err != nil {
		return nil, err
	}
	b, err := pwmutils.BoardFromDependencies(deps, newConf.BoardName)
	if err != nil {
		return nil, err
	}
	pwmutils.WarnHardwarePWMConflicts(pwmutils.GetBootConfigPath(), []string{newConf.Pin}, logger)
	return initializeServo(ctx, conf.ResourceName(), newConf, pwmutils.NewBoardDriver(b), logger)
}

// initializeServo builds the servo on top of driver and sends the starting position if set.
func initializeServo(
	ctx context.Context,
	name resource.Name,
	conf *ServoConfig,
	driver pwmutils.DigitalDriver,
	logger logging.Logger,
) (*softServo, error) {
	if err := conf.validateLimits(); err != nil {
		return nil, err
	}
	ctrl, err := NewController(ctx, driver, conf.Pin, Options{ConstantFrame: conf.ConstantFrame}, logger)
	if err != nil {
		return nil, err
	}
	minAngle, maxAngle := conf.limits()
	s := &softServo{
		Named:  name.AsNamed(),
		logger: logger,
		ctrl:   ctrl,
		min:    minAngle,
		max:    maxAngle,
		frames: conf.FramesPerMove,
		opMgr:  operation.NewSingleOperationManager(),
	}
	if s.frames == 0 {
		s.frames = 1
	}
	if conf.StartPos != nil {
		if err := s.Move(ctx, uint32(*conf.StartPos), nil); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// softServo implements a servo.Servo using software pulses.
type softServo struct {
	resource.Named
	resource.AlwaysRebuild
	logger   logging.Logger
	ctrl     *Controller
	min, max uint32
	frames   int
	opMgr    *operation.SingleOperationManager
}

// Move moves the servo to the given angle (0-180 degrees), clamped to the configured limits.
// This will block until every frame is sent or a new operation cancels this one.
func (s *softServo) Move(ctx context.Context, angle uint32, extra map[string]interface{}) error {
	ctx, done := s.opMgr.New(ctx)
	defer done()

	if angle < s.min {
		angle = s.min
	}
	if angle > s.max {
		angle = s.max
	}
	for i := 0; i < s.frames; i++ {
		if err := s.ctrl.Write(ctx, int(angle)); err != nil {
			return err
		}
	}
	return nil
}

// Position returns the last angle (degrees) the servo was moved to.
func (s *softServo) Position(ctx context.Context, extra map[string]interface{}) (uint32, error) {
	return uint32(s.ctrl.Read()), nil
}

// Stop stops sending frames and leaves the pin LOW.
func (s *softServo) Stop(ctx context.Context, extra map[string]interface{}) error {
	_, done := s.opMgr.New(ctx)
	defer done()
	return s.ctrl.Off(ctx)
}

// IsMoving reports whether a Move is still sending frames.
func (s *softServo) IsMoving(ctx context.Context) (bool, error) {
	return s.opMgr.OpRunning(), nil
}

// Close cancels any running move and leaves the pin LOW.
func (s *softServo) Close(ctx context.Context) error {
	s.opMgr.CancelRunning(ctx)
	return s.ctrl.Off(ctx)
}
