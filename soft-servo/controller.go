package softservo

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/rdk/logging"

	pwmutils "raspberry-pi-softpwm/utils"
)

const (
	// MaxAngle is the largest angle a servo can be written to.
	MaxAngle = 180
	// MinPulseWidth positions the servo at 0 degrees.
	MinPulseWidth = 500 * time.Microsecond
	// PulseWidthRange is added to MinPulseWidth at MaxAngle.
	PulseWidthRange = 2000 * time.Microsecond
	// FramePeriod is the nominal servo frame.
	FramePeriod = 20 * time.Millisecond
)

// PulseWidth changes the input angle in degrees into the corresponding pulse width:
// 500us at 0 degrees up to 2500us at 180.
func PulseWidth(angle int) time.Duration {
	return MinPulseWidth + time.Duration(float64(angle)/MaxAngle*float64(PulseWidthRange))
}

// Options tune the frame timing of a Controller.
type Options struct {
	// ConstantFrame waits FramePeriod minus the pulse after each pulse, so every frame lasts
	// exactly FramePeriod. Without it the wait is a flat FramePeriod and a frame lasts
	// pulse + FramePeriod.
	ConstantFrame bool
}

// PostPulseDelay returns how long the pin stays LOW after a pulse of the given width.
func (o Options) PostPulseDelay(pulse time.Duration) time.Duration {
	if o.ConstantFrame {
		return FramePeriod - pulse
	}
	return FramePeriod
}

// Controller sends single servo frames on one pin and remembers the last written angle.
type Controller struct {
	pin    string
	driver pwmutils.DigitalDriver
	opts   Options
	logger logging.Logger

	// writeMu serializes frames; mu guards position.
	writeMu  sync.Mutex
	mu       sync.Mutex
	position int
}

// NewController configures pin as an output.
func NewController(
	ctx context.Context,
	driver pwmutils.DigitalDriver,
	pin string,
	opts Options,
	logger logging.Logger,
) (*Controller, error) {
	if pin == "" {
		return nil, errors.Wrap(pwmutils.ErrUnconfiguredChannel, "servo needs a pin")
	}
	if err := driver.ConfigurePin(ctx, pin, pwmutils.PinOutput); err != nil {
		return nil, errors.Wrapf(err, "failed to configure pin %s as output", pin)
	}
	return &Controller{pin: pin, driver: driver, opts: opts, logger: logger}, nil
}

// Write sends one frame positioning the servo at angle. The angle is only recorded once the
// whole frame has been sent.
func (c *Controller) Write(ctx context.Context, angle int) error {
	if angle < 0 || angle > MaxAngle {
		return pwmutils.InvalidArgumentf("angle must be between 0 and %d degrees, got %d", MaxAngle, angle)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	pulse := PulseWidth(angle)
	if err := c.driver.WriteDigital(ctx, c.pin, pwmutils.High); err != nil {
		return errors.Wrapf(err, "servo on pin %s failed", c.pin)
	}
	if !pwmutils.Sleep(ctx, pulse) {
		return multierr.Combine(ctx.Err(), c.Off(context.Background()))
	}
	if err := c.driver.WriteDigital(ctx, c.pin, pwmutils.Low); err != nil {
		return errors.Wrapf(err, "servo on pin %s failed", c.pin)
	}
	if !pwmutils.Sleep(ctx, c.opts.PostPulseDelay(pulse)) {
		return ctx.Err()
	}

	c.mu.Lock()
	c.position = angle
	c.mu.Unlock()
	c.logger.Debugw("servo frame sent", "pin", c.pin, "angle", angle, "pulse", pulse)
	return nil
}

// Read returns the last successfully written angle, 0 if there has been none.
func (c *Controller) Read() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// Off drives the pin LOW, which stops sending pulses.
func (c *Controller) Off(ctx context.Context) error {
	return c.driver.WriteDigital(ctx, c.pin, pwmutils.Low)
}
