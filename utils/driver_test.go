package pwmutils

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestPolarity(t *testing.T) {
	test.That(t, ActiveHigh.Apply(High), test.ShouldEqual, High)
	test.That(t, ActiveHigh.Apply(Low), test.ShouldEqual, Low)
	test.That(t, ActiveLow.Apply(High), test.ShouldEqual, Low)
	test.That(t, ActiveLow.Apply(Low), test.ShouldEqual, High)

	test.That(t, LEDDefault.Polarity(), test.ShouldEqual, ActiveHigh)
	test.That(t, LEDCathode.Polarity(), test.ShouldEqual, ActiveHigh)
	test.That(t, LEDAnode.Polarity(), test.ShouldEqual, ActiveLow)
}

func TestLEDTypeValidate(t *testing.T) {
	test.That(t, LEDDefault.Validate(), test.ShouldBeNil)
	test.That(t, LEDCathode.Validate(), test.ShouldBeNil)
	test.That(t, LEDAnode.Validate(), test.ShouldBeNil)
	err := LEDType("bipolar").Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "bipolar")
}

func TestValidateBoardPin(t *testing.T) {
	deps, _, err := ValidateBoardPin("path", "board", "11")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldResemble, []string{"board"})

	_, _, err = ValidateBoardPin("path", "", "11")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "board")

	_, _, err = ValidateBoardPin("path", "board", "")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "pin")
}

func TestValidateDutyCycle(t *testing.T) {
	for _, duty := range []int{0, 1, 128, MaxDutyCycle} {
		test.That(t, ValidateDutyCycle(duty), test.ShouldBeNil)
	}
	for _, duty := range []int{-1, MaxDutyCycle + 1, 1000} {
		err := ValidateDutyCycle(duty)
		test.That(t, errors.Is(err, ErrInvalidArgument), test.ShouldBeTrue)
	}
	test.That(t, errors.Is(ErrUnconfiguredChannel, ErrInvalidArgument), test.ShouldBeTrue)
}

func TestSleep(t *testing.T) {
	test.That(t, Sleep(context.Background(), 0), test.ShouldBeTrue)
	test.That(t, Sleep(context.Background(), time.Millisecond), test.ShouldBeTrue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	test.That(t, Sleep(ctx, 0), test.ShouldBeFalse)
	start := time.Now()
	test.That(t, Sleep(ctx, time.Minute), test.ShouldBeFalse)
	test.That(t, time.Since(start), test.ShouldBeLessThan, time.Second)
}

func TestFakeDriver(t *testing.T) {
	ctx := context.Background()

	t.Run("writes need an output pin", func(t *testing.T) {
		d := NewFakeDriver(true)
		test.That(t, d.WriteDigital(ctx, "11", High), test.ShouldNotBeNil)
		test.That(t, d.ConfigurePin(ctx, "11", PinInput), test.ShouldBeNil)
		test.That(t, d.WriteDigital(ctx, "11", High), test.ShouldNotBeNil)
		test.That(t, d.ConfigurePin(ctx, "11", PinOutput), test.ShouldBeNil)
		test.That(t, d.WriteDigital(ctx, "11", High), test.ShouldBeNil)
		mode, ok := d.Mode("11")
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, mode, test.ShouldEqual, PinOutput)
		_, ok = d.Mode("12")
		test.That(t, ok, test.ShouldBeFalse)
	})

	t.Run("counts and history", func(t *testing.T) {
		d := NewFakeDriver(true)
		test.That(t, d.ConfigurePin(ctx, "11", PinOutput), test.ShouldBeNil)
		test.That(t, d.ConfigurePin(ctx, "13", PinOutput), test.ShouldBeNil)
		test.That(t, d.WriteDigital(ctx, "11", High), test.ShouldBeNil)
		test.That(t, d.WriteDigital(ctx, "11", Low), test.ShouldBeNil)
		test.That(t, d.WriteDigital(ctx, "13", High), test.ShouldBeNil)

		test.That(t, d.Count("11", High), test.ShouldEqual, 1)
		test.That(t, d.Count("11", Low), test.ShouldEqual, 1)
		test.That(t, d.Writes("11"), test.ShouldEqual, 2)
		test.That(t, d.Writes("15"), test.ShouldEqual, 0)
		last, ok := d.Last("11")
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, last, test.ShouldEqual, Low)
		_, ok = d.Last("15")
		test.That(t, ok, test.ShouldBeFalse)
		test.That(t, d.Pins(), test.ShouldHaveLength, 2)

		history := d.History()
		test.That(t, history, test.ShouldHaveLength, 3)
		test.That(t, history[0].Pin, test.ShouldEqual, "11")
		test.That(t, history[0].Level, test.ShouldEqual, High)
		test.That(t, history[2].Pin, test.ShouldEqual, "13")
	})

	t.Run("no history", func(t *testing.T) {
		d := NewFakeDriver(false)
		test.That(t, d.ConfigurePin(ctx, "11", PinOutput), test.ShouldBeNil)
		test.That(t, d.WriteDigital(ctx, "11", High), test.ShouldBeNil)
		test.That(t, d.History(), test.ShouldBeEmpty)
		test.That(t, d.Count("11", High), test.ShouldEqual, 1)
	})

	t.Run("failing writes", func(t *testing.T) {
		d := NewFakeDriver(false)
		test.That(t, d.ConfigurePin(ctx, "11", PinOutput), test.ShouldBeNil)
		boom := errors.New("boom")
		d.FailWrites(boom)
		test.That(t, d.WriteDigital(ctx, "11", High), test.ShouldEqual, boom)
		test.That(t, d.Writes("11"), test.ShouldEqual, 0)
		d.FailWrites(nil)
		test.That(t, d.WriteDigital(ctx, "11", High), test.ShouldBeNil)
	})
}
