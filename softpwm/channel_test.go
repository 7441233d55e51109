package softpwm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	pwmutils "raspberry-pi-softpwm/utils"
)

func TestOnOffTime(t *testing.T) {
	for _, period := range []time.Duration{time.Millisecond, 20 * time.Millisecond, time.Second / 3} {
		for duty := 0; duty <= pwmutils.MaxDutyCycle; duty++ {
			on, off := OnTime(period, duty), OffTime(period, duty)
			test.That(t, on+off, test.ShouldEqual, period)
			test.That(t, on, test.ShouldBeGreaterThanOrEqualTo, 0)
			test.That(t, off, test.ShouldBeGreaterThanOrEqualTo, 0)
		}
		test.That(t, OnTime(period, 0), test.ShouldEqual, 0)
		test.That(t, OnTime(period, pwmutils.MaxDutyCycle), test.ShouldEqual, period)
	}
	test.That(t, OnTime(time.Millisecond, 128), test.ShouldEqual, 501960*time.Nanosecond)
}

func newOutputDriver(t *testing.T, pins ...string) *pwmutils.FakeDriver {
	t.Helper()
	d := pwmutils.NewFakeDriver(false)
	for _, pin := range pins {
		test.That(t, d.ConfigurePin(context.Background(), pin, pwmutils.PinOutput), test.ShouldBeNil)
	}
	return d
}

func TestChannel(t *testing.T) {
	logger := logging.NewTestLogger(t)
	ctx := context.Background()

	t.Run("rejects out of range duty cycles", func(t *testing.T) {
		ch := NewChannel("red", "11", newOutputDriver(t, "11"), time.Millisecond, pwmutils.ActiveHigh, logger)
		test.That(t, ch.SetDutyCycle(200), test.ShouldBeNil)
		err := ch.SetDutyCycle(256)
		test.That(t, errors.Is(err, pwmutils.ErrInvalidArgument), test.ShouldBeTrue)
		err = ch.SetDutyCycle(-1)
		test.That(t, errors.Is(err, pwmutils.ErrInvalidArgument), test.ShouldBeTrue)
		test.That(t, ch.DutyCycle(), test.ShouldEqual, 200)
		test.That(t, ch.Close(ctx), test.ShouldBeNil)
	})

	t.Run("full duty holds the pin high", func(t *testing.T) {
		d := newOutputDriver(t, "11")
		ch := NewChannel("red", "11", d, 100*time.Microsecond, pwmutils.ActiveHigh, logger)
		test.That(t, ch.SetDutyCycle(pwmutils.MaxDutyCycle), test.ShouldBeNil)
		ch.Start()
		testutils.WaitForAssertion(t, func(tb testing.TB) {
			tb.Helper()
			test.That(tb, ch.Periods(), test.ShouldBeGreaterThan, 3)
		})
		test.That(t, ch.Close(ctx), test.ShouldBeNil)
		test.That(t, d.Count("11", pwmutils.High), test.ShouldBeGreaterThan, 3)
		last, ok := d.Last("11")
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, last, test.ShouldEqual, pwmutils.Low)
	})

	t.Run("zero duty never writes high", func(t *testing.T) {
		d := newOutputDriver(t, "11")
		ch := NewChannel("red", "11", d, 100*time.Microsecond, pwmutils.ActiveHigh, logger)
		ch.Start()
		testutils.WaitForAssertion(t, func(tb testing.TB) {
			tb.Helper()
			test.That(tb, ch.Periods(), test.ShouldBeGreaterThan, 3)
		})
		test.That(t, ch.Close(ctx), test.ShouldBeNil)
		test.That(t, d.Count("11", pwmutils.High), test.ShouldEqual, 0)
	})

	t.Run("unbound channels never write", func(t *testing.T) {
		d := newOutputDriver(t)
		ch := NewChannel("green", "", d, time.Millisecond, pwmutils.ActiveHigh, logger)
		test.That(t, ch.Bound(), test.ShouldBeFalse)
		ch.Start()
		test.That(t, ch.SetDutyCycle(100), test.ShouldBeNil)
		test.That(t, ch.Close(ctx), test.ShouldBeNil)
		test.That(t, d.Pins(), test.ShouldBeEmpty)
		test.That(t, ch.Periods(), test.ShouldEqual, 0)
	})

	t.Run("close drives the off level", func(t *testing.T) {
		d := newOutputDriver(t, "11")
		ch := NewChannel("red", "11", d, time.Millisecond, pwmutils.ActiveLow, logger)
		test.That(t, ch.SetDutyCycle(128), test.ShouldBeNil)
		ch.Start()
		test.That(t, ch.Close(ctx), test.ShouldBeNil)
		last, ok := d.Last("11")
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, last, test.ShouldEqual, pwmutils.High)

		// closing again and starting after close do nothing
		writes := d.Writes("11")
		test.That(t, ch.Close(ctx), test.ShouldBeNil)
		ch.Start()
		test.That(t, d.Writes("11"), test.ShouldEqual, writes)
	})

	t.Run("keeps running through write failures", func(t *testing.T) {
		d := newOutputDriver(t, "11")
		ch := NewChannel("red", "11", d, 100*time.Microsecond, pwmutils.ActiveHigh, logger)
		test.That(t, ch.SetDutyCycle(128), test.ShouldBeNil)
		d.FailWrites(errors.New("gpio busy"))
		ch.Start()
		testutils.WaitForAssertion(t, func(tb testing.TB) {
			tb.Helper()
			test.That(tb, ch.Periods(), test.ShouldBeGreaterThan, 3)
		})
		test.That(t, d.Writes("11"), test.ShouldEqual, 0)

		d.FailWrites(nil)
		testutils.WaitForAssertion(t, func(tb testing.TB) {
			tb.Helper()
			test.That(tb, d.Count("11", pwmutils.High), test.ShouldBeGreaterThan, 0)
		})
		test.That(t, ch.Close(ctx), test.ShouldBeNil)
	})
}

func TestChannelObservesWholeValues(t *testing.T) {
	logger := logging.NewTestLogger(t)
	d := newOutputDriver(t, "11")
	ch := NewChannel("red", "11", d, 20*time.Microsecond, pwmutils.ActiveHigh, logger)

	var mu sync.Mutex
	var seen []int
	ch.observed = func(duty int) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, duty)
	}
	ch.Start()

	written := map[int]bool{0: true}
	for i := 0; i < 1000; i++ {
		duty := (i * 37) % (pwmutils.MaxDutyCycle + 1)
		written[duty] = true
		test.That(t, ch.SetDutyCycle(duty), test.ShouldBeNil)
	}
	test.That(t, ch.Close(context.Background()), test.ShouldBeNil)

	mu.Lock()
	defer mu.Unlock()
	test.That(t, seen, test.ShouldNotBeEmpty)
	for _, duty := range seen {
		test.That(t, written[duty], test.ShouldBeTrue)
	}
}
