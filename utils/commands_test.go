package pwmutils

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestToInt(t *testing.T) {
	n, err := ToInt(12.0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 12)

	n, err = ToInt(json.Number("255"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 255)

	_, err = ToInt(12.5)
	test.That(t, errors.Is(err, ErrInvalidArgument), test.ShouldBeTrue)

	_, err = ToInt("12")
	test.That(t, errors.Is(err, ErrInvalidArgument), test.ShouldBeTrue)
}

func TestToIntSlice(t *testing.T) {
	rgb, err := ToIntSlice([]interface{}{255.0, 0, int64(128)}, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rgb, test.ShouldResemble, []int{255, 0, 128})

	_, err = ToIntSlice([]interface{}{255.0, 0.0}, 3)
	test.That(t, errors.Is(err, ErrInvalidArgument), test.ShouldBeTrue)

	_, err = ToIntSlice([]interface{}{255.0, "x", 0.0}, 3)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "item 1")

	_, err = ToIntSlice(map[string]interface{}{}, 3)
	test.That(t, errors.Is(err, ErrInvalidArgument), test.ShouldBeTrue)
}

func TestOptionalArgs(t *testing.T) {
	args := map[string]interface{}{"delay_ms": 2.5, "step": 3.0, "bad": -1.0}

	d, err := MillisecondsArg(args, "delay_ms", time.Second)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d, test.ShouldEqual, 2500*time.Microsecond)

	d, err = MillisecondsArg(args, "missing", time.Second)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d, test.ShouldEqual, time.Second)

	_, err = MillisecondsArg(args, "bad", time.Second)
	test.That(t, errors.Is(err, ErrInvalidArgument), test.ShouldBeTrue)

	n, err := IntArg(args, "step", 5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 3)

	n, err = IntArg(args, "missing", 5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, n, test.ShouldEqual, 5)

	_, err = ArgsMap([]interface{}{})
	test.That(t, errors.Is(err, ErrInvalidArgument), test.ShouldBeTrue)
}
