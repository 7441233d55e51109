package pwmutils

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/rdk/components/board"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/testutils/inject"
	"go.viam.com/test"
)

func TestBoardDriver(t *testing.T) {
	ctx := context.Background()
	var sets []bool
	gets := 0
	lookups := 0
	pin := &inject.GPIOPin{
		SetFunc: func(ctx context.Context, high bool, extra map[string]interface{}) error {
			sets = append(sets, high)
			return nil
		},
		GetFunc: func(ctx context.Context, extra map[string]interface{}) (bool, error) {
			gets++
			return false, nil
		},
	}
	b := inject.NewBoard("board")
	b.GPIOPinByNameFunc = func(name string) (board.GPIOPin, error) {
		if name != "11" {
			return nil, errors.Errorf("no pin %s", name)
		}
		lookups++
		return pin, nil
	}

	d := NewBoardDriver(b)
	test.That(t, d.ConfigurePin(ctx, "11", PinOutput), test.ShouldBeNil)
	test.That(t, d.WriteDigital(ctx, "11", High), test.ShouldBeNil)
	test.That(t, d.WriteDigital(ctx, "11", Low), test.ShouldBeNil)
	test.That(t, sets, test.ShouldResemble, []bool{false, true, false})
	test.That(t, lookups, test.ShouldEqual, 1)

	test.That(t, d.ConfigurePin(ctx, "11", PinInput), test.ShouldBeNil)
	test.That(t, gets, test.ShouldEqual, 1)

	test.That(t, d.ConfigurePin(ctx, "12", PinOutput), test.ShouldNotBeNil)
	test.That(t, d.WriteDigital(ctx, "12", High), test.ShouldNotBeNil)
}

func TestBoardFromDependencies(t *testing.T) {
	b := inject.NewBoard("board")
	deps := resource.Dependencies{board.Named("board"): b}

	found, err := BoardFromDependencies(deps, "board")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, found, test.ShouldEqual, b)

	_, err = BoardFromDependencies(deps, "other")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "other")
}
