// Package pwmutils contains the digital I/O plumbing shared by the soft PWM models.
package pwmutils

import (
	"fmt"

	"go.viam.com/rdk/resource"
)

// SoftPWMFamily is the model family for the soft PWM module.
var SoftPWMFamily = resource.NewModelFamily("viam", "soft-pwm")

// DefaultFrequencyHz is the nominal soft PWM frequency. It gives a 1ms period.
const DefaultFrequencyHz = 1000

// LEDType describes how an RGB LED is wired.
type LEDType string

const (
	// LEDCathode is a common cathode LED: a HIGH pin lights the diode.
	LEDCathode LEDType = "cathode"
	// LEDAnode is a common anode LED: a LOW pin lights the diode.
	LEDAnode LEDType = "anode"
	// LEDDefault is for if no LED type was set.
	LEDDefault LEDType = ""
)

// Validate validates that the LED type is one we know.
func (t LEDType) Validate() error {
	switch t {
	case LEDDefault:
	case LEDCathode:
	case LEDAnode:
	default:
		return fmt.Errorf("invalid led_type %q, supported led types are %q and %q", t, LEDCathode, LEDAnode)
	}
	return nil
}

// Polarity returns the write polarity for channels driving this LED type.
func (t LEDType) Polarity() Polarity {
	if t == LEDAnode {
		return ActiveLow
	}
	return ActiveHigh
}

// ValidateBoardPin checks that a single pin model names both its board and its pin, and returns
// the board as a dependency.
func ValidateBoardPin(path, boardName, pin string) ([]string, []string, error) {
	if boardName == "" {
		return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "board")
	}
	if pin == "" {
		return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "pin")
	}
	return []string{boardName}, nil, nil
}
