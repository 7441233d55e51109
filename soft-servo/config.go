// Package softservo contains a hobby servo driven by software pulses on a plain digital pin.
package softservo

import (
	"github.com/pkg/errors"
	"go.viam.com/rdk/resource"

	pwmutils "raspberry-pi-softpwm/utils"
)

// ServoConfig is the config for a soft servo.
type ServoConfig struct {
	BoardName string `json:"board"`
	Pin       string `json:"pin"`

	Min           int      `json:"min,omitempty"`                    // specifies a user inputted minimum position limitation
	Max           int      `json:"max,omitempty"`                    // specifies a user inputted maximum position limitation. Defaults to 180
	StartPos      *float64 `json:"starting_position_degs,omitempty"` // written once at startup if set
	ConstantFrame bool     `json:"constant_frame,omitempty"`         // pad every frame to 20ms instead of waiting 20ms after the pulse
	FramesPerMove int      `json:"frames_per_move,omitempty"`        // frames sent per Move. Defaults to 1
}

// Validate ensures all parts of the config are valid.
func (config *ServoConfig) Validate(path string) ([]string, []string, error) {
	deps, optional, err := pwmutils.ValidateBoardPin(path, config.BoardName, config.Pin)
	if err != nil {
		return nil, nil, err
	}
	if err := config.validateLimits(); err != nil {
		return nil, nil, resource.NewConfigValidationError(path, err)
	}
	return deps, optional, nil
}

func (config *ServoConfig) validateLimits() error {
	if config.Min < 0 {
		return errors.New("min must not be negative")
	}
	if config.Min > MaxAngle {
		return errors.Errorf("min must be at most %d", MaxAngle)
	}
	if config.Max > MaxAngle {
		return errors.Errorf("max must be at most %d", MaxAngle)
	}
	if config.Max > 0 && config.Max < config.Min {
		return errors.New("max is less than minimum")
	}
	if config.StartPos != nil && (*config.StartPos < 0 || *config.StartPos > MaxAngle) {
		return errors.Errorf("starting_position_degs must be between 0 and %d", MaxAngle)
	}
	if config.FramesPerMove < 0 {
		return errors.New("frames_per_move must not be negative")
	}
	return nil
}

// limits returns the clamp bounds applied in Move.
func (config *ServoConfig) limits() (uint32, uint32) {
	maxAngle := uint32(MaxAngle)
	if config.Max > 0 {
		maxAngle = uint32(config.Max)
	}
	return uint32(config.Min), maxAngle
}
