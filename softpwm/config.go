package softpwm

import (
	"github.com/pkg/errors"
	"go.viam.com/rdk/resource"

	pwmutils "raspberry-pi-softpwm/utils"
)

// Config is the config for a soft PWM LED. Any of the pins may be left out, but at least one
// must be set.
type Config struct {
	BoardName   string           `json:"board"`
	RedPin      string           `json:"red_pin,omitempty"`
	GreenPin    string           `json:"green_pin,omitempty"`
	BluePin     string           `json:"blue_pin,omitempty"`
	Pin         string           `json:"pin,omitempty"`          // generic single color channel
	FrequencyHz int              `json:"frequency_hz,omitempty"` // defaults to 1000
	LEDType     pwmutils.LEDType `json:"led_type,omitempty"`     // cathode or anode, defaults to cathode
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, []string, error) {
	if conf.BoardName == "" {
		return nil, nil, resource.NewConfigValidationFieldRequiredError(path, "board")
	}
	if conf.RedPin == "" && conf.GreenPin == "" && conf.BluePin == "" && conf.Pin == "" {
		return nil, nil, resource.NewConfigValidationError(path,
			errors.New("need at least one of red_pin, green_pin, blue_pin or pin"))
	}
	if err := conf.controllerConfig().Validate(); err != nil {
		return nil, nil, resource.NewConfigValidationError(path, err)
	}
	return []string{conf.BoardName}, nil, nil
}

func (conf *Config) controllerConfig() ControllerConfig {
	return ControllerConfig{
		RedPin:      conf.RedPin,
		GreenPin:    conf.GreenPin,
		BluePin:     conf.BluePin,
		GenericPin:  conf.Pin,
		FrequencyHz: conf.FrequencyHz,
		LEDType:     conf.LEDType,
	}
}
