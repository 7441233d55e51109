package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"raspberry-pi-softpwm/softpwm"
	pwmutils "raspberry-pi-softpwm/utils"
)

const defaultChip = "gpiochip0"

// Drivers the demo can write pins through.
const (
	driverChip    = "chip"
	driverPinctrl = "pinctrl"
)

// Config describes which pins the demo drives.
type Config struct {
	Driver      string           `yaml:"driver"`
	Chip        string           `yaml:"chip"`
	DryRun      bool             `yaml:"dry_run"`
	FrequencyHz int              `yaml:"frequency_hz"`
	LEDType     pwmutils.LEDType `yaml:"led_type"`
	RGB         RGBConfig        `yaml:"rgb"`
	PWMLED      string           `yaml:"pwm_led"`
	TonePin     string           `yaml:"tone_pin"`
	ServoPin    string           `yaml:"servo_pin"`
}

// RGBConfig holds the pins of the RGB LED.
type RGBConfig struct {
	RedPin   string `yaml:"red_pin"`
	GreenPin string `yaml:"green_pin"`
	BluePin  string `yaml:"blue_pin"`
}

// Load reads the YAML config at path and fills in defaults.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "failed to parse %s", path)
	}

	if cfg.Driver == "" {
		cfg.Driver = driverChip
	}
	if cfg.Chip == "" {
		cfg.Chip = defaultChip
	}
	if cfg.FrequencyHz == 0 {
		cfg.FrequencyHz = pwmutils.DefaultFrequencyHz
	}
	if cfg.LEDType == pwmutils.LEDDefault {
		cfg.LEDType = pwmutils.LEDCathode
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the driver, LED type and frequency, and that every pin is used once.
func (cfg Config) Validate() error {
	if cfg.Driver != driverChip && cfg.Driver != driverPinctrl {
		return errors.Errorf("driver must be %q or %q, got %q", driverChip, driverPinctrl, cfg.Driver)
	}
	if err := cfg.LEDType.Validate(); err != nil {
		return err
	}
	if len(cfg.Pins()) == 0 {
		return errors.New("need at least one of rgb.red_pin, rgb.green_pin, rgb.blue_pin, pwm_led, tone_pin or servo_pin")
	}
	if err := cfg.rgbConfig().Validate(); err != nil {
		return errors.Wrap(err, "rgb")
	}
	seen := map[string]bool{}
	for _, pin := range cfg.Pins() {
		if seen[pin] {
			return errors.Errorf("pin %s is used more than once", pin)
		}
		seen[pin] = true
	}
	return nil
}

// Pins returns every configured pin.
func (cfg Config) Pins() []string {
	var pins []string
	for _, pin := range []string{
		cfg.RGB.RedPin, cfg.RGB.GreenPin, cfg.RGB.BluePin, cfg.PWMLED, cfg.TonePin, cfg.ServoPin,
	} {
		if pin != "" {
			pins = append(pins, pin)
		}
	}
	return pins
}

func (cfg Config) rgbConfig() softpwm.ControllerConfig {
	return softpwm.ControllerConfig{
		RedPin:      cfg.RGB.RedPin,
		GreenPin:    cfg.RGB.GreenPin,
		BluePin:     cfg.RGB.BluePin,
		FrequencyHz: cfg.FrequencyHz,
		LEDType:     cfg.LEDType,
	}
}

func (cfg Config) pwmLEDConfig() softpwm.ControllerConfig {
	return softpwm.ControllerConfig{
		GenericPin:  cfg.PWMLED,
		FrequencyHz: cfg.FrequencyHz,
	}
}
