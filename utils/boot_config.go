package pwmutils

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
)

// GetBootConfigPath returns the correct path for boot config file.
// Handles both /boot/config.txt (older) and /boot/firmware/config.txt (newer).
func GetBootConfigPath() string {
	if _, err := os.Stat("/boot/firmware/config.txt"); err == nil {
		return "/boot/firmware/config.txt"
	}
	return "/boot/config.txt"
}

// hardwarePWMOverlays lists the PWM overlays and the pins they claim when no pin parameter is given.
var hardwarePWMOverlays = map[string][]uint{
	"pwm":       {18},
	"pwm-2chan": {18, 19},
}

// HardwarePWMPins returns the broadcom pins claimed by uncommented dtoverlay=pwm or
// dtoverlay=pwm-2chan lines in the boot config at filePath.
func HardwarePWMPins(filePath string) ([]uint, error) {
	filePath = filepath.Clean(filePath)
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", filePath)
	}
	defer f.Close()

	var pins []uint
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		trimmed := strings.TrimSpace(scanner.Text())
		// Do not look at commented lines
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		overlay, found := strings.CutPrefix(trimmed, "dtoverlay=")
		if !found {
			continue
		}
		fields := strings.Split(overlay, ",")
		defaults, ok := hardwarePWMOverlays[strings.TrimSpace(fields[0])]
		if !ok {
			continue
		}
		claimed := append([]uint(nil), defaults...)
		for _, param := range fields[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok {
				continue
			}
			n, err := strconv.ParseUint(value, 10, 8)
			if err != nil {
				return nil, errors.Errorf("bad %s value %q in %s", key, value, filePath)
			}
			switch {
			case key == "pin":
				claimed[0] = uint(n)
			case key == "pin2" && len(claimed) > 1:
				claimed[1] = uint(n)
			}
		}
		pins = append(pins, claimed...)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", filePath)
	}
	return pins, nil
}

// WarnHardwarePWMConflicts logs a warning for every soft PWM pin that a hardware PWM overlay in
// the boot config also claims. Pins that do not resolve to a broadcom number are skipped. A
// missing boot config is not an error: we may not be on a pi.
func WarnHardwarePWMConflicts(configPath string, pins []string, logger logging.Logger) []string {
	claimed, err := HardwarePWMPins(configPath)
	if err != nil {
		logger.Debugw("could not check for hardware PWM overlays", "error", err)
		return nil
	}
	var conflicts []string
	for _, pin := range pins {
		bcom, ok := BroadcomPinFromHardwareLabel(pin)
		if !ok {
			continue
		}
		for _, hw := range claimed {
			if hw == bcom {
				logger.Warnf("pin %s (GPIO%d) is claimed by a hardware PWM overlay in %s; soft PWM writes may not reach it", pin, bcom, configPath)
				conflicts = append(conflicts, pin)
				break
			}
		}
	}
	return conflicts
}
