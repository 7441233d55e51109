package pwmutils

import (
	"strconv"
	"strings"
)

// physicalToBroadcom maps 40-pin header positions to broadcom GPIO numbers.
var physicalToBroadcom = map[string]uint{
	"3": 2, "5": 3, "7": 4, "8": 14, "10": 15,
	"11": 17, "12": 18, "13": 27, "15": 22, "16": 23,
	"18": 24, "19": 10, "21": 9, "22": 25, "23": 11,
	"24": 8, "26": 7, "27": 0, "28": 1, "29": 5,
	"31": 6, "32": 12, "33": 13, "35": 19, "36": 16,
	"37": 26, "38": 20, "40": 21,
}

// namedToBroadcom maps the alternate function names printed on pinout charts.
var namedToBroadcom = map[string]uint{
	"sda": 2, "scl": 3,
	"txd": 14, "rxd": 15,
	"mosi": 10, "miso": 9, "sclk": 11, "ce0": 8, "ce1": 7,
	"pwm0": 18, "pwm1": 19,
}

// wiringPiToBroadcom maps wiringPi pin numbers (rev 2 boards and later) to broadcom numbers.
var wiringPiToBroadcom = map[uint]uint{
	0: 17, 1: 18, 2: 27, 3: 22, 4: 23, 5: 24, 6: 25, 7: 4,
	8: 2, 9: 3, 10: 8, 11: 7, 12: 10, 13: 9, 14: 11, 15: 14,
	16: 15, 21: 5, 22: 6, 23: 13, 24: 19, 25: 26, 26: 12, 27: 16,
	28: 20, 29: 21, 30: 0, 31: 1,
}

// maxBroadcom is the highest GPIO exposed on the header.
const maxBroadcom = 27

// BroadcomPinFromHardwareLabel resolves a pin label to a broadcom GPIO number. Accepted labels are
// header positions ("11"), broadcom names ("io17", "gpio17", "bcm17"), wiringPi numbers ("wpi0")
// and alternate function names ("sclk").
func BroadcomPinFromHardwareLabel(label string) (uint, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	if bcom, ok := physicalToBroadcom[l]; ok {
		return bcom, true
	}
	if bcom, ok := namedToBroadcom[l]; ok {
		return bcom, true
	}
	for _, prefix := range []string{"gpio", "bcm", "io"} {
		if rest, found := strings.CutPrefix(l, prefix); found {
			n, err := strconv.ParseUint(rest, 10, 8)
			if err != nil || n > maxBroadcom {
				return 0, false
			}
			return uint(n), true
		}
	}
	if rest, found := strings.CutPrefix(l, "wpi"); found {
		n, err := strconv.ParseUint(rest, 10, 8)
		if err != nil {
			return 0, false
		}
		bcom, ok := wiringPiToBroadcom[uint(n)]
		return bcom, ok
	}
	return 0, false
}
