package serialcom

import (
	"fmt"
	"strconv"
	"strings"
)

// commParam renders the line settings for a baud rate. Framing is fixed at
// 8 data bits, no parity and one stop bit.
func commParam(baud BaudRate) string {
	return fmt.Sprintf("baud=%d parity=%s data=%d stop=%s",
		baud, ParityNone.Letter(), DataBits8, StopBits1)
}

// applyCommParam parses a "key=value ..." settings string into st. Keys not
// present keep their current value.
func applyCommParam(param string, st *DeviceState) error {
	next := *st
	for _, field := range strings.Fields(param) {
		key, val, ok := strings.Cut(field, "=")
		if !ok || val == "" {
			return fmt.Errorf("malformed setting %q", field)
		}
		switch strings.ToLower(key) {
		case "baud":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid baud rate %q", val)
			}
			next.BaudRate = BaudRate(n)
		case "parity":
			p, ok := parseParity(val)
			if !ok {
				return fmt.Errorf("invalid parity %q", val)
			}
			next.Parity = p
		case "data":
			n, err := strconv.Atoi(val)
			if err != nil || !DataBits(n).valid() {
				return fmt.Errorf("invalid data bits %q", val)
			}
			next.DataBits = DataBits(n)
		case "stop":
			sb, ok := parseStopBits(val)
			if !ok {
				return fmt.Errorf("invalid stop bits %q", val)
			}
			next.StopBits = sb
		default:
			return fmt.Errorf("unknown setting %q", key)
		}
	}
	*st = next
	return nil
}
