package serialcom

import (
	gobug "go.bug.st/serial"
)

type Parity gobug.Parity

func (pa Parity) Get() gobug.Parity {
	return gobug.Parity(pa)
}

// Letter is the single-character form used in comm parameter strings.
func (pa Parity) Letter() string {
	switch pa {
	case ParityOdd:
		return "o"
	case ParityEven:
		return "e"
	case ParityMark:
		return "m"
	case ParitySpace:
		return "s"
	}
	return "n"
}

func parseParity(s string) (Parity, bool) {
	switch s {
	case "n", "N":
		return ParityNone, true
	case "o", "O":
		return ParityOdd, true
	case "e", "E":
		return ParityEven, true
	case "m", "M":
		return ParityMark, true
	case "s", "S":
		return ParitySpace, true
	}
	return ParityNone, false
}

const (
	// ParityNone represents no parity bit
	ParityNone = Parity(gobug.NoParity)
	// ParityOdd represents odd parity bit
	ParityOdd = Parity(gobug.OddParity)
	// ParityEven represents even parity bit
	ParityEven = Parity(gobug.EvenParity)
	// ParityMark represents mark parity bit (always 1)
	ParityMark = Parity(gobug.MarkParity)
	// ParitySpace represents space parity bit (always 0)
	ParitySpace = Parity(gobug.SpaceParity)
)
