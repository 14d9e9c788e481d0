package gaze

import (
	"strconv"
	"strings"
)

// eye is a parsed per-eye reading. Usable is false when any field failed to parse.
type eye struct {
	x, y     float64
	validity float64
	usable   bool
}

func readEye(raw *rawEye) eye {
	if raw == nil || raw.X == nil || raw.Y == nil || raw.Validity == nil {
		return eye{}
	}

	x, errX := strconv.ParseFloat(strings.TrimSpace(*raw.X), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(*raw.Y), 64)
	v, errV := strconv.ParseFloat(strings.TrimSpace(*raw.Validity), 64)

	if errX != nil || errY != nil || errV != nil {
		return eye{}
	}

	return eye{x: x, y: y, validity: v, usable: true}
}

func (e eye) valid() bool {
	return e.usable && e.validity >= fullValidity
}

// mergeEyes resolves binocular data: mean of both valid eyes, else the left
// eye, else the right eye. ok is false when neither eye is valid.
func mergeEyes(left, right eye) (x, y float64, ok bool) {
	switch {
	case left.valid() && right.valid():
		return (left.x + right.x) / 2, (left.y + right.y) / 2, true
	case left.valid():
		return left.x, left.y, true
	case right.valid():
		return right.x, right.y, true
	default:
		return 0, 0, false
	}
}
