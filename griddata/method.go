package griddata

import (
	"fmt"
	"strconv"
	"strings"
)

// Method selects how raster pixels around a query point are reduced to a
// value. The numbering is stable and used in run files.
type Method int

const (
	NoMethod Method = iota
	Average
	Nearest
	Highest
	PlusTwoSigma
	BilskieEtAl
	InverseDistanceWeighted
	InverseDistanceWeightedNPoints
	AverageNearestNPoints
)

var methodNames = [...]string{
	NoMethod:                       "none",
	Average:                        "average",
	Nearest:                        "nearest",
	Highest:                        "highest",
	PlusTwoSigma:                   "plus-two-sigma",
	BilskieEtAl:                    "bilskie",
	InverseDistanceWeighted:        "idw",
	InverseDistanceWeightedNPoints: "idw-n",
	AverageNearestNPoints:          "average-n",
}

func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return "Method(" + strconv.Itoa(int(m)) + ")"
	}
	return methodNames[m]
}

// ParseMethod accepts a method name or its number.
func ParseMethod(s string) (Method, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range methodNames {
		if s == name {
			return Method(m), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < len(methodNames) {
		return Method(n), nil
	}
	return NoMethod, fmt.Errorf("unknown interpolation method %q", s)
}

// Threshold selects which raster values survive the threshold pre-pass.
type Threshold int

const (
	NoThreshold Threshold = iota
	KeepAbove
	KeepBelow
)

func (t Threshold) String() string {
	switch t {
	case NoThreshold:
		return "none"
	case KeepAbove:
		return "above"
	case KeepBelow:
		return "below"
	}
	return "Threshold(" + strconv.Itoa(int(t)) + ")"
}

// ParseThreshold accepts "none", "above" or "below".
func ParseThreshold(s string) (Threshold, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NoThreshold, nil
	case "above":
		return KeepAbove, nil
	case "below":
		return KeepBelow, nil
	}
	return NoThreshold, fmt.Errorf("unknown threshold mode %q", s)
}
