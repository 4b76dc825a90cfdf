package triage

import (
	"math"
	"strconv"
	"strings"
)

// bpKey keeps its raw reading; systolic/diastolic pairs do not reduce to one
// number.
const bpKey = "bp"

// NormalizeVitals converts raw form readings into typed values. Blood
// pressure is stored as entered; every other reading is parsed as a number
// and silently dropped when blank or unparseable.
func NormalizeVitals(raw map[string]string) VitalsMap {
	out := make(VitalsMap, len(raw))
	for key, value := range raw {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if key == bpKey {
			out[key] = value
			continue
		}
		n, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			continue
		}
		out[key] = n
	}
	return out
}
