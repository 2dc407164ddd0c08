// Package facematch compares face descriptors by Euclidean distance.
// Descriptors are opaque float vectors produced by the browser-side
// model; this package has no opinion about what the components mean.
package facematch

import (
	"errors"
	"math"
)

// DefaultThreshold is the distance below which two descriptors are
// considered the same face.
const DefaultThreshold = 0.6

// ErrDimensionMismatch is returned when two descriptors have different
// lengths and cannot be compared.
var ErrDimensionMismatch = errors.New("descriptor dimensions do not match")

// Distance computes the Euclidean distance between two descriptors.
func Distance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Matcher decides whether a probe descriptor matches an enrolled one.
type Matcher struct {
	threshold float64
}

// NewMatcher creates a matcher. A non-positive threshold falls back to
// DefaultThreshold.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Match reports whether the probe is close enough to the enrolled
// descriptor, along with the measured distance.
func (m *Matcher) Match(enrolled, probe []float64) (bool, float64, error) {
	d, err := Distance(enrolled, probe)
	if err != nil {
		return false, 0, err
	}
	return d <= m.threshold, d, nil
}
