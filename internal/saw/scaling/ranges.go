// Package scaling sweeps ensembles across a range of walk lengths and fits
// the displacement scaling law to estimate the critical exponent nu.
package scaling

import (
	"fmt"
	"strconv"
	"strings"
)

// NRangeSpec defines an inclusive integer range of target walk lengths.
type NRangeSpec struct {
	Min  int
	Max  int
	Step int
}

// ParseNRange parses a "min:max" or "min:max:step" string into an
// NRangeSpec. The step defaults to 1 when omitted.
func ParseNRange(s string) (NRangeSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return NRangeSpec{}, fmt.Errorf("invalid range format %q: expected min:max or min:max:step", s)
	}

	min, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return NRangeSpec{}, fmt.Errorf("invalid min value %q: %w", parts[0], err)
	}

	max, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return NRangeSpec{}, fmt.Errorf("invalid max value %q: %w", parts[1], err)
	}

	step := 1
	if len(parts) == 3 {
		step, err = strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return NRangeSpec{}, fmt.Errorf("invalid step value %q: %w", parts[2], err)
		}
	}

	spec := NRangeSpec{Min: min, Max: max, Step: step}
	if err := spec.Validate(); err != nil {
		return NRangeSpec{}, err
	}
	return spec, nil
}

// Validate checks the spec describes a non-empty range of positive lengths.
func (r NRangeSpec) Validate() error {
	if r.Step <= 0 {
		return fmt.Errorf("step must be positive, got %d", r.Step)
	}
	if r.Min < 1 {
		return fmt.Errorf("min walk length must be positive, got %d", r.Min)
	}
	if r.Min > r.Max {
		return fmt.Errorf("empty range: min %d > max %d", r.Min, r.Max)
	}
	return nil
}

// Values expands the spec into the list of walk lengths, capped to keep a
// malformed spec from allocating without bound.
func (r NRangeSpec) Values() []int {
	const maxValues = 10000
	if r.Step <= 0 || r.Min > r.Max {
		return nil
	}
	var out []int
	for n := r.Min; n <= r.Max; n += r.Step {
		if len(out) >= maxValues {
			break
		}
		out = append(out, n)
	}
	return out
}
