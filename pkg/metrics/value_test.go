package metrics

import (
	"errors"
	"fmt"
)

var errGather = errors.New("metrics gather failed")

// seriesValue returns the current value of a counter or gauge series in the custom
// registry. Histograms report their sample count. Labels must match exactly
// the non-constant labels of the series.
func seriesValue(name string, labels map[string]string) (float64, error) {
	families, err := customRegistry.Gather()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errGather, err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if !labelsMatch(m.GetLabel(), labels) {
				continue
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue(), nil
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue(), nil
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount()), nil
			}
		}
	}
	return 0, fmt.Errorf("%w: series %s%v not found", errGather, name, labels)
}

type labelPair interface {
	GetName() string
	GetValue() string
}

func labelsMatch[L labelPair](got []L, want map[string]string) bool {
	matched := 0
	for _, lp := range got {
		v, ok := want[lp.GetName()]
		if !ok {
			continue
		}
		if v != lp.GetValue() {
			return false
		}
		matched++
	}
	return matched == len(want)
}
