package sender

import (
	"time"
)

// Granularity classifies how finely the platform's sleep primitive can
// be trusted for the sub-millisecond break/MAB holds.
type Granularity uint8

const (
	// GranularityUnknown is the state before the probe has run.
	GranularityUnknown Granularity = 0

	// GranularityGood means sub-millisecond sleeps are honored closely
	// enough to time the break and MAB with explicit holds.
	GranularityGood Granularity = 1

	// GranularityBad means the sleep primitive is too coarse; the
	// thread skips the explicit holds and relies on call overhead.
	GranularityBad Granularity = 2
)

// String returns the classification name.
func (g Granularity) String() string {
	switch g {
	case GranularityGood:
		return "GOOD"
	case GranularityBad:
		return "BAD"
	default:
		return "UNKNOWN"
	}
}

// checkTimeGranularity probes the sleep primitive once: sleep for
// granularityProbe and measure the actual elapsed time. Oversleeping
// past granularityThreshold classifies the platform as BAD. Returns the
// classification and the observed elapsed time.
func checkTimeGranularity(sleep func(time.Duration), now func() time.Time) (Granularity, time.Duration) {
	t1 := now()
	sleep(granularityProbe)
	elapsed := now().Sub(t1)

	if elapsed > granularityThreshold {
		return GranularityBad, elapsed
	}
	return GranularityGood, elapsed
}
