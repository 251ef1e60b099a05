package activity

// FilterNoise partitions records into meaningful (duration >= threshold)
// and noise (duration < threshold), preserving order. Both the batch and
// the flow-quality paths use this identically; the realtime path applies
// it before any state update so noise never perturbs smoothing.
func FilterNoise(records []Record, thresholdSec int) (meaningful, noise []Record) {
	for _, r := range records {
		if r.DurationSec >= thresholdSec {
			meaningful = append(meaningful, r)
		} else {
			noise = append(noise, r)
		}
	}
	return meaningful, noise
}

// IsNoise reports whether a single record falls under the threshold.
func IsNoise(r Record, thresholdSec int) bool {
	return r.DurationSec < thresholdSec
}
