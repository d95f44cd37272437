package ta

import "math"

// VolumeResult holds the moving-average volume series, the per-bar
// anomaly flags, and the ratio of each bar's volume to its average.
type VolumeResult struct {
	Averages []float64
	Anomaly  []bool
	Ratios   []float64
	Metadata map[string]float64
}

// VolumeAnomaly flags bars whose volume exceeds threshold times the
// avgPeriod simple moving average. Bars without a defined average (the
// warm-up prefix, or a zero average) are never anomalous.
func VolumeAnomaly(volumes []float64, avgPeriod int, threshold float64) VolumeResult {
	averages := SMASeries(volumes, avgPeriod)
	anomaly := make([]bool, len(volumes))
	ratios := make([]float64, len(volumes))

	var count float64
	for i, v := range volumes {
		avg := averages[i]
		if math.IsNaN(avg) || avg <= 0 {
			continue
		}
		ratios[i] = v / avg
		if v > threshold*avg {
			anomaly[i] = true
			count++
		}
	}

	meta := map[string]float64{
		"avg_period":        float64(avgPeriod),
		"anomaly_threshold": threshold,
		"anomaly_count":     count,
	}
	if n := len(volumes); n > 0 {
		meta["current_volume"] = volumes[n-1]
		if !math.IsNaN(averages[n-1]) {
			meta["current_avg_volume"] = averages[n-1]
		}
	}
	return VolumeResult{Averages: averages, Anomaly: anomaly, Ratios: ratios, Metadata: meta}
}
