package palette

import "math"

// invertDiff returns 1 when value equals target, falling off linearly with
// the absolute difference.
func invertDiff(value, target float64) float64 {
	return 1.0 - math.Abs(value-target)
}

// weighted is one term of a weighted mean.
type weighted struct {
	value, weight float64
}

func weightedMean(terms ...weighted) float64 {
	var sum, sumWeight float64
	for _, t := range terms {
		sum += t.value * t.weight
		sumWeight += t.weight
	}
	if sumWeight == 0 {
		return 0
	}
	return sum / sumWeight
}

// score rates how well a colour matches a target. maxPopulation of zero
// scores the population term as 0.
func score(t Target, saturation, luma float64, population, maxPopulation int) float64 {
	var share float64
	if maxPopulation > 0 {
		share = float64(population) / float64(maxPopulation)
	}

	return weightedMean(
		weighted{invertDiff(saturation, t.TargetSaturation), WeightSaturation},
		weighted{invertDiff(luma, t.TargetLuma), WeightLuma},
		weighted{share, WeightPopulation},
	)
}
