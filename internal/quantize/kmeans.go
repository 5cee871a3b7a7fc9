package quantize

import (
	"math"
	"math/rand"

	"github.com/jmylchreest/vibrance/internal/colour"
	"github.com/jmylchreest/vibrance/internal/histogram"
	"github.com/jmylchreest/vibrance/internal/swatch"
)

// KMeans quantizes a histogram with population-weighted k-means clustering.
// It is an alternative to ColorCut that favours representative colours.
type KMeans struct {
	maxIterations int
	convergence   float64
	seed          int64
	filter        Filter
}

// NewKMeans creates a KMeans quantizer with default settings.
func NewKMeans(seed int64) *KMeans {
	return &KMeans{
		maxIterations: 20,
		convergence:   2.0,
		seed:          seed,
		filter:        DefaultFilter,
	}
}

// point3D represents a weighted point in 3D RGB colour space.
type point3D struct {
	R, G, B float64
	weight  float64
}

// distance calculates the Euclidean distance between two points in RGB space.
func (p point3D) distance(other point3D) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Quantize clusters the filtered histogram colours into at most maxColors
// swatches. Each swatch's population is the pixel count of its cluster.
func (k *KMeans) Quantize(h *histogram.Histogram, maxColors int) []*swatch.Swatch {
	points := make([]point3D, 0, h.NumberOfColors())
	for rgb, count := range h.All() {
		if k.filter(rgb.HSL()) {
			continue
		}
		points = append(points, point3D{
			R:      float64(rgb.Red()),
			G:      float64(rgb.Green()),
			B:      float64(rgb.Blue()),
			weight: float64(count),
		})
	}

	if len(points) == 0 || maxColors < 1 {
		return nil
	}

	// Fewer colours than requested: every colour is its own swatch.
	if len(points) <= maxColors {
		out := make([]*swatch.Swatch, len(points))
		for i, p := range points {
			out[i] = swatch.New(colour.PackRGB(uint8(p.R), uint8(p.G), uint8(p.B)), int(p.weight))
		}
		return out
	}

	rng := rand.New(rand.NewSource(k.seed))
	centroids, populations := k.cluster(rng, points, maxColors)

	out := make([]*swatch.Swatch, 0, len(centroids))
	for i, c := range centroids {
		if populations[i] == 0 {
			continue
		}
		s := swatch.New(colour.PackRGB(clampChannel(c.R), clampChannel(c.G), clampChannel(c.B)), populations[i])
		if k.filter(s.HSL()) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// cluster performs k-means clustering and returns the centroids with the
// total pixel population assigned to each.
func (k *KMeans) cluster(rng *rand.Rand, points []point3D, n int) ([]point3D, []int) {
	centroids := k.initializeCentroidsKMeansPlusPlus(rng, points, n)
	assignments := make([]int, len(points))

	var totalWeight float64
	for _, p := range points {
		totalWeight += p.weight
	}

	for iter := 0; iter < k.maxIterations; iter++ {
		// Assign each point to nearest centroid.
		var changed float64
		for i, point := range points {
			nearest := findNearestCentroid(point, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed += point.weight
			}
		}

		// If less than 1% of pixels moved, we've converged.
		if iter > 0 && changed/totalWeight < 0.01 {
			break
		}

		newCentroids := recalculateCentroids(rng, points, assignments, n)

		totalMovement := 0.0
		for i := range centroids {
			totalMovement += centroids[i].distance(newCentroids[i])
		}
		centroids = newCentroids

		if totalMovement/float64(n) < k.convergence {
			break
		}
	}

	populations := make([]int, n)
	for i, assignment := range assignments {
		populations[assignment] += int(points[i].weight)
	}

	return centroids, populations
}

// initializeCentroidsKMeansPlusPlus picks initial centroids with probability
// proportional to weighted squared distance from the nearest chosen centroid.
func (k *KMeans) initializeCentroidsKMeansPlusPlus(rng *rand.Rand, points []point3D, n int) []point3D {
	centroids := make([]point3D, 0, n)
	centroids = append(centroids, points[rng.Intn(len(points))])

	distances := make([]float64, len(points))
	for len(centroids) < n {
		totalDistance := 0.0
		for i, point := range points {
			minDist := math.MaxFloat64
			for _, centroid := range centroids {
				minDist = math.Min(minDist, point.distance(centroid))
			}
			distances[i] = minDist * minDist * point.weight
			totalDistance += distances[i]
		}

		if totalDistance == 0 {
			// Every point coincides with a centroid.
			last := centroids[len(centroids)-1]
			centroids = append(centroids, point3D{R: last.R + 0.1, G: last.G + 0.1, B: last.B + 0.1})
			continue
		}

		target := rng.Float64() * totalDistance
		cumulative := 0.0
		chosen := len(points) - 1
		for i, dist := range distances {
			cumulative += dist
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, points[chosen])
	}

	return centroids
}

// findNearestCentroid finds the index of the nearest centroid to a point.
func findNearestCentroid(point point3D, centroids []point3D) int {
	minDist := math.MaxFloat64
	nearest := 0
	for i, centroid := range centroids {
		if dist := point.distance(centroid); dist < minDist {
			minDist = dist
			nearest = i
		}
	}
	return nearest
}

// recalculateCentroids moves each centroid to the weighted mean of its points.
func recalculateCentroids(rng *rand.Rand, points []point3D, assignments []int, n int) []point3D {
	sums := make([]point3D, n)
	for i, point := range points {
		cluster := assignments[i]
		sums[cluster].R += point.R * point.weight
		sums[cluster].G += point.G * point.weight
		sums[cluster].B += point.B * point.weight
		sums[cluster].weight += point.weight
	}

	centroids := make([]point3D, n)
	for i := range n {
		if sums[i].weight > 0 {
			centroids[i] = point3D{
				R: sums[i].R / sums[i].weight,
				G: sums[i].G / sums[i].weight,
				B: sums[i].B / sums[i].weight,
			}
		} else {
			// Empty cluster - reinitialise randomly.
			centroids[i] = points[rng.Intn(len(points))]
		}
	}
	return centroids
}

func clampChannel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}
