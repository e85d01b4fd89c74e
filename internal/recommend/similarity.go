// internal/recommend/similarity.go
package recommend

import "math"

// Similarity weights. Author agreement dominates, publication year
// matters least; the divisor keeps the raw match score in [0, 1].
const (
	authorWeight    = 2.0
	publisherWeight = 1.0
	yearWeight      = 0.5
	weightTotal     = authorWeight + publisherWeight + yearWeight
)

// Similarity estimates how alike two books are from their encoded
// categorical features, adjusted by how close their average ratings sit
// on the scale. The result is bounded to [0, 1] as long as both scaled
// ratings are.
func Similarity(a, b BookFeatures) float64 {
	var match float64
	if a.Author == b.Author {
		match += authorWeight
	}
	if a.Publisher == b.Publisher {
		match += publisherWeight
	}
	if a.Year == b.Year {
		match += yearWeight
	}

	sim := match / weightTotal
	sim *= 1 - 0.5*math.Abs(a.AvgRatingScaled-b.AvgRatingScaled)
	return sim
}
