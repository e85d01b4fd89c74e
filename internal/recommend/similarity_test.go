// internal/recommend/similarity_test.go
package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestSimilarityFullMatch(t *testing.T) {
	a := BookFeatures{Author: 1, Publisher: 2, Year: 3, AvgRatingScaled: 0.8}
	assert.InDelta(t, 1.0, Similarity(a, a), 1e-9)
}

func TestSimilarityWeights(t *testing.T) {
	base := BookFeatures{Author: 1, Publisher: 2, Year: 3, AvgRatingScaled: 0.5}

	authorOnly := BookFeatures{Author: 1, Publisher: 9, Year: 9, AvgRatingScaled: 0.5}
	assert.InDelta(t, 2.0/3.5, Similarity(base, authorOnly), 1e-9)

	publisherOnly := BookFeatures{Author: 9, Publisher: 2, Year: 9, AvgRatingScaled: 0.5}
	assert.InDelta(t, 1.0/3.5, Similarity(base, publisherOnly), 1e-9)

	yearOnly := BookFeatures{Author: 9, Publisher: 9, Year: 3, AvgRatingScaled: 0.5}
	assert.InDelta(t, 0.5/3.5, Similarity(base, yearOnly), 1e-9)
}

func TestSimilarityRatingGapDampens(t *testing.T) {
	a := BookFeatures{Author: 1, Publisher: 2, Year: 3, AvgRatingScaled: 1.0}
	b := BookFeatures{Author: 1, Publisher: 2, Year: 3, AvgRatingScaled: 0.0}

	// Full categorical match, maximal rating gap: halved.
	assert.InDelta(t, 0.5, Similarity(a, b), 1e-9)
}

func TestSimilarityNoMatchIsZero(t *testing.T) {
	a := BookFeatures{Author: 1, Publisher: 2, Year: 3, AvgRatingScaled: 0.2}
	b := BookFeatures{Author: 4, Publisher: 5, Year: 6, AvgRatingScaled: 0.9}
	assert.Equal(t, 0.0, Similarity(a, b))
}

func TestSimilarityBounded(t *testing.T) {
	genFeatures := func(t *rapid.T, label string) BookFeatures {
		return BookFeatures{
			Author:          rapid.IntRange(0, 50).Draw(t, label+"_author"),
			Publisher:       rapid.IntRange(0, 50).Draw(t, label+"_publisher"),
			Year:            rapid.IntRange(0, 50).Draw(t, label+"_year"),
			AvgRatingScaled: rapid.Float64Range(0, 1).Draw(t, label+"_rating"),
		}
	}

	rapid.Check(t, func(t *rapid.T) {
		a := genFeatures(t, "a")
		b := genFeatures(t, "b")

		sim := Similarity(a, b)
		assert.GreaterOrEqual(t, sim, 0.0)
		assert.LessOrEqual(t, sim, 1.0)

		// Symmetry comes along for free with the formula.
		assert.InDelta(t, sim, Similarity(b, a), 1e-12)
	})
}
