// internal/recommend/scorer.go
package recommend

// NeutralScore is the affinity returned whenever a real prediction is not
// possible. A constant score makes the ranking step degenerate to stable
// input order instead of failing.
const NeutralScore = 0.5

// Scorer produces an affinity score for a (user, candidate book) feature
// bundle. Implementations never return an error and never panic through
// to the caller; anything that goes wrong inside yields NeutralScore.
type Scorer interface {
	Score(f Features) float64
}

// NeutralScorer is the degraded-mode scorer used when no trained model is
// available. It scores every pair identically.
type NeutralScorer struct{}

func (NeutralScorer) Score(Features) float64 { return NeutralScore }

// ModelScorer scores pairs with a trained affinity model.
type ModelScorer struct {
	model *AffinityModel
}

// NewModelScorer wraps a loaded model in the Scorer interface.
func NewModelScorer(model *AffinityModel) *ModelScorer {
	return &ModelScorer{model: model}
}

// Score feeds the feature bundle through the model. Prediction failures
// of any kind, including panics from malformed model artifacts, are
// swallowed and replaced with NeutralScore.
func (s *ModelScorer) Score(f Features) (score float64) {
	defer func() {
		if recover() != nil {
			score = NeutralScore
		}
	}()

	score, err := s.model.Predict(f)
	if err != nil {
		return NeutralScore
	}
	return score
}
