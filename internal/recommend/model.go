// internal/recommend/model.go
package recommend

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
)

// TitleEmbeddingDim is the width of the textual-embedding feature the
// trained model expects. The encoder produces no text embeddings, so a
// zero vector of this width is substituted at prediction time.
const TitleEmbeddingDim = 50

// featureOrder fixes the order in which categorical embeddings are
// concatenated into the model input. It must match the layout the model
// was trained with.
var featureOrder = []FeatureKind{
	KindUserID,
	KindISBN,
	KindAuthor,
	KindPublisher,
	KindYear,
	KindAgeBin,
}

// AffinityModel is a trained wide-and-deep style scoring model exported
// as a gob artifact: one embedding table per categorical feature, a dense
// weight vector over the concatenated input, and a bias. The output is
// squashed through a sigmoid into (0, 1).
type AffinityModel struct {
	// Embeddings maps each feature kind to its table, indexed by code.
	// Code 0 is the reserved row for unknown values.
	Embeddings map[FeatureKind][][]float64

	// Weights spans the concatenation of all embedding rows, the two
	// scaled numeric features, and the zero-filled title embedding.
	Weights []float64

	Bias float64
}

// LoadModel reads a gob-encoded AffinityModel from path and validates its
// shape. A missing or corrupt file is reported as an error so the caller
// can fall back to the neutral scorer.
func LoadModel(path string) (*AffinityModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()

	var model AffinityModel
	if err := gob.NewDecoder(f).Decode(&model); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	if err := model.validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", path, err)
	}
	return &model, nil
}

func (m *AffinityModel) validate() error {
	width := 0
	for _, kind := range featureOrder {
		table := m.Embeddings[kind]
		if len(table) == 0 {
			return fmt.Errorf("missing embedding table for %s", kind)
		}
		width += len(table[0])
	}
	width += 2 + TitleEmbeddingDim
	if len(m.Weights) != width {
		return fmt.Errorf("weight vector has %d entries, input width is %d", len(m.Weights), width)
	}
	return nil
}

// Predict computes the affinity for one feature bundle.
func (m *AffinityModel) Predict(f Features) (float64, error) {
	codes := map[FeatureKind]int{
		KindUserID:    f.User.UserID,
		KindISBN:      f.Book.ISBN,
		KindAuthor:    f.Book.Author,
		KindPublisher: f.Book.Publisher,
		KindYear:      f.Book.Year,
		KindAgeBin:    f.User.AgeBin,
	}

	input := make([]float64, 0, len(m.Weights))
	for _, kind := range featureOrder {
		table := m.Embeddings[kind]
		code := codes[kind]
		if code < 0 || code >= len(table) {
			code = DefaultCode
		}
		input = append(input, table[code]...)
	}
	input = append(input, f.Book.AvgRatingScaled, f.Book.NumRatingsScaled)

	// Zero-filled placeholder for the title embedding the encoder does
	// not produce.
	input = append(input, make([]float64, TitleEmbeddingDim)...)

	if len(input) != len(m.Weights) {
		return 0, fmt.Errorf("input width %d does not match weights %d", len(input), len(m.Weights))
	}

	z := m.Bias
	for i, x := range input {
		z += m.Weights[i] * x
	}
	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
