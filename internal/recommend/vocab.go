// internal/recommend/vocab.go
package recommend

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FeatureKind names one of the categorical features the encoder handles.
type FeatureKind string

const (
	KindUserID    FeatureKind = "user_id"
	KindISBN      FeatureKind = "isbn"
	KindAuthor    FeatureKind = "author"
	KindPublisher FeatureKind = "publisher"
	KindYear      FeatureKind = "year"
	KindAgeBin    FeatureKind = "age_bin"
)

// DefaultCode is returned for values absent from a vocabulary and for
// kinds with no vocabulary loaded.
const DefaultCode = 0

// Vocabulary maps raw categorical values to small integer codes. It is a
// fixed artifact built at training time, never mutated at runtime.
type Vocabulary map[string]int

// Code returns the code for value, or DefaultCode when the value is not
// in the vocabulary.
func (v Vocabulary) Code(value string) int {
	if v == nil {
		return DefaultCode
	}
	if code, ok := v[value]; ok {
		return code
	}
	return DefaultCode
}

// Vocabularies is the full set of categorical vocabularies, one per kind.
// A nil map for a kind means that vocabulary was not supplied; every value
// of that kind encodes to DefaultCode.
type Vocabularies map[FeatureKind]Vocabulary

// vocabularyFiles maps each feature kind to its artifact file name.
var vocabularyFiles = map[FeatureKind]string{
	KindUserID:    "user_id.yaml",
	KindISBN:      "isbn.yaml",
	KindAuthor:    "author.yaml",
	KindPublisher: "publisher.yaml",
	KindYear:      "year.yaml",
	KindAgeBin:    "age_bin.yaml",
}

// LoadVocabularies reads the vocabulary artifacts from dir. Missing or
// unreadable files are not errors: the corresponding kind is simply left
// unloaded. The returned error is non-nil only when dir itself cannot be
// read, and even then the (empty) set remains usable.
func LoadVocabularies(dir string) (Vocabularies, error) {
	vocabs := make(Vocabularies, len(vocabularyFiles))
	if dir == "" {
		return vocabs, nil
	}
	if _, err := os.Stat(dir); err != nil {
		return vocabs, fmt.Errorf("vocabulary dir %s: %w", dir, err)
	}

	for kind, name := range vocabularyFiles {
		vocab, err := loadVocabulary(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		vocabs[kind] = vocab
	}
	return vocabs, nil
}

func loadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var vocab Vocabulary
	if err := yaml.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	return vocab, nil
}
