// internal/recommend/encoder.go
package recommend

import "strconv"

// Encoder turns raw attribute values into bounded integer codes using the
// pre-built vocabularies. Encoding is total: any value it has never seen,
// and any kind with no vocabulary loaded, encodes to DefaultCode.
type Encoder struct {
	vocabs Vocabularies
}

// NewEncoder creates an encoder over the given vocabularies. A nil or
// empty set is valid and yields DefaultCode for everything.
func NewEncoder(vocabs Vocabularies) *Encoder {
	if vocabs == nil {
		vocabs = make(Vocabularies)
	}
	return &Encoder{vocabs: vocabs}
}

// Encode maps a raw categorical value of the given kind to its code.
func (e *Encoder) Encode(kind FeatureKind, value string) int {
	return e.vocabs[kind].Code(value)
}

// EncodeUserID encodes a numeric user id.
func (e *Encoder) EncodeUserID(userID int) int {
	return e.Encode(KindUserID, strconv.Itoa(userID))
}

// EncodeAgeBin buckets an integer age into its bin label, then encodes
// the label like any other categorical value.
func (e *Encoder) EncodeAgeBin(age int) int {
	return e.Encode(KindAgeBin, AgeBin(age))
}

// UserFeatures encodes a user's id and age bin.
func (e *Encoder) UserFeatures(user *User) UserFeatures {
	return UserFeatures{
		UserID: e.EncodeUserID(user.ID),
		AgeBin: e.EncodeAgeBin(user.Age),
	}
}

// BookFeatures encodes a book's categorical attributes and scales its
// numeric ones. Without an external scaler the average rating is divided
// by the rating ceiling and the rating count by 100, capped at 1.
func (e *Encoder) BookFeatures(book *Book) BookFeatures {
	numScaled := float64(book.NumRatings) / 100
	if numScaled > 1 {
		numScaled = 1
	}
	return BookFeatures{
		ISBN:             e.Encode(KindISBN, book.ISBN),
		Author:           e.Encode(KindAuthor, book.Author),
		Publisher:        e.Encode(KindPublisher, book.Publisher),
		Year:             e.Encode(KindYear, book.Year),
		AvgRatingScaled:  book.AvgRating / 10,
		NumRatingsScaled: numScaled,
	}
}

// AgeBin buckets an age into one of eight labels using half-open
// intervals. Zero, negative, and missing ages fall into "Unknown".
func AgeBin(age int) string {
	switch {
	case age <= 0:
		return "Unknown"
	case age < 18:
		return "Under 18"
	case age < 25:
		return "18-24"
	case age < 35:
		return "25-34"
	case age < 45:
		return "35-44"
	case age < 55:
		return "45-54"
	case age < 65:
		return "55-64"
	default:
		return "65+"
	}
}
