// internal/recommend/domain.go
package recommend

// Book is the read-only view of a catalog book the recommender consumes.
// The catalog service owns the canonical entity; AvgRating and NumRatings
// are recomputed there on every rating write.
type Book struct {
	ISBN       string
	Title      string
	Author     string
	Publisher  string
	Year       string
	AvgRating  float64
	NumRatings int
}

// User is the read-only view of a member. Age is zero when unknown.
type User struct {
	ID  int
	Age int
}

// Rating is a single user's score for a book, 1-10.
type Rating struct {
	UserID int
	ISBN   string
	Value  int
}

// UserFeatures holds the encoded features of a user.
type UserFeatures struct {
	UserID int
	AgeBin int
}

// BookFeatures holds the encoded features of a book plus its scaled
// numeric attributes. Scaled values lie in [0, 1].
type BookFeatures struct {
	ISBN             int
	Author           int
	Publisher        int
	Year             int
	AvgRatingScaled  float64
	NumRatingsScaled float64
}

// Features is the full input bundle a Scorer receives for one
// (user, candidate book) pair.
type Features struct {
	User UserFeatures
	Book BookFeatures
}
