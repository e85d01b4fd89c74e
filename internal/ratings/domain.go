// internal/ratings/domain.go
package ratings

import "time"

// Rating is one user's score for one book. A user rates a book at most
// once; re-rating updates the existing row.
type Rating struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	ISBN      string    `json:"isbn"`
	Value     int       `json:"rating"`
	CreatedAt time.Time `json:"timestamp"`
}
