// internal/library/domain.go
package library

import "time"

// Entry is one book in a user's personal library. A book appears in a
// user's library at most once.
type Entry struct {
	ID      int       `json:"id"`
	UserID  int       `json:"user_id"`
	ISBN    string    `json:"isbn"`
	AddedOn time.Time `json:"added_on"`
}
