// internal/membership/domain.go
package membership

import "time"

// User is a registered member.
type User struct {
	ID               int       `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Salt             string    `json:"-"`
	Location         string    `json:"location,omitempty"`
	Age              int       `json:"age,omitempty"`
	RegistrationDate time.Time `json:"registration_date"`
}

// Plausible age bounds; values outside are stored as unknown (zero).
const (
	minPlausibleAge = 5
	maxPlausibleAge = 100
)

// clampAge maps implausible ages to the unknown value.
func clampAge(age int) int {
	if age < minPlausibleAge || age > maxPlausibleAge {
		return 0
	}
	return age
}
