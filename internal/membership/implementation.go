// internal/membership/implementation.go
package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrUserNotFound is returned for unknown ids or usernames.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned for a bad username/password pair.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken is returned when the username is already registered.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrRateLimited is returned when registration is throttled.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// service implements the Service interface.
type service struct {
	db          *sql.DB
	rateLimiter *rate.Limiter
}

// NewService creates a new membership service instance.
func NewService(db *sql.DB) Service {
	return &service{
		db:          db,
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute), 5), // 5 registrations per minute
	}
}

const userColumns = "id, username, email, password_hash, salt, location, COALESCE(age, 0), registration_date"

// Register creates a new user. Implausible ages are stored as unknown.
func (s *service) Register(ctx context.Context, username, email, password, location string, age int) (*User, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}

	if taken, err := s.exists(ctx, "username", username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}
	if taken, err := s.exists(ctx, "email", email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}

	passwordHash, salt, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		Location:     location,
		Age:          clampAge(age),
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, salt, location, age)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, 0))
		RETURNING id, registration_date
	`, user.Username, user.Email, user.PasswordHash, user.Salt, user.Location, user.Age).
		Scan(&user.ID, &user.RegistrationDate)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// Authenticate verifies a username/password pair. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := verifyPassword(password, user.Salt, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by id.
func (s *service) GetUser(ctx context.Context, id int) (*User, error) {
	return s.queryUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *service) queryUser(ctx context.Context, query string, arg interface{}) (*User, error) {
	user := &User{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Salt,
		&user.Location,
		&user.Age,
		&user.RegistrationDate,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

func (s *service) exists(ctx context.Context, column, value string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM users WHERE %s = $1)`, column), value).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", column, err)
	}
	return exists, nil
}
