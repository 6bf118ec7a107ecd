package auth

import (
	"errors"
	"fmt"
	"time"
)

// Keys under which attempt state is persisted.
const (
	AttemptsKey = "fc-faces-login-attempts"
	LockoutKey  = "fc-faces-lockout-until"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLockedOut          = errors.New("login temporarily locked")
	ErrNetworkFailure     = errors.New("credential service unreachable")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// InvalidCredentialsError is returned for a rejected password while attempts
// remain.
type InvalidCredentialsError struct {
	Remaining int
}

func (e InvalidCredentialsError) Error() string {
	return fmt.Sprintf("invalid credentials: %d attempts remaining", e.Remaining)
}

func (e InvalidCredentialsError) Unwrap() error {
	return ErrInvalidCredentials
}

// LockedOutError carries the lockout expiry and how long is left of it.
type LockedOutError struct {
	Until     time.Time
	Remaining time.Duration
}

func (e LockedOutError) Error() string {
	return ErrLockedOut.Error()
}

func (e LockedOutError) Is(target error) bool {
	return target == ErrLockedOut
}

// RetryAfterMinutes rounds the remaining lockout up to whole minutes.
func (e LockedOutError) RetryAfterMinutes() int {
	if e.Remaining <= 0 {
		return 0
	}
	minutes := int(e.Remaining / time.Minute)
	if e.Remaining%time.Minute != 0 {
		minutes++
	}
	return minutes
}

// Status describes attempt state without submitting anything.
type Status struct {
	FailedAttempts int
	Remaining      int
	LockedUntil    time.Time
}

func (s Status) Locked() bool {
	return !s.LockedUntil.IsZero()
}

type CleanupResult struct {
	DeletedAttemptState int64 `json:"deleted_attempt_state"`
	DeletedIPLimits     int64 `json:"deleted_ip_limits"`
}
