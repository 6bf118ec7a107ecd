package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultMaxAttempts  = 5
	defaultLockWindow   = 15 * time.Minute
	defaultThrottleBase = 300 * time.Millisecond
	defaultThrottleMax  = 3 * time.Second
)

// PasswordChecker decides whether a password is correct. It returns an error
// only when it could not decide.
type PasswordChecker interface {
	Check(ctx context.Context, password string) (bool, error)
}

// Service enforces the attempt and lockout policy in front of a
// PasswordChecker.
type Service struct {
	mu      sync.Mutex
	store   AttemptStore
	checker PasswordChecker
	session *Session

	now   func() time.Time
	sleep func(context.Context, time.Duration) error

	maxAttempts  int
	lockDuration time.Duration
	throttleBase time.Duration
	throttleMax  time.Duration
}

func NewService(store AttemptStore, checker PasswordChecker) *Service {
	return &Service{
		store:        store,
		checker:      checker,
		now:          func() time.Time { return time.Now().UTC() },
		sleep:        sleepContext,
		maxAttempts:  defaultMaxAttempts,
		lockDuration: defaultLockWindow,
		throttleBase: defaultThrottleBase,
		throttleMax:  defaultThrottleMax,
	}
}

func (s *Service) WithSecurityConfig(maxAttempts int, lockDuration time.Duration) {
	if maxAttempts > 0 {
		s.maxAttempts = maxAttempts
	}
	if lockDuration > 0 {
		s.lockDuration = lockDuration
	}
}

// WithThrottle sets the per-attempt delay step and its cap. A zero base
// disables throttling.
func (s *Service) WithThrottle(base, max time.Duration) {
	if base < 0 || max < 0 {
		return
	}
	s.throttleBase = base
	s.throttleMax = max
}

func (s *Service) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithSession makes successful logins set the given session flag.
func (s *Service) WithSession(session *Session) {
	s.session = session
}

func (s *Service) MaxAttempts() int {
	return s.maxAttempts
}

// Submit verifies password under the attempt policy. It returns nil on
// success, InvalidCredentialsError on a rejected password with attempts
// left, and LockedOutError when locked or when this failure hit the limit.
// Checker errors are returned wrapped and do not consume an attempt.
func (s *Service) Submit(ctx context.Context, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	failed, lockedUntil, err := s.load(ctx)
	if err != nil {
		return err
	}

	if !lockedUntil.IsZero() {
		if now.Before(lockedUntil) {
			return LockedOutError{Until: lockedUntil, Remaining: lockedUntil.Sub(now)}
		}
		if err := s.reset(ctx); err != nil {
			return err
		}
		failed = 0
	}

	if err := s.sleep(ctx, s.throttleDelay(failed)); err != nil {
		return err
	}

	ok, err := s.checker.Check(ctx, password)
	if err != nil {
		return fmt.Errorf("check password: %w", err)
	}

	if ok {
		if err := s.reset(ctx); err != nil {
			return err
		}
		if s.session != nil {
			s.session.Login()
		}
		return nil
	}

	failed++
	if err := s.store.Set(ctx, AttemptsKey, strconv.Itoa(failed)); err != nil {
		return fmt.Errorf("store failed attempts: %w", err)
	}

	if failed >= s.maxAttempts {
		until := now.Add(s.lockDuration)
		if err := s.store.Set(ctx, LockoutKey, strconv.FormatInt(until.UnixMilli(), 10)); err != nil {
			return fmt.Errorf("store lockout: %w", err)
		}
		return LockedOutError{Until: until, Remaining: s.lockDuration}
	}

	return InvalidCredentialsError{Remaining: s.maxAttempts - failed}
}

// Status reads attempt state, clearing an expired lockout first.
func (s *Service) Status(ctx context.Context) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	failed, lockedUntil, err := s.load(ctx)
	if err != nil {
		return Status{}, err
	}
	if !lockedUntil.IsZero() && !s.now().Before(lockedUntil) {
		if err := s.reset(ctx); err != nil {
			return Status{}, err
		}
		failed, lockedUntil = 0, time.Time{}
	}

	remaining := s.maxAttempts - failed
	if remaining < 0 || !lockedUntil.IsZero() {
		remaining = 0
	}
	return Status{FailedAttempts: failed, Remaining: remaining, LockedUntil: lockedUntil}, nil
}

func (s *Service) throttleDelay(failed int) time.Duration {
	if s.throttleBase <= 0 {
		return 0
	}
	delay := s.throttleBase * time.Duration(failed+1)
	if s.throttleMax > 0 && delay > s.throttleMax {
		delay = s.throttleMax
	}
	return delay
}

func (s *Service) load(ctx context.Context) (int, time.Time, error) {
	var failed int
	raw, ok, err := s.store.Get(ctx, AttemptsKey)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("load failed attempts: %w", err)
	}
	if ok {
		if n, convErr := strconv.Atoi(strings.TrimSpace(raw)); convErr == nil && n > 0 {
			failed = n
		}
	}

	var lockedUntil time.Time
	raw, ok, err = s.store.Get(ctx, LockoutKey)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("load lockout: %w", err)
	}
	if ok {
		if ms, convErr := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); convErr == nil && ms > 0 {
			lockedUntil = time.UnixMilli(ms).UTC()
		}
	}

	return failed, lockedUntil, nil
}

func (s *Service) reset(ctx context.Context) error {
	if err := s.store.Remove(ctx, AttemptsKey); err != nil {
		return fmt.Errorf("clear failed attempts: %w", err)
	}
	if err := s.store.Remove(ctx, LockoutKey); err != nil {
		return fmt.Errorf("clear lockout: %w", err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsLockedOut unwraps err into a LockedOutError.
func IsLockedOut(err error) (LockedOutError, bool) {
	var locked LockedOutError
	if errors.As(err, &locked) {
		return locked, true
	}
	return LockedOutError{}, false
}
