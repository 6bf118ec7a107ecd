package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DigestChecker compares passwords against a bcrypt reference digest.
type DigestChecker struct {
	digest []byte
}

func NewDigestChecker(digest string) (*DigestChecker, error) {
	digest = strings.TrimSpace(digest)
	if _, err := bcrypt.Cost([]byte(digest)); err != nil {
		return nil, fmt.Errorf("parse password digest: %w", err)
	}
	return &DigestChecker{digest: []byte(digest)}, nil
}

func (c *DigestChecker) Check(_ context.Context, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(c.digest, []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("compare password: %w", err)
}

// HashPassword produces a digest for NewDigestChecker. A zero cost uses
// bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// RemoteChecker verifies passwords against a trusted server's /api/login.
// The auth cookie set by a successful login is kept in the client's jar.
type RemoteChecker struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

func NewRemoteChecker(baseURL string, timeout time.Duration) (*RemoteChecker, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("remote login url is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &RemoteChecker{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout, Jar: jar},
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Client returns the HTTP client carrying the login cookie.
func (c *RemoteChecker) Client() *http.Client {
	return c.client
}

type lockedResponse struct {
	RetryAfterMinutes int `json:"retryAfterMinutes"`
}

func (c *RemoteChecker) Check(ctx context.Context, password string) (bool, error) {
	payload, err := json.Marshal(loginRequest{Password: password})
	if err != nil {
		return false, fmt.Errorf("encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusUnauthorized:
		return false, nil
	case http.StatusTooManyRequests:
		return false, c.lockedError(resp)
	default:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxJSONBodyBytes))
		return false, fmt.Errorf("%w: unexpected status %d", ErrNetworkFailure, resp.StatusCode)
	}
}

func (c *RemoteChecker) lockedError(resp *http.Response) error {
	remaining := time.Duration(0)
	if secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && secs > 0 {
		remaining = time.Duration(secs) * time.Second
	}

	var body lockedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONBodyBytes)).Decode(&body); err == nil && remaining == 0 {
		remaining = time.Duration(body.RetryAfterMinutes) * time.Minute
	}

	return LockedOutError{Until: c.now().Add(remaining), Remaining: remaining}
}
