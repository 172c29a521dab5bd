package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"microhub/internal/apperr"
)

const (
	msgInvalidToken = "Invalid or expired token"
	msgVerifyFailed = "Token verification failed"
	msgAuthFailed   = "Authentication failed"
)

// Verifier turns a raw bearer token into an Identity.
// Every failure is an *apperr.Error of KindUnauthorized.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// LocalVerifier checks the signature and expiry in-process.
type LocalVerifier struct {
	m   *Manager
	now func() time.Time
}

func NewLocalVerifier(m *Manager) *LocalVerifier {
	return &LocalVerifier{m: m, now: time.Now}
}

func (v *LocalVerifier) Verify(_ context.Context, token string) (Identity, error) {
	claims, err := v.m.Verify(token, v.now())
	if err != nil {
		return Identity{}, apperr.Unauthorized(msgInvalidToken)
	}
	return claims.Identity(), nil
}

// RemoteVerifier delegates to the identity authority's verify endpoint.
type RemoteVerifier struct {
	httpClient *http.Client
	endpoint   string
}

// NewRemoteVerifier targets {usersBaseURL}/users/verify.
func NewRemoteVerifier(httpClient *http.Client, usersBaseURL string) *RemoteVerifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RemoteVerifier{
		httpClient: httpClient,
		endpoint:   strings.TrimRight(usersBaseURL, "/") + "/users/verify",
	}
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Valid bool      `json:"valid"`
	User  *Identity `json:"user,omitempty"`
	Error string    `json:"error,omitempty"`
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	body, err := json.Marshal(verifyRequest{Token: token})
	if err != nil {
		return Identity{}, apperr.Unauthorized(msgAuthFailed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(body))
	if err != nil {
		return Identity{}, apperr.Unauthorized(msgAuthFailed)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return Identity{}, apperr.Unauthorized(msgAuthFailed)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return Identity{}, apperr.Unauthorized(msgAuthFailed)
	}

	var out verifyResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Identity{}, apperr.Unauthorized(msgAuthFailed)
	}
	if resp.StatusCode != http.StatusOK || !out.Valid || out.User == nil || out.User.ID == 0 {
		if out.Error != "" {
			return Identity{}, apperr.Unauthorized(out.Error)
		}
		return Identity{}, apperr.Unauthorized(msgVerifyFailed)
	}
	return *out.User, nil
}

// NewVerifier picks the backend for mode ("local" or "remote").
func NewVerifier(mode string, m *Manager, httpClient *http.Client, usersBaseURL string) (Verifier, error) {
	switch mode {
	case "local":
		if m == nil {
			return nil, fmt.Errorf("local verifier needs a token manager")
		}
		return NewLocalVerifier(m), nil
	case "remote":
		if usersBaseURL == "" {
			return nil, fmt.Errorf("remote verifier needs the users service url")
		}
		return NewRemoteVerifier(httpClient, usersBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown verifier mode %q", mode)
	}
}
