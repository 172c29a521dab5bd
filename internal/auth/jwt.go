package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ManagerConfig is the signing setup shared by the issuer and local verifiers.
type ManagerConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Manager signs and checks HS256 credentials.
type Manager struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
	}, nil
}

/* ===================== ISSUE ===================== */

// Issue mints a credential for id valid from now until now+TTL.
func (m *Manager) Issue(now time.Time, id Identity) (string, error) {
	if id.ID == 0 {
		return "", errors.New("subject id missing")
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Audience:  audienceOrNil(m.audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID:   id.ID,
		Username: id.Username,
		Email:    id.Email,
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

/* ===================== VERIFY ===================== */

// Verify checks signature and expiry as of now. Any failure is returned as an error;
// callers must not distinguish between the failure reasons towards clients.
func (m *Manager) Verify(tokenString string, now time.Time) (Claims, error) {
	var claims Claims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	_, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return Claims{}, err
	}
	if claims.UserID == 0 {
		return Claims{}, errors.New("subject id missing")
	}
	return claims, nil
}

func audienceOrNil(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
