// Package utils holds the credential helpers: JWT issuing and parsing and
// bcrypt password hashing.
package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that are malformed, badly signed,
// expired or missing a usable subject.
var ErrInvalidToken = errors.New("invalid token")

// IssuedToken is a signed JWT together with its expiry.
type IssuedToken struct {
	Value string
	Exp   time.Time
}

// TokenProvider signs and verifies HS256 tokens whose subject is a member id.
type TokenProvider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenProvider returns a provider issuing tokens valid for ttl.
func NewTokenProvider(secret string, ttl time.Duration) *TokenProvider {
	return &TokenProvider{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// CreateToken issues a token for memberID with sub, iat and exp claims.
func (p *TokenProvider) CreateToken(memberID int64) (IssuedToken, error) {
	now := p.now().UTC()
	exp := now.Add(p.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(memberID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}
	return IssuedToken{Value: signed, Exp: exp}, nil
}

// ParseSubject verifies the token and returns the member id in its subject.
func (p *TokenProvider) ParseSubject(token string) (int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return p.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	return id, nil
}
