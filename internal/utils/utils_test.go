package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenProvider_RoundTrip(t *testing.T) {
	p := NewTokenProvider(testSecret, time.Hour)

	tok, err := p.CreateToken(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	id, err := p.ParseSubject(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestTokenProvider_SubjectClaim(t *testing.T) {
	p := NewTokenProvider(testSecret, time.Hour)
	tok, err := p.CreateToken(7)
	require.NoError(t, err)

	var claims jwt.RegisteredClaims
	_, _, err = jwt.NewParser().ParseUnverified(tok.Value, &claims)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.NotNil(t, claims.IssuedAt)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestTokenProvider_Expired(t *testing.T) {
	p := NewTokenProvider(testSecret, time.Minute)
	p.now = func() time.Time { return time.Now().Add(-time.Hour) }
	tok, err := p.CreateToken(1)
	require.NoError(t, err)

	p.now = time.Now
	_, err = p.ParseSubject(tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenProvider_WrongSecret(t *testing.T) {
	tok, err := NewTokenProvider(testSecret, time.Hour).CreateToken(1)
	require.NoError(t, err)

	_, err = NewTokenProvider("another-secret-value-123", time.Hour).ParseSubject(tok.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenProvider_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenProvider(testSecret, time.Hour).ParseSubject(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenProvider_Garbage(t *testing.T) {
	_, err := NewTokenProvider(testSecret, time.Hour).ParseSubject("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("password")
	require.NoError(t, err)
	assert.True(t, h.Verify(hash, "password"))
	assert.False(t, h.Verify(hash, "wrong"))

	_, err = h.Hash(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	h.Burn("anything")
}

func TestNewPasswordHasher_DefaultCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
}
