package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(Config{SecretKey: "", Duration: time.Hour})
	assert.ErrorIs(t, err, ErrEmptySecretKey)

	_, err = NewService(Config{SecretKey: "secret", Duration: 0})
	assert.ErrorIs(t, err, ErrInvalidDuration)

	s, err := NewService(Config{SecretKey: "secret", Duration: time.Hour})
	assert.NoError(t, err)
	assert.NotNil(t, s)
}

func TestService_GenerateAndValidate(t *testing.T) {
	s, err := NewService(Config{SecretKey: "secret", Duration: time.Hour})
	assert.NoError(t, err)

	tok, err := s.GenerateToken("u-42", "admin")
	assert.NoError(t, err)

	claims, err := s.ValidateToken(tok)
	assert.NoError(t, err)
	if assert.NotNil(t, claims) {
		assert.Equal(t, "u-42", claims.UserID)
		assert.Equal(t, "u-42", claims.Subject)
		assert.Equal(t, "admin", claims.Role)
		assert.Equal(t, "u-42", claims.EffectiveUserID())
	}
}

func TestService_Expired(t *testing.T) {
	s, err := NewService(Config{SecretKey: "secret", Duration: time.Nanosecond})
	assert.NoError(t, err)

	tok, err := s.GenerateToken("u-1", "customer")
	assert.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	claims, err := s.ValidateToken(tok)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestService_InvalidToken(t *testing.T) {
	s, err := NewService(Config{SecretKey: "secret", Duration: time.Hour})
	assert.NoError(t, err)

	claims, err := s.ValidateToken("not-a-token")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_WrongSecret(t *testing.T) {
	signer, err := NewService(Config{SecretKey: "secret-a", Duration: time.Hour})
	assert.NoError(t, err)
	verifier, err := NewService(Config{SecretKey: "secret-b", Duration: time.Hour})
	assert.NoError(t, err)

	tok, err := signer.GenerateToken("u-1", "customer")
	assert.NoError(t, err)

	claims, err := verifier.ValidateToken(tok)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_RejectsNonHMAC(t *testing.T) {
	s, err := NewService(Config{SecretKey: "secret", Duration: time.Hour})
	assert.NoError(t, err)

	// alg=none tokens must never validate
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u-1"})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	claims, err := s.ValidateToken(tok)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_EffectiveUserID(t *testing.T) {
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-1"}}
	assert.Equal(t, "sub-1", c.EffectiveUserID())

	c.UserID = "u-1"
	assert.Equal(t, "u-1", c.EffectiveUserID())
}
