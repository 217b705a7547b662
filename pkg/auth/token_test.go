package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawscheduling/lawscheduling-backend/pkg/config"
)

var testCfg = config.JWTConfig{Secret: "secret", Issuer: "lawscheduling", ExpirationMinutes: 30}

func TestMintAndParseAccessToken(t *testing.T) {
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(testCfg, now, AccessTokenPayload{UserID: userID, Email: "owner@acme.test", JTI: "jti-1"})
	require.NoError(t, err)

	claims, err := ParseAccessToken(testCfg, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "owner@acme.test", claims.Email)
	assert.Equal(t, "jti-1", claims.ID)
	assert.Equal(t, "lawscheduling", claims.Issuer)
	assert.WithinDuration(t, now.Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestMintAccessTokenGeneratesJTI(t *testing.T) {
	token, err := MintAccessToken(testCfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), JTI: "  "})
	require.NoError(t, err)
	claims, err := ParseAccessToken(testCfg, token)
	require.NoError(t, err)
	_, err = uuid.Parse(claims.ID)
	assert.NoError(t, err, "jti should be a generated uuid")
}

func TestMintAccessTokenValidation(t *testing.T) {
	_, err := MintAccessToken(testCfg, time.Now(), AccessTokenPayload{})
	assert.ErrorIs(t, err, ErrMissingSubject)

	noSecret := testCfg
	noSecret.Secret = ""
	_, err = MintAccessToken(noSecret, time.Now(), AccessTokenPayload{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrMisconfigured)

	noTTL := testCfg
	noTTL.ExpirationMinutes = 0
	_, err = MintAccessToken(noTTL, time.Now(), AccessTokenPayload{UserID: uuid.New()})
	assert.Error(t, err)
}

func TestParseAccessTokenRejectsForgeries(t *testing.T) {
	token, err := MintAccessToken(testCfg, time.Now(), AccessTokenPayload{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = ParseAccessToken(testCfg, token+"x")
	assert.Error(t, err, "tampered signature")

	otherSecret := testCfg
	otherSecret.Secret = "other"
	_, err = ParseAccessToken(otherSecret, token)
	assert.Error(t, err, "different secret")

	otherIssuer := testCfg
	otherIssuer.Issuer = "someone-else"
	_, err = ParseAccessToken(otherIssuer, token)
	assert.Error(t, err, "different issuer")
	_, err = ParseAccessTokenAllowExpired(otherIssuer, token)
	assert.Error(t, err, "issuer is checked even when expiry is not")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Issuer: testCfg.Issuer, Subject: uuid.NewString()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseAccessToken(testCfg, unsigned)
	assert.Error(t, err, "alg none")
}

func TestParseAccessTokenRequiresPrincipalSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Issuer:    testCfg.Issuer,
		Subject:   "not-a-uuid",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testCfg.Secret))
	require.NoError(t, err)

	_, err = ParseAccessToken(testCfg, token)
	assert.True(t, errors.Is(err, ErrMissingSubject), "got %v", err)
}

func TestParseAccessTokenExpired(t *testing.T) {
	token, err := MintAccessToken(testCfg, time.Now().Add(-time.Hour), AccessTokenPayload{UserID: uuid.New(), JTI: "old"})
	require.NoError(t, err)

	_, err = ParseAccessToken(testCfg, token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	claims, err := ParseAccessTokenAllowExpired(testCfg, token)
	require.NoError(t, err)
	assert.Equal(t, "old", claims.ID)
}

func TestParseAccessTokenToleratesSkew(t *testing.T) {
	token, err := MintAccessToken(
		config.JWTConfig{Secret: testCfg.Secret, Issuer: testCfg.Issuer, ExpirationMinutes: 1},
		time.Now().Add(-70*time.Second),
		AccessTokenPayload{UserID: uuid.New()},
	)
	require.NoError(t, err)
	_, err = ParseAccessToken(testCfg, token)
	assert.NoError(t, err, "ten seconds past expiry is within the skew allowance")
}
