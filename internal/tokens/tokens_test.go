package tokens

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AditRobertho/eshop-backend/internal/config"
)

var testSecret = []byte("test-jwt-secret")

func newPair(t *testing.T, opts ...Option) (*Issuer, *Validator) {
	t.Helper()
	iss, err := NewIssuer(testSecret, time.Hour, opts...)
	require.NoError(t, err)
	val, err := NewValidator(testSecret, opts...)
	require.NoError(t, err)
	return iss, val
}

func TestNew_EmptySecret(t *testing.T) {
	t.Parallel()

	_, err := NewIssuer(nil, time.Hour)
	assert.ErrorIs(t, err, config.ErrConfig)

	_, err = NewValidator([]byte{})
	assert.ErrorIs(t, err, config.ErrConfig)
}

func TestNewIssuer_DefaultTTL(t *testing.T) {
	iss, err := NewIssuer(testSecret, 0)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, iss.TTL())
}

func TestIssueValidate_RoundTrip(t *testing.T) {
	t.Parallel()
	iss, val := newPair(t)

	tests := []struct {
		name    string
		isAdmin bool
		role    Role
	}{
		{"regular user", false, RoleUser},
		{"admin", true, RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID := uuid.NewString()
			raw, exp, err := iss.Issue(userID, tt.isAdmin)
			require.NoError(t, err)
			require.NotEmpty(t, raw)
			assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 2*time.Second)

			claims, err := val.Validate(context.Background(), raw)
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
			assert.Equal(t, userID, claims.Subject)
			assert.Equal(t, tt.isAdmin, claims.IsAdmin)
			assert.Equal(t, tt.role, claims.Role())
			assert.NotEmpty(t, claims.ID)
			require.NotNil(t, claims.ExpiresAt)
			assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
		})
	}
}

func TestIssue_EmptyUserID(t *testing.T) {
	iss, _ := newPair(t)
	_, _, err := iss.Issue("", false)
	require.Error(t, err)
}

func TestValidate_Expired(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	iss, err := NewIssuer(testSecret, time.Hour, WithClock(func() time.Time { return issuedAt }))
	require.NoError(t, err)

	raw, _, err := iss.Issue(uuid.NewString(), true)
	require.NoError(t, err)

	stillValid, err := NewValidator(testSecret, WithClock(func() time.Time { return issuedAt.Add(59 * time.Minute) }))
	require.NoError(t, err)
	_, err = stillValid.Validate(context.Background(), raw)
	require.NoError(t, err)

	later, err := NewValidator(testSecret, WithClock(func() time.Time { return issuedAt.Add(2 * time.Hour) }))
	require.NoError(t, err)
	claims, err := later.Validate(context.Background(), raw)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_WrongSecret(t *testing.T) {
	t.Parallel()
	iss, _ := newPair(t)
	raw, _, err := iss.Issue(uuid.NewString(), false)
	require.NoError(t, err)

	other, err := NewValidator([]byte("another-secret"))
	require.NoError(t, err)
	_, err = other.Validate(context.Background(), raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_FlippedSignatureBit(t *testing.T) {
	t.Parallel()
	iss, val := newPair(t)
	raw, _, err := iss.Issue(uuid.NewString(), false)
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)
	sig[0] ^= 0x01
	parts[2] = base64.RawURLEncoding.EncodeToString(sig)

	_, err = val.Validate(context.Background(), strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_ForgedAdminPayload(t *testing.T) {
	t.Parallel()
	iss, val := newPair(t)
	raw, _, err := iss.Issue(uuid.NewString(), false)
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(payload, &body))
	body["isAdmin"] = true
	forged, err := json.Marshal(body)
	require.NoError(t, err)
	parts[1] = base64.RawURLEncoding.EncodeToString(forged)

	_, err = val.Validate(context.Background(), strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()
	_, val := newPair(t)

	claims := Claims{
		UserID:  uuid.NewString(),
		IsAdmin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = val.Validate(context.Background(), none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)
	_, err = val.Validate(context.Background(), hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_MissingExpiry(t *testing.T) {
	t.Parallel()
	_, val := newPair(t)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u1"}).SignedString(testSecret)
	require.NoError(t, err)

	_, err = val.Validate(context.Background(), raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Garbage(t *testing.T) {
	t.Parallel()
	_, val := newPair(t)

	for _, raw := range []string{"", "not-a-jwt", "a.b.c", "Bearer x.y.z"} {
		claims, err := val.Validate(context.Background(), raw)
		assert.Nil(t, claims, raw)
		assert.ErrorIs(t, err, ErrInvalidToken, raw)
	}
}
