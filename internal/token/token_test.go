package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable clock shared by issuing and decoding codecs.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func newTestCodec(secret string, clock *fakeClock) *Codec {
	return NewCodec([]byte(secret), WithClock(clock.Now))
}

func TestIssueDecode_RoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec("test-secret", clock)

	payloads := []Payload{
		{UserID: "42"},
		{UserID: "5f0c6a8e-6c1e-4b7e-9f3a-2d1a2b3c4d5e"},
		{UserID: "user with spaces and ção"},
		{UserID: ""},
	}

	for _, p := range payloads {
		t.Run(p.UserID, func(t *testing.T) {
			raw, err := codec.Issue(p)
			require.NoError(t, err)

			claims, err := codec.Decode(raw)
			require.NoError(t, err)
			assert.Equal(t, p, claims.Payload())
		})
	}
}

func TestIssue_SetsIssuedAtAndExpiry(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: issuedAt}
	codec := newTestCodec("test-secret", clock)

	raw, err := codec.Issue(Payload{UserID: "42"})
	require.NoError(t, err)

	claims, err := codec.Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, issuedAt.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, issuedAt.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestIssue_Deterministic(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec("test-secret", clock)

	a, err := codec.Issue(Payload{UserID: "42"})
	require.NoError(t, err)
	b, err := codec.Issue(Payload{UserID: "42"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestDecode_ExpiryWindow(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		valid   bool
	}{
		{"immediately", 0, true},
		{"one hour later", time.Hour, true},
		{"23h59m later", 23*time.Hour + 59*time.Minute, true},
		{"24h01m later", 24*time.Hour + time.Minute, false},
		{"one week later", 7 * 24 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: issuedAt}
			codec := newTestCodec("test-secret", clock)

			raw, err := codec.Issue(Payload{UserID: "42"})
			require.NoError(t, err)

			clock.now = issuedAt.Add(tt.elapsed)
			claims, err := codec.Decode(raw)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, "42", claims.UserID)
			} else {
				assert.ErrorIs(t, err, ErrInvalidToken)
				assert.Nil(t, claims)
			}
		})
	}
}

func TestDecode_DifferentSecret(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	issuer := newTestCodec("secret-a", clock)
	verifier := newTestCodec("secret-b", clock)

	for _, id := range []string{"1", "42", "abc"} {
		raw, err := issuer.Issue(Payload{UserID: id})
		require.NoError(t, err)

		assert.NotPanics(t, func() {
			claims, err := verifier.Decode(raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestDecode_Garbage(t *testing.T) {
	codec := NewCodec([]byte("test-secret"))

	inputs := []string{
		"",
		"not-a-token",
		"a.b.c",
		"eyJhbGciOiJIUzI1NiJ9..",
		strings.Repeat("x", 4096),
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			_, err := codec.Decode(in)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestDecode_RejectsTamperedPayload(t *testing.T) {
	codec := NewCodec([]byte("test-secret"))

	raw, err := codec.Issue(Payload{UserID: "42"})
	require.NoError(t, err)

	forged, err := NewCodec([]byte("other")).Issue(Payload{UserID: "1"})
	require.NoError(t, err)

	// Splice the forged body onto the original signature.
	parts := strings.Split(raw, ".")
	forgedParts := strings.Split(forged, ".")
	spliced := parts[0] + "." + forgedParts[1] + "." + parts[2]

	_, err = codec.Decode(spliced)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecode_RejectsNoneAlgorithm(t *testing.T) {
	codec := NewCodec([]byte("test-secret"))

	claims := Claims{
		UserID: "42",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Decode(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecode_RequiresExpiry(t *testing.T) {
	secret := []byte("test-secret")
	codec := NewCodec(secret)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "42"}).SignedString(secret)
	require.NoError(t, err)

	_, err = codec.Decode(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWithTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, NewCodec(nil).TTL())
	assert.Equal(t, time.Hour, NewCodec(nil, WithTTL(time.Hour)).TTL())
	assert.Equal(t, DefaultTTL, NewCodec(nil, WithTTL(0)).TTL())
}
