package signedstate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	UserID    string    `json:"userId"`
	Provider  string    `json:"provider"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (p testPayload) Expiry() time.Time { return p.ExpiresAt }

var secret = []byte("0123456789abcdef0123456789abcdef")

func TestRoundTrip(t *testing.T) {
	codec := New[testPayload](secret)
	payload := testPayload{
		UserID:    "user-42",
		Provider:  "google",
		ExpiresAt: time.Now().Add(10 * time.Minute).UTC().Truncate(time.Second),
	}

	value, err := codec.Sign(payload)
	require.NoError(t, err)

	got, ok := codec.Verify(value)
	require.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestVerify_TamperedByte(t *testing.T) {
	codec := New[testPayload](secret)
	value, err := codec.Sign(testPayload{UserID: "user-42", Provider: "github"})
	require.NoError(t, err)

	// Flip a single byte anywhere in the value.
	for _, i := range []int{0, len(value) / 2, len(value) - 1} {
		mutated := []byte(value)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}
		_, ok := codec.Verify(string(mutated))
		assert.False(t, ok, "mutation at index %d must fail verification", i)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	value, err := New[testPayload](secret).Sign(testPayload{UserID: "user-42"})
	require.NoError(t, err)

	_, ok := New[testPayload]([]byte("another-secret-another-secret-ab")).Verify(value)
	assert.False(t, ok)
}

func TestVerify_Expired(t *testing.T) {
	now := time.Now()
	codec := NewWithClock[testPayload](secret, func() time.Time { return now })

	value, err := codec.Sign(testPayload{UserID: "user-42", ExpiresAt: now.Add(time.Minute)})
	require.NoError(t, err)

	_, ok := codec.Verify(value)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = codec.Verify(value)
	assert.False(t, ok)
}

func TestVerify_Malformed(t *testing.T) {
	codec := New[testPayload](secret)

	for _, value := range []string{"", "no-dot", "a.b.c.d", "!!!.###", strings.Repeat(".", 5)} {
		_, ok := codec.Verify(value)
		assert.False(t, ok, "value %q must fail verification", value)
	}
}
