package challenge

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/onchain-academy/gatekeeper/core"
)

func sampleChallenge() core.Challenge {
	issued := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	return core.Challenge{
		Wallet:    "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		Nonce:     "4fYNw3dojWGa4dEXE8s4sm3x",
		Intent:    core.IntentSignIn,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(5 * time.Minute),
	}
}

func TestBuild_Deterministic(t *testing.T) {
	c := sampleChallenge()
	assert.Equal(t, Build("academy.superteam.fun", c), Build("academy.superteam.fun", c))
}

func TestBuild_ContainsFixedPositionFields(t *testing.T) {
	c := sampleChallenge()
	msg := Build("academy.superteam.fun", c)

	assert.True(t, strings.HasPrefix(msg, "academy.superteam.fun wants you to sign in"))
	assert.Contains(t, msg, "Wallet: "+c.Wallet)
	assert.Contains(t, msg, "Nonce: "+c.Nonce)
	assert.Contains(t, msg, "Issued At: 2025-06-01T12:30:00Z")
}

func TestParse_RoundTrip(t *testing.T) {
	c := sampleChallenge()
	msg := Build("academy.superteam.fun", c)

	wallet, nonce := Parse(msg)
	assert.Equal(t, c.Wallet, wallet)
	assert.Equal(t, c.Nonce, nonce)
}

func TestParse_MissingFields(t *testing.T) {
	wallet, nonce := Parse("some unrelated text\nwith no fields")
	assert.Empty(t, wallet)
	assert.Empty(t, nonce)
}

func TestSafeCallbackURL(t *testing.T) {
	assert.Equal(t, "/courses/intro", SafeCallbackURL("/courses/intro"))
	assert.Equal(t, DefaultCallbackURL, SafeCallbackURL("https://evil.example"))
	assert.Equal(t, DefaultCallbackURL, SafeCallbackURL("//evil.example"))
	assert.Equal(t, DefaultCallbackURL, SafeCallbackURL(""))
}
