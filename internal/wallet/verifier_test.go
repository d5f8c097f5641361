package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeypair(t *testing.T) (string, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return base58.Encode(pub), priv
}

func TestVerify_ValidSignature(t *testing.T) {
	addr, priv := newKeypair(t)
	message := "academy.superteam.fun wants you to sign in with your Solana account."

	sig := ed25519.Sign(priv, []byte(message))
	assert.True(t, Verify(addr, message, base58.Encode(sig)))
}

func TestVerify_WrongMessage(t *testing.T) {
	addr, priv := newKeypair(t)
	sig := ed25519.Sign(priv, []byte("original message"))

	assert.False(t, Verify(addr, "tampered message", base58.Encode(sig)))
}

func TestVerify_WrongSigner(t *testing.T) {
	addr, _ := newKeypair(t)
	_, otherPriv := newKeypair(t)
	message := "sign me"

	sig := ed25519.Sign(otherPriv, []byte(message))
	assert.False(t, Verify(addr, message, base58.Encode(sig)))
}

func TestVerify_MalformedInputsReturnFalse(t *testing.T) {
	addr, priv := newKeypair(t)
	sig := base58.Encode(ed25519.Sign(priv, []byte("msg")))

	// Not valid base58.
	assert.False(t, Verify("0OIl-not-base58", "msg", sig))
	assert.False(t, Verify(addr, "msg", "0OIl-not-base58"))

	// Valid base58, wrong lengths.
	shortKey := base58.Encode(make([]byte, 16))
	assert.False(t, Verify(shortKey, "msg", sig))

	shortSig := base58.Encode(make([]byte, 32))
	assert.False(t, Verify(addr, "msg", shortSig))

	// Correct length but garbage signature.
	garbage := base58.Encode(make([]byte, ed25519.SignatureSize))
	assert.False(t, Verify(addr, "msg", garbage))
}

func TestValidAddress(t *testing.T) {
	addr, _ := newKeypair(t)
	assert.True(t, ValidAddress(addr))
	assert.False(t, ValidAddress(""))
	assert.False(t, ValidAddress("not-base58-0OIl"))
	assert.False(t, ValidAddress(base58.Encode(make([]byte, 20))))
}
