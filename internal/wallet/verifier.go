// Package wallet verifies detached ed25519 signatures produced by Solana
// wallets. A Solana address is the base58 encoding of the 32-byte ed25519
// public key, and wallet adapters emit 64-byte detached signatures over the
// raw UTF-8 bytes of the message.
package wallet

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// ValidAddress reports whether addr is a well-formed Solana address:
// base58 text decoding to exactly 32 bytes.
func ValidAddress(addr string) bool {
	raw, err := base58.Decode(addr)
	return err == nil && len(raw) == ed25519.PublicKeySize
}

// Verify checks a detached signature over message for the wallet at addr.
// The signature is expected in base58 wire encoding. Every decoding failure
// (malformed address, malformed signature, wrong length) yields false; this
// function never panics and never returns an error to branch on.
func Verify(addr, message, signature string) bool {
	pub, err := base58.Decode(addr)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}

	sig, err := base58.Decode(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	return ed25519.Verify(ed25519.PublicKey(pub), []byte(message), sig)
}
