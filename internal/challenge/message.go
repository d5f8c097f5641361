// Package challenge renders and parses the canonical sign-in message a
// wallet is asked to sign. The format is fixed: the verify step re-extracts
// the wallet and nonce from the message by line prefix and cross-checks them
// against the server's signed cookie state, so the cookie and the signed
// text must agree before a signature counts.
package challenge

import (
	"fmt"
	"strings"
	"time"

	"github.com/onchain-academy/gatekeeper/core"
)

const (
	walletPrefix   = "Wallet: "
	noncePrefix    = "Nonce: "
	issuedAtPrefix = "Issued At: "

	// DefaultCallbackURL replaces callback paths that do not start with "/",
	// which blocks open-redirect style values smuggled through the flow.
	DefaultCallbackURL = "/dashboard"
)

var intentLines = map[core.Intent]string{
	core.IntentSignIn: "Sign this message to log in. This request will not trigger a blockchain transaction or cost any fees.",
	core.IntentLink:   "Sign this message to link this wallet to your account. This request will not trigger a blockchain transaction or cost any fees.",
}

// SafeCallbackURL returns the callback path if it is a site-relative path,
// otherwise the default.
func SafeCallbackURL(raw string) string {
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return raw
	}
	return DefaultCallbackURL
}

// Build renders the canonical message for a challenge. It is pure: identical
// input, including the timestamp, yields an identical message.
func Build(domain string, c core.Challenge) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s wants you to sign in with your Solana account.\n", domain)
	b.WriteString(intentLines[c.Intent])
	b.WriteString("\n\n")
	b.WriteString(walletPrefix)
	b.WriteString(c.Wallet)
	b.WriteByte('\n')
	b.WriteString(noncePrefix)
	b.WriteString(c.Nonce)
	b.WriteByte('\n')
	b.WriteString(issuedAtPrefix)
	b.WriteString(c.IssuedAt.UTC().Format(time.RFC3339))
	return b.String()
}

// Parse extracts the wallet address and nonce from a rendered message.
// Missing fields come back empty; callers treat empty as a mismatch.
func Parse(message string) (walletAddr, nonce string) {
	for _, line := range strings.Split(message, "\n") {
		switch {
		case strings.HasPrefix(line, walletPrefix):
			walletAddr = strings.TrimPrefix(line, walletPrefix)
		case strings.HasPrefix(line, noncePrefix):
			nonce = strings.TrimPrefix(line, noncePrefix)
		}
	}
	return walletAddr, nonce
}
