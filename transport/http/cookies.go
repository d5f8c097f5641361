package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ChallengeCookie carries the signed challenge state between the challenge
// and verify requests.
const ChallengeCookie = "gk_challenge"

// setStateCookie writes a signed-state cookie scoped to the whole site.
// Cookies never outlive the state they carry, so maxAge tracks the TTL.
func setStateCookie(c *gin.Context, name, value string, ttl time.Duration, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearStateCookie expires a signed-state cookie immediately.
func clearStateCookie(c *gin.Context, name string, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
