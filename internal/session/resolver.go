package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Resolver derives a session identity from the request cookie, minting a
// fresh identifier when none is present. Tokens are opaque: an unknown token
// simply maps to whatever history that id happens to have, including none.
type Resolver struct {
	cookieName string
	ttl        time.Duration
}

// NewResolver builds a resolver with the given cookie lifetime.
func NewResolver(ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Resolver{cookieName: "session_id", ttl: ttl}
}

// Resolve returns the session id for the request and whether it came from an
// inbound cookie.
func (r *Resolver) Resolve(c *gin.Context) (string, bool, error) {
	if cookie, err := c.Request.Cookie(r.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true, nil
	}
	id, err := newSessionID()
	if err != nil {
		return "", false, err
	}
	return id, false, nil
}

// Issue sets the session cookie on the response. Callers only invoke this
// when the inbound request carried no token (refresh-on-absence).
func (r *Resolver) Issue(c *gin.Context, sessionID string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     r.cookieName,
		Value:    sessionID,
		MaxAge:   int(r.ttl.Seconds()),
		Path:     "/",
		Secure:   gin.Mode() == gin.ReleaseMode,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func newSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
