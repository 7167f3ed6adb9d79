// Package visitor identifies anonymous visitors with a session cookie.
package visitor

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultCookieName names the session cookie.
const DefaultCookieName = "harkwise_session"

const cookieMaxAge = 24 * time.Hour

// Cookies issues and reads the visitor session cookie.
type Cookies struct {
	Name   string
	Secure bool
}

// NewCookies returns a cookie helper using DefaultCookieName.
func NewCookies(secure bool) Cookies {
	return Cookies{Name: DefaultCookieName, Secure: secure}
}

// ID returns the visitor's session id, issuing a new one on w when the
// request carries none or an unparsable one.
func (c Cookies) ID(w http.ResponseWriter, r *http.Request) string {
	if ck, err := r.Cookie(c.name()); err == nil {
		if id, err := uuid.Parse(ck.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    id,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (c Cookies) name() string {
	if c.Name == "" {
		return DefaultCookieName
	}
	return c.Name
}
