// Package session carries the per-browser login state through request contexts and
// persists it in a signed cookie.
package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the name of the session cookie.
const CookieName = "studybuddy_session"

// Session is the state that gates which page renders. The zero value is the
// anonymous visitor on the landing page.
type Session struct {
	Username  string
	LoggedIn  bool
	ShowLogin bool
}

// Anonymous reports whether nobody is logged in.
func (s Session) Anonymous() bool { return !s.LoggedIn }

// LoggedInAs returns the session of an authenticated user.
func LoggedInAs(username string) Session {
	return Session{Username: username, LoggedIn: true}
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by WithSession, or the anonymous session.
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(ctxKey{}).(Session)
	return s
}

// ErrInvalid is returned for cookies that fail signature, expiry or shape checks.
var ErrInvalid = errors.New("invalid session")

type claims struct {
	LoggedIn  bool `json:"li,omitempty"`
	ShowLogin bool `json:"sl,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs sessions as HS256 JWTs and moves them in and out of cookies.
type Codec struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewCodec returns a codec signing with secret. A zero ttl issues browser-session cookies
// without an expiry claim.
func NewCodec(secret []byte, ttl time.Duration, secure bool) *Codec {
	return &Codec{secret: secret, ttl: ttl, secure: secure, now: time.Now}
}

// RandomSecret returns 32 random bytes, used when no secret is configured.
func RandomSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	return b, nil
}

func (c *Codec) Encode(s Session) (string, error) {
	now := c.now()
	cl := claims{
		LoggedIn:  s.LoggedIn,
		ShowLogin: s.ShowLogin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  s.Username,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if c.ttl > 0 {
		cl.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
}

func (c *Codec) Decode(token string) (Session, error) {
	var cl claims
	parsed, err := jwt.ParseWithClaims(token, &cl, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil || !parsed.Valid {
		return Session{}, ErrInvalid
	}
	if cl.LoggedIn && cl.Subject == "" {
		return Session{}, ErrInvalid
	}
	return Session{Username: cl.Subject, LoggedIn: cl.LoggedIn, ShowLogin: cl.ShowLogin}, nil
}

// Read returns the session in the request cookie, or the anonymous session when the
// cookie is missing or invalid.
func (c *Codec) Read(r *http.Request) Session {
	ck, err := r.Cookie(CookieName)
	if err != nil {
		return Session{}
	}
	s, err := c.Decode(ck.Value)
	if err != nil {
		return Session{}
	}
	return s
}

// Write stores s in the response cookie. The anonymous session clears the cookie.
func (c *Codec) Write(w http.ResponseWriter, s Session) error {
	if s == (Session{}) {
		c.Clear(w)
		return nil
	}
	token, err := c.Encode(s)
	if err != nil {
		return err
	}
	ck := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if c.ttl > 0 {
		ck.MaxAge = int(c.ttl.Seconds())
	}
	http.SetCookie(w, ck)
	return nil
}

func (c *Codec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
