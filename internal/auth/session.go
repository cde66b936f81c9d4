package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var ErrNoSession = errors.New("no session")

// Sessions ties the signed cookie to rows in the sessions table.
type Sessions struct {
	Repo       *Repo
	Tokens     TokenService
	CookieName string
	Secure     bool
}

func NewSessions(repo *Repo, tokens TokenService, cookieName string, secure bool) *Sessions {
	if cookieName == "" {
		cookieName = "session"
	}
	return &Sessions{Repo: repo, Tokens: tokens, CookieName: cookieName, Secure: secure}
}

// Start creates a session for u and sets the cookie.
func (s *Sessions) Start(c *gin.Context, u *User) (*Session, error) {
	now := time.Now().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Username:  u.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.Tokens.Duration),
	}
	if err := s.Repo.CreateSession(c.Request.Context(), sess); err != nil {
		return nil, err
	}

	token, err := s.Tokens.Sign(&sess)
	if err != nil {
		return nil, err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.CookieName, token, int(s.Tokens.Duration.Seconds()), "/", "", s.Secure, true)
	return &sess, nil
}

// Current returns the session named by the request cookie. Missing, forged,
// deleted or expired sessions all yield ErrNoSession.
func (s *Sessions) Current(c *gin.Context) (*Session, error) {
	raw, err := c.Cookie(s.CookieName)
	if err != nil || raw == "" {
		return nil, ErrNoSession
	}

	claims, err := s.Tokens.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	sess, err := s.Repo.GetSession(c.Request.Context(), claims.ID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = s.Repo.DeleteSession(c.Request.Context(), sess.ID)
		return nil, ErrNoSession
	}
	return sess, nil
}

// End deletes the session row (if the cookie names one) and clears the cookie.
func (s *Sessions) End(c *gin.Context) error {
	defer c.SetCookie(s.CookieName, "", -1, "/", "", s.Secure, true)

	raw, err := c.Cookie(s.CookieName)
	if err != nil || raw == "" {
		return nil
	}
	claims, err := s.Tokens.Parse(raw)
	if err != nil {
		return nil
	}
	return s.Repo.DeleteSession(c.Request.Context(), claims.ID)
}
