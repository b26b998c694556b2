package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/auth"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/repository"
	"storefront/internal/trace"
)

const (
	sessionCookie = "storefront_session"
	authCookie    = "auth_token"
	sessionKey    = "session"
)

type cookieConfig struct {
	secure        bool
	sessionMaxAge int
	authMaxAge    int
}

func newCookieConfig(h config.HTTPConfig, s config.SessionConfig) cookieConfig {
	return cookieConfig{
		secure:        h.CookieSecure,
		sessionMaxAge: int(s.TTL.Seconds()),
		authMaxAge:    s.AuthCookieDays * 24 * 60 * 60,
	}
}

// SessionFactory wires the per-browser components: the auth session, an API
// client that always sends its token, and the checkout orchestrator.
func SessionFactory(client *api.Client, notifier checkout.Notifier, log *zap.Logger) repository.Factory {
	log = logger.OrNop(log)
	return func(id string) *repository.Session {
		sess := auth.NewSession()
		bound := client.WithTokenSource(sess)
		return &repository.Session{
			ID:   id,
			Auth: sess,
			Checkout: checkout.New(checkout.Options{
				Orders:    bound,
				Directory: bound,
				Session:   sess,
				Notifier:  notifier,
				Logger:    log.With(zap.String("session_id", id)),
			}),
		}
	}
}

// withSession loads or creates the browser session and restores the login
// kept in the auth cookie
func (s *Server) withSession(c *gin.Context) {
	ctx := c.Request.Context()
	var sess *repository.Session
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		sess, err = s.sessions.Get(ctx, id)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.fail(c, err)
			return
		}
	}
	if sess == nil {
		created, err := s.sessions.Create(ctx)
		if err != nil {
			s.fail(c, err)
			return
		}
		sess = created
		s.setCookie(c, sessionCookie, sess.ID, s.cookies.sessionMaxAge, http.SameSiteLaxMode)
	}

	if token, err := c.Cookie(authCookie); err == nil && token != "" && sess.Auth.Token() == "" {
		err = s.sessions.WithSession(ctx, sess.ID, func(ctx context.Context, rs *repository.Session) error {
			rs.Auth.Adopt(token)
			_, err := s.auth.Refresh(ctx, rs.Auth)
			return err
		})
		if err != nil {
			s.log.Debug("stored login rejected", zap.Error(err), trace.Field(ctx))
			s.clearAuthCookie(c)
		}
	}

	c.Set(sessionKey, sess)
	c.Next()
}

func session(c *gin.Context) *repository.Session {
	return c.MustGet(sessionKey).(*repository.Session)
}

func (s *Server) requireLogin(c *gin.Context) {
	if !session(c).Auth.IsAuthenticated() {
		s.fail(c, checkout.ErrLoginRequired)
		return
	}
	c.Next()
}

func (s *Server) requireAdmin(c *gin.Context) {
	sess := session(c).Auth
	if !sess.IsAuthenticated() {
		s.fail(c, checkout.ErrLoginRequired)
		return
	}
	if !sess.IsAdmin() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required", "redirect": "/"})
		return
	}
	c.Next()
}

func (s *Server) setCookie(c *gin.Context, name, value string, maxAge int, site http.SameSite) {
	c.SetSameSite(site)
	c.SetCookie(name, value, maxAge, "/", "", s.cookies.secure, true)
}

func (s *Server) setAuthCookie(c *gin.Context, token string) {
	s.setCookie(c, authCookie, token, s.cookies.authMaxAge, http.SameSiteStrictMode)
}

func (s *Server) clearAuthCookie(c *gin.Context) {
	s.setCookie(c, authCookie, "", -1, http.SameSiteStrictMode)
}
