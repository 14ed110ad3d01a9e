package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mrsingh-rishi/vidscribe/session"
)

// sessionMiddleware resolves the caller's session from its cookie. A
// missing or invalid token starts a new session and sets a fresh cookie.
func (s *Server) sessionMiddleware(c *fiber.Ctx) error {
	if tok := c.Cookies(session.CookieName); tok != "" {
		if id, err := s.identity.Verify(tok); err == nil {
			if st, ok := s.sessions.Get(id); ok {
				c.Locals(localSession, st)
				return c.Next()
			}
		}
	}

	st := s.sessions.Create()
	tok, err := s.identity.Issue(st.ID, s.now())
	if err != nil {
		s.logger.Printf("❌ session token error: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not start session")
	}
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    tok,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals(localSession, st)
	return c.Next()
}

func currentSession(c *fiber.Ctx) *session.State {
	st, _ := c.Locals(localSession).(*session.State)
	return st
}
