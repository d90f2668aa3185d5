package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DEFRA/assurance-frontend-sub000/internal/auth"
	"github.com/DEFRA/assurance-frontend-sub000/internal/session"
)

// Handler serves the three auth routes. All protocol failures end on the
// authentication error view, never on an unhandled 500.
type Handler struct {
	lifecycle  *auth.Lifecycle
	cookieOpts session.CookieOptions
	log        *slog.Logger
}

func NewHandler(lifecycle *auth.Lifecycle, cookieOpts session.CookieOptions, log *slog.Logger) *Handler {
	return &Handler{
		lifecycle:  lifecycle,
		cookieOpts: cookieOpts,
		log:        log,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/auth/login", h.login)
	r.GET("/auth", h.callback)
	r.GET("/auth/logout", h.logout)
}

func (h *Handler) login(c *gin.Context) {
	redirectTo := auth.ResolveRedirect(
		c.Query("redirectTo"),
		c.Request.Referer(),
		c.Request.URL.Path,
	)

	id, authURL, ttl, err := h.lifecycle.StartLogin(c.Request.Context(), redirectTo)
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "failed to start login", "error", err)
		h.renderError(c, http.StatusServiceUnavailable,
			"Sign in is unavailable at the moment. Please try again shortly.")
		return
	}

	session.QueueCookie(c, id, ttl)
	c.Redirect(http.StatusFound, authURL)
}

func (h *Handler) callback(c *gin.Context) {
	ctx := c.Request.Context()

	// The provider reports user-facing flow failures (cancelled consent,
	// expired login page) as an error parameter rather than a code.
	if errParam := c.Query("error"); errParam != "" {
		h.log.WarnContext(ctx, "identity provider returned error",
			"error", errParam,
			"description", c.Query("error_description"),
		)
		h.renderError(c, http.StatusUnauthorized,
			"Sign in was not completed. Please try again.")
		return
	}

	id := session.FromRequest(c.Request)

	redirectTo, err := h.lifecycle.HandleCallback(ctx, id, c.Query("state"), c.Query("code"))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrStateMissing),
			errors.Is(err, auth.ErrStateMismatch),
			errors.Is(err, auth.ErrCodeMissing),
			errors.Is(err, auth.ErrLoginNotFound):
			h.log.WarnContext(ctx, "login callback rejected", "error", err)
			h.renderError(c, http.StatusUnauthorized,
				"We could not verify your sign in. Please try again.")
		default:
			h.log.ErrorContext(ctx, "login callback failed", "error", err)
			h.renderError(c, http.StatusBadGateway,
				"Something went wrong while signing you in. Please try again.")
		}
		return
	}

	// Re-assert the cookie under the same id with the full session TTL.
	session.QueueCookie(c, id, h.lifecycle.SessionTTL())
	c.Redirect(http.StatusFound, redirectTo)
}

func (h *Handler) logout(c *gin.Context) {
	redirect := h.lifecycle.Logout(c.Request.Context(), session.FromRequest(c.Request))

	session.ClearCookie(c.Writer, h.cookieOpts)
	c.Redirect(http.StatusFound, redirect)
}
