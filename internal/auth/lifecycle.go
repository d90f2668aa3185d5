package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/DEFRA/assurance-frontend-sub000/internal/analytics"
	"github.com/DEFRA/assurance-frontend-sub000/internal/auth/provider"
	"github.com/DEFRA/assurance-frontend-sub000/internal/session"
)

// RefreshThreshold is the window before access-token expiry during which
// a proactive refresh is attempted.
const RefreshThreshold = 5 * time.Minute

// idpTimeout bounds each identity-provider call so a slow upstream
// cannot stall request handling.
const idpTimeout = 10 * time.Second

// Config carries the lifecycle timings and the public base URL used for
// post-logout redirects.
type Config struct {
	SessionTTL time.Duration
	VisitorTTL time.Duration
	LoginTTL   time.Duration
	BaseURL    string
}

// Lifecycle orchestrates the three session phases (visitor, pending
// login, authenticated) over a single store key space. It is the only
// component that writes session records.
type Lifecycle struct {
	store session.Store
	idp   provider.IdentityProvider
	sink  analytics.Sink
	cfg   Config
	log   *slog.Logger

	// refreshGroup de-duplicates concurrent token refreshes per session
	// id: refresh tokens are single-use on rotating providers, so two
	// in-flight refreshes for one session would invalidate each other.
	refreshGroup singleflight.Group
}

// NewLifecycle wires the session engine.
func NewLifecycle(
	store session.Store,
	idp provider.IdentityProvider,
	sink analytics.Sink,
	cfg Config,
	log *slog.Logger,
) *Lifecycle {
	return &Lifecycle{
		store: store,
		idp:   idp,
		sink:  sink,
		cfg:   cfg,
		log:   log,
	}
}

// SessionTTL returns the authenticated session lifetime; the callback
// handler uses it to re-assert the cookie.
func (l *Lifecycle) SessionTTL() time.Duration {
	return l.cfg.SessionTTL
}

// StartLogin begins the authorization-code flow: it mints a fresh
// session id, stores the AuthPending record, and returns the id (for the
// cookie), the identity provider URL to redirect to, and the cookie TTL.
func (l *Lifecycle) StartLogin(ctx context.Context, redirectTo string) (id, authURL string, ttl time.Duration, err error) {
	state, err := session.GenerateID()
	if err != nil {
		return "", "", 0, err
	}

	verifier, challenge, err := newPKCE()
	if err != nil {
		return "", "", 0, fmt.Errorf("auth: pkce generation failed: %w", err)
	}

	id, err = session.GenerateID()
	if err != nil {
		return "", "", 0, err
	}

	rec := session.NewAuthPending(state, verifier, redirectTo, l.cfg.LoginTTL)
	if err := l.store.Set(ctx, id, rec, l.cfg.LoginTTL); err != nil {
		return "", "", 0, err
	}

	return id, l.idp.AuthCodeURL(state, challenge), l.cfg.LoginTTL, nil
}

// ResolveRedirect computes where the user lands after login: the
// explicit query parameter wins, then the Referer path, then the current
// path. Targets inside the auth flow itself, and anything that is not a
// local path, collapse to "/".
func ResolveRedirect(queryParam, referer, currentPath string) string {
	target := queryParam

	if target == "" && referer != "" {
		if u, err := url.Parse(referer); err == nil {
			target = u.Path
		}
	}

	if target == "" {
		target = currentPath
	}

	if target == "" || target[0] != '/' || isAuthPath(target) {
		return "/"
	}
	// Reject protocol-relative targets (open redirect).
	if len(target) > 1 && target[1] == '/' {
		return "/"
	}

	return target
}

// HandleCallback completes the flow: it validates the state nonce
// against the AuthPending record, exchanges the code, and promotes the
// record to Authenticated under the same key. The returned path is where
// the user is redirected on success.
func (l *Lifecycle) HandleCallback(ctx context.Context, id, state, code string) (redirectTo string, err error) {
	if state == "" {
		return "", ErrStateMissing
	}
	if id == "" {
		return "", ErrLoginNotFound
	}

	rec, err := l.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if rec == nil || rec.Kind != session.KindAuthPending {
		return "", ErrLoginNotFound
	}

	pending := rec.AuthPending
	if pending.State != state {
		return "", ErrStateMismatch
	}
	if code == "" {
		return "", ErrCodeMissing
	}

	exCtx, cancel := context.WithTimeout(ctx, idpTimeout)
	defer cancel()

	tokens, err := l.idp.Exchange(exCtx, code, pending.CodeVerifier)
	if err != nil {
		return "", err
	}

	authRec := session.NewAuthenticated(
		tokens.Profile,
		tokens.AccessToken,
		tokens.RefreshToken,
		tokens.Expiry,
		l.cfg.SessionTTL,
	)
	if err := l.store.Set(ctx, id, authRec, l.cfg.SessionTTL); err != nil {
		return "", err
	}

	l.log.InfoContext(ctx, "user authenticated",
		"session_id", id,
		"user_id", tokens.Profile.ID,
	)

	return pending.RedirectTo, nil
}

// Validate resolves the session cookie into an auth context for one
// request. It never fails the request: every store, provider, and sink
// failure degrades to "not authenticated".
func (l *Lifecycle) Validate(ctx context.Context, sessionID string, req RequestInfo) Result {
	if IsExcludedPath(req.Path) {
		return Result{}
	}
	if sessionID == "" {
		return Result{}
	}

	rec, err := l.store.Get(ctx, sessionID)
	if err != nil {
		l.log.WarnContext(ctx, "session lookup failed, treating as unauthenticated",
			"error", err,
		)
		return Result{}
	}
	if rec == nil {
		return Result{}
	}

	switch rec.Kind {
	case session.KindAuthPending:
		// Mid-login; no auth context yet.
		return Result{}

	case session.KindVisitor:
		l.touchVisitor(ctx, sessionID, rec, req)
		return Result{}

	case session.KindAuthenticated:
		now := time.Now()
		if rec.Expired(now) {
			if err := l.store.Drop(ctx, sessionID); err != nil {
				l.log.WarnContext(ctx, "failed to drop expired session", "error", err)
			}
			return Result{}
		}

		a := rec.Authenticated
		if a.RefreshToken != "" && time.Until(a.TokenExpiresAt) <= RefreshThreshold {
			return l.refresh(ctx, sessionID, rec)
		}

		return Result{IsValid: true, Credentials: credentialsFrom(sessionID, rec)}
	}

	l.log.WarnContext(ctx, "unknown session record kind", "kind", rec.Kind)
	return Result{}
}

// EnsureVisitor creates an anonymous tracking record when a request
// arrives without a session cookie. It returns the minted id and cookie
// TTL, or ("", 0) when nothing was created. Failures never block the
// request.
func (l *Lifecycle) EnsureVisitor(ctx context.Context, hasCookie bool, req RequestInfo) (string, time.Duration) {
	if IsExcludedPath(req.Path) || hasCookie {
		return "", 0
	}

	id, err := session.GenerateID()
	if err != nil {
		l.log.ErrorContext(ctx, "failed to mint visitor session id", "error", err)
		return "", 0
	}

	rec := session.NewVisitor(uuid.NewString(), req.UserAgent, req.IPAddress, l.cfg.VisitorTTL)
	if err := l.store.Set(ctx, id, rec, l.cfg.VisitorTTL); err != nil {
		l.log.ErrorContext(ctx, "failed to persist visitor session", "error", err)
		return "", 0
	}

	pv := pageViewFrom(req)
	if err := l.sink.TrackUniqueVisitor(ctx, pv, rec.Visitor); err != nil {
		l.log.DebugContext(ctx, "analytics unique-visitor failed", "error", err)
	}
	if err := l.sink.TrackPageView(ctx, pv, rec.Visitor, true); err != nil {
		l.log.DebugContext(ctx, "analytics page-view failed", "error", err)
	}

	return id, l.cfg.VisitorTTL
}

// Logout drops the session record and returns the redirect target: the
// identity provider's end-session URL when advertised, otherwise "/".
func (l *Lifecycle) Logout(ctx context.Context, sessionID string) string {
	if sessionID != "" {
		if err := l.store.Drop(ctx, sessionID); err != nil {
			l.log.WarnContext(ctx, "failed to drop session on logout",
				"session_id", sessionID,
				"error", err,
			)
		}
	}

	if endURL := l.idp.EndSessionURL(l.cfg.BaseURL); endURL != "" {
		return endURL
	}
	return "/"
}

// touchVisitor records activity on an existing visitor session. All
// failures are swallowed; the request proceeds as anonymous either way.
func (l *Lifecycle) touchVisitor(ctx context.Context, id string, rec *session.Record, req RequestInfo) {
	v := rec.Visitor
	firstView := v.PageViews == 0

	v.PageViews++
	v.LastActivity = time.Now()

	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return
	}
	if err := l.store.Set(ctx, id, rec, ttl); err != nil {
		l.log.WarnContext(ctx, "failed to update visitor session", "error", err)
		return
	}

	pv := pageViewFrom(req)
	if firstView {
		if err := l.sink.TrackUniqueVisitor(ctx, pv, v); err != nil {
			l.log.DebugContext(ctx, "analytics unique-visitor failed", "error", err)
		}
	}
	if err := l.sink.TrackPageView(ctx, pv, v, false); err != nil {
		l.log.DebugContext(ctx, "analytics page-view failed", "error", err)
	}
}

// refresh performs the proactive token refresh. Concurrent validators
// for the same session id share a single upstream call through the
// singleflight group.
func (l *Lifecycle) refresh(ctx context.Context, id string, rec *session.Record) Result {
	v, _, _ := l.refreshGroup.Do(id, func() (any, error) {
		return l.doRefresh(ctx, id, rec), nil
	})
	return v.(Result)
}

func (l *Lifecycle) doRefresh(ctx context.Context, id string, rec *session.Record) Result {
	a := rec.Authenticated

	refCtx, cancel := context.WithTimeout(ctx, idpTimeout)
	defer cancel()

	tokens, err := l.idp.Refresh(refCtx, a.RefreshToken)
	if err != nil {
		// Fail closed: the local session is invalidated in both cases,
		// but an upstream invalid_grant is surfaced distinctly so the
		// caller can prompt a silent re-login.
		if dropErr := l.store.Drop(ctx, id); dropErr != nil {
			l.log.WarnContext(ctx, "failed to drop session after refresh failure", "error", dropErr)
		}

		if errors.Is(err, provider.ErrSessionExpired) {
			l.log.InfoContext(ctx, "upstream session expired", "session_id", id)
			return Result{SessionExpired: true}
		}

		l.log.ErrorContext(ctx, "token refresh failed", "session_id", id, "error", err)
		return Result{}
	}

	a.Token = tokens.AccessToken
	a.TokenExpiresAt = tokens.Expiry
	if tokens.RefreshToken != "" {
		// Rotated by the provider; otherwise the previous one stays valid.
		a.RefreshToken = tokens.RefreshToken
	}

	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return Result{}
	}
	if err := l.store.Set(ctx, id, rec, ttl); err != nil {
		l.log.ErrorContext(ctx, "failed to persist refreshed session", "error", err)
		return Result{}
	}

	return Result{IsValid: true, Credentials: credentialsFrom(id, rec)}
}

func pageViewFrom(req RequestInfo) analytics.PageView {
	return analytics.PageView{
		Path:      req.Path,
		Referer:   req.Referer,
		UserAgent: req.UserAgent,
		IPAddress: req.IPAddress,
	}
}
