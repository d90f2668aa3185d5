package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DEFRA/assurance-frontend-sub000/internal/analytics"
	"github.com/DEFRA/assurance-frontend-sub000/internal/auth"
	"github.com/DEFRA/assurance-frontend-sub000/internal/auth/handler"
	"github.com/DEFRA/assurance-frontend-sub000/internal/auth/provider/oidc"
	"github.com/DEFRA/assurance-frontend-sub000/internal/backend"
	"github.com/DEFRA/assurance-frontend-sub000/internal/config"
	"github.com/DEFRA/assurance-frontend-sub000/internal/middleware"
	"github.com/DEFRA/assurance-frontend-sub000/internal/session"
)

func setupHTTP(ctx context.Context, cfg config.Config, log *slog.Logger) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	sessionStore := session.NewRedisStore(infra.Redis.Client)

	idp, err := oidc.New(ctx, oidc.Config{
		Issuer:       cfg.OIDCIssuer,
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.RedirectURL(),
		Scopes:       cfg.OIDCScopes,
	})
	if err != nil {
		return nil, nil, err
	}

	lifecycle := auth.NewLifecycle(
		sessionStore,
		idp,
		&analytics.LogSink{Logger: log},
		auth.Config{
			SessionTTL: cfg.SessionTTL,
			VisitorTTL: cfg.VisitorTTL,
			LoginTTL:   cfg.LoginTTL,
			BaseURL:    cfg.BaseURL,
		},
		log,
	)

	cookieOpts := session.CookieOptions{
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}

	authHandler := handler.NewHandler(lifecycle, cookieOpts, log)
	backendClient := backend.NewClient(cfg.BackendURL)

	// ----------------------------
	// Router: fixed pipeline
	// cookie-emit -> visitor-ensure -> auth-validate -> routes
	// ----------------------------

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CookieEmitter(cookieOpts))
	router.Use(middleware.Visitor(lifecycle))
	router.Use(middleware.Auth(lifecycle))

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.RequireAuth())

	api.GET("/me", func(c *gin.Context) {
		creds := middleware.Credentials(c)
		c.JSON(http.StatusOK, gin.H{
			"id":    creds.User.ID,
			"email": creds.User.Email,
			"name":  creds.User.Name,
			"roles": creds.User.Roles,
		})
	})

	api.GET("/projects", func(c *gin.Context) {
		projects, err := backendClient.Projects(c.Request.Context(), middleware.BearerToken(c))
		if err != nil {
			log.ErrorContext(c.Request.Context(), "failed to fetch projects", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "backend unavailable"})
			return
		}
		c.JSON(http.StatusOK, projects)
	})

	return router, func() error {
		return infra.Redis.Close()
	}, nil
}
