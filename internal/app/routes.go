package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinefil/cinefil/internal/cache"
	"github.com/cinefil/cinefil/internal/mailer"
	"github.com/cinefil/cinefil/internal/plugins/auth"
	"github.com/cinefil/cinefil/internal/plugins/favorites"
	"github.com/cinefil/cinefil/internal/plugins/users"
	"github.com/cinefil/cinefil/internal/token"
)

// RegisterRoutes constructs every plugin's repository, service, and handler,
// then delegates to each plugin's route registration function.
//
// This is the single place where all routes are aggregated. When a new
// plugin is added, its routes are registered here.
func (a *App) RegisterRoutes() {
	e := a.Echo
	cfg := a.Config

	// --- Shared infrastructure ---

	codec := token.NewCodec(cfg.Auth.SecretKey)
	mail := mailer.New(cfg.Mail)
	profileCache := cache.New(a.Redis, "profile:")
	cookies := auth.NewCookieConfig(
		cfg.IsDevelopment(),
		cfg.Auth.CookieDomain,
		cfg.Auth.SessionTTL,
		cfg.Auth.TempAuthTTL,
	)

	// --- Plugin wiring ---

	// The users repository doubles as the auth plugin's user store: login
	// needs to resolve an email to a userId, and register creates the row.
	usersRepo := users.NewRepository(a.DB)
	tokenRepo := auth.NewTokenRepository(a.DB)

	authService := auth.NewAuthService(
		tokenRepo, usersRepo, codec, mail,
		cfg.Auth.LoginCodeTTL, cfg.Auth.SessionTTL,
	)
	authHandler := auth.NewHandler(authService, cookies, cfg.Auth.ReservedUserIDs)

	// Ownership gate shared by every route that writes under /:userId.
	requireOwner := auth.RequireOwner(codec, tokenRepo, cookies)

	usersService := users.NewService(usersRepo, profileCache)
	usersHandler := users.NewHandler(usersService, cfg.Auth.ReservedUserIDs)

	favoritesService := favorites.NewService(favorites.NewRepository(a.DB))
	favoritesHandler := favorites.NewHandler(favoritesService)

	// --- Public routes ---

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello Cinefil!")
	})

	// Health check endpoint for Docker/uptime monitoring.
	e.GET("/api/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"message": "API is running",
		})
	})

	// --- Plugin routes ---

	auth.RegisterRoutes(e, authHandler)
	users.RegisterRoutes(e, usersHandler, requireOwner)
	favorites.RegisterRoutes(e, favoritesHandler, requireOwner)
}
