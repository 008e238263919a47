package user

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pathforge/coach-backend/internal/auth"
	"github.com/pathforge/coach-backend/internal/shared"
)

const (
	stateCookieName = "coach_oauth_state"
	stateMaxAge     = 10 * 60
)

type Handler struct {
	store       *Store
	validator   *auth.JWTValidator
	providers   map[string]Provider
	frontendURL string
	logger      *slog.Logger
}

func NewHandler(store *Store, validator *auth.JWTValidator, providers []Provider, frontendURL string, logger *slog.Logger) *Handler {
	byName := make(map[string]Provider)
	for _, p := range providers {
		if p != nil {
			byName[p.Name()] = p
		}
	}
	return &Handler{
		store:       store,
		validator:   validator,
		providers:   byName,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// RegisterRoutes takes two groups because the login flow must stay reachable
// without a token while profile reads require one.
func (h *Handler) RegisterRoutes(public, authed *echo.Group) {
	public.GET("/:provider/login", h.Login)
	public.GET("/:provider/callback", h.Callback)
	authed.GET("/me", h.Me)
}

func (h *Handler) Login(c echo.Context) error {
	provider, ok := h.providers[c.Param("provider")]
	if !ok {
		return shared.NotFound("unknown_provider", "unknown sign-in provider")
	}

	state := newState()
	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   stateMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusTemporaryRedirect, provider.AuthURL(state))
}

func (h *Handler) Callback(c echo.Context) error {
	provider, ok := h.providers[c.Param("provider")]
	if !ok {
		return shared.NotFound("unknown_provider", "unknown sign-in provider")
	}

	cookie, err := c.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != c.QueryParam("state") {
		return shared.Unauthorized("state_mismatch", "sign-in state did not match")
	}

	code := c.QueryParam("code")
	if code == "" {
		return shared.BadRequest("missing_code", "authorization code required")
	}

	ctx := c.Request().Context()
	identity, err := provider.Exchange(ctx, code)
	if err != nil {
		h.logger.Error("oauth exchange failed", "provider", provider.Name(), "error", err)
		return shared.Unauthorized("exchange_failed", "sign-in could not be completed")
	}

	u, err := h.store.FindOrCreate(ctx, provider.Name(), identity.Sub, identity.Email, identity.Name, identity.AvatarURL)
	if err != nil {
		h.logger.Error("failed to upsert user", "error", err)
		return shared.InternalError("user_save_failed", "could not save user")
	}

	token, err := h.validator.Issue(u.ID, u.Email, u.Name, u.AvatarURL)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err)
		return shared.InternalError("token_issue_failed", "could not issue token")
	}

	h.logger.Info("user signed in", "provider", provider.Name(), "user_id", u.ID)

	if h.frontendURL != "" {
		return c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/auth/callback#token="+token)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  u,
	})
}

func (h *Handler) Me(c echo.Context) error {
	claims := auth.GetClaims(c)
	if claims == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	u, err := h.store.GetByID(c.Request().Context(), claims.UserID)
	if err != nil {
		h.logger.Error("failed to get user", "error", err, "user_id", claims.UserID)
		return shared.NotFound("user_not_found", "user not found")
	}

	return c.JSON(http.StatusOK, u)
}

func newState() string {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return base64.URLEncoding.EncodeToString(b)
}
