package profile

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pathforge/coach-backend/internal/auth"
	"github.com/pathforge/coach-backend/internal/shared"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.Get)
	g.PUT("", h.Put)
	g.GET("/roadmap", h.GetRoadmap)
}

func (h *Handler) Get(c echo.Context) error {
	claims := auth.GetClaims(c)
	if claims == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	p, err := h.store.Get(c.Request().Context(), claims.Email)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("profile_not_found", "no profile yet")
		}
		h.logger.Error("failed to get profile", "error", err, "user", claims.Email)
		return shared.InternalError("get_failed", "could not load profile")
	}

	return c.JSON(http.StatusOK, p)
}

type putProfileRequest struct {
	TargetTrack     string   `json:"target_track"`
	CurrentRole     string   `json:"current_role"`
	TargetRole      string   `json:"target_role"`
	ExperienceYears int      `json:"experience_years"`
	Skills          []string `json:"skills"`
	ResumeText      string   `json:"resume_text"`
}

func (h *Handler) Put(c echo.Context) error {
	claims := auth.GetClaims(c)
	if claims == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	var req putProfileRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_body", "could not parse profile")
	}
	if req.TargetTrack != "" && !shared.ValidTrack(req.TargetTrack) {
		return shared.BadRequest("invalid_track", "unknown target track")
	}

	p := &Profile{
		Email:           claims.Email,
		TargetTrack:     shared.TargetTrack(req.TargetTrack),
		CurrentRole:     req.CurrentRole,
		TargetRole:      req.TargetRole,
		ExperienceYears: req.ExperienceYears,
		Skills:          req.Skills,
		ResumeText:      req.ResumeText,
	}
	if err := h.store.Upsert(c.Request().Context(), p); err != nil {
		h.logger.Error("failed to save profile", "error", err, "user", claims.Email)
		return shared.InternalError("save_failed", "could not save profile")
	}

	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetRoadmap(c echo.Context) error {
	claims := auth.GetClaims(c)
	if claims == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	r, err := h.store.LatestRoadmap(c.Request().Context(), claims.Email, c.QueryParam("track"))
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("roadmap_not_found", "no roadmap yet")
		}
		h.logger.Error("failed to get roadmap", "error", err, "user", claims.Email)
		return shared.InternalError("get_failed", "could not load roadmap")
	}

	return c.JSON(http.StatusOK, r)
}
