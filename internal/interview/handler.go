package interview

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pathforge/coach-backend/internal/auth"
	"github.com/pathforge/coach-backend/internal/shared"
)

// Handler exposes session introspection over plain HTTP; the session itself
// lives on the websocket.
type Handler struct {
	manager *Manager
	store   *Store
	logger  *slog.Logger
}

func NewHandler(manager *Manager, store *Store, logger *slog.Logger) *Handler {
	return &Handler{
		manager: manager,
		store:   store,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/active", h.Active)
	g.GET("/records/:id", h.GetRecord)
	g.GET("/metrics", h.GetMetrics)
}

// Active reports whether the caller has a live interview, so a reconnecting
// client can tell a dropped session from an ended one.
func (h *Handler) Active(c echo.Context) error {
	claims := auth.GetClaims(c)
	if claims == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	id, ok := h.manager.ActiveFor(claims.Email)
	if !ok {
		return c.JSON(http.StatusOK, map[string]any{"active": false})
	}

	resp := map[string]any{"active": true, "session_id": id}
	if session, found := h.manager.GetSession(id); found {
		resp["status"] = string(session.Status())
		resp["turns"] = session.Turns()
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetRecord(c echo.Context) error {
	claims := auth.GetClaims(c)
	if claims == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	rec, err := h.store.GetRecord(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("record_not_found", "session record not found")
		}
		h.logger.Error("failed to get session record", "error", err)
		return shared.InternalError("get_failed", "failed to get session record")
	}
	if rec.UserID != claims.Email {
		return shared.NotFound("record_not_found", "session record not found")
	}

	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) GetMetrics(c echo.Context) error {
	if auth.GetClaims(c) == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	hours := 24
	if hoursStr := c.QueryParam("hours"); hoursStr != "" {
		if hr, err := strconv.Atoi(hoursStr); err == nil && hr > 0 && hr <= 168 {
			hours = hr
		}
	}

	metrics, err := h.store.GetMetrics(c.Request().Context(), hours)
	if err != nil {
		h.logger.Error("failed to get metrics", "error", err)
		return shared.InternalError("metrics_failed", "failed to get metrics")
	}

	return c.JSON(http.StatusOK, map[string]any{"metrics": metrics})
}
