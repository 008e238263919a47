package history

import (
	"log/slog"
	"net/http"
	"strconv"

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
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) List(c echo.Context) error {
	claims := auth.GetClaims(c)
	if claims == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	records, err := h.store.ListByUser(c.Request().Context(), claims.Email, limit)
	if err != nil {
		h.logger.Error("failed to list interviews", "error", err, "user", claims.Email)
		return shared.InternalError("list_failed", "could not load interview history")
	}

	return c.JSON(http.StatusOK, records)
}

func (h *Handler) Get(c echo.Context) error {
	claims := auth.GetClaims(c)
	if claims == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	record, err := h.store.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("record_not_found", "interview not found")
		}
		h.logger.Error("failed to get interview", "error", err)
		return shared.InternalError("get_failed", "could not load interview")
	}
	if record.UserEmail != claims.Email {
		return shared.NotFound("record_not_found", "interview not found")
	}

	return c.JSON(http.StatusOK, record)
}

func (h *Handler) Delete(c echo.Context) error {
	claims := auth.GetClaims(c)
	if claims == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	if err := h.store.Delete(c.Request().Context(), claims.Email, c.Param("id")); err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("record_not_found", "interview not found")
		}
		h.logger.Error("failed to delete interview", "error", err)
		return shared.InternalError("delete_failed", "could not delete interview")
	}

	return c.NoContent(http.StatusNoContent)
}
