package speech

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pathforge/coach-backend/internal/audio"
	"github.com/pathforge/coach-backend/internal/auth"
	"github.com/pathforge/coach-backend/internal/shared"
)

type Handler struct {
	speaker *Speaker
	logger  *slog.Logger
}

func NewHandler(speaker *Speaker, logger *slog.Logger) *Handler {
	return &Handler{
		speaker: speaker,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Speak)
	g.DELETE("", h.Stop)
}

type speakRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

func (h *Handler) Speak(c echo.Context) error {
	if auth.GetClaims(c) == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	var req speakRequest
	if err := c.Bind(&req); err != nil || req.Text == "" {
		return shared.BadRequest("invalid_body", "text required")
	}

	pcm, err := h.speaker.Speak(c.Request().Context(), req.Text, req.Voice)
	if err != nil {
		h.logger.Error("synthesis failed", "error", err)
		return shared.InternalError("synthesis_failed", "could not synthesize speech")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data":        audio.EncodePCM(pcm),
		"sample_rate": audio.PlaybackRate,
	})
}

func (h *Handler) Stop(c echo.Context) error {
	if auth.GetClaims(c) == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	h.speaker.Stop()
	return c.NoContent(http.StatusNoContent)
}
