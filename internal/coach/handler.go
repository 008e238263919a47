package coach

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pathforge/coach-backend/internal/auth"
	"github.com/pathforge/coach-backend/internal/profile"
	"github.com/pathforge/coach-backend/internal/shared"
)

type Handler struct {
	service  *Service
	profiles *profile.Store
	logger   *slog.Logger
}

func NewHandler(service *Service, profiles *profile.Store, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		profiles: profiles,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/roadmap", h.GenerateRoadmap)
	g.GET("/questions", h.Questions)
	g.POST("/feedback", h.Feedback)
	g.POST("/pitch", h.Pitch)
	g.POST("/resume", h.Resume)
	g.GET("/news", h.News)
}

// GenerateRoadmap drafts a roadmap from the stored profile and persists it.
func (h *Handler) GenerateRoadmap(c echo.Context) error {
	claims := auth.GetClaims(c)
	if claims == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}
	ctx := c.Request().Context()

	p, err := h.profiles.Get(ctx, claims.Email)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.BadRequest("profile_required", "save a profile before requesting a roadmap")
		}
		h.logger.Error("failed to load profile", "error", err, "user", claims.Email)
		return shared.InternalError("profile_load_failed", "could not load profile")
	}

	plan, err := h.service.Roadmap(ctx, p)
	if err != nil {
		return h.generationError(c, "roadmap", err)
	}

	roadmap := &profile.Roadmap{
		UserEmail: claims.Email,
		Track:     p.TargetTrack.String(),
		Summary:   plan.Summary,
		Stages:    plan.Stages,
	}
	if err := h.profiles.SaveRoadmap(ctx, roadmap); err != nil {
		h.logger.Error("failed to save roadmap", "error", err, "user", claims.Email)
		return shared.InternalError("roadmap_save_failed", "could not save roadmap")
	}

	return c.JSON(http.StatusOK, roadmap)
}

func (h *Handler) Questions(c echo.Context) error {
	if auth.GetClaims(c) == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	track := c.QueryParam("track")
	if !shared.ValidTrack(track) {
		return shared.BadRequest("invalid_track", "unknown target track")
	}
	count, _ := strconv.Atoi(c.QueryParam("count"))

	questions, err := h.service.TechnicalQuestions(c.Request().Context(), track, c.QueryParam("difficulty"), count)
	if err != nil {
		return h.generationError(c, "questions", err)
	}

	return c.JSON(http.StatusOK, map[string]any{"questions": questions})
}

type feedbackRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (h *Handler) Feedback(c echo.Context) error {
	if auth.GetClaims(c) == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	var req feedbackRequest
	if err := c.Bind(&req); err != nil || req.Question == "" || req.Answer == "" {
		return shared.BadRequest("invalid_body", "question and answer required")
	}

	fb, err := h.service.AnswerFeedback(c.Request().Context(), req.Question, req.Answer)
	if err != nil {
		return h.generationError(c, "feedback", err)
	}

	return c.JSON(http.StatusOK, fb)
}

type pitchRequest struct {
	Transcript string `json:"transcript"`
	TargetRole string `json:"target_role"`
}

func (h *Handler) Pitch(c echo.Context) error {
	if auth.GetClaims(c) == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	var req pitchRequest
	if err := c.Bind(&req); err != nil || req.Transcript == "" {
		return shared.BadRequest("invalid_body", "pitch transcript required")
	}

	score, err := h.service.ScorePitch(c.Request().Context(), req.Transcript, req.TargetRole)
	if err != nil {
		return h.generationError(c, "pitch", err)
	}

	return c.JSON(http.StatusOK, score)
}

type resumeRequest struct {
	Text string `json:"text"`
}

// Resume parses resume text and folds the extracted fields into the profile.
func (h *Handler) Resume(c echo.Context) error {
	claims := auth.GetClaims(c)
	if claims == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	var req resumeRequest
	if err := c.Bind(&req); err != nil || req.Text == "" {
		return shared.BadRequest("invalid_body", "resume text required")
	}
	ctx := c.Request().Context()

	extract, err := h.service.ParseResume(ctx, req.Text)
	if err != nil {
		return h.generationError(c, "resume", err)
	}

	p, err := h.profiles.Get(ctx, claims.Email)
	if err != nil {
		p = &profile.Profile{Email: claims.Email}
	}
	if extract.CurrentRole != "" {
		p.CurrentRole = extract.CurrentRole
	}
	if extract.ExperienceYears > 0 {
		p.ExperienceYears = extract.ExperienceYears
	}
	if len(extract.Skills) > 0 {
		p.Skills = extract.Skills
	}
	p.ResumeText = req.Text

	if err := h.profiles.Upsert(ctx, p); err != nil {
		h.logger.Error("failed to update profile from resume", "error", err, "user", claims.Email)
		return shared.InternalError("profile_save_failed", "could not update profile")
	}

	return c.JSON(http.StatusOK, extract)
}

func (h *Handler) News(c echo.Context) error {
	if auth.GetClaims(c) == nil {
		return shared.Unauthorized("auth_required", "authentication required")
	}

	track := c.QueryParam("track")
	if !shared.ValidTrack(track) {
		return shared.BadRequest("invalid_track", "unknown target track")
	}

	items, err := h.service.NewsDigest(c.Request().Context(), track)
	if err != nil {
		return h.generationError(c, "news", err)
	}

	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) generationError(c echo.Context, op string, err error) error {
	if err == shared.ErrRateLimited {
		return shared.TooManyRequests("rate_limited", "the model is busy, try again shortly")
	}
	h.logger.Error("generation failed", "op", op, "error", err)
	return shared.InternalError("generation_failed", "content generation failed")
}
