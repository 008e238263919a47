package gateway

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pathforge/coach-backend/internal/auth"
	"github.com/pathforge/coach-backend/internal/interview"
	"github.com/pathforge/coach-backend/internal/shared"
	"github.com/pathforge/coach-backend/internal/transport"
)

const startTimeout = 15 * time.Second

// AnswerRecaller surfaces a user's past interview answers so the in-session
// interviewer can build on earlier conversations.
type AnswerRecaller interface {
	PastAnswers(ctx context.Context, userEmail, track string, limit int) ([]string, error)
}

// Handler upgrades authenticated clients to websocket interview sessions.
type Handler struct {
	manager   *interview.Manager
	validator *auth.JWTValidator
	recall    AnswerRecaller
	logger    *slog.Logger
}

func NewHandler(manager *interview.Manager, validator *auth.JWTValidator, recall AnswerRecaller, logger *slog.Logger) *Handler {
	return &Handler{
		manager:   manager,
		validator: validator,
		recall:    recall,
		logger:    logger.With("component", "interview_gateway"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.HandleConnection)
}

// HandleConnection authenticates the client, upgrades the connection, waits
// for the start request and hands the connection to a session. It blocks
// until the session ends so the request context outlives the pumps.
func (h *Handler) HandleConnection(c echo.Context) error {
	user, err := h.authenticate(c)
	if err != nil {
		return err
	}

	ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}

	ctx := c.Request().Context()
	conn := NewWSConn(ws, h.logger)
	go conn.writePump(ctx)
	go conn.readPump(ctx)

	start, ok := h.awaitStart(ctx, conn)
	if !ok {
		_ = conn.Close()
		return nil
	}

	opts := h.startOptions(ctx, user, start)
	session, err := h.manager.CreateSession(ctx, conn, user, opts)
	if err != nil {
		// The session already reported the failure to the client and
		// closed the connection.
		h.logger.Warn("session start failed", "user", user.Email, "error", err)
		return nil
	}

	h.logger.Info("interview session connected", "user", user.Email, "track", opts.Track)

	select {
	case <-ctx.Done():
		session.Close()
	case <-session.Done():
	}

	return nil
}

// authenticate accepts the JWT from the token query parameter, which is how
// browser websocket clients pass credentials, or from the standard header.
func (h *Handler) authenticate(c echo.Context) (*transport.UserContext, error) {
	token := c.QueryParam("token")
	if token == "" {
		header := c.Request().Header.Get("Authorization")
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		return nil, shared.Unauthorized("missing_token", "authentication token required")
	}

	claims, err := h.validator.Validate(token)
	if err != nil {
		return nil, shared.Unauthorized("invalid_token", "invalid or expired token")
	}

	return &transport.UserContext{
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}

// awaitStart consumes client messages until the start request arrives. A
// microphone denial before start aborts immediately instead of holding a
// half-open connection.
func (h *Handler) awaitStart(ctx context.Context, conn *WSConn) (transport.StartPayload, bool) {
	timer := time.NewTimer(startTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return transport.StartPayload{}, false
		case <-timer.C:
			h.logger.Warn("client never sent start request")
			return transport.StartPayload{}, false
		case env, ok := <-conn.Messages():
			if !ok {
				return transport.StartPayload{}, false
			}
			switch env.Type {
			case transport.MessageTypeStart:
				start, _ := env.Payload.(transport.StartPayload)
				return start, true
			case transport.MessageTypeMicDenied, transport.MessageTypeEnd:
				return transport.StartPayload{}, false
			}
		}
	}
}

func (h *Handler) startOptions(ctx context.Context, user *transport.UserContext, start transport.StartPayload) interview.StartOptions {
	track := start.Track
	if !shared.ValidTrack(track) {
		track = string(shared.TrackSoftwareEngineering)
	}

	var pastAnswers []string
	if h.recall != nil {
		recallCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		answers, err := h.recall.PastAnswers(recallCtx, user.Email, track, 5)
		cancel()
		if err != nil {
			h.logger.Warn("past answer recall failed", "user", user.Email, "error", err)
		} else {
			pastAnswers = answers
		}
	}

	opts := interview.StartOptions{
		Track:       track,
		Difficulty:  start.Difficulty,
		ResumeFocus: start.ResumeFocus,
	}
	opts.Prompt.SystemInstruction = interview.BuildSystemInstruction(interview.PromptInput{
		Name:        user.Name,
		Track:       track,
		Difficulty:  start.Difficulty,
		ResumeFocus: start.ResumeFocus,
		PastAnswers: pastAnswers,
	})
	return opts
}
