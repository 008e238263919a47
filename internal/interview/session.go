package interview

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sync"
	"time"

	"github.com/pathforge/coach-backend/internal/audio"
	"github.com/pathforge/coach-backend/internal/live"
	"github.com/pathforge/coach-backend/internal/shared"
	"github.com/pathforge/coach-backend/internal/transport"
)

// HistoryAppender receives a finished message sequence when a session with
// at least one exchanged turn ends. Storage format is its own concern.
type HistoryAppender interface {
	AppendTranscript(ctx context.Context, userEmail, track string, messages []Message) (string, error)
}

// SpeechStopper cancels the non-session text-to-speech fallback on teardown.
type SpeechStopper interface {
	Stop()
}

// Session drives one audio interview through its lifecycle and guarantees
// that every acquired resource is released exactly once on any exit path.
type Session struct {
	id    string
	user  *transport.UserContext
	track string

	conn    transport.Connection
	dialer  live.Dialer
	clock   Clock
	history HistoryAppender
	speech  SpeechStopper
	onClose func(sessionID string)

	sched      *Scheduler
	transcript *Accumulator

	prompt live.SessionOptions

	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger

	mu       sync.Mutex
	status   Status
	liveConn live.Conn
	epoch    time.Time
	closed   bool
}

type SessionConfig struct {
	User    *transport.UserContext
	Track   string
	Prompt  live.SessionOptions
	Dialer  live.Dialer
	Clock   Clock
	History HistoryAppender
	Speech  SpeechStopper
	OnClose func(sessionID string)
	Log     *slog.Logger
}

func NewSession(conn transport.Connection, cfg SessionConfig) *Session {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = NewClock()
	}

	id := shared.NewID("ivw_")
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		id:         id,
		user:       cfg.User,
		track:      cfg.Track,
		conn:       conn,
		dialer:     cfg.Dialer,
		clock:      cfg.Clock,
		history:    cfg.History,
		speech:     cfg.Speech,
		onClose:    cfg.OnClose,
		prompt:     cfg.Prompt,
		transcript: NewAccumulator(),
		ctx:        ctx,
		cancel:     cancel,
		status:     StatusIdle,
		log:        cfg.Log.With("session_id", id),
	}

	s.sched = NewScheduler(cfg.Clock, s.log)
	s.sched.SetIdleFunc(s.onPlaybackIdle)

	return s
}

func (s *Session) SessionID() string {
	return s.id
}

func (s *Session) UserEmail() string {
	if s.user == nil {
		return ""
	}
	return s.user.Email
}

// Done is closed when the session has been torn down.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Turns() int {
	return s.transcript.Turns()
}

func (s *Session) Messages() []Message {
	return s.transcript.Messages()
}

// Start connects to the live model service and begins relaying. On any
// connection failure the session reports a single retryable error condition
// and tears down; no partial resources are left live.
func (s *Session) Start() error {
	if !s.transition(StatusConnecting) {
		return shared.ErrSessionClosed
	}

	liveConn, err := s.dialer.Dial(s.ctx, s.prompt, live.Callbacks{
		OnAudio:            s.onModelAudio,
		OnInputTranscript:  func(text string) { s.onTranscriptFragment(RoleUser, text) },
		OnOutputTranscript: func(text string) { s.onTranscriptFragment(RoleModel, text) },
		OnTurnComplete:     s.onTurnComplete,
		OnError:            s.onLiveError,
	})
	if err != nil {
		s.log.Error("live dial failed", "error", err)
		s.fail("connection_failed", "Connection failed, please try again.")
		return shared.ErrConnectionFailed
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		// Torn down while dialing; the late connection must not leak.
		_ = liveConn.Close()
		return shared.ErrSessionClosed
	}
	s.liveConn = liveConn
	s.epoch = s.clock.Now()
	s.mu.Unlock()

	if !s.transition(StatusWaitingForAI) {
		return shared.ErrSessionClosed
	}

	go s.readLoop()

	return nil
}

// readLoop consumes client messages until the session ends or the client
// connection drops. Cancellation comes from Close via the session context.
func (s *Session) readLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case env, ok := <-s.conn.Messages():
			if !ok {
				s.Close()
				return
			}
			switch env.Type {
			case transport.MessageTypeAudioFrame:
				s.handleClientAudio(env.Payload)
			case transport.MessageTypeMicDenied:
				s.log.Warn("client reported microphone permission denied")
				s.fail("permission_denied", "Microphone access was denied.")
				return
			case transport.MessageTypeEnd:
				s.Close()
				return
			}
		}
	}
}

// handleClientAudio forwards one captured mic block to the live connection.
// Blocks captured while the session is not listening are discarded so the
// user's own speech is never streamed during the AI's turn or while the
// connection is still negotiating.
func (s *Session) handleClientAudio(payload any) {
	if s.Status() != StatusListening {
		return
	}

	frame, ok := payload.(transport.AudioFramePayload)
	if !ok {
		s.log.Warn("unexpected audio frame payload type")
		return
	}

	pcm, err := base64.StdEncoding.DecodeString(frame.Data)
	if err != nil {
		s.log.Warn("dropping malformed capture block", "error", err)
		return
	}

	if frame.SampleRate != 0 && frame.SampleRate != audio.CaptureRate {
		samples := audio.Int16ToFloat32(audio.PCMBytesToInt16(pcm))
		samples = audio.Resample(samples, frame.SampleRate, audio.CaptureRate)
		pcm = audio.Int16ToPCMBytes(audio.Float32ToInt16(samples))
	}

	s.mu.Lock()
	liveConn := s.liveConn
	s.mu.Unlock()
	if liveConn == nil {
		return
	}

	if err := liveConn.SendAudio(pcm); err != nil {
		s.log.Error("failed to forward capture block", "error", err)
	}
}

// onModelAudio decodes one inbound speech chunk and lines it up for gapless
// playback. Decode failures drop the chunk and leave the session healthy.
func (s *Session) onModelAudio(pcm []byte, sampleRate int) {
	frame, err := audio.DecodePlaybackBytes(pcm, sampleRate)
	if err != nil {
		s.log.Warn("dropping undecodable playback chunk", "error", err)
		return
	}

	switch s.Status() {
	case StatusWaitingForAI, StatusListening:
		s.transition(StatusAISpeaking)
	case StatusAISpeaking:
	default:
		// Torn down or not yet connected; late chunks are discarded.
		return
	}

	start := s.sched.Schedule(frame)

	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	chunk := transport.AudioChunk{
		Data:       base64.StdEncoding.EncodeToString(pcm),
		SampleRate: sampleRate,
		StartAt:    start.Sub(epoch).Seconds(),
		Duration:   frame.Duration().Seconds(),
	}
	if err := s.conn.SendAudio(s.ctx, chunk); err != nil {
		s.log.Error("failed to relay playback chunk", "error", err)
	}
}

// onPlaybackIdle fires when the last scheduled playback frame's end time has
// elapsed and nothing newer pushed the end time out. The session interprets
// it as the hand-back of the floor to the user.
func (s *Session) onPlaybackIdle() {
	if s.Status() == StatusAISpeaking {
		s.transition(StatusListening)
	}
}

func (s *Session) onTranscriptFragment(role Role, text string) {
	msg := s.transcript.AddFragment(role, text)
	s.sendEvent(transport.MessageTypeTranscript, transport.TranscriptEvent{
		Role:      string(msg.Role),
		Text:      msg.Content,
		Timestamp: time.Now(),
	})
}

func (s *Session) onTurnComplete() {
	s.transcript.CompleteTurn()
	s.sendEvent(transport.MessageTypeTurnDone, nil)
}

func (s *Session) onLiveError(err error) {
	s.log.Error("live connection error", "error", err)
	s.fail("connection_failed", "Connection failed, please try again.")
}

// transition moves the session to the next status if the move is legal and
// the session is still open, and notifies the client.
func (s *Session) transition(next Status) bool {
	s.mu.Lock()
	if s.closed || !CanTransition(s.status, next) {
		s.mu.Unlock()
		return false
	}
	s.status = next
	s.mu.Unlock()

	s.sendEvent(transport.MessageTypeStatus, transport.StatusEvent{Status: string(next)})
	return true
}

func (s *Session) fail(code, message string) {
	s.sendEvent(transport.MessageTypeError, transport.ErrorEvent{
		Code:    code,
		Message: message,
	})
	s.Close()
}

func (s *Session) sendEvent(msgType transport.MessageType, payload any) {
	if err := s.conn.Send(s.ctx, transport.ServerEvent{Type: msgType, Payload: payload}); err != nil {
		s.log.Debug("failed to send event", "type", msgType, "error", err)
	}
}

// Close releases every session resource exactly once. Every step is
// attempted even if an earlier one fails; failures are logged, never fatal.
// A second Close is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.status = StatusIdle
	liveConn := s.liveConn
	s.liveConn = nil
	s.mu.Unlock()

	s.sendEvent(transport.MessageTypeStatus, transport.StatusEvent{Status: string(StatusIdle)})

	s.sched.Stop()

	if s.speech != nil {
		s.speech.Stop()
	}

	if liveConn != nil {
		if err := liveConn.Close(); err != nil {
			s.log.Error("failed to close live connection", "error", err)
		}
	}

	s.cancel()

	s.saveTranscript()

	if s.onClose != nil {
		s.onClose(s.id)
	}

	if err := s.conn.Close(); err != nil {
		s.log.Error("failed to close client connection", "error", err)
	}

	s.log.Info("session closed", "turns", s.transcript.Turns())
	return nil
}

// saveTranscript offers a partially completed session for save rather than
// silently discarding it, as long as at least one turn was exchanged.
func (s *Session) saveTranscript() {
	if s.history == nil || s.transcript.Turns() == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	recordID, err := s.history.AppendTranscript(ctx, s.UserEmail(), s.track, s.transcript.Messages())
	if err != nil {
		s.log.Error("failed to save transcript", "error", err)
		return
	}

	// Best-effort notification; the client connection may already be gone.
	_ = s.conn.Send(ctx, transport.ServerEvent{
		Type: transport.MessageTypeSaved,
		Payload: transport.SavedEvent{
			RecordID: recordID,
			Turns:    s.transcript.Turns(),
		},
	})
}
