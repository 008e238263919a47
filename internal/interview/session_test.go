package interview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pathforge/coach-backend/internal/audio"
	"github.com/pathforge/coach-backend/internal/live"
	"github.com/pathforge/coach-backend/internal/transport"
)

type mockConn struct {
	mu        sync.Mutex
	events    []transport.ServerEvent
	audio     []transport.AudioChunk
	messages  chan transport.ClientEnvelope
	closes    int
	connected bool
}

func newMockConn() *mockConn {
	return &mockConn{
		messages:  make(chan transport.ClientEnvelope, 16),
		connected: true,
	}
}

func (m *mockConn) Send(ctx context.Context, event transport.ServerEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockConn) SendAudio(ctx context.Context, chunk transport.AudioChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audio = append(m.audio, chunk)
	return nil
}

func (m *mockConn) Messages() <-chan transport.ClientEnvelope {
	return m.messages
}

func (m *mockConn) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	m.connected = false
	return nil
}

func (m *mockConn) eventTypes() []transport.MessageType {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]transport.MessageType, len(m.events))
	for i, e := range m.events {
		types[i] = e.Type
	}
	return types
}

func (m *mockConn) closeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

func (m *mockConn) audioCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.audio)
}

type mockLiveConn struct {
	mu     sync.Mutex
	sent   [][]byte
	closes int
}

func (m *mockLiveConn) SendAudio(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, data)
	return nil
}

func (m *mockLiveConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return nil
}

func (m *mockLiveConn) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *mockLiveConn) closeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

type mockDialer struct {
	mu    sync.Mutex
	conn  *mockLiveConn
	cb    live.Callbacks
	err   error
	dials int
}

func (d *mockDialer) Dial(ctx context.Context, opts live.SessionOptions, cb live.Callbacks) (live.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if d.err != nil {
		return nil, d.err
	}
	if d.conn == nil {
		d.conn = &mockLiveConn{}
	}
	d.cb = cb
	return d.conn, nil
}

type mockHistory struct {
	mu       sync.Mutex
	appends  int
	lastMsgs []Message
	err      error
}

func (h *mockHistory) AppendTranscript(ctx context.Context, userEmail, track string, messages []Message) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.appends++
	h.lastMsgs = messages
	if h.err != nil {
		return "", h.err
	}
	return "rec_test", nil
}

func newTestSession(t *testing.T, conn *mockConn, dialer *mockDialer, clock Clock, history HistoryAppender) *Session {
	t.Helper()
	return NewSession(conn, SessionConfig{
		User:    &transport.UserContext{UserID: "user_1", Email: "ada@example.com"},
		Track:   "software_engineering",
		Dialer:  dialer,
		Clock:   clock,
		History: history,
	})
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func pcmPayload(samples []float32, rate int) transport.AudioFramePayload {
	return transport.AudioFramePayload{
		Data:       audio.EncodeCapture(samples),
		MIMEType:   audio.CaptureMIME,
		SampleRate: rate,
	}
}

func TestSession_StartTransitionsToWaiting(t *testing.T) {
	conn := newMockConn()
	dialer := &mockDialer{}
	s := newTestSession(t, conn, dialer, newFakeClock(), nil)
	defer s.Close()

	if s.Status() != StatusIdle {
		t.Fatalf("expected idle before start, got %s", s.Status())
	}

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if s.Status() != StatusWaitingForAI {
		t.Errorf("expected waiting_for_ai, got %s", s.Status())
	}

	types := conn.eventTypes()
	if len(types) < 2 || types[0] != transport.MessageTypeStatus {
		t.Errorf("expected status events on start, got %v", types)
	}
}

func TestSession_DialFailureAbortsCleanly(t *testing.T) {
	conn := newMockConn()
	dialer := &mockDialer{err: errors.New("dial refused")}
	s := newTestSession(t, conn, dialer, newFakeClock(), nil)

	if err := s.Start(); err == nil {
		t.Fatal("expected error from failed dial")
	}
	if s.Status() != StatusIdle {
		t.Errorf("expected idle after failed dial, got %s", s.Status())
	}
	if conn.closeCount() != 1 {
		t.Errorf("expected client connection closed once, got %d", conn.closeCount())
	}

	var sawError bool
	for _, typ := range conn.eventTypes() {
		if typ == transport.MessageTypeError {
			sawError = true
		}
	}
	if !sawError {
		t.Error("expected a user-facing error event")
	}
}

func TestSession_OutboundGating(t *testing.T) {
	conn := newMockConn()
	dialer := &mockDialer{}
	clock := newFakeClock()
	s := newTestSession(t, conn, dialer, clock, nil)
	defer s.Close()

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	block := pcmPayload([]float32{0.1, 0.2, 0.3}, audio.CaptureRate)

	// waiting_for_ai: captured blocks are discarded.
	s.handleClientAudio(block)
	if dialer.conn.sentCount() != 0 {
		t.Errorf("block transmitted while waiting_for_ai")
	}

	// ai_speaking: still gated.
	dialer.cb.OnAudio(audio.Int16ToPCMBytes(make([]int16, 240)), audio.PlaybackRate)
	if s.Status() != StatusAISpeaking {
		t.Fatalf("expected ai_speaking, got %s", s.Status())
	}
	s.handleClientAudio(block)
	if dialer.conn.sentCount() != 0 {
		t.Errorf("block transmitted while ai_speaking")
	}

	// listening: every captured block is transmitted.
	clock.Advance(time.Second)
	if s.Status() != StatusListening {
		t.Fatalf("expected listening after playback drained, got %s", s.Status())
	}
	s.handleClientAudio(block)
	if dialer.conn.sentCount() != 1 {
		t.Errorf("expected 1 transmitted block, got %d", dialer.conn.sentCount())
	}
}

func TestSession_ResamplesNonNativeCapture(t *testing.T) {
	conn := newMockConn()
	dialer := &mockDialer{}
	s := newTestSession(t, conn, dialer, newFakeClock(), nil)
	defer s.Close()

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	dialer.cb.OnAudio(audio.Int16ToPCMBytes(make([]int16, 24)), audio.PlaybackRate)
	s.onPlaybackIdle()

	// 4800 samples at 48 kHz should arrive at the model as 1600 at 16 kHz.
	s.handleClientAudio(pcmPayload(make([]float32, 4800), 48000))
	waitFor(t, func() bool { return dialer.conn.sentCount() == 1 }, "block never transmitted")

	dialer.conn.mu.Lock()
	got := len(dialer.conn.sent[0])
	dialer.conn.mu.Unlock()
	if got != 3200 {
		t.Errorf("expected 3200 bytes (1600 samples), got %d", got)
	}
}

func TestSession_ListeningOnlyAfterLatestBufferEnd(t *testing.T) {
	conn := newMockConn()
	dialer := &mockDialer{}
	clock := newFakeClock()
	s := newTestSession(t, conn, dialer, clock, nil)
	defer s.Close()

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Two 10 ms chunks arrive back to back.
	chunk := audio.Int16ToPCMBytes(make([]int16, 240))
	dialer.cb.OnAudio(chunk, audio.PlaybackRate)
	dialer.cb.OnAudio(chunk, audio.PlaybackRate)

	clock.Advance(10 * time.Millisecond)
	if s.Status() != StatusAISpeaking {
		t.Errorf("first buffer's end must not trigger listening while a later one is queued")
	}

	clock.Advance(10 * time.Millisecond)
	if s.Status() != StatusListening {
		t.Errorf("expected listening after the latest buffer's end, got %s", s.Status())
	}
}

func TestSession_UndecodableChunkIsDropped(t *testing.T) {
	conn := newMockConn()
	dialer := &mockDialer{}
	s := newTestSession(t, conn, dialer, newFakeClock(), nil)
	defer s.Close()

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	dialer.cb.OnAudio([]byte{0x01}, audio.PlaybackRate) // odd byte count
	if s.Status() != StatusWaitingForAI {
		t.Errorf("bad chunk must not change status, got %s", s.Status())
	}
	if conn.audioCount() != 0 {
		t.Errorf("bad chunk must not reach the client")
	}

	// The session stays healthy for the next good chunk.
	dialer.cb.OnAudio(audio.Int16ToPCMBytes(make([]int16, 240)), audio.PlaybackRate)
	if s.Status() != StatusAISpeaking {
		t.Errorf("expected ai_speaking after good chunk, got %s", s.Status())
	}
}

func TestSession_IdempotentTeardown(t *testing.T) {
	conn := newMockConn()
	dialer := &mockDialer{}
	s := newTestSession(t, conn, dialer, newFakeClock(), nil)

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	if conn.closeCount() != 1 {
		t.Errorf("client connection closed %d times, want 1", conn.closeCount())
	}
	if dialer.conn.closeCount() != 1 {
		t.Errorf("live connection closed %d times, want 1", dialer.conn.closeCount())
	}
	if s.Status() != StatusIdle {
		t.Errorf("expected idle after teardown, got %s", s.Status())
	}
	if s.sched.InFlight() != 0 {
		t.Errorf("expected no in-flight playback after teardown")
	}
}

func TestSession_TranscriptRelayedAndSaved(t *testing.T) {
	conn := newMockConn()
	dialer := &mockDialer{}
	history := &mockHistory{}
	s := newTestSession(t, conn, dialer, newFakeClock(), history)

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	dialer.cb.OnOutputTranscript("What is a goroutine")
	dialer.cb.OnOutputTranscript("?")
	dialer.cb.OnInputTranscript("A lightweight thread.")
	dialer.cb.OnTurnComplete()

	s.Close()

	history.mu.Lock()
	defer history.mu.Unlock()
	if history.appends != 1 {
		t.Fatalf("expected 1 history append, got %d", history.appends)
	}
	if len(history.lastMsgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history.lastMsgs))
	}
	if history.lastMsgs[0].Content != "What is a goroutine?" {
		t.Errorf("model message: got %q", history.lastMsgs[0].Content)
	}
	if history.lastMsgs[1].Content != "A lightweight thread." {
		t.Errorf("user message: got %q", history.lastMsgs[1].Content)
	}
}

func TestSession_NoSaveWithoutTurns(t *testing.T) {
	conn := newMockConn()
	dialer := &mockDialer{}
	history := &mockHistory{}
	s := newTestSession(t, conn, dialer, newFakeClock(), history)

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	s.Close()

	history.mu.Lock()
	defer history.mu.Unlock()
	if history.appends != 0 {
		t.Errorf("session without turns must not be saved, got %d appends", history.appends)
	}
}

func TestSession_MicDeniedAborts(t *testing.T) {
	conn := newMockConn()
	dialer := &mockDialer{}
	s := newTestSession(t, conn, dialer, newFakeClock(), nil)

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	conn.messages <- transport.ClientEnvelope{Type: transport.MessageTypeMicDenied}
	waitFor(t, func() bool { return s.Status() == StatusIdle }, "session never aborted on mic denial")

	var sawError bool
	for _, typ := range conn.eventTypes() {
		if typ == transport.MessageTypeError {
			sawError = true
		}
	}
	if !sawError {
		t.Error("expected a user-facing error event on mic denial")
	}
}

func TestSession_EndMessageClosesSession(t *testing.T) {
	conn := newMockConn()
	dialer := &mockDialer{}
	s := newTestSession(t, conn, dialer, newFakeClock(), nil)

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	conn.messages <- transport.ClientEnvelope{Type: transport.MessageTypeEnd}
	waitFor(t, func() bool { return conn.closeCount() == 1 }, "session never closed on end message")
}

func TestSession_LiveErrorAborts(t *testing.T) {
	conn := newMockConn()
	dialer := &mockDialer{}
	s := newTestSession(t, conn, dialer, newFakeClock(), nil)

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	dialer.cb.OnError(errors.New("stream reset"))

	if s.Status() != StatusIdle {
		t.Errorf("expected idle after live error, got %s", s.Status())
	}
	if dialer.conn.closeCount() != 1 {
		t.Errorf("live connection should be closed exactly once, got %d", dialer.conn.closeCount())
	}
}

func TestSession_LateChunkAfterTeardownDiscarded(t *testing.T) {
	conn := newMockConn()
	dialer := &mockDialer{}
	s := newTestSession(t, conn, dialer, newFakeClock(), nil)

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	s.Close()

	before := conn.audioCount()
	dialer.cb.OnAudio(audio.Int16ToPCMBytes(make([]int16, 240)), audio.PlaybackRate)
	if conn.audioCount() != before {
		t.Error("chunk arriving after teardown must be discarded")
	}
	if s.Status() != StatusIdle {
		t.Errorf("late chunk must not resurrect the session, got %s", s.Status())
	}
}
