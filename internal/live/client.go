package live

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pathforge/coach-backend/internal/audio"
	"google.golang.org/genai"
)

const defaultModel = "models/gemini-2.5-flash-native-audio-preview-12-2025"

// Client dials live sessions against the Gemini Live API.
type Client struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

type ClientConfig struct {
	APIKey string
	Model  string
	Log    *slog.Logger
}

func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		client: client,
		model:  cfg.Model,
		log:    cfg.Log.With("component", "live_client"),
	}, nil
}

func (c *Client) Dial(ctx context.Context, opts SessionOptions, cb Callbacks) (Conn, error) {
	voice := opts.Voice
	if voice == "" {
		voice = "Aoede"
	}

	config := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: opts.SystemInstruction}},
		},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}

	session, err := c.client.Live.Connect(ctx, c.model, config)
	if err != nil {
		return nil, fmt.Errorf("connect live session: %w", err)
	}

	conn := &geminiConn{
		session: session,
		cb:      cb,
		log:     c.log,
	}
	go conn.receiveLoop()

	return conn, nil
}

type geminiConn struct {
	session *genai.Session
	cb      Callbacks
	log     *slog.Logger

	mu     sync.Mutex
	closed bool
}

func (g *geminiConn) SendAudio(data []byte) error {
	g.mu.Lock()
	closed := g.closed
	g.mu.Unlock()
	if closed {
		return fmt.Errorf("live connection closed")
	}

	err := g.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{
			MIMEType: audio.CaptureMIME,
			Data:     data,
		},
	})
	if err != nil {
		return fmt.Errorf("send realtime audio: %w", err)
	}
	return nil
}

func (g *geminiConn) receiveLoop() {
	for {
		resp, err := g.session.Receive()
		if err != nil {
			g.mu.Lock()
			closed := g.closed
			g.mu.Unlock()

			if !closed && g.cb.OnError != nil {
				g.cb.OnError(err)
			}
			return
		}
		g.handleMessage(resp)
	}
}

func (g *geminiConn) handleMessage(resp *genai.LiveServerMessage) {
	content := resp.ServerContent
	if content == nil {
		return
	}

	if content.InputTranscription != nil && content.InputTranscription.Text != "" {
		if g.cb.OnInputTranscript != nil {
			g.cb.OnInputTranscript(content.InputTranscription.Text)
		}
	}

	if content.OutputTranscription != nil && content.OutputTranscription.Text != "" {
		if g.cb.OnOutputTranscript != nil {
			g.cb.OnOutputTranscript(content.OutputTranscription.Text)
		}
	}

	if content.ModelTurn != nil {
		for _, part := range content.ModelTurn.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				if g.cb.OnAudio != nil {
					g.cb.OnAudio(part.InlineData.Data, audio.PlaybackRate)
				}
			}
		}
	}

	if content.TurnComplete && g.cb.OnTurnComplete != nil {
		g.cb.OnTurnComplete()
	}
}

func (g *geminiConn) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	g.mu.Unlock()

	return g.session.Close()
}
