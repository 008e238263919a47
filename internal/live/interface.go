package live

import "context"

// Conn is an open bidirectional stream to the live model service.
type Conn interface {
	// SendAudio forwards one block of 16 kHz mono 16-bit PCM.
	SendAudio(data []byte) error
	Close() error
}

// Callbacks receive service events. All callbacks run on the connection's
// receive goroutine; handlers must not block.
type Callbacks struct {
	// OnAudio delivers one synthesized speech chunk (16-bit PCM, 24 kHz mono).
	OnAudio func(pcm []byte, sampleRate int)
	// OnInputTranscript delivers a partial transcript fragment of the user's
	// speech for the current turn.
	OnInputTranscript func(text string)
	// OnOutputTranscript delivers a partial transcript fragment of the
	// model's speech for the current turn.
	OnOutputTranscript func(text string)
	// OnTurnComplete signals the end of the current exchange turn.
	OnTurnComplete func()
	// OnError reports a fatal stream error; the connection is unusable after.
	OnError func(err error)
}

// SessionOptions configure one live session.
type SessionOptions struct {
	SystemInstruction string
	Voice             string
}

// Dialer opens live connections. The interview session depends on this
// interface so tests can substitute a fake service.
type Dialer interface {
	Dial(ctx context.Context, opts SessionOptions, cb Callbacks) (Conn, error)
}
