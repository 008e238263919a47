package transport

import "time"

type MessageType string

const (
	// Client -> server.
	MessageTypeStart      MessageType = "start"
	MessageTypeAudioFrame MessageType = "audio_frame"
	MessageTypeEnd        MessageType = "end"
	MessageTypeMicDenied  MessageType = "mic_denied"

	// Server -> client.
	MessageTypeStatus     MessageType = "status"
	MessageTypeTranscript MessageType = "transcript"
	MessageTypeAudio      MessageType = "audio"
	MessageTypeTurnDone   MessageType = "turn_done"
	MessageTypeSaved      MessageType = "saved"
	MessageTypeError      MessageType = "error"
)

// ClientEnvelope is one decoded message from the browser client.
type ClientEnvelope struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload,omitempty"`
}

// AudioFramePayload carries one captured mic block: base64 16-bit PCM plus
// the declared format descriptor.
type AudioFramePayload struct {
	Data       string `json:"data"`
	MIMEType   string `json:"mime_type"`
	SampleRate int    `json:"sample_rate"`
}

type StartPayload struct {
	Track       string `json:"track,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	ResumeFocus string `json:"resume_focus,omitempty"`
}

type ServerEvent struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload,omitempty"`
}

type StatusEvent struct {
	Status string `json:"status"`
}

type TranscriptEvent struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// AudioChunk is one scheduled playback chunk relayed to the client.
type AudioChunk struct {
	Data       string  `json:"data"`
	SampleRate int     `json:"sample_rate"`
	StartAt    float64 `json:"start_at"`
	Duration   float64 `json:"duration"`
}

type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SavedEvent struct {
	RecordID string `json:"record_id"`
	Turns    int    `json:"turns"`
}

type UserContext struct {
	UserID string
	Email  string
	Name   string
}
