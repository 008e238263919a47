package gateway

import (
	"encoding/json"
	"testing"

	"github.com/pathforge/coach-backend/internal/transport"
)

func TestDecodeEnvelopeAudioFrame(t *testing.T) {
	raw := wireEnvelope{
		Type:    transport.MessageTypeAudioFrame,
		Payload: json.RawMessage(`{"data":"AAAA","mime_type":"audio/pcm;rate=16000","sample_rate":16000}`),
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}

	p, ok := env.Payload.(transport.AudioFramePayload)
	if !ok {
		t.Fatalf("payload type = %T, want AudioFramePayload", env.Payload)
	}
	if p.Data != "AAAA" || p.SampleRate != 16000 {
		t.Errorf("payload = %+v", p)
	}
}

func TestDecodeEnvelopeStartWithoutPayload(t *testing.T) {
	env, err := decodeEnvelope(wireEnvelope{Type: transport.MessageTypeStart})
	if err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}

	p, ok := env.Payload.(transport.StartPayload)
	if !ok {
		t.Fatalf("payload type = %T, want StartPayload", env.Payload)
	}
	if p.Track != "" {
		t.Errorf("track = %q, want empty", p.Track)
	}
}

func TestDecodeEnvelopeStart(t *testing.T) {
	raw := wireEnvelope{
		Type:    transport.MessageTypeStart,
		Payload: json.RawMessage(`{"track":"data_science","difficulty":"hard"}`),
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		t.Fatalf("decodeEnvelope: %v", err)
	}

	p := env.Payload.(transport.StartPayload)
	if p.Track != "data_science" || p.Difficulty != "hard" {
		t.Errorf("payload = %+v", p)
	}
}

func TestDecodeEnvelopeBadAudioPayload(t *testing.T) {
	raw := wireEnvelope{
		Type:    transport.MessageTypeAudioFrame,
		Payload: json.RawMessage(`"not an object"`),
	}

	if _, err := decodeEnvelope(raw); err == nil {
		t.Fatal("expected error for malformed audio payload")
	}
}

func TestDecodeEnvelopeControlMessagesHaveNoPayload(t *testing.T) {
	for _, typ := range []transport.MessageType{transport.MessageTypeEnd, transport.MessageTypeMicDenied} {
		env, err := decodeEnvelope(wireEnvelope{Type: typ})
		if err != nil {
			t.Fatalf("decodeEnvelope(%s): %v", typ, err)
		}
		if env.Payload != nil {
			t.Errorf("%s payload = %v, want nil", typ, env.Payload)
		}
	}
}
