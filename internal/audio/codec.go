package audio

import (
	"encoding/base64"
	"fmt"
	"time"
)

// Wire format for the live model service: base64-encoded 16-bit little-endian
// PCM, mono. Capture runs at 16 kHz, model output arrives at 24 kHz.
const (
	CaptureRate  = 16000
	PlaybackRate = 24000

	CaptureMIME = "audio/pcm;rate=16000"
)

// Frame is one decoded inbound audio chunk, owned by the playback scheduler
// from decode until its scheduled end.
type Frame struct {
	Samples    []float32
	SampleRate int
}

func (f Frame) Duration() time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(f.Samples)) / float64(f.SampleRate) * float64(time.Second))
}

// EncodeCapture converts a capture block of floating-point samples in
// [-1.0, 1.0] to the outbound wire format.
func EncodeCapture(samples []float32) string {
	return base64.StdEncoding.EncodeToString(Int16ToPCMBytes(Float32ToInt16(samples)))
}

// EncodePCM converts raw 16-bit PCM bytes to the wire encoding.
func EncodePCM(pcm []byte) string {
	return base64.StdEncoding.EncodeToString(pcm)
}

// DecodePlayback reconstructs a playable frame from base64 16-bit PCM at the
// declared sample rate. Malformed payloads fail per-chunk; the session drops
// the chunk and continues.
func DecodePlayback(encoded string, sampleRate int) (Frame, error) {
	if sampleRate <= 0 {
		return Frame{}, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	pcm, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Frame{}, fmt.Errorf("decode playback chunk: %w", err)
	}
	if len(pcm)%2 != 0 {
		return Frame{}, fmt.Errorf("decode playback chunk: odd byte count %d", len(pcm))
	}

	return Frame{
		Samples:    Int16ToFloat32(PCMBytesToInt16(pcm)),
		SampleRate: sampleRate,
	}, nil
}

// DecodePlaybackBytes wraps raw 16-bit PCM bytes as a playable frame.
func DecodePlaybackBytes(pcm []byte, sampleRate int) (Frame, error) {
	if sampleRate <= 0 {
		return Frame{}, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if len(pcm)%2 != 0 {
		return Frame{}, fmt.Errorf("decode playback chunk: odd byte count %d", len(pcm))
	}
	return Frame{
		Samples:    Int16ToFloat32(PCMBytesToInt16(pcm)),
		SampleRate: sampleRate,
	}, nil
}
