package transport

import "context"

// Connection is one live client (browser) attachment. The interview session
// owns exactly one for its lifetime.
type Connection interface {
	Send(ctx context.Context, event ServerEvent) error
	SendAudio(ctx context.Context, chunk AudioChunk) error
	Messages() <-chan ClientEnvelope
	IsConnected() bool
	Close() error
}
