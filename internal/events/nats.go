package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// JetStreamPublisher publishes domain events to a JetStream stream.
//
// The connection is established lazily on first publish and replaced when it
// is found closed, with a mutex ensuring concurrent callers never race to
// create duplicate connections. Publish never surfaces errors: when the
// broker is unreachable or the payload cannot be serialized, the event is
// logged and dropped.
type JetStreamPublisher struct {
	url    string
	stream string
	prefix string
	logger *slog.Logger

	mu sync.Mutex
	nc *nats.Conn
	js jetstream.JetStream
}

// Compile-time check that JetStreamPublisher implements Publisher.
var _ Publisher = (*JetStreamPublisher)(nil)

// NewJetStreamPublisher creates a publisher for the given stream and subject
// prefix. No connection is made until the first Publish call.
func NewJetStreamPublisher(url, stream, prefix string, logger *slog.Logger) *JetStreamPublisher {
	return &JetStreamPublisher{
		url:    url,
		stream: stream,
		prefix: prefix,
		logger: logger,
	}
}

// ensureConnected establishes the connection, JetStream context, and stream
// on first use, and replaces a closed connection. Declaring the stream is
// idempotent, so racing with the consumer's topology setup is harmless.
// The returned handle is safe for concurrent use.
func (p *JetStreamPublisher) ensureConnected(ctx context.Context) (jetstream.JetStream, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.js != nil && p.nc != nil && p.nc.IsConnected() {
		return p.js, nil
	}

	if p.nc != nil {
		p.nc.Close()
		p.nc = nil
		p.js = nil
	}

	nc, err := nats.Connect(p.url)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", p.url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     p.stream,
		Subjects: []string{p.prefix + ".>"},
		Storage:  jetstream.FileStorage,
	}); err != nil {
		nc.Close()
		return nil, fmt.Errorf("declaring stream %s: %w", p.stream, err)
	}

	p.nc = nc
	p.js = js
	return js, nil
}

// Publish serializes payload as JSON and publishes it on the subject
// "<prefix>.<eventName>" with the event name in the type header. All
// failures are logged and swallowed.
func (p *JetStreamPublisher) Publish(ctx context.Context, eventName string, payload any) {
	js, err := p.ensureConnected(ctx)
	if err != nil {
		p.logger.Error("cannot publish event: broker connection failed", "event", eventName, "err", err)
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("cannot publish event: payload serialization failed", "event", eventName, "err", err)
		return
	}

	msg := &nats.Msg{
		Subject: p.prefix + "." + eventName,
		Header:  nats.Header{},
		Data:    data,
	}
	msg.Header.Set(TypeHeader, eventName)
	msg.Header.Set(TimestampHeader, time.Now().UTC().Format(time.RFC3339))

	if _, err := js.PublishMsg(ctx, msg); err != nil {
		p.logger.Error("error publishing event", "event", eventName, "err", err)
		return
	}
}

// Close closes the broker connection if one was established.
func (p *JetStreamPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.nc != nil {
		p.nc.Close()
		p.nc = nil
		p.js = nil
	}
	return nil
}
