package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/alfredjeanlab/shelflog/internal/store"
)

// Consumer durably receives domain events and persists them to the event
// store. It binds a durable pull consumer to the stream with explicit
// acknowledgment and at most one unacknowledged message in flight, so a
// second message is never delivered before the first is acked or nacked.
//
// A message that cannot be decoded or stored is negatively acknowledged and
// redelivered by the broker. There is no retry ceiling and no dead-letter
// destination: a permanently failing message is redelivered indefinitely.
type Consumer struct {
	url    string
	stream string
	prefix string
	name   string
	store  store.EventStore
	logger *slog.Logger

	nc     *nats.Conn
	cons   jetstream.Consumer
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConsumer creates a consumer that persists received events with st.
func NewConsumer(url, stream, prefix, name string, st store.EventStore, logger *slog.Logger) *Consumer {
	return &Consumer{
		url:    url,
		stream: stream,
		prefix: prefix,
		name:   name,
		store:  st,
		logger: logger,
	}
}

// Start connects to the broker, declares the full topology (stream plus
// durable consumer), and launches the receive loop. All declarations
// complete before the loop starts; any failure aborts startup and is
// returned to the caller. Both declarations are idempotent.
func (c *Consumer) Start(ctx context.Context) error {
	nc, err := nats.Connect(c.url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS at %s: %w", c.url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return fmt.Errorf("creating JetStream context: %w", err)
	}

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     c.stream,
		Subjects: []string{c.prefix + ".>"},
		Storage:  jetstream.FileStorage,
	}); err != nil {
		nc.Close()
		return fmt.Errorf("declaring stream %s: %w", c.stream, err)
	}

	cons, err := js.CreateOrUpdateConsumer(ctx, c.stream, jetstream.ConsumerConfig{
		Durable:       c.name,
		FilterSubject: c.prefix + ".>",
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxAckPending: 1,
	})
	if err != nil {
		nc.Close()
		return fmt.Errorf("declaring consumer %s: %w", c.name, err)
	}

	c.nc = nc
	c.cons = cons

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(runCtx)
	}()

	c.logger.Info("event consumer started", "stream", c.stream, "consumer", c.name)
	return nil
}

// run is the receive loop: fetch one message at a time, process it, repeat
// until the context is cancelled.
func (c *Consumer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		batch, err := c.cons.Fetch(1, jetstream.FetchMaxWait(time.Second))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("fetch failed", "err", err)
			time.Sleep(time.Second)
			continue
		}

		for msg := range batch.Messages() {
			c.handle(ctx, msg)
		}
		if err := batch.Error(); err != nil && ctx.Err() == nil {
			c.logger.Error("fetch batch error", "err", err)
		}
	}
}

// handle decodes one message and stores it, acking on success and nacking
// with redelivery on any failure.
func (c *Consumer) handle(ctx context.Context, msg jetstream.Msg) {
	routingKey := strings.TrimPrefix(msg.Subject(), c.prefix+".")
	eventName := msg.Headers().Get(TypeHeader)
	if eventName == "" {
		eventName = routingKey
	}

	c.logger.Info("received event", "event", eventName, "routing_key", routingKey)

	var payload json.RawMessage
	if err := json.Unmarshal(msg.Data(), &payload); err != nil {
		c.logger.Error("error decoding event payload", "event", eventName, "routing_key", routingKey, "err", err)
		c.nak(msg, eventName)
		return
	}

	if err := c.store.StoreEvent(ctx, eventName, routingKey, payload); err != nil {
		c.logger.Error("error storing event", "event", eventName, "routing_key", routingKey, "err", err)
		c.nak(msg, eventName)
		return
	}

	if err := msg.Ack(); err != nil {
		c.logger.Error("error acknowledging event", "event", eventName, "err", err)
		return
	}
	c.logger.Info("successfully processed and stored event", "event", eventName)
}

func (c *Consumer) nak(msg jetstream.Msg, eventName string) {
	if err := msg.Nak(); err != nil {
		c.logger.Error("error requeueing event", "event", eventName, "err", err)
	}
}

// Stop cancels the receive loop, waits for the in-flight message to be
// acked or nacked, then drains and closes the connection.
func (c *Consumer) Stop() {
	c.logger.Info("event consumer stopping")
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	if c.nc != nil {
		if err := c.nc.Drain(); err != nil {
			c.nc.Close()
		}
	}
}
