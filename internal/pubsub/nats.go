package pubsub

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dom/civ-draft/internal/logger"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const defaultStreamName = "DRAFT_EVENTS"

// NATSPubSub publishes events to a JetStream subject and delivers every event
// seen on that subject, including its own, to local subscribers. Several
// server instances sharing one NATS cluster therefore see the same events.
type NATSPubSub struct {
	fanout
	nc      *nats.Conn
	js      nats.JetStreamContext
	sub     *nats.Subscription
	subject string
}

// NATSOptions configures the JetStream stream backing the broker.
type NATSOptions struct {
	Subject    string
	StreamName string
	Storage    nats.StorageType
	MaxAge     time.Duration
}

// NewNATSPubSub connects to natsURL and subscribes to subject.
func NewNATSPubSub(natsURL string, opts NATSOptions) (*NATSPubSub, error) {
	nc, err := nats.Connect(natsURL, nats.Name("civ-draft"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	ps, err := newNATSPubSub(nc, opts)
	if err != nil {
		nc.Close()
		return nil, err
	}
	return ps, nil
}

func newNATSPubSub(nc *nats.Conn, opts NATSOptions) (*NATSPubSub, error) {
	log := logger.Named("pubsub.nats")

	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	streamName := opts.StreamName
	if streamName == "" {
		streamName = defaultStreamName
	}
	if _, err := js.StreamInfo(streamName); err != nil {
		_, err = js.AddStream(&nats.StreamConfig{
			Name:     streamName,
			Subjects: []string{opts.Subject},
			Storage:  opts.Storage,
			MaxAge:   opts.MaxAge,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
		log.Info("JetStream stream created", zap.String("stream", streamName), zap.String("subject", opts.Subject))
	}

	ps := &NATSPubSub{
		fanout:  fanout{buffer: 128, log: log},
		nc:      nc,
		js:      js,
		subject: opts.Subject,
	}

	ps.sub, err = js.Subscribe(opts.Subject, ps.handle, nats.ManualAck(), nats.DeliverNew())
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", opts.Subject, err)
	}
	return ps, nil
}

func (p *NATSPubSub) handle(msg *nats.Msg) {
	var event Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		p.log.Error("Failed to unmarshal event", zap.Error(err))
		_ = msg.Term()
		return
	}
	p.deliver(event)
	_ = msg.Ack()
}

// Publish writes the event to JetStream. Local delivery happens when the
// message comes back through the subscription.
func (p *NATSPubSub) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error("Failed to marshal event", zap.Error(err), zap.String("type", event.Type))
		return
	}
	if _, err := p.js.Publish(p.subject, data); err != nil {
		p.log.Error("Failed to publish to NATS", zap.Error(err), zap.String("subject", p.subject), zap.String("type", event.Type))
	}
}

func (p *NATSPubSub) Subscribe() chan Event {
	return p.subscribe()
}

func (p *NATSPubSub) Unsubscribe(ch chan Event) {
	p.unsubscribe(ch)
}

// Close drains the subscription and closes the connection.
func (p *NATSPubSub) Close() {
	if p.sub != nil {
		_ = p.sub.Unsubscribe()
	}
	if p.nc != nil {
		p.nc.Close()
	}
	p.closeAll()
}

// SubscriberCount returns the number of active local subscribers.
func (p *NATSPubSub) SubscriberCount() int {
	return p.count()
}
