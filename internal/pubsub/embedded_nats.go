package pubsub

import (
	"fmt"
	"time"

	"github.com/dom/civ-draft/internal/logger"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// EmbeddedNATSPubSub runs a NATS server with JetStream inside the process and
// uses it exactly like an external one.
type EmbeddedNATSPubSub struct {
	*NATSPubSub
	server *server.Server
}

// EmbeddedNATSOptions configures the embedded NATS server
type EmbeddedNATSOptions struct {
	Port       int    // -1 picks a random free port
	Subject    string
	StreamName string
	StoreDir   string // empty keeps JetStream in memory
}

// DefaultEmbeddedNATSOptions returns options for local development.
func DefaultEmbeddedNATSOptions() EmbeddedNATSOptions {
	return EmbeddedNATSOptions{
		Port:       -1,
		Subject:    "draft.events",
		StreamName: defaultStreamName,
	}
}

// NewEmbeddedNATSPubSub starts the server and connects a broker to it.
func NewEmbeddedNATSPubSub(opts EmbeddedNATSOptions) (*EmbeddedNATSPubSub, error) {
	port := opts.Port
	if port == 0 {
		port = -1
	}

	serverOpts := &server.Options{
		Port:      port,
		JetStream: true,
		NoSigs:    true,
	}
	if opts.StoreDir != "" {
		serverOpts.StoreDir = opts.StoreDir
	}

	ns, err := server.NewServer(serverOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedded NATS server: %w", err)
	}
	ns.SetLogger(&natsLogger{log: logger.Named("nats-server").Sugar()}, false, false)

	go ns.Start()

	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("embedded NATS server failed to start within timeout")
	}
	logger.Named("pubsub.nats").Info("Embedded NATS server started", zap.String("url", ns.ClientURL()))

	nc, err := nats.Connect(ns.ClientURL())
	if err != nil {
		ns.Shutdown()
		return nil, fmt.Errorf("failed to connect to embedded NATS: %w", err)
	}

	storage := nats.MemoryStorage
	if opts.StoreDir != "" {
		storage = nats.FileStorage
	}
	inner, err := newNATSPubSub(nc, NATSOptions{
		Subject:    opts.Subject,
		StreamName: opts.StreamName,
		Storage:    storage,
		MaxAge:     time.Hour,
	})
	if err != nil {
		nc.Close()
		ns.Shutdown()
		return nil, err
	}

	return &EmbeddedNATSPubSub{NATSPubSub: inner, server: ns}, nil
}

// Close closes the client side and shuts the server down.
func (p *EmbeddedNATSPubSub) Close() {
	p.NATSPubSub.Close()
	if p.server != nil {
		p.server.Shutdown()
		p.server.WaitForShutdown()
	}
}

// ServerURL returns the client URL of the embedded server.
func (p *EmbeddedNATSPubSub) ServerURL() string {
	return p.server.ClientURL()
}

// natsLogger adapts zap to the NATS server logger interface
type natsLogger struct {
	log *zap.SugaredLogger
}

func (l *natsLogger) Noticef(format string, v ...interface{}) { l.log.Infof(format, v...) }
func (l *natsLogger) Warnf(format string, v ...interface{})   { l.log.Warnf(format, v...) }
func (l *natsLogger) Fatalf(format string, v ...interface{})  { l.log.Errorf(format, v...) }
func (l *natsLogger) Errorf(format string, v ...interface{})  { l.log.Errorf(format, v...) }
func (l *natsLogger) Debugf(format string, v ...interface{})  { l.log.Debugf(format, v...) }
func (l *natsLogger) Tracef(format string, v ...interface{})  { l.log.Debugf(format, v...) }
