package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSConfig names the server and subject a NATS producer publishes to.
type NATSConfig struct {
	Host    string
	Port    int
	Subject string
}

// NATSProducer publishes to one NATS subject. Producer-only, matching
// internal/endpoint/nats.go's fire-and-forget webhook shape.
type NATSProducer struct {
	mu   sync.Mutex
	cfg  NATSConfig
	conn *nats.Conn
}

// NewNATSProducer returns a producer that connects lazily on first Produce.
func NewNATSProducer(cfg NATSConfig) *NATSProducer {
	return &NATSProducer{cfg: cfg}
}

func (p *NATSProducer) AwaitTopic(ctx context.Context, topic string) error {
	return ErrNotImplemented
}

func (p *NATSProducer) Poll(ctx context.Context, timeout time.Duration) (Message, ErrorCode, error) {
	return Message{}, Other, ErrNotImplemented
}

// Produce publishes payload to the configured subject.
func (p *NATSProducer) Produce(ctx context.Context, topic string, partition int32, payload []byte) (ErrorCode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		addr := fmt.Sprintf("nats://%s:%d", p.cfg.Host, p.cfg.Port)
		conn, err := nats.Connect(addr)
		if err != nil {
			return Other, err
		}
		p.conn = conn
	}

	if err := p.conn.Publish(p.cfg.Subject, payload); err != nil {
		p.close()
		return Other, err
	}
	return None, nil
}

func (p *NATSProducer) close() {
	if p.conn != nil {
		p.conn.Close()
	}
	p.conn = nil
}

// Close releases the connection, if any.
func (p *NATSProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.close()
	return nil
}
