package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// AMQPConfig names the broker and queue an AMQP producer publishes to.
type AMQPConfig struct {
	Host      string
	Port      int
	User      string
	Pass      string
	QueueName string
}

func (c AMQPConfig) url() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.User, c.Pass, c.Host, c.Port)
}

// AMQPProducer publishes to one AMQP queue. Producer-only, matching
// internal/endpoint/amqp.go's webhook-sink shape.
type AMQPProducer struct {
	mu      sync.Mutex
	cfg     AMQPConfig
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPProducer returns a producer that connects lazily on first Produce.
func NewAMQPProducer(cfg AMQPConfig) *AMQPProducer {
	return &AMQPProducer{cfg: cfg}
}

func (p *AMQPProducer) AwaitTopic(ctx context.Context, topic string) error {
	return ErrNotImplemented
}

func (p *AMQPProducer) Poll(ctx context.Context, timeout time.Duration) (Message, ErrorCode, error) {
	return Message{}, Other, ErrNotImplemented
}

// Produce publishes payload to the configured queue.
func (p *AMQPProducer) Produce(ctx context.Context, topic string, partition int32, payload []byte) (ErrorCode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		conn, err := amqp.Dial(p.cfg.url())
		if err != nil {
			return Other, err
		}
		ch, err := conn.Channel()
		if err != nil {
			conn.Close()
			return Other, err
		}
		p.conn = conn
		p.channel = ch
	}

	err := p.channel.Publish("", p.cfg.QueueName, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        payload,
	})
	if err != nil {
		p.close()
		return Other, err
	}
	return None, nil
}

func (p *AMQPProducer) close() {
	if p.conn != nil {
		p.conn.Close()
	}
	p.conn = nil
	p.channel = nil
}

// Close releases the channel and connection, if any.
func (p *AMQPProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.close()
	return nil
}
