package bus

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
)

// PubSubConfig names the GCP project/topic a Pub/Sub producer publishes
// BSMs to.
type PubSubConfig struct {
	Project string
	Topic   string
}

// PubSubProducer publishes to one Cloud Pub/Sub topic. Producer-only,
// matching internal/endpoint/pubsub.go's webhook-sink shape.
type PubSubProducer struct {
	mu    sync.Mutex
	cfg   PubSubConfig
	svc   *pubsub.Client
	topic *pubsub.Topic
}

// NewPubSubProducer returns a producer that connects lazily on first
// Produce.
func NewPubSubProducer(cfg PubSubConfig) *PubSubProducer {
	return &PubSubProducer{cfg: cfg}
}

func (p *PubSubProducer) AwaitTopic(ctx context.Context, topic string) error {
	return ErrNotImplemented
}

func (p *PubSubProducer) Poll(ctx context.Context, timeout time.Duration) (Message, ErrorCode, error) {
	return Message{}, Other, ErrNotImplemented
}

// Produce publishes payload to the configured topic.
func (p *PubSubProducer) Produce(ctx context.Context, topic string, partition int32, payload []byte) (ErrorCode, error) {
	p.mu.Lock()
	if p.svc == nil {
		svc, err := pubsub.NewClient(ctx, p.cfg.Project)
		if err != nil {
			p.mu.Unlock()
			return Other, err
		}
		p.svc = svc
		p.topic = svc.Topic(p.cfg.Topic)
	}
	t := p.topic
	p.mu.Unlock()

	result := t.Publish(ctx, &pubsub.Message{Data: payload})
	if _, err := result.Get(ctx); err != nil {
		return Other, err
	}
	return None, nil
}

// Close releases the client, if any.
func (p *PubSubProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.svc != nil {
		p.svc.Close()
		p.svc = nil
	}
	return nil
}
