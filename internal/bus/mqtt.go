package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConfig names the broker and queue an MQTT producer publishes BSMs
// to. The PPM only ever publishes to this transport; the downstream
// topic is a sink, not a source.
type MQTTConfig struct {
	Host      string
	Port      int
	QueueName string
	Qos       byte
}

// MQTTProducer publishes to one MQTT broker/topic. It implements Producer
// only; its Subscriber methods return ErrNotImplemented.
type MQTTProducer struct {
	mu   sync.Mutex
	cfg  MQTTConfig
	conn paho.Client
}

// NewMQTTProducer returns a producer that connects lazily on first Produce.
func NewMQTTProducer(cfg MQTTConfig) *MQTTProducer {
	return &MQTTProducer{cfg: cfg}
}

func (p *MQTTProducer) AwaitTopic(ctx context.Context, topic string) error {
	return ErrNotImplemented
}

func (p *MQTTProducer) Poll(ctx context.Context, timeout time.Duration) (Message, ErrorCode, error) {
	return Message{}, Other, ErrNotImplemented
}

// Produce publishes payload to the configured queue; topic/partition are
// accepted for interface symmetry but ignored (MQTT addresses by topic
// string, already fixed in cfg.QueueName).
func (p *MQTTProducer) Produce(ctx context.Context, topic string, partition int32, payload []byte) (ErrorCode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		opts := paho.NewClientOptions().
			AddBroker(fmt.Sprintf("tcp://%s:%d", p.cfg.Host, p.cfg.Port)).
			SetClientID(fmt.Sprintf("ppm-%d", time.Now().UnixNano()))
		c := paho.NewClient(opts)
		if token := c.Connect(); token.Wait() && token.Error() != nil {
			return Other, token.Error()
		}
		p.conn = c
	}

	t := p.conn.Publish(p.cfg.QueueName, p.cfg.Qos, false, payload)
	if !t.WaitTimeout(5*time.Second) || t.Error() != nil {
		p.close()
		return Other, t.Error()
	}
	return None, nil
}

func (p *MQTTProducer) close() {
	if p.conn != nil && p.conn.IsConnected() {
		p.conn.Disconnect(250)
	}
	p.conn = nil
}

// Close disconnects the client, if connected.
func (p *MQTTProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.close()
	return nil
}
