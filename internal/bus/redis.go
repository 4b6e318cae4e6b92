package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gomodule/redigo/redis"
)

// RedisConfig names the server and channel a Redis producer PUBLISHes to.
type RedisConfig struct {
	Host    string
	Port    int
	Channel string
}

// RedisProducer publishes to one Redis pub/sub channel. Producer-only,
// matching internal/endpoint/redis.go's webhook-sink shape.
type RedisProducer struct {
	mu   sync.Mutex
	cfg  RedisConfig
	conn redis.Conn
}

// NewRedisProducer returns a producer that connects lazily on first
// Produce.
func NewRedisProducer(cfg RedisConfig) *RedisProducer {
	return &RedisProducer{cfg: cfg}
}

func (p *RedisProducer) AwaitTopic(ctx context.Context, topic string) error {
	return ErrNotImplemented
}

func (p *RedisProducer) Poll(ctx context.Context, timeout time.Duration) (Message, ErrorCode, error) {
	return Message{}, Other, ErrNotImplemented
}

// Produce PUBLISHes payload on the configured channel.
func (p *RedisProducer) Produce(ctx context.Context, topic string, partition int32, payload []byte) (ErrorCode, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		conn, err := redis.Dial("tcp", fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port))
		if err != nil {
			return Other, err
		}
		p.conn = conn
	}

	if _, err := p.conn.Do("PUBLISH", p.cfg.Channel, payload); err != nil {
		p.close()
		return Other, err
	}
	return None, nil
}

func (p *RedisProducer) close() {
	if p.conn != nil {
		p.conn.Close()
	}
	p.conn = nil
}

// Close releases the connection, if any.
func (p *RedisProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.close()
	return nil
}
