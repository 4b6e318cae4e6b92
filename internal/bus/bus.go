// Package bus defines the message-bus collaborator the PPM consumes from
// and produces to: subscribe, poll-with-timeout, produce, and a metadata
// existence check used to bootstrap before entering the consume loop.
package bus

import (
	"context"
	"errors"
	"time"
)

// ErrorCode classifies a poll failure the way the bus client reports it.
type ErrorCode int

const (
	// None means the poll succeeded and returned a Message.
	None ErrorCode = iota
	// TimedOut means no message arrived within the poll timeout.
	TimedOut
	// PartitionEOF means the consumer reached the end of the partition.
	PartitionEOF
	// UnknownTopic means the topic does not exist.
	UnknownTopic
	// UnknownPartition means the requested partition does not exist.
	UnknownPartition
	// Other is any error not covered above.
	Other
)

// String names the error code the way suppression/error logging expects.
func (c ErrorCode) String() string {
	switch c {
	case None:
		return "NONE"
	case TimedOut:
		return "TIMED_OUT"
	case PartitionEOF:
		return "PARTITION_EOF"
	case UnknownTopic:
		return "UNKNOWN_TOPIC"
	case UnknownPartition:
		return "UNKNOWN_PARTITION"
	default:
		return "OTHER"
	}
}

// Transient reports whether the error code should merely be logged and
// the consume loop continued, rather than treated as fatal.
func (c ErrorCode) Transient() bool {
	return c == TimedOut || c == PartitionEOF
}

// Fatal reports whether the error code should drop the consumer back to
// the bootstrap/reconnect loop.
func (c ErrorCode) Fatal() bool {
	return c == UnknownTopic || c == UnknownPartition || c == Other
}

// Message is one record read from the upstream topic.
type Message struct {
	Payload   []byte
	Offset    int64
	Timestamp time.Time
	Key       string
}

// ErrNotImplemented is returned by producer-only drivers' Subscriber
// methods.
var ErrNotImplemented = errors.New("bus: operation not implemented by this driver")

// Subscriber polls one topic for messages.
type Subscriber interface {
	// AwaitTopic blocks, retrying with backoff, until the topic's
	// metadata is visible or ctx is cancelled.
	AwaitTopic(ctx context.Context, topic string) error
	// Poll waits up to timeout for the next message.
	Poll(ctx context.Context, timeout time.Duration) (Message, ErrorCode, error)
	// Close releases the underlying connection.
	Close() error
}

// Producer publishes payloads to one topic/partition.
type Producer interface {
	// Produce publishes payload to topic/partition, returning an error
	// code classifying any failure.
	Produce(ctx context.Context, topic string, partition int32, payload []byte) (ErrorCode, error)
	// Close releases the underlying connection, waiting (bounded) for
	// in-flight deliveries.
	Close() error
}

// Bus is both halves of the message-bus collaborator. The kafka driver
// implements both roles fully; producer-only drivers (mqtt, nats, pubsub,
// amqp, redis) still satisfy Bus, with AwaitTopic/Poll returning
// ErrNotImplemented, so cmd/ppm-server can hold a single value per driver
// instead of juggling two interfaces that may or may not alias the same
// connection.
type Bus interface {
	Subscriber
	Producer
}
