package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/Shopify/sarama"

	"github.com/jpo-ppm/ppm/internal/log"
)

// KafkaConfig names the bits of sarama setup the PPM needs: a single
// bootstrap broker address and the partition both the consumer and
// producer use.
type KafkaConfig struct {
	Host      string
	Port      int
	Partition int32
}

func (c KafkaConfig) addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KafkaBus implements both Subscriber and Producer over a single sarama
// client, matching the PPM's one-consumer-one-producer process shape.
type KafkaBus struct {
	cfg    KafkaConfig
	client sarama.Client

	consumer       sarama.Consumer
	partConsumer   sarama.PartitionConsumer
	consumerTopic  string

	producer sarama.SyncProducer
}

// NewKafkaBus dials broker and returns a bus ready to AwaitTopic/Poll and
// Produce.
func NewKafkaBus(cfg KafkaConfig) (*KafkaBus, error) {
	scfg := sarama.NewConfig()
	scfg.Net.DialTimeout = time.Second * 5
	scfg.Net.ReadTimeout = time.Second * 10
	scfg.Net.WriteTimeout = time.Second * 10
	scfg.Consumer.Return.Errors = true
	scfg.Producer.Return.Successes = true
	scfg.Producer.Partitioner = sarama.NewManualPartitioner
	scfg.Version = sarama.V0_10_0_0

	client, err := sarama.NewClient([]string{cfg.addr()}, scfg)
	if err != nil {
		return nil, err
	}
	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		client.Close()
		return nil, err
	}
	return &KafkaBus{cfg: cfg, client: client, producer: producer}, nil
}

// AwaitTopic polls broker metadata until topic is visible, retrying with
// a fixed backoff, matching ppm.cpp's bootstrap loop (spec.md §6).
func (b *KafkaBus) AwaitTopic(ctx context.Context, topic string) error {
	const backoff = 1500 * time.Millisecond
	for {
		topics, err := b.client.Topics()
		if err == nil {
			for _, t := range topics {
				if t == topic {
					b.consumerTopic = topic
					return nil
				}
			}
		} else {
			log.Warnf("bus: metadata lookup failed: %v", err)
		}
		log.Infof("bus: topic %q not yet visible, retrying in %s", topic, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// Poll waits up to timeout for the next message on the consumer topic.
func (b *KafkaBus) Poll(ctx context.Context, timeout time.Duration) (Message, ErrorCode, error) {
	if b.partConsumer == nil {
		if err := b.openPartitionConsumer(); err != nil {
			return Message{}, Other, err
		}
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case msg, ok := <-b.partConsumer.Messages():
		if !ok {
			return Message{}, PartitionEOF, nil
		}
		return Message{
			Payload:   msg.Value,
			Offset:    msg.Offset,
			Timestamp: msg.Timestamp,
			Key:       string(msg.Key),
		}, None, nil
	case err, ok := <-b.partConsumer.Errors():
		if !ok || err == nil {
			return Message{}, Other, nil
		}
		return Message{}, classifyKafkaError(err.Err), err.Err
	case <-tctx.Done():
		return Message{}, TimedOut, nil
	}
}

func (b *KafkaBus) openPartitionConsumer() error {
	consumer, err := sarama.NewConsumerFromClient(b.client)
	if err != nil {
		return err
	}
	offset, err := b.client.GetOffset(b.consumerTopic, b.cfg.Partition, sarama.OffsetNewest)
	if err != nil {
		consumer.Close()
		return err
	}
	pc, err := consumer.ConsumePartition(b.consumerTopic, b.cfg.Partition, offset)
	if err != nil {
		consumer.Close()
		return err
	}
	b.consumer = consumer
	b.partConsumer = pc
	return nil
}

func classifyKafkaError(err error) ErrorCode {
	switch err {
	case sarama.ErrUnknownTopicOrPartition:
		return UnknownTopic
	default:
		return Other
	}
}

// Produce publishes payload to topic/partition.
func (b *KafkaBus) Produce(ctx context.Context, topic string, partition int32, payload []byte) (ErrorCode, error) {
	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Partition: partition,
		Value:     sarama.ByteEncoder(payload),
	}
	_, _, err := b.producer.SendMessage(msg)
	if err != nil {
		if err == sarama.ErrUnknownTopicOrPartition {
			return UnknownTopic, err
		}
		return Other, err
	}
	return None, nil
}

// Close releases the consumer, partition consumer, producer, and client.
func (b *KafkaBus) Close() error {
	if b.partConsumer != nil {
		b.partConsumer.Close()
	}
	if b.consumer != nil {
		b.consumer.Close()
	}
	if b.producer != nil {
		b.producer.Close()
	}
	return b.client.Close()
}
