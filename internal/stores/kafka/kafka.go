package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

type Conf struct {
	client *kgo.Client
}

// NewConf connects a franz-go producer to the given brokers.
func NewConf(brokers string) (*Conf, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(strings.Split(brokers, ",")...),
		kgo.ProducerBatchMaxBytes(1024*1024),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}
	return &Conf{client: client}, nil
}

// ProduceMessage publishes synchronously with a short deadline. Order
// correctness never depends on the broker being up; callers treat failures
// as log-and-continue.
func (c *Conf) ProduceMessage(topic string, key, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	record := &kgo.Record{Topic: topic, Key: key, Value: value}
	if err := c.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("producing to %s: %w", topic, err)
	}
	return nil
}

func (c *Conf) Close() {
	c.client.Close()
}
