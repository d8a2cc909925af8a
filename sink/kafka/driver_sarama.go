// Package kafka publishes snapshots to a Kafka topic ("publish"). The message
// key is the object key and the value is the CSV body.
package kafka

import (
	"context"
	"strings"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"tabula/internal/logging"
	"tabula/sink"
)

const Method = "publish"

type Driver struct {
	topic string
	p     sarama.SyncProducer
}

// NewDriver returns a driver publishing through p.
func NewDriver(p sarama.SyncProducer) *Driver { return &Driver{p: p} }

func (d *Driver) Configure(m sink.Metadata) error {
	d.topic = m.Destination
	if d.p != nil {
		return nil
	}
	var brokers []string
	for _, b := range strings.Split(m.Options["brokers"], ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return errors.New("kafka: option brokers is required")
	}

	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Return.Successes = true
	sc.Producer.MaxMessageBytes = 16 << 20
	var err error
	d.p, err = sarama.NewSyncProducer(brokers, sc)
	return err
}

func (d *Driver) Push(_ context.Context, key string, s sink.Snapshot) error {
	body, err := sink.Encode(s)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: d.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("snapshot_id"), Value: []byte(uuid.NewString())},
			{Key: []byte("step"), Value: []byte(s.Step)},
		},
	}
	part, off, err := d.p.SendMessage(msg)
	if err != nil {
		return errors.Wrapf(err, "kafka: publish %s", key)
	}
	logging.L().Debug("snapshot published", "topic", d.topic, "partition", part, "offset", off)
	return nil
}

func (d *Driver) Close() error {
	if d.p == nil {
		return nil
	}
	err := d.p.Close()
	d.p = nil
	return err
}

func init() { sink.Register(Method, func() sink.Adapter { return &Driver{} }) }
