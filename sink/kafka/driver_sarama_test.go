package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"tabula/internal/table"
	"tabula/sink"
)

func TestPublish_SendsCSV(t *testing.T) {
	p := mocks.NewSyncProducer(t, nil)
	p.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != "a\n1\n" {
			return errors.New("unexpected body " + string(val))
		}
		return nil
	})

	d := NewDriver(p)
	if err := d.Configure(sink.Metadata{Method: Method, Destination: "snapshots"}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	s := sink.Snapshot{Step: "S", Table: table.FromRows([]string{"a"}, []table.Row{{"a": "1"}})}
	if err := d.Push(context.Background(), "k", s); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestPublish_Failure(t *testing.T) {
	p := mocks.NewSyncProducer(t, nil)
	p.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	d := NewDriver(p)
	_ = d.Configure(sink.Metadata{Destination: "snapshots"})
	err := d.Push(context.Background(), "k", sink.Snapshot{Table: table.New("a")})
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("want ErrOutOfBrokers, got %v", err)
	}
	_ = d.Close()
}

func TestConfigure_RequiresBrokers(t *testing.T) {
	if err := (&Driver{}).Configure(sink.Metadata{Destination: "x"}); err == nil {
		t.Fatal("want error without brokers")
	}
}
