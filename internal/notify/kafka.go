package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kgo "github.com/segmentio/kafka-go"
)

// ReminderMessage is the payload published for each reminder.
type ReminderMessage struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	SentAt int64  `json:"sent_at"` // epoch ms
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kgo.Message) error
	Close() error
}

// KafkaNotifier publishes reminders to a topic so other devices can pick
// them up.
type KafkaNotifier struct {
	writer  messageWriter
	timeout time.Duration
	now     func() time.Time
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	w := &kgo.Writer{
		Addr:         kgo.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kgo.LeastBytes{},
		RequiredAcks: kgo.RequireOne,
	}
	return &KafkaNotifier{writer: w, timeout: 3 * time.Second, now: time.Now}
}

func (k *KafkaNotifier) Close() error { return k.writer.Close() }

func (k *KafkaNotifier) Send(ctx context.Context, title, body string) error {
	sentAt := k.now()
	b, err := json.Marshal(ReminderMessage{Title: title, Body: body, SentAt: sentAt.UnixMilli()})
	if err != nil {
		return err
	}

	// small timeout so a reminder check doesn't hang if Kafka is down
	cctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	if err := k.writer.WriteMessages(cctx, kgo.Message{
		Key:   []byte(title),
		Value: b,
		Time:  sentAt,
	}); err != nil {
		return fmt.Errorf("kafka publish: %w", err)
	}
	return nil
}
