package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/google/go-cmp/cmp"
	kgo "github.com/segmentio/kafka-go"

	"github.com/MihkelHunter/mkAgenda/internal/agenda"
	agendacfg "github.com/MihkelHunter/mkAgenda/internal/config"
)

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := LogNotifier{Log: log.New(&buf, "", 0)}

	if err := n.Send(context.Background(), "Reminder: gym - 2024-03-01 18:00", "leg day\nFolder: /fit"); err != nil {
		t.Fatal(err)
	}
	if err := n.Send(context.Background(), "Reminder: call", ""); err != nil {
		t.Fatal(err)
	}
	want := "REMINDER: Reminder: gym - 2024-03-01 18:00 | leg day | Folder: /fit\nREMINDER: Reminder: call\n"
	if got := buf.String(); got != want {
		t.Errorf("log output = %q, want %q", got, want)
	}
}

func TestMultiJoinsErrors(t *testing.T) {
	var calls []string
	ok := agenda.NotifierFunc(func(_ context.Context, title, _ string) error {
		calls = append(calls, "ok:"+title)
		return nil
	})
	errA := errors.New("a down")
	errB := errors.New("b down")
	failA := agenda.NotifierFunc(func(context.Context, string, string) error { return errA })
	failB := agenda.NotifierFunc(func(context.Context, string, string) error { return errB })

	err := Multi{failA, ok, failB}.Send(context.Background(), "t", "b")
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("err = %v, want both failures joined", err)
	}
	if diff := cmp.Diff([]string{"ok:t"}, calls); diff != "" {
		t.Errorf("a failing sink stopped the fan-out (-want +got):\n%s", diff)
	}
	if err := (Multi{ok}).Send(context.Background(), "t", "b"); err != nil {
		t.Errorf("all-success err = %v", err)
	}
}

func TestFromConfigBaseOnly(t *testing.T) {
	base := LogNotifier{}
	n, closeFn, err := FromConfig(context.Background(), agendacfg.NotifyConfig{}, base)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := n.(LogNotifier); !ok {
		t.Errorf("notifier = %T, want the base notifier itself", n)
	}
	if err := closeFn(); err != nil {
		t.Errorf("close = %v", err)
	}
}

func TestFromConfigKafka(t *testing.T) {
	cfg := agendacfg.NotifyConfig{Kafka: agendacfg.KafkaConfig{
		Enabled: true,
		Brokers: []string{"localhost:9092"},
		Topic:   "reminders",
	}}
	n, closeFn, err := FromConfig(context.Background(), cfg, LogNotifier{})
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	multi, ok := n.(Multi)
	if !ok || len(multi) != 2 {
		t.Fatalf("notifier = %#v, want base plus kafka", n)
	}
	if _, ok := multi[1].(*KafkaNotifier); !ok {
		t.Errorf("second sink = %T", multi[1])
	}
}

type fakeSES struct {
	in  *sesv2.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.in = in
	return &sesv2.SendEmailOutput{}, f.err
}

func TestSESNotifier(t *testing.T) {
	client := &fakeSES{}
	n := &SESNotifier{client: client, from: "agenda@example.com", to: "me@example.com"}

	if err := n.Send(context.Background(), "Reminder: rent - 2024-01-01 09:00", "pay it"); err != nil {
		t.Fatal(err)
	}
	in := client.in
	if got := aws.ToString(in.FromEmailAddress); got != "agenda@example.com" {
		t.Errorf("from = %q", got)
	}
	if diff := cmp.Diff([]string{"me@example.com"}, in.Destination.ToAddresses); diff != "" {
		t.Errorf("to (-want +got):\n%s", diff)
	}
	if got := aws.ToString(in.Content.Simple.Subject.Data); got != "Reminder: rent - 2024-01-01 09:00" {
		t.Errorf("subject = %q", got)
	}
	if got := aws.ToString(in.Content.Simple.Body.Text.Data); got != "pay it" {
		t.Errorf("body = %q", got)
	}

	client.err = errors.New("throttled")
	if err := n.Send(context.Background(), "t", "b"); err == nil || !strings.Contains(err.Error(), "ses send") {
		t.Errorf("err = %v, want wrapped ses error", err)
	}
}

type fakeWriter struct {
	msgs        []kgo.Message
	hadDeadline bool
	err         error
	closed      bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kgo.Message) error {
	_, f.hadDeadline = ctx.Deadline()
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaNotifier(t *testing.T) {
	w := &fakeWriter{}
	sentAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	k := &KafkaNotifier{writer: w, timeout: time.Second, now: func() time.Time { return sentAt }}

	if err := k.Send(context.Background(), "Reminder: x", "body"); err != nil {
		t.Fatal(err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(w.msgs))
	}
	if !w.hadDeadline {
		t.Error("publish ran without a timeout")
	}
	var got ReminderMessage
	if err := json.Unmarshal(w.msgs[0].Value, &got); err != nil {
		t.Fatal(err)
	}
	want := ReminderMessage{Title: "Reminder: x", Body: "body", SentAt: sentAt.UnixMilli()}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload (-want +got):\n%s", diff)
	}
	if string(w.msgs[0].Key) != "Reminder: x" {
		t.Errorf("key = %q", w.msgs[0].Key)
	}

	w.err = errors.New("no leader")
	if err := k.Send(context.Background(), "t", "b"); err == nil {
		t.Error("expected publish error")
	}
	if err := k.Close(); err != nil || !w.closed {
		t.Errorf("Close = %v, closed = %v", err, w.closed)
	}
}
