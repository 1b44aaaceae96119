// Package notify holds agenda.Notifier implementations: a log fallback, a
// fan-out, AWS SES email and a Kafka publisher.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/MihkelHunter/mkAgenda/internal/agenda"
	agendacfg "github.com/MihkelHunter/mkAgenda/internal/config"
)

// LogNotifier writes reminders to a logger. Hosts without an OS notification
// path use it so a reminder is at least visible somewhere.
type LogNotifier struct {
	Log *log.Logger
}

func (n LogNotifier) Send(_ context.Context, title, body string) error {
	l := n.Log
	if l == nil {
		l = log.Default()
	}
	if body = strings.TrimSpace(body); body != "" {
		l.Printf("REMINDER: %s | %s", title, strings.ReplaceAll(body, "\n", " | "))
	} else {
		l.Printf("REMINDER: %s", title)
	}
	return nil
}

// Multi sends to every notifier and joins their errors.
type Multi []agenda.Notifier

func (m Multi) Send(ctx context.Context, title, body string) error {
	var errs []error
	for _, n := range m {
		if err := n.Send(ctx, title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromConfig combines base with the sinks enabled in cfg. The returned close
// function releases sink resources and is never nil.
func FromConfig(ctx context.Context, cfg agendacfg.NotifyConfig, base agenda.Notifier) (agenda.Notifier, func() error, error) {
	sinks := Multi{}
	if base != nil {
		sinks = append(sinks, base)
	}
	closeFn := func() error { return nil }

	if cfg.Email.Enabled {
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Email.Region))
		if err != nil {
			return nil, closeFn, fmt.Errorf("load aws config: %w", err)
		}
		sinks = append(sinks, NewSESNotifier(awsCfg, cfg.Email.From, cfg.Email.To))
	}
	if cfg.Kafka.Enabled {
		k := NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		sinks = append(sinks, k)
		closeFn = k.Close
	}

	if len(sinks) == 1 {
		return sinks[0], closeFn, nil
	}
	return sinks, closeFn, nil
}
