package notify

import (
	"context"
	"log/slog"

	"github.com/iliyamo/dropit-api/internal/queue"
)

// EventPublisher is implemented by *queue.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.MailRequested) error
}

// QueueSender hands messages to the mail queue; the mailer command delivers
// them.
type QueueSender struct {
	pub EventPublisher
}

func NewQueueSender(pub EventPublisher) *QueueSender { return &QueueSender{pub: pub} }

func (s *QueueSender) Send(ctx context.Context, m Message) error {
	return s.pub.Publish(ctx, queue.MailRequested{
		Kind:    m.Kind,
		To:      m.To,
		Subject: m.Subject,
		HTML:    m.HTML,
		Text:    m.Text,
	})
}

// LogSender records that a mail would have been sent. Bodies are not logged
// since verification mail carries a live token.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger.With("component", "mail")}
}

func (s *LogSender) Send(ctx context.Context, m Message) error {
	s.logger.InfoContext(ctx, "mail not delivered (log transport)", "kind", m.Kind, "to", m.To, "subject", m.Subject)
	return nil
}
