package notify

import (
	"context"
	"log/slog"
)

// Notifier renders account mail and sends it. It satisfies the auth
// service's notifier dependency.
type Notifier struct {
	renderer *Renderer
	sender   Sender
	logger   *slog.Logger
}

func NewNotifier(renderer *Renderer, sender Sender, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{renderer: renderer, sender: sender, logger: logger.With("component", "notifier")}
}

func (n *Notifier) SendVerification(ctx context.Context, to, firstName, token string) error {
	msg, err := n.renderer.Verification(to, firstName, token)
	if err != nil {
		return err
	}
	return n.send(ctx, msg)
}

func (n *Notifier) SendWelcome(ctx context.Context, to, firstName string) error {
	msg, err := n.renderer.Welcome(to, firstName)
	if err != nil {
		return err
	}
	return n.send(ctx, msg)
}

func (n *Notifier) send(ctx context.Context, msg Message) error {
	if err := n.sender.Send(ctx, msg); err != nil {
		return err
	}
	n.logger.DebugContext(ctx, "mail dispatched", "kind", msg.Kind, "to", msg.To)
	return nil
}
