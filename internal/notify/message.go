// Package notify renders account mail and hands it to a transport: SMTP,
// the RabbitMQ mail queue, or the application log.
package notify

import "context"

// Mail kinds.
const (
	KindVerification = "verification"
	KindWelcome      = "welcome"
)

// Message is a rendered mail ready for a transport.
type Message struct {
	Kind    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
