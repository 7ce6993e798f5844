// Package queue carries outbound mail over RabbitMQ so the API can hand mail
// off without waiting on SMTP.
package queue

import "time"

// DefaultMailQueue is the durable queue used when MAIL_QUEUE is not set.
const DefaultMailQueue = "mail.outbound"

// MailRequested is published for every rendered mail. It holds the complete
// message so the consumer needs no access to accounts or templates.
type MailRequested struct {
	Kind        string    `json:"kind"` // verification | welcome
	To          string    `json:"to"`
	Subject     string    `json:"subject"`
	HTML        string    `json:"html"`
	Text        string    `json:"text"`
	RequestedAt time.Time `json:"requested_at"`
}
