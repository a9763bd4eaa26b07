// Package notify abstracts the outbound message transport. Actual delivery
// (email/SMS) is an external collaborator; this service only hands it a
// rendered message and records the outcome.
package notify

import "log"

type Message struct {
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(msg Message) error
}

// LogSender is the default transport: it logs instead of sending. Useful in
// development and as the stand-in until a real relay is configured.
type LogSender struct{}

func (LogSender) Send(msg Message) error {
	log.Printf("notify: to=%s subject=%q", msg.To, msg.Subject)
	return nil
}
