package email

import "context"

// Message is one outbound email with a plain-text body and an optional HTML
// alternate.
type Message struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

type Provider interface {
	Send(ctx context.Context, msg Message) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, msg Message) error {
	return nil
}
