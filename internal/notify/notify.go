// Package notify delivers market alerts to the configured push channels.
package notify

import "context"

// Alert is one notification-worthy post plus the model's reasoning.
type Alert struct {
	Content   string
	Rationale string
}

// Message renders the alert body pushed to every channel.
func (a Alert) Message() string {
	return a.Content + "\n\nAnalysis: " + a.Rationale
}

// Channel is a single delivery transport.
type Channel interface {
	Name() string
	Send(ctx context.Context, alert Alert) error
}
