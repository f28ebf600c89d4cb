package notification

import "context"

// Message is a notification payload handed to the external delivery
// transport. Delivery itself (email, push, SSE) is not this system's concern.
type Message struct {
	RecipientID string // employee ID, or empty when RoleGroup is set
	RoleGroup   string // "manager" fan-out when set
	Title       string
	Body        string
	Data        map[string]interface{}
}

// Notifier is the gateway to the external notification transport.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
