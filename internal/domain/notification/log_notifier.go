package notification

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to the application log. Used when no
// delivery transport is configured, and by tests.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	slog.InfoContext(ctx, "Notification dispatched",
		"recipient_id", msg.RecipientID,
		"role_group", msg.RoleGroup,
		"title", msg.Title,
	)
	return nil
}
