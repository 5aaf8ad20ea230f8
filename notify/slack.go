// Package notify holds the hooks fired when a request is created.
package notify

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/campusvoice/campusvoice"
)

// NewSlackHook posts newly created requests to a Slack webhook. Delivery is
// best effort, the hook returns the error and the server only logs it.
func NewSlackHook(webhookURL string, logger zerolog.Logger) campusvoice.RequestHook {
	return func(r *campusvoice.Request) error {
		msg := slack.WebhookMessage{
			Text: fmt.Sprintf("New %s request: %s", r.Category, r.Content),
		}
		if err := slack.PostWebhook(webhookURL, &msg); err != nil {
			return fmt.Errorf("post slack webhook: %w", err)
		}

		logger.Debug().Str("request_id", r.ID).Msg("notified slack")
		return nil
	}
}
