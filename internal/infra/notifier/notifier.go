// Package notifier publishes status messages. Bluesky is the primary
// destination; Discord and Slack webhooks can mirror the same text. A Chain
// publisher posts to the primary and then to each mirror in order.
//
// Every publisher satisfies status.Publisher and reports failures as
// *entity.TransportError or *entity.ConfigurationError. None of them retry:
// a failed post is left to the scheduler that invoked the run.
package notifier

import (
	"nycasp-bot/internal/usecase/status"
)

var (
	_ status.Publisher = (*BlueskyPublisher)(nil)
	_ status.Publisher = (*DiscordPublisher)(nil)
	_ status.Publisher = (*SlackPublisher)(nil)
	_ status.Publisher = (*ChainPublisher)(nil)
	_ status.Publisher = (*DryRunPublisher)(nil)
)
