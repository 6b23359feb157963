// Package notifier announces auto-published articles to chat webhooks.
// Notifications are best effort: callers log a failure and move on.
package notifier

import (
	"context"
	"errors"

	"draftdesk/internal/domain/entity"
)

// Notifier sends a message about an article that was just published.
// externalRef is the identifier or URL returned by the publish transport.
type Notifier interface {
	NotifyPublished(ctx context.Context, article *entity.Article, externalRef string) error
}

// Multi fans a notification out to every configured channel. All channels
// are tried; their errors are joined.
type Multi []Notifier

func (m Multi) NotifyPublished(ctx context.Context, article *entity.Article, externalRef string) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyPublished(ctx, article, externalRef); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
