package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/arsalan-rana/cricket-bracket/models"
	"github.com/arsalan-rana/cricket-bracket/repositories"
	"github.com/google/uuid"
)

// ActivityFeed читает журнал действий для публичной ленты.
type ActivityFeed struct {
	activity repositories.ActivityRepository
}

func NewActivityFeed(activity repositories.ActivityRepository) *ActivityFeed {
	return &ActivityFeed{activity: activity}
}

func (f *ActivityFeed) Recent(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return f.activity.ListRecent(ctx, nil, limit)
}

// logActivity appends a journal entry. Failures are logged and swallowed:
// the journal is best-effort and must never fail the primary operation.
func logActivity(ctx context.Context, repo repositories.ActivityRepository, logger *slog.Logger, at time.Time, eventType, user, details string) {
	entry := models.ActivityEntry{
		ID:        uuid.NewString(),
		Timestamp: at,
		EventType: eventType,
		User:      user,
		Details:   details,
	}
	if err := repo.Append(ctx, nil, entry); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to append activity entry",
			slog.String("event_type", eventType),
			slog.String("user", user),
			slog.Any("error", err))
	}
}
