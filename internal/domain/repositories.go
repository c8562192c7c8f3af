package domain

import (
	"context"
	"time"
)

// MealLogRepository persists and reads meal log entries.
type MealLogRepository interface {
	// Save stores a single entry.
	Save(ctx context.Context, entry *LogEntry) error

	// SaveBatch stores many entries in one round trip.
	SaveBatch(ctx context.Context, entries []*LogEntry) error

	// FindCountedByUserInRange returns counted entries with from <= consumed_at < to,
	// ordered by consumed_at.
	FindCountedByUserInRange(ctx context.Context, userID UserID, from, to time.Time) ([]*LogEntry, error)
}

// ProfileRepository reads and writes user profiles.
type ProfileRepository interface {
	// Save creates or updates a profile.
	Save(ctx context.Context, profile *Profile) error

	// FindByExternalID returns ErrNotFound when no profile matches.
	FindByExternalID(ctx context.Context, externalID string) (*Profile, error)
}
