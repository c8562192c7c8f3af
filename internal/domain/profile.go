package domain

import (
	"errors"
	"time"
)

// Profile is the slice of a user's settings the engine depends on:
// the daily targets and the timezone days are bucketed in.
type Profile struct {
	id         UserID
	externalID string // identifier from external auth provider
	timezone   string
	goals      GoalTargets
	createdAt  time.Time
	updatedAt  time.Time
}

var (
	ErrProfileExternalIDEmpty = errors.New("external id cannot be empty")
)

// NewProfile creates a new Profile.
// goals are defaulted; an unknown timezone is stored as unset.
func NewProfile(externalID, timezone string, goals GoalTargets) (*Profile, error) {
	if externalID == "" {
		return nil, ErrProfileExternalIDEmpty
	}

	now := time.Now().UTC()
	return &Profile{
		id:         NewUserID(),
		externalID: externalID,
		timezone:   normalizeTimezone(timezone),
		goals:      goals.normalized(),
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructProfile recreates a Profile from stored data.
// use this when loading from database, not for creating new profiles.
// stored goals may be zero or missing; they are defaulted here, once.
func ReconstructProfile(
	id UserID,
	externalID string,
	timezone string,
	goals GoalTargets,
	createdAt time.Time,
	updatedAt time.Time,
) *Profile {
	return &Profile{
		id:         id,
		externalID: externalID,
		timezone:   normalizeTimezone(timezone),
		goals:      goals.normalized(),
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// ID returns the profile's unique identifier.
func (p *Profile) ID() UserID {
	return p.id
}

// ExternalID returns the external auth provider identifier.
func (p *Profile) ExternalID() string {
	return p.externalID
}

// Timezone returns the IANA zone used for day bucketing, empty when unset.
func (p *Profile) Timezone() string {
	return p.timezone
}

// TimezoneOr returns the profile's zone, or fallback when unset.
func (p *Profile) TimezoneOr(fallback string) string {
	if p.timezone == "" {
		return fallback
	}
	return p.timezone
}

// Goals returns the fully populated daily targets.
func (p *Profile) Goals() GoalTargets {
	return p.goals
}

// CreatedAt returns when the profile was created.
func (p *Profile) CreatedAt() time.Time {
	return p.createdAt
}

// UpdatedAt returns when the profile was last modified.
func (p *Profile) UpdatedAt() time.Time {
	return p.updatedAt
}

func normalizeTimezone(tz string) string {
	if tz == "" || tz == "Local" {
		return ""
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return ""
	}
	return tz
}
