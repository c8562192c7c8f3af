package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joacominatel/platewise/internal/domain"
)

// ProfileRepository implements domain.ProfileRepository using Postgres.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Save persists a profile (insert or update).
func (r *ProfileRepository) Save(ctx context.Context, profile *domain.Profile) error {
	const query = `
		INSERT INTO user_profiles (id, external_id, timezone, calorie_target, protein_target, carbs_target, fat_target, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			timezone = EXCLUDED.timezone,
			calorie_target = EXCLUDED.calorie_target,
			protein_target = EXCLUDED.protein_target,
			carbs_target = EXCLUDED.carbs_target,
			fat_target = EXCLUDED.fat_target,
			updated_at = EXCLUDED.updated_at
	`

	goals := profile.Goals()
	_, err := r.pool.Exec(ctx, query,
		profile.ID().UUID(),
		profile.ExternalID(),
		nullableString(profile.Timezone()),
		goals.Calories,
		goals.Protein,
		goals.Carbs,
		goals.Fat,
		profile.CreatedAt(),
		profile.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// FindByExternalID retrieves a profile by its external auth provider ID.
func (r *ProfileRepository) FindByExternalID(ctx context.Context, externalID string) (*domain.Profile, error) {
	const query = `
		SELECT id, external_id, timezone, calorie_target, protein_target, carbs_target, fat_target, created_at, updated_at
		FROM user_profiles
		WHERE external_id = $1
	`

	var (
		id        string
		extID     string
		timezone  *string
		calories  *float64
		protein   *float64
		carbs     *float64
		fat       *float64
		createdAt time.Time
		updatedAt time.Time
	)

	err := r.pool.QueryRow(ctx, query, externalID).Scan(
		&id, &extID, &timezone, &calories, &protein, &carbs, &fat, &createdAt, &updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning profile: %w", err)
	}

	userID, err := domain.ParseUserID(id)
	if err != nil {
		return nil, fmt.Errorf("corrupted user id in database: %w", err)
	}

	return domain.ReconstructProfile(
		userID,
		extID,
		derefString(timezone),
		goalsFromColumns(calories, protein, carbs, fat),
		createdAt,
		updatedAt,
	), nil
}

// goalsFromColumns builds targets from nullable columns; NULL and zero
// both fall back to the defaults.
func goalsFromColumns(calories, protein, carbs, fat *float64) domain.GoalTargets {
	return domain.NewGoalTargets(derefFloat(calories), derefFloat(protein), derefFloat(carbs), derefFloat(fat))
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
