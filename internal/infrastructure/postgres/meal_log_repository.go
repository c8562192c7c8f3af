package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joacominatel/platewise/internal/domain"
)

// mealLogColumns is the column order shared by inserts and CopyFrom.
var mealLogColumns = []string{"id", "user_id", "consumed_at", "calories", "protein", "carbs", "fat", "counted"}

const insertMealLogQuery = `
	INSERT INTO meal_logs (id, user_id, consumed_at, calories, protein, carbs, fat, counted)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

// MealLogRepository implements domain.MealLogRepository using Postgres.
type MealLogRepository struct {
	pool *pgxpool.Pool
}

// NewMealLogRepository creates a new MealLogRepository.
func NewMealLogRepository(pool *pgxpool.Pool) *MealLogRepository {
	return &MealLogRepository{pool: pool}
}

// Save persists a single meal log entry. entries are immutable once
// ingested and each gets a fresh ID, so this is a plain insert.
func (r *MealLogRepository) Save(ctx context.Context, entry *domain.LogEntry) error {
	if _, err := r.pool.Exec(ctx, insertMealLogQuery, mealLogRow(entry)...); err != nil {
		return fmt.Errorf("saving meal log: %w", err)
	}
	return nil
}

// SaveBatch persists multiple entries in a single transaction using COPY.
func (r *MealLogRepository) SaveBatch(ctx context.Context, entries []*domain.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows := make([][]any, len(entries))
	for i, entry := range entries {
		rows[i] = mealLogRow(entry)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"meal_logs"}, mealLogColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("batch inserting meal logs: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// FindCountedByUserInRange returns counted entries with from <= consumed_at < to.
func (r *MealLogRepository) FindCountedByUserInRange(ctx context.Context, userID domain.UserID, from, to time.Time) ([]*domain.LogEntry, error) {
	const query = `
		SELECT id, user_id, consumed_at, calories, protein, carbs, fat, counted
		FROM meal_logs
		WHERE user_id = $1 AND counted AND consumed_at >= $2 AND consumed_at < $3
		ORDER BY consumed_at
	`

	rows, err := r.pool.Query(ctx, query, userID.UUID(), from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("querying meal logs: %w", err)
	}
	defer rows.Close()

	var entries []*domain.LogEntry
	for rows.Next() {
		entry, err := scanMealLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating meal logs: %w", err)
	}

	return entries, nil
}

func mealLogRow(entry *domain.LogEntry) []any {
	n := entry.Nutrients()
	return []any{
		entry.ID().UUID(),
		entry.UserID().UUID(),
		entry.ConsumedAt(),
		n.Calories,
		n.Protein,
		n.Carbs,
		n.Fat,
		entry.IsCounted(),
	}
}

func scanMealLog(row pgx.Row) (*domain.LogEntry, error) {
	var (
		id         string
		userID     string
		consumedAt time.Time
		n          domain.Nutrients
		counted    bool
	)

	if err := row.Scan(&id, &userID, &consumedAt, &n.Calories, &n.Protein, &n.Carbs, &n.Fat, &counted); err != nil {
		return nil, fmt.Errorf("scanning meal log: %w", err)
	}

	// if parsing fails, we have data corruption
	entryID, err := domain.ParseMealLogID(id)
	if err != nil {
		return nil, fmt.Errorf("corrupted meal log id in database: %w", err)
	}
	owner, err := domain.ParseUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("corrupted user id in database: %w", err)
	}

	return domain.ReconstructLogEntry(entryID, owner, consumedAt.UTC(), n, counted), nil
}
