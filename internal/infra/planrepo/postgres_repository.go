package planrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haircarepro/server/internal/domain/careplan"
)

// PostgresRepository persists care plans in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new care plan row.
func (r *PostgresRepository) Create(ctx context.Context, plan careplan.CarePlan) error {
	survey, err := json.Marshal(plan.SurveyInput)
	if err != nil {
		return fmt.Errorf("encode survey input: %w", err)
	}
	canonical, err := json.Marshal(plan.Plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO care_plans (id, owner_id, survey_input, plan, artifact_key, reminder_days, last_reminder_sent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, plan.ID, plan.OwnerID, survey, canonical, plan.ArtifactKey, toDays(plan.ReminderDays), plan.LastReminderSent, plan.CreatedAt)
	return err
}

// ListByOwner returns the owner's plans, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]careplan.CarePlan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, survey_input, plan, artifact_key, reminder_days, last_reminder_sent, created_at
		FROM care_plans
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlans(rows)
}

// ListDue expresses the reminder eligibility predicate as a single query:
// the weekday is in the plan's reminder days, and the last reminder is either
// absent or older than the threshold.
func (r *PostgresRepository) ListDue(ctx context.Context, day time.Weekday, olderThan time.Time) ([]careplan.CarePlan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, survey_input, plan, artifact_key, reminder_days, last_reminder_sent, created_at
		FROM care_plans
		WHERE $1 = ANY(reminder_days)
		  AND (last_reminder_sent IS NULL OR last_reminder_sent < $2)
		ORDER BY created_at
	`, int32(day), olderThan)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlans(rows)
}

// MarkReminded is a conditional update: the stamp only lands while the stored
// timestamp is still absent or older than threshold, so overlapping runs
// cannot both record a send.
func (r *PostgresRepository) MarkReminded(ctx context.Context, id uuid.UUID, sentAt, threshold time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE care_plans
		SET last_reminder_sent = $2
		WHERE id = $1
		  AND (last_reminder_sent IS NULL OR last_reminder_sent < $3)
	`, id, sentAt, threshold)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanPlans(rows rowScanner) ([]careplan.CarePlan, error) {
	var plans []careplan.CarePlan
	for rows.Next() {
		var (
			plan      careplan.CarePlan
			survey    []byte
			canonical []byte
			days      []int32
			lastSent  *time.Time
		)
		if err := rows.Scan(&plan.ID, &plan.OwnerID, &survey, &canonical, &plan.ArtifactKey, &days, &lastSent, &plan.CreatedAt); err != nil {
			return nil, err
		}
		if len(survey) > 0 {
			if err := json.Unmarshal(survey, &plan.SurveyInput); err != nil {
				return nil, fmt.Errorf("decode survey input: %w", err)
			}
		}
		if len(canonical) > 0 {
			if err := json.Unmarshal(canonical, &plan.Plan); err != nil {
				return nil, fmt.Errorf("decode plan: %w", err)
			}
		}
		plan.ReminderDays = fromDays(days)
		if lastSent != nil {
			utc := lastSent.UTC()
			plan.LastReminderSent = &utc
		}
		plan.CreatedAt = plan.CreatedAt.UTC()
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

func toDays(days []int) []int32 {
	out := make([]int32, 0, len(days))
	for _, d := range days {
		out = append(out, int32(d))
	}
	return out
}

func fromDays(days []int32) []int {
	out := make([]int, 0, len(days))
	for _, d := range days {
		out = append(out, int(d))
	}
	return out
}

var _ careplan.Repository = (*PostgresRepository)(nil)
