package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-hub/support-service/internal/domain"
)

// ActivityRepository appends audit rows. Write-only: no read API.
type ActivityRepository interface {
	Create(ctx context.Context, record *domain.ActivityRecord) error
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository instantiates the repository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Create(ctx context.Context, record *domain.ActivityRecord) error {
	const query = `
        INSERT INTO activities (id, action, description, actor)
        VALUES ($1,$2,$3,$4)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		record.ID,
		record.Action,
		record.Description,
		record.Actor,
	).Scan(&record.CreatedAt)
}
