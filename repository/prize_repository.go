package repository

import (
	"context"
	"fmt"

	"luckydraw/database"
	"luckydraw/models"
	"luckydraw/service"

	"github.com/jackc/pgx/v5"
)

// PrizeRepository implements the PrizeRepository interface
type PrizeRepository struct {
	q queryable
}

// NewPrizeRepository creates a new prize repository
func NewPrizeRepository(db *database.DB) *PrizeRepository {
	return &PrizeRepository{q: db.Pool}
}

// newPrizeRepositoryWithTx creates a new prize repository with a transaction
func newPrizeRepositoryWithTx(tx queryable) *PrizeRepository {
	return &PrizeRepository{q: tx}
}

// GetAll returns every prize ordered by rank
func (r *PrizeRepository) GetAll(ctx context.Context) ([]*models.Prize, error) {
	query := `
		SELECT rank, name, remaining, requires_shipping, created_at, updated_at
		FROM prizes
		ORDER BY rank
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query prizes: %w", err)
	}
	defer rows.Close()

	var prizes []*models.Prize
	for rows.Next() {
		var prize models.Prize
		if err := rows.Scan(
			&prize.Rank,
			&prize.Name,
			&prize.Remaining,
			&prize.RequiresShipping,
			&prize.CreatedAt,
			&prize.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prize: %w", err)
		}
		prizes = append(prizes, &prize)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prizes: %w", err)
	}

	return prizes, nil
}

// GetByRank retrieves a prize by rank
func (r *PrizeRepository) GetByRank(ctx context.Context, rank int) (*models.Prize, error) {
	query := `
		SELECT rank, name, remaining, requires_shipping, created_at, updated_at
		FROM prizes
		WHERE rank = $1
	`

	var prize models.Prize
	err := r.q.QueryRow(ctx, query, rank).Scan(
		&prize.Rank,
		&prize.Name,
		&prize.Remaining,
		&prize.RequiresShipping,
		&prize.CreatedAt,
		&prize.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prize by rank %d: %w", rank, err)
	}

	return &prize, nil
}

// Upsert creates the prize or replaces its name, remaining count and shipping flag
func (r *PrizeRepository) Upsert(ctx context.Context, prize *models.Prize) error {
	query := `
		INSERT INTO prizes (rank, name, remaining, requires_shipping)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (rank) DO UPDATE SET
			name = EXCLUDED.name,
			remaining = EXCLUDED.remaining,
			requires_shipping = EXCLUDED.requires_shipping,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		prize.Rank,
		prize.Name,
		prize.Remaining,
		prize.RequiresShipping,
	).Scan(&prize.CreatedAt, &prize.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert prize rank %d: %w", prize.Rank, err)
	}

	return nil
}

// UpdateRemaining sets the remaining count for a rank
func (r *PrizeRepository) UpdateRemaining(ctx context.Context, rank int, remaining int) error {
	query := `
		UPDATE prizes
		SET remaining = $2, updated_at = NOW()
		WHERE rank = $1
	`

	result, err := r.q.Exec(ctx, query, rank, remaining)
	if err != nil {
		return fmt.Errorf("failed to update remaining for rank %d: %w", rank, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", service.ErrUnknownRank, rank)
	}

	return nil
}

// DeleteExcept removes every prize whose rank is not in keep
func (r *PrizeRepository) DeleteExcept(ctx context.Context, keep []int) (int64, error) {
	query := `DELETE FROM prizes WHERE NOT (rank = ANY($1))`

	result, err := r.q.Exec(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to delete prizes: %w", err)
	}

	return result.RowsAffected(), nil
}
