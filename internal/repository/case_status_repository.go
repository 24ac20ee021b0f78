package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-sla-service/internal/domain"
)

// CaseStatusRepository reads the per-shop status catalog.
type CaseStatusRepository interface {
	ListByShop(ctx context.Context, shopID string) ([]domain.StatusDefinition, error)
	GetByKey(ctx context.Context, shopID, statusKey string) (*domain.StatusDefinition, error)
}

type caseStatusRepository struct {
	pool *pgxpool.Pool
}

// NewCaseStatusRepository instantiates repository.
func NewCaseStatusRepository(pool *pgxpool.Pool) CaseStatusRepository {
	return &caseStatusRepository{pool: pool}
}

const statusColumns = `shop_id, status_key, label, pause_timer, is_final_status`

func (r *caseStatusRepository) ListByShop(ctx context.Context, shopID string) ([]domain.StatusDefinition, error) {
	query := `SELECT ` + statusColumns + ` FROM case_statuses WHERE shop_id=$1`
	rows, err := r.pool.Query(ctx, query, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusDefinition
	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *status)
	}
	return result, rows.Err()
}

func (r *caseStatusRepository) GetByKey(ctx context.Context, shopID, statusKey string) (*domain.StatusDefinition, error) {
	query := `SELECT ` + statusColumns + ` FROM case_statuses WHERE shop_id=$1 AND status_key=$2`
	return scanStatus(r.pool.QueryRow(ctx, query, shopID, statusKey))
}

func scanStatus(row pgx.Row) (*domain.StatusDefinition, error) {
	var status domain.StatusDefinition
	if err := row.Scan(
		&status.ShopID,
		&status.Key,
		&status.Label,
		&status.PauseTimer,
		&status.IsFinalStatus,
	); err != nil {
		return nil, err
	}
	classified := status.Classify()
	return &classified, nil
}
