package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-sla-service/internal/domain"
)

// SLAPolicyRepository reads per-shop case type deadlines.
type SLAPolicyRepository interface {
	ListByShop(ctx context.Context, shopID string) ([]domain.SLAPolicy, error)
	GetByKey(ctx context.Context, shopID string, typeKey domain.CaseTypeKey) (*domain.SLAPolicy, error)
}

type slaPolicyRepository struct {
	pool *pgxpool.Pool
}

// NewSLAPolicyRepository instantiates repository.
func NewSLAPolicyRepository(pool *pgxpool.Pool) SLAPolicyRepository {
	return &slaPolicyRepository{pool: pool}
}

const policyColumns = `shop_id, type_key, max_processing_days, COALESCE(alert_days, 2)`

func (r *slaPolicyRepository) ListByShop(ctx context.Context, shopID string) ([]domain.SLAPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM case_types WHERE shop_id=$1`
	rows, err := r.pool.Query(ctx, query, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SLAPolicy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *policy)
	}
	return result, rows.Err()
}

func (r *slaPolicyRepository) GetByKey(ctx context.Context, shopID string, typeKey domain.CaseTypeKey) (*domain.SLAPolicy, error) {
	query := `SELECT ` + policyColumns + ` FROM case_types WHERE shop_id=$1 AND type_key=$2`
	return scanPolicy(r.pool.QueryRow(ctx, query, shopID, typeKey))
}

func scanPolicy(row pgx.Row) (*domain.SLAPolicy, error) {
	var policy domain.SLAPolicy
	if err := row.Scan(
		&policy.ShopID,
		&policy.TypeKey,
		&policy.MaxProcessingDays,
		&policy.AlertDays,
	); err != nil {
		return nil, err
	}
	return &policy, nil
}
