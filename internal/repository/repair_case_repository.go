package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-sla-service/internal/domain"
)

// RepairCaseRepository is the read-only case store.
type RepairCaseRepository interface {
	ListActive(ctx context.Context, shopID string, excludedStatuses []string) ([]domain.RepairCase, error)
	GetByID(ctx context.Context, shopID, caseID string) (*domain.RepairCase, error)
}

type repairCaseRepository struct {
	pool *pgxpool.Pool
}

// NewRepairCaseRepository instantiates repository.
func NewRepairCaseRepository(pool *pgxpool.Pool) RepairCaseRepository {
	return &repairCaseRepository{pool: pool}
}

const caseColumns = `id, shop_id, type_key, status_key, created_at`

func (r *repairCaseRepository) ListActive(ctx context.Context, shopID string, excludedStatuses []string) ([]domain.RepairCase, error) {
	query, args := buildActiveCasesQuery(shopID, excludedStatuses)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RepairCase
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *repairCaseRepository) GetByID(ctx context.Context, shopID, caseID string) (*domain.RepairCase, error) {
	query := `SELECT ` + caseColumns + ` FROM repair_cases WHERE shop_id=$1 AND id=$2`
	return scanCase(r.pool.QueryRow(ctx, query, shopID, caseID))
}

func buildActiveCasesQuery(shopID string, excludedStatuses []string) (string, []any) {
	clauses := []string{"shop_id=$1"}
	args := []any{shopID}

	if len(excludedStatuses) > 0 {
		placeholders := make([]string, len(excludedStatuses))
		for i, status := range excludedStatuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status_key NOT IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`SELECT %s FROM repair_cases WHERE %s ORDER BY created_at ASC`,
		caseColumns, strings.Join(clauses, " AND "))
	return query, args
}

func scanCase(row pgx.Row) (*domain.RepairCase, error) {
	var c domain.RepairCase
	if err := row.Scan(
		&c.ID,
		&c.ShopID,
		&c.TypeKey,
		&c.StatusKey,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
