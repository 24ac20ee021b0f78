package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-sla-service/internal/domain"
)

// ShopRepository reads shop tenants.
type ShopRepository interface {
	ListAlertEnabled(ctx context.Context) ([]domain.Shop, error)
}

// ErrStoreNotConfigured is returned when no database pool was established.
var ErrStoreNotConfigured = errors.New("store not configured")

type shopRepository struct {
	pool *pgxpool.Pool
}

// NewShopRepository instantiates repository.
func NewShopRepository(pool *pgxpool.Pool) ShopRepository {
	return &shopRepository{pool: pool}
}

func (r *shopRepository) ListAlertEnabled(ctx context.Context) ([]domain.Shop, error) {
	if r.pool == nil {
		return nil, ErrStoreNotConfigured
	}
	const query = `
        SELECT id, name, sla_alerts_enabled
        FROM shops WHERE sla_alerts_enabled = TRUE ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Shop
	for rows.Next() {
		var shop domain.Shop
		if err := rows.Scan(&shop.ID, &shop.Name, &shop.SLAAlertsEnabled); err != nil {
			return nil, err
		}
		result = append(result, shop)
	}
	return result, rows.Err()
}
