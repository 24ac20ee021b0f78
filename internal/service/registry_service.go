package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/repair-sla-service/internal/domain"
	"github.com/spec-kit/repair-sla-service/internal/repository"
)

// Snapshot is one shop's policy and status catalog, loaded once per run and
// passed by value through the call chain.
type Snapshot struct {
	ShopID   string
	Policies map[domain.CaseTypeKey]domain.SLAPolicy
	Statuses map[string]domain.StatusDefinition
	Legacy   map[string]struct{}
}

// PolicyFor returns the configured policy for typeKey, or the type default.
// The bool is false when the default was applied.
func (s Snapshot) PolicyFor(typeKey domain.CaseTypeKey) (domain.SLAPolicy, bool) {
	if policy, ok := s.Policies[typeKey]; ok && policy.MaxProcessingDays > 0 {
		return policy.Normalize(), true
	}
	return domain.DefaultPolicy(s.ShopID, typeKey), false
}

// ClassOf classifies a status key. Legacy terminal keys win; unknown keys are
// active. The bool is false for keys missing from the catalog.
func (s Snapshot) ClassOf(statusKey string) (domain.StatusClass, bool) {
	status, known := s.Statuses[statusKey]
	if _, legacy := s.Legacy[statusKey]; legacy {
		return domain.StatusClassTerminal, true
	}
	if !known {
		return domain.StatusClassActive, false
	}
	if status.Class == "" {
		status = status.Classify()
	}
	return status.Class, true
}

// ExcludedStatuses lists the terminal keys that keep a case out of the sweep,
// sorted for stable queries.
func (s Snapshot) ExcludedStatuses() []string {
	set := make(map[string]struct{}, len(s.Legacy)+len(s.Statuses))
	for key := range s.Legacy {
		set[key] = struct{}{}
	}
	for key, status := range s.Statuses {
		if status.IsFinalStatus {
			set[key] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// RegistryService loads policy and status registries.
type RegistryService struct {
	policies repository.SLAPolicyRepository
	statuses repository.CaseStatusRepository
	legacy   []string
}

// NewRegistryService creates the service. legacyFinalStatuses may be nil when
// the legacy list is switched off.
func NewRegistryService(policies repository.SLAPolicyRepository, statuses repository.CaseStatusRepository, legacyFinalStatuses []string) *RegistryService {
	return &RegistryService{policies: policies, statuses: statuses, legacy: legacyFinalStatuses}
}

// LoadSnapshot batch-fetches both registries for a shop.
func (r *RegistryService) LoadSnapshot(ctx context.Context, shopID string) (Snapshot, error) {
	var (
		policies []domain.SLAPolicy
		statuses []domain.StatusDefinition
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		policies, err = r.policies.ListByShop(gctx, shopID)
		if err != nil {
			return fmt.Errorf("load policies: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		statuses, err = r.statuses.ListByShop(gctx, shopID)
		if err != nil {
			return fmt.Errorf("load statuses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return r.buildSnapshot(shopID, policies, statuses), nil
}

// LoadForCase fetches only the policy and status a single case needs.
func (r *RegistryService) LoadForCase(ctx context.Context, c domain.RepairCase) (Snapshot, error) {
	var policies []domain.SLAPolicy
	policy, err := r.policies.GetByKey(ctx, c.ShopID, c.TypeKey)
	switch {
	case err == nil:
		policies = append(policies, *policy)
	case !errors.Is(err, pgx.ErrNoRows):
		return Snapshot{}, fmt.Errorf("load policy: %w", err)
	}

	var statuses []domain.StatusDefinition
	status, err := r.statuses.GetByKey(ctx, c.ShopID, c.StatusKey)
	switch {
	case err == nil:
		statuses = append(statuses, *status)
	case !errors.Is(err, pgx.ErrNoRows):
		return Snapshot{}, fmt.Errorf("load status: %w", err)
	}
	return r.buildSnapshot(c.ShopID, policies, statuses), nil
}

func (r *RegistryService) buildSnapshot(shopID string, policies []domain.SLAPolicy, statuses []domain.StatusDefinition) Snapshot {
	snap := Snapshot{
		ShopID:   shopID,
		Policies: make(map[domain.CaseTypeKey]domain.SLAPolicy, len(policies)),
		Statuses: make(map[string]domain.StatusDefinition, len(statuses)),
		Legacy:   make(map[string]struct{}, len(r.legacy)),
	}
	for _, p := range policies {
		snap.Policies[p.TypeKey] = p
	}
	for _, s := range statuses {
		snap.Statuses[s.Key] = s.Classify()
	}
	for _, key := range r.legacy {
		snap.Legacy[key] = struct{}{}
	}
	return snap
}
