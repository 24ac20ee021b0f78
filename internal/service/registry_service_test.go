package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/repair-sla-service/internal/domain"
)

func TestSnapshot_ClassOf(t *testing.T) {
	f := newSchedulerFixture("shop-a")
	snap, err := NewRegistryService(f.policies, f.statuses, []string{"in_repair"}).LoadSnapshot(context.Background(), "shop-a")
	require.NoError(t, err)

	tests := []struct {
		key       string
		wantClass domain.StatusClass
		wantKnown bool
	}{
		{"waiting_parts", domain.StatusClassPaused, true},
		{"ready", domain.StatusClassTerminal, true},
		{"in_repair", domain.StatusClassTerminal, true},
		{"unheard_of", domain.StatusClassActive, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			class, known := snap.ClassOf(tt.key)
			assert.Equal(t, tt.wantClass, class)
			assert.Equal(t, tt.wantKnown, known)
		})
	}
}

func TestSnapshot_PolicyFor(t *testing.T) {
	f := newSchedulerFixture("shop-a")
	snap, err := NewRegistryService(f.policies, f.statuses, nil).LoadSnapshot(context.Background(), "shop-a")
	require.NoError(t, err)

	policy, configured := snap.PolicyFor(domain.CaseTypeDiagnostic)
	assert.True(t, configured)
	assert.Equal(t, 5, policy.MaxProcessingDays)

	policy, configured = snap.PolicyFor("bicycle")
	assert.False(t, configured)
	assert.Equal(t, 7, policy.MaxProcessingDays)
	assert.Equal(t, domain.DefaultAlertDays, policy.AlertDays)
}

func TestSnapshot_ExcludedStatusesWithoutLegacy(t *testing.T) {
	f := newSchedulerFixture("shop-a")
	snap, err := NewRegistryService(f.policies, f.statuses, nil).LoadSnapshot(context.Background(), "shop-a")
	require.NoError(t, err)

	assert.Equal(t, []string{"ready"}, snap.ExcludedStatuses())
}

func TestRegistryService_LoadSnapshotError(t *testing.T) {
	f := newSchedulerFixture("shop-a")
	f.policies.failFor["shop-a"] = true

	_, err := NewRegistryService(f.policies, f.statuses, nil).LoadSnapshot(context.Background(), "shop-a")
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
}
