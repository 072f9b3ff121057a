package state

import (
	"context"
	"testing"

	"alcyxob/gym-dashboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseMembership_ActivatesAndRecordsPayment(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "nia", domain.RoleClient, "")
	tier, err := s.AddTier(ctx, domain.MembershipTier{Name: "Gold", Price: 300, DurationMonths: 3})
	require.NoError(t, err)

	payment, err := s.PurchaseMembership(ctx, u.ID, tier.ID, "card")
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentCompleted, payment.Status)
	assert.Equal(t, 300.0, payment.Amount)
	assert.Len(t, s.Payments(), 1)

	got, _ := s.User(u.ID)
	assert.Equal(t, domain.MembershipActive, got.Membership.Status)
	assert.Equal(t, tier.ID, got.Membership.TierID)
	assert.Equal(t, testNow.AddDate(0, 3, 0), got.Membership.EndDate)

	notes := s.NotificationsFor(u.ID)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "Gold")
}

func TestPurchaseMembership_UnresolvedTier(t *testing.T) {
	s, _ := newTestStore(t)
	u := mustCreateUser(t, s, "oli", domain.RoleClient, "")
	_, err := s.PurchaseMembership(context.Background(), u.ID, "deleted", "cash")
	assert.ErrorIs(t, err, ErrTierNotFound)
	assert.Empty(t, s.Payments())
}

func TestDeleteTier_LeavesReferencesDangling(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "pat", domain.RoleClient, "")
	tier, _ := s.AddTier(ctx, domain.MembershipTier{Name: "Temp", Price: 10, DurationMonths: 1})
	_, err := s.PurchaseMembership(ctx, u.ID, tier.ID, "card")
	require.NoError(t, err)

	require.NoError(t, s.DeleteTier(ctx, tier.ID))

	got, _ := s.User(u.ID)
	assert.Equal(t, tier.ID, got.Membership.TierID)
	_, ok := s.Tier(got.Membership.TierID)
	assert.False(t, ok)
}

func TestRecordPayment_Validation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.RecordPayment(ctx, domain.Payment{Amount: -1, Status: domain.PaymentCompleted})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.RecordPayment(ctx, domain.Payment{Amount: 1, Status: "Refunded"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	p, err := s.RecordPayment(ctx, domain.Payment{Amount: 50})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, p.Status)
	assert.Equal(t, testNow, p.Date)
}

func TestSetBudget_UpsertsByCategory(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	_, err := s.SetBudget(ctx, domain.Budget{Category: "Utilities", Limit: 100})
	require.NoError(t, err)
	_, err = s.SetBudget(ctx, domain.Budget{Category: "Utilities", Limit: 250})
	require.NoError(t, err)

	assert.Equal(t, []domain.Budget{{Category: "Utilities", Limit: 250}}, s.Budgets())
}

func TestSeedCatalog_OnlyWhenEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	s.SeedCatalog(ctx)
	s.SeedCatalog(ctx)

	assert.Len(t, s.Tiers(), 3)
	assert.Len(t, s.Achievements(), 4)
	_, ok := s.Achievement(AchievementFirstClass)
	assert.True(t, ok)
}
