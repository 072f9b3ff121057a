package state

import (
	"context"
	"fmt"

	"alcyxob/gym-dashboard/internal/domain"
)

// --- Payments ---

// Payments returns every payment in the order it was recorded.
func (s *Store) Payments() []domain.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.payments)
}

// RecordPayment appends a payment. Payments are never updated or removed.
func (s *Store) RecordPayment(ctx context.Context, p domain.Payment) (domain.Payment, error) {
	if p.Amount < 0 {
		return domain.Payment{}, fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	switch p.Status {
	case domain.PaymentCompleted, domain.PaymentPending, domain.PaymentFailed:
	case "":
		p.Status = domain.PaymentPending
	default:
		return domain.Payment{}, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, p.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p = s.appendPaymentLocked(p)
	s.persist(ctx, KeyPayments, s.payments)
	return p, nil
}

func (s *Store) appendPaymentLocked(p domain.Payment) domain.Payment {
	p.ID = s.newID()
	if p.Date.IsZero() {
		p.Date = s.now()
	}
	s.payments = append(s.payments, p)
	return p
}

// PurchaseMembership activates tierID for userID starting now, records a
// completed payment for the tier price and notifies the user.
func (s *Store) PurchaseMembership(ctx context.Context, userID, tierID, method string) (domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ui := s.userIndex(userID)
	if ui < 0 {
		return domain.Payment{}, ErrUserNotFound
	}
	tier, ok := s.tierLocked(tierID)
	if !ok {
		return domain.Payment{}, ErrTierNotFound
	}

	now := s.now()
	months := tier.DurationMonths
	if months <= 0 {
		months = 1
	}
	u := &s.users[ui]
	u.Membership = domain.Membership{
		Status:    domain.MembershipActive,
		StartDate: now,
		EndDate:   now.AddDate(0, months, 0),
		TierID:    tier.ID,
	}
	u.UpdatedAt = now

	payment := s.appendPaymentLocked(domain.Payment{
		UserID: userID,
		Amount: tier.Price,
		Status: domain.PaymentCompleted,
		Date:   now,
		TierID: tier.ID,
		Method: method,
	})
	s.notifyLocked(userID, fmt.Sprintf("Your %s membership is active until %s.", tier.Name, u.Membership.EndDate.Format("2006-01-02")))

	s.persist(ctx, KeyUsers, s.users)
	s.persist(ctx, KeyPayments, s.payments)
	s.persist(ctx, KeyNotifications, s.notifications)
	s.refreshSession(ctx, *u)
	return payment, nil
}

// --- Membership tiers ---

func (s *Store) Tiers() []domain.MembershipTier {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.MembershipTier, len(s.tiers))
	for i, t := range s.tiers {
		t.Features = copySlice(t.Features)
		out[i] = t
	}
	return out
}

// Tier resolves a tier reference. Users and payments may point at deleted tiers.
func (s *Store) Tier(id string) (domain.MembershipTier, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tierLocked(id)
}

func (s *Store) tierLocked(id string) (domain.MembershipTier, bool) {
	i := indexOf(s.tiers, func(t domain.MembershipTier) bool { return t.ID == id })
	if id == "" || i < 0 {
		return domain.MembershipTier{}, false
	}
	t := s.tiers[i]
	t.Features = copySlice(t.Features)
	return t, true
}

func (s *Store) AddTier(ctx context.Context, t domain.MembershipTier) (domain.MembershipTier, error) {
	if err := validateTier(t); err != nil {
		return domain.MembershipTier{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.newID()
	t.Features = copySlice(t.Features)
	s.tiers = append(s.tiers, t)
	s.persist(ctx, KeyTiers, s.tiers)
	return t, nil
}

func (s *Store) UpdateTier(ctx context.Context, t domain.MembershipTier) (domain.MembershipTier, error) {
	if err := validateTier(t); err != nil {
		return domain.MembershipTier{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.tiers, func(existing domain.MembershipTier) bool { return existing.ID == t.ID })
	if i < 0 {
		return domain.MembershipTier{}, ErrTierNotFound
	}
	t.Features = copySlice(t.Features)
	s.tiers[i] = t
	s.persist(ctx, KeyTiers, s.tiers)
	return t, nil
}

// DeleteTier removes a tier. Memberships and payments that reference it are
// left as they are.
func (s *Store) DeleteTier(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.tiers, func(t domain.MembershipTier) bool { return t.ID == id })
	if i < 0 {
		return ErrTierNotFound
	}
	s.tiers = append(s.tiers[:i], s.tiers[i+1:]...)
	s.persist(ctx, KeyTiers, s.tiers)
	return nil
}

func validateTier(t domain.MembershipTier) error {
	if t.Name == "" || t.Price < 0 || t.DurationMonths <= 0 {
		return fmt.Errorf("%w: a tier needs a name, a non-negative price and a positive duration", ErrInvalidInput)
	}
	return nil
}

// --- Expenses and budgets ---

func (s *Store) Expenses() []domain.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.expenses)
}

func (s *Store) AddExpense(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	if e.Category == "" || e.Amount <= 0 {
		return domain.Expense{}, fmt.Errorf("%w: an expense needs a category and a positive amount", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.newID()
	if e.Date.IsZero() {
		e.Date = s.now()
	}
	s.expenses = append(s.expenses, e)
	s.persist(ctx, KeyExpenses, s.expenses)
	return e, nil
}

func (s *Store) Budgets() []domain.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.budgets)
}

// SetBudget inserts or replaces the budget for b.Category.
func (s *Store) SetBudget(ctx context.Context, b domain.Budget) (domain.Budget, error) {
	if b.Category == "" || b.Limit < 0 {
		return domain.Budget{}, fmt.Errorf("%w: a budget needs a category and a non-negative limit", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.budgets, func(existing domain.Budget) bool { return existing.Category == b.Category }); i >= 0 {
		s.budgets[i] = b
	} else {
		s.budgets = append(s.budgets, b)
	}
	s.persist(ctx, KeyBudgets, s.budgets)
	return b, nil
}
