package analytics

import (
	"sort"
	"time"

	"alcyxob/gym-dashboard/internal/domain"
)

// MonthlyRevenue is the completed-payment total for one calendar month.
type MonthlyRevenue struct {
	Month string  `json:"month"` // "2026-01"
	Total float64 `json:"total"`
}

func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// RevenueTrend groups completed payments by calendar month, oldest first.
func RevenueTrend(payments []domain.Payment) []MonthlyRevenue {
	totals := map[string]float64{}
	for _, p := range payments {
		if p.Status != domain.PaymentCompleted {
			continue
		}
		totals[monthKey(p.Date)] += p.Amount
	}
	trend := make([]MonthlyRevenue, 0, len(totals))
	for month, total := range totals {
		trend = append(trend, MonthlyRevenue{Month: month, Total: total})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Month < trend[j].Month })
	return trend
}

// RevenueForMonth sums completed payments in the calendar month containing now.
func RevenueForMonth(payments []domain.Payment, now time.Time) float64 {
	want := monthKey(now)
	var total float64
	for _, p := range payments {
		if p.Status == domain.PaymentCompleted && monthKey(p.Date) == want {
			total += p.Amount
		}
	}
	return total
}

// MRR sums the tier price of every client with an active membership.
// A tier reference that does not resolve contributes zero.
func MRR(users []domain.User, tiers []domain.MembershipTier) float64 {
	prices := make(map[string]float64, len(tiers))
	for _, t := range tiers {
		prices[t.ID] = t.Price
	}
	var total float64
	for _, u := range users {
		if !u.IsClient() || u.Membership.Status != domain.MembershipActive {
			continue
		}
		total += prices[u.Membership.TierID]
	}
	return total
}

// ExpensesForMonth sums expenses in the calendar month containing now.
func ExpensesForMonth(expenses []domain.Expense, now time.Time) float64 {
	want := monthKey(now)
	var total float64
	for _, e := range expenses {
		if monthKey(e.Date) == want {
			total += e.Amount
		}
	}
	return total
}

// BudgetStatus compares one budget with this month's spending in its category.
type BudgetStatus struct {
	Category  string  `json:"category"`
	Limit     float64 `json:"limit"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
	Over      bool    `json:"over"`
}

// BudgetUsage reports spending against each budget for the month containing now.
func BudgetUsage(budgets []domain.Budget, expenses []domain.Expense, now time.Time) []BudgetStatus {
	want := monthKey(now)
	spent := map[string]float64{}
	for _, e := range expenses {
		if monthKey(e.Date) == want {
			spent[e.Category] += e.Amount
		}
	}
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		s := spent[b.Category]
		out = append(out, BudgetStatus{
			Category:  b.Category,
			Limit:     b.Limit,
			Spent:     s,
			Remaining: b.Limit - s,
			Over:      s > b.Limit,
		})
	}
	return out
}

// FinancialSummary is the headline block of the revenue report.
type FinancialSummary struct {
	Trend           []MonthlyRevenue `json:"trend"`
	MonthlyRevenue  float64          `json:"monthlyRevenue"`
	MonthlyExpenses float64          `json:"monthlyExpenses"`
	NetProfit       float64          `json:"netProfit"`
	MRR             float64          `json:"mrr"`
	ActiveMembers   int              `json:"activeMembers"`
}

// Summarize assembles the revenue report for the month containing now.
func Summarize(payments []domain.Payment, expenses []domain.Expense, users []domain.User, tiers []domain.MembershipTier, now time.Time) FinancialSummary {
	revenue := RevenueForMonth(payments, now)
	spent := ExpensesForMonth(expenses, now)
	active := 0
	for _, u := range users {
		if u.IsClient() && u.Membership.Status == domain.MembershipActive {
			active++
		}
	}
	return FinancialSummary{
		Trend:           RevenueTrend(payments),
		MonthlyRevenue:  revenue,
		MonthlyExpenses: spent,
		NetProfit:       revenue - spent,
		MRR:             MRR(users, tiers),
		ActiveMembers:   active,
	}
}
