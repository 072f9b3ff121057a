package api

import (
	"fmt"
	"net/http"
	"time"

	"alcyxob/gym-dashboard/internal/analytics"
	"alcyxob/gym-dashboard/internal/domain"
	"alcyxob/gym-dashboard/internal/state"

	"github.com/gin-gonic/gin"
)

// FinanceHandler serves payments, tiers, expenses, budgets and the finance report.
type FinanceHandler struct {
	store *state.Store
	now   func() time.Time
}

func NewFinanceHandler(store *state.Store) *FinanceHandler {
	return &FinanceHandler{store: store, now: func() time.Time { return time.Now().UTC() }}
}

type FinanceReport struct {
	Summary analytics.FinancialSummary `json:"summary"`
	Budgets []analytics.BudgetStatus   `json:"budgets"`
}

// --- Payments ---

func (h *FinanceHandler) ListPayments(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Payments())
}

// RecordPayment appends a payment taken outside the membership purchase flow.
func (h *FinanceHandler) RecordPayment(c *gin.Context) {
	var p domain.Payment
	if err := c.ShouldBindJSON(&p); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	recorded, err := h.store.RecordPayment(c.Request.Context(), p)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recorded)
}

// --- Tiers ---

func (h *FinanceHandler) ListTiers(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Tiers())
}

func (h *FinanceHandler) CreateTier(c *gin.Context) {
	var t domain.MembershipTier
	if err := c.ShouldBindJSON(&t); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	created, err := h.store.AddTier(c.Request.Context(), t)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *FinanceHandler) UpdateTier(c *gin.Context) {
	var t domain.MembershipTier
	if err := c.ShouldBindJSON(&t); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	t.ID = c.Param("id")
	updated, err := h.store.UpdateTier(c.Request.Context(), t)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteTier removes a tier; memberships that point at it keep the dangling ID.
func (h *FinanceHandler) DeleteTier(c *gin.Context) {
	if err := h.store.DeleteTier(c.Request.Context(), c.Param("id")); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Expenses and budgets ---

func (h *FinanceHandler) ListExpenses(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Expenses())
}

func (h *FinanceHandler) CreateExpense(c *gin.Context) {
	var e domain.Expense
	if err := c.ShouldBindJSON(&e); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	created, err := h.store.AddExpense(c.Request.Context(), e)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *FinanceHandler) ListBudgets(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Budgets())
}

func (h *FinanceHandler) SetBudget(c *gin.Context) {
	var b domain.Budget
	if err := c.ShouldBindJSON(&b); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	saved, err := h.store.SetBudget(c.Request.Context(), b)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// Report godoc
// @Summary Financial overview
// @Description Revenue counts Completed payments only, grouped by calendar month (UTC).
// @Tags Finance
// @Produce json
// @Success 200 {object} FinanceReport
// @Router /reports/finance [get]
func (h *FinanceHandler) Report(c *gin.Context) {
	now := h.now()
	payments := h.store.Payments()
	expenses := h.store.Expenses()

	c.JSON(http.StatusOK, FinanceReport{
		Summary: analytics.Summarize(payments, expenses, h.store.Users(), h.store.Tiers(), now),
		Budgets: nonNil(analytics.BudgetUsage(h.store.Budgets(), expenses, now)),
	})
}
