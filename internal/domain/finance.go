package domain

import "time"

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "Completed"
	PaymentPending   PaymentStatus = "Pending"
	PaymentFailed    PaymentStatus = "Failed"
)

// Payment is an append-only historical record.
type Payment struct {
	ID     string        `json:"id"`
	UserID string        `json:"userId"`
	Amount float64       `json:"amount"`
	Status PaymentStatus `json:"status"`
	Date   time.Time     `json:"date"`
	TierID string        `json:"tierId,omitempty"`
	Method string        `json:"method,omitempty"`
}

// MembershipTier is a named plan with a monthly price.
type MembershipTier struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	DurationMonths int      `json:"durationMonths"`
	Features       []string `json:"features,omitempty"`
}

type Expense struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
}

// Budget is a monthly spending limit for an expense category.
type Budget struct {
	Category string  `json:"category"`
	Limit    float64 `json:"limit"`
}
