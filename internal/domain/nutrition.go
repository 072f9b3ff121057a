package domain

import "time"

// Macros are free-text estimates as returned by the analysis service ("30g").
type Macros struct {
	Protein string `json:"protein"`
	Carbs   string `json:"carbs"`
	Fat     string `json:"fat"`
}

// MealAnalysis is the structured result of a meal analysis request.
type MealAnalysis struct {
	EstimatedCalories string `json:"estimatedCalories"`
	EstimatedMacros   Macros `json:"estimatedMacros"`
	Suggestion        string `json:"suggestion"`
}

// NutritionLog is one meal entry. Analysis stays nil until the AI reply is merged.
type NutritionLog struct {
	ID          string        `json:"id"`
	Date        time.Time     `json:"date"`
	Description string        `json:"description,omitempty"`
	PhotoKey    string        `json:"photoKey,omitempty"`
	Analysis    *MealAnalysis `json:"analysis,omitempty"`
}

func (l NutritionLog) Clone() NutritionLog {
	c := l
	if l.Analysis != nil {
		a := *l.Analysis
		c.Analysis = &a
	}
	return c
}

type CoachRole string

const (
	CoachRoleUser  CoachRole = "user"
	CoachRoleModel CoachRole = "model"
)

// CoachTurn is one message of the AI coach conversation.
type CoachTurn struct {
	Role      CoachRole `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
