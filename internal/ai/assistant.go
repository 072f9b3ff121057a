// Package ai is the boundary to the external generative model used by the
// coaching and meal analysis features.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"alcyxob/gym-dashboard/internal/domain"
)

var (
	ErrNotConfigured     = errors.New("ai assistant is not configured")
	ErrEmptyResponse     = errors.New("ai assistant returned no content")
	ErrMalformedResponse = errors.New("ai assistant returned a malformed analysis")
)

// CoachInstruction is the fixed system prompt for coaching conversations.
const CoachInstruction = "You are an encouraging, safety-conscious personal fitness coach working at a gym. " +
	"Answer questions about training, recovery and nutrition in a few short paragraphs. " +
	"Recommend seeing a physiotherapist or doctor for pain or injury."

// MealInstruction asks for the structured meal analysis shape.
const MealInstruction = "You are a nutritionist. Estimate the nutrition of the described or pictured meal. " +
	`Reply with only a JSON object of the form {"estimatedCalories": "450 kcal", ` +
	`"estimatedMacros": {"protein": "30g", "carbs": "40g", "fat": "15g"}, "suggestion": "one short tip"}.`

// MealInput carries optional text and an optional photo.
type MealInput struct {
	Text        string
	Image       []byte
	ContentType string // e.g. image/jpeg
}

// Assistant is the request/response contract with the model.
type Assistant interface {
	// Coach answers message given the earlier turns of the conversation.
	Coach(ctx context.Context, history []domain.CoachTurn, message string) (string, error)
	// AnalyzeMeal returns calorie and macro estimates for a meal.
	AnalyzeMeal(ctx context.Context, in MealInput) (domain.MealAnalysis, error)
}

// ParseMealAnalysis decodes a model reply into a MealAnalysis. Markdown code
// fences around the JSON are tolerated; anything else that does not decode,
// or lacks a calorie estimate, is ErrMalformedResponse.
func ParseMealAnalysis(content string) (domain.MealAnalysis, error) {
	body := strings.TrimSpace(content)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}
	var analysis domain.MealAnalysis
	if err := json.Unmarshal([]byte(body), &analysis); err != nil {
		return domain.MealAnalysis{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if strings.TrimSpace(analysis.EstimatedCalories) == "" {
		return domain.MealAnalysis{}, fmt.Errorf("%w: missing estimatedCalories", ErrMalformedResponse)
	}
	return analysis, nil
}
