package service

import (
	"context"
	"errors"
	"time"

	"alcyxob/gym-dashboard/internal/ai"
	"alcyxob/gym-dashboard/internal/state"
	"alcyxob/gym-dashboard/internal/telemetry"

	"go.uber.org/zap"
)

var (
	ErrAIUnavailable = errors.New("the AI assistant is unavailable right now")
	ErrStaleResponse = errors.New("a newer request superseded this one")
)

// CoachService runs AI coaching conversations.
type CoachService interface {
	Ask(ctx context.Context, userID, message string) (string, error)
	Clear(ctx context.Context, userID string) error
}

type coachService struct {
	store     *state.Store
	assistant ai.Assistant // nil when AI is not configured
	log       *zap.Logger
}

func NewCoachService(store *state.Store, assistant ai.Assistant, logger *zap.Logger) CoachService {
	return &coachService{store: store, assistant: assistant, log: logger}
}

// Ask appends the user's turn immediately and the reply once it arrives.
// On failure the user's turn stays in the history and no reply is added.
func (s *coachService) Ask(ctx context.Context, userID, message string) (string, error) {
	user, ok := s.store.User(userID)
	if !ok {
		return "", state.ErrUserNotFound
	}
	history := user.AICoachHistory

	token, err := s.store.BeginCoachExchange(ctx, userID, message)
	if err != nil {
		return "", err
	}
	if s.assistant == nil {
		return "", ErrAIUnavailable
	}

	start := time.Now()
	reply, err := s.assistant.Coach(ctx, history, message)
	if err != nil {
		telemetry.RecordAICall("coach", telemetry.OutcomeError, time.Since(start))
		s.log.Warn("coach request failed", zap.String("user_id", userID), zap.Error(err))
		return "", ErrAIUnavailable
	}

	applied, err := s.store.ApplyCoachReply(ctx, userID, token, reply)
	if err != nil {
		return "", err
	}
	if !applied {
		telemetry.RecordAICall("coach", telemetry.OutcomeStale, time.Since(start))
		s.log.Debug("dropped stale coach reply", zap.String("user_id", userID), zap.Uint64("token", token))
		return "", ErrStaleResponse
	}
	telemetry.RecordAICall("coach", telemetry.OutcomeOK, time.Since(start))
	return reply, nil
}

func (s *coachService) Clear(ctx context.Context, userID string) error {
	return s.store.ClearCoachHistory(ctx, userID)
}
