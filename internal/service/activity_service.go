package service

import (
	"context"

	"alcyxob/gym-dashboard/internal/domain"
	"alcyxob/gym-dashboard/internal/state"
	"alcyxob/gym-dashboard/internal/telemetry"

	"go.uber.org/zap"
)

// tenWorkouts is the history length that unlocks AchievementTenWorkouts.
const tenWorkouts = 10

// ActivityService wraps member actions that can unlock achievements.
type ActivityService interface {
	LogWorkout(ctx context.Context, userID string, session domain.WorkoutSession) (domain.WorkoutSession, []string, error)
	BookClass(ctx context.Context, classID, userID string) (domain.BookingResult, []string, error)
}

type activityService struct {
	store *state.Store
	log   *zap.Logger
}

func NewActivityService(store *state.Store, logger *zap.Logger) ActivityService {
	return &activityService{store: store, log: logger}
}

// LogWorkout records a session and returns any achievements it unlocked.
func (s *activityService) LogWorkout(ctx context.Context, userID string, session domain.WorkoutSession) (domain.WorkoutSession, []string, error) {
	logged, err := s.store.LogWorkout(ctx, userID, session)
	if err != nil {
		telemetry.RecordMutation("log_workout", telemetry.OutcomeError)
		return domain.WorkoutSession{}, nil, err
	}
	telemetry.RecordMutation("log_workout", telemetry.OutcomeOK)

	user, _ := s.store.User(userID)
	candidates := []string{state.AchievementFirstWorkout}
	if len(user.WorkoutHistory) >= tenWorkouts {
		candidates = append(candidates, state.AchievementTenWorkouts)
	}
	return logged, s.unlock(ctx, userID, candidates...), nil
}

// BookClass books a class. A first successful booking unlocks an achievement.
func (s *activityService) BookClass(ctx context.Context, classID, userID string) (domain.BookingResult, []string, error) {
	result, err := s.store.BookClass(ctx, classID, userID)
	if err != nil {
		telemetry.RecordMutation("book_class", telemetry.OutcomeError)
		return "", nil, err
	}
	if result != domain.BookingBooked {
		telemetry.RecordMutation("book_class", telemetry.OutcomeRejected)
		return result, nil, nil
	}
	telemetry.RecordMutation("book_class", telemetry.OutcomeOK)
	return result, s.unlock(ctx, userID, state.AchievementFirstClass), nil
}

func (s *activityService) unlock(ctx context.Context, userID string, ids ...string) []string {
	var unlocked []string
	for _, id := range ids {
		ok, err := s.store.UnlockAchievement(ctx, userID, id)
		if err != nil {
			s.log.Warn("achievement unlock failed", zap.String("user_id", userID), zap.String("achievement", id), zap.Error(err))
			continue
		}
		if ok {
			unlocked = append(unlocked, id)
		}
	}
	return unlocked
}
