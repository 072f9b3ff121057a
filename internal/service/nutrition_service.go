package service

import (
	"context"
	"time"

	"alcyxob/gym-dashboard/internal/ai"
	"alcyxob/gym-dashboard/internal/domain"
	"alcyxob/gym-dashboard/internal/state"
	"alcyxob/gym-dashboard/internal/storage"
	"alcyxob/gym-dashboard/internal/telemetry"

	"go.uber.org/zap"
)

// MealRequest is a meal to log. Either field may be empty, not both.
type MealRequest struct {
	Description string
	Photo       []byte
	ContentType string
}

// NutritionService logs meals and attaches AI estimates to them.
type NutritionService interface {
	// LogMeal always returns the saved entry when it could be created. A
	// non-nil error next to a saved entry means the analysis was not applied.
	LogMeal(ctx context.Context, userID string, req MealRequest) (domain.NutritionLog, error)
	PhotoURL(ctx context.Context, photoKey string) (string, error)
}

type nutritionService struct {
	store     *state.Store
	assistant ai.Assistant        // nil when AI is not configured
	files     storage.FileStorage // nil when no bucket is configured
	log       *zap.Logger
}

func NewNutritionService(store *state.Store, assistant ai.Assistant, files storage.FileStorage, logger *zap.Logger) NutritionService {
	return &nutritionService{store: store, assistant: assistant, files: files, log: logger}
}

func (s *nutritionService) LogMeal(ctx context.Context, userID string, req MealRequest) (domain.NutritionLog, error) {
	if _, ok := s.store.User(userID); !ok {
		return domain.NutritionLog{}, state.ErrUserNotFound
	}

	entry := domain.NutritionLog{Description: req.Description}
	if len(req.Photo) > 0 {
		entry.PhotoKey = s.archivePhoto(ctx, userID, req)
		if entry.PhotoKey == "" && entry.Description == "" {
			entry.Description = "Meal photo"
		}
	}

	saved, token, err := s.store.AddNutritionLog(ctx, userID, entry)
	if err != nil {
		return domain.NutritionLog{}, err
	}
	if _, err := s.store.UnlockAchievement(ctx, userID, state.AchievementMealLogger); err != nil {
		s.log.Warn("achievement unlock failed", zap.String("user_id", userID), zap.Error(err))
	}

	if s.assistant == nil {
		return saved, ErrAIUnavailable
	}

	start := time.Now()
	analysis, err := s.assistant.AnalyzeMeal(ctx, ai.MealInput{
		Text:        req.Description,
		Image:       req.Photo,
		ContentType: req.ContentType,
	})
	if err != nil {
		telemetry.RecordAICall("meal", telemetry.OutcomeError, time.Since(start))
		s.log.Warn("meal analysis failed", zap.String("user_id", userID), zap.String("log_id", saved.ID), zap.Error(err))
		return saved, ErrAIUnavailable
	}

	applied, err := s.store.ApplyMealAnalysis(ctx, userID, saved.ID, token, analysis)
	if err != nil {
		return saved, err
	}
	if !applied {
		telemetry.RecordAICall("meal", telemetry.OutcomeStale, time.Since(start))
		return s.current(userID, saved), ErrStaleResponse
	}
	telemetry.RecordAICall("meal", telemetry.OutcomeOK, time.Since(start))
	saved.Analysis = &analysis
	return saved, nil
}

// archivePhoto uploads the photo and returns its key, or "" when it was not stored.
func (s *nutritionService) archivePhoto(ctx context.Context, userID string, req MealRequest) string {
	if s.files == nil {
		return ""
	}
	key := storage.MealPhotoKey(userID, req.ContentType)
	if err := s.files.PutObject(ctx, key, req.Photo, req.ContentType); err != nil {
		s.log.Warn("meal photo not archived", zap.String("user_id", userID), zap.Error(err))
		return ""
	}
	return key
}

// current returns the stored version of entry, or entry itself if it is gone.
func (s *nutritionService) current(userID string, entry domain.NutritionLog) domain.NutritionLog {
	u, _ := s.store.User(userID)
	for _, l := range u.NutritionLogs {
		if l.ID == entry.ID {
			return l
		}
	}
	return entry
}

func (s *nutritionService) PhotoURL(ctx context.Context, photoKey string) (string, error) {
	if s.files == nil {
		return "", storage.ErrNotConfigured
	}
	return s.files.GeneratePresignedDownloadURL(ctx, photoKey, storage.DefaultPresignedURLExpiry)
}
