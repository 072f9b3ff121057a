package state

import (
	"context"
	"fmt"

	"alcyxob/gym-dashboard/internal/domain"
)

// AI-backed flows append their outbound entry first and apply the reply later.
// Each flow gets a token; a reply is only applied while its token is still the
// latest one for that entity, so a slow reply cannot overwrite a newer edit.

func coachSeqKey(userID string) string { return "coach:" + userID }
func mealSeqKey(logID string) string   { return "meal:" + logID }

// bumpLocked advances the sequence for key. Caller holds s.mu.
func (s *Store) bumpLocked(key string) uint64 {
	s.aiSeq[key]++
	return s.aiSeq[key]
}

// BeginCoachExchange appends the user's turn and returns the request token.
func (s *Store) BeginCoachExchange(ctx context.Context, userID, text string) (uint64, error) {
	if text == "" {
		return 0, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(userID)
	if i < 0 {
		return 0, ErrUserNotFound
	}
	u := &s.users[i]
	u.AICoachHistory = append(u.AICoachHistory, domain.CoachTurn{
		Role:      domain.CoachRoleUser,
		Text:      text,
		Timestamp: s.now(),
	})
	s.persist(ctx, KeyUsers, s.users)
	s.refreshSession(ctx, *u)
	return s.bumpLocked(coachSeqKey(userID)), nil
}

// ApplyCoachReply appends the model's reply if token is still current.
// It reports false when the reply was stale and dropped.
func (s *Store) ApplyCoachReply(ctx context.Context, userID string, token uint64, reply string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(userID)
	if i < 0 {
		return false, ErrUserNotFound
	}
	if s.aiSeq[coachSeqKey(userID)] != token {
		return false, nil
	}
	u := &s.users[i]
	u.AICoachHistory = append(u.AICoachHistory, domain.CoachTurn{
		Role:      domain.CoachRoleModel,
		Text:      reply,
		Timestamp: s.now(),
	})
	s.persist(ctx, KeyUsers, s.users)
	s.refreshSession(ctx, *u)
	return true, nil
}

// ClearCoachHistory wipes the conversation and invalidates in-flight replies.
func (s *Store) ClearCoachHistory(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(userID)
	if i < 0 {
		return ErrUserNotFound
	}
	s.users[i].AICoachHistory = nil
	s.bumpLocked(coachSeqKey(userID))
	s.persist(ctx, KeyUsers, s.users)
	s.refreshSession(ctx, s.users[i])
	return nil
}

// AddNutritionLog prepends a meal entry and returns it with a request token
// for a pending analysis.
func (s *Store) AddNutritionLog(ctx context.Context, userID string, log domain.NutritionLog) (domain.NutritionLog, uint64, error) {
	if log.Description == "" && log.PhotoKey == "" {
		return domain.NutritionLog{}, 0, fmt.Errorf("%w: a meal needs a description or a photo", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(userID)
	if i < 0 {
		return domain.NutritionLog{}, 0, ErrUserNotFound
	}
	l := log.Clone()
	l.ID = s.newID()
	if l.Date.IsZero() {
		l.Date = s.now()
	}
	u := &s.users[i]
	u.NutritionLogs = append([]domain.NutritionLog{l}, u.NutritionLogs...)
	s.persist(ctx, KeyUsers, s.users)
	s.refreshSession(ctx, *u)
	return l.Clone(), s.bumpLocked(mealSeqKey(l.ID)), nil
}

// UpdateNutritionLog replaces a meal entry by hand. Any analysis still in
// flight for it is discarded when it arrives.
func (s *Store) UpdateNutritionLog(ctx context.Context, userID string, log domain.NutritionLog) (domain.NutritionLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(userID)
	if i < 0 {
		return domain.NutritionLog{}, ErrUserNotFound
	}
	u := &s.users[i]
	j := indexOf(u.NutritionLogs, func(l domain.NutritionLog) bool { return l.ID == log.ID })
	if j < 0 {
		return domain.NutritionLog{}, ErrNutritionLogNotFound
	}
	l := log.Clone()
	l.Date = u.NutritionLogs[j].Date
	u.NutritionLogs[j] = l
	s.bumpLocked(mealSeqKey(l.ID))
	s.persist(ctx, KeyUsers, s.users)
	s.refreshSession(ctx, *u)
	return l.Clone(), nil
}

// ApplyMealAnalysis merges analysis into the entry if token is still current.
func (s *Store) ApplyMealAnalysis(ctx context.Context, userID, logID string, token uint64, analysis domain.MealAnalysis) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(userID)
	if i < 0 {
		return false, ErrUserNotFound
	}
	u := &s.users[i]
	j := indexOf(u.NutritionLogs, func(l domain.NutritionLog) bool { return l.ID == logID })
	if j < 0 {
		return false, ErrNutritionLogNotFound
	}
	if s.aiSeq[mealSeqKey(logID)] != token {
		return false, nil
	}
	a := analysis
	u.NutritionLogs[j].Analysis = &a
	s.persist(ctx, KeyUsers, s.users)
	s.refreshSession(ctx, *u)
	return true, nil
}
