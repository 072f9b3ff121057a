package state

import (
	"context"
	"fmt"

	"alcyxob/gym-dashboard/internal/domain"
)

// --- Achievements ---

func (s *Store) Achievements() []domain.Achievement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.achievements)
}

func (s *Store) Achievement(id string) (domain.Achievement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.achievementLocked(id)
}

func (s *Store) achievementLocked(id string) (domain.Achievement, bool) {
	i := indexOf(s.achievements, func(a domain.Achievement) bool { return a.ID == id })
	if i < 0 {
		return domain.Achievement{}, false
	}
	return s.achievements[i], true
}

func (s *Store) AddAchievement(ctx context.Context, a domain.Achievement) (domain.Achievement, error) {
	if a.Name == "" {
		return domain.Achievement{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = s.newID()
	} else if _, exists := s.achievementLocked(a.ID); exists {
		return domain.Achievement{}, fmt.Errorf("%w: achievement %q already exists", ErrInvalidInput, a.ID)
	}
	s.achievements = append(s.achievements, a)
	s.persist(ctx, KeyAchievements, s.achievements)
	return a, nil
}

// UnlockAchievement adds achievementID to the user's set and publishes an
// achievement post. A repeated unlock is a no-op and reports false.
func (s *Store) UnlockAchievement(ctx context.Context, userID, achievementID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(userID)
	if i < 0 {
		return false, ErrUserNotFound
	}
	u := &s.users[i]
	if u.HasAchievement(achievementID) {
		return false, nil
	}
	u.Achievements = append(u.Achievements, achievementID)
	u.UpdatedAt = s.now()

	title := "a new achievement"
	if a, ok := s.achievementLocked(achievementID); ok {
		title = a.Name
	}
	s.prependPostLocked(domain.SocialPost{
		AuthorID:      userID,
		Type:          domain.PostAchievement,
		Content:       fmt.Sprintf("%s unlocked %s!", u.Name, title),
		AchievementID: achievementID,
	})

	s.persist(ctx, KeyUsers, s.users)
	s.persist(ctx, KeyPosts, s.posts)
	s.refreshSession(ctx, *u)
	return true, nil
}

// --- Challenges ---

func (s *Store) Challenges() []domain.Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Challenge, len(s.challenges))
	for i, c := range s.challenges {
		out[i] = c.Clone()
	}
	return out
}

func (s *Store) AddChallenge(ctx context.Context, c domain.Challenge) (domain.Challenge, error) {
	if c.Name == "" || (!c.EndDate.IsZero() && c.EndDate.Before(c.StartDate)) {
		return domain.Challenge{}, fmt.Errorf("%w: a challenge needs a name and an end after its start", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c = c.Clone()
	c.ID = s.newID()
	c.ParticipantIDs = []string{}
	s.challenges = append(s.challenges, c)
	s.persist(ctx, KeyChallenges, s.challenges)
	return c.Clone(), nil
}

// JoinChallenge adds userID to the participants. Joining twice is harmless.
func (s *Store) JoinChallenge(ctx context.Context, challengeID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.challenges, func(c domain.Challenge) bool { return c.ID == challengeID })
	if i < 0 {
		return ErrChallengeNotFound
	}
	if s.userIndex(userID) < 0 {
		return ErrUserNotFound
	}
	c := &s.challenges[i]
	if containsString(c.ParticipantIDs, userID) {
		return nil
	}
	c.ParticipantIDs = append(c.ParticipantIDs, userID)
	s.persist(ctx, KeyChallenges, s.challenges)
	return nil
}

// --- Routines ---

func (s *Store) Routines() []domain.Routine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Routine, len(s.routines))
	for i, r := range s.routines {
		r.Exercises = copySlice(r.Exercises)
		out[i] = r
	}
	return out
}

func (s *Store) AddRoutine(ctx context.Context, r domain.Routine) (domain.Routine, error) {
	if r.Name == "" || len(r.Exercises) == 0 {
		return domain.Routine{}, fmt.Errorf("%w: a routine needs a name and at least one exercise", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.newID()
	r.CreatedAt = s.now()
	r.Exercises = copySlice(r.Exercises)
	s.routines = append(s.routines, r)
	s.persist(ctx, KeyRoutines, s.routines)
	return r, nil
}
