package state

import (
	"context"

	"alcyxob/gym-dashboard/internal/domain"
)

// Built-in achievement IDs. They are stable so clients can unlock them by name.
const (
	AchievementFirstWorkout = "first-workout"
	AchievementTenWorkouts  = "ten-workouts"
	AchievementFirstClass   = "first-class"
	AchievementMealLogger   = "meal-logger"
)

func defaultTiers() []domain.MembershipTier {
	return []domain.MembershipTier{
		{Name: "Basic", Price: 13499, DurationMonths: 1, Features: []string{"Gym floor access", "Locker room"}},
		{Name: "Premium", Price: 22499, DurationMonths: 1, Features: []string{"Gym floor access", "Group classes", "Extended hours"}},
		{Name: "Elite", Price: 59999, DurationMonths: 3, Features: []string{"All Premium features", "Personal trainer sessions", "Nutrition consults"}},
	}
}

func defaultAchievements() []domain.Achievement {
	return []domain.Achievement{
		{ID: AchievementFirstWorkout, Name: "First Workout", Description: "Logged your first workout"},
		{ID: AchievementTenWorkouts, Name: "Ten Strong", Description: "Logged ten workouts"},
		{ID: AchievementFirstClass, Name: "Class Act", Description: "Booked your first class"},
		{ID: AchievementMealLogger, Name: "Mindful Eater", Description: "Logged your first meal"},
	}
}

// SeedCatalog fills the tier and achievement catalogs when they are empty.
func (s *Store) SeedCatalog(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tiers) == 0 {
		for _, t := range defaultTiers() {
			t.ID = s.newID()
			s.tiers = append(s.tiers, t)
		}
		s.persist(ctx, KeyTiers, s.tiers)
	}
	if len(s.achievements) == 0 {
		s.achievements = append(s.achievements, defaultAchievements()...)
		s.persist(ctx, KeyAchievements, s.achievements)
	}
}

// HasRole reports whether any user holds role.
func (s *Store) HasRole(role domain.Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.users, func(u domain.User) bool { return u.Role == role }) >= 0
}
