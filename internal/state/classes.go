package state

import (
	"context"
	"fmt"

	"alcyxob/gym-dashboard/internal/domain"
)

// Classes returns a snapshot of the class schedule.
func (s *Store) Classes() []domain.GymClass {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.GymClass, len(s.classes))
	for i, c := range s.classes {
		out[i] = c.Clone()
	}
	return out
}

func (s *Store) Class(id string) (domain.GymClass, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.classIndex(id)
	if i < 0 {
		return domain.GymClass{}, false
	}
	return s.classes[i].Clone(), true
}

// AddClass schedules a class with an empty roster.
func (s *Store) AddClass(ctx context.Context, class domain.GymClass) (domain.GymClass, error) {
	if class.Name == "" || class.Capacity <= 0 {
		return domain.GymClass{}, fmt.Errorf("%w: a class needs a name and a positive capacity", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := class.Clone()
	c.ID = s.newID()
	c.BookedClientIDs = []string{}
	s.classes = append(s.classes, c)
	s.persist(ctx, KeyClasses, s.classes)
	return c.Clone(), nil
}

// BookClass adds userID to the roster. Checks run in this order: already
// booked, full, inactive client membership. Only BookingBooked mutates state.
func (s *Store) BookClass(ctx context.Context, classID, userID string) (domain.BookingResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ci := s.classIndex(classID)
	if ci < 0 {
		return "", ErrClassNotFound
	}
	ui := s.userIndex(userID)
	if ui < 0 {
		return "", ErrUserNotFound
	}

	class := &s.classes[ci]
	if class.IsBooked(userID) {
		return domain.BookingAlreadyBooked, nil
	}
	if len(class.BookedClientIDs) >= class.Capacity {
		return domain.BookingFull, nil
	}
	if u := s.users[ui]; u.IsClient() && u.Membership.Status != domain.MembershipActive {
		return domain.BookingInactiveMembership, nil
	}

	class.BookedClientIDs = append(class.BookedClientIDs, userID)
	s.persist(ctx, KeyClasses, s.classes)
	return domain.BookingBooked, nil
}

// CancelBooking removes userID from the roster. It reports whether a booking existed.
func (s *Store) CancelBooking(ctx context.Context, classID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ci := s.classIndex(classID)
	if ci < 0 {
		return false, ErrClassNotFound
	}
	class := &s.classes[ci]
	if !class.IsBooked(userID) {
		return false, nil
	}
	class.BookedClientIDs = removeString(class.BookedClientIDs, userID)
	s.persist(ctx, KeyClasses, s.classes)
	return true, nil
}

func (s *Store) classIndex(id string) int {
	return indexOf(s.classes, func(c domain.GymClass) bool { return c.ID == id })
}
