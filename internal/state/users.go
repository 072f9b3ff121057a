package state

import (
	"context"
	"fmt"
	"strings"

	"alcyxob/gym-dashboard/internal/domain"
)

// Users returns a snapshot of every user in insertion order.
func (s *Store) Users() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, len(s.users))
	for i, u := range s.users {
		out[i] = u.Clone()
	}
	return out
}

// User looks up a user by ID.
func (s *Store) User(id string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(id)
	if i < 0 {
		return domain.User{}, false
	}
	return s.users[i].Clone(), true
}

// FindUserByEmail matches email case-insensitively.
func (s *Store) FindUserByEmail(email string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := normalizeEmail(email)
	i := indexOf(s.users, func(u domain.User) bool { return normalizeEmail(u.Email) == want })
	if i < 0 {
		return domain.User{}, false
	}
	return s.users[i].Clone(), true
}

// CreateUser appends a new user after a case-insensitive duplicate email check.
// Clients without a membership start as Pending.
func (s *Store) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	if user.Email == "" || user.Name == "" || !user.Role.Valid() {
		return domain.User{}, fmt.Errorf("%w: name, email and a known role are required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	want := normalizeEmail(user.Email)
	if s.emailTaken(want, "") {
		return domain.User{}, ErrUserAlreadyExists
	}

	u := user.Clone()
	u.ID = s.newID()
	u.Email = want
	now := s.now()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Membership.Status == "" {
		u.Membership.Status = domain.MembershipPending
	}
	s.users = append(s.users, u)
	s.persist(ctx, KeyUsers, s.users)
	return u.Clone(), nil
}

// UpdateUser replaces the user with the same ID wholesale. The role cannot
// change. When the user is the signed-in identity the session is refreshed too.
func (s *Store) UpdateUser(ctx context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(user.ID)
	if i < 0 {
		return domain.User{}, ErrUserNotFound
	}
	if user.Role != s.users[i].Role {
		return domain.User{}, ErrRoleImmutable
	}
	email := normalizeEmail(user.Email)
	if email == "" || !user.Membership.Status.Valid() {
		return domain.User{}, fmt.Errorf("%w: email and a known membership status are required", ErrInvalidInput)
	}
	if s.emailTaken(email, user.ID) {
		return domain.User{}, ErrUserAlreadyExists
	}

	u := user.Clone()
	u.Email = email
	u.CreatedAt = s.users[i].CreatedAt
	u.UpdatedAt = s.now()
	s.users[i] = u
	s.persist(ctx, KeyUsers, s.users)
	s.refreshSession(ctx, u)
	return u.Clone(), nil
}

// ProfilePatch lists profile fields to change. Nil means unchanged.
type ProfilePatch struct {
	Name       *string
	Email      *string
	Membership *domain.Membership
}

// UpdateProfile applies patch to the current record under the store lock, so
// history, coach turns and achievements written concurrently are kept.
func (s *Store) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (domain.User, error) {
	var name, email string
	if patch.Name != nil {
		name = strings.TrimSpace(*patch.Name)
		if name == "" {
			return domain.User{}, fmt.Errorf("%w: name cannot be blank", ErrInvalidInput)
		}
	}
	if patch.Email != nil {
		email = normalizeEmail(*patch.Email)
		if email == "" {
			return domain.User{}, fmt.Errorf("%w: email cannot be blank", ErrInvalidInput)
		}
	}
	if patch.Membership != nil && !patch.Membership.Status.Valid() {
		return domain.User{}, fmt.Errorf("%w: unknown membership status %q", ErrInvalidInput, patch.Membership.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(userID)
	if i < 0 {
		return domain.User{}, ErrUserNotFound
	}
	if patch.Email != nil && s.emailTaken(email, userID) {
		return domain.User{}, ErrUserAlreadyExists
	}

	u := &s.users[i]
	if patch.Name != nil {
		u.Name = name
	}
	if patch.Email != nil {
		u.Email = email
	}
	if patch.Membership != nil {
		u.Membership = *patch.Membership
	}
	u.UpdatedAt = s.now()
	s.persist(ctx, KeyUsers, s.users)
	s.refreshSession(ctx, *u)
	return u.Clone(), nil
}

// AssignTrainer adds trainerID to the client's trainer set.
func (s *Store) AssignTrainer(ctx context.Context, clientID, trainerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ci, ti := s.userIndex(clientID), s.userIndex(trainerID)
	if ci < 0 || ti < 0 {
		return ErrUserNotFound
	}
	if !s.users[ci].IsClient() || !s.users[ti].IsTrainer() {
		return fmt.Errorf("%w: trainers can only be assigned to clients", ErrInvalidInput)
	}
	if containsString(s.users[ci].TrainerIDs, trainerID) {
		return nil
	}
	s.users[ci].TrainerIDs = append(s.users[ci].TrainerIDs, trainerID)
	s.users[ci].UpdatedAt = s.now()
	s.persist(ctx, KeyUsers, s.users)
	s.refreshSession(ctx, s.users[ci])
	return nil
}

// ClientsOfTrainer lists the clients whose trainer set contains trainerID.
func (s *Store) ClientsOfTrainer(trainerID string) []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.User
	for _, u := range s.users {
		if u.IsClient() && containsString(u.TrainerIDs, trainerID) {
			out = append(out, u.Clone())
		}
	}
	return out
}

// LogWorkout prepends session to the user's history. Exercise names are not
// checked against any catalog.
func (s *Store) LogWorkout(ctx context.Context, userID string, session domain.WorkoutSession) (domain.WorkoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.userIndex(userID)
	if i < 0 {
		return domain.WorkoutSession{}, ErrUserNotFound
	}
	ws := session.Clone()
	if ws.ID == "" {
		ws.ID = s.newID()
	}
	if ws.Date.IsZero() {
		ws.Date = s.now()
	}
	u := &s.users[i]
	u.WorkoutHistory = append([]domain.WorkoutSession{ws}, u.WorkoutHistory...)
	u.UpdatedAt = s.now()
	s.persist(ctx, KeyUsers, s.users)
	s.refreshSession(ctx, *u)
	return ws.Clone(), nil
}

// ExpireMemberships flips Active memberships whose end date has passed.
// It returns how many were changed.
func (s *Store) ExpireMemberships(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	changed := 0
	for i := range s.users {
		m := &s.users[i].Membership
		if m.Status == domain.MembershipActive && !m.EndDate.IsZero() && m.EndDate.Before(now) {
			m.Status = domain.MembershipExpired
			s.users[i].UpdatedAt = now
			changed++
			s.refreshSession(ctx, s.users[i])
		}
	}
	if changed > 0 {
		s.persist(ctx, KeyUsers, s.users)
	}
	return changed
}

// emailTaken reports whether a user other than exceptID holds email.
// Caller holds s.mu.
func (s *Store) emailTaken(email, exceptID string) bool {
	return indexOf(s.users, func(u domain.User) bool {
		return u.ID != exceptID && normalizeEmail(u.Email) == email
	}) >= 0
}

func (s *Store) userIndex(id string) int {
	return indexOf(s.users, func(u domain.User) bool { return u.ID == id })
}

// refreshSession keeps the signed-in identity in lockstep with the user list.
// Caller holds s.mu.
func (s *Store) refreshSession(ctx context.Context, u domain.User) {
	if s.session == nil || s.session.ID != u.ID {
		return
	}
	c := u.Clone()
	s.session = &c
	s.persist(ctx, KeyCurrentUser, s.session)
}
