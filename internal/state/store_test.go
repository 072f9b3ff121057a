package state

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"alcyxob/gym-dashboard/internal/domain"
	"alcyxob/gym-dashboard/internal/repository"
	"alcyxob/gym-dashboard/internal/repository/badger"
	"alcyxob/gym-dashboard/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *memory.FieldStore) {
	t.Helper()
	fields := memory.NewFieldStore()
	seq := 0
	s := New(context.Background(), fields, nil,
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string { seq++; return fmt.Sprintf("id-%d", seq) }),
	)
	return s, fields
}

func mustCreateUser(t *testing.T, s *Store, name string, role domain.Role, status domain.MembershipStatus) domain.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), domain.User{
		Name:       name,
		Email:      name + "@gym.test",
		Role:       role,
		Membership: domain.Membership{Status: status},
	})
	require.NoError(t, err)
	return u
}

type failingStore struct{ repository.FieldStore }

func (failingStore) Put(context.Context, string, []byte) error { return errors.New("quota exceeded") }

// =============================================================================
// Users and session
// =============================================================================

func TestCreateUser_DuplicateEmailIsCaseInsensitive(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, domain.User{Name: "Ana", Email: "ana@gym.test", Role: domain.RoleClient})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, domain.User{Name: "Ana 2", Email: "  ANA@Gym.Test", Role: domain.RoleClient})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	assert.Len(t, s.Users(), 1)
}

func TestCreateUser_DefaultsToPendingMembership(t *testing.T) {
	s, _ := newTestStore(t)
	u, err := s.CreateUser(context.Background(), domain.User{Name: "Bo", Email: "bo@gym.test", Role: domain.RoleClient})
	require.NoError(t, err)
	assert.Equal(t, domain.MembershipPending, u.Membership.Status)
	assert.Empty(t, u.WorkoutHistory)
	assert.Empty(t, u.Achievements)
}

func TestCreateUser_RejectsUnknownRole(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.CreateUser(context.Background(), domain.User{Name: "X", Email: "x@gym.test", Role: "janitor"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateUser_RefreshesSession(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "cara", domain.RoleClient, domain.MembershipActive)
	s.SetSession(ctx, u)

	u.Name = "Cara Renamed"
	_, err := s.UpdateUser(ctx, u)
	require.NoError(t, err)

	session, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "Cara Renamed", session.Name)
}

func TestUpdateUser_OtherUserLeavesSessionAlone(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	me := mustCreateUser(t, s, "me", domain.RoleAdmin, "")
	other := mustCreateUser(t, s, "other", domain.RoleClient, "")
	s.SetSession(ctx, me)

	other.Name = "Changed"
	_, err := s.UpdateUser(ctx, other)
	require.NoError(t, err)

	session, _ := s.CurrentUser()
	assert.Equal(t, "me", session.Name)
}

func TestUpdateUser_RoleIsImmutable(t *testing.T) {
	s, _ := newTestStore(t)
	u := mustCreateUser(t, s, "dan", domain.RoleClient, "")
	u.Role = domain.RoleAdmin
	_, err := s.UpdateUser(context.Background(), u)
	assert.ErrorIs(t, err, ErrRoleImmutable)
}

func TestUpdateUser_Unknown(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.UpdateUser(context.Background(), domain.User{ID: "ghost", Role: domain.RoleClient})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile_KeepsConcurrentWrites(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "nell", domain.RoleClient, domain.MembershipActive)

	_, err := s.LogWorkout(ctx, u.ID, domain.WorkoutSession{Name: "legs"})
	require.NoError(t, err)
	_, err = s.UnlockAchievement(ctx, u.ID, AchievementFirstWorkout)
	require.NoError(t, err)

	name, email := "  Nell R. ", "NELL.R@Gym.Test"
	got, err := s.UpdateProfile(ctx, u.ID, ProfilePatch{Name: &name, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Nell R.", got.Name)
	assert.Equal(t, "nell.r@gym.test", got.Email)
	assert.Len(t, got.WorkoutHistory, 1)
	assert.Equal(t, []string{AchievementFirstWorkout}, got.Achievements)
	assert.Equal(t, domain.MembershipActive, got.Membership.Status)
}

func TestUpdateProfile_Validation(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	ann := mustCreateUser(t, s, "ann", domain.RoleClient, "")
	bob := mustCreateUser(t, s, "bob", domain.RoleClient, "")

	taken := " ANN@gym.test"
	_, err := s.UpdateProfile(ctx, bob.ID, ProfilePatch{Email: &taken})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	own := "ann@gym.test"
	_, err = s.UpdateProfile(ctx, ann.ID, ProfilePatch{Email: &own})
	assert.NoError(t, err)

	blank := " "
	_, err = s.UpdateProfile(ctx, bob.ID, ProfilePatch{Name: &blank})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.UpdateProfile(ctx, bob.ID, ProfilePatch{Membership: &domain.Membership{Status: "Lifetime"}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.UpdateProfile(ctx, "ghost", ProfilePatch{Name: &own})
	assert.ErrorIs(t, err, ErrUserNotFound)

	got, _ := s.User(bob.ID)
	assert.Equal(t, "bob@gym.test", got.Email)
	assert.Equal(t, domain.MembershipPending, got.Membership.Status)
}

func TestUpdateUser_RejectsTakenEmail(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "ann", domain.RoleClient, "")
	bob := mustCreateUser(t, s, "bob", domain.RoleClient, "")

	bob.Email = "Ann@Gym.Test"
	_, err := s.UpdateUser(ctx, bob)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	bob.Email = "bob@gym.test"
	bob.Membership.Status = "Frozen"
	_, err = s.UpdateUser(ctx, bob)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAssignTrainer_SetSemantics(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	client := mustCreateUser(t, s, "eve", domain.RoleClient, "")
	trainer := mustCreateUser(t, s, "tom", domain.RoleTrainer, "")

	require.NoError(t, s.AssignTrainer(ctx, client.ID, trainer.ID))
	require.NoError(t, s.AssignTrainer(ctx, client.ID, trainer.ID))

	got, _ := s.User(client.ID)
	assert.Equal(t, []string{trainer.ID}, got.TrainerIDs)
	assert.Len(t, s.ClientsOfTrainer(trainer.ID), 1)

	assert.ErrorIs(t, s.AssignTrainer(ctx, trainer.ID, client.ID), ErrInvalidInput)
}

func TestLogWorkout_PrependsNewestFirst(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "fay", domain.RoleClient, domain.MembershipActive)

	_, err := s.LogWorkout(ctx, u.ID, domain.WorkoutSession{Name: "first"})
	require.NoError(t, err)
	_, err = s.LogWorkout(ctx, u.ID, domain.WorkoutSession{Name: "second", Exercises: []domain.LoggedExercise{{Name: ""}}})
	require.NoError(t, err)

	got, _ := s.User(u.ID)
	require.Len(t, got.WorkoutHistory, 2)
	assert.Equal(t, "second", got.WorkoutHistory[0].Name)
	assert.Equal(t, testNow, got.WorkoutHistory[0].Date)
}

func TestExpireMemberships(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "gus", domain.RoleClient, domain.MembershipActive)
	u.Membership.EndDate = testNow.Add(-time.Hour)
	_, err := s.UpdateUser(ctx, u)
	require.NoError(t, err)

	assert.Equal(t, 1, s.ExpireMemberships(ctx))
	got, _ := s.User(u.ID)
	assert.Equal(t, domain.MembershipExpired, got.Membership.Status)
	assert.Equal(t, 0, s.ExpireMemberships(ctx))
}

// =============================================================================
// Persistence
// =============================================================================

func TestStateSurvivesReload(t *testing.T) {
	s, fields := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "hal", domain.RoleClient, domain.MembershipActive)
	s.SetSession(ctx, u)
	_, err := s.AddPost(ctx, domain.SocialPost{AuthorID: u.ID, Content: "hello"})
	require.NoError(t, err)

	reloaded := New(ctx, fields, nil)
	assert.Len(t, reloaded.Users(), 1)
	assert.Len(t, reloaded.Posts(), 1)
	session, ok := reloaded.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, u.ID, session.ID)
}

func TestPersistFailureKeepsInMemoryState(t *testing.T) {
	ctx := context.Background()
	s := New(ctx, failingStore{memory.NewFieldStore()}, nil)

	u, err := s.CreateUser(ctx, domain.User{Name: "Ivy", Email: "ivy@gym.test", Role: domain.RoleClient})
	require.NoError(t, err)

	got, ok := s.User(u.ID)
	require.True(t, ok)
	assert.Equal(t, "Ivy", got.Name)
}

func TestWritesSurviveCancelledRequest(t *testing.T) {
	fields, err := badger.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = fields.Close() })

	s := New(context.Background(), fields, nil)
	u, err := s.CreateUser(context.Background(), domain.User{Name: "Wes", Email: "wes@gym.test", Role: domain.RoleClient})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.LogWorkout(ctx, u.ID, domain.WorkoutSession{Name: "late"})
	require.NoError(t, err)

	reloaded := New(context.Background(), fields, nil)
	got, ok := reloaded.User(u.ID)
	require.True(t, ok)
	require.Len(t, got.WorkoutHistory, 1)
	assert.Equal(t, "late", got.WorkoutHistory[0].Name)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "jo", domain.RoleClient, "")
	_, err := s.UnlockAchievement(ctx, u.ID, "x")
	require.NoError(t, err)

	snapshot, _ := s.User(u.ID)
	snapshot.Achievements[0] = "tampered"

	fresh, _ := s.User(u.ID)
	assert.Equal(t, []string{"x"}, fresh.Achievements)
}

// =============================================================================
// Achievements
// =============================================================================

func TestUnlockAchievement_Idempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	s.SeedCatalog(ctx)
	u := mustCreateUser(t, s, "kim", domain.RoleClient, "")

	first, err := s.UnlockAchievement(ctx, u.ID, AchievementFirstWorkout)
	require.NoError(t, err)
	assert.True(t, first)

	for i := 0; i < 3; i++ {
		again, err := s.UnlockAchievement(ctx, u.ID, AchievementFirstWorkout)
		require.NoError(t, err)
		assert.False(t, again)
	}

	got, _ := s.User(u.ID)
	assert.Equal(t, []string{AchievementFirstWorkout}, got.Achievements)

	posts := s.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, domain.PostAchievement, posts[0].Type)
	assert.Equal(t, AchievementFirstWorkout, posts[0].AchievementID)
	assert.Contains(t, posts[0].Content, "First Workout")
}

func TestUnlockAchievement_UnknownAchievementStillUnlocks(t *testing.T) {
	s, _ := newTestStore(t)
	u := mustCreateUser(t, s, "lou", domain.RoleClient, "")
	ok, err := s.UnlockAchievement(context.Background(), u.ID, "deleted-badge")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, s.Posts()[0].Content, "a new achievement")
}

// =============================================================================
// Challenges and routines
// =============================================================================

func TestJoinChallenge(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	u := mustCreateUser(t, s, "max", domain.RoleClient, "")
	c, err := s.AddChallenge(ctx, domain.Challenge{Name: "March squats", StartDate: testNow, EndDate: testNow.AddDate(0, 1, 0)})
	require.NoError(t, err)

	require.NoError(t, s.JoinChallenge(ctx, c.ID, u.ID))
	require.NoError(t, s.JoinChallenge(ctx, c.ID, u.ID))
	assert.Equal(t, []string{u.ID}, s.Challenges()[0].ParticipantIDs)

	assert.ErrorIs(t, s.JoinChallenge(ctx, "nope", u.ID), ErrChallengeNotFound)
}

func TestAddRoutine_Validation(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.AddRoutine(context.Background(), domain.Routine{Name: "Empty"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	r, err := s.AddRoutine(context.Background(), domain.Routine{
		Name:      "Push day",
		Exercises: []domain.RoutineExercise{{Name: "Bench", Sets: 3, Reps: "8-10"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Len(t, s.Routines(), 1)
}
