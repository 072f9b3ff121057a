// Package state is the single owner of the dashboard's domain collections.
//
// Every write goes through a method on Store. A method mutates the in-memory
// collections under the store mutex and then writes each touched collection
// back through the field store. A failed write is logged and otherwise
// ignored: the in-memory view stays authoritative for the life of the process.
// Collections are persisted under separate keys, so a crash between two writes
// can leave them mutually inconsistent.
package state

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"alcyxob/gym-dashboard/internal/domain"
	"alcyxob/gym-dashboard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Storage keys, one per top-level collection.
const (
	KeyCurrentUser   = "currentUser"
	KeyUsers         = "users"
	KeyNotifications = "notifications"
	KeyRoutines      = "routines"
	KeyPayments      = "payments"
	KeyClasses       = "classes"
	KeyMessages      = "messages"
	KeyAnnouncements = "announcements"
	KeyChallenges    = "challenges"
	KeyAchievements  = "achievements"
	KeyEquipment     = "equipment"
	KeyIncidents     = "incidents"
	KeyExpenses      = "expenses"
	KeyBudgets       = "budgets"
	KeyPosts         = "posts"
	KeyTasks         = "tasks"
	KeyTiers         = "tiers"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrRoleImmutable        = errors.New("a user's role cannot be changed")
	ErrClassNotFound        = errors.New("class not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrTierNotFound         = errors.New("membership tier not found")
	ErrEquipmentNotFound    = errors.New("equipment not found")
	ErrIncidentNotFound     = errors.New("incident not found")
	ErrChallengeNotFound    = errors.New("challenge not found")
	ErrNutritionLogNotFound = errors.New("nutrition log not found")
	ErrInvalidInput         = errors.New("invalid input")
)

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces time.Now. Tests use it to pin dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Store is the state container. The zero value is not usable; call New.
type Store struct {
	mu     sync.Mutex
	fields repository.FieldStore
	log    *zap.Logger
	now    func() time.Time
	newID  func() string

	session       *domain.User
	users         []domain.User
	notifications []domain.Notification // newest first
	routines      []domain.Routine
	payments      []domain.Payment
	classes       []domain.GymClass
	messages      []domain.Message
	announcements []domain.Announcement // newest first
	challenges    []domain.Challenge
	achievements  []domain.Achievement
	equipment     []domain.EquipmentItem
	incidents     []domain.Incident
	expenses      []domain.Expense
	budgets       []domain.Budget
	posts         []domain.SocialPost // newest first
	tasks         []domain.Task
	tiers         []domain.MembershipTier

	// aiSeq holds the latest request token per AI-backed entity.
	aiSeq map[string]uint64
}

// New loads every collection from fields. Missing or unreadable keys start empty.
func New(ctx context.Context, fields repository.FieldStore, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		fields: fields,
		log:    logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		aiSeq:  make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.session = repository.Load[*domain.User](ctx, fields, KeyCurrentUser, nil)
	s.users = repository.Load(ctx, fields, KeyUsers, []domain.User{})
	s.notifications = repository.Load(ctx, fields, KeyNotifications, []domain.Notification{})
	s.routines = repository.Load(ctx, fields, KeyRoutines, []domain.Routine{})
	s.payments = repository.Load(ctx, fields, KeyPayments, []domain.Payment{})
	s.classes = repository.Load(ctx, fields, KeyClasses, []domain.GymClass{})
	s.messages = repository.Load(ctx, fields, KeyMessages, []domain.Message{})
	s.announcements = repository.Load(ctx, fields, KeyAnnouncements, []domain.Announcement{})
	s.challenges = repository.Load(ctx, fields, KeyChallenges, []domain.Challenge{})
	s.achievements = repository.Load(ctx, fields, KeyAchievements, []domain.Achievement{})
	s.equipment = repository.Load(ctx, fields, KeyEquipment, []domain.EquipmentItem{})
	s.incidents = repository.Load(ctx, fields, KeyIncidents, []domain.Incident{})
	s.expenses = repository.Load(ctx, fields, KeyExpenses, []domain.Expense{})
	s.budgets = repository.Load(ctx, fields, KeyBudgets, []domain.Budget{})
	s.posts = repository.Load(ctx, fields, KeyPosts, []domain.SocialPost{})
	s.tasks = repository.Load(ctx, fields, KeyTasks, []domain.Task{})
	s.tiers = repository.Load(ctx, fields, KeyTiers, []domain.MembershipTier{})

	logger.Info("state loaded",
		zap.Int("users", len(s.users)),
		zap.Int("classes", len(s.classes)),
		zap.Int("payments", len(s.payments)),
		zap.Int("posts", len(s.posts)),
	)
	return s
}

// persistTimeout bounds one field write.
const persistTimeout = 5 * time.Second

// persist writes one collection. Failures are absorbed. The write is detached
// from ctx cancellation: once memory has changed the write must still happen
// even if the request that caused it has gone away.
func (s *Store) persist(ctx context.Context, key string, value any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := repository.Save(ctx, s.fields, key, value); err != nil {
		s.log.Warn("persist failed; keeping in-memory state", zap.String("key", key), zap.Error(err))
	}
}

// --- Session identity ---

// CurrentUser returns the signed-in identity of this dashboard, if any.
func (s *Store) CurrentUser() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return domain.User{}, false
	}
	return s.session.Clone(), true
}

// SetSession records user as the signed-in identity.
func (s *Store) SetSession(ctx context.Context, user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user.Clone()
	s.session = &u
	s.persist(ctx, KeyCurrentUser, s.session)
}

// ClearSession signs the dashboard out.
func (s *Store) ClearSession(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.persist(ctx, KeyCurrentUser, s.session)
}

// --- helpers ---

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

func containsString(items []string, v string) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}

func removeString(items []string, v string) []string {
	out := items[:0]
	for _, item := range items {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// copySlice returns a shallow copy so callers cannot reach into the store.
func copySlice[T any](items []T) []T {
	return append([]T(nil), items...)
}
