package domain

import (
	"time"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleClient          Role = "client"
	RoleTrainer         Role = "trainer"
	RoleReceptionist    Role = "receptionist"
	RoleManager         Role = "manager"
	RoleInstructor      Role = "instructor"
	RoleNutritionist    Role = "nutritionist"
	RolePhysiotherapist Role = "physiotherapist"
)

// Roles lists every role in display order.
var Roles = []Role{
	RoleAdmin, RoleClient, RoleTrainer, RoleReceptionist,
	RoleManager, RoleInstructor, RoleNutritionist, RolePhysiotherapist,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// IsStaff is true for every role except client.
func (r Role) IsStaff() bool {
	return r.Valid() && r != RoleClient
}

type MembershipStatus string

const (
	MembershipActive  MembershipStatus = "Active"
	MembershipExpired MembershipStatus = "Expired"
	MembershipPending MembershipStatus = "Pending"
)

func (s MembershipStatus) Valid() bool {
	return s == MembershipActive || s == MembershipExpired || s == MembershipPending
}

// Membership describes a user's plan. TierID may reference a tier that no longer exists.
type Membership struct {
	Status    MembershipStatus `json:"status"`
	StartDate time.Time        `json:"startDate"`
	EndDate   time.Time        `json:"endDate"`
	TierID    string           `json:"tierId,omitempty"`
}

// User represents anyone who can sign in to the dashboard.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"passwordHash"`
	Role         Role       `json:"role"`
	Membership   Membership `json:"membership"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	// --- Client-specific ---
	TrainerIDs     []string         `json:"trainerIds,omitempty"`
	WorkoutHistory []WorkoutSession `json:"workoutHistory,omitempty"` // newest first
	NutritionLogs  []NutritionLog   `json:"nutritionLogs,omitempty"`  // newest first
	AICoachHistory []CoachTurn      `json:"aiCoachHistory,omitempty"`
	Achievements   []string         `json:"achievements,omitempty"`
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

// HasAchievement reports whether the achievement ID was already unlocked.
func (u *User) HasAchievement(id string) bool {
	for _, a := range u.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with u.
func (u User) Clone() User {
	c := u
	c.TrainerIDs = append([]string(nil), u.TrainerIDs...)
	c.Achievements = append([]string(nil), u.Achievements...)
	c.AICoachHistory = append([]CoachTurn(nil), u.AICoachHistory...)
	if u.WorkoutHistory != nil {
		c.WorkoutHistory = make([]WorkoutSession, len(u.WorkoutHistory))
		for i, s := range u.WorkoutHistory {
			c.WorkoutHistory[i] = s.Clone()
		}
	}
	if u.NutritionLogs != nil {
		c.NutritionLogs = make([]NutritionLog, len(u.NutritionLogs))
		for i, l := range u.NutritionLogs {
			c.NutritionLogs[i] = l.Clone()
		}
	}
	return c
}
