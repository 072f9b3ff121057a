package api

import (
	"fmt"
	"net/http"

	"alcyxob/gym-dashboard/internal/analytics"
	"alcyxob/gym-dashboard/internal/domain"
	"alcyxob/gym-dashboard/internal/service"
	"alcyxob/gym-dashboard/internal/state"

	"github.com/gin-gonic/gin"
)

// MemberHandler serves user records, memberships and workout history.
type MemberHandler struct {
	store       *state.Store
	authService service.AuthService
	activity    service.ActivityService
}

func NewMemberHandler(store *state.Store, authService service.AuthService, activity service.ActivityService) *MemberHandler {
	return &MemberHandler{store: store, authService: authService, activity: activity}
}

type CreateStaffRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     domain.Role `json:"role" binding:"required"`
}

// UpdateUserRequest lists the editable profile fields. Nil means unchanged.
// Membership can only be changed by front desk and management.
type UpdateUserRequest struct {
	Name       *string            `json:"name"`
	Email      *string            `json:"email" binding:"omitempty,email"`
	Membership *domain.Membership `json:"membership"`
}

type AssignTrainerRequest struct {
	TrainerID string `json:"trainerId" binding:"required"`
}

type PurchaseMembershipRequest struct {
	TierID string `json:"tierId" binding:"required"`
	Method string `json:"method"`
}

type ProgressResponse struct {
	Exercise     string                    `json:"exercise"`
	Points       []analytics.ProgressPoint `json:"points"`
	PersonalBest analytics.PersonalBest    `json:"personalBest"`
}

// ListUsers godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Param role query string false "Filter by role"
// @Success 200 {array} UserResponse
// @Router /users [get]
func (h *MemberHandler) ListUsers(c *gin.Context) {
	users := h.store.Users()
	if role := domain.Role(c.Query("role")); role != "" {
		filtered := users[:0]
		for _, u := range users {
			if u.Role == role {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}
	c.JSON(http.StatusOK, mapUsers(users))
}

// CreateUser godoc
// @Summary Create an account of any role
// @Tags Users
// @Accept json
// @Produce json
// @Param user body CreateStaffRequest true "Account details"
// @Success 201 {object} UserResponse
// @Failure 409 {object} gin.H "Email already exists"
// @Router /users [post]
func (h *MemberHandler) CreateUser(c *gin.Context) {
	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	if !req.Role.Valid() {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Unknown role %q", req.Role))
		return
	}
	user, err := h.authService.CreateStaff(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

func (h *MemberHandler) GetUser(c *gin.Context) {
	callerID, role, ok := caller(c)
	if !ok {
		return
	}
	targetID := c.Param("id")
	if !canActFor(callerID, role, targetID) {
		abortWithError(c, http.StatusForbidden, "Access denied")
		return
	}
	user, found := h.store.User(targetID)
	if !found {
		abortWithError(c, http.StatusNotFound, state.ErrUserNotFound.Error())
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateUser godoc
// @Summary Update a user's profile
// @Description Users edit their own name and email. Admins, managers and receptionists may edit anyone, including memberships. Roles never change.
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param update body UpdateUserRequest true "Fields to change"
// @Success 200 {object} UserResponse
// @Router /users/{id} [put]
func (h *MemberHandler) UpdateUser(c *gin.Context) {
	callerID, role, ok := caller(c)
	if !ok {
		return
	}
	targetID := c.Param("id")
	frontDesk := isFrontDesk(role)
	if callerID != targetID && !frontDesk {
		abortWithError(c, http.StatusForbidden, "Access denied")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	if req.Membership != nil && !frontDesk {
		abortWithError(c, http.StatusForbidden, "Only staff can change memberships")
		return
	}

	if req.Membership != nil && !req.Membership.Status.Valid() {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Unknown membership status %q", req.Membership.Status))
		return
	}

	updated, err := h.store.UpdateProfile(c.Request.Context(), targetID, state.ProfilePatch{
		Name:       req.Name,
		Email:      req.Email,
		Membership: req.Membership,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(updated))
}

func (h *MemberHandler) AssignTrainer(c *gin.Context) {
	var req AssignTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	if err := h.store.AssignTrainer(c.Request.Context(), c.Param("id"), req.TrainerID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMyClients lists the calling trainer's clients.
func (h *MemberHandler) GetMyClients(c *gin.Context) {
	trainerID, _, ok := caller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, mapUsers(h.store.ClientsOfTrainer(trainerID)))
}

// PurchaseMembership godoc
// @Summary Buy a membership tier
// @Description Activates the tier for the caller, records a completed payment and sends a notification.
// @Tags Membership
// @Accept json
// @Produce json
// @Param purchase body PurchaseMembershipRequest true "Tier and payment method"
// @Success 201 {object} domain.Payment
// @Failure 404 {object} gin.H "Tier not found"
// @Router /membership/purchase [post]
func (h *MemberHandler) PurchaseMembership(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	var req PurchaseMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	if req.Method == "" {
		req.Method = "card"
	}
	payment, err := h.store.PurchaseMembership(c.Request.Context(), userID, req.TierID, req.Method)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// LogWorkout godoc
// @Summary Log a completed workout session
// @Tags Workouts
// @Accept json
// @Produce json
// @Param session body domain.WorkoutSession true "Session"
// @Success 201 {object} gin.H "session and unlocked achievements"
// @Router /users/{id}/workouts [post]
func (h *MemberHandler) LogWorkout(c *gin.Context) {
	callerID, role, ok := caller(c)
	if !ok {
		return
	}
	targetID := c.Param("id")
	if !canActFor(callerID, role, targetID) {
		abortWithError(c, http.StatusForbidden, "Access denied")
		return
	}
	var session domain.WorkoutSession
	if err := c.ShouldBindJSON(&session); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	logged, unlocked, err := h.activity.LogWorkout(c.Request.Context(), targetID, session)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": logged, "unlocked": nonNil(unlocked)})
}

func (h *MemberHandler) GetWorkouts(c *gin.Context) {
	user, ok := h.readableUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, nonNil(user.WorkoutHistory))
}

// GetProgress returns the estimated one-rep-max series for ?exercise=.
func (h *MemberHandler) GetProgress(c *gin.Context) {
	user, ok := h.readableUser(c)
	if !ok {
		return
	}
	exercise := c.Query("exercise")
	if exercise == "" {
		abortWithError(c, http.StatusBadRequest, "exercise query parameter is required")
		return
	}
	points := analytics.ExerciseProgress(user.WorkoutHistory, exercise)
	c.JSON(http.StatusOK, ProgressResponse{
		Exercise:     exercise,
		Points:       nonNil(points),
		PersonalBest: analytics.PersonalBests(points),
	})
}

func (h *MemberHandler) GetExerciseNames(c *gin.Context) {
	user, ok := h.readableUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, nonNil(analytics.ExerciseNames(user.WorkoutHistory)))
}

// GrantAchievement lets staff unlock an achievement for a member by hand.
func (h *MemberHandler) GrantAchievement(c *gin.Context) {
	var req struct {
		AchievementID string `json:"achievementId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	unlocked, err := h.store.UnlockAchievement(c.Request.Context(), c.Param("id"), req.AchievementID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unlocked": unlocked})
}

// readableUser loads :id if the caller may see it.
func (h *MemberHandler) readableUser(c *gin.Context) (domain.User, bool) {
	callerID, role, ok := caller(c)
	if !ok {
		return domain.User{}, false
	}
	targetID := c.Param("id")
	if !canActFor(callerID, role, targetID) {
		abortWithError(c, http.StatusForbidden, "Access denied")
		return domain.User{}, false
	}
	user, found := h.store.User(targetID)
	if !found {
		abortWithError(c, http.StatusNotFound, state.ErrUserNotFound.Error())
		return domain.User{}, false
	}
	return user, true
}

// nonNil keeps empty lists as [] in JSON.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
