package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"alcyxob/gym-dashboard/internal/domain"
	"alcyxob/gym-dashboard/internal/service"
	"alcyxob/gym-dashboard/internal/state"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
	store       *state.Store
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, store *state.Store) *AuthHandler {
	return &AuthHandler{authService: authService, store: store}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	Email          string                  `json:"email"`
	Role           domain.Role             `json:"role"`
	Membership     domain.Membership       `json:"membership"`
	CreatedAt      time.Time               `json:"createdAt"`
	TrainerIDs     []string                `json:"trainerIds,omitempty"`
	Achievements   []string                `json:"achievements,omitempty"`
	WorkoutHistory []domain.WorkoutSession `json:"workoutHistory,omitempty"`
	NutritionLogs  []domain.NutritionLog   `json:"nutritionLogs,omitempty"`
	AICoachHistory []domain.CoachTurn      `json:"aiCoachHistory,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new client
// @Description Creates a client account with a Pending membership.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} UserResponse "User created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrHashingFailed) {
			abortWithError(c, http.StatusInternalServerError, "Could not process registration")
			return
		}
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// Login godoc
// @Summary Log in a user
// @Description Authenticates a user and returns a JWT token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			abortWithError(c, http.StatusUnauthorized, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Could not process login")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  MapUserToResponse(user),
	})
}

// Logout clears the dashboard session.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.authService.Logout(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// Me returns the caller's full profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	user, found := h.store.User(userID)
	if !found {
		abortWithError(c, http.StatusNotFound, state.ErrUserNotFound.Error())
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
// Crucially excludes PasswordHash.
func MapUserToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		Role:           user.Role,
		Membership:     user.Membership,
		CreatedAt:      user.CreatedAt,
		TrainerIDs:     user.TrainerIDs,
		Achievements:   user.Achievements,
		WorkoutHistory: user.WorkoutHistory,
		NutritionLogs:  user.NutritionLogs,
		AICoachHistory: user.AICoachHistory,
	}
}

// mapUsers is the list form; sub-collections are left out.
func mapUsers(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		r := MapUserToResponse(u)
		r.WorkoutHistory, r.NutritionLogs, r.AICoachHistory = nil, nil, nil
		out = append(out, r)
	}
	return out
}
