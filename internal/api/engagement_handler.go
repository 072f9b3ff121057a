package api

import (
	"fmt"
	"net/http"

	"alcyxob/gym-dashboard/internal/analytics"
	"alcyxob/gym-dashboard/internal/domain"
	"alcyxob/gym-dashboard/internal/state"

	"github.com/gin-gonic/gin"
)

// EngagementHandler serves achievements, challenges, the leaderboard and routines.
type EngagementHandler struct {
	store *state.Store
}

func NewEngagementHandler(store *state.Store) *EngagementHandler {
	return &EngagementHandler{store: store}
}

func (h *EngagementHandler) ListAchievements(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Achievements())
}

func (h *EngagementHandler) CreateAchievement(c *gin.Context) {
	var a domain.Achievement
	if err := c.ShouldBindJSON(&a); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	created, err := h.store.AddAchievement(c.Request.Context(), a)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EngagementHandler) ListChallenges(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Challenges())
}

func (h *EngagementHandler) CreateChallenge(c *gin.Context) {
	var ch domain.Challenge
	if err := c.ShouldBindJSON(&ch); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	created, err := h.store.AddChallenge(c.Request.Context(), ch)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EngagementHandler) JoinChallenge(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	if err := h.store.JoinChallenge(c.Request.Context(), c.Param("id"), userID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Leaderboard godoc
// @Summary Top ten clients
// @Description Score is 100 per logged workout plus 50 per achievement. Ties keep member order.
// @Tags Community
// @Produce json
// @Success 200 {array} analytics.LeaderboardEntry
// @Router /leaderboard [get]
func (h *EngagementHandler) Leaderboard(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(analytics.Leaderboard(h.store.Users())))
}

func (h *EngagementHandler) ListRoutines(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Routines())
}

func (h *EngagementHandler) CreateRoutine(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	var r domain.Routine
	if err := c.ShouldBindJSON(&r); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	r.AuthorID = userID
	created, err := h.store.AddRoutine(c.Request.Context(), r)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
