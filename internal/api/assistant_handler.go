package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"alcyxob/gym-dashboard/internal/domain"
	"alcyxob/gym-dashboard/internal/service"
	"alcyxob/gym-dashboard/internal/state"

	"github.com/gin-gonic/gin"
)

// maxMealPhotoBytes caps uploaded meal photos.
const maxMealPhotoBytes = 8 << 20

// AssistantHandler serves the AI coach and the meal log.
type AssistantHandler struct {
	store     *state.Store
	coach     service.CoachService
	nutrition service.NutritionService
}

func NewAssistantHandler(store *state.Store, coach service.CoachService, nutrition service.NutritionService) *AssistantHandler {
	return &AssistantHandler{store: store, coach: coach, nutrition: nutrition}
}

type CoachRequest struct {
	Message string `json:"message" binding:"required"`
}

type MealJSONRequest struct {
	Description string `json:"description" binding:"required"`
}

// MealResponse carries the saved entry. Warning is set when the analysis
// could not be attached.
type MealResponse struct {
	Entry   domain.NutritionLog `json:"entry"`
	Warning string              `json:"warning,omitempty"`
}

// AskCoach godoc
// @Summary Ask the AI coach
// @Description The question is stored before the model is called, so it survives a failed call.
// @Tags Assistant
// @Accept json
// @Produce json
// @Param question body CoachRequest true "Question"
// @Success 200 {object} gin.H "reply"
// @Failure 409 {object} gin.H "A newer question superseded this one"
// @Failure 503 {object} gin.H "Assistant unavailable"
// @Router /coach [post]
func (h *AssistantHandler) AskCoach(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	var req CoachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	reply, err := h.coach.Ask(c.Request.Context(), userID, req.Message)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (h *AssistantHandler) CoachHistory(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	u, _ := h.store.User(userID)
	c.JSON(http.StatusOK, nonNil(u.AICoachHistory))
}

func (h *AssistantHandler) ClearCoachHistory(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	if err := h.coach.Clear(c.Request.Context(), userID); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LogMeal godoc
// @Summary Log a meal
// @Description Accepts JSON {description} or multipart with "description" and a "photo" file. The entry is saved first; the AI estimate is merged into it when available.
// @Tags Assistant
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} MealResponse "Saved and analysed"
// @Success 202 {object} MealResponse "Saved without analysis"
// @Router /meals [post]
func (h *AssistantHandler) LogMeal(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	req, ok := bindMeal(c)
	if !ok {
		return
	}

	entry, err := h.nutrition.LogMeal(c.Request.Context(), userID, req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, MealResponse{Entry: entry})
	case entry.ID != "" && (errors.Is(err, service.ErrAIUnavailable) || errors.Is(err, service.ErrStaleResponse)):
		c.JSON(http.StatusAccepted, MealResponse{Entry: entry, Warning: err.Error()})
	default:
		abortWithServiceError(c, err)
	}
}

func bindMeal(c *gin.Context) (service.MealRequest, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var body MealJSONRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
			return service.MealRequest{}, false
		}
		return service.MealRequest{Description: body.Description}, true
	}

	req := service.MealRequest{Description: c.PostForm("description")}
	fh, err := c.FormFile("photo")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid upload: %v", err))
		return req, false
	}
	if fh != nil {
		if fh.Size > maxMealPhotoBytes {
			abortWithError(c, http.StatusRequestEntityTooLarge, "Photo is too large")
			return req, false
		}
		f, err := fh.Open()
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid upload: %v", err))
			return req, false
		}
		defer f.Close()
		req.Photo, err = io.ReadAll(io.LimitReader(f, maxMealPhotoBytes))
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid upload: %v", err))
			return req, false
		}
		req.ContentType = fh.Header.Get("Content-Type")
	}
	if req.Description == "" && len(req.Photo) == 0 {
		abortWithError(c, http.StatusBadRequest, "A meal needs a description or a photo")
		return req, false
	}
	return req, true
}

func (h *AssistantHandler) ListMeals(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	u, _ := h.store.User(userID)
	c.JSON(http.StatusOK, nonNil(u.NutritionLogs))
}

// UpdateMeal edits a meal's description. An analysis still in flight for it is discarded.
func (h *AssistantHandler) UpdateMeal(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	var body MealJSONRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	entry, ok := h.findMeal(c, userID)
	if !ok {
		return
	}
	entry.Description = body.Description
	updated, err := h.store.UpdateNutritionLog(c.Request.Context(), userID, entry)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// MealPhoto returns a short-lived download URL for the meal photo.
func (h *AssistantHandler) MealPhoto(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	entry, ok := h.findMeal(c, userID)
	if !ok {
		return
	}
	if entry.PhotoKey == "" {
		abortWithError(c, http.StatusNotFound, "This meal has no stored photo")
		return
	}
	url, err := h.nutrition.PhotoURL(c.Request.Context(), entry.PhotoKey)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *AssistantHandler) findMeal(c *gin.Context, userID string) (domain.NutritionLog, bool) {
	u, _ := h.store.User(userID)
	for _, l := range u.NutritionLogs {
		if l.ID == c.Param("id") {
			return l, true
		}
	}
	abortWithError(c, http.StatusNotFound, state.ErrNutritionLogNotFound.Error())
	return domain.NutritionLog{}, false
}
