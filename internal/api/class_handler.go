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

// ClassHandler serves the class schedule and bookings.
type ClassHandler struct {
	store    *state.Store
	activity service.ActivityService
}

func NewClassHandler(store *state.Store, activity service.ActivityService) *ClassHandler {
	return &ClassHandler{store: store, activity: activity}
}

// BookingRequest names who to book. Clients may leave it empty to book themselves.
type BookingRequest struct {
	UserID string `json:"userId"`
}

type BookingResponse struct {
	Result   domain.BookingResult `json:"result"`
	Message  string               `json:"message"`
	Unlocked []string             `json:"unlocked"`
}

var bookingMessages = map[domain.BookingResult]string{
	domain.BookingBooked:             "Class booked successfully!",
	domain.BookingAlreadyBooked:      "You have already booked this class.",
	domain.BookingFull:               "Sorry, this class is full.",
	domain.BookingInactiveMembership: "An active membership is required to book classes.",
}

func (h *ClassHandler) ListClasses(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Classes())
}

// CreateClass godoc
// @Summary Schedule a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param class body domain.GymClass true "Class"
// @Success 201 {object} domain.GymClass
// @Router /classes [post]
func (h *ClassHandler) CreateClass(c *gin.Context) {
	callerID, role, ok := caller(c)
	if !ok {
		return
	}
	var class domain.GymClass
	if err := c.ShouldBindJSON(&class); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	if class.InstructorID == "" && role == domain.RoleInstructor {
		class.InstructorID = callerID
	}
	created, err := h.store.AddClass(c.Request.Context(), class)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// BookClass godoc
// @Summary Book a class
// @Description Business outcomes (already booked, full, inactive membership) are reported with 200 and a result code; only "booked" changes the roster.
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param booking body BookingRequest false "Member to book (front desk only)"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} gin.H "Class or user not found"
// @Router /classes/{id}/book [post]
func (h *ClassHandler) BookClass(c *gin.Context) {
	targetID, ok := h.bookingTarget(c)
	if !ok {
		return
	}
	result, unlocked, err := h.activity.BookClass(c.Request.Context(), c.Param("id"), targetID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, BookingResponse{Result: result, Message: bookingMessages[result], Unlocked: nonNil(unlocked)})
}

func (h *ClassHandler) CancelBooking(c *gin.Context) {
	targetID, ok := h.bookingTarget(c)
	if !ok {
		return
	}
	removed, err := h.store.CancelBooking(c.Request.Context(), c.Param("id"), targetID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": removed})
}

func (h *ClassHandler) Occupancy(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(analytics.ClassOccupancy(h.store.Classes())))
}

// bookingTarget resolves whose booking is being changed. Only the front desk
// may act for someone else.
func (h *ClassHandler) bookingTarget(c *gin.Context) (string, bool) {
	callerID, role, ok := caller(c)
	if !ok {
		return "", false
	}
	var req BookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
			return "", false
		}
	}
	if req.UserID == "" || req.UserID == callerID {
		return callerID, true
	}
	if !isFrontDesk(role) {
		abortWithError(c, http.StatusForbidden, "Only the front desk can book for other members")
		return "", false
	}
	return req.UserID, true
}
