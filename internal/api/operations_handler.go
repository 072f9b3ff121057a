package api

import (
	"fmt"
	"net/http"
	"time"

	"alcyxob/gym-dashboard/internal/domain"
	"alcyxob/gym-dashboard/internal/state"

	"github.com/gin-gonic/gin"
)

// OperationsHandler serves staff tasks, equipment and incident reports.
type OperationsHandler struct {
	store *state.Store
}

func NewOperationsHandler(store *state.Store) *OperationsHandler {
	return &OperationsHandler{store: store}
}

type TaskRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	AssignedTo  string            `json:"assignedTo" binding:"required"`
	Status      domain.TaskStatus `json:"status"`
	DueDate     *time.Time        `json:"dueDate"`
}

type EquipmentStatusRequest struct {
	Status domain.EquipmentStatus `json:"status" binding:"required"`
}

type IncidentRequest struct {
	EquipmentID string `json:"equipmentId"`
	Description string `json:"description" binding:"required"`
}

// --- Tasks ---

// ListTasks returns every task to management and the caller's own tasks to other staff.
func (h *OperationsHandler) ListTasks(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}
	if isManagement(role) {
		c.JSON(http.StatusOK, h.store.Tasks())
		return
	}
	c.JSON(http.StatusOK, h.store.TasksFor(userID))
}

func (h *OperationsHandler) CreateTask(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	if _, found := h.store.User(req.AssignedTo); !found {
		abortWithError(c, http.StatusNotFound, state.ErrUserNotFound.Error())
		return
	}
	task, err := h.store.AddTask(c.Request.Context(), domain.Task{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		AssignedBy:  userID,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask godoc
// @Summary Update a task
// @Description The assignee may change the status; management may change everything.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param task body TaskRequest true "Task"
// @Success 200 {object} domain.Task
// @Router /tasks/{id} [put]
func (h *OperationsHandler) UpdateTask(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}
	existing, found := h.store.Task(c.Param("id"))
	if !found {
		abortWithError(c, http.StatusNotFound, state.ErrTaskNotFound.Error())
		return
	}
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	updated := existing
	switch {
	case isManagement(role):
		updated.Title = req.Title
		updated.Description = req.Description
		updated.AssignedTo = req.AssignedTo
		updated.DueDate = req.DueDate
		if req.Status != "" {
			updated.Status = req.Status
		}
	case existing.AssignedTo == userID:
		if req.Status != "" {
			updated.Status = req.Status
		}
	default:
		abortWithError(c, http.StatusForbidden, "Access denied")
		return
	}

	task, err := h.store.UpdateTask(c.Request.Context(), updated)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *OperationsHandler) DeleteTask(c *gin.Context) {
	if err := h.store.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Equipment ---

func (h *OperationsHandler) ListEquipment(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Equipment())
}

func (h *OperationsHandler) CreateEquipment(c *gin.Context) {
	var item domain.EquipmentItem
	if err := c.ShouldBindJSON(&item); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	created, err := h.store.AddEquipment(c.Request.Context(), item)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *OperationsHandler) UpdateEquipment(c *gin.Context) {
	var item domain.EquipmentItem
	if err := c.ShouldBindJSON(&item); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	item.ID = c.Param("id")
	updated, err := h.store.UpdateEquipment(c.Request.Context(), item)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *OperationsHandler) SetEquipmentStatus(c *gin.Context) {
	var req EquipmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	item, err := h.store.SetEquipmentStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *OperationsHandler) DeleteEquipment(c *gin.Context) {
	if err := h.store.DeleteEquipment(c.Request.Context(), c.Param("id")); err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Incidents ---

func (h *OperationsHandler) ListIncidents(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Incidents())
}

// ReportIncident godoc
// @Summary Report an incident
// @Description Naming a known piece of equipment also marks it Out of Order.
// @Tags Incidents
// @Accept json
// @Produce json
// @Param incident body IncidentRequest true "Incident"
// @Success 201 {object} domain.Incident
// @Router /incidents [post]
func (h *OperationsHandler) ReportIncident(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}
	var req IncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	in, err := h.store.ReportIncident(c.Request.Context(), domain.Incident{
		ReporterID:  userID,
		EquipmentID: req.EquipmentID,
		Description: req.Description,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, in)
}

func (h *OperationsHandler) ResolveIncident(c *gin.Context) {
	in, err := h.store.ResolveIncident(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, in)
}
