package domain

import "time"

type TaskStatus string

const (
	TaskPending    TaskStatus = "Pending"
	TaskInProgress TaskStatus = "In Progress"
	TaskCompleted  TaskStatus = "Completed"
)

func (s TaskStatus) Valid() bool {
	return s == TaskPending || s == TaskInProgress || s == TaskCompleted
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssignedTo  string     `json:"assignedTo"`
	AssignedBy  string     `json:"assignedBy"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type EquipmentStatus string

const (
	EquipmentOperational EquipmentStatus = "Operational"
	EquipmentMaintenance EquipmentStatus = "Maintenance"
	EquipmentOutOfOrder  EquipmentStatus = "Out of Order"
)

func (s EquipmentStatus) Valid() bool {
	return s == EquipmentOperational || s == EquipmentMaintenance || s == EquipmentOutOfOrder
}

type EquipmentItem struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category,omitempty"`
	Status          EquipmentStatus `json:"status"`
	LastMaintenance *time.Time      `json:"lastMaintenance,omitempty"`
}

type IncidentStatus string

const (
	IncidentOpen     IncidentStatus = "Open"
	IncidentResolved IncidentStatus = "Resolved"
)

// Incident is a reported problem, optionally tied to a piece of equipment.
type Incident struct {
	ID          string         `json:"id"`
	ReporterID  string         `json:"reporterId"`
	EquipmentID string         `json:"equipmentId,omitempty"`
	Description string         `json:"description"`
	Status      IncidentStatus `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	ResolvedAt  *time.Time     `json:"resolvedAt,omitempty"`
}

type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

type Challenge struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	ParticipantIDs []string  `json:"participantIds"`
}

func (c Challenge) Clone() Challenge {
	c.ParticipantIDs = append([]string(nil), c.ParticipantIDs...)
	return c
}
