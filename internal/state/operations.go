package state

import (
	"context"
	"fmt"

	"alcyxob/gym-dashboard/internal/domain"
)

// --- Tasks ---

func (s *Store) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.tasks)
}

// TasksFor lists tasks assigned to or by userID.
func (s *Store) TasksFor(userID string) []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Task{}
	for _, t := range s.tasks {
		if t.AssignedTo == userID || t.AssignedBy == userID {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) Task(id string) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.taskIndex(id)
	if i < 0 {
		return domain.Task{}, false
	}
	return s.tasks[i], true
}

func (s *Store) AddTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	if t.Title == "" || t.AssignedTo == "" {
		return domain.Task{}, fmt.Errorf("%w: a task needs a title and an assignee", ErrInvalidInput)
	}
	if t.Status == "" {
		t.Status = domain.TaskPending
	}
	if !t.Status.Valid() {
		return domain.Task{}, fmt.Errorf("%w: unknown task status %q", ErrInvalidInput, t.Status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.newID()
	t.CreatedAt = s.now()
	s.tasks = append(s.tasks, t)
	s.persist(ctx, KeyTasks, s.tasks)
	return t, nil
}

// UpdateTask replaces the task with the same ID.
func (s *Store) UpdateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	if !t.Status.Valid() {
		return domain.Task{}, fmt.Errorf("%w: unknown task status %q", ErrInvalidInput, t.Status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.taskIndex(t.ID)
	if i < 0 {
		return domain.Task{}, ErrTaskNotFound
	}
	t.CreatedAt = s.tasks[i].CreatedAt
	s.tasks[i] = t
	s.persist(ctx, KeyTasks, s.tasks)
	return t, nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.taskIndex(id)
	if i < 0 {
		return ErrTaskNotFound
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.persist(ctx, KeyTasks, s.tasks)
	return nil
}

func (s *Store) taskIndex(id string) int {
	return indexOf(s.tasks, func(t domain.Task) bool { return t.ID == id })
}

// --- Equipment ---

func (s *Store) Equipment() []domain.EquipmentItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.equipment)
}

// EquipmentItem resolves an equipment reference; incidents may name removed items.
func (s *Store) EquipmentItem(id string) (domain.EquipmentItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.equipmentIndex(id)
	if i < 0 {
		return domain.EquipmentItem{}, false
	}
	return s.equipment[i], true
}

func (s *Store) AddEquipment(ctx context.Context, e domain.EquipmentItem) (domain.EquipmentItem, error) {
	if e.Status == "" {
		e.Status = domain.EquipmentOperational
	}
	if e.Name == "" || !e.Status.Valid() {
		return domain.EquipmentItem{}, fmt.Errorf("%w: equipment needs a name and a known status", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.newID()
	s.equipment = append(s.equipment, e)
	s.persist(ctx, KeyEquipment, s.equipment)
	return e, nil
}

func (s *Store) UpdateEquipment(ctx context.Context, e domain.EquipmentItem) (domain.EquipmentItem, error) {
	if e.Name == "" || !e.Status.Valid() {
		return domain.EquipmentItem{}, fmt.Errorf("%w: equipment needs a name and a known status", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.equipmentIndex(e.ID)
	if i < 0 {
		return domain.EquipmentItem{}, ErrEquipmentNotFound
	}
	s.equipment[i] = e
	s.persist(ctx, KeyEquipment, s.equipment)
	return e, nil
}

// SetEquipmentStatus changes status. Returning an item to Operational stamps
// its maintenance date.
func (s *Store) SetEquipmentStatus(ctx context.Context, id string, status domain.EquipmentStatus) (domain.EquipmentItem, error) {
	if !status.Valid() {
		return domain.EquipmentItem{}, fmt.Errorf("%w: unknown equipment status %q", ErrInvalidInput, status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.equipmentIndex(id)
	if i < 0 {
		return domain.EquipmentItem{}, ErrEquipmentNotFound
	}
	e := &s.equipment[i]
	if e.Status != domain.EquipmentOperational && status == domain.EquipmentOperational {
		now := s.now()
		e.LastMaintenance = &now
	}
	e.Status = status
	s.persist(ctx, KeyEquipment, s.equipment)
	return *e, nil
}

func (s *Store) DeleteEquipment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.equipmentIndex(id)
	if i < 0 {
		return ErrEquipmentNotFound
	}
	s.equipment = append(s.equipment[:i], s.equipment[i+1:]...)
	s.persist(ctx, KeyEquipment, s.equipment)
	return nil
}

func (s *Store) equipmentIndex(id string) int {
	return indexOf(s.equipment, func(e domain.EquipmentItem) bool { return e.ID == id })
}

// --- Incidents ---

func (s *Store) Incidents() []domain.Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySlice(s.incidents)
}

// ReportIncident records an open incident. When it names known equipment that
// item is taken out of order in the same step.
func (s *Store) ReportIncident(ctx context.Context, in domain.Incident) (domain.Incident, error) {
	if in.ReporterID == "" || in.Description == "" {
		return domain.Incident{}, fmt.Errorf("%w: reporter and description are required", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	in.ID = s.newID()
	in.Status = domain.IncidentOpen
	in.CreatedAt = s.now()
	in.ResolvedAt = nil
	s.incidents = append(s.incidents, in)
	s.persist(ctx, KeyIncidents, s.incidents)

	if i := s.equipmentIndex(in.EquipmentID); in.EquipmentID != "" && i >= 0 {
		s.equipment[i].Status = domain.EquipmentOutOfOrder
		s.persist(ctx, KeyEquipment, s.equipment)
	}
	return in, nil
}

func (s *Store) ResolveIncident(ctx context.Context, id string) (domain.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.incidents, func(in domain.Incident) bool { return in.ID == id })
	if i < 0 {
		return domain.Incident{}, ErrIncidentNotFound
	}
	in := &s.incidents[i]
	if in.Status != domain.IncidentResolved {
		now := s.now()
		in.Status = domain.IncidentResolved
		in.ResolvedAt = &now
		s.persist(ctx, KeyIncidents, s.incidents)
	}
	return *in, nil
}
