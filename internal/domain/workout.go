package domain

import (
	"time"
)

// LoggedSet is one performed set. Zero weight or reps means the set was not performed.
type LoggedSet struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

// Valid is true when the set counts towards metrics.
func (s LoggedSet) Valid() bool {
	return s.Weight > 0 && s.Reps > 0
}

// LoggedExercise pairs the planned target with what was actually done.
// len(CompletedSets) need not equal PlannedSets.
type LoggedExercise struct {
	Name          string      `json:"name"`
	PlannedSets   int         `json:"plannedSets"`
	PlannedReps   string      `json:"plannedReps"` // rep scheme, e.g. "8-12"
	CompletedSets []LoggedSet `json:"completedSets"`
}

// WorkoutSession is one logged training day, owned by a single user.
type WorkoutSession struct {
	ID        string           `json:"id"`
	Date      time.Time        `json:"date"`
	RoutineID string           `json:"routineId,omitempty"`
	Name      string           `json:"name,omitempty"`
	Exercises []LoggedExercise `json:"exercises"`
	Notes     string           `json:"notes,omitempty"`
}

func (s WorkoutSession) Clone() WorkoutSession {
	c := s
	c.Exercises = make([]LoggedExercise, len(s.Exercises))
	for i, e := range s.Exercises {
		e.CompletedSets = append([]LoggedSet(nil), e.CompletedSets...)
		c.Exercises[i] = e
	}
	return c
}

// RoutineExercise is a planned exercise inside a Routine template.
type RoutineExercise struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Reps string `json:"reps"`
}

// Routine is a reusable workout template authored by staff.
type Routine struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	AuthorID    string            `json:"authorId"`
	Exercises   []RoutineExercise `json:"exercises"`
	CreatedAt   time.Time         `json:"createdAt"`
}
