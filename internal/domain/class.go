package domain

import "time"

// GymClass is a scheduled group session with a bounded roster.
// len(BookedClientIDs) <= Capacity, and an ID appears at most once.
type GymClass struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	InstructorID    string    `json:"instructorId,omitempty"`
	StartTime       time.Time `json:"startTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Capacity        int       `json:"capacity"`
	BookedClientIDs []string  `json:"bookedClientIds"`
}

// IsBooked reports whether userID is already on the roster.
func (c *GymClass) IsBooked(userID string) bool {
	for _, id := range c.BookedClientIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c GymClass) Clone() GymClass {
	c.BookedClientIDs = append([]string(nil), c.BookedClientIDs...)
	return c
}

// BookingResult is the outcome of a booking attempt.
type BookingResult string

const (
	BookingBooked             BookingResult = "booked"
	BookingAlreadyBooked      BookingResult = "already_booked"
	BookingFull               BookingResult = "full"
	BookingInactiveMembership BookingResult = "inactive_membership"
)
