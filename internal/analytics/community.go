package analytics

import (
	"sort"

	"alcyxob/gym-dashboard/internal/domain"
)

const leaderboardSize = 10

// LeaderboardEntry is one ranked client.
type LeaderboardEntry struct {
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	Workouts     int    `json:"workouts"`
	Achievements int    `json:"achievements"`
	Score        int    `json:"score"`
}

// Score weights a logged workout at 100 and an achievement at 50.
func Score(u domain.User) int {
	return len(u.WorkoutHistory)*100 + len(u.Achievements)*50
}

// Leaderboard ranks clients by Score, highest first. Ties keep input order.
func Leaderboard(users []domain.User) []LeaderboardEntry {
	entries := []LeaderboardEntry{}
	for _, u := range users {
		if !u.IsClient() {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			UserID:       u.ID,
			Name:         u.Name,
			Workouts:     len(u.WorkoutHistory),
			Achievements: len(u.Achievements),
			Score:        Score(u),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	if len(entries) > leaderboardSize {
		entries = entries[:leaderboardSize]
	}
	return entries
}

// Occupancy is how full one class is.
type Occupancy struct {
	ClassID  string  `json:"classId"`
	Name     string  `json:"name"`
	Booked   int     `json:"booked"`
	Capacity int     `json:"capacity"`
	Rate     float64 `json:"rate"`
}

func ClassOccupancy(classes []domain.GymClass) []Occupancy {
	out := make([]Occupancy, 0, len(classes))
	for _, c := range classes {
		o := Occupancy{ClassID: c.ID, Name: c.Name, Booked: len(c.BookedClientIDs), Capacity: c.Capacity}
		if c.Capacity > 0 {
			o.Rate = round1(float64(o.Booked) / float64(c.Capacity) * 100)
		}
		out = append(out, o)
	}
	return out
}
