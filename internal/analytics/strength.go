// Package analytics computes dashboard statistics from state snapshots.
// Everything here is a pure function and is recomputed on every read.
package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"alcyxob/gym-dashboard/internal/domain"
)

// Brzycki formula coefficients.
const (
	brzyckiIntercept = 1.0278
	brzyckiSlope     = 0.0278
)

// OneRepMax estimates the one-rep max for a set with the Brzycki formula.
// ok is false for sets that were not performed (zero weight or reps) and for
// rep counts of 37 or more, where the formula's denominator is no longer positive.
func OneRepMax(weight float64, reps int) (estimate float64, ok bool) {
	if weight <= 0 || reps <= 0 {
		return 0, false
	}
	denom := brzyckiIntercept - brzyckiSlope*float64(reps)
	if denom <= 0 {
		return 0, false
	}
	return weight / denom, true
}

// ProgressPoint summarises one exercise within one session.
type ProgressPoint struct {
	SessionID string    `json:"sessionId"`
	Date      time.Time `json:"date"`
	OneRepMax float64   `json:"oneRepMax"` // rounded to one decimal
	MaxWeight float64   `json:"maxWeight"`
	Volume    float64   `json:"volume"`
}

// ExerciseProgress builds the oldest-first series for exercise across history.
// Sessions without a valid set of that exercise are left out, not zero-filled.
func ExerciseProgress(history []domain.WorkoutSession, exercise string) []ProgressPoint {
	points := []ProgressPoint{}
	for _, session := range history {
		var (
			best, maxWeight, volume float64
			found                   bool
		)
		for _, ex := range session.Exercises {
			if ex.Name != exercise {
				continue
			}
			for _, set := range ex.CompletedSets {
				orm, ok := OneRepMax(set.Weight, set.Reps)
				if !ok {
					continue
				}
				found = true
				best = math.Max(best, orm)
				maxWeight = math.Max(maxWeight, set.Weight)
				volume += set.Weight * float64(set.Reps)
			}
		}
		if !found {
			continue
		}
		points = append(points, ProgressPoint{
			SessionID: session.ID,
			Date:      session.Date,
			OneRepMax: round1(best),
			MaxWeight: maxWeight,
			Volume:    volume,
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}

// PersonalBest holds the best value of each series metric.
type PersonalBest struct {
	OneRepMax float64 `json:"oneRepMax"`
	MaxWeight float64 `json:"maxWeight"`
	Volume    float64 `json:"volume"`
}

// PersonalBests takes the max of each metric across a progress series.
func PersonalBests(points []ProgressPoint) PersonalBest {
	var pb PersonalBest
	for _, p := range points {
		pb.OneRepMax = math.Max(pb.OneRepMax, p.OneRepMax)
		pb.MaxWeight = math.Max(pb.MaxWeight, p.MaxWeight)
		pb.Volume = math.Max(pb.Volume, p.Volume)
	}
	return pb
}

// ExerciseNames lists the distinct exercise names in history, sorted.
// Blank names from freestyle sessions stay in history but are not offered here.
func ExerciseNames(history []domain.WorkoutSession) []string {
	seen := map[string]bool{}
	names := []string{}
	for _, session := range history {
		for _, ex := range session.Exercises {
			if strings.TrimSpace(ex.Name) == "" || seen[ex.Name] {
				continue
			}
			seen[ex.Name] = true
			names = append(names, ex.Name)
		}
	}
	sort.Strings(names)
	return names
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
