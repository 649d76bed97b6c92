package models

import (
	"fmt"
	"time"
)

// WorkoutSet is one set of an exercise. Weight is in pounds, Duration in
// minutes. Absent numeric fields are zero.
type WorkoutSet struct {
	SetNumber int     `json:"setNumber"`
	Reps      int     `json:"reps,omitempty"`
	Weight    float64 `json:"weight,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
	Calories  float64 `json:"calories,omitempty"`
	Completed bool    `json:"completed"`
}

// Volume returns reps × weight for a completed set, zero otherwise.
func (s WorkoutSet) Volume() float64 {
	if !s.Completed {
		return 0
	}
	return float64(s.Reps) * s.Weight
}

// WorkoutExercise is an exercise as performed within one workout.
type WorkoutExercise struct {
	ID           string       `json:"id"`
	ExerciseID   string       `json:"exerciseId"`
	ExerciseName string       `json:"exerciseName"`
	Sets         []WorkoutSet `json:"sets"`
	Notes        string       `json:"notes,omitempty"`
}

// Workout is a single training session.
type Workout struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	Title       string            `json:"title"`
	Exercises   []WorkoutExercise `json:"exercises"`
	StartTime   time.Time         `json:"startTime"`
	EndTime     *time.Time        `json:"endTime,omitempty"`
	Duration    int               `json:"duration"`
	TotalVolume float64           `json:"totalVolume"`
	XPEarned    int64             `json:"xpEarned"`
	Completed   bool              `json:"completed"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// CompletedSets returns the number of completed sets across all exercises.
func (w *Workout) CompletedSets() int {
	n := 0
	for _, ex := range w.Exercises {
		for _, s := range ex.Sets {
			if s.Completed {
				n++
			}
		}
	}
	return n
}

// ComputeVolume sums reps × weight over completed sets.
func (w *Workout) ComputeVolume() float64 {
	var total float64
	for _, ex := range w.Exercises {
		for _, s := range ex.Sets {
			total += s.Volume()
		}
	}
	return total
}

// HasExercise reports whether any exercise entry references exerciseID.
func (w *Workout) HasExercise(exerciseID string) bool {
	for _, ex := range w.Exercises {
		if ex.ExerciseID == exerciseID {
			return true
		}
	}
	return false
}

// Finalize closes the workout at end: it records the end time, the whole
// minutes elapsed since StartTime, the total volume, and marks it completed.
func (w *Workout) Finalize(end time.Time) {
	w.EndTime = &end
	minutes := int(end.Sub(w.StartTime) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	w.Duration = minutes
	w.TotalVolume = w.ComputeVolume()
	w.Completed = true
}

// Validate checks the fields a workout needs before it can be recorded.
func (w *Workout) Validate() error {
	if w.StartTime.IsZero() {
		return fmt.Errorf("startTime is required")
	}
	if w.Duration < 0 {
		return fmt.Errorf("duration must be >= 0, got %d", w.Duration)
	}
	for i, ex := range w.Exercises {
		if ex.ExerciseName == "" && ex.ExerciseID == "" {
			return fmt.Errorf("exercise %d: exerciseId or exerciseName is required", i)
		}
		for _, s := range ex.Sets {
			if s.Reps < 0 || s.Weight < 0 || s.Duration < 0 || s.Calories < 0 {
				return fmt.Errorf("exercise %d set %d: negative values are not allowed", i, s.SetNumber)
			}
		}
	}
	return nil
}

// WorkoutTemplate is a saved exercise list a user can start workouts from.
type WorkoutTemplate struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Title     string            `json:"title"`
	Exercises []WorkoutExercise `json:"exercises"`
	CreatedAt time.Time         `json:"createdAt"`
	LastUsed  *time.Time        `json:"lastUsed,omitempty"`
}
