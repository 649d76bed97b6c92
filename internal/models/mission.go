package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// MissionType is the cadence a mission belongs to.
type MissionType string

const (
	MissionDaily  MissionType = "DAILY"
	MissionWeekly MissionType = "WEEKLY"
)

// MissionStatus is the lifecycle state of a mission. COMPLETED and EXPIRED
// are terminal.
type MissionStatus string

const (
	StatusActive    MissionStatus = "ACTIVE"
	StatusCompleted MissionStatus = "COMPLETED"
	StatusExpired   MissionStatus = "EXPIRED"
)

// GoalKind is the wire discriminant of a requirement.
type GoalKind string

const (
	GoalWorkoutCount     GoalKind = "WORKOUT_COUNT"
	GoalExerciseCount    GoalKind = "EXERCISE_COUNT"
	GoalVolume           GoalKind = "VOLUME"
	GoalDuration         GoalKind = "DURATION"
	GoalSpecificExercise GoalKind = "SPECIFIC_EXERCISE"
)

// Goal is the kind-specific part of a mission requirement. Progress returns
// how much a completed workout advances the requirement.
type Goal interface {
	Kind() GoalKind
	Progress(w *Workout) float64
}

// WorkoutCountGoal advances by one per completed workout.
type WorkoutCountGoal struct{}

func (WorkoutCountGoal) Kind() GoalKind            { return GoalWorkoutCount }
func (WorkoutCountGoal) Progress(*Workout) float64 { return 1 }

// SetCountGoal advances by the number of completed sets. It is stored
// under the EXERCISE_COUNT kind.
type SetCountGoal struct{}

func (SetCountGoal) Kind() GoalKind { return GoalExerciseCount }
func (SetCountGoal) Progress(w *Workout) float64 {
	return float64(w.CompletedSets())
}

// VolumeGoal advances by the workout's total volume in pounds.
type VolumeGoal struct{}

func (VolumeGoal) Kind() GoalKind              { return GoalVolume }
func (VolumeGoal) Progress(w *Workout) float64 { return w.TotalVolume }

// DurationGoal advances by the workout's duration in minutes.
type DurationGoal struct{}

func (DurationGoal) Kind() GoalKind              { return GoalDuration }
func (DurationGoal) Progress(w *Workout) float64 { return float64(w.Duration) }

// SpecificExerciseGoal advances by one when the workout contains ExerciseID.
type SpecificExerciseGoal struct {
	ExerciseID   string
	ExerciseName string
}

func (SpecificExerciseGoal) Kind() GoalKind { return GoalSpecificExercise }
func (g SpecificExerciseGoal) Progress(w *Workout) float64 {
	if w.HasExercise(g.ExerciseID) {
		return 1
	}
	return 0
}

// Requirement tracks progress of a mission toward its target.
type Requirement struct {
	Goal    Goal
	Target  float64
	Current float64
}

// Met reports whether the requirement has reached its target.
func (r Requirement) Met() bool {
	return r.Current >= r.Target
}

type requirementJSON struct {
	Type         GoalKind `json:"type"`
	Target       float64  `json:"target"`
	Current      float64  `json:"current"`
	ExerciseID   string   `json:"exerciseId,omitempty"`
	ExerciseName string   `json:"exerciseName,omitempty"`
}

// MarshalJSON writes the flat {type, target, current, ...} form.
func (r Requirement) MarshalJSON() ([]byte, error) {
	if r.Goal == nil {
		return nil, fmt.Errorf("requirement has no goal")
	}
	out := requirementJSON{Type: r.Goal.Kind(), Target: r.Target, Current: r.Current}
	if g, ok := r.Goal.(SpecificExerciseGoal); ok {
		out.ExerciseID = g.ExerciseID
		out.ExerciseName = g.ExerciseName
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the flat form and selects the goal variant by type.
func (r *Requirement) UnmarshalJSON(data []byte) error {
	var in requirementJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	goal, err := goalFor(in)
	if err != nil {
		return err
	}
	r.Goal = goal
	r.Target = in.Target
	r.Current = in.Current
	return nil
}

func goalFor(in requirementJSON) (Goal, error) {
	switch in.Type {
	case GoalWorkoutCount:
		return WorkoutCountGoal{}, nil
	case GoalExerciseCount:
		return SetCountGoal{}, nil
	case GoalVolume:
		return VolumeGoal{}, nil
	case GoalDuration:
		return DurationGoal{}, nil
	case GoalSpecificExercise:
		if in.ExerciseID == "" {
			return nil, fmt.Errorf("requirement %s: exerciseId is required", in.Type)
		}
		return SpecificExerciseGoal{ExerciseID: in.ExerciseID, ExerciseName: in.ExerciseName}, nil
	default:
		return nil, fmt.Errorf("unknown requirement type %q", in.Type)
	}
}

// Mission is a time-boxed objective tracked against completed workouts.
type Mission struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Type        MissionType   `json:"type"`
	Requirement Requirement   `json:"requirement"`
	XPReward    int64         `json:"xpReward"`
	Status      MissionStatus `json:"status"`
	ExpiresAt   time.Time     `json:"expiresAt"`
	CreatedAt   time.Time     `json:"createdAt"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
}

// Expired reports whether the mission's deadline has passed at now.
func (m Mission) Expired(now time.Time) bool {
	return !m.ExpiresAt.After(now)
}

// Covers reports whether t falls inside the mission's window, which runs from
// the start of the day the mission was created until it expires.
func (m Mission) Covers(t time.Time) bool {
	c := m.CreatedAt
	opened := time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, c.Location())
	return !t.Before(opened) && t.Before(m.ExpiresAt)
}
