// Package missions generates daily and weekly missions and advances them
// against completed workouts. Functions return new slices and never modify
// their inputs.
package missions

import (
	"fmt"
	"time"

	"github.com/DaraMoh/solo-gym-app/internal/models"
)

// RetentionWindow is how long finished missions are kept after they expire
// or complete.
const RetentionWindow = 24 * time.Hour

type template struct {
	idPrefix    string
	title       string
	description string
	goal        models.Goal
	target      float64
	xpReward    int64
}

var dailyTemplates = []template{
	{"daily_workout", "Daily Grind", "Complete a workout today", models.WorkoutCountGoal{}, 1, 50},
	{"daily_sets", "Push Your Limits", "Complete 15 sets today", models.SetCountGoal{}, 15, 75},
	{"daily_volume", "Strength Builder", "Lift a total of 2500 lbs", models.VolumeGoal{}, 2500, 100},
}

var weeklyTemplates = []template{
	{"weekly_workouts", "Consistency King", "Complete 5 workouts this week", models.WorkoutCountGoal{}, 5, 250},
	{"weekly_duration", "Marathon Runner", "Train for 300 minutes this week", models.DurationGoal{}, 300, 300},
	{"weekly_volume", "Heavy Lifter", "Lift a total of 25,000 lbs this week", models.VolumeGoal{}, 25000, 500},
}

// GenerateDaily returns a fresh batch of daily missions expiring at the next
// local midnight after now.
func GenerateDaily(now time.Time) []models.Mission {
	return generate(dailyTemplates, models.MissionDaily, startOfDay(now).AddDate(0, 0, 1), now)
}

// GenerateWeekly returns a fresh batch of weekly missions expiring at
// midnight seven days from now.
func GenerateWeekly(now time.Time) []models.Mission {
	return generate(weeklyTemplates, models.MissionWeekly, startOfDay(now).AddDate(0, 0, 7), now)
}

// Generate returns a fresh batch for the given mission type.
func Generate(t models.MissionType, now time.Time) []models.Mission {
	if t == models.MissionWeekly {
		return GenerateWeekly(now)
	}
	return GenerateDaily(now)
}

func generate(tmpls []template, typ models.MissionType, expires, now time.Time) []models.Mission {
	out := make([]models.Mission, 0, len(tmpls))
	for _, tm := range tmpls {
		out = append(out, models.Mission{
			ID:          fmt.Sprintf("%s_%d", tm.idPrefix, now.UnixMilli()),
			Title:       tm.title,
			Description: tm.description,
			Type:        typ,
			Requirement: models.Requirement{Goal: tm.goal, Target: tm.target},
			XPReward:    tm.xpReward,
			Status:      models.StatusActive,
			ExpiresAt:   expires,
			CreatedAt:   now,
		})
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ShouldRefresh reports whether the batch of type t needs regenerating:
// either none exists or one of them has reached its deadline.
func ShouldRefresh(missions []models.Mission, t models.MissionType, now time.Time) bool {
	found := false
	for _, m := range missions {
		if m.Type != t {
			continue
		}
		found = true
		if m.Expired(now) {
			return true
		}
	}
	return !found
}

// UpdateProgress advances every active mission by a completed workout. When
// the workout is not completed the input slice is returned as is. Active
// missions past their deadline are expired without progress; missions that
// reach their target are completed at now. A workout recorded outside a
// mission's window does not count toward it. A workout without a CreatedAt
// is taken as recorded at now.
func UpdateProgress(missions []models.Mission, w *models.Workout, now time.Time) []models.Mission {
	if w == nil || !w.Completed {
		return missions
	}
	at := w.CreatedAt
	if at.IsZero() {
		at = now
	}
	out := make([]models.Mission, len(missions))
	for i, m := range missions {
		out[i] = advance(m, w, at, now)
	}
	return out
}

func advance(m models.Mission, w *models.Workout, at, now time.Time) models.Mission {
	if m.Status != models.StatusActive {
		return m
	}
	if m.Expired(now) {
		m.Status = models.StatusExpired
		return m
	}
	if !m.Covers(at) {
		return m
	}
	if m.Requirement.Goal != nil {
		m.Requirement.Current += m.Requirement.Goal.Progress(w)
	}
	if m.Requirement.Met() {
		completed := now
		m.Status = models.StatusCompleted
		m.CompletedAt = &completed
	}
	return m
}

// CleanupExpired marks every active mission past its deadline as expired.
func CleanupExpired(missions []models.Mission, now time.Time) []models.Mission {
	out := make([]models.Mission, len(missions))
	for i, m := range missions {
		if m.Status == models.StatusActive && m.Expired(now) {
			m.Status = models.StatusExpired
		}
		out[i] = m
	}
	return out
}

// RemoveOld drops missions that finished more than RetentionWindow ago.
// Active missions are always kept.
func RemoveOld(missions []models.Mission, now time.Time) []models.Mission {
	cutoff := now.Add(-RetentionWindow)
	out := make([]models.Mission, 0, len(missions))
	for _, m := range missions {
		switch m.Status {
		case models.StatusActive:
			out = append(out, m)
		case models.StatusExpired:
			if m.ExpiresAt.After(cutoff) {
				out = append(out, m)
			}
		case models.StatusCompleted:
			if m.CompletedAt != nil && m.CompletedAt.After(cutoff) {
				out = append(out, m)
			}
		}
	}
	return out
}

// Refresh expires overdue missions, replaces the batch of each type that
// needs regenerating, and prunes finished missions outside the retention
// window.
func Refresh(missions []models.Mission, now time.Time) []models.Mission {
	out := CleanupExpired(missions, now)
	for _, t := range []models.MissionType{models.MissionDaily, models.MissionWeekly} {
		if !ShouldRefresh(out, t, now) {
			continue
		}
		out = append(withoutType(out, t), Generate(t, now)...)
	}
	return RemoveOld(out, now)
}

// withoutType drops every mission of type t, so a regenerated batch fully
// replaces the previous one.
func withoutType(missions []models.Mission, t models.MissionType) []models.Mission {
	out := make([]models.Mission, 0, len(missions))
	for _, m := range missions {
		if m.Type == t {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Active returns the missions still in progress.
func Active(missions []models.Mission) []models.Mission {
	return byStatus(missions, models.StatusActive)
}

// Completed returns the completed missions.
func Completed(missions []models.Mission) []models.Mission {
	return byStatus(missions, models.StatusCompleted)
}

func byStatus(missions []models.Mission, s models.MissionStatus) []models.Mission {
	out := make([]models.Mission, 0, len(missions))
	for _, m := range missions {
		if m.Status == s {
			out = append(out, m)
		}
	}
	return out
}

// CompletedXP sums the rewards of completed missions.
func CompletedXP(missions []models.Mission) int64 {
	var total int64
	for _, m := range missions {
		if m.Status == models.StatusCompleted {
			total += m.XPReward
		}
	}
	return total
}

// NewlyCompleted returns the missions completed in after that were not
// completed in before, matched by ID.
func NewlyCompleted(before, after []models.Mission) []models.Mission {
	done := make(map[string]bool, len(before))
	for _, m := range before {
		if m.Status == models.StatusCompleted {
			done[m.ID] = true
		}
	}
	var out []models.Mission
	for _, m := range after {
		if m.Status == models.StatusCompleted && !done[m.ID] {
			out = append(out, m)
		}
	}
	return out
}
