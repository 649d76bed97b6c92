// Package progression computes XP, levels, ranks, derived stats and streaks
// from workout history. Every function is pure: inputs are never modified.
package progression

import (
	"math"
	"sort"
	"time"

	"github.com/DaraMoh/solo-gym-app/internal/models"
)

// XP award constants.
const (
	BaseWorkoutXP   = 50
	XPPerSet        = 5
	XPPerPound      = 0.2
	XPPerMinute     = 2
	CompletionBonus = 25
)

// WorkoutXP returns the XP a workout is worth:
//
//	50 + Σ completed sets (5 + weight×0.2) + duration×2 + (completed ? 25 : 0)
//
// floored to an integer.
func WorkoutXP(w *models.Workout) int64 {
	xp := float64(BaseWorkoutXP)
	for _, ex := range w.Exercises {
		for _, s := range ex.Sets {
			if !s.Completed {
				continue
			}
			xp += XPPerSet + s.Weight*XPPerPound
		}
	}
	xp += float64(w.Duration) * XPPerMinute
	if w.Completed {
		xp += CompletionBonus
	}
	return int64(math.Floor(xp))
}

// XPForLevel returns the XP needed to advance from level to level+1,
// floor(100 × 1.5^(level−1)). Levels below 1 are treated as 1. The result
// saturates at math.MaxInt64.
func XPForLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	v := math.Floor(100 * math.Pow(1.5, float64(level-1)))
	if v >= math.MaxInt64 || math.IsInf(v, 1) {
		return math.MaxInt64
	}
	return int64(v)
}

// TotalXPForLevel returns the cumulative XP needed to reach level from
// level 1.
func TotalXPForLevel(level int) int64 {
	var total int64
	for i := 1; i < level; i++ {
		req := XPForLevel(i)
		if total > math.MaxInt64-req {
			return math.MaxInt64
		}
		total += req
	}
	return total
}

// RankForLevel maps a level to its rank tier.
func RankForLevel(level int) models.Rank {
	switch {
	case level >= 100:
		return models.RankS
	case level >= 75:
		return models.RankA
	case level >= 50:
		return models.RankB
	case level >= 25:
		return models.RankC
	case level >= 10:
		return models.RankD
	default:
		return models.RankE
	}
}

// LevelUp is the outcome of ApplyXP. OldLevel and NewLevel are only set
// when LeveledUp is true.
type LevelUp struct {
	Profile   models.UserProfile `json:"profile"`
	LeveledUp bool               `json:"leveledUp"`
	OldLevel  int                `json:"oldLevel,omitempty"`
	NewLevel  int                `json:"newLevel,omitempty"`
}

// ApplyXP adds xp to a copy of profile, carrying over as many level-ups as
// the total covers, and recomputes the rank. Negative awards are ignored.
func ApplyXP(profile models.UserProfile, xp int64) LevelUp {
	p := profile
	if p.Level < 1 {
		p.Level = 1
	}
	oldLevel := p.Level
	if xp > 0 {
		if p.CurrentXP > math.MaxInt64-xp {
			p.CurrentXP = math.MaxInt64
		} else {
			p.CurrentXP += xp
		}
	}

	req := XPForLevel(p.Level)
	for p.CurrentXP >= req {
		p.CurrentXP -= req
		p.Level++
		req = XPForLevel(p.Level)
	}
	p.XPToNextLevel = req
	p.Rank = RankForLevel(p.Level)

	res := LevelUp{Profile: p}
	if p.Level > oldLevel {
		res.LeveledUp = true
		res.OldLevel = oldLevel
		res.NewLevel = p.Level
	}
	return res
}

// Progress returns how far the profile is toward its next level, in 0..1.
func Progress(p models.UserProfile) float64 {
	if p.XPToNextLevel <= 0 {
		return 0
	}
	f := float64(p.CurrentXP) / float64(p.XPToNextLevel)
	return math.Min(1, math.Max(0, f))
}

// UserStats derives attribute scores from completed workouts.
func UserStats(workouts []models.Workout) models.UserStats {
	var volume float64
	var minutes, count int
	for i := range workouts {
		w := &workouts[i]
		if !w.Completed {
			continue
		}
		volume += w.TotalVolume
		minutes += w.Duration
		count++
	}
	return models.UserStats{
		Strength:          clampScore(int(math.Floor(volume / 1000))),
		Endurance:         clampScore(minutes / 100),
		Consistency:       clampScore(count * 2),
		TotalVolumeLifted: volume,
		TotalWorkoutTime:  minutes,
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// StreakResult holds the current and longest streaks, counted in completed
// workouts whose calendar days are at most one day apart.
type StreakResult struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// Streak computes streaks over completed workouts ordered by CreatedAt,
// newest first. The current streak only counts when the most recent workout
// happened today or yesterday relative to now. Workouts dated after today
// do not count toward the current streak. Calendar days are taken in now's
// location.
func Streak(workouts []models.Workout, now time.Time) StreakResult {
	days := make([]time.Time, 0, len(workouts))
	for i := range workouts {
		if workouts[i].Completed {
			days = append(days, workouts[i].CreatedAt)
		}
	}
	if len(days) == 0 {
		return StreakResult{}
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].After(days[j]) })

	loc := now.Location()
	for i := range days {
		days[i] = calendarDay(days[i].In(loc))
	}

	today := calendarDay(now)
	first := 0
	for first < len(days) && days[first].After(today) {
		first++
	}

	var res StreakResult
	if first < len(days) && dayGap(today, days[first]) <= 1 {
		res.Current = 1
		for i := first + 1; i < len(days); i++ {
			if dayGap(days[i-1], days[i]) > 1 {
				break
			}
			res.Current++
		}
	}

	run := 1
	res.Longest = 1
	for i := 1; i < len(days); i++ {
		if dayGap(days[i-1], days[i]) <= 1 {
			run++
		} else {
			run = 1
		}
		if run > res.Longest {
			res.Longest = run
		}
	}
	if res.Current > res.Longest {
		res.Longest = res.Current
	}
	return res
}

// calendarDay returns midnight UTC of t's calendar date in t's location, so
// differences between days are exact multiples of 24h across DST changes.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dayGap returns floor((later − earlier) / 24h) in whole days.
func dayGap(later, earlier time.Time) int64 {
	ms := later.Sub(earlier).Milliseconds()
	const day = int64(24 * time.Hour / time.Millisecond)
	q := ms / day
	if ms%day != 0 && ms < 0 {
		q--
	}
	return q
}
