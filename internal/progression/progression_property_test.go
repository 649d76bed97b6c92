package progression

import (
	"testing"
	"time"

	"github.com/DaraMoh/solo-gym-app/internal/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestPropertyApplyXPKeepsInvariant verifies that for any valid profile and
// non-negative award, currentXP stays below xpToNextLevel afterwards.
func TestPropertyApplyXPKeepsInvariant(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500

	properties := gopter.NewProperties(parameters)

	properties.Property("currentXP < xpToNextLevel after ApplyXP", prop.ForAll(
		func(level int, progress int64, award int64) bool {
			req := XPForLevel(level)
			p := models.UserProfile{
				ID:            "u",
				Level:         level,
				CurrentXP:     progress % req,
				XPToNextLevel: req,
				Rank:          RankForLevel(level),
			}
			res := ApplyXP(p, award)
			if res.Profile.CurrentXP < 0 || res.Profile.CurrentXP >= res.Profile.XPToNextLevel {
				return false
			}
			if res.Profile.Level < level {
				return false
			}
			return res.LeveledUp == (res.Profile.Level > level)
		},
		gen.IntRange(1, 120),
		gen.Int64Range(0, 1_000_000),
		gen.Int64Range(0, 10_000_000),
	))

	properties.Property("XP is conserved across level-ups", prop.ForAll(
		func(start int64, award int64) bool {
			p := *models.NewUserProfile("u", "", time.Time{})
			p.CurrentXP = start % 100
			res := ApplyXP(p, award)
			before := TotalXPForLevel(1) + p.CurrentXP + award
			after := TotalXPForLevel(res.Profile.Level) + res.Profile.CurrentXP
			return before == after
		},
		gen.Int64Range(0, 99),
		gen.Int64Range(0, 5_000_000),
	))

	properties.TestingRun(t)
}

// TestPropertyRankMonotonic verifies rank never decreases as level increases.
func TestPropertyRankMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("L1 < L2 implies rank(L1) <= rank(L2)", prop.ForAll(
		func(l1, delta int) bool {
			l2 := l1 + delta
			return !RankForLevel(l2).Less(RankForLevel(l1))
		},
		gen.IntRange(1, 200),
		gen.IntRange(1, 200),
	))

	properties.Property("XPForLevel is strictly increasing", prop.ForAll(
		func(level int) bool {
			return XPForLevel(level+1) > XPForLevel(level)
		},
		gen.IntRange(1, 90),
	))

	properties.TestingRun(t)
}

// TestPropertyStatsBounded verifies derived scores stay within 0..100.
func TestPropertyStatsBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("scores are clamped", prop.ForAll(
		func(volumes []float64, minutes int) bool {
			ws := make([]models.Workout, len(volumes))
			for i, v := range volumes {
				ws[i] = models.Workout{Completed: true, TotalVolume: v, Duration: minutes}
			}
			s := UserStats(ws)
			for _, v := range []int{s.Strength, s.Endurance, s.Consistency} {
				if v < 0 || v > 100 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(0, 100_000)),
		gen.IntRange(0, 600),
	))

	properties.TestingRun(t)
}
