package alpha

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/DaraMoh/solo-gym-app/internal/ingest"
	"github.com/DaraMoh/solo-gym-app/internal/metrics"
	"github.com/DaraMoh/solo-gym-app/internal/models"
	"github.com/DaraMoh/solo-gym-app/internal/storage"
	"github.com/DaraMoh/solo-gym-app/internal/tracker"
	"github.com/google/uuid"
)

// PoundsPerKg converts export weights to the pounds workouts are kept in.
const PoundsPerKg = 2.20462

// sessionNamespace scopes the deterministic IDs of imported sessions.
var sessionNamespace = uuid.MustParse("6f1c2b8e-4a0d-5e3b-9c71-2d8f0a6b4e19")

// Recorder records completed workouts. *tracker.Tracker satisfies it.
type Recorder interface {
	CompleteWorkout(ctx context.Context, userID string, w models.Workout, now time.Time) (*tracker.Completion, error)
	Workout(ctx context.Context, userID, id string) (*models.Workout, error)
}

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	rec     Recorder
	log     *slog.Logger
	metrics *metrics.Manager
}

// NewProvider creates a new Alpha Progression ingest provider. m may be nil.
func NewProvider(rec Recorder, log *slog.Logger, m *metrics.Manager) *Provider {
	return &Provider{rec: rec, log: log, metrics: m}
}

// Ingest parses a CSV export and records every session not imported before
// as a completed workout, oldest first, each at its own end time.
func (p *Provider) Ingest(ctx context.Context, userID string, r io.Reader) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].Date.Before(sessions[j].Date) })

	result := &ingest.Result{SessionsReceived: len(sessions)}
	for _, s := range sessions {
		w, warmups := ToWorkout(userID, s)
		result.SetsReceived += w.CompletedSets()
		result.WarmupsSkipped += warmups

		if _, err := p.rec.Workout(ctx, userID, w.ID); err == nil {
			result.WorkoutsSkipped++
			continue
		} else if !errors.Is(err, storage.ErrNotFound) {
			return result, fmt.Errorf("checking session %s: %w", s.Date.Format("2006-01-02"), err)
		}

		res, err := p.rec.CompleteWorkout(ctx, userID, w, *w.EndTime)
		if err != nil {
			return result, fmt.Errorf("importing session %s: %w", s.Date.Format("2006-01-02"), err)
		}
		result.WorkoutsImported++
		result.SetsImported += res.Workout.CompletedSets()
		result.XPEarned += res.XPEarned
		if res.LeveledUp {
			result.LevelUps += res.NewLevel - res.OldLevel
		}
		result.MissionsCompleted += len(res.CompletedMissions)
		if p.metrics != nil {
			p.metrics.CounterImportedSessions.Inc()
		}
	}

	p.log.Info("alpha import finished",
		"user", userID,
		"sessions", result.SessionsReceived,
		"imported", result.WorkoutsImported,
		"skipped", result.WorkoutsSkipped,
		"xp", result.XPEarned,
	)
	return result, nil
}

// Preview converts an export to workouts without recording anything.
func Preview(userID string, r io.Reader) ([]models.Workout, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	out := make([]models.Workout, 0, len(sessions))
	for _, s := range sessions {
		w, _ := ToWorkout(userID, s)
		out = append(out, w)
	}
	return out, nil
}

// ToWorkout converts a session to a completed workout and reports how many
// warmup sets were left out. Its ID is derived from the user, start time and
// name, so re-importing the same export yields the same IDs.
func ToWorkout(userID string, s Session) (models.Workout, int) {
	minutes, err := ParseDuration(s.Duration)
	if err != nil {
		minutes = 0
	}
	end := s.Date.Add(time.Duration(minutes) * time.Minute)

	w := models.Workout{
		ID:        SessionID(userID, s),
		UserID:    userID,
		Title:     s.Name,
		StartTime: s.Date,
		EndTime:   &end,
		Duration:  minutes,
		Completed: true,
		CreatedAt: end,
	}

	warmups := 0
	for _, ex := range s.Exercises {
		we := models.WorkoutExercise{
			ExerciseID:   ExerciseID(ex.Name),
			ExerciseName: ex.Name,
			Notes:        ex.Equipment,
		}
		for _, set := range ex.Sets {
			if set.IsWarmup {
				warmups++
				continue
			}
			we.Sets = append(we.Sets, models.WorkoutSet{
				SetNumber: len(we.Sets) + 1,
				Reps:      set.Reps,
				Weight:    kgToLbs(set.WeightKg),
				Completed: true,
			})
		}
		w.Exercises = append(w.Exercises, we)
	}
	w.TotalVolume = w.ComputeVolume()
	return w, warmups
}

// SessionID returns the stable workout ID of an imported session.
func SessionID(userID string, s Session) string {
	key := userID + "|" + s.Date.UTC().Format(time.RFC3339) + "|" + s.Name
	return uuid.NewSHA1(sessionNamespace, []byte(key)).String()
}

// ExerciseID maps an exercise name to the underscore form the bundled
// catalog uses for its IDs.
func ExerciseID(name string) string {
	return strings.Join(strings.Fields(name), "_")
}

func kgToLbs(kg float64) float64 {
	return math.Round(kg*PoundsPerKg*100) / 100
}
