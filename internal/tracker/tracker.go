// Package tracker runs the progression and mission engines against a Store.
// Every operation for a single user is serialized, so the read-modify-write
// sequences below never interleave for one profile.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/DaraMoh/solo-gym-app/internal/catalog"
	"github.com/DaraMoh/solo-gym-app/internal/metrics"
	"github.com/DaraMoh/solo-gym-app/internal/missions"
	"github.com/DaraMoh/solo-gym-app/internal/models"
	"github.com/DaraMoh/solo-gym-app/internal/progression"
	"github.com/DaraMoh/solo-gym-app/internal/storage"
	"github.com/google/uuid"
)

// ErrInvalid marks caller input that failed validation.
var ErrInvalid = errors.New("invalid input")

// Tracker is the application service behind the HTTP API, MCP tools and
// importers.
type Tracker struct {
	store   storage.Store
	catalog *catalog.Catalog
	log     *slog.Logger
	metrics *metrics.Manager
	now     func() time.Time

	locks  userLocks
	seedMu sync.Mutex
	seeded bool
}

// New creates a Tracker. A nil metrics manager gets a private registry.
func New(store storage.Store, cat *catalog.Catalog, log *slog.Logger, m *metrics.Manager) *Tracker {
	if m == nil {
		m = metrics.NewTestManager()
	}
	return &Tracker{
		store:   store,
		catalog: cat,
		log:     log,
		metrics: m,
		now:     time.Now,
		locks:   userLocks{m: make(map[string]*sync.Mutex)},
	}
}

// SetClock replaces the wall clock used for missions and streaks.
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

type userLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	mu, ok := l.m[userID]
	if !ok {
		mu = &sync.Mutex{}
		l.m[userID] = mu
	}
	l.mu.Unlock()
	mu.Lock()
	return mu.Unlock
}

// Initialize prepares a user on first use: it seeds the exercise catalog
// when the store has none, creates the default profile when missing and
// refreshes missions.
func (t *Tracker) Initialize(ctx context.Context, userID, displayName string) (*models.UserProfile, error) {
	defer t.locks.lock(userID)()
	now := t.now()

	if err := t.ensureCatalog(ctx); err != nil {
		return nil, err
	}
	p, err := t.loadProfile(ctx, userID, displayName, now)
	if err != nil {
		return nil, err
	}
	if err := t.settleStreak(ctx, p); err != nil {
		return nil, err
	}
	if _, err := t.refreshMissions(ctx, userID, now); err != nil {
		return nil, err
	}
	return p, nil
}

func (t *Tracker) ensureCatalog(ctx context.Context) error {
	t.seedMu.Lock()
	defer t.seedMu.Unlock()
	if t.seeded {
		return nil
	}
	existing, err := t.store.ListExercises(ctx, storage.CatalogUser)
	if err != nil {
		return fmt.Errorf("checking exercise catalog: %w", err)
	}
	if len(existing) == 0 {
		if err := t.store.SaveExercises(ctx, t.catalog.All()); err != nil {
			return fmt.Errorf("seeding exercise catalog: %w", err)
		}
		t.log.Info("exercise catalog seeded", "exercises", t.catalog.Len())
	}
	t.seeded = true
	return nil
}

// loadProfile returns the stored profile, creating the default one when the
// user has none yet.
func (t *Tracker) loadProfile(ctx context.Context, userID, displayName string, now time.Time) (*models.UserProfile, error) {
	p, err := t.store.GetProfile(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	p = models.NewUserProfile(userID, displayName, now)
	if err := t.store.SaveProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}
	t.log.Info("profile created", "user", userID, "username", p.Username)
	return p, nil
}

func (t *Tracker) refreshMissions(ctx context.Context, userID string, now time.Time) ([]models.Mission, error) {
	current, err := t.store.GetMissions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading missions: %w", err)
	}
	refreshed := missions.Refresh(current, now)
	if err := t.store.SaveMissions(ctx, userID, refreshed); err != nil {
		return nil, fmt.Errorf("saving missions: %w", err)
	}
	return refreshed, nil
}

// Completion is the outcome of recording a finished workout.
type Completion struct {
	Workout           models.Workout     `json:"workout"`
	XPEarned          int64              `json:"xpEarned"`
	LeveledUp         bool               `json:"leveledUp"`
	OldLevel          int                `json:"oldLevel,omitempty"`
	NewLevel          int                `json:"newLevel,omitempty"`
	Profile           models.UserProfile `json:"profile"`
	CompletedMissions []models.Mission   `json:"completedMissions"`
}

// CompleteWorkout records w for userID at now. A workout not yet marked
// completed is finalized at now first. The workout earns XP, the profile
// gains that XP and recomputed stats and streaks, and missions advance.
// Missions and streaks are judged at the tracker's clock, so a backdated
// workout only counts toward missions whose window contains it.
func (t *Tracker) CompleteWorkout(ctx context.Context, userID string, w models.Workout, now time.Time) (*Completion, error) {
	defer t.locks.lock(userID)()

	w.UserID = userID
	if w.StartTime.IsZero() {
		w.StartTime = now
	}
	if !w.Completed {
		w.Finalize(now)
	} else {
		w.TotalVolume = w.ComputeVolume()
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	if strings.TrimSpace(w.Title) == "" {
		w.Title = "Workout"
	}
	for i := range w.Exercises {
		if w.Exercises[i].ID == "" {
			w.Exercises[i].ID = uuid.NewString()
		}
	}
	w.XPEarned = progression.WorkoutXP(&w)

	if err := t.store.InsertWorkout(ctx, &w); err != nil {
		return nil, fmt.Errorf("saving workout: %w", err)
	}

	p, err := t.loadProfile(ctx, userID, "", now)
	if err != nil {
		return nil, err
	}
	lu := progression.ApplyXP(*p, w.XPEarned)
	updated := lu.Profile

	if err := t.recomputeHistory(ctx, &updated); err != nil {
		return nil, err
	}
	updated.TotalWorkouts++
	if err := t.store.SaveProfile(ctx, &updated); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}

	stored, err := t.store.GetMissions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading missions: %w", err)
	}
	wall := t.now()
	before := missions.Refresh(stored, wall)
	after := missions.UpdateProgress(before, &w, wall)
	if err := t.store.SaveMissions(ctx, userID, after); err != nil {
		return nil, fmt.Errorf("saving missions: %w", err)
	}
	done := missions.NewlyCompleted(before, after)

	t.metrics.CounterWorkoutsCompleted.Inc()
	t.metrics.CounterXPAwarded.Add(float64(w.XPEarned))
	if lu.LeveledUp {
		t.metrics.CounterLevelUps.Add(float64(lu.NewLevel - lu.OldLevel))
	}
	for _, m := range done {
		t.metrics.CounterMissionsCompleted.WithLabelValues(string(m.Type)).Inc()
	}

	t.log.Info("workout completed",
		"user", userID,
		"workout", w.ID,
		"xp", w.XPEarned,
		"level", updated.Level,
		"rank", updated.Rank,
		"missions_completed", len(done),
	)
	if lu.LeveledUp {
		t.log.Info("level up", "user", userID, "from", lu.OldLevel, "to", lu.NewLevel)
	}

	if done == nil {
		done = []models.Mission{}
	}
	return &Completion{
		Workout:           w,
		XPEarned:          w.XPEarned,
		LeveledUp:         lu.LeveledUp,
		OldLevel:          lu.OldLevel,
		NewLevel:          lu.NewLevel,
		Profile:           updated,
		CompletedMissions: done,
	}, nil
}

// recomputeHistory refreshes stats and streaks on p from the full stored
// workout history.
func (t *Tracker) recomputeHistory(ctx context.Context, p *models.UserProfile) error {
	history, err := t.store.ListWorkouts(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("loading workout history: %w", err)
	}
	streak := progression.Streak(history, t.now())
	p.Stats = progression.UserStats(history)
	p.CurrentStreak = streak.Current
	p.LongestStreak = streak.Longest
	return nil
}

// settleStreak recomputes p's streaks at the current time and persists them
// when they changed. A streak lapses on the days the user does not train,
// without any workout being recorded.
func (t *Tracker) settleStreak(ctx context.Context, p *models.UserProfile) error {
	history, err := t.store.ListWorkouts(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("loading workout history: %w", err)
	}
	streak := progression.Streak(history, t.now())
	if streak.Current == p.CurrentStreak && streak.Longest == p.LongestStreak {
		return nil
	}
	p.CurrentStreak = streak.Current
	p.LongestStreak = streak.Longest
	if err := t.store.SaveProfile(ctx, p); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// Profile returns the user's profile, creating it on first use. Streaks are
// brought up to date first.
func (t *Tracker) Profile(ctx context.Context, userID string) (*models.UserProfile, error) {
	defer t.locks.lock(userID)()
	p, err := t.loadProfile(ctx, userID, "", t.now())
	if err != nil {
		return nil, err
	}
	if err := t.settleStreak(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Workouts returns the user's workout history, newest first.
func (t *Tracker) Workouts(ctx context.Context, userID string) ([]models.Workout, error) {
	ws, err := t.store.ListWorkouts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	return ws, nil
}

// Workout returns a single workout. Missing workouts yield an error
// matching storage.ErrNotFound.
func (t *Tracker) Workout(ctx context.Context, userID, id string) (*models.Workout, error) {
	w, err := t.store.GetWorkout(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("getting workout %s: %w", id, err)
	}
	return w, nil
}

// DeleteWorkout removes a workout from history and recomputes stats and
// streaks. XP already earned is kept.
func (t *Tracker) DeleteWorkout(ctx context.Context, userID, id string) (*models.UserProfile, error) {
	defer t.locks.lock(userID)()
	now := t.now()

	w, err := t.store.GetWorkout(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("getting workout %s: %w", id, err)
	}
	if err := t.store.DeleteWorkout(ctx, userID, id); err != nil {
		return nil, fmt.Errorf("deleting workout %s: %w", id, err)
	}

	p, err := t.loadProfile(ctx, userID, "", now)
	if err != nil {
		return nil, err
	}
	if err := t.recomputeHistory(ctx, p); err != nil {
		return nil, err
	}
	if w.Completed && p.TotalWorkouts > 0 {
		p.TotalWorkouts--
	}
	if err := t.store.SaveProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	t.log.Info("workout deleted", "user", userID, "workout", id)
	return p, nil
}

// UpdateWorkout replaces the title, exercises, duration and start time of a
// recorded workout and recomputes stats from the edited history. Identity,
// completion and XP stay as recorded, so an edit never re-awards XP or
// advances missions.
func (t *Tracker) UpdateWorkout(ctx context.Context, userID, id string, edit models.Workout) (*models.Workout, error) {
	defer t.locks.lock(userID)()

	w, err := t.store.GetWorkout(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("getting workout %s: %w", id, err)
	}
	w.Title = strings.TrimSpace(edit.Title)
	if w.Title == "" {
		w.Title = "Workout"
	}
	w.Exercises = edit.Exercises
	w.Duration = edit.Duration
	if !edit.StartTime.IsZero() {
		w.StartTime = edit.StartTime
	}
	for i := range w.Exercises {
		if w.Exercises[i].ID == "" {
			w.Exercises[i].ID = uuid.NewString()
		}
	}
	w.TotalVolume = w.ComputeVolume()
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := t.store.UpdateWorkout(ctx, w); err != nil {
		return nil, fmt.Errorf("updating workout %s: %w", id, err)
	}

	p, err := t.loadProfile(ctx, userID, "", t.now())
	if err != nil {
		return nil, err
	}
	if err := t.recomputeHistory(ctx, p); err != nil {
		return nil, err
	}
	if err := t.store.SaveProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}
	t.log.Info("workout updated", "user", userID, "workout", id, "volume", w.TotalVolume)
	return w, nil
}

// MissionBoard is the refreshed mission list with its summary counts.
type MissionBoard struct {
	Missions    []models.Mission `json:"missions"`
	Active      int              `json:"active"`
	Completed   int              `json:"completed"`
	CompletedXP int64            `json:"completedXP"`
}

// Missions refreshes and persists the user's missions at now.
func (t *Tracker) Missions(ctx context.Context, userID string, now time.Time) (*MissionBoard, error) {
	defer t.locks.lock(userID)()
	ms, err := t.refreshMissions(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	return &MissionBoard{
		Missions:    ms,
		Active:      len(missions.Active(ms)),
		Completed:   len(missions.Completed(ms)),
		CompletedXP: missions.CompletedXP(ms),
	}, nil
}

// Exercises returns the catalog plus the user's custom exercises that match f.
func (t *Tracker) Exercises(ctx context.Context, userID string, f catalog.Filter) ([]models.Exercise, error) {
	if err := t.ensureCatalog(ctx); err != nil {
		return nil, err
	}
	list, err := t.store.ListExercises(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing exercises: %w", err)
	}
	return f.Apply(list), nil
}

// PopularExercises returns the popular subset of the user's exercise list.
func (t *Tracker) PopularExercises(ctx context.Context, userID string) ([]models.Exercise, error) {
	list, err := t.Exercises(ctx, userID, catalog.Filter{})
	if err != nil {
		return nil, err
	}
	return catalog.Popular(list), nil
}

// AddCustomExercise stores a user-defined exercise.
func (t *Tracker) AddCustomExercise(ctx context.Context, userID string, e models.Exercise) (*models.Exercise, error) {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return nil, fmt.Errorf("%w: exercise name is required", ErrInvalid)
	}
	if e.Category == "" {
		e.Category = models.CategoryStrength
	}
	if len(e.MuscleGroups) == 0 {
		e.MuscleGroups = []models.MuscleGroup{models.MuscleFullBody}
	}
	if e.ID == "" {
		e.ID = "custom_" + uuid.NewString()
	}
	e.IsCustom = true

	if err := t.store.AddExercise(ctx, userID, e); err != nil {
		return nil, fmt.Errorf("adding exercise: %w", err)
	}
	t.log.Info("custom exercise added", "user", userID, "exercise", e.ID, "name", e.Name)
	return &e, nil
}

// Templates returns the user's saved workout templates.
func (t *Tracker) Templates(ctx context.Context, userID string) ([]models.WorkoutTemplate, error) {
	list, err := t.store.ListTemplates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	return list, nil
}

// SaveTemplate creates or replaces a workout template.
func (t *Tracker) SaveTemplate(ctx context.Context, userID string, tm models.WorkoutTemplate) (*models.WorkoutTemplate, error) {
	defer t.locks.lock(userID)()
	tm.Title = strings.TrimSpace(tm.Title)
	if tm.Title == "" {
		return nil, fmt.Errorf("%w: template title is required", ErrInvalid)
	}
	tm.UserID = userID
	if tm.ID == "" {
		tm.ID = uuid.NewString()
	}
	if tm.CreatedAt.IsZero() {
		tm.CreatedAt = t.now()
	}
	if err := t.store.SaveTemplate(ctx, &tm); err != nil {
		return nil, fmt.Errorf("saving template: %w", err)
	}
	return &tm, nil
}

// DeleteTemplate removes a template.
func (t *Tracker) DeleteTemplate(ctx context.Context, userID, id string) error {
	defer t.locks.lock(userID)()
	if err := t.store.DeleteTemplate(ctx, userID, id); err != nil {
		return fmt.Errorf("deleting template %s: %w", id, err)
	}
	return nil
}

// StartFromTemplate returns a draft workout with the template's exercises
// and uncompleted sets, and stamps the template as used at now. The stamp is
// written under the user's lock so it cannot undo a concurrent edit or
// delete of the template.
func (t *Tracker) StartFromTemplate(ctx context.Context, userID, id string, now time.Time) (*models.Workout, error) {
	defer t.locks.lock(userID)()
	list, err := t.Templates(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, tm := range list {
		if tm.ID != id {
			continue
		}
		tm.LastUsed = &now
		if err := t.store.SaveTemplate(ctx, &tm); err != nil {
			return nil, fmt.Errorf("saving template: %w", err)
		}
		w := &models.Workout{
			UserID:    userID,
			Title:     tm.Title,
			StartTime: now,
			Exercises: make([]models.WorkoutExercise, len(tm.Exercises)),
		}
		for i, ex := range tm.Exercises {
			ex.ID = uuid.NewString()
			sets := make([]models.WorkoutSet, len(ex.Sets))
			for j, s := range ex.Sets {
				s.Completed = false
				sets[j] = s
			}
			ex.Sets = sets
			w.Exercises[i] = ex
		}
		return w, nil
	}
	return nil, fmt.Errorf("getting template %s: %w", id, storage.ErrNotFound)
}

// Reset deletes everything the user owns and starts them over with a fresh
// profile and missions.
func (t *Tracker) Reset(ctx context.Context, userID string) (*models.UserProfile, error) {
	defer t.locks.lock(userID)()
	now := t.now()

	if err := t.store.Reset(ctx, userID); err != nil {
		return nil, fmt.Errorf("resetting user data: %w", err)
	}
	p, err := t.loadProfile(ctx, userID, "", now)
	if err != nil {
		return nil, err
	}
	if _, err := t.refreshMissions(ctx, userID, now); err != nil {
		return nil, err
	}
	t.log.Info("user data reset", "user", userID)
	return p, nil
}
