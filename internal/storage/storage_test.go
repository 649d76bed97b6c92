package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/DaraMoh/solo-gym-app/internal/config"
	"github.com/DaraMoh/solo-gym-app/internal/models"
	"github.com/DaraMoh/solo-gym-app/internal/missions"
)

// TestMemoryStore runs the shared store checks against the in-memory store.
func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store { return NewMemory() })
}

// TestSQLiteStore runs the shared store checks against a temp-dir SQLite file.
func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, func(t *testing.T) Store {
		s, err := OpenSQLite(t.TempDir())
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}

// TestSQLiteReopen verifies data and migrations survive reopening the file.
func TestSQLiteReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := OpenSQLite(dir)
	if err != nil {
		t.Fatal(err)
	}
	p := models.NewUserProfile("u1", "Jin", time.Now())
	if err := s.SaveProfile(ctx, p); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = OpenSQLite(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile after reopen: %v", err)
	}
	if got.Username != "Jin" {
		t.Errorf("username = %q, want Jin", got.Username)
	}
}

// TestPostgresStore runs the shared checks against PostgreSQL when
// SOLOGYM_TEST_POSTGRES_DSN points at a disposable database.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("SOLOGYM_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SOLOGYM_TEST_POSTGRES_DSN not set")
	}
	if err := RunMigrations("postgres", dsn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	runStoreTests(t, func(t *testing.T) Store {
		s, err := NewPostgres(context.Background(), dsn)
		if err != nil {
			t.Fatalf("NewPostgres: %v", err)
		}
		for _, table := range []string{"profiles", "workouts", "missions", "exercises", "templates"} {
			if _, err := s.Pool.Exec(context.Background(), "TRUNCATE "+table); err != nil {
				t.Fatalf("truncate %s: %v", table, err)
			}
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func runStoreTests(t *testing.T, open func(t *testing.T) Store) {
	t.Run("profile", func(t *testing.T) { testProfile(t, open(t)) })
	t.Run("workouts", func(t *testing.T) { testWorkouts(t, open(t)) })
	t.Run("missions", func(t *testing.T) { testMissions(t, open(t)) })
	t.Run("exercises", func(t *testing.T) { testExercises(t, open(t)) })
	t.Run("templates", func(t *testing.T) { testTemplates(t, open(t)) })
	t.Run("reset", func(t *testing.T) { testReset(t, open(t)) })
}

func testProfile(t *testing.T, s Store) {
	ctx := context.Background()
	if _, err := s.GetProfile(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetProfile(missing) error = %v, want ErrNotFound", err)
	}

	p := models.NewUserProfile("u1", "", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	p.CurrentXP = 42
	if err := s.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	p.Level = 3
	if err := s.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile overwrite: %v", err)
	}

	got, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.Level != 3 || got.CurrentXP != 42 || got.Username != "Hunter" {
		t.Errorf("profile = %+v", got)
	}
	if !got.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("createdAt = %v, want %v", got.CreatedAt, p.CreatedAt)
	}
}

func testWorkouts(t *testing.T, s Store) {
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"w1", "w2", "w3"} {
		w := &models.Workout{
			ID:        id,
			UserID:    "u1",
			Title:     "Session " + id,
			StartTime: base.Add(time.Duration(i) * 24 * time.Hour),
			CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour),
			Completed: true,
			Exercises: []models.WorkoutExercise{{ExerciseID: "squat", ExerciseName: "Barbell Squat",
				Sets: []models.WorkoutSet{{SetNumber: 1, Reps: 5, Weight: 225, Completed: true}}}},
		}
		if err := s.InsertWorkout(ctx, w); err != nil {
			t.Fatalf("InsertWorkout %s: %v", id, err)
		}
	}
	other := &models.Workout{ID: "w1", UserID: "u2", StartTime: base, CreatedAt: base}
	if err := s.InsertWorkout(ctx, other); err != nil {
		t.Fatalf("InsertWorkout other user: %v", err)
	}
	if err := s.InsertWorkout(ctx, &models.Workout{ID: "w1", UserID: "u1", CreatedAt: base}); err == nil {
		t.Error("expected duplicate insert to fail")
	}

	list, err := s.ListWorkouts(ctx, "u1")
	if err != nil {
		t.Fatalf("ListWorkouts: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("workouts = %d, want 3", len(list))
	}
	if list[0].ID != "w3" || list[2].ID != "w1" {
		t.Errorf("order = %s,%s,%s; want newest first", list[0].ID, list[1].ID, list[2].ID)
	}
	if got := list[2].Exercises[0].Sets[0].Weight; got != 225 {
		t.Errorf("set weight = %v, want 225", got)
	}

	w, err := s.GetWorkout(ctx, "u1", "w2")
	if err != nil {
		t.Fatalf("GetWorkout: %v", err)
	}
	w.Title = "Renamed"
	if err := s.UpdateWorkout(ctx, w); err != nil {
		t.Fatalf("UpdateWorkout: %v", err)
	}
	w, _ = s.GetWorkout(ctx, "u1", "w2")
	if w.Title != "Renamed" {
		t.Errorf("title = %q, want Renamed", w.Title)
	}
	if err := s.UpdateWorkout(ctx, &models.Workout{ID: "nope", UserID: "u1"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateWorkout(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.DeleteWorkout(ctx, "u1", "w2"); err != nil {
		t.Fatalf("DeleteWorkout: %v", err)
	}
	if err := s.DeleteWorkout(ctx, "u1", "w2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteWorkout error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetWorkout(ctx, "u1", "w2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetWorkout(deleted) error = %v, want ErrNotFound", err)
	}
	list, _ = s.ListWorkouts(ctx, "u1")
	if len(list) != 2 {
		t.Errorf("workouts after delete = %d, want 2", len(list))
	}

	empty, err := s.ListWorkouts(ctx, "nobody")
	if err != nil || len(empty) != 0 {
		t.Errorf("ListWorkouts(nobody) = %v, %v", empty, err)
	}
}

func testMissions(t *testing.T, s Store) {
	ctx := context.Background()
	got, err := s.GetMissions(ctx, "u1")
	if err != nil || len(got) != 0 {
		t.Fatalf("GetMissions(empty) = %v, %v", got, err)
	}

	now := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	ms := missions.Refresh(nil, now)
	ms = append(ms, models.Mission{
		ID:          "special",
		Type:        models.MissionWeekly,
		Requirement: models.Requirement{Goal: models.SpecificExerciseGoal{ExerciseID: "squat", ExerciseName: "Barbell Squat"}, Target: 3},
		Status:      models.StatusActive,
		ExpiresAt:   now.Add(time.Hour),
	})
	if err := s.SaveMissions(ctx, "u1", ms); err != nil {
		t.Fatalf("SaveMissions: %v", err)
	}
	got, err = s.GetMissions(ctx, "u1")
	if err != nil {
		t.Fatalf("GetMissions: %v", err)
	}
	if len(got) != len(ms) {
		t.Fatalf("missions = %d, want %d", len(got), len(ms))
	}
	last := got[len(got)-1]
	g, ok := last.Requirement.Goal.(models.SpecificExerciseGoal)
	if !ok || g.ExerciseID != "squat" {
		t.Errorf("goal = %#v, want SpecificExerciseGoal{squat}", last.Requirement.Goal)
	}
	if got[0].Requirement.Goal.Kind() != ms[0].Requirement.Goal.Kind() {
		t.Errorf("first goal kind = %s, want %s", got[0].Requirement.Goal.Kind(), ms[0].Requirement.Goal.Kind())
	}
}

func testExercises(t *testing.T, s Store) {
	ctx := context.Background()
	catalog := []models.Exercise{
		{ID: "a", Name: "A", Category: models.CategoryStrength, MuscleGroups: []models.MuscleGroup{models.MuscleChest}},
		{ID: "b", Name: "B", Category: models.CategoryCardio, MuscleGroups: []models.MuscleGroup{models.MuscleLegs}},
	}
	if err := s.SaveExercises(ctx, catalog); err != nil {
		t.Fatalf("SaveExercises: %v", err)
	}
	if err := s.SaveExercises(ctx, catalog[:1]); err != nil {
		t.Fatalf("SaveExercises again: %v", err)
	}
	custom := models.Exercise{ID: "mine", Name: "My Move", Category: models.CategorySports, IsCustom: true,
		MuscleGroups: []models.MuscleGroup{models.MuscleFullBody}}
	if err := s.AddExercise(ctx, "u1", custom); err != nil {
		t.Fatalf("AddExercise: %v", err)
	}

	base, err := s.ListExercises(ctx, CatalogUser)
	if err != nil {
		t.Fatalf("ListExercises(catalog): %v", err)
	}
	if len(base) != 2 {
		t.Errorf("catalog = %d, want 2", len(base))
	}

	mine, err := s.ListExercises(ctx, "u1")
	if err != nil {
		t.Fatalf("ListExercises(u1): %v", err)
	}
	if len(mine) != 3 || mine[2].ID != "mine" || !mine[2].IsCustom {
		t.Errorf("u1 exercises = %+v", mine)
	}

	others, _ := s.ListExercises(ctx, "u2")
	if len(others) != 2 {
		t.Errorf("u2 exercises = %d, want 2", len(others))
	}
}

func testTemplates(t *testing.T, s Store) {
	ctx := context.Background()
	tm := &models.WorkoutTemplate{ID: "t1", UserID: "u1", Title: "Push Day", CreatedAt: time.Now().UTC(),
		Exercises: []models.WorkoutExercise{{ExerciseID: "bench", ExerciseName: "Bench"}}}
	if err := s.SaveTemplate(ctx, tm); err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}
	used := time.Now().UTC()
	tm.LastUsed = &used
	if err := s.SaveTemplate(ctx, tm); err != nil {
		t.Fatalf("SaveTemplate update: %v", err)
	}
	list, err := s.ListTemplates(ctx, "u1")
	if err != nil {
		t.Fatalf("ListTemplates: %v", err)
	}
	if len(list) != 1 || list[0].LastUsed == nil {
		t.Fatalf("templates = %+v", list)
	}
	if err := s.DeleteTemplate(ctx, "u1", "t1"); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}
	if err := s.DeleteTemplate(ctx, "u1", "t1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteTemplate error = %v, want ErrNotFound", err)
	}
}

func testReset(t *testing.T, s Store) {
	ctx := context.Background()
	now := time.Now().UTC()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(s.SaveExercises(ctx, []models.Exercise{{ID: "a", Name: "A"}}))
	for _, uid := range []string{"u1", "u2"} {
		must(s.SaveProfile(ctx, models.NewUserProfile(uid, "", now)))
		must(s.InsertWorkout(ctx, &models.Workout{ID: "w", UserID: uid, CreatedAt: now}))
		must(s.SaveMissions(ctx, uid, missions.GenerateDaily(now)))
		must(s.AddExercise(ctx, uid, models.Exercise{ID: "c", Name: "C", IsCustom: true}))
		must(s.SaveTemplate(ctx, &models.WorkoutTemplate{ID: "t", UserID: uid}))
	}

	must(s.Reset(ctx, "u1"))

	if _, err := s.GetProfile(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("profile after reset: %v", err)
	}
	if ws, _ := s.ListWorkouts(ctx, "u1"); len(ws) != 0 {
		t.Errorf("workouts after reset = %d", len(ws))
	}
	if ms, _ := s.GetMissions(ctx, "u1"); len(ms) != 0 {
		t.Errorf("missions after reset = %d", len(ms))
	}
	if ts, _ := s.ListTemplates(ctx, "u1"); len(ts) != 0 {
		t.Errorf("templates after reset = %d", len(ts))
	}
	if es, _ := s.ListExercises(ctx, "u1"); len(es) != 1 {
		t.Errorf("exercises after reset = %d, want catalog only", len(es))
	}

	if _, err := s.GetProfile(ctx, "u2"); err != nil {
		t.Errorf("u2 profile should survive: %v", err)
	}
	if ws, _ := s.ListWorkouts(ctx, "u2"); len(ws) != 1 {
		t.Errorf("u2 workouts = %d, want 1", len(ws))
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	mem, err := Open(ctx, &config.Config{Storage: config.StorageConfig{Driver: config.DriverMemory}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := mem.(*Memory); !ok {
		t.Errorf("memory driver returned %T", mem)
	}

	dir := t.TempDir()
	lite, err := Open(ctx, &config.Config{Storage: config.StorageConfig{Driver: config.DriverSQLite, Path: dir}})
	if err != nil {
		t.Fatal(err)
	}
	defer lite.Close()
	if _, ok := lite.(*SQLite); !ok {
		t.Errorf("sqlite driver returned %T", lite)
	}

	if _, err := Open(ctx, &config.Config{Storage: config.StorageConfig{Driver: "redis"}}); err == nil {
		t.Error("expected error for unknown driver")
	}
}
