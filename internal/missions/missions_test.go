package missions

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/DaraMoh/solo-gym-app/internal/models"
)

var testNow = time.Date(2026, 4, 14, 15, 30, 0, 0, time.UTC)

func mission(id string, goal models.Goal, target float64, status models.MissionStatus, expires time.Time) models.Mission {
	return models.Mission{
		ID:          id,
		Type:        models.MissionDaily,
		Requirement: models.Requirement{Goal: goal, Target: target},
		XPReward:    50,
		Status:      status,
		ExpiresAt:   expires,
		CreatedAt:   testNow.Add(-time.Hour),
	}
}

func completedWorkout() *models.Workout {
	return &models.Workout{
		Completed:   true,
		Duration:    40,
		TotalVolume: 1800,
		Exercises: []models.WorkoutExercise{
			{ExerciseID: "squat", Sets: []models.WorkoutSet{
				{Reps: 5, Weight: 180, Completed: true},
				{Reps: 5, Weight: 180, Completed: true},
			}},
			{ExerciseID: "plank", Sets: []models.WorkoutSet{{Duration: 1, Completed: true}, {Completed: false}}},
		},
	}
}

// TestGenerateDaily verifies the fixed daily batch and its midnight deadline.
func TestGenerateDaily(t *testing.T) {
	ms := GenerateDaily(testNow)
	if len(ms) != 3 {
		t.Fatalf("daily missions = %d, want 3", len(ms))
	}
	wantExpiry := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	wantKinds := []models.GoalKind{models.GoalWorkoutCount, models.GoalExerciseCount, models.GoalVolume}
	wantTargets := []float64{1, 15, 2500}
	wantXP := []int64{50, 75, 100}
	for i, m := range ms {
		if m.Type != models.MissionDaily || m.Status != models.StatusActive {
			t.Errorf("mission %d type/status = %s/%s", i, m.Type, m.Status)
		}
		if !m.ExpiresAt.Equal(wantExpiry) {
			t.Errorf("mission %d expires = %v, want %v", i, m.ExpiresAt, wantExpiry)
		}
		if m.Requirement.Goal.Kind() != wantKinds[i] || m.Requirement.Target != wantTargets[i] {
			t.Errorf("mission %d requirement = %s/%v", i, m.Requirement.Goal.Kind(), m.Requirement.Target)
		}
		if m.XPReward != wantXP[i] {
			t.Errorf("mission %d xp = %d, want %d", i, m.XPReward, wantXP[i])
		}
		if m.Requirement.Current != 0 {
			t.Errorf("mission %d current = %v, want 0", i, m.Requirement.Current)
		}
	}
	if !strings.HasPrefix(ms[0].ID, "daily_workout_") {
		t.Errorf("id = %q, want daily_workout_ prefix", ms[0].ID)
	}
}

// TestGenerateWeekly verifies the fixed weekly batch expires seven days out.
func TestGenerateWeekly(t *testing.T) {
	ms := GenerateWeekly(testNow)
	if len(ms) != 3 {
		t.Fatalf("weekly missions = %d, want 3", len(ms))
	}
	wantExpiry := time.Date(2026, 4, 21, 0, 0, 0, 0, time.UTC)
	wantTargets := []float64{5, 300, 25000}
	wantXP := []int64{250, 300, 500}
	for i, m := range ms {
		if !m.ExpiresAt.Equal(wantExpiry) {
			t.Errorf("mission %d expires = %v, want %v", i, m.ExpiresAt, wantExpiry)
		}
		if m.Requirement.Target != wantTargets[i] || m.XPReward != wantXP[i] {
			t.Errorf("mission %d target/xp = %v/%d", i, m.Requirement.Target, m.XPReward)
		}
	}
	if ms[1].Requirement.Goal.Kind() != models.GoalDuration {
		t.Errorf("second weekly kind = %s, want DURATION", ms[1].Requirement.Goal.Kind())
	}
}

// TestGeneratedIDsUniquePerBatch verifies IDs differ within and across batches.
func TestGeneratedIDsUniquePerBatch(t *testing.T) {
	seen := map[string]bool{}
	all := append(GenerateDaily(testNow), GenerateWeekly(testNow)...)
	all = append(all, GenerateDaily(testNow.Add(time.Millisecond))...)
	for _, m := range all {
		if seen[m.ID] {
			t.Errorf("duplicate id %q", m.ID)
		}
		seen[m.ID] = true
	}
}

// TestShouldRefresh covers the missing, current and expired batch cases.
func TestShouldRefresh(t *testing.T) {
	daily := GenerateDaily(testNow)
	if !ShouldRefresh(nil, models.MissionDaily, testNow) {
		t.Error("empty list should refresh")
	}
	if ShouldRefresh(daily, models.MissionDaily, testNow) {
		t.Error("fresh daily batch should not refresh")
	}
	if !ShouldRefresh(daily, models.MissionWeekly, testNow) {
		t.Error("no weekly missions should refresh weekly")
	}
	tomorrow := testNow.Add(9 * time.Hour)
	if !ShouldRefresh(daily, models.MissionDaily, tomorrow) {
		t.Error("expired daily batch should refresh")
	}
}

// TestUpdateProgressSkipsIncompleteWorkout verifies the input is returned
// unchanged when the workout was not completed.
func TestUpdateProgressSkipsIncompleteWorkout(t *testing.T) {
	ms := GenerateDaily(testNow)
	w := completedWorkout()
	w.Completed = false

	got := UpdateProgress(ms, w, testNow)
	if !reflect.DeepEqual(got, ms) {
		t.Error("missions changed for an incomplete workout")
	}
	if len(got) > 0 && &got[0] != &ms[0] {
		t.Error("expected the identical slice back")
	}
}

// TestUpdateProgressCompletesWorkoutCount verifies the immediate transition
// to COMPLETED when the threshold is reached.
func TestUpdateProgressCompletesWorkoutCount(t *testing.T) {
	ms := []models.Mission{mission("m1", models.WorkoutCountGoal{}, 1, models.StatusActive, testNow.Add(time.Hour))}

	got := UpdateProgress(ms, completedWorkout(), testNow)
	m := got[0]
	if m.Status != models.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", m.Status)
	}
	if m.Requirement.Current != 1 {
		t.Errorf("current = %v, want 1", m.Requirement.Current)
	}
	if m.CompletedAt == nil || !m.CompletedAt.Equal(testNow) {
		t.Errorf("completedAt = %v, want %v", m.CompletedAt, testNow)
	}
	if ms[0].Status != models.StatusActive || ms[0].Requirement.Current != 0 {
		t.Error("input mission was modified")
	}
}

// TestUpdateProgressByKind verifies each requirement kind's increment.
func TestUpdateProgressByKind(t *testing.T) {
	later := testNow.Add(time.Hour)
	ms := []models.Mission{
		mission("sets", models.SetCountGoal{}, 15, models.StatusActive, later),
		mission("volume", models.VolumeGoal{}, 2500, models.StatusActive, later),
		mission("duration", models.DurationGoal{}, 300, models.StatusActive, later),
		mission("squat", models.SpecificExerciseGoal{ExerciseID: "squat"}, 3, models.StatusActive, later),
		mission("bench", models.SpecificExerciseGoal{ExerciseID: "bench"}, 3, models.StatusActive, later),
	}
	got := UpdateProgress(ms, completedWorkout(), testNow)

	want := map[string]float64{"sets": 3, "volume": 1800, "duration": 40, "squat": 1, "bench": 0}
	for _, m := range got {
		if m.Requirement.Current != want[m.ID] {
			t.Errorf("%s current = %v, want %v", m.ID, m.Requirement.Current, want[m.ID])
		}
		if m.Status != models.StatusActive {
			t.Errorf("%s status = %s, want ACTIVE", m.ID, m.Status)
		}
	}
}

// TestUpdateProgressTerminalAndExpired verifies terminal missions pass
// through and overdue active missions expire with progress frozen.
func TestUpdateProgressTerminalAndExpired(t *testing.T) {
	done := testNow.Add(-2 * time.Hour)
	completed := mission("done", models.WorkoutCountGoal{}, 1, models.StatusCompleted, testNow.Add(time.Hour))
	completed.Requirement.Current = 1
	completed.CompletedAt = &done
	expired := mission("old", models.WorkoutCountGoal{}, 5, models.StatusExpired, testNow.Add(-time.Hour))
	overdue := mission("late", models.WorkoutCountGoal{}, 5, models.StatusActive, testNow.Add(-time.Minute))
	overdue.Requirement.Current = 2

	got := UpdateProgress([]models.Mission{completed, expired, overdue}, completedWorkout(), testNow)

	if !reflect.DeepEqual(got[0], completed) {
		t.Errorf("completed mission changed: %+v", got[0])
	}
	if !reflect.DeepEqual(got[1], expired) {
		t.Errorf("expired mission changed: %+v", got[1])
	}
	if got[2].Status != models.StatusExpired || got[2].Requirement.Current != 2 {
		t.Errorf("overdue = %s/%v, want EXPIRED/2", got[2].Status, got[2].Requirement.Current)
	}
}

// TestUpdateProgressNeverReverts verifies a completed mission stays
// completed across later updates.
func TestUpdateProgressNeverReverts(t *testing.T) {
	ms := []models.Mission{mission("m", models.WorkoutCountGoal{}, 1, models.StatusActive, testNow.Add(48*time.Hour))}
	for i := 0; i < 3; i++ {
		ms = UpdateProgress(ms, completedWorkout(), testNow.Add(time.Duration(i)*time.Hour))
	}
	if ms[0].Status != models.StatusCompleted || ms[0].Requirement.Current != 1 {
		t.Errorf("mission = %s/%v, want COMPLETED/1", ms[0].Status, ms[0].Requirement.Current)
	}
	if !ms[0].CompletedAt.Equal(testNow) {
		t.Errorf("completedAt moved to %v", ms[0].CompletedAt)
	}
}

// TestUpdateProgressIgnoresWorkoutsOutsideWindow verifies a workout recorded
// before a mission's day, or after its deadline, leaves the mission alone.
func TestUpdateProgressIgnoresWorkoutsOutsideWindow(t *testing.T) {
	ms := GenerateDaily(testNow)

	old := completedWorkout()
	old.CreatedAt = testNow.AddDate(-1, 0, 0)
	if got := UpdateProgress(ms, old, testNow); !reflect.DeepEqual(got, ms) {
		t.Errorf("year-old workout advanced missions: %+v", got)
	}

	future := completedWorkout()
	future.CreatedAt = ms[0].ExpiresAt
	if got := UpdateProgress(ms, future, testNow); !reflect.DeepEqual(got, ms) {
		t.Errorf("workout at the deadline advanced missions: %+v", got)
	}

	morning := completedWorkout()
	morning.CreatedAt = time.Date(2026, 4, 14, 6, 0, 0, 0, time.UTC)
	done := Completed(UpdateProgress(ms, morning, testNow))
	if len(done) != 1 || done[0].ID != ms[0].ID {
		t.Errorf("completed = %+v, want only %q", done, ms[0].ID)
	}
}

// TestCleanupExpired verifies only overdue active missions change.
func TestCleanupExpired(t *testing.T) {
	ms := []models.Mission{
		mission("live", models.WorkoutCountGoal{}, 1, models.StatusActive, testNow.Add(time.Hour)),
		mission("late", models.WorkoutCountGoal{}, 1, models.StatusActive, testNow),
	}
	got := CleanupExpired(ms, testNow)
	if got[0].Status != models.StatusActive {
		t.Errorf("live = %s, want ACTIVE", got[0].Status)
	}
	if got[1].Status != models.StatusExpired {
		t.Errorf("late = %s, want EXPIRED", got[1].Status)
	}
	again := CleanupExpired(got, testNow)
	if !reflect.DeepEqual(again, got) {
		t.Error("CleanupExpired is not idempotent")
	}
}

// TestRemoveOld verifies the 24-hour retention window for finished missions.
func TestRemoveOld(t *testing.T) {
	recent := testNow.Add(-3 * time.Hour)
	stale := testNow.Add(-30 * time.Hour)

	doneRecent := mission("done-recent", models.WorkoutCountGoal{}, 1, models.StatusCompleted, testNow.Add(time.Hour))
	doneRecent.CompletedAt = &recent
	doneStale := mission("done-stale", models.WorkoutCountGoal{}, 1, models.StatusCompleted, testNow.Add(time.Hour))
	doneStale.CompletedAt = &stale

	ms := []models.Mission{
		mission("active", models.WorkoutCountGoal{}, 1, models.StatusActive, testNow.Add(-72*time.Hour)),
		mission("expired-2h", models.WorkoutCountGoal{}, 1, models.StatusExpired, testNow.Add(-2*time.Hour)),
		mission("expired-2d", models.WorkoutCountGoal{}, 1, models.StatusExpired, testNow.Add(-48*time.Hour)),
		doneRecent,
		doneStale,
	}
	got := RemoveOld(ms, testNow)

	var ids []string
	for _, m := range got {
		ids = append(ids, m.ID)
	}
	want := []string{"active", "expired-2h", "done-recent"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("kept = %v, want %v", ids, want)
	}
}

// TestRefresh verifies first-use generation, stability within a day and
// replacement of the daily batch after midnight.
func TestRefresh(t *testing.T) {
	ms := Refresh(nil, testNow)
	if len(ms) != 6 {
		t.Fatalf("initial missions = %d, want 6", len(ms))
	}

	same := Refresh(ms, testNow.Add(time.Hour))
	if !reflect.DeepEqual(same, ms) {
		t.Error("missions regenerated within the same day")
	}

	nextDay := testNow.Add(12 * time.Hour)
	next := Refresh(ms, nextDay)
	if len(next) != 6 {
		t.Fatalf("missions after midnight = %d, want 6", len(next))
	}
	for _, m := range next {
		if m.Type == models.MissionDaily && !m.CreatedAt.Equal(nextDay) {
			t.Errorf("daily %s not regenerated", m.ID)
		}
		if m.Type == models.MissionWeekly && !m.CreatedAt.Equal(testNow) {
			t.Errorf("weekly %s should be kept", m.ID)
		}
	}
}

// TestFiltersAndRewards verifies the status filters and XP summary.
func TestFiltersAndRewards(t *testing.T) {
	ms := UpdateProgress(GenerateDaily(testNow), completedWorkout(), testNow)
	if got := len(Completed(ms)); got != 1 {
		t.Errorf("completed = %d, want 1", got)
	}
	if got := len(Active(ms)); got != 2 {
		t.Errorf("active = %d, want 2", got)
	}
	if got := CompletedXP(ms); got != 50 {
		t.Errorf("CompletedXP = %d, want 50", got)
	}

	newly := NewlyCompleted(GenerateDaily(testNow), ms)
	if len(newly) != 1 || newly[0].Title != "Daily Grind" {
		t.Errorf("newly completed = %+v", newly)
	}
	if again := NewlyCompleted(ms, ms); len(again) != 0 {
		t.Errorf("NewlyCompleted(ms, ms) = %d, want 0", len(again))
	}
}
