package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/DaraMoh/solo-gym-app/internal/catalog"
	"github.com/DaraMoh/solo-gym-app/internal/models"
	"github.com/DaraMoh/solo-gym-app/internal/progression"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// profileSummary is a profile plus its derived level progress.
type profileSummary struct {
	Profile  models.UserProfile `json:"profile"`
	Progress float64            `json:"progress"`
	TotalXP  int64              `json:"totalXP"`
}

func summarize(p *models.UserProfile) profileSummary {
	return profileSummary{
		Profile:  *p,
		Progress: progression.Progress(*p),
		TotalXP:  progression.TotalXPForLevel(p.Level) + p.CurrentXP,
	}
}

// loggedWorkout is the argument shape of log_workout.
type loggedWorkout struct {
	Title           string           `json:"title"`
	DurationMinutes float64          `json:"duration_minutes"`
	Exercises       []loggedExercise `json:"exercises"`
}

type loggedExercise struct {
	ExerciseID string      `json:"exercise_id"`
	Name       string      `json:"name"`
	Sets       []loggedSet `json:"sets"`
}

type loggedSet struct {
	Reps     int     `json:"reps"`
	Weight   float64 `json:"weight"`
	Duration float64 `json:"duration"`
}

// --- Tool definitions ---

var toolGetProfile = mcp.NewTool("get_profile",
	mcp.WithDescription("Get the hunter profile: level, rank, XP toward the next level, streaks, strength/endurance/consistency stats and lifetime totals."),
)

var toolGetMissions = mcp.NewTool("get_missions",
	mcp.WithDescription("Get the current daily and weekly missions with their requirements, progress and XP rewards. Expired missions are replaced first."),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Query completed workouts, newest first. Returns exercises, sets, duration, volume and XP earned."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of workouts to return. Defaults to 20.")),
)

var toolSearchExercises = mcp.NewTool("search_exercises",
	mcp.WithDescription("Search the exercise catalog, including the user's custom exercises. Use the returned id as exercise_id when logging a workout."),
	mcp.WithString("query", mcp.Description("Case-insensitive name match (e.g. 'bench press')")),
	mcp.WithString("category", mcp.Description("Exercise category"), mcp.Enum("STRENGTH", "CARDIO", "FLEXIBILITY", "SPORTS")),
	mcp.WithString("muscle", mcp.Description("Targeted muscle group"), mcp.Enum("CHEST", "BACK", "SHOULDERS", "ARMS", "LEGS", "CORE", "FULL_BODY")),
)

var toolLogWorkout = mcp.NewTool("log_workout",
	mcp.WithDescription("Record a workout that just finished. Awards XP, updates streaks and stats, and advances missions. Returns the XP earned, any level up and newly completed missions."),
	mcp.WithString("title", mcp.Description("Workout title. Defaults to 'Workout'.")),
	mcp.WithNumber("duration_minutes", mcp.Required(), mcp.Description("How long the workout lasted, in minutes")),
	mcp.WithArray("exercises", mcp.Required(),
		mcp.Description("Exercises performed. Every listed set counts as completed. Weights are in pounds."),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"exercise_id": map[string]any{"type": "string", "description": "Catalog id from search_exercises"},
				"name":        map[string]any{"type": "string", "description": "Exercise name"},
				"sets": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"reps":     map[string]any{"type": "integer"},
							"weight":   map[string]any{"type": "number"},
							"duration": map[string]any{"type": "number", "description": "Minutes, for timed sets"},
						},
					},
				},
			},
		}),
	),
)

// --- Tool handlers ---

func (h *handlers) getProfile(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.ds.Initialize(ctx, UserIDFromContext(ctx), "")
	if err != nil {
		h.log.Error("mcp get_profile", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(summarize(p))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getMissions(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	board, err := h.ds.Missions(ctx, UserIDFromContext(ctx), h.now())
	if err != nil {
		h.log.Error("mcp get_missions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(board)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	limit := req.GetInt("limit", 20)

	workouts, err := h.ds.Workouts(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out := make([]models.Workout, 0, len(workouts))
	for _, w := range workouts {
		if w.StartTime.Before(start) || w.StartTime.After(end) {
			continue
		}
		out = append(out, w)
		if limit > 0 && len(out) == limit {
			break
		}
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) searchExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := catalog.Filter{
		Category:    models.ExerciseCategory(strings.ToUpper(req.GetString("category", ""))),
		MuscleGroup: models.MuscleGroup(strings.ToUpper(req.GetString("muscle", ""))),
		Query:       req.GetString("query", ""),
	}

	list, err := h.ds.Exercises(ctx, UserIDFromContext(ctx), f)
	if err != nil {
		h.log.Error("mcp search_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(list)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) logWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args loggedWorkout
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	if args.DurationMinutes < 0 {
		return mcp.NewToolResultError("duration_minutes must be >= 0"), nil
	}
	if len(args.Exercises) == 0 {
		return mcp.NewToolResultError("at least one exercise is required"), nil
	}

	now := h.now()
	w := models.Workout{
		Title:     args.Title,
		StartTime: now.Add(-time.Duration(args.DurationMinutes * float64(time.Minute))),
	}
	for _, ex := range args.Exercises {
		we := models.WorkoutExercise{ExerciseID: ex.ExerciseID, ExerciseName: ex.Name}
		if we.ExerciseName == "" {
			we.ExerciseName = ex.ExerciseID
		}
		for i, s := range ex.Sets {
			we.Sets = append(we.Sets, models.WorkoutSet{
				SetNumber: i + 1,
				Reps:      s.Reps,
				Weight:    s.Weight,
				Duration:  s.Duration,
				Completed: true,
			})
		}
		w.Exercises = append(w.Exercises, we)
	}

	res, err := h.ds.CompleteWorkout(ctx, UserIDFromContext(ctx), w, now)
	if err != nil {
		h.log.Error("mcp log_workout", "error", err)
		return mcp.NewToolResultError("logging workout failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(res)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
