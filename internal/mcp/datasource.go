package mcp

import (
	"context"
	"time"

	"github.com/DaraMoh/solo-gym-app/internal/catalog"
	"github.com/DaraMoh/solo-gym-app/internal/models"
	"github.com/DaraMoh/solo-gym-app/internal/tracker"
)

// DataSource abstracts the data layer for MCP tools. Both *tracker.Tracker
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	Initialize(ctx context.Context, userID, displayName string) (*models.UserProfile, error)
	Workouts(ctx context.Context, userID string) ([]models.Workout, error)
	Missions(ctx context.Context, userID string, now time.Time) (*tracker.MissionBoard, error)
	CompleteWorkout(ctx context.Context, userID string, w models.Workout, now time.Time) (*tracker.Completion, error)
	Exercises(ctx context.Context, userID string, f catalog.Filter) ([]models.Exercise, error)
}

// Compile-time check: *tracker.Tracker satisfies DataSource.
var _ DataSource = (*tracker.Tracker)(nil)
