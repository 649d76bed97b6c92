// Package storage persists profiles, workouts, missions, exercises and
// templates. Records are stored as JSON documents keyed by user.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DaraMoh/solo-gym-app/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// CatalogUser is the owner key of bundled (non-custom) exercises.
const CatalogUser = ""

// Store is the persistence boundary of the tracker. Implementations must be
// safe for concurrent use; writes are last-writer-wins.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, p *models.UserProfile) error

	// ListWorkouts returns the user's workouts, most recently inserted first.
	ListWorkouts(ctx context.Context, userID string) ([]models.Workout, error)
	GetWorkout(ctx context.Context, userID, id string) (*models.Workout, error)
	InsertWorkout(ctx context.Context, w *models.Workout) error
	UpdateWorkout(ctx context.Context, w *models.Workout) error
	DeleteWorkout(ctx context.Context, userID, id string) error

	GetMissions(ctx context.Context, userID string) ([]models.Mission, error)
	SaveMissions(ctx context.Context, userID string, missions []models.Mission) error

	// ListExercises returns the bundled catalog followed by userID's custom
	// exercises. CatalogUser returns the catalog only.
	ListExercises(ctx context.Context, userID string) ([]models.Exercise, error)
	SaveExercises(ctx context.Context, exercises []models.Exercise) error
	AddExercise(ctx context.Context, userID string, e models.Exercise) error

	ListTemplates(ctx context.Context, userID string) ([]models.WorkoutTemplate, error)
	SaveTemplate(ctx context.Context, t *models.WorkoutTemplate) error
	DeleteTemplate(ctx context.Context, userID, id string) error

	// Reset deletes everything owned by userID.
	Reset(ctx context.Context, userID string) error
	Close() error
}

func encode(kind string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", kind, err)
	}
	return data, nil
}

func decode[T any](kind string, data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decoding %s: %w", kind, err)
	}
	return v, nil
}
