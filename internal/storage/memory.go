package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/DaraMoh/solo-gym-app/internal/models"
)

// Memory is a map-backed Store. Records are copied through their JSON form
// on the way in and out so callers never share state with the store.
type Memory struct {
	mu        sync.Mutex
	profiles  map[string][]byte
	workouts  map[string][][]byte
	missions  map[string][]byte
	exercises map[string][][]byte
	templates map[string][][]byte
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		profiles:  make(map[string][]byte),
		workouts:  make(map[string][][]byte),
		missions:  make(map[string][]byte),
		exercises: make(map[string][][]byte),
		templates: make(map[string][][]byte),
	}
}

func (m *Memory) GetProfile(_ context.Context, userID string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	p, err := decode[models.UserProfile]("profile", data)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *Memory) SaveProfile(_ context.Context, p *models.UserProfile) error {
	data, err := encode("profile", p)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = data
	return nil
}

func (m *Memory) ListWorkouts(_ context.Context, userID string) ([]models.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decodeAll[models.Workout]("workout", m.workouts[userID])
}

func (m *Memory) GetWorkout(_ context.Context, userID, id string) (*models.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, w, err := m.findWorkout(userID, id)
	return w, err
}

func (m *Memory) findWorkout(userID, id string) (int, *models.Workout, error) {
	for i, data := range m.workouts[userID] {
		w, err := decode[models.Workout]("workout", data)
		if err != nil {
			return -1, nil, err
		}
		if w.ID == id {
			return i, &w, nil
		}
	}
	return -1, nil, ErrNotFound
}

func (m *Memory) InsertWorkout(_ context.Context, w *models.Workout) error {
	data, err := encode("workout", w)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, _, err := m.findWorkout(w.UserID, w.ID); err == nil {
		return fmt.Errorf("inserting workout %s: duplicate id", w.ID)
	}
	m.workouts[w.UserID] = append([][]byte{data}, m.workouts[w.UserID]...)
	return nil
}

func (m *Memory) UpdateWorkout(_ context.Context, w *models.Workout) error {
	data, err := encode("workout", w)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i, _, err := m.findWorkout(w.UserID, w.ID)
	if err != nil {
		return err
	}
	m.workouts[w.UserID][i] = data
	return nil
}

func (m *Memory) DeleteWorkout(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, _, err := m.findWorkout(userID, id)
	if err != nil {
		return err
	}
	list := m.workouts[userID]
	m.workouts[userID] = append(list[:i:i], list[i+1:]...)
	return nil
}

func (m *Memory) GetMissions(_ context.Context, userID string) ([]models.Mission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.missions[userID]
	if !ok {
		return nil, nil
	}
	return decode[[]models.Mission]("missions", data)
}

func (m *Memory) SaveMissions(_ context.Context, userID string, missions []models.Mission) error {
	data, err := encode("missions", missions)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.missions[userID] = data
	return nil
}

func (m *Memory) ListExercises(_ context.Context, userID string) ([]models.Exercise, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, err := decodeAll[models.Exercise]("exercise", m.exercises[CatalogUser])
	if err != nil || userID == CatalogUser {
		return out, err
	}
	custom, err := decodeAll[models.Exercise]("exercise", m.exercises[userID])
	if err != nil {
		return nil, err
	}
	return append(out, custom...), nil
}

func (m *Memory) SaveExercises(_ context.Context, exercises []models.Exercise) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range exercises {
		if err := m.upsertExercise(CatalogUser, e); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) AddExercise(_ context.Context, userID string, e models.Exercise) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upsertExercise(userID, e)
}

func (m *Memory) upsertExercise(owner string, e models.Exercise) error {
	data, err := encode("exercise", e)
	if err != nil {
		return err
	}
	list := m.exercises[owner]
	for i, existing := range list {
		got, err := decode[models.Exercise]("exercise", existing)
		if err != nil {
			return err
		}
		if got.ID == e.ID {
			list[i] = data
			return nil
		}
	}
	m.exercises[owner] = append(list, data)
	return nil
}

func (m *Memory) ListTemplates(_ context.Context, userID string) ([]models.WorkoutTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decodeAll[models.WorkoutTemplate]("template", m.templates[userID])
}

func (m *Memory) SaveTemplate(_ context.Context, t *models.WorkoutTemplate) error {
	data, err := encode("template", t)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.templates[t.UserID]
	for i, existing := range list {
		got, err := decode[models.WorkoutTemplate]("template", existing)
		if err != nil {
			return err
		}
		if got.ID == t.ID {
			list[i] = data
			return nil
		}
	}
	m.templates[t.UserID] = append(list, data)
	return nil
}

func (m *Memory) DeleteTemplate(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.templates[userID]
	for i, existing := range list {
		got, err := decode[models.WorkoutTemplate]("template", existing)
		if err != nil {
			return err
		}
		if got.ID == id {
			m.templates[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) Reset(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, userID)
	delete(m.workouts, userID)
	delete(m.missions, userID)
	delete(m.templates, userID)
	if userID != CatalogUser {
		delete(m.exercises, userID)
	}
	return nil
}

func (m *Memory) Close() error { return nil }

func decodeAll[T any](kind string, docs [][]byte) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, data := range docs {
		v, err := decode[T](kind, data)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
