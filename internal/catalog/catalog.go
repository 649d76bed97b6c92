// Package catalog provides the bundled exercise dataset, normalized into the
// app's category and muscle-group vocabulary.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/DaraMoh/solo-gym-app/internal/models"
)

//go:embed exercises.json
var bundled []byte

// RawExercise is one entry of the upstream exercise dataset.
type RawExercise struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	PrimaryMuscles   []string `json:"primaryMuscles"`
	SecondaryMuscles []string `json:"secondaryMuscles,omitempty"`
	Equipment        *string  `json:"equipment"`
	Level            string   `json:"level"`
}

var categoryMap = map[string]models.ExerciseCategory{
	"strength":              models.CategoryStrength,
	"stretching":            models.CategoryFlexibility,
	"plyometrics":           models.CategoryCardio,
	"cardio":                models.CategoryCardio,
	"powerlifting":          models.CategoryStrength,
	"strongman":             models.CategoryStrength,
	"olympic weightlifting": models.CategoryStrength,
}

var muscleGroupMap = map[string]models.MuscleGroup{
	"chest":       models.MuscleChest,
	"middle back": models.MuscleBack,
	"lats":        models.MuscleBack,
	"lower back":  models.MuscleBack,
	"shoulders":   models.MuscleShoulders,
	"biceps":      models.MuscleArms,
	"triceps":     models.MuscleArms,
	"forearms":    models.MuscleArms,
	"quadriceps":  models.MuscleLegs,
	"hamstrings":  models.MuscleLegs,
	"glutes":      models.MuscleLegs,
	"calves":      models.MuscleLegs,
	"adductors":   models.MuscleLegs,
	"abductors":   models.MuscleLegs,
	"abdominals":  models.MuscleCore,
	"neck":        models.MuscleShoulders,
	"traps":       models.MuscleShoulders,
}

// PopularNames lists the exercises surfaced first in pickers, in order.
var PopularNames = []string{
	"Barbell Squat",
	"Barbell Deadlift",
	"Barbell Bench Press - Medium Grip",
	"Pull-ups",
	"Barbell Shoulder Press",
	"Barbell Curl",
	"Dips - Triceps Version",
	"Barbell Lunge",
	"Plank",
	"Crunches",
	"Push-Ups",
	"Bent Over Barbell Row",
	"Dumbbell Bench Press",
	"Dumbbell Shoulder Press",
	"Leg Press",
}

// Category maps a dataset category to an ExerciseCategory. Unknown values
// fall back to STRENGTH.
func Category(raw string) models.ExerciseCategory {
	if c, ok := categoryMap[strings.ToLower(raw)]; ok {
		return c
	}
	return models.CategoryStrength
}

// MuscleGroups maps dataset muscle names to muscle groups, keeping first
// occurrence order and dropping unknown names and duplicates. An empty
// result becomes FULL_BODY.
func MuscleGroups(primary, secondary []string) []models.MuscleGroup {
	seen := make(map[models.MuscleGroup]bool)
	var out []models.MuscleGroup
	for _, list := range [][]string{primary, secondary} {
		for _, name := range list {
			g, ok := muscleGroupMap[strings.ToLower(name)]
			if !ok || seen[g] {
				continue
			}
			seen[g] = true
			out = append(out, g)
		}
	}
	if len(out) == 0 {
		return []models.MuscleGroup{models.MuscleFullBody}
	}
	return out
}

// Convert normalizes raw dataset entries. Entries without an id get
// exercise_<index>.
func Convert(raw []RawExercise) []models.Exercise {
	out := make([]models.Exercise, 0, len(raw))
	for i, r := range raw {
		id := r.ID
		if id == "" {
			id = fmt.Sprintf("exercise_%d", i)
		}
		out = append(out, models.Exercise{
			ID:           id,
			Name:         r.Name,
			Category:     Category(r.Category),
			MuscleGroups: MuscleGroups(r.PrimaryMuscles, r.SecondaryMuscles),
			IsCustom:     false,
		})
	}
	return out
}

// Parse decodes a dataset document and normalizes it.
func Parse(data []byte) ([]models.Exercise, error) {
	var raw []RawExercise
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding exercise dataset: %w", err)
	}
	return Convert(raw), nil
}

// Catalog is a read-only, queryable list of exercises.
type Catalog struct {
	exercises []models.Exercise
	byID      map[string]int
}

// Load returns the catalog built from the bundled dataset.
func Load() (*Catalog, error) {
	exercises, err := Parse(bundled)
	if err != nil {
		return nil, err
	}
	return New(exercises), nil
}

// New builds a catalog over exercises.
func New(exercises []models.Exercise) *Catalog {
	c := &Catalog{
		exercises: append([]models.Exercise(nil), exercises...),
		byID:      make(map[string]int, len(exercises)),
	}
	for i, e := range c.exercises {
		if _, dup := c.byID[e.ID]; !dup {
			c.byID[e.ID] = i
		}
	}
	return c
}

// All returns every exercise in dataset order.
func (c *Catalog) All() []models.Exercise {
	return append([]models.Exercise(nil), c.exercises...)
}

// Len returns the number of exercises.
func (c *Catalog) Len() int {
	return len(c.exercises)
}

// ByID looks up an exercise by id.
func (c *Catalog) ByID(id string) (models.Exercise, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Exercise{}, false
	}
	return c.exercises[i], true
}

// Filter narrows a catalog query. Zero fields match everything.
type Filter struct {
	Category    models.ExerciseCategory
	MuscleGroup models.MuscleGroup
	Query       string
}

// Match reports whether e satisfies every non-zero field of f. Query is a
// case-insensitive substring match on the name.
func (f Filter) Match(e models.Exercise) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.MuscleGroup != "" && !e.Targets(f.MuscleGroup) {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" &&
		!strings.Contains(strings.ToLower(e.Name), strings.ToLower(q)) {
		return false
	}
	return true
}

// Apply returns the exercises in list that match f.
func (f Filter) Apply(list []models.Exercise) []models.Exercise {
	out := make([]models.Exercise, 0, len(list))
	for _, e := range list {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// ByCategory returns the exercises in category.
func (c *Catalog) ByCategory(category models.ExerciseCategory) []models.Exercise {
	return Filter{Category: category}.Apply(c.exercises)
}

// ByMuscleGroup returns the exercises that target group.
func (c *Catalog) ByMuscleGroup(group models.MuscleGroup) []models.Exercise {
	return Filter{MuscleGroup: group}.Apply(c.exercises)
}

// Search returns exercises whose name contains query, ignoring case.
func (c *Catalog) Search(query string) []models.Exercise {
	return Filter{Query: query}.Apply(c.exercises)
}

// Popular returns the exercises named in PopularNames that exist in list,
// in PopularNames order.
func Popular(list []models.Exercise) []models.Exercise {
	byName := make(map[string]models.Exercise, len(list))
	for _, e := range list {
		if _, ok := byName[e.Name]; !ok {
			byName[e.Name] = e
		}
	}
	out := make([]models.Exercise, 0, len(PopularNames))
	for _, name := range PopularNames {
		if e, ok := byName[name]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Popular returns the catalog's popular exercises.
func (c *Catalog) Popular() []models.Exercise {
	return Popular(c.exercises)
}
