package models

// ExerciseCategory classifies an exercise by training style.
type ExerciseCategory string

const (
	CategoryStrength    ExerciseCategory = "STRENGTH"
	CategoryCardio      ExerciseCategory = "CARDIO"
	CategoryFlexibility ExerciseCategory = "FLEXIBILITY"
	CategorySports      ExerciseCategory = "SPORTS"
)

// MuscleGroup is one of the coarse body regions an exercise targets.
type MuscleGroup string

const (
	MuscleChest     MuscleGroup = "CHEST"
	MuscleBack      MuscleGroup = "BACK"
	MuscleShoulders MuscleGroup = "SHOULDERS"
	MuscleArms      MuscleGroup = "ARMS"
	MuscleLegs      MuscleGroup = "LEGS"
	MuscleCore      MuscleGroup = "CORE"
	MuscleFullBody  MuscleGroup = "FULL_BODY"
)

// Exercise is a catalog entry, either bundled or user-defined.
type Exercise struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Category     ExerciseCategory `json:"category"`
	MuscleGroups []MuscleGroup    `json:"muscleGroups"`
	IsCustom     bool             `json:"isCustom"`
}

// Targets reports whether the exercise works the given muscle group.
func (e Exercise) Targets(g MuscleGroup) bool {
	for _, m := range e.MuscleGroups {
		if m == g {
			return true
		}
	}
	return false
}
