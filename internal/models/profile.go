package models

import (
	"fmt"
	"time"
)

// Rank is a coarse tier derived from a profile's level.
type Rank string

const (
	RankE Rank = "E"
	RankD Rank = "D"
	RankC Rank = "C"
	RankB Rank = "B"
	RankA Rank = "A"
	RankS Rank = "S"
)

// Ranks lists every rank from lowest to highest.
var Ranks = []Rank{RankE, RankD, RankC, RankB, RankA, RankS}

// Index returns the rank's position in Ranks, or -1 for an unknown value.
func (r Rank) Index() int {
	for i, v := range Ranks {
		if v == r {
			return i
		}
	}
	return -1
}

// Less reports whether r is strictly below o.
func (r Rank) Less(o Rank) bool {
	return r.Index() < o.Index()
}

// Valid reports whether r is one of the known ranks.
func (r Rank) Valid() bool {
	return r.Index() >= 0
}

// UserStats holds derived attribute scores. Strength, Endurance and
// Consistency are always within 0..100.
type UserStats struct {
	Strength          int     `json:"strength"`
	Endurance         int     `json:"endurance"`
	Consistency       int     `json:"consistency"`
	TotalVolumeLifted float64 `json:"totalVolumeLifted"`
	TotalWorkoutTime  int     `json:"totalWorkoutTime"`
}

// DefaultUsername is given to profiles created without a display name.
const DefaultUsername = "Hunter"

// UserProfile is the single progression record of a user.
type UserProfile struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Level         int       `json:"level"`
	CurrentXP     int64     `json:"currentXP"`
	XPToNextLevel int64     `json:"xpToNextLevel"`
	Rank          Rank      `json:"rank"`
	TotalWorkouts int       `json:"totalWorkouts"`
	CurrentStreak int       `json:"currentStreak"`
	LongestStreak int       `json:"longestStreak"`
	Stats         UserStats `json:"stats"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewUserProfile returns the profile a user starts with on first use.
func NewUserProfile(id, username string, now time.Time) *UserProfile {
	if username == "" {
		username = DefaultUsername
	}
	return &UserProfile{
		ID:            id,
		Username:      username,
		Level:         1,
		CurrentXP:     0,
		XPToNextLevel: 100,
		Rank:          RankE,
		CreatedAt:     now,
	}
}

// Validate checks the structural invariants of a stored profile.
func (p *UserProfile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("profile id is required")
	}
	if p.Level < 1 {
		return fmt.Errorf("level must be >= 1, got %d", p.Level)
	}
	if p.CurrentXP < 0 {
		return fmt.Errorf("currentXP must be >= 0, got %d", p.CurrentXP)
	}
	if !p.Rank.Valid() {
		return fmt.Errorf("unknown rank %q", p.Rank)
	}
	return nil
}
