package ingest

// Result holds the outcome of an ingest operation.
type Result struct {
	SessionsReceived int `json:"sessions_received"`
	WorkoutsImported int `json:"workouts_imported"`
	WorkoutsSkipped  int `json:"workouts_skipped"`

	SetsReceived   int `json:"sets_received"`
	SetsImported   int `json:"sets_imported"`
	WarmupsSkipped int `json:"warmups_skipped,omitempty"`

	XPEarned          int64 `json:"xp_earned"`
	LevelUps          int   `json:"level_ups,omitempty"`
	MissionsCompleted int   `json:"missions_completed,omitempty"`

	Message string `json:"message,omitempty"`
}
