package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DaraMoh/solo-gym-app/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteFile is the database file name created inside the storage directory.
const SQLiteFile = "sologym.db"

// SQLite is a Store backed by a single local SQLite file.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (or creates) dir/sologym.db and applies migrations.
func OpenSQLite(dir string) (*SQLite, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage dir %s: %w", dir, err)
	}
	dbPath := filepath.Join(dir, SQLiteFile)

	if err := RunMigrations("sqlite", "sqlite://"+dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM profiles WHERE user_id = ?`, userID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	p, err := decode[models.UserProfile]("profile", doc)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLite) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	doc, err := encode("profile", p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, doc, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		p.ID, string(doc))
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

func (s *SQLite) ListWorkouts(ctx context.Context, userID string) ([]models.Workout, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM workouts WHERE user_id = ? ORDER BY seq DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	return scanDocs[models.Workout]("workout", rows)
}

func (s *SQLite) GetWorkout(ctx context.Context, userID, id string) (*models.Workout, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM workouts WHERE user_id = ? AND id = ?`, userID, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	w, err := decode[models.Workout]("workout", doc)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *SQLite) InsertWorkout(ctx context.Context, w *models.Workout) error {
	doc, err := encode("workout", w)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO workouts (user_id, id, created_at, doc) VALUES (?, ?, ?, ?)`,
		w.UserID, w.ID, w.CreatedAt.UTC().Format(time.RFC3339Nano), string(doc))
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}
	return nil
}

func (s *SQLite) UpdateWorkout(ctx context.Context, w *models.Workout) error {
	doc, err := encode("workout", w)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE workouts SET doc = ?, created_at = ? WHERE user_id = ? AND id = ?`,
		string(doc), w.CreatedAt.UTC().Format(time.RFC3339Nano), w.UserID, w.ID)
	if err != nil {
		return fmt.Errorf("updating workout: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLite) DeleteWorkout(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM workouts WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLite) GetMissions(ctx context.Context, userID string) ([]models.Mission, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM missions WHERE user_id = ?`, userID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying missions: %w", err)
	}
	return decode[[]models.Mission]("missions", doc)
}

func (s *SQLite) SaveMissions(ctx context.Context, userID string, missions []models.Mission) error {
	doc, err := encode("missions", missions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO missions (user_id, doc, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (user_id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		userID, string(doc))
	if err != nil {
		return fmt.Errorf("saving missions: %w", err)
	}
	return nil
}

func (s *SQLite) ListExercises(ctx context.Context, userID string) ([]models.Exercise, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM exercises WHERE user_id = ? OR user_id = ?
		 ORDER BY CASE WHEN user_id = '' THEN 0 ELSE 1 END, seq`,
		CatalogUser, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	return scanDocs[models.Exercise]("exercise", rows)
}

func (s *SQLite) SaveExercises(ctx context.Context, exercises []models.Exercise) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning exercise seed: %w", err)
	}
	defer tx.Rollback()

	for _, e := range exercises {
		if err := upsertExerciseSQL(ctx, tx, CatalogUser, e); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing exercise seed: %w", err)
	}
	return nil
}

func (s *SQLite) AddExercise(ctx context.Context, userID string, e models.Exercise) error {
	return upsertExerciseSQL(ctx, s.db, userID, e)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertExerciseSQL(ctx context.Context, db execer, owner string, e models.Exercise) error {
	doc, err := encode("exercise", e)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO exercises (user_id, id, doc) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, id) DO UPDATE SET doc = excluded.doc`,
		owner, e.ID, string(doc))
	if err != nil {
		return fmt.Errorf("saving exercise %s: %w", e.ID, err)
	}
	return nil
}

func (s *SQLite) ListTemplates(ctx context.Context, userID string) ([]models.WorkoutTemplate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM templates WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	return scanDocs[models.WorkoutTemplate]("template", rows)
}

func (s *SQLite) SaveTemplate(ctx context.Context, t *models.WorkoutTemplate) error {
	doc, err := encode("template", t)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO templates (user_id, id, doc) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, id) DO UPDATE SET doc = excluded.doc`,
		t.UserID, t.ID, string(doc))
	if err != nil {
		return fmt.Errorf("saving template: %w", err)
	}
	return nil
}

func (s *SQLite) DeleteTemplate(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM templates WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLite) Reset(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning reset: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"profiles", "workouts", "missions", "templates"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("resetting %s: %w", table, err)
		}
	}
	if userID != CatalogUser {
		if _, err := tx.ExecContext(ctx, `DELETE FROM exercises WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("resetting exercises: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reset: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDocs[T any](kind string, rows *sql.Rows) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", kind, err)
		}
		v, err := decode[T](kind, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", kind, err)
	}
	return out, nil
}
