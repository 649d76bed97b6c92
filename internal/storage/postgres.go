package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/DaraMoh/solo-gym-app/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Store backed by a PostgreSQL connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres creates a Postgres store with a connection pool.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Postgres{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *Postgres) Close() error {
	db.Pool.Close()
	return nil
}

func (db *Postgres) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var doc []byte
	err := db.Pool.QueryRow(ctx, `SELECT doc FROM profiles WHERE user_id = $1`, userID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (db *Postgres) SaveProfile(ctx context.Context, p *models.UserProfile) error {
	doc, err := encode("profile", p)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO profiles (user_id, doc, updated_at) VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (user_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`,
		p.ID, string(doc))
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

func (db *Postgres) ListWorkouts(ctx context.Context, userID string) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT doc FROM workouts WHERE user_id = $1 ORDER BY seq DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	return collectDocs[models.Workout]("workout", rows)
}

func (db *Postgres) GetWorkout(ctx context.Context, userID, id string) (*models.Workout, error) {
	var doc []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT doc FROM workouts WHERE user_id = $1 AND id = $2`, userID, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (db *Postgres) InsertWorkout(ctx context.Context, w *models.Workout) error {
	doc, err := encode("workout", w)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workouts (user_id, id, created_at, doc) VALUES ($1, $2, $3, $4::jsonb)`,
		w.UserID, w.ID, w.CreatedAt, string(doc))
	if err != nil {
		return fmt.Errorf("inserting workout: %w", err)
	}
	return nil
}

func (db *Postgres) UpdateWorkout(ctx context.Context, w *models.Workout) error {
	doc, err := encode("workout", w)
	if err != nil {
		return err
	}
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workouts SET doc = $1::jsonb, created_at = $2 WHERE user_id = $3 AND id = $4`,
		string(doc), w.CreatedAt, w.UserID, w.ID)
	if err != nil {
		return fmt.Errorf("updating workout: %w", err)
	}
	return requireTag(tag)
}

func (db *Postgres) DeleteWorkout(ctx context.Context, userID, id string) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM workouts WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("deleting workout: %w", err)
	}
	return requireTag(tag)
}

func (db *Postgres) GetMissions(ctx context.Context, userID string) ([]models.Mission, error) {
	var doc []byte
	err := db.Pool.QueryRow(ctx, `SELECT doc FROM missions WHERE user_id = $1`, userID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying missions: %w", err)
	}
	return decode[[]models.Mission]("missions", doc)
}

func (db *Postgres) SaveMissions(ctx context.Context, userID string, missions []models.Mission) error {
	doc, err := encode("missions", missions)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO missions (user_id, doc, updated_at) VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (user_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`,
		userID, string(doc))
	if err != nil {
		return fmt.Errorf("saving missions: %w", err)
	}
	return nil
}

func (db *Postgres) ListExercises(ctx context.Context, userID string) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT doc FROM exercises WHERE user_id = $1 OR user_id = $2
		 ORDER BY (user_id <> ''), seq`,
		CatalogUser, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	return collectDocs[models.Exercise]("exercise", rows)
}

const upsertExercisePG = `INSERT INTO exercises (user_id, id, doc) VALUES ($1, $2, $3::jsonb)
	ON CONFLICT (user_id, id) DO UPDATE SET doc = EXCLUDED.doc`

func (db *Postgres) SaveExercises(ctx context.Context, exercises []models.Exercise) error {
	batch := &pgx.Batch{}
	for _, e := range exercises {
		doc, err := encode("exercise", e)
		if err != nil {
			return err
		}
		batch.Queue(upsertExercisePG, CatalogUser, e.ID, string(doc))
	}
	if err := db.Pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seeding exercises: %w", err)
	}
	return nil
}

func (db *Postgres) AddExercise(ctx context.Context, userID string, e models.Exercise) error {
	doc, err := encode("exercise", e)
	if err != nil {
		return err
	}
	if _, err := db.Pool.Exec(ctx, upsertExercisePG, userID, e.ID, string(doc)); err != nil {
		return fmt.Errorf("saving exercise %s: %w", e.ID, err)
	}
	return nil
}

func (db *Postgres) ListTemplates(ctx context.Context, userID string) ([]models.WorkoutTemplate, error) {
	rows, err := db.Pool.Query(ctx, `SELECT doc FROM templates WHERE user_id = $1 ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	return collectDocs[models.WorkoutTemplate]("template", rows)
}

func (db *Postgres) SaveTemplate(ctx context.Context, t *models.WorkoutTemplate) error {
	doc, err := encode("template", t)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO templates (user_id, id, doc) VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (user_id, id) DO UPDATE SET doc = EXCLUDED.doc`,
		t.UserID, t.ID, string(doc))
	if err != nil {
		return fmt.Errorf("saving template: %w", err)
	}
	return nil
}

func (db *Postgres) DeleteTemplate(ctx context.Context, userID, id string) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM templates WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	return requireTag(tag)
}

func (db *Postgres) Reset(ctx context.Context, userID string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning reset: %w", err)
	}
	defer tx.Rollback(ctx)

	tables := []string{"profiles", "workouts", "missions", "templates"}
	if userID != CatalogUser {
		tables = append(tables, "exercises")
	}
	for _, table := range tables {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("resetting %s: %w", table, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing reset: %w", err)
	}
	return nil
}

func requireTag(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectDocs[T any](kind string, rows pgx.Rows) ([]T, error) {
	docs, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("scanning %s rows: %w", kind, err)
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := decode[T](kind, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
