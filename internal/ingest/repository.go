package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Job is one upload working its way through scan, ingest and
// enrichment. The row doubles as the status surface the frontend
// polls.
type Job struct {
	ID           string  `json:"id"`
	RestaurantID string  `json:"restaurant_id"`
	MenuID       *string `json:"menu_id,omitempty"`
	ObjectKey    string  `json:"-"`
	Filename     string  `json:"filename"`
	MimeType     string  `json:"mime_type"`
	Stage        Stage   `json:"stage"`
	DishesDone   int     `json:"dishes_done"`
	DishesTotal  int     `json:"dishes_total"`
	Error        *string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrNoJob           = errors.New("no scan job found")
	ErrJobNotRetryable = errors.New("scan job not in FAILED state")
)

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	Get(ctx context.Context, jobID string) (*Job, error)
	LatestByRestaurant(ctx context.Context, restaurantID string) (*Job, error)

	// ClaimNext atomically claims the oldest UPLOADED job, moving it
	// to SCANNING. Returns ErrNoJob when nothing is pending.
	ClaimNext(ctx context.Context) (*Job, error)

	SetMenuID(ctx context.Context, jobID, menuID string) error
	SetProgress(ctx context.Context, jobID string, p Progress) error
	MarkFailed(ctx context.Context, jobID string, phase Stage, message string) error
	MarkReady(ctx context.Context, jobID string) error

	// ResetForRetry puts a FAILED job back to UPLOADED so the worker
	// picks it up again.
	ResetForRetry(ctx context.Context, jobID string) error
}

type PostgresJobRepository struct {
	db *pgxpool.Pool
}

func NewPostgresJobRepository(db *pgxpool.Pool) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

func (r *PostgresJobRepository) Create(ctx context.Context, job *Job) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	job.Stage = StageUploaded

	return r.db.QueryRow(ctx, `
		INSERT INTO scan_jobs (
			id, restaurant_id, object_key, original_filename, mime_type, stage
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`,
		job.ID, job.RestaurantID, job.ObjectKey, job.Filename,
		job.MimeType, job.Stage,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
}

const jobColumns = `
	id, restaurant_id, menu_id, object_key, original_filename,
	mime_type, stage, dishes_done, dishes_total, error,
	created_at, updated_at
`

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	err := row.Scan(
		&j.ID, &j.RestaurantID, &j.MenuID, &j.ObjectKey, &j.Filename,
		&j.MimeType, &j.Stage, &j.DishesDone, &j.DishesTotal, &j.Error,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoJob
		}
		return nil, err
	}
	return &j, nil
}

func (r *PostgresJobRepository) Get(ctx context.Context, jobID string) (*Job, error) {
	return scanJob(r.db.QueryRow(ctx, `
		SELECT `+jobColumns+`
		FROM scan_jobs
		WHERE id = $1
	`, jobID))
}

func (r *PostgresJobRepository) LatestByRestaurant(ctx context.Context, restaurantID string) (*Job, error) {
	return scanJob(r.db.QueryRow(ctx, `
		SELECT `+jobColumns+`
		FROM scan_jobs
		WHERE restaurant_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`, restaurantID))
}

// ClaimNext uses FOR UPDATE SKIP LOCKED so concurrent workers never
// pick the same job.
func (r *PostgresJobRepository) ClaimNext(ctx context.Context) (*Job, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	job, err := scanJob(tx.QueryRow(ctx, `
		SELECT `+jobColumns+`
		FROM scan_jobs
		WHERE stage = 'UPLOADED'
		ORDER BY created_at
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`))
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE scan_jobs
		SET stage = 'SCANNING', updated_at = now()
		WHERE id = $1
	`, job.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	job.Stage = StageScanning
	return job, nil
}

func (r *PostgresJobRepository) SetMenuID(ctx context.Context, jobID, menuID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE scan_jobs
		SET menu_id = $1, updated_at = now()
		WHERE id = $2
	`, menuID, jobID)
	return err
}

func (r *PostgresJobRepository) SetProgress(ctx context.Context, jobID string, p Progress) error {
	_, err := r.db.Exec(ctx, `
		UPDATE scan_jobs
		SET stage = $1,
		    dishes_done = $2,
		    dishes_total = $3,
		    error = NULL,
		    updated_at = now()
		WHERE id = $4
	`, p.Stage, p.Done, p.Total, jobID)
	return err
}

func (r *PostgresJobRepository) MarkFailed(ctx context.Context, jobID string, phase Stage, message string) error {
	msg := string(phase) + ": " + message
	_, err := r.db.Exec(ctx, `
		UPDATE scan_jobs
		SET stage = 'FAILED',
		    error = $1,
		    updated_at = now()
		WHERE id = $2
	`, msg, jobID)
	return err
}

func (r *PostgresJobRepository) MarkReady(ctx context.Context, jobID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE scan_jobs
		SET stage = 'READY',
		    error = NULL,
		    updated_at = now()
		WHERE id = $1
	`, jobID)
	return err
}

func (r *PostgresJobRepository) ResetForRetry(ctx context.Context, jobID string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE scan_jobs
		SET stage = 'UPLOADED',
		    menu_id = NULL,
		    dishes_done = 0,
		    dishes_total = 0,
		    error = NULL,
		    updated_at = now()
		WHERE id = $1
		  AND stage = 'FAILED'
	`, jobID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrJobNotRetryable
	}
	return nil
}
