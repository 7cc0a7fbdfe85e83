package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type InMemoryJobRepository struct {
	mu    sync.Mutex
	jobs  map[string]*Job
	order []string
}

func NewInMemoryJobRepository() *InMemoryJobRepository {
	return &InMemoryJobRepository{jobs: make(map[string]*Job)}
}

func (r *InMemoryJobRepository) Create(_ context.Context, job *Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	job.Stage = StageUploaded
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt

	cp := *job
	r.jobs[job.ID] = &cp
	r.order = append(r.order, job.ID)
	return nil
}

func (r *InMemoryJobRepository) Get(_ context.Context, jobID string) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[jobID]
	if !ok {
		return nil, ErrNoJob
	}
	cp := *j
	return &cp, nil
}

func (r *InMemoryJobRepository) LatestByRestaurant(_ context.Context, restaurantID string) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest *Job
	for _, j := range r.jobs {
		if j.RestaurantID != restaurantID {
			continue
		}
		if latest == nil || j.UpdatedAt.After(latest.UpdatedAt) {
			latest = j
		}
	}
	if latest == nil {
		return nil, ErrNoJob
	}
	cp := *latest
	return &cp, nil
}

func (r *InMemoryJobRepository) ClaimNext(_ context.Context) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		j := r.jobs[id]
		if j.Stage == StageUploaded {
			j.Stage = StageScanning
			j.UpdatedAt = time.Now()
			cp := *j
			return &cp, nil
		}
	}
	return nil, ErrNoJob
}

func (r *InMemoryJobRepository) SetMenuID(_ context.Context, jobID, menuID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if j, ok := r.jobs[jobID]; ok {
		j.MenuID = &menuID
		j.UpdatedAt = time.Now()
	}
	return nil
}

func (r *InMemoryJobRepository) SetProgress(_ context.Context, jobID string, p Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if j, ok := r.jobs[jobID]; ok {
		j.Stage = p.Stage
		j.DishesDone = p.Done
		j.DishesTotal = p.Total
		j.Error = nil
		j.UpdatedAt = time.Now()
	}
	return nil
}

func (r *InMemoryJobRepository) MarkFailed(_ context.Context, jobID string, phase Stage, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if j, ok := r.jobs[jobID]; ok {
		msg := string(phase) + ": " + message
		j.Stage = StageFailed
		j.Error = &msg
		j.UpdatedAt = time.Now()
	}
	return nil
}

func (r *InMemoryJobRepository) MarkReady(_ context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if j, ok := r.jobs[jobID]; ok {
		j.Stage = StageReady
		j.Error = nil
		j.UpdatedAt = time.Now()
	}
	return nil
}

func (r *InMemoryJobRepository) ResetForRetry(_ context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[jobID]
	if !ok {
		return ErrNoJob
	}
	if j.Stage != StageFailed {
		return ErrJobNotRetryable
	}
	j.Stage = StageUploaded
	j.MenuID = nil
	j.DishesDone = 0
	j.DishesTotal = 0
	j.Error = nil
	j.UpdatedAt = time.Now()
	return nil
}
