package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"eduadmin-backend/shared/database/models"
	"eduadmin-backend/shared/orgtree"
)

// MemoryRepository keeps the directory in process memory. It backs tests and local
// runs without Postgres. Writes are applied to a copy and swapped in on success.
type MemoryRepository struct {
	mu         sync.Mutex
	orgs       []models.Organization
	dependents map[uuid.UUID]orgtree.Counts
	now        func() time.Time

	// FailNext, when set, is returned once by the next Snapshot or Write call.
	FailNext error
}

func NewMemoryRepository(orgs ...models.Organization) *MemoryRepository {
	r := &MemoryRepository{
		dependents: make(map[uuid.UUID]orgtree.Counts),
		now:        func() time.Time { return time.Now().UTC() },
	}
	r.orgs = append(r.orgs, orgs...)
	return r
}

// SetDependents sets the direct dependent counts of organization id.
func (r *MemoryRepository) SetDependents(id uuid.UUID, c orgtree.Counts) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dependents[id] = c
}

// Len returns the number of stored organizations.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orgs)
}

func (r *MemoryRepository) takeFailure() error {
	err := r.FailNext
	r.FailNext = nil
	return err
}

func (r *MemoryRepository) Snapshot(ctx context.Context) ([]orgtree.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	return r.records(r.orgs), nil
}

func (r *MemoryRepository) Write(ctx context.Context, fn func(tx WriteTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeFailure(); err != nil {
		return err
	}

	tx := &memoryWriteTx{repo: r, orgs: append([]models.Organization(nil), r.orgs...)}
	if err := fn(tx); err != nil {
		return err
	}
	r.orgs = tx.orgs
	return nil
}

func (r *MemoryRepository) records(orgs []models.Organization) []orgtree.Record {
	out := make([]orgtree.Record, 0, len(orgs))
	for _, org := range orgs {
		out = append(out, toRecord(org, r.dependents[org.ID]))
	}
	return out
}

type memoryWriteTx struct {
	repo *MemoryRepository
	orgs []models.Organization
}

func (w *memoryWriteTx) Snapshot(ctx context.Context) ([]orgtree.Record, error) {
	return w.repo.records(w.orgs), nil
}

func (w *memoryWriteTx) Create(ctx context.Context, org *models.Organization) error {
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	now := w.repo.now()
	if org.CreatedAt.IsZero() {
		org.CreatedAt = now
	}
	if org.UpdatedAt.IsZero() {
		org.UpdatedAt = now
	}
	w.orgs = append(w.orgs, *org)
	return nil
}

func (w *memoryWriteTx) Update(ctx context.Context, org *models.Organization) error {
	for i := range w.orgs {
		if w.orgs[i].ID == org.ID {
			w.orgs[i].Name = org.Name
			w.orgs[i].ParentID = org.ParentID
			w.orgs[i].Updater = org.Updater
			w.orgs[i].UpdatedAt = org.UpdatedAt
			return nil
		}
	}
	return ErrNotFound
}

func (w *memoryWriteTx) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	for i := range w.orgs {
		if w.orgs[i].ID == id {
			w.orgs = append(w.orgs[:i:i], w.orgs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}
