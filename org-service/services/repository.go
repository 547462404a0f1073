package services

import (
	"context"

	"github.com/google/uuid"

	"eduadmin-backend/shared/database/models"
	"eduadmin-backend/shared/orgtree"
)

// Repository is the persisted record set behind the directory.
//
// Snapshot returns every organization together with its direct dependent counts, read
// at one point in time. Write runs fn with exclusive write access: the snapshot fn sees
// is the one its changes apply to, and either all of fn's changes commit or none do.
type Repository interface {
	Snapshot(ctx context.Context) ([]orgtree.Record, error)
	Write(ctx context.Context, fn func(tx WriteTx) error) error
}

// WriteTx is the view of the repository inside Write.
type WriteTx interface {
	Snapshot(ctx context.Context) ([]orgtree.Record, error)
	Create(ctx context.Context, org *models.Organization) error
	Update(ctx context.Context, org *models.Organization) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

func toRecord(org models.Organization, direct orgtree.Counts) orgtree.Record {
	return orgtree.Record{
		ID:        org.ID,
		Name:      org.Name,
		ParentID:  org.ParentID,
		Direct:    direct,
		Creator:   org.Creator,
		Updater:   org.Updater,
		CreatedAt: org.CreatedAt,
		UpdatedAt: org.UpdatedAt,
	}
}

func toModel(r orgtree.Record) models.Organization {
	return models.Organization{
		ID:        r.ID,
		Name:      r.Name,
		ParentID:  r.ParentID,
		Creator:   r.Creator,
		Updater:   r.Updater,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
