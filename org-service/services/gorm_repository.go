package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"eduadmin-backend/shared/database/models"
	"eduadmin-backend/shared/orgtree"
)

// directoryLockKey serializes directory writers through a transaction-scoped
// Postgres advisory lock.
const directoryLockKey int64 = 0x6f7267646972

// GormRepository stores the directory in Postgres.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Snapshot reads organizations and dependent counts in one read-only
// repeatable-read transaction.
func (r *GormRepository) Snapshot(ctx context.Context) ([]orgtree.Record, error) {
	var records []orgtree.Record
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		records, err = loadSnapshot(tx)
		return err
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Write runs fn in a transaction holding the directory write lock.
func (r *GormRepository) Write(ctx context.Context, fn func(tx WriteTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", directoryLockKey).Error; err != nil {
			return fmt.Errorf("failed to acquire directory lock: %w", err)
		}
		return fn(&gormWriteTx{tx: tx})
	})
}

type gormWriteTx struct {
	tx *gorm.DB
}

func (w *gormWriteTx) Snapshot(ctx context.Context) ([]orgtree.Record, error) {
	return loadSnapshot(w.tx.WithContext(ctx))
}

func (w *gormWriteTx) Create(ctx context.Context, org *models.Organization) error {
	if err := w.tx.WithContext(ctx).Create(org).Error; err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

func (w *gormWriteTx) Update(ctx context.Context, org *models.Organization) error {
	res := w.tx.WithContext(ctx).Model(&models.Organization{}).
		Where("id = ?", org.ID).
		Updates(map[string]interface{}{
			"name":       org.Name,
			"parent_id":  org.ParentID,
			"updater":    org.Updater,
			"updated_at": org.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update organization: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (w *gormWriteTx) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := w.tx.WithContext(ctx).Where("id = ?", id).Delete(&models.Organization{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete organization: %w", res.Error)
	}
	return res.RowsAffected, nil
}

type countRow struct {
	OrganizationID uuid.UUID
	Total          int64
}

func loadSnapshot(tx *gorm.DB) ([]orgtree.Record, error) {
	var orgs []models.Organization
	if err := tx.Order("created_at ASC, id ASC").Find(&orgs).Error; err != nil {
		return nil, fmt.Errorf("failed to load organizations: %w", err)
	}

	direct := make(map[uuid.UUID]orgtree.Counts, len(orgs))
	dependents := []struct {
		model interface{}
		apply func(c *orgtree.Counts, n int64)
	}{
		{&models.Major{}, func(c *orgtree.Counts, n int64) { c.Majors = n }},
		{&models.Class{}, func(c *orgtree.Counts, n int64) { c.Classes = n }},
		{&models.Student{}, func(c *orgtree.Counts, n int64) { c.Students = n }},
	}
	for _, dep := range dependents {
		var rows []countRow
		err := tx.Model(dep.model).
			Select("organization_id, COUNT(*) AS total").
			Group("organization_id").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count %T: %w", dep.model, err)
		}
		for _, row := range rows {
			c := direct[row.OrganizationID]
			dep.apply(&c, row.Total)
			direct[row.OrganizationID] = c
		}
	}

	records := make([]orgtree.Record, 0, len(orgs))
	for _, org := range orgs {
		records = append(records, toRecord(org, direct[org.ID]))
	}
	return records, nil
}
