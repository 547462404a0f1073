package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"eduadmin-backend/shared/database/models"
)

type seedUnit struct {
	name   string
	parent string
	majors []string
}

// sampleDirectory is inserted in order, so parents always precede their children.
var sampleDirectory = []seedUnit{
	{name: "HQ"},
	{name: "Dept A", parent: "HQ", majors: []string{"Computer Science"}},
	{name: "Team X", parent: "Dept A"},
	{name: "Dept B", parent: "HQ", majors: []string{"Mathematics", "Physics"}},
}

// SeedDatabase inserts a sample organization hierarchy when the directory is empty
func SeedDatabase(db *gorm.DB) error {
	log := zap.L()
	log.Info("🌱 Checking database seed data...")

	var count int64
	if err := db.Model(&models.Organization{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count organizations: %w", err)
	}
	if count > 0 {
		log.Info("✅ Database seed data is up to date", zap.Int64("organizations", count))
		return nil
	}

	orgsCreated, majorsCreated := 0, 0
	err := db.Transaction(func(tx *gorm.DB) error {
		ids := make(map[string]uuid.UUID, len(sampleDirectory))
		base := time.Now().UTC()
		for i, unit := range sampleDirectory {
			org := models.Organization{
				ID:        uuid.New(),
				Name:      unit.name,
				Creator:   "seed",
				Updater:   "seed",
				CreatedAt: base.Add(time.Duration(i) * time.Millisecond),
			}
			if unit.parent != "" {
				parentID, ok := ids[unit.parent]
				if !ok {
					return fmt.Errorf("seed parent %q not created before %q", unit.parent, unit.name)
				}
				org.ParentID = &parentID
			}
			if err := tx.Create(&org).Error; err != nil {
				return fmt.Errorf("failed to seed organization %s: %w", unit.name, err)
			}
			ids[unit.name] = org.ID
			orgsCreated++

			for _, name := range unit.majors {
				major := models.Major{Name: name, OrganizationID: org.ID}
				if err := tx.Create(&major).Error; err != nil {
					return fmt.Errorf("failed to seed major %s: %w", name, err)
				}
				majorsCreated++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("✅ Database seeding completed",
		zap.Int("organizations", orgsCreated),
		zap.Int("majors", majorsCreated))
	return nil
}
