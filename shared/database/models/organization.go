package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is one unit of the directory. ParentID is a weak reference: there is
// no foreign key and no cascade, the service keeps the hierarchy acyclic.
type Organization struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string     `json:"name" gorm:"size:200;not null"`
	ParentID  *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`
	Creator   string     `json:"creator" gorm:"size:100"`
	Updater   string     `json:"updater" gorm:"size:100"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName returns the table name for Organization
func (Organization) TableName() string {
	return "organizations"
}
