package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uuid.UUID         `gorm:"type:uuid;index" json:"actor_id"`
	ActorRole  string            `gorm:"size:20" json:"actor_role"`
	Action     string            `gorm:"size:60;not null;index" json:"action"`
	EntityType string            `gorm:"size:40;not null;index" json:"entity_type"`
	EntityID   string            `gorm:"size:64" json:"entity_id"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
}
