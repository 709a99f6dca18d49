// Package audit persists administrative actions. Recording is
// fire-and-forget: a failed write is logged and never fails the
// operation that triggered it.
package audit

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hyunwoo-p/rinkmate/internal/logger"
)

type AuditEvent struct {
	gorm.Model
	EventID    string `gorm:"type:varchar(36);uniqueIndex;not null" json:"event_id"`
	ActorID    uint   `gorm:"index;not null" json:"actor_id"`
	Action     string `gorm:"type:varchar(50);not null" json:"action"`
	TargetType string `gorm:"type:varchar(30);not null" json:"target_type"`
	TargetID   uint   `gorm:"index" json:"target_id"`
	Detail     string `gorm:"type:varchar(500)" json:"detail"`
}

type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) Record(actorID uint, action, targetType string, targetID uint, detail string) {
	if r == nil || r.db == nil {
		return
	}
	event := AuditEvent{
		EventID:    uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Detail:     detail,
	}
	if err := r.db.Create(&event).Error; err != nil {
		logger.Error("audit: failed to record %s on %s/%d: %v", action, targetType, targetID, err)
	}
}
