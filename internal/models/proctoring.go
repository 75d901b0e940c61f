package models

import (
	"time"

	"gorm.io/datatypes"
)

type ProctoringEventType string

const (
	EventHeartbeat      ProctoringEventType = "heartbeat"
	EventTabSwitch      ProctoringEventType = "tab_switch"
	EventWindowBlur     ProctoringEventType = "window_blur"
	EventFullscreenExit ProctoringEventType = "fullscreen_exit"
	EventNoFace         ProctoringEventType = "no_face"
	EventMultipleFaces  ProctoringEventType = "multiple_faces"
)

// Severity levels for proctoring events.
const (
	SeverityInfo     = 1
	SeverityWarning  = 2
	SeverityCritical = 3
)

// ProctoringEvent is a violation or heartbeat written by the proctoring
// collaborator. It references a session but never mutates session or section
// state.
type ProctoringEvent struct {
	ID            uint                `json:"id" gorm:"primaryKey"`
	SessionID     uint                `json:"session_id" gorm:"not null;index"`
	AttemptNumber int                 `json:"attempt_number" gorm:"not null;default:1"`
	Type          ProctoringEventType `json:"type" gorm:"not null;index"`
	Data          datatypes.JSON      `json:"data" gorm:"type:jsonb"`
	Severity      int                 `json:"severity" gorm:"default:1"`

	CreatedAt time.Time `json:"created_at"`

	Session ExamSession `json:"session" gorm:"foreignKey:SessionID"`
}

func (ProctoringEvent) TableName() string {
	return "proctoring_events"
}
