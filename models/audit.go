package models

import "time"

type AuditAction string

const (
	AuditCreated       AuditAction = "created"
	AuditAssigned      AuditAction = "assigned"
	AuditReassigned    AuditAction = "reassigned"
	AuditAIGenerated   AuditAction = "ai_generated"
	AuditStatusChanged AuditAction = "status_changed"
	AuditDayCompleted  AuditAction = "day_completed"
	AuditArchived      AuditAction = "archived"
)

// AuditEntry is one immutable record in a project's audit trail. Entries are
// only ever appended, never edited or removed.
type AuditEntry struct {
	Action          AuditAction `json:"action" bson:"action"`
	PerformedBy     string      `json:"performedBy" bson:"performedBy"`
	PerformedByName string      `json:"performedByName,omitempty" bson:"performedByName,omitempty"`
	Timestamp       time.Time   `json:"timestamp" bson:"timestamp"`
	Details         string      `json:"details,omitempty" bson:"details,omitempty"`
	UsedFallback    bool        `json:"usedFallback,omitempty" bson:"usedFallback,omitempty"`
	AIPrompt        string      `json:"aiPrompt,omitempty" bson:"aiPrompt,omitempty"`
	AIResponse      string      `json:"aiResponse,omitempty" bson:"aiResponse,omitempty"`
}
