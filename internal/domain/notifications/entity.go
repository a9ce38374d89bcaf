package notifications

import "time"

// Type of notification event
type Type string

const (
	TypeAnalysisComplete  Type = "analysis_complete"
	TypeFindingCritical   Type = "finding_critical"
	TypeFindingOverdue    Type = "finding_overdue"
	TypeLegislationChange Type = "legislation_change"
	TypeInfo              Type = "info"
)

// Notification is one user-facing event row.
type Notification struct {
	ID        int64     `json:"id,omitempty"`
	TenantID  string    `json:"tenant_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
