package findings

import "time"

// Severity is the persisted, lowercase severity scale for trackable items.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// ItemStatus lifecycle for a trackable finding. Items are created "open";
// later transitions happen outside the analysis pipeline.
type ItemStatus string

const (
	StatusOpen       ItemStatus = "open"
	StatusInProgress ItemStatus = "in_progress"
	StatusResolved   ItemStatus = "resolved"
)

// Item is a trackable remediation action derived from a non-compliant
// analysis finding.
type Item struct {
	ID          int64      `json:"id,omitempty"`
	TenantID    string     `json:"tenant_id"`
	AnalysisID  string     `json:"analysis_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Severity    Severity   `json:"severity"`
	Category    string     `json:"category"`
	Status      ItemStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at,omitempty"`
}

// Counts is the dashboard rollup of a tenant's findings.
type Counts struct {
	Total    int `json:"total"`
	Open     int `json:"open"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Resolved int `json:"resolved"`
}
