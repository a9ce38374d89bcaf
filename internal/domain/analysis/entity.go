package analysis

import (
	"encoding/json"
	"time"
)

// AnalysisID identifier type
type AnalysisID string

// Status enum for the document as a whole
type Status string

const (
	StatusCompliant    Status = "COMPLIANT"
	StatusPartial      Status = "PARTIAL"
	StatusNonCompliant Status = "NON_COMPLIANT"
	StatusCritical     Status = "CRITICAL"
)

// RiskLevel enum
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// Severity enum for individual findings
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// FindingStatus enum
type FindingStatus string

const (
	FindingCompliant    FindingStatus = "COMPLIANT"
	FindingGap          FindingStatus = "GAP"
	FindingPartial      FindingStatus = "PARTIAL"
	FindingNotAddressed FindingStatus = "NOT_ADDRESSED"
)

// Finding is one compliance observation in a validated analysis.
type Finding struct {
	ID             int           `json:"id"`
	Area           string        `json:"area,omitempty"`
	Title          string        `json:"title"`
	Severity       Severity      `json:"severity"`
	Status         FindingStatus `json:"status"`
	Description    string        `json:"description,omitempty"`
	Evidence       string        `json:"evidence,omitempty"`
	Regulation     string        `json:"regulation,omitempty"`
	Recommendation string        `json:"recommendation,omitempty"`
	Priority       int           `json:"priority,omitempty"`
}

// ValidationMeta records repair provenance for a validated analysis.
type ValidationMeta struct {
	WarningCount int  `json:"warningCount"`
	FixCount     int  `json:"fixCount"`
	Validated    bool `json:"validated"`
}

// Analysis is the canonical, repaired analysis record. It only ever exists
// after the guardrail has accepted and normalized model output; the raw
// model object never travels past that boundary.
//
// The pass-through sections (strengths, action plan, ...) keep their model
// shape as ordered raw JSON; the guardrail guarantees array-ness only.
type Analysis struct {
	Sector               string            `json:"sector"`
	SectorName           string            `json:"sectorName,omitempty"`
	DocumentType         string            `json:"documentType,omitempty"`
	OverallScore         int               `json:"overallScore"`
	OverallStatus        Status            `json:"overallStatus"`
	RiskLevel            RiskLevel         `json:"riskLevel"`
	Summary              string            `json:"summary"`
	Findings             []Finding         `json:"findings"`
	Strengths            []json.RawMessage `json:"strengths"`
	CriticalGaps         []json.RawMessage `json:"criticalGaps"`
	ActionPlan           []json.RawMessage `json:"actionPlan"`
	ComplianceByArea     []json.RawMessage `json:"complianceByArea"`
	RegulatoryReferences []json.RawMessage `json:"regulatoryReferences"`
	NextAuditFocus       []json.RawMessage `json:"nextAuditFocus"`
	RegulatoryAuthority  string            `json:"regulatoryAuthority,omitempty"`
	AnalyzedAt           time.Time         `json:"analyzedAt"`
	Validation           ValidationMeta    `json:"validationMeta"`
}

// CriticalFindingCount counts findings at CRITICAL severity.
func (a *Analysis) CriticalFindingCount() int {
	n := 0
	for _, f := range a.Findings {
		if f.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// Record is the flattened, persisted copy of an Analysis, keyed by
// tenant and sector. Created once per successful analysis, immutable after.
type Record struct {
	ID           AnalysisID `json:"id"`
	TenantID     string     `json:"tenant_id"`
	Sector       string     `json:"sector"`
	DocumentType string     `json:"document_type"`
	DocumentName string     `json:"document_name"`
	OverallScore int        `json:"overall_score"`
	OverallStatus string    `json:"overall_status"`
	RiskLevel    string     `json:"risk_level"`
	Summary      string     `json:"summary"`
	ResultJSON   string     `json:"result_json"` // full Analysis as JSON
	CreatedAt    time.Time  `json:"created_at"`
}
