// Package guardrail validates AI analysis output before anyone sees it.
//
// A compliance product cannot show hallucinated scores or invalid risk
// levels, so raw model text is parsed and repaired here and only the
// typed, normalized record travels further. Fixable structural defects
// (bad types, unknown enum values) get deterministic fallbacks and are
// logged as fixes; unparsable JSON is fatal for the call and left to the
// orchestrator to handle.
package guardrail

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/cheema22g77/kwooka-compliance/internal/domain/analysis"
)

var validStatuses = map[string]bool{
	"COMPLIANT": true, "PARTIAL": true, "NON_COMPLIANT": true, "CRITICAL": true,
}

var validRiskLevels = map[string]bool{
	"LOW": true, "MEDIUM": true, "HIGH": true, "CRITICAL": true,
}

var validSeverities = map[string]bool{
	"CRITICAL": true, "HIGH": true, "MEDIUM": true, "LOW": true, "INFO": true,
}

var validFindingStatuses = map[string]bool{
	"COMPLIANT": true, "GAP": true, "PARTIAL": true, "NOT_ADDRESSED": true,
}

// codeBlockRe matches a fenced code block with an optional json tag.
var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// Result of validating one model response.
type Result struct {
	Valid    bool
	Data     *analysis.Analysis
	Warnings []string
	Fixes    []string
}

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Validator repairs and validates raw model output.
type Validator struct {
	clock Clock
}

// New returns a Validator using the system clock.
func New() *Validator { return &Validator{clock: systemClock{}} }

// NewWithClock returns a Validator with an injected clock.
func NewWithClock(c Clock) *Validator { return &Validator{clock: c} }

// Validate parses rawText, fixes what can be fixed, warns about issues and
// rejects garbage. The sector always comes from the caller; a sector value
// embedded in model output is never trusted.
func (v *Validator) Validate(rawText, sector string) Result {
	warnings := []string{}
	fixes := []string{}

	// 1. Extract JSON from a code fence if the model wrapped it anyway.
	jsonText := rawText
	if m := codeBlockRe.FindStringSubmatch(rawText); m != nil {
		jsonText = m[1]
		fixes = append(fixes, "Extracted JSON from code block")
	}

	// 2. Parse. A parse failure is fatal: no partial recovery here.
	var raw map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(jsonText)), &raw); err != nil {
		return Result{
			Valid:    false,
			Data:     nil,
			Warnings: []string{"AI response was not valid JSON"},
			Fixes:    []string{},
		}
	}

	out := &analysis.Analysis{}

	// 3. overallScore: default 50 when non-numeric, clamp into [0,100].
	score, isNum := raw["overallScore"].(float64)
	switch {
	case !isNum:
		score = 50
		fixes = append(fixes, "overallScore was not a number, defaulted to 50")
	case score < 0:
		score = 0
		fixes = append(fixes, "overallScore was negative, clamped to 0")
	case score > 100:
		score = 100
		fixes = append(fixes, "overallScore exceeded 100, clamped to 100")
	}
	out.OverallScore = int(math.Round(score))

	// 4. overallStatus: derive from score thresholds when invalid.
	if s, _ := raw["overallStatus"].(string); validStatuses[s] {
		out.OverallStatus = analysis.Status(s)
	} else {
		out.OverallStatus = statusFromScore(out.OverallScore)
		fixes = append(fixes, fmt.Sprintf("overallStatus was invalid, derived from score: %s", out.OverallStatus))
	}

	// 5. riskLevel: same pattern.
	if s, _ := raw["riskLevel"].(string); validRiskLevels[s] {
		out.RiskLevel = analysis.RiskLevel(s)
	} else {
		out.RiskLevel = riskFromScore(out.OverallScore)
		fixes = append(fixes, fmt.Sprintf("riskLevel was invalid, derived from score: %s", out.RiskLevel))
	}

	// 6. summary
	if s, ok := raw["summary"].(string); !ok || s == "" {
		out.Summary = "Analysis completed."
		fixes = append(fixes, "summary was missing, added placeholder")
	} else {
		out.Summary = s
		if len(s) < 10 {
			warnings = append(warnings, "summary is very short")
		}
	}

	// 7. findings
	if rawFindings, ok := raw["findings"].([]any); ok {
		out.Findings = make([]analysis.Finding, 0, len(rawFindings))
		for i, el := range rawFindings {
			m, _ := el.(map[string]any)
			out.Findings = append(out.Findings, repairFinding(m, i, &fixes, &warnings))
		}
	} else {
		out.Findings = []analysis.Finding{}
		fixes = append(fixes, "findings was not an array, defaulted to empty")
	}

	// 8. Score-findings consistency; advisory only, data is never altered.
	criticalCount, highCount := 0, 0
	for _, f := range out.Findings {
		switch f.Severity {
		case analysis.SeverityCritical:
			criticalCount++
		case analysis.SeverityHigh:
			highCount++
		}
	}
	if criticalCount > 0 && out.OverallScore > 60 {
		warnings = append(warnings, fmt.Sprintf(
			"Score is %d but there are %d critical findings — score may be too high",
			out.OverallScore, criticalCount))
	}
	if criticalCount == 0 && highCount == 0 && out.OverallScore < 40 {
		warnings = append(warnings, fmt.Sprintf(
			"Score is %d but no critical/high findings — score may be too low",
			out.OverallScore))
	}

	// 9. Optional arrays default to empty; routine normalization, not a fix.
	out.Strengths = rawArray(raw["strengths"])
	out.CriticalGaps = rawArray(raw["criticalGaps"])
	out.ActionPlan = rawArray(raw["actionPlan"])
	out.ComplianceByArea = rawArray(raw["complianceByArea"])
	out.RegulatoryReferences = rawArray(raw["regulatoryReferences"])
	out.NextAuditFocus = rawArray(raw["nextAuditFocus"])

	// 10. Stamp metadata.
	out.AnalyzedAt = v.clock.Now().UTC()
	out.Sector = sector
	out.Validation = analysis.ValidationMeta{
		WarningCount: len(warnings),
		FixCount:     len(fixes),
		Validated:    true,
	}

	return Result{Valid: true, Data: out, Warnings: warnings, Fixes: fixes}
}

// repairFinding normalizes one findings element. A non-object element is
// treated as having every field missing.
func repairFinding(m map[string]any, i int, fixes, warnings *[]string) analysis.Finding {
	f := analysis.Finding{}

	title, _ := m["title"].(string)
	if title == "" {
		title = fmt.Sprintf("Finding %d", i+1)
		*fixes = append(*fixes, fmt.Sprintf("Finding %d: missing title", i+1))
	}
	f.Title = title

	if sev, _ := m["severity"].(string); validSeverities[sev] {
		f.Severity = analysis.Severity(sev)
	} else {
		f.Severity = analysis.SeverityMedium
		*fixes = append(*fixes, fmt.Sprintf("Finding %q: invalid severity, defaulted to MEDIUM", f.Title))
	}

	// Invalid status is corrected without a fix entry, unlike severity.
	if st, _ := m["status"].(string); validFindingStatuses[st] {
		f.Status = analysis.FindingStatus(st)
	} else {
		f.Status = analysis.FindingGap
	}

	f.Recommendation, _ = m["recommendation"].(string)
	if len(f.Recommendation) < 5 {
		*warnings = append(*warnings, fmt.Sprintf("Finding %q: recommendation is too short or missing", f.Title))
	}

	// Only missing ids are assigned; supplied ids are trusted as-is and
	// may collide with assigned ones.
	if id, ok := m["id"].(float64); ok && id != 0 {
		f.ID = int(id)
	} else {
		f.ID = i + 1
	}

	f.Area, _ = m["area"].(string)
	f.Description, _ = m["description"].(string)
	f.Evidence, _ = m["evidence"].(string)
	f.Regulation, _ = m["regulation"].(string)
	if p, ok := m["priority"].(float64); ok {
		f.Priority = int(p)
	}

	return f
}

// statusFromScore derives an overall status at the 25/50/80 boundaries.
func statusFromScore(score int) analysis.Status {
	switch {
	case score >= 80:
		return analysis.StatusCompliant
	case score >= 50:
		return analysis.StatusPartial
	case score >= 25:
		return analysis.StatusNonCompliant
	default:
		return analysis.StatusCritical
	}
}

// riskFromScore derives a risk level at the same boundaries.
func riskFromScore(score int) analysis.RiskLevel {
	switch {
	case score >= 80:
		return analysis.RiskLow
	case score >= 50:
		return analysis.RiskMedium
	case score >= 25:
		return analysis.RiskHigh
	default:
		return analysis.RiskCritical
	}
}

// rawArray keeps an ordered pass-through copy of a model-supplied array,
// or an empty slice when the value is not an array.
func rawArray(v any) []json.RawMessage {
	arr, ok := v.([]any)
	if !ok {
		return []json.RawMessage{}
	}
	out := make([]json.RawMessage, 0, len(arr))
	for _, el := range arr {
		b, err := json.Marshal(el)
		if err != nil {
			continue
		}
		out = append(out, json.RawMessage(b))
	}
	return out
}
