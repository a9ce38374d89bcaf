package prompt

import (
	"fmt"
	"strings"

	"github.com/cheema22g77/kwooka-compliance/internal/domain/search"
	"github.com/cheema22g77/kwooka-compliance/internal/sectors"
)

// maxDocumentChars caps how much document text goes into a prompt.
// Text beyond the cap is silently dropped.
const maxDocumentChars = 20000

// AnalysisSystemPrompt provides the strict instruction for analysis calls.
func AnalysisSystemPrompt() string {
	return "You are an expert Australian compliance auditor. Respond only in valid JSON."
}

// AnalysisUserPrompt builds the analysis instruction from document text,
// sector metadata and any retrieved legislation context. Deterministic
// string assembly; same inputs, same prompt.
func AnalysisUserPrompt(documentText string, cfg sectors.Config, documentType, legislationContext string) string {
	if documentType == "" {
		documentType = "policy"
	}
	if len(documentText) > maxDocumentChars {
		documentText = documentText[:maxDocumentChars]
	}

	var areas strings.Builder
	for i, area := range cfg.KeyAreas {
		fmt.Fprintf(&areas, "%d. %s\n", i+1, area)
	}

	return fmt.Sprintf(`You are an expert Australian compliance auditor specializing in %s.

Analyze this %s document for compliance with %s, regulated by %s.

KEY COMPLIANCE AREAS TO CHECK:
%s%s

DOCUMENT TEXT:
"""
%s
"""

Analyze thoroughly against the legislation provided and respond in this exact JSON format (no markdown, no code blocks):
{
  "sector": "%s",
  "sectorName": "%s",
  "documentType": "%s",
  "overallScore": <number 0-100>,
  "overallStatus": "<COMPLIANT|PARTIAL|NON_COMPLIANT|CRITICAL>",
  "riskLevel": "<LOW|MEDIUM|HIGH|CRITICAL>",
  "summary": "<2-3 sentence executive summary>",
  "findings": [
    {
      "id": <number>,
      "area": "<compliance area from list above>",
      "title": "<specific finding title>",
      "severity": "<CRITICAL|HIGH|MEDIUM|LOW|INFO>",
      "status": "<COMPLIANT|GAP|PARTIAL|NOT_ADDRESSED>",
      "description": "<detailed explanation>",
      "evidence": "<quote from document if found, or null>",
      "regulation": "<specific regulation/standard reference>",
      "recommendation": "<specific action to remediate>",
      "priority": <number 1-10>
    }
  ],
  "strengths": [{"area": "<area>", "description": "<what's done well>"}],
  "criticalGaps": ["<list of most urgent gaps>"],
  "actionPlan": [{"priority": <1-5>, "action": "<specific action>", "timeframe": "<immediate|7 days|30 days|90 days>", "responsibility": "<who should action this>"}],
  "complianceByArea": [{"area": "<compliance area>", "score": <0-100>, "status": "<COMPLIANT|PARTIAL|GAP>"}],
  "regulatoryReferences": [{"reference": "<specific section/clause>", "description": "<what it requires>"}],
  "nextAuditFocus": ["<areas to focus on in next review>"]
}`,
		cfg.FullName,
		documentType,
		cfg.FullName,
		cfg.Authority,
		areas.String(),
		legislationContext,
		documentText,
		cfg.ID,
		cfg.Name,
		documentType,
	)
}

// LegislationContext formats retrieved passages into the prompt block.
// Returns an empty string when there are no passages.
func LegislationContext(passages []search.Passage) string {
	if len(passages) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(passages))
	for i, p := range passages {
		head := fmt.Sprintf("[%d] %s", i+1, p.Title)
		if p.SectionNumber != "" {
			head += fmt.Sprintf(" - Section %s", p.SectionNumber)
		}
		if p.SectionTitle != "" {
			head += fmt.Sprintf(" (%s)", p.SectionTitle)
		}
		blocks = append(blocks, head+"\n"+p.Content)
	}
	return "\n\nRELEVANT LEGISLATION FROM DATABASE:\n" + strings.Join(blocks, "\n\n---\n\n")
}
