package analysis

import (
	"strings"

	domain "github.com/cheema22g77/kwooka-compliance/internal/domain/analysis"
	domfindings "github.com/cheema22g77/kwooka-compliance/internal/domain/findings"
)

// ProjectFindings maps validated analysis findings to trackable items.
// COMPLIANT findings are dropped — only gaps and issues become work.
func ProjectFindings(fs []domain.Finding, sector, documentName string) []*domfindings.Item {
	items := make([]*domfindings.Item, 0, len(fs))
	for _, f := range fs {
		if f.Status == domain.FindingCompliant {
			continue
		}
		title := f.Title
		if title == "" {
			title = "Untitled Finding"
		}
		category := f.Area
		if category == "" {
			category = sector
		}
		items = append(items, &domfindings.Item{
			Title:       title,
			Description: buildDescription(f, documentName),
			Severity:    mapSeverity(f.Severity),
			Category:    category,
			Status:      domfindings.StatusOpen,
		})
	}
	return items
}

// buildDescription assembles the composite description with regulation,
// recommendation and source sections when present.
func buildDescription(f domain.Finding, documentName string) string {
	desc := f.Description
	if f.Regulation != "" {
		desc += "\n\nRegulation: " + f.Regulation
	}
	if f.Recommendation != "" {
		desc += "\n\nRecommendation: " + f.Recommendation
	}
	if documentName != "" {
		desc += "\n\nSource: " + documentName
	}
	return strings.TrimSpace(desc)
}

// mapSeverity converts the five-level uppercase scale to the four-level
// persisted scale. INFO has no counterpart and falls to medium along with
// anything unrecognized; the mapping is deliberately lossy.
func mapSeverity(s domain.Severity) domfindings.Severity {
	switch s {
	case domain.SeverityCritical:
		return domfindings.SeverityCritical
	case domain.SeverityHigh:
		return domfindings.SeverityHigh
	case domain.SeverityMedium:
		return domfindings.SeverityMedium
	case domain.SeverityLow:
		return domfindings.SeverityLow
	default:
		return domfindings.SeverityMedium
	}
}
