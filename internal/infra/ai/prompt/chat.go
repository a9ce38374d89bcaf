package prompt

import (
	"fmt"
	"strings"

	"github.com/cheema22g77/kwooka-compliance/internal/sectors"
)

const chatBasePrompt = `You are the Kwooka Compliance Copilot, an expert AI assistant specialising in Australian regulatory compliance. You work for Kwooka Health Services Ltd, an Aboriginal-owned enterprise (Supply Nation certified) based in Western Australia.

CORE PRINCIPLES:
1. Accuracy First: Only provide information you're confident about. If uncertain, say so.
2. Australian Focus: All advice relates to Australian (particularly WA) legislation.
3. Practical Guidance: Provide actionable, step-by-step guidance.
4. Citation: Always reference specific legislation when making compliance statements.
5. Risk-Based: Categorise issues by risk level (Critical, High, Medium, Low).

RESPONSE FORMAT:
- Use clear headings and bullet points
- Include relevant regulation references
- Provide specific deadlines where applicable
- Suggest next steps or actions`

// ChatSystemPrompt builds the copilot system prompt, focused on a sector
// when one is supplied and known.
func ChatSystemPrompt(sectorID string) string {
	cfg, ok := sectors.Get(sectorID)
	if !ok {
		return chatBasePrompt
	}
	return fmt.Sprintf(`%s

CURRENT FOCUS: %s

KEY REGULATIONS:
%s

REGULATORY AUTHORITIES:
%s

KEY COMPLIANCE AREAS:
%s`,
		chatBasePrompt,
		cfg.FullName,
		bulleted(cfg.Regulations),
		bulleted(cfg.Authorities),
		bulleted(cfg.KeyAreas),
	)
}

func bulleted(items []string) string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, "- "+it)
	}
	return strings.Join(out, "\n")
}
