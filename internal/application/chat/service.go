package chat

import (
	"context"
	"fmt"
	"log/slog"

	domai "github.com/cheema22g77/kwooka-compliance/internal/domain/ai"
	"github.com/cheema22g77/kwooka-compliance/internal/domain/search"
	"github.com/cheema22g77/kwooka-compliance/internal/infra/ai/prompt"
)

const (
	chatMaxTokens   = 4096
	chatTemperature = 0.7
	chatTopK        = 5
	chatMinScore    = 0.1
)

// Citation points at a legislation passage used for an answer.
type Citation struct {
	Source  string  `json:"source"`
	Section string  `json:"section,omitempty"`
	Score   float64 `json:"score"`
}

// Metadata is attached to the terminal stream event.
type Metadata struct {
	Sector    string     `json:"sector,omitempty"`
	Citations []Citation `json:"citations"`
	Usage     domai.Usage `json:"usage"`
}

// Event is one server-sent chat event.
type Event struct {
	Type     string    `json:"type"` // delta | done | error
	Content  string    `json:"content,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// EmitFunc delivers events to the transport in order.
type EmitFunc func(Event) error

// Command is one chat turn.
type Command struct {
	TenantID string
	Message  string
	Sector   string
	History  []domai.Message
	UseRAG   bool
}

// Service streams copilot answers grounded in sector config and retrieved
// legislation.
type Service struct {
	AI     domai.Client
	Search search.Searcher // optional
	Logger *slog.Logger
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Stream generates the answer, emitting delta events in generation order and
// exactly one "done" event carrying metadata after the underlying stream
// signals completion. A retrieval failure downgrades to an answer without
// citations; it never fails the chat.
func (s *Service) Stream(ctx context.Context, cmd Command, emit EmitFunc) error {
	if cmd.Message == "" {
		return fmt.Errorf("message is required")
	}

	ragContext, citations := s.gatherContext(ctx, cmd)

	messages := append(append([]domai.Message{}, cmd.History...), domai.Message{Role: "user", Content: cmd.Message})
	req := domai.Request{
		System:      prompt.ChatSystemPrompt(cmd.Sector) + ragContext,
		Messages:    messages,
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	}

	result, err := s.AI.Stream(ctx, req, func(delta string) error {
		return emit(Event{Type: "delta", Content: delta})
	})
	if err != nil {
		return err
	}

	return emit(Event{
		Type:    "done",
		Content: result.Text,
		Metadata: &Metadata{
			Sector:    cmd.Sector,
			Citations: citations,
			Usage:     result.Usage,
		},
	})
}

func (s *Service) gatherContext(ctx context.Context, cmd Command) (string, []Citation) {
	citations := []Citation{}
	if !cmd.UseRAG || s.Search == nil {
		return "", citations
	}
	results, err := s.Search.Search(ctx, cmd.Message, search.Options{
		TopK:     chatTopK,
		Sector:   cmd.Sector,
		MinScore: chatMinScore,
	})
	if err != nil {
		s.logger().Warn("chat legislation search failed", "err", err)
		return "", citations
	}
	if len(results) == 0 {
		return "", citations
	}
	for _, r := range results {
		section := r.SectionNumber
		if section == "" {
			section = r.SectionTitle
		}
		citations = append(citations, Citation{Source: r.Title, Section: section, Score: r.Score})
	}
	ctxBlock := prompt.LegislationContext(results)
	return ctxBlock, citations
}
