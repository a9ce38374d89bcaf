package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domai "github.com/cheema22g77/kwooka-compliance/internal/domain/ai"
	domain "github.com/cheema22g77/kwooka-compliance/internal/domain/analysis"
	domfindings "github.com/cheema22g77/kwooka-compliance/internal/domain/findings"
	domnotif "github.com/cheema22g77/kwooka-compliance/internal/domain/notifications"
	"github.com/cheema22g77/kwooka-compliance/internal/domain/search"
	"github.com/cheema22g77/kwooka-compliance/internal/guardrail"
	"github.com/cheema22g77/kwooka-compliance/internal/infra/ai/prompt"
	"github.com/cheema22g77/kwooka-compliance/internal/sectors"
)

const (
	analyzeMaxTokens   = 4096
	analyzeTemperature = 0.3

	searchTopK        = 5
	maxSearchAreas    = 3
	maxContextPassages = 15
)

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Service implements the analysis use-cases. Each Analyze call is one
// independent, stateless unit of work; the service is safe for concurrent use.
type Service struct {
	AI        domai.Client
	Validator *guardrail.Validator
	Repo      domain.Repository
	Findings  domfindings.Repository
	Notifs    domnotif.Repository
	Search    search.Searcher // optional; nil disables legislation context
	Archive   domain.Archive  // optional; nil disables report archiving
	Clock     Clock
	Logger    *slog.Logger
}

// AnalyzeCommand is the per-request input. Discarded after orchestration.
type AnalyzeCommand struct {
	TenantID     string
	DocumentText string
	Sector       string
	DocumentType string
	DocumentName string
}

// AnalyzeResult is the validated analysis plus persistence outcomes.
type AnalyzeResult struct {
	*domain.Analysis
	ID              string `json:"id,omitempty"`
	FindingsCreated int    `json:"findingsCreated"`
	ArtifactURL     string `json:"artifactUrl,omitempty"`
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Analyze runs the full pipeline: sector resolution → legislation context →
// prompt → completion → guardrail → persistence fan-out.
//
// Failure semantics: unknown sector / empty document and guardrail rejection
// fail the request; a completion failure surfaces as an upstream error;
// storage and notification failures are logged and swallowed — the analysis
// is returned to the caller even when not durably saved.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (*AnalyzeResult, error) {
	log := s.logger().With("tenant", cmd.TenantID, "sector", cmd.Sector)

	if cmd.DocumentText == "" {
		return nil, domain.ErrDocumentRequired
	}
	cfg, ok := sectors.Get(cmd.Sector)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSector, cmd.Sector)
	}

	legislationContext := s.gatherContext(ctx, cmd.Sector, cfg, log)

	userPrompt := prompt.AnalysisUserPrompt(cmd.DocumentText, cfg, cmd.DocumentType, legislationContext)
	completion, err := s.AI.Complete(ctx, domai.Request{
		System:      prompt.AnalysisSystemPrompt(),
		Messages:    []domai.Message{{Role: "user", Content: userPrompt}},
		MaxTokens:   analyzeMaxTokens,
		Temperature: analyzeTemperature,
		JSONOutput:  true,
	})
	if err != nil {
		log.Error("completion failed", "err", err)
		if errors.Is(err, domai.ErrQuotaExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamGeneration, err)
	}

	validation := s.Validator.Validate(completion.Text, cmd.Sector)
	if !validation.Valid {
		log.Error("analysis validation failed", "warnings", validation.Warnings)
		return nil, domain.ErrInvalidAIOutput
	}
	if len(validation.Warnings) > 0 {
		log.Warn("analysis validation warnings", "warnings", validation.Warnings)
	}
	if len(validation.Fixes) > 0 {
		log.Info("analysis output repaired", "fixes", validation.Fixes)
	}

	result := validation.Data
	result.SectorName = cfg.Name
	result.DocumentType = documentTypeOrDefault(cmd.DocumentType)
	result.RegulatoryAuthority = cfg.Authority

	// Persist; failure is logged, never fatal. The user still gets the
	// analysis even when history could not be written.
	id := fmt.Sprintf("%s-%s", uuid.New().String(), cmd.Sector)
	persistedID := ""
	if err := s.Repo.Save(ctx, s.buildRecord(id, cmd, result)); err != nil {
		log.Error("failed to save analysis", "err", err)
	} else {
		persistedID = id
	}

	items := ProjectFindings(result.Findings, cmd.Sector, cmd.DocumentName)
	for _, it := range items {
		it.TenantID = cmd.TenantID
		it.AnalysisID = persistedID
	}
	created := 0
	if len(items) > 0 {
		created, err = s.Findings.SaveBatch(ctx, items)
		if err != nil {
			log.Error("failed to save findings", "err", err)
		}
	}

	artifactURL := s.archiveReport(ctx, cmd.TenantID, id, result, log)

	s.notifyComplete(cmd, cfg, result, created, log)

	return &AnalyzeResult{
		Analysis:        result,
		ID:              persistedID,
		FindingsCreated: created,
		ArtifactURL:     artifactURL,
	}, nil
}

// gatherContext retrieves supporting legislation best-effort. Any failure is
// logged and treated as empty context.
func (s *Service) gatherContext(ctx context.Context, sector string, cfg sectors.Config, log *slog.Logger) string {
	if s.Search == nil {
		return ""
	}

	queries := []string{sector + " compliance requirements"}
	areas := cfg.KeyAreas
	if len(areas) > maxSearchAreas {
		areas = areas[:maxSearchAreas]
	}
	queries = append(queries, areas...)

	seen := map[string]bool{}
	var unique []search.Passage
	for _, q := range queries {
		results, err := s.Search.Search(ctx, q, search.Options{TopK: searchTopK, Sector: sector})
		if err != nil {
			log.Warn("legislation search failed", "query", q, "err", err)
			continue
		}
		for _, p := range results {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			unique = append(unique, p)
		}
	}
	if len(unique) > maxContextPassages {
		unique = unique[:maxContextPassages]
	}
	return prompt.LegislationContext(unique)
}

func (s *Service) buildRecord(id string, cmd AnalyzeCommand, a *domain.Analysis) *domain.Record {
	raw, err := json.Marshal(a)
	if err != nil {
		raw = []byte("{}")
	}
	return &domain.Record{
		ID:            domain.AnalysisID(id),
		TenantID:      cmd.TenantID,
		Sector:        cmd.Sector,
		DocumentType:  documentTypeOrDefault(cmd.DocumentType),
		DocumentName:  documentNameOrDefault(cmd.DocumentName),
		OverallScore:  a.OverallScore,
		OverallStatus: string(a.OverallStatus),
		RiskLevel:     string(a.RiskLevel),
		Summary:       a.Summary,
		ResultJSON:    string(raw),
		CreatedAt:     s.Clock.Now(),
	}
}

// archiveReport uploads the validated JSON best-effort.
func (s *Service) archiveReport(ctx context.Context, tenant, id string, a *domain.Analysis, log *slog.Logger) string {
	if s.Archive == nil {
		return ""
	}
	body, err := json.Marshal(a)
	if err != nil {
		return ""
	}
	key := fmt.Sprintf("%s/analyses/%s.json", tenant, id)
	url, err := s.Archive.UploadJSON(ctx, key, body)
	if err != nil {
		log.Warn("failed to archive analysis report", "err", err)
		return ""
	}
	return url
}

// notifyComplete writes the completion notification in the background.
// Never awaited for correctness; errors are captured and discarded.
func (s *Service) notifyComplete(cmd AnalyzeCommand, cfg sectors.Config, a *domain.Analysis, created int, log *slog.Logger) {
	if s.Notifs == nil {
		return
	}
	n := buildCompletionNotification(cmd.TenantID, a.OverallScore, cfg.Name, documentNameOrDefault(cmd.DocumentName), created, a.CriticalFindingCount())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Notifs.Save(ctx, n); err != nil {
			log.Warn("failed to create notification", "err", err)
		}
	}()
}

func buildCompletionNotification(tenant string, score int, sectorName, documentName string, findingsCount, criticalCount int) *domnotif.Notification {
	msg := fmt.Sprintf("Your %s document %q scored %d%%.", sectorName, documentName, score)
	if criticalCount > 0 {
		msg += fmt.Sprintf(" %d critical finding%s need attention.", criticalCount, plural(criticalCount))
	} else if findingsCount > 0 {
		msg += fmt.Sprintf(" %d finding%s created.", findingsCount, plural(findingsCount))
	}
	return &domnotif.Notification{
		TenantID: tenant,
		Title:    fmt.Sprintf("Analysis Complete — %d%%", score),
		Message:  msg,
		Type:     domnotif.TypeAnalysisComplete,
		Link:     "/dashboard/findings",
	}
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}

func documentTypeOrDefault(t string) string {
	if t == "" {
		return "Policy Document"
	}
	return t
}

func documentNameOrDefault(n string) string {
	if n == "" {
		return "Untitled"
	}
	return n
}

// Get returns one persisted analysis.
func (s *Service) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Record, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// List returns a page of persisted analyses, optionally filtered by sector.
func (s *Service) List(ctx context.Context, tenant, sector string, page, pageSize int) ([]*domain.Record, error) {
	return s.Repo.Paginate(ctx, tenant, sector, page, pageSize)
}

// FindingCounts returns the dashboard rollup for a tenant.
func (s *Service) FindingCounts(ctx context.Context, tenant string) (domfindings.Counts, error) {
	return s.Findings.Counts(ctx, tenant)
}
