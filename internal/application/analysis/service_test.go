package analysis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	domai "github.com/cheema22g77/kwooka-compliance/internal/domain/ai"
	domain "github.com/cheema22g77/kwooka-compliance/internal/domain/analysis"
	domfindings "github.com/cheema22g77/kwooka-compliance/internal/domain/findings"
	domnotif "github.com/cheema22g77/kwooka-compliance/internal/domain/notifications"
	"github.com/cheema22g77/kwooka-compliance/internal/domain/search"
	"github.com/cheema22g77/kwooka-compliance/internal/guardrail"
)

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

type fakeAI struct {
	text    string
	err     error
	lastReq domai.Request
}

func (f *fakeAI) Complete(_ context.Context, req domai.Request) (domai.Result, error) {
	f.lastReq = req
	if f.err != nil {
		return domai.Result{}, f.err
	}
	return domai.Result{Text: f.text, Model: "test-model"}, nil
}

func (f *fakeAI) Stream(_ context.Context, _ domai.Request, _ domai.StreamFunc) (domai.Result, error) {
	return domai.Result{}, errors.New("not used")
}

type fakeRepo struct {
	saved   []*domain.Record
	saveErr error
}

func (f *fakeRepo) Save(_ context.Context, r *domain.Record) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, r)
	return nil
}

func (f *fakeRepo) Get(_ context.Context, _ string, _ domain.AnalysisID) (*domain.Record, error) {
	return nil, nil
}

func (f *fakeRepo) Paginate(_ context.Context, _, _ string, _, _ int) ([]*domain.Record, error) {
	return nil, nil
}

type fakeFindings struct {
	saved   []*domfindings.Item
	saveErr error
}

func (f *fakeFindings) SaveBatch(_ context.Context, items []*domfindings.Item) (int, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.saved = append(f.saved, items...)
	return len(items), nil
}

func (f *fakeFindings) Counts(_ context.Context, _ string) (domfindings.Counts, error) {
	return domfindings.Counts{}, nil
}

type fakeNotifs struct {
	saved chan *domnotif.Notification
}

func newFakeNotifs() *fakeNotifs {
	return &fakeNotifs{saved: make(chan *domnotif.Notification, 4)}
}

func (f *fakeNotifs) Save(_ context.Context, n *domnotif.Notification) error {
	f.saved <- n
	return nil
}

func (f *fakeNotifs) Recent(_ context.Context, _ string, _ int) ([]*domnotif.Notification, error) {
	return nil, nil
}

func (f *fakeNotifs) UnreadCount(_ context.Context, _ string) (int, error) { return 0, nil }

func (f *fakeNotifs) MarkAllRead(_ context.Context, _ string) error { return nil }

type fakeSearcher struct {
	passages []search.Passage
	err      error
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ search.Options) ([]search.Passage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}

const goodCompletion = `{
	"overallScore": 72,
	"overallStatus": "PARTIAL",
	"riskLevel": "MEDIUM",
	"summary": "Reasonable coverage with a few gaps in incident management.",
	"findings": [
		{"id": 1, "area": "Incident Management", "title": "No escalation matrix",
		 "severity": "HIGH", "status": "GAP",
		 "description": "The policy has no escalation path.",
		 "recommendation": "Add an escalation matrix with named roles."},
		{"id": 2, "area": "Governance", "title": "Board oversight documented",
		 "severity": "LOW", "status": "COMPLIANT",
		 "recommendation": "Keep the current review cadence."}
	]
}`

func newTestService(ai *fakeAI, repo *fakeRepo, findings *fakeFindings, notifs *fakeNotifs, searcher search.Searcher) *Service {
	return &Service{
		AI:        ai,
		Validator: guardrail.NewWithClock(fakeClock{t: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}),
		Repo:      repo,
		Findings:  findings,
		Notifs:    notifs,
		Search:    searcher,
		Clock:     fakeClock{t: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)},
		Logger:    slog.New(slog.DiscardHandler),
	}
}

func TestAnalyzeRejectsEmptyDocument(t *testing.T) {
	svc := newTestService(&fakeAI{}, &fakeRepo{}, &fakeFindings{}, newFakeNotifs(), nil)
	_, err := svc.Analyze(context.Background(), AnalyzeCommand{TenantID: "t1", Sector: "ndis"})
	if !errors.Is(err, domain.ErrDocumentRequired) {
		t.Fatalf("err = %v, want ErrDocumentRequired", err)
	}
}

func TestAnalyzeRejectsUnknownSector(t *testing.T) {
	svc := newTestService(&fakeAI{}, &fakeRepo{}, &fakeFindings{}, newFakeNotifs(), nil)
	_, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", DocumentText: "some policy", Sector: "mining",
	})
	if !errors.Is(err, domain.ErrUnknownSector) {
		t.Fatalf("err = %v, want ErrUnknownSector", err)
	}
}

func TestAnalyzeUpstreamFailure(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(&fakeAI{err: errors.New("connection reset")}, repo, &fakeFindings{}, newFakeNotifs(), nil)

	_, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", DocumentText: "some policy", Sector: "ndis",
	})
	if !errors.Is(err, domain.ErrUpstreamGeneration) {
		t.Fatalf("err = %v, want ErrUpstreamGeneration", err)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("nothing should be persisted on upstream failure")
	}
}

func TestAnalyzeInvalidAIOutput(t *testing.T) {
	repo := &fakeRepo{}
	findings := &fakeFindings{}
	svc := newTestService(&fakeAI{text: "sorry, I cannot help with that"}, repo, findings, newFakeNotifs(), nil)

	_, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", DocumentText: "some policy", Sector: "ndis",
	})
	if !errors.Is(err, domain.ErrInvalidAIOutput) {
		t.Fatalf("err = %v, want ErrInvalidAIOutput", err)
	}
	if len(repo.saved) != 0 || len(findings.saved) != 0 {
		t.Fatalf("nothing should be persisted on guardrail rejection")
	}
}

func TestAnalyzeSuccessPath(t *testing.T) {
	ai := &fakeAI{text: goodCompletion}
	repo := &fakeRepo{}
	findings := &fakeFindings{}
	notifs := newFakeNotifs()
	svc := newTestService(ai, repo, findings, notifs, nil)

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID:     "t1",
		DocumentText: "incident management policy text",
		Sector:       "ndis",
		DocumentName: "incident-policy.pdf",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if res.OverallScore != 72 || res.OverallStatus != domain.StatusPartial {
		t.Fatalf("result = score %d status %s", res.OverallScore, res.OverallStatus)
	}
	if res.Sector != "ndis" || res.SectorName != "NDIS" {
		t.Fatalf("sector stamping: %q / %q", res.Sector, res.SectorName)
	}
	if res.RegulatoryAuthority != "NDIS Quality and Safeguards Commission" {
		t.Fatalf("authority = %q", res.RegulatoryAuthority)
	}
	if res.DocumentType != "Policy Document" {
		t.Fatalf("documentType = %q, want default", res.DocumentType)
	}

	if len(repo.saved) != 1 {
		t.Fatalf("saved records = %d", len(repo.saved))
	}
	rec := repo.saved[0]
	if rec.TenantID != "t1" || rec.Sector != "ndis" || rec.OverallScore != 72 {
		t.Fatalf("record = %+v", rec)
	}
	if !strings.HasSuffix(string(rec.ID), "-ndis") {
		t.Fatalf("record id %q should end with sector suffix", rec.ID)
	}
	if res.ID != string(rec.ID) {
		t.Fatalf("result id %q != record id %q", res.ID, rec.ID)
	}

	// COMPLIANT finding dropped, GAP finding tracked
	if res.FindingsCreated != 1 || len(findings.saved) != 1 {
		t.Fatalf("findingsCreated = %d, saved = %d", res.FindingsCreated, len(findings.saved))
	}
	item := findings.saved[0]
	if item.Title != "No escalation matrix" || item.Severity != domfindings.SeverityHigh {
		t.Fatalf("item = %+v", item)
	}
	if item.TenantID != "t1" || item.AnalysisID != res.ID {
		t.Fatalf("item linkage = %q / %q", item.TenantID, item.AnalysisID)
	}

	// completion request shape
	if !ai.lastReq.JSONOutput {
		t.Fatalf("analyze must request JSON output")
	}
	if ai.lastReq.MaxTokens != 4096 || ai.lastReq.Temperature != 0.3 {
		t.Fatalf("req = maxTokens %d temp %v", ai.lastReq.MaxTokens, ai.lastReq.Temperature)
	}

	// notification arrives asynchronously
	select {
	case n := <-notifs.saved:
		if n.TenantID != "t1" || n.Type != domnotif.TypeAnalysisComplete {
			t.Fatalf("notification = %+v", n)
		}
		if !strings.Contains(n.Message, "incident-policy.pdf") || !strings.Contains(n.Message, "72%") {
			t.Fatalf("notification message = %q", n.Message)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("completion notification never arrived")
	}
}

func TestAnalyzeSaveFailureStillReturnsAnalysis(t *testing.T) {
	repo := &fakeRepo{saveErr: errors.New("db down")}
	findings := &fakeFindings{}
	svc := newTestService(&fakeAI{text: goodCompletion}, repo, findings, newFakeNotifs(), nil)

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", DocumentText: "policy text", Sector: "ndis",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.ID != "" {
		t.Fatalf("id = %q, want empty when save fails", res.ID)
	}
	if res.OverallScore != 72 {
		t.Fatalf("analysis should still come back, score = %d", res.OverallScore)
	}
	// items still tracked, just without a persisted parent
	if len(findings.saved) != 1 || findings.saved[0].AnalysisID != "" {
		t.Fatalf("findings = %+v", findings.saved)
	}
}

func TestAnalyzeFindingsSaveFailureIsSwallowed(t *testing.T) {
	svc := newTestService(&fakeAI{text: goodCompletion}, &fakeRepo{}, &fakeFindings{saveErr: errors.New("db down")}, newFakeNotifs(), nil)

	res, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", DocumentText: "policy text", Sector: "ndis",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.FindingsCreated != 0 {
		t.Fatalf("findingsCreated = %d, want 0", res.FindingsCreated)
	}
}

func TestAnalyzeSearchFailureIsBestEffort(t *testing.T) {
	ai := &fakeAI{text: goodCompletion}
	svc := newTestService(ai, &fakeRepo{}, &fakeFindings{}, newFakeNotifs(), &fakeSearcher{err: errors.New("index offline")})

	_, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", DocumentText: "policy text", Sector: "ndis",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	prompt := ai.lastReq.Messages[0].Content
	if strings.Contains(prompt, "RELEVANT LEGISLATION") {
		t.Fatalf("failed search should leave no legislation block in prompt")
	}
}

func TestAnalyzeIncludesLegislationContext(t *testing.T) {
	ai := &fakeAI{text: goodCompletion}
	searcher := &fakeSearcher{passages: []search.Passage{
		{ID: "p1", Title: "NDIS Act 2013", SectionNumber: "73V", Content: "Worker screening requirements..."},
	}}
	svc := newTestService(ai, &fakeRepo{}, &fakeFindings{}, newFakeNotifs(), searcher)

	_, err := svc.Analyze(context.Background(), AnalyzeCommand{
		TenantID: "t1", DocumentText: "policy text", Sector: "ndis",
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	prompt := ai.lastReq.Messages[0].Content
	if !strings.Contains(prompt, "RELEVANT LEGISLATION FROM DATABASE") {
		t.Fatalf("prompt missing legislation block")
	}
	if !strings.Contains(prompt, "NDIS Act 2013") {
		t.Fatalf("prompt missing passage title")
	}
}

func TestBuildCompletionNotificationMessages(t *testing.T) {
	n := buildCompletionNotification("t1", 88, "NDIS", "policy.pdf", 0, 0)
	if n.Message != `Your NDIS document "policy.pdf" scored 88%.` {
		t.Fatalf("message = %q", n.Message)
	}
	if n.Title != "Analysis Complete — 88%" {
		t.Fatalf("title = %q", n.Title)
	}

	n = buildCompletionNotification("t1", 40, "Transport", "fleet.docx", 5, 2)
	if !strings.Contains(n.Message, "2 critical findings need attention.") {
		t.Fatalf("message = %q", n.Message)
	}

	n = buildCompletionNotification("t1", 70, "Transport", "fleet.docx", 1, 0)
	if !strings.Contains(n.Message, "1 finding created.") {
		t.Fatalf("message = %q", n.Message)
	}
}
