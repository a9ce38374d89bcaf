package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	domai "github.com/cheema22g77/kwooka-compliance/internal/domain/ai"
	"github.com/cheema22g77/kwooka-compliance/internal/domain/search"
)

type fakeStreamer struct {
	deltas  []string
	err     error
	lastReq domai.Request
}

func (f *fakeStreamer) Complete(_ context.Context, _ domai.Request) (domai.Result, error) {
	return domai.Result{}, errors.New("not used")
}

func (f *fakeStreamer) Stream(_ context.Context, req domai.Request, fn domai.StreamFunc) (domai.Result, error) {
	f.lastReq = req
	if f.err != nil {
		return domai.Result{}, f.err
	}
	var full strings.Builder
	for _, d := range f.deltas {
		if err := fn(d); err != nil {
			return domai.Result{}, err
		}
		full.WriteString(d)
	}
	return domai.Result{Text: full.String(), Usage: domai.Usage{InputTokens: 10, OutputTokens: 20}}, nil
}

type fakeSearcher struct {
	passages []search.Passage
	err      error
	lastOpts search.Options
}

func (f *fakeSearcher) Search(_ context.Context, _ string, opts search.Options) ([]search.Passage, error) {
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}

func collect(t *testing.T, svc *Service, cmd Command) []Event {
	t.Helper()
	var events []Event
	err := svc.Stream(context.Background(), cmd, func(ev Event) error {
		events = append(events, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	return events
}

func TestStreamEmitsDeltasThenOneDone(t *testing.T) {
	ai := &fakeStreamer{deltas: []string{"NDIS ", "providers ", "must..."}}
	svc := &Service{AI: ai, Logger: slog.New(slog.DiscardHandler)}

	events := collect(t, svc, Command{TenantID: "t1", Message: "What are my obligations?", Sector: "ndis"})

	if len(events) != 4 {
		t.Fatalf("events = %d, want 3 deltas + done", len(events))
	}
	for i, want := range []string{"NDIS ", "providers ", "must..."} {
		if events[i].Type != "delta" || events[i].Content != want {
			t.Fatalf("event %d = %+v", i, events[i])
		}
	}
	done := events[3]
	if done.Type != "done" {
		t.Fatalf("last event type = %q", done.Type)
	}
	if done.Content != "NDIS providers must..." {
		t.Fatalf("done content = %q", done.Content)
	}
	if done.Metadata == nil || done.Metadata.Sector != "ndis" {
		t.Fatalf("done metadata = %+v", done.Metadata)
	}
	if done.Metadata.Usage.OutputTokens != 20 {
		t.Fatalf("usage = %+v", done.Metadata.Usage)
	}
	if done.Metadata.Citations == nil {
		t.Fatalf("citations must be present, even when empty")
	}
}

func TestStreamRequiresMessage(t *testing.T) {
	svc := &Service{AI: &fakeStreamer{}, Logger: slog.New(slog.DiscardHandler)}
	err := svc.Stream(context.Background(), Command{TenantID: "t1"}, func(Event) error { return nil })
	if err == nil {
		t.Fatalf("expected error for empty message")
	}
}

func TestStreamPropagatesProviderError(t *testing.T) {
	svc := &Service{AI: &fakeStreamer{err: errors.New("stream broken")}, Logger: slog.New(slog.DiscardHandler)}
	var events []Event
	err := svc.Stream(context.Background(), Command{TenantID: "t1", Message: "hi"}, func(ev Event) error {
		events = append(events, ev)
		return nil
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, ev := range events {
		if ev.Type == "done" {
			t.Fatalf("no done event after a failed stream")
		}
	}
}

func TestStreamWithRAGCitations(t *testing.T) {
	ai := &fakeStreamer{deltas: []string{"answer"}}
	searcher := &fakeSearcher{passages: []search.Passage{
		{ID: "p1", Title: "NDIS Act 2013", SectionNumber: "73V", Content: "...", Score: 0.82},
		{ID: "p2", Title: "Practice Standards", SectionTitle: "Core Module", Content: "...", Score: 0.5},
	}}
	svc := &Service{AI: ai, Search: searcher, Logger: slog.New(slog.DiscardHandler)}

	events := collect(t, svc, Command{TenantID: "t1", Message: "worker screening?", Sector: "ndis", UseRAG: true})

	done := events[len(events)-1]
	if len(done.Metadata.Citations) != 2 {
		t.Fatalf("citations = %+v", done.Metadata.Citations)
	}
	if done.Metadata.Citations[0].Source != "NDIS Act 2013" || done.Metadata.Citations[0].Section != "73V" {
		t.Fatalf("citation 0 = %+v", done.Metadata.Citations[0])
	}
	// section title is the fallback when there is no section number
	if done.Metadata.Citations[1].Section != "Core Module" {
		t.Fatalf("citation 1 = %+v", done.Metadata.Citations[1])
	}
	if !strings.Contains(ai.lastReq.System, "NDIS Act 2013") {
		t.Fatalf("retrieved context missing from system prompt")
	}
	if searcher.lastOpts.TopK != 5 || searcher.lastOpts.MinScore != 0.1 {
		t.Fatalf("search opts = %+v", searcher.lastOpts)
	}
}

func TestStreamSearchFailureDowngrades(t *testing.T) {
	ai := &fakeStreamer{deltas: []string{"answer"}}
	svc := &Service{AI: ai, Search: &fakeSearcher{err: errors.New("offline")}, Logger: slog.New(slog.DiscardHandler)}

	events := collect(t, svc, Command{TenantID: "t1", Message: "hello", Sector: "ndis", UseRAG: true})
	done := events[len(events)-1]
	if done.Type != "done" || len(done.Metadata.Citations) != 0 {
		t.Fatalf("done = %+v", done)
	}
}

func TestStreamHistoryPrecedesMessage(t *testing.T) {
	ai := &fakeStreamer{deltas: []string{"ok"}}
	svc := &Service{AI: ai, Logger: slog.New(slog.DiscardHandler)}

	collect(t, svc, Command{
		TenantID: "t1",
		Message:  "and now?",
		History: []domai.Message{
			{Role: "user", Content: "first question"},
			{Role: "assistant", Content: "first answer"},
		},
	})

	msgs := ai.lastReq.Messages
	if len(msgs) != 3 {
		t.Fatalf("messages = %d", len(msgs))
	}
	if msgs[0].Content != "first question" || msgs[2].Content != "and now?" {
		t.Fatalf("message order = %+v", msgs)
	}
	if ai.lastReq.Temperature != 0.7 {
		t.Fatalf("temperature = %v", ai.lastReq.Temperature)
	}
}
