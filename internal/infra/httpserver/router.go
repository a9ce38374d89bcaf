package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/cheema22g77/kwooka-compliance/internal/application/analysis"
	appchat "github.com/cheema22g77/kwooka-compliance/internal/application/chat"
	domai "github.com/cheema22g77/kwooka-compliance/internal/domain/ai"
	domain "github.com/cheema22g77/kwooka-compliance/internal/domain/analysis"
	domnotif "github.com/cheema22g77/kwooka-compliance/internal/domain/notifications"
	"github.com/cheema22g77/kwooka-compliance/internal/middleware"
	"github.com/cheema22g77/kwooka-compliance/internal/sectors"
)

type Router struct {
	analysisSvc *appanalysis.Service
	chatSvc     *appchat.Service
	notifs      domnotif.Repository
}

func NewRouter(analysisSvc *appanalysis.Service, chatSvc *appchat.Service, notifs domnotif.Repository, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{analysisSvc: analysisSvc, chatSvc: chatSvc, notifs: notifs}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/analyses", r.wrap(r.handleListAnalyses))
		rt.Get("/analyses/{id}", r.wrap(r.handleGetAnalysis))
		rt.Get("/sectors", r.wrap(r.handleSectors))
		rt.Get("/findings/summary", r.wrap(r.handleFindingsSummary))
		rt.Get("/notifications", r.wrap(r.handleNotifications))
		rt.Post("/notifications/read", r.wrap(r.handleMarkNotificationsRead))
		rt.Post("/chat", r.handleChat)
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			writeError(w, err)
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDocumentRequired), errors.Is(err, domain.ErrUnknownSector):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrUpstreamGeneration), errors.Is(err, domain.ErrInvalidAIOutput):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, domai.ErrQuotaExceeded):
		http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
	case errors.Is(err, sql.ErrNoRows):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// POST /v1/{tenant}/analyze
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	var body struct {
		DocumentText string `json:"documentText"`
		Sector       string `json:"sector"`
		DocumentType string `json:"documentType"`
		DocumentName string `json:"documentName"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return nil
	}
	if err := middleware.ValidateDocumentText(body.DocumentText); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	middleware.IncrementAnalyses()
	result, err := r.analysisSvc.Analyze(req.Context(), appanalysis.AnalyzeCommand{
		TenantID:     tenant,
		DocumentText: body.DocumentText,
		Sector:       body.Sector,
		DocumentType: middleware.SanitizeString(body.DocumentType),
		DocumentName: middleware.SanitizeString(body.DocumentName),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAIOutput) {
			middleware.IncrementAnalysesRejected()
		}
		if errors.Is(err, domain.ErrUpstreamGeneration) {
			middleware.IncrementAnalysesUpstreamErr()
		}
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(result)
}

// GET /v1/{tenant}/analyses?sector=&page=&page_size=
func (r *Router) handleListAnalyses(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	sector := req.URL.Query().Get("sector")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))
	size = middleware.ValidatePageSize(size)

	list, err := r.analysisSvc.List(req.Context(), tenant, sector, page, size)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/analyses/{id}
func (r *Router) handleGetAnalysis(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	rec, err := r.analysisSvc.Get(req.Context(), tenant, domain.AnalysisID(id))
	if err != nil {
		return err
	}
	if rec == nil {
		return sql.ErrNoRows
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rec)
}

// GET /v1/{tenant}/sectors
func (r *Router) handleSectors(w http.ResponseWriter, req *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(sectors.All())
}

// GET /v1/{tenant}/findings/summary
func (r *Router) handleFindingsSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")

	counts, err := r.analysisSvc.FindingCounts(req.Context(), tenant)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(counts)
}

// GET /v1/{tenant}/notifications?limit=20
func (r *Router) handleNotifications(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	list, err := r.notifs.Recent(req.Context(), tenant, limit)
	if err != nil {
		return err
	}
	unread, err := r.notifs.UnreadCount(req.Context(), tenant)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"notifications": list,
		"unreadCount":   unread,
	})
}

// POST /v1/{tenant}/notifications/read
func (r *Router) handleMarkNotificationsRead(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")

	if err := r.notifs.MarkAllRead(req.Context(), tenant); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
}

// POST /v1/{tenant}/chat — streams the answer as SSE events.
func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) {
	tenant := chi.URLParam(req, "tenant")

	var body struct {
		Message string `json:"message"`
		Sector  string `json:"sector"`
		History []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"history"`
		UseRAG *bool `json:"useRag"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	history := make([]domai.Message, 0, len(body.History))
	for _, m := range body.History {
		history = append(history, domai.Message{Role: m.Role, Content: m.Content})
	}
	useRAG := true
	if body.UseRAG != nil {
		useRAG = *body.UseRAG
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	emit := func(ev appchat.Event) error {
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	err := r.chatSvc.Stream(req.Context(), appchat.Command{
		TenantID: tenant,
		Message:  body.Message,
		Sector:   body.Sector,
		History:  history,
		UseRAG:   useRAG,
	}, emit)
	if err != nil {
		// headers already sent; deliver the failure in-band
		_ = emit(appchat.Event{Type: "error", Error: err.Error()})
	}
}
