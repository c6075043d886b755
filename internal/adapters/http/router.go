package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
	"github.com/vanmitra/fra-pipeline/internal/core/ports"
	"github.com/vanmitra/fra-pipeline/internal/observability/metrics"
)

const serviceName = "fra-pipeline-api"

type Router struct {
	ingestor ports.DocumentIngestor
	reader   ports.DocumentReader
	review   ports.ReviewService
	exporter ports.ResultExporter
	catalog  ports.CatalogReloader
	metrics  *metrics.HTTPServerMetrics

	maxUploadBytes int64
}

func NewRouter(
	ingestor ports.DocumentIngestor,
	reader ports.DocumentReader,
	review ports.ReviewService,
	exporter ports.ResultExporter,
	catalog ports.CatalogReloader,
	m *metrics.HTTPServerMetrics,
	maxUploadBytes int64,
) *Router {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &Router{
		ingestor:       ingestor,
		reader:         reader,
		review:         review,
		exporter:       exporter,
		catalog:        catalog,
		metrics:        m,
		maxUploadBytes: maxUploadBytes,
	}
}

func (rt *Router) Handler(limiter *TrafficLimiter) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.documentSubroutes)
	mux.HandleFunc("/v1/catalog/reload", rt.reloadCatalog)

	var handler http.Handler = mux
	if limiter != nil {
		handler = limiter.Middleware(handler)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	docType := domain.DocumentType(strings.TrimSpace(r.FormValue("type")))

	doc, err := rt.ingestor.Upload(
		r.Context(),
		docType,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, string(doc.Type))
	}
	writeJSON(w, http.StatusAccepted, doc)
}

// documentSubroutes dispatches /v1/documents/{id} and its subresources.
func (rt *Router) documentSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	switch action {
	case "":
		rt.getDocument(w, r, id)
	case "result":
		rt.getResult(w, r, id)
	case "audit":
		rt.getAuditTrail(w, r, id)
	case "review":
		rt.reviewDocument(w, r, id)
	case "correction":
		rt.applyCorrection(w, r, id)
	case "retry":
		rt.retryDocument(w, r, id)
	case "export":
		rt.exportResult(w, r, id)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown resource"})
	}
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	doc, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type resultResponse struct {
	DocumentID     string                     `json:"documentId"`
	Status         domain.DocumentStatus      `json:"status"`
	Categorized    domain.CategorizedFieldSet `json:"categorizedFields,omitempty"`
	Quality        *domain.QualityReport      `json:"quality,omitempty"`
	Recommendation *domain.Recommendation     `json:"recommendation,omitempty"`
	Error          string                     `json:"error,omitempty"`
}

func (rt *Router) getResult(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	doc, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resultResponse{
		DocumentID:     doc.ID,
		Status:         doc.Status,
		Categorized:    doc.Categorized,
		Quality:        doc.Quality,
		Recommendation: doc.Recommendation,
		Error:          doc.Error,
	})
}

func (rt *Router) getAuditTrail(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	entries, err := rt.reader.AuditTrail(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documentId": id, "entries": entries})
}

func (rt *Router) reviewDocument(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Action   string `json:"action"`
		Comments string `json:"comments"`
		ActorID  string `json:"actorId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	doc, err := rt.review.Review(r.Context(), domain.ReviewCommand{
		DocumentID: id,
		Action:     domain.ReviewAction(req.Action),
		Comments:   req.Comments,
		ActorID:    req.ActorID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordReviewDecision(serviceName, req.Action)
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) applyCorrection(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		ActorID string         `json:"actorId"`
		Edits   map[string]any `json:"edits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	doc, err := rt.review.ApplyCorrection(r.Context(), id, req.ActorID, req.Edits)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) retryDocument(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		ActorID string `json:"actorId"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
	}

	doc, err := rt.review.Retry(r.Context(), id, req.ActorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) exportResult(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "json"
	}

	switch format {
	case "json":
		doc, err := rt.reader.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if rt.metrics != nil {
			rt.metrics.RecordExport(serviceName, format)
		}
		writeJSON(w, http.StatusOK, resultResponse{
			DocumentID:     doc.ID,
			Status:         doc.Status,
			Categorized:    doc.Categorized,
			Quality:        doc.Quality,
			Recommendation: doc.Recommendation,
			Error:          doc.Error,
		})
	case "flat":
		flat, err := rt.exporter.ExportFlat(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if rt.metrics != nil {
			rt.metrics.RecordExport(serviceName, format)
		}
		writeJSON(w, http.StatusOK, flat)
	case "csv":
		data, err := rt.exporter.ExportCSV(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if rt.metrics != nil {
			rt.metrics.RecordExport(serviceName, format)
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".csv"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	case "xlsx":
		data, err := rt.exporter.ExportXLSX(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if rt.metrics != nil {
			rt.metrics.RecordExport(serviceName, format)
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".xlsx"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported export format: " + format})
	}
}

func (rt *Router) reloadCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	version, schemes, err := rt.catalog.Reload(r.Context())
	if rt.metrics != nil {
		rt.metrics.RecordCatalogReload(serviceName, err)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"version": version, "schemes": schemes})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
