package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

type ingestorStub struct {
	doc *domain.Document
	err error

	gotType     domain.DocumentType
	gotFilename string
}

func (s *ingestorStub) Upload(_ context.Context, docType domain.DocumentType, filename, _ string, _ io.Reader) (*domain.Document, error) {
	s.gotType = docType
	s.gotFilename = filename
	if s.err != nil {
		return nil, s.err
	}
	return s.doc, nil
}

type readerStub struct {
	doc     *domain.Document
	entries []domain.AuditEntry
	err     error
}

func (s *readerStub) GetByID(context.Context, string) (*domain.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.doc, nil
}

func (s *readerStub) AuditTrail(context.Context, string) ([]domain.AuditEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.entries, nil
}

type reviewStub struct {
	doc *domain.Document
	err error

	gotCmd   domain.ReviewCommand
	gotEdits map[string]any
}

func (s *reviewStub) Review(_ context.Context, cmd domain.ReviewCommand) (*domain.Document, error) {
	s.gotCmd = cmd
	if s.err != nil {
		return nil, s.err
	}
	return s.doc, nil
}

func (s *reviewStub) ApplyCorrection(_ context.Context, _, _ string, edits map[string]any) (*domain.Document, error) {
	s.gotEdits = edits
	if s.err != nil {
		return nil, s.err
	}
	return s.doc, nil
}

func (s *reviewStub) Retry(context.Context, string, string) (*domain.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.doc, nil
}

type exporterStub struct {
	flat map[string]string
	csv  []byte
	xlsx []byte
	err  error
}

func (s *exporterStub) ExportFlat(context.Context, string) (map[string]string, error) {
	return s.flat, s.err
}

func (s *exporterStub) ExportCSV(context.Context, string) ([]byte, error) {
	return s.csv, s.err
}

func (s *exporterStub) ExportXLSX(context.Context, string) ([]byte, error) {
	return s.xlsx, s.err
}

type reloaderStub struct {
	version string
	schemes int
	err     error
}

func (s *reloaderStub) Reload(context.Context) (string, int, error) {
	return s.version, s.schemes, s.err
}

type routerFixture struct {
	ingestor *ingestorStub
	reader   *readerStub
	review   *reviewStub
	exporter *exporterStub
	reloader *reloaderStub
	handler  http.Handler
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		ingestor: &ingestorStub{doc: &domain.Document{ID: "doc-1", Type: domain.TypeFRAApplication, Status: domain.StatusUploading}},
		reader:   &readerStub{doc: &domain.Document{ID: "doc-1", Status: domain.StatusNeedsReview}},
		review:   &reviewStub{doc: &domain.Document{ID: "doc-1", Status: domain.StatusVerified}},
		exporter: &exporterStub{
			flat: map[string]string{"documentId": "doc-1"},
			csv:  []byte("key,value\n"),
			xlsx: []byte("PK\x03\x04"),
		},
		reloader: &reloaderStub{version: "2026-08", schemes: 6},
	}
	f.handler = NewRouter(f.ingestor, f.reader, f.review, f.exporter, f.reloader, nil, 0).Handler(nil)
	return f
}

func multipartUpload(t *testing.T, docType string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "claim.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte("%PDF-1.4 payload")); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteField("type", docType); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func TestUploadDocumentAccepted(t *testing.T) {
	f := newRouterFixture()
	body, contentType := multipartUpload(t, "fra-application")

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	if f.ingestor.gotType != domain.TypeFRAApplication {
		t.Fatalf("type = %q", f.ingestor.gotType)
	}
	if f.ingestor.gotFilename != "claim.pdf" {
		t.Fatalf("filename = %q", f.ingestor.gotFilename)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("request id header missing")
	}
}

func TestUploadDocumentWithoutFile(t *testing.T) {
	f := newRouterFixture()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", strings.NewReader("not multipart"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUploadDocumentInvalidTypeMapsTo400(t *testing.T) {
	f := newRouterFixture()
	f.ingestor.err = domain.WrapError(domain.ErrInvalidInput, "upload", io.ErrUnexpectedEOF)
	body, contentType := multipartUpload(t, "tax-return")

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetDocumentNotFoundMapsTo404(t *testing.T) {
	f := newRouterFixture()
	f.reader.err = domain.ErrDocumentNotFound

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetResult(t *testing.T) {
	f := newRouterFixture()
	f.reader.doc.Quality = &domain.QualityReport{Completeness: 40, Accuracy: 82, Consistency: 100}

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1/result", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp resultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.DocumentID != "doc-1" || resp.Quality == nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGetAuditTrailAlwaysReturnsArray(t *testing.T) {
	f := newRouterFixture()

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1/audit", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"entries":[]`) {
		t.Fatalf("empty trail must serialize as []: %s", rec.Body.String())
	}
}

func TestReviewDocument(t *testing.T) {
	f := newRouterFixture()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/doc-1/review",
		strings.NewReader(`{"action":"approve","actorId":"reviewer-7","comments":"ok"}`))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if f.review.gotCmd.Action != domain.ActionApprove || f.review.gotCmd.ActorID != "reviewer-7" {
		t.Fatalf("command = %+v", f.review.gotCmd)
	}
	if f.review.gotCmd.DocumentID != "doc-1" {
		t.Fatalf("document id = %q", f.review.gotCmd.DocumentID)
	}
}

func TestReviewConflictMapsTo409(t *testing.T) {
	f := newRouterFixture()
	f.review.err = domain.WrapError(domain.ErrConflictingTransition, "review", io.ErrUnexpectedEOF)

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/doc-1/review",
		strings.NewReader(`{"action":"approve","actorId":"reviewer-7"}`))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestApplyCorrection(t *testing.T) {
	f := newRouterFixture()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/doc-1/correction",
		strings.NewReader(`{"actorId":"reviewer-7","edits":{"landArea":2.5}}`))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if f.review.gotEdits["landArea"] != 2.5 {
		t.Fatalf("edits = %v", f.review.gotEdits)
	}
}

func TestRetryDocumentAccepted(t *testing.T) {
	f := newRouterFixture()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/doc-1/retry",
		strings.NewReader(`{"actorId":"reviewer-7"}`))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestExportFormats(t *testing.T) {
	f := newRouterFixture()

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1/export?format=csv", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("csv status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv" {
		t.Fatalf("csv content type = %q", got)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "doc-1.csv") {
		t.Fatalf("csv disposition = %q", rec.Header().Get("Content-Disposition"))
	}

	// The default JSON export is the nested result shape, not the flat
	// key/value projection.
	req = httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1/export", nil)
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("default format must be json: %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	var nested resultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &nested); err != nil {
		t.Fatalf("decode json export: %v", err)
	}
	if nested.DocumentID != "doc-1" || nested.Status != domain.StatusNeedsReview {
		t.Fatalf("json export = %+v", nested)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1/export?format=flat", nil)
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("flat status = %d", rec.Code)
	}
	var flat map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &flat); err != nil {
		t.Fatalf("decode flat export: %v", err)
	}
	if flat["documentId"] != "doc-1" {
		t.Fatalf("flat export = %v", flat)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1/export?format=docx", nil)
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unsupported format status = %d", rec.Code)
	}
}

func TestReloadCatalog(t *testing.T) {
	f := newRouterFixture()

	req := httptest.NewRequest(http.MethodPost, "/v1/catalog/reload", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["version"] != "2026-08" || resp["schemes"] != float64(6) {
		t.Fatalf("response = %v", resp)
	}
}

func TestReloadCatalogFailureMapsTo422(t *testing.T) {
	f := newRouterFixture()
	f.reloader.err = domain.WrapError(domain.ErrCatalogLoad, "reload", io.ErrUnexpectedEOF)

	req := httptest.NewRequest(http.MethodPost, "/v1/catalog/reload", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	f := newRouterFixture()

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/catalog/reload"},
		{http.MethodDelete, "/v1/documents/doc-1"},
		{http.MethodGet, "/v1/documents/doc-1/review"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s status = %d, want 405", tc.method, tc.path, rec.Code)
		}
	}
}

func TestHealthz(t *testing.T) {
	f := newRouterFixture()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRateLimiterThrottlesWrites(t *testing.T) {
	f := newRouterFixture()
	limited := 0
	limiter := NewTrafficLimiter(1, 1, func() { limited++ })
	handler := NewRouter(f.ingestor, f.reader, f.review, f.exporter, f.reloader, nil, 0).Handler(limiter)

	saw429 := false
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/catalog/reload", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			saw429 = true
		}
	}
	if !saw429 || limited == 0 {
		t.Fatal("burst of writes should trip the limiter")
	}

	// Reads bypass the limiter entirely.
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			t.Fatal("GET requests must not be throttled")
		}
	}
}
