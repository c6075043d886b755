package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
	"github.com/vanmitra/fra-pipeline/internal/infrastructure/resilience"
)

// nativeTextMinLen is the number of plain-text bytes a PDF must yield
// before we trust its embedded text layer over the OCR service. Scanned
// PDFs typically carry no text layer at all.
const nativeTextMinLen = 64

const nativeTextConfidence = 0.99

// Client talks to the OCR/NER sidecar that turns scanned claim documents
// into text and tagged entities. Digitally-born PDFs skip the sidecar: their
// embedded text layer is read directly, which is both faster and exact.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func NewClient(baseURL string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

type recognizeResponse struct {
	Confidence float64 `json:"confidence"`
	Text       string  `json:"text"`
	Entities   []struct {
		Tag        string  `json:"tag"`
		Value      string  `json:"value"`
		Confidence float64 `json:"confidence"`
	} `json:"entities"`
	Metadata struct {
		PageCount        int    `json:"pageCount"`
		LanguageDetected string `json:"languageDetected"`
	} `json:"metadata"`
}

func (c *Client) Recognize(ctx context.Context, filename, mimeType string, data io.Reader) (*domain.RecognitionResult, error) {
	payload, err := io.ReadAll(data)
	if err != nil {
		return nil, fmt.Errorf("read document payload: %w", err)
	}

	if mimeType == "application/pdf" {
		if result := c.nativePDFText(payload); result != nil {
			slog.Debug("pdf_native_text_used", "filename", filename, "pages", result.Metadata.PageCount)
			return result, nil
		}
	}

	var result *domain.RecognitionResult
	call := func(ctx context.Context) error {
		r, err := c.post(ctx, filename, mimeType, payload)
		if err != nil {
			return err
		}
		result = r
		return nil
	}

	if c.executor == nil {
		if err := call(ctx); err != nil {
			return nil, err
		}
		return result, nil
	}
	if err := c.executor.Execute(ctx, "recognizer.recognize", call, classifyRecognizerError); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, filename, mimeType string, payload []byte) (*domain.RecognitionResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("document", filename)
	if err != nil {
		return nil, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := part.Write(payload); err != nil {
		return nil, fmt.Errorf("write multipart payload: %w", err)
	}
	if err := writer.WriteField("mimeType", mimeType); err != nil {
		return nil, fmt.Errorf("write mime field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/recognize", &body)
	if err != nil {
		return nil, fmt.Errorf("build recognize request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recognize request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(snippet))}
	}

	var decoded recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode recognize response: %w", err)
	}

	result := &domain.RecognitionResult{
		Confidence:    decoded.Confidence,
		ExtractedText: decoded.Text,
		Metadata: domain.ProcessingMetadata{
			PageCount:        decoded.Metadata.PageCount,
			LanguageDetected: decoded.Metadata.LanguageDetected,
		},
	}
	for _, e := range decoded.Entities {
		result.Entities = append(result.Entities, domain.Entity{
			Tag:        e.Tag,
			Value:      e.Value,
			Confidence: e.Confidence,
		})
	}
	return result, nil
}

// nativePDFText returns a synthesized recognition result when the PDF
// carries a usable embedded text layer, nil otherwise. The pdf parser is
// known to panic on malformed files, so failures of any kind simply fall
// through to the OCR service.
func (c *Client) nativePDFText(payload []byte) (result *domain.RecognitionResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("pdf_native_text_panic", "cause", r)
			result = nil
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return nil
	}
	text, err := io.ReadAll(textReader)
	if err != nil {
		return nil
	}
	if len(bytes.TrimSpace(text)) < nativeTextMinLen {
		return nil
	}

	return &domain.RecognitionResult{
		Confidence:    nativeTextConfidence,
		ExtractedText: string(text),
		Metadata: domain.ProcessingMetadata{
			PageCount: reader.NumPage(),
		},
	}
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("recognizer returned status %d", e.code)
	}
	return fmt.Sprintf("recognizer returned status %d: %s", e.code, e.body)
}

func classifyRecognizerError(err error) resilience.ErrorClassification {
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		retryable := statusErr.code >= 500 || statusErr.code == http.StatusTooManyRequests
		return resilience.ErrorClassification{Retryable: retryable, RecordFailure: statusErr.code >= 500}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
