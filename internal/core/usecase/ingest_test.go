package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

func TestUploadCreatesRecordAndQueuesPipeline(t *testing.T) {
	repo := &repoFake{doc: &domain.Document{}}
	storage := &storageFake{}
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue)

	doc, err := uc.Upload(context.Background(), domain.TypeFRAApplication,
		"fra claim form.pdf", "application/pdf", strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if doc.ID == "" {
		t.Fatal("document id not assigned")
	}
	if doc.Status != domain.StatusUploading {
		t.Fatalf("status = %s, want %s", doc.Status, domain.StatusUploading)
	}
	if repo.created != doc {
		t.Fatal("document record not created")
	}

	wantKey := doc.ID + "_fra_claim_form.pdf"
	if storage.savedKey != wantKey {
		t.Fatalf("storage key = %q, want %q", storage.savedKey, wantKey)
	}
	if doc.StoragePath != wantKey {
		t.Fatalf("storage path on record = %q, want %q", doc.StoragePath, wantKey)
	}

	if len(queue.published) != 1 || queue.published[0] != doc.ID {
		t.Fatalf("pipeline event not published: %v", queue.published)
	}
}

func TestUploadRejectsUnknownDocumentType(t *testing.T) {
	storage := &storageFake{}
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(&repoFake{doc: &domain.Document{}}, storage, queue)

	_, err := uc.Upload(context.Background(), "tax-return", "x.pdf", "application/pdf", strings.NewReader("x"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if storage.savedKey != "" || len(queue.published) != 0 {
		t.Fatal("rejected uploads must leave no trace")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"fra claim form.pdf", "fra_claim_form.pdf"},
		{"../../etc/passwd", "passwd"},
		{"résumé.pdf", "r_sum_.pdf"},
		{"scan_2024-03-12.jpeg", "scan_2024-03-12.jpeg"},
		{"", "document.bin"},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
