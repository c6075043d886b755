package domain

import "time"

type DocumentType string

const (
	TypeIdentityProof     DocumentType = "identity-proof"
	TypeFRAApplication    DocumentType = "fra-application"
	TypeLandDocuments     DocumentType = "land-documents"
	TypeTribalCertificate DocumentType = "tribal-certificate"
	TypeResidenceProof    DocumentType = "residence-proof"
	TypeBankDetails       DocumentType = "bank-details"
	TypeCommunityRights   DocumentType = "community-rights"
	TypeHistoricalRecords DocumentType = "historical-records"
)

func KnownDocumentType(t DocumentType) bool {
	switch t {
	case TypeIdentityProof, TypeFRAApplication, TypeLandDocuments, TypeTribalCertificate,
		TypeResidenceProof, TypeBankDetails, TypeCommunityRights, TypeHistoricalRecords:
		return true
	}
	return false
}

type DocumentStatus string

const (
	StatusUploading          DocumentStatus = "uploading"
	StatusProcessing         DocumentStatus = "processing"
	StatusExtracting         DocumentStatus = "extracting"
	StatusValidating         DocumentStatus = "validating"
	StatusNeedsReview        DocumentStatus = "needs_review"
	StatusVerified           DocumentStatus = "verified"
	StatusRejected           DocumentStatus = "rejected"
	StatusCorrectionRequired DocumentStatus = "correction_required"
	StatusError              DocumentStatus = "error"
)

func (s DocumentStatus) Terminal() bool {
	return s == StatusVerified || s == StatusRejected
}

// allowedTransitions is the document lifecycle. StatusError is additionally
// reachable from every non-terminal status, see CanTransition.
var allowedTransitions = map[DocumentStatus][]DocumentStatus{
	StatusUploading:          {StatusProcessing},
	StatusProcessing:         {StatusExtracting},
	StatusExtracting:         {StatusValidating},
	StatusValidating:         {StatusNeedsReview},
	StatusNeedsReview:        {StatusVerified, StatusRejected, StatusCorrectionRequired},
	StatusCorrectionRequired: {StatusExtracting},
	StatusError:              {StatusUploading},
}

func CanTransition(from, to DocumentStatus) bool {
	if to == StatusError {
		return !from.Terminal() && from != StatusError
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Entity is one tagged value produced by the external OCR/NER collaborator.
type Entity struct {
	Tag        string  `json:"tag"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

type ProcessingMetadata struct {
	PageCount        int    `json:"pageCount"`
	LanguageDetected string `json:"languageDetected"`
}

// RecognitionResult is the raw payload returned by the OCR/NER collaborator.
type RecognitionResult struct {
	Confidence    float64            `json:"confidence"`
	ExtractedText string             `json:"extractedText"`
	Entities      []Entity           `json:"entities"`
	Metadata      ProcessingMetadata `json:"processingMetadata"`
}

type Document struct {
	ID          string         `json:"id"`
	Type        DocumentType   `json:"type"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Status      DocumentStatus `json:"status"`

	RawText  string   `json:"raw_text,omitempty"`
	Entities []Entity `json:"entities,omitempty"`

	Fields         FieldSet            `json:"fields,omitempty"`
	Categorized    CategorizedFieldSet `json:"categorized_fields,omitempty"`
	Quality        *QualityReport      `json:"quality_report,omitempty"`
	Recommendation *Recommendation     `json:"recommendation,omitempty"`

	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}
