package domain

import "time"

type ReviewAction string

const (
	ActionApprove           ReviewAction = "approve"
	ActionReject            ReviewAction = "reject"
	ActionRequestCorrection ReviewAction = "request_correction"
)

// ReviewOutcome maps a reviewer action to the resulting document status.
func ReviewOutcome(action ReviewAction) (DocumentStatus, bool) {
	switch action {
	case ActionApprove:
		return StatusVerified, true
	case ActionReject:
		return StatusRejected, true
	case ActionRequestCorrection:
		return StatusCorrectionRequired, true
	default:
		return "", false
	}
}

// ReviewCommand is a reviewer's decision on a document awaiting review.
type ReviewCommand struct {
	DocumentID string       `json:"documentId"`
	Action     ReviewAction `json:"action"`
	Comments   string       `json:"comments,omitempty"`
	ActorID    string       `json:"actorId"`
}

// AuditEntry records one status transition. The trail is append-only; prior
// entries are never rewritten.
type AuditEntry struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	Actor      string         `json:"actor"`
	FromStatus DocumentStatus `json:"from_status"`
	ToStatus   DocumentStatus `json:"to_status"`
	Comment    string         `json:"comment,omitempty"`
	At         time.Time      `json:"at"`
}
