package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

// AuditRepository is append-only by construction: there is no update or
// delete path for review_audit rows.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry domain.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO review_audit (id, document_id, actor, from_status, to_status, comment, at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`,
		entry.ID, entry.DocumentID, entry.Actor, string(entry.FromStatus), string(entry.ToStatus),
		entry.Comment, entry.At,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, actor, from_status, to_status, comment, at
FROM review_audit
WHERE document_id = $1
ORDER BY at, id
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		var from, to string
		if err := rows.Scan(&entry.ID, &entry.DocumentID, &entry.Actor, &from, &to, &entry.Comment, &entry.At); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.FromStatus = domain.DocumentStatus(from)
		entry.ToStatus = domain.DocumentStatus(to)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
