package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vanmitra/fra-pipeline/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026031701)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	doc_type TEXT NOT NULL,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	status TEXT NOT NULL,
	raw_text TEXT NOT NULL DEFAULT '',
	entities JSONB NOT NULL DEFAULT '[]'::jsonb,
	fields JSONB NOT NULL DEFAULT '{}'::jsonb,
	categorized JSONB,
	quality JSONB,
	recommendation JSONB,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	verified_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC);

CREATE TABLE IF NOT EXISTS review_audit (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	actor TEXT NOT NULL,
	from_status TEXT NOT NULL,
	to_status TEXT NOT NULL,
	comment TEXT NOT NULL DEFAULT '',
	at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_review_audit_document ON review_audit(document_id, at);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	entitiesJSON, err := json.Marshal(doc.Entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}
	fieldsJSON, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, doc_type, filename, mime_type, storage_path, status, raw_text, entities, fields, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		doc.ID, string(doc.Type), doc.Filename, doc.MimeType, doc.StoragePath, string(doc.Status),
		doc.RawText, entitiesJSON, fieldsJSON, doc.Error, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, doc_type, filename, mime_type, storage_path, status, raw_text, entities, fields,
	categorized, quality, recommendation, error_message, created_at, updated_at, verified_at
FROM documents
WHERE id = $1
`, id)

	var (
		doc            domain.Document
		docType        string
		status         string
		entitiesRaw    []byte
		fieldsRaw      []byte
		categorizedRaw []byte
		qualityRaw     []byte
		recRaw         []byte
		verifiedAt     sql.NullTime
	)

	err := row.Scan(
		&doc.ID, &docType, &doc.Filename, &doc.MimeType, &doc.StoragePath, &status,
		&doc.RawText, &entitiesRaw, &fieldsRaw, &categorizedRaw, &qualityRaw, &recRaw,
		&doc.Error, &doc.CreatedAt, &doc.UpdatedAt, &verifiedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	doc.Type = domain.DocumentType(docType)
	doc.Status = domain.DocumentStatus(status)
	if verifiedAt.Valid {
		doc.VerifiedAt = &verifiedAt.Time
	}

	if err := json.Unmarshal(entitiesRaw, &doc.Entities); err != nil {
		return nil, fmt.Errorf("unmarshal entities: %w", err)
	}
	if err := json.Unmarshal(fieldsRaw, &doc.Fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	if len(categorizedRaw) > 0 {
		if err := json.Unmarshal(categorizedRaw, &doc.Categorized); err != nil {
			return nil, fmt.Errorf("unmarshal categorized fields: %w", err)
		}
	}
	if len(qualityRaw) > 0 {
		if err := json.Unmarshal(qualityRaw, &doc.Quality); err != nil {
			return nil, fmt.Errorf("unmarshal quality report: %w", err)
		}
	}
	if len(recRaw) > 0 {
		if err := json.Unmarshal(recRaw, &doc.Recommendation); err != nil {
			return nil, fmt.Errorf("unmarshal recommendation: %w", err)
		}
	}

	return &doc, nil
}

// TransitionStatus is the compare-and-set behind every lifecycle move. Only
// a document still holding the expected status transitions; a lost race
// surfaces as ErrConflictingTransition so callers can retry against the
// current state instead of silently overwriting it.
func (r *DocumentRepository) TransitionStatus(ctx context.Context, id string, from, to domain.DocumentStatus) error {
	if !domain.CanTransition(from, to) {
		return domain.WrapError(domain.ErrInvalidInput, "transition status",
			fmt.Errorf("%s -> %s is not a legal transition", from, to))
	}

	var verifiedAt any
	if to == domain.StatusVerified {
		verifiedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $3, error_message = '', updated_at = $4, verified_at = COALESCE($5, verified_at)
WHERE id = $1 AND status = $2
`, id, string(from), string(to), time.Now().UTC(), verifiedAt)
	if err != nil {
		return fmt.Errorf("transition document status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition rows affected: %w", err)
	}
	if affected == 0 {
		return r.conflictOrMissing(ctx, id, from, to)
	}
	return nil
}

func (r *DocumentRepository) MarkError(ctx context.Context, id string, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1 AND status NOT IN ($5, $6)
`, id, string(domain.StatusError), errMessage, time.Now().UTC(),
		string(domain.StatusVerified), string(domain.StatusRejected))
	if err != nil {
		return fmt.Errorf("mark document error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark error rows affected: %w", err)
	}
	if affected == 0 {
		return r.conflictOrMissing(ctx, id, "", domain.StatusError)
	}
	return nil
}

func (r *DocumentRepository) SaveRecognition(ctx context.Context, id string, rawText string, entities []domain.Entity) error {
	entitiesJSON, err := json.Marshal(entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}
	return r.updateOne(ctx, id, `
UPDATE documents
SET raw_text = $2, entities = $3, updated_at = $4
WHERE id = $1
`, id, rawText, entitiesJSON, time.Now().UTC())
}

func (r *DocumentRepository) SaveFields(ctx context.Context, id string, fields domain.FieldSet) error {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	return r.updateOne(ctx, id, `
UPDATE documents
SET fields = $2, updated_at = $3
WHERE id = $1
`, id, fieldsJSON, time.Now().UTC())
}

func (r *DocumentRepository) SaveAnalysis(
	ctx context.Context,
	id string,
	categorized domain.CategorizedFieldSet,
	quality *domain.QualityReport,
	rec *domain.Recommendation,
) error {
	categorizedJSON, err := json.Marshal(categorized)
	if err != nil {
		return fmt.Errorf("marshal categorized fields: %w", err)
	}
	qualityJSON, err := json.Marshal(quality)
	if err != nil {
		return fmt.Errorf("marshal quality report: %w", err)
	}
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal recommendation: %w", err)
	}
	return r.updateOne(ctx, id, `
UPDATE documents
SET categorized = $2, quality = $3, recommendation = $4, updated_at = $5
WHERE id = $1
`, id, categorizedJSON, qualityJSON, recJSON, time.Now().UTC())
}

func (r *DocumentRepository) updateOne(ctx context.Context, id, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, "update document", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *DocumentRepository) conflictOrMissing(ctx context.Context, id string, from, to domain.DocumentStatus) error {
	var current string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM documents WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WrapError(domain.ErrDocumentNotFound, "transition status", fmt.Errorf("id %s", id))
	}
	if err != nil {
		return fmt.Errorf("read current status: %w", err)
	}
	return domain.WrapError(domain.ErrConflictingTransition, "transition status",
		fmt.Errorf("document %s is %s, wanted %s -> %s", id, current, from, to))
}
