package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository is the persistence port for documents, signatures and the
// audit trail. Audit writes are append-only; audit rows are never updated
// or deleted, even when their document goes away.
type Repository interface {
	CreateDocument(ctx context.Context, doc *Document) error
	DocumentByID(ctx context.Context, id, ownerID uuid.UUID) (*Document, error)
	ListDocuments(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]Document, int, error)
	UpdateDocument(ctx context.Context, doc *Document) error
	DeleteDocument(ctx context.Context, id uuid.UUID) error

	CreateSignature(ctx context.Context, sig *Signature) error
	SignatureByID(ctx context.Context, id uuid.UUID) (*Signature, error)
	SignaturesByDocument(ctx context.Context, documentID uuid.UUID) ([]Signature, error)
	PendingSignaturesByDocument(ctx context.Context, documentID uuid.UUID) ([]Signature, error)
	MarkSignatureFinalized(ctx context.Context, id uuid.UUID) error
	DeleteSignature(ctx context.Context, id uuid.UUID) error
	DeleteSignaturesByDocument(ctx context.Context, documentID uuid.UUID) (int64, error)

	RecordAudit(ctx context.Context, rec *AuditRecord) error
	AuditByDocument(ctx context.Context, documentID uuid.UUID, page, limit int) ([]AuditRecord, error)
	AuditByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]AuditRecord, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateDocument(ctx context.Context, doc *Document) error {
	query := `
		INSERT INTO documents (
			id, title, filename, original_name, file_path, file_size,
			mime_type, page_count, uploaded_by, status
		) VALUES (
			:id, :title, :filename, :original_name, :file_path, :file_size,
			:mime_type, :page_count, :uploaded_by, :status
		)`
	_, err := r.db.NamedExecContext(ctx, query, doc)
	return err
}

// DocumentByID is owner-scoped: a document that exists but belongs to a
// different user is reported as not found.
func (r *postgresRepository) DocumentByID(ctx context.Context, id, ownerID uuid.UUID) (*Document, error) {
	var doc Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM documents WHERE id = $1 AND uploaded_by = $2", id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *postgresRepository) ListDocuments(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]Document, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var docs []Document
	err := r.db.SelectContext(ctx, &docs,
		"SELECT * FROM documents WHERE uploaded_by = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		ownerID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}

	var total int
	err = r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM documents WHERE uploaded_by = $1", ownerID)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (r *postgresRepository) UpdateDocument(ctx context.Context, doc *Document) error {
	query := `
		UPDATE documents SET
			title = :title,
			file_path = :file_path,
			status = :status,
			updated_at = NOW()
		WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, doc)
	return err
}

func (r *postgresRepository) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) CreateSignature(ctx context.Context, sig *Signature) error {
	query := `
		INSERT INTO signatures (
			id, document_id, user_id, page_number, position,
			signature_type, signature_data, is_finalized
		) VALUES (
			:id, :document_id, :user_id, :page_number, :position,
			:signature_type, :signature_data, :is_finalized
		)`
	_, err := r.db.NamedExecContext(ctx, query, sig)
	return err
}

func (r *postgresRepository) SignatureByID(ctx context.Context, id uuid.UUID) (*Signature, error) {
	var sig Signature
	err := r.db.GetContext(ctx, &sig, "SELECT * FROM signatures WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSignatureNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sig, nil
}

// SignaturesByDocument returns placements in embed order: page ascending,
// then creation time.
func (r *postgresRepository) SignaturesByDocument(ctx context.Context, documentID uuid.UUID) ([]Signature, error) {
	var sigs []Signature
	err := r.db.SelectContext(ctx, &sigs,
		"SELECT * FROM signatures WHERE document_id = $1 ORDER BY page_number ASC, created_at ASC", documentID)
	return sigs, err
}

func (r *postgresRepository) PendingSignaturesByDocument(ctx context.Context, documentID uuid.UUID) ([]Signature, error) {
	var sigs []Signature
	err := r.db.SelectContext(ctx, &sigs,
		"SELECT * FROM signatures WHERE document_id = $1 AND is_finalized = FALSE ORDER BY page_number ASC, created_at ASC", documentID)
	return sigs, err
}

func (r *postgresRepository) MarkSignatureFinalized(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE signatures SET is_finalized = TRUE WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSignatureNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteSignature(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM signatures WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSignatureNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteSignaturesByDocument(ctx context.Context, documentID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM signatures WHERE document_id = $1", documentID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted signatures: %w", err)
	}
	return n, nil
}

func (r *postgresRepository) RecordAudit(ctx context.Context, rec *AuditRecord) error {
	query := `
		INSERT INTO audit_records (
			id, document_id, user_id, action, description, metadata,
			ip_address, user_agent
		) VALUES (
			:id, :document_id, :user_id, :action, :description, :metadata,
			:ip_address, :user_agent
		)`
	_, err := r.db.NamedExecContext(ctx, query, rec)
	return err
}

func (r *postgresRepository) AuditByDocument(ctx context.Context, documentID uuid.UUID, page, limit int) ([]AuditRecord, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	var recs []AuditRecord
	err := r.db.SelectContext(ctx, &recs,
		"SELECT * FROM audit_records WHERE document_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		documentID, limit, (page-1)*limit)
	return recs, err
}

func (r *postgresRepository) AuditByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]AuditRecord, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	var recs []AuditRecord
	err := r.db.SelectContext(ctx, &recs,
		"SELECT * FROM audit_records WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		userID, limit, (page-1)*limit)
	return recs, err
}
