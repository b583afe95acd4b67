package documents

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jasamansinghchaggar/pdf-signature-app/pkg/pdf"
	"github.com/jasamansinghchaggar/pdf-signature-app/pkg/workflows"
)

// PDFMimeType is the only document content type the service accepts.
const PDFMimeType = "application/pdf"

type SignatureKind string

const (
	KindText  SignatureKind = "text"
	KindImage SignatureKind = "image"
	KindDraw  SignatureKind = "draw"
)

type AuditAction string

const (
	ActionUpload   AuditAction = "upload"
	ActionView     AuditAction = "view"
	ActionSign     AuditAction = "sign"
	ActionDownload AuditAction = "download"
	ActionShare    AuditAction = "share"
	ActionDelete   AuditAction = "delete"
)

// Document is an uploaded PDF tracked through the signing lifecycle.
// Status is the authoritative state and only ever advances forward
// (uploaded -> signing -> signed; completed is set out of band).
type Document struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	Title        string           `json:"title" db:"title"`
	Filename     string           `json:"filename" db:"filename"`
	OriginalName string           `json:"original_name" db:"original_name"`
	FilePath     string           `json:"file_path" db:"file_path"`
	FileSize     int64            `json:"file_size" db:"file_size"`
	MimeType     string           `json:"mime_type" db:"mime_type"`
	PageCount    int              `json:"page_count" db:"page_count"`
	UploadedBy   uuid.UUID        `json:"uploaded_by" db:"uploaded_by"`
	Status       workflows.Status `json:"status" db:"status"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

// Position is the stored placement of a signature: the resolved pixel
// rectangle (top-left origin, points) plus the original percentage fields
// when the client supplied them, kept verbatim so the placement can be
// re-rendered independently of the render scale. Stored as JSONB.
type Position pdf.Placement

// Placement converts the stored position back into the transform input.
func (p Position) Placement() pdf.Placement {
	return pdf.Placement(p)
}

func (p Position) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *Position) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Position", src)
	}
}

// Signature is a proposed or embedded signature placement on one page of a
// document. Once Finalized it is immutable.
type Signature struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	DocumentID uuid.UUID     `json:"document_id" db:"document_id"`
	UserID     uuid.UUID     `json:"user_id" db:"user_id"`
	PageNumber int           `json:"page_number" db:"page_number"`
	Position   Position      `json:"position" db:"position"`
	Kind       SignatureKind `json:"signature_type" db:"signature_type"`
	// Data holds the literal string for text signatures, or the relative
	// path of the stored image asset for image/draw signatures.
	Data      string    `json:"signature_data" db:"signature_data"`
	Finalized bool      `json:"is_finalized" db:"is_finalized"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AuditRecord is one append-only entry in a document's audit trail.
// Records are never updated or deleted; the trail outlives the document so
// the final delete action stays visible.
type AuditRecord struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	DocumentID  uuid.UUID       `json:"document_id" db:"document_id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	Action      AuditAction     `json:"action" db:"action"`
	Description string          `json:"description" db:"description"`
	Metadata    json.RawMessage `json:"metadata" db:"metadata"`
	IPAddress   string          `json:"ip_address" db:"ip_address"`
	UserAgent   string          `json:"user_agent" db:"user_agent"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// RequestInfo carries per-call request metadata from the HTTP collaborator
// into the audit trail.
type RequestInfo struct {
	IP        string
	UserAgent string
}
