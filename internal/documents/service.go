package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jasamansinghchaggar/pdf-signature-app/pkg/pdf"
	"github.com/jasamansinghchaggar/pdf-signature-app/pkg/workflows"
)

// Service orchestrates the signing workflow: it validates preconditions,
// runs the coordinate transform and the embedder, advances document status
// and appends audit records. Every operation either fully succeeds or
// surfaces a typed error; cleanup of half-written artifacts is best effort
// and never masks the primary failure.
type Service interface {
	UploadDocument(ctx context.Context, req UploadRequest) (*Document, error)
	GetDocument(ctx context.Context, id, userID uuid.UUID, info RequestInfo) (*Document, error)
	ListDocuments(ctx context.Context, userID uuid.UUID, page, limit int) ([]Document, int, error)
	DownloadDocument(ctx context.Context, id, userID uuid.UUID, info RequestInfo) (*Document, string, error)
	DeleteDocument(ctx context.Context, id, userID uuid.UUID, info RequestInfo) error
	ShareDocument(ctx context.Context, id, userID uuid.UUID, recipient string, info RequestInfo) error

	SaveSignature(ctx context.Context, req SaveSignatureRequest) (*Signature, error)
	DocumentSignatures(ctx context.Context, documentID, userID uuid.UUID) ([]Signature, error)
	EmbedSignature(ctx context.Context, req EmbedSignatureRequest) (*Signature, error)
	FinalizeSignatures(ctx context.Context, documentID, userID uuid.UUID, info RequestInfo) (*FinalizeResult, error)
	DeleteSignature(ctx context.Context, signatureID, userID uuid.UUID, info RequestInfo) error

	DocumentAudit(ctx context.Context, documentID, userID uuid.UUID, page, limit int) ([]AuditRecord, error)
	UserAudit(ctx context.Context, userID uuid.UUID, page, limit int) ([]AuditRecord, error)
}

type UploadRequest struct {
	Title        string
	OriginalName string
	MimeType     string
	Size         int64
	Content      []byte
	UploadedBy   uuid.UUID
	Request      RequestInfo
}

type SaveSignatureRequest struct {
	DocumentID uuid.UUID
	UserID     uuid.UUID
	PageNumber int
	Position   Position
	Kind       SignatureKind
	Data       string
	Request    RequestInfo
}

type EmbedSignatureRequest struct {
	DocumentID uuid.UUID
	UserID     uuid.UUID
	PageNumber int
	Placement  pdf.Placement
	Image      []byte
	ImageMime  string
	ImageName  string
	Request    RequestInfo
}

type FinalizeResult struct {
	SignatureCount int       `json:"signature_count"`
	Document       *Document `json:"document"`
}

type documentService struct {
	repo     Repository
	store    FileStore
	embedder pdf.Embedder
	states   *workflows.StateMachine
	logger   *zap.Logger

	// finalize and embed-immediately on the same document both rewrite the
	// PDF from the same base bytes; without serialization the second writer
	// silently clobbers the first.
	locks docLocks
}

func NewService(repo Repository, store FileStore, embedder pdf.Embedder, logger *zap.Logger) Service {
	return &documentService{
		repo:     repo,
		store:    store,
		embedder: embedder,
		states:   workflows.NewStateMachine(),
		logger:   logger,
		locks:    docLocks{locks: make(map[uuid.UUID]*docLock)},
	}
}

func (s *documentService) UploadDocument(ctx context.Context, req UploadRequest) (*Document, error) {
	if req.MimeType != PDFMimeType {
		return nil, ErrInvalidMimeType
	}

	storedName := StoredName(req.OriginalName)
	if _, err := s.store.Save(storedName, req.Content); err != nil {
		return nil, err
	}

	// No orphan files on partial failure: anything after this point that
	// fails removes the stored file before surfacing the original error.
	cleanup := func() {
		if err := s.store.Remove(storedName); err != nil {
			s.logger.Warn("cleanup of uploaded file failed",
				zap.String("file", storedName), zap.Error(err))
		}
	}

	pageCount, _, err := s.embedder.PageInfo(req.Content)
	if err != nil {
		cleanup()
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = req.OriginalName
	}

	doc := &Document{
		ID:           uuid.New(),
		Title:        title,
		Filename:     storedName,
		OriginalName: req.OriginalName,
		FilePath:     storedName,
		FileSize:     req.Size,
		MimeType:     req.MimeType,
		PageCount:    pageCount,
		UploadedBy:   req.UploadedBy,
		Status:       workflows.StatusUploaded,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		cleanup()
		return nil, fmt.Errorf("create document: %w", err)
	}

	if err := s.audit(ctx, doc.ID, req.UploadedBy, ActionUpload,
		fmt.Sprintf("Document %q uploaded successfully", doc.Title),
		map[string]interface{}{"fileSize": req.Size, "pageCount": pageCount},
		req.Request); err != nil {
		cleanup()
		return nil, err
	}

	s.logger.Info("document uploaded",
		zap.String("document_id", doc.ID.String()),
		zap.Int("page_count", pageCount),
		zap.Int64("file_size", req.Size))

	return doc, nil
}

func (s *documentService) GetDocument(ctx context.Context, id, userID uuid.UUID, info RequestInfo) (*Document, error) {
	doc, err := s.repo.DocumentByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := s.audit(ctx, id, userID, ActionView,
		fmt.Sprintf("Document %q viewed", doc.Title), nil, info); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) ListDocuments(ctx context.Context, userID uuid.UUID, page, limit int) ([]Document, int, error) {
	return s.repo.ListDocuments(ctx, userID, page, limit)
}

// DownloadDocument resolves the backing file and records the download. The
// second return value is the absolute path for the transport layer to serve.
func (s *documentService) DownloadDocument(ctx context.Context, id, userID uuid.UUID, info RequestInfo) (*Document, string, error) {
	doc, err := s.repo.DocumentByID(ctx, id, userID)
	if err != nil {
		return nil, "", err
	}
	if !s.store.Exists(doc.FilePath) {
		return nil, "", ErrFileMissing
	}

	if err := s.audit(ctx, id, userID, ActionDownload,
		fmt.Sprintf("Document %q downloaded", doc.Title), nil, info); err != nil {
		return nil, "", err
	}
	return doc, s.store.Resolve(doc.FilePath), nil
}

// DeleteDocument performs the cascade: signature assets, signature rows,
// the PDF file, then the document row. Asset removal is advisory; a missing
// or stubborn asset file never blocks the delete.
func (s *documentService) DeleteDocument(ctx context.Context, id, userID uuid.UUID, info RequestInfo) error {
	doc, err := s.repo.DocumentByID(ctx, id, userID)
	if err != nil {
		return err
	}

	sigs, err := s.repo.SignaturesByDocument(ctx, id)
	if err != nil {
		s.logger.Error("listing signatures for cascade delete failed",
			zap.String("document_id", id.String()), zap.Error(err))
		sigs = nil
	}

	for _, sig := range sigs {
		if sig.Kind != KindImage && sig.Kind != KindDraw {
			continue
		}
		if sig.Data == "" || !s.store.Exists(sig.Data) {
			continue
		}
		if err := s.store.Remove(sig.Data); err != nil {
			s.logger.Warn("signature asset removal failed",
				zap.String("asset", sig.Data), zap.Error(err))
		}
	}

	removed, err := s.repo.DeleteSignaturesByDocument(ctx, id)
	if err != nil {
		s.logger.Error("bulk signature delete failed",
			zap.String("document_id", id.String()), zap.Error(err))
	}

	if s.store.Exists(doc.FilePath) {
		if err := s.store.Remove(doc.FilePath); err != nil {
			return fmt.Errorf("remove document file: %w", err)
		}
	}

	if err := s.repo.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if err := s.audit(ctx, id, userID, ActionDelete,
		fmt.Sprintf("Document %q deleted with %d signatures", doc.Title, len(sigs)),
		map[string]interface{}{"signaturesRemoved": removed}, info); err != nil {
		return err
	}

	s.logger.Info("document deleted",
		zap.String("document_id", id.String()),
		zap.Int64("signatures_removed", removed))
	return nil
}

// ShareDocument only records the share in the audit trail; access control
// for the recipient lives outside this service.
func (s *documentService) ShareDocument(ctx context.Context, id, userID uuid.UUID, recipient string, info RequestInfo) error {
	doc, err := s.repo.DocumentByID(ctx, id, userID)
	if err != nil {
		return err
	}
	return s.audit(ctx, id, userID, ActionShare,
		fmt.Sprintf("Document %q shared with %s", doc.Title, recipient),
		map[string]interface{}{"recipient": recipient}, info)
}

// SaveSignature records a proposed placement without touching the PDF.
func (s *documentService) SaveSignature(ctx context.Context, req SaveSignatureRequest) (*Signature, error) {
	doc, err := s.repo.DocumentByID(ctx, req.DocumentID, req.UserID)
	if err != nil {
		return nil, err
	}

	if req.PageNumber < 1 || req.PageNumber > doc.PageCount {
		return nil, fmt.Errorf("%w: page %d of %d", ErrInvalidPage, req.PageNumber, doc.PageCount)
	}

	sig := &Signature{
		ID:         uuid.New(),
		DocumentID: req.DocumentID,
		UserID:     req.UserID,
		PageNumber: req.PageNumber,
		Position:   req.Position,
		Kind:       req.Kind,
		Data:       req.Data,
		Finalized:  false,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.CreateSignature(ctx, sig); err != nil {
		return nil, fmt.Errorf("create signature: %w", err)
	}

	if doc.Status == workflows.StatusUploaded {
		if err := s.advance(ctx, doc, workflows.StatusSigning); err != nil {
			return nil, err
		}
	}

	if err := s.audit(ctx, req.DocumentID, req.UserID, ActionSign,
		fmt.Sprintf("Signature added to page %d", req.PageNumber),
		map[string]interface{}{
			"pageNumber":    req.PageNumber,
			"signatureType": req.Kind,
			"position":      req.Position,
		}, req.Request); err != nil {
		return nil, err
	}

	return sig, nil
}

func (s *documentService) DocumentSignatures(ctx context.Context, documentID, userID uuid.UUID) ([]Signature, error) {
	if _, err := s.repo.DocumentByID(ctx, documentID, userID); err != nil {
		return nil, err
	}
	return s.repo.SignaturesByDocument(ctx, documentID)
}

// EmbedSignature is the interactive single-shot path: transform, embed,
// overwrite the original file in place and record the signature already
// finalized, skipping the signing intermediate status.
func (s *documentService) EmbedSignature(ctx context.Context, req EmbedSignatureRequest) (*Signature, error) {
	unlock := s.locks.lock(req.DocumentID)
	defer unlock()

	if len(req.Image) == 0 {
		return nil, fmt.Errorf("no signature image uploaded")
	}

	assetPath := filepath.Join(SignatureDir, StoredName(req.ImageName))
	if _, err := s.store.Save(assetPath, req.Image); err != nil {
		return nil, err
	}

	// The asset was persisted before anything else could fail; remove it on
	// every non-success exit so failed embeds do not leak files.
	cleanup := func() {
		if err := s.store.Remove(assetPath); err != nil {
			s.logger.Warn("cleanup of signature asset failed",
				zap.String("asset", assetPath), zap.Error(err))
		}
	}

	doc, err := s.repo.DocumentByID(ctx, req.DocumentID, req.UserID)
	if err != nil {
		cleanup()
		return nil, err
	}
	if req.PageNumber < 1 || req.PageNumber > doc.PageCount {
		cleanup()
		return nil, fmt.Errorf("%w: page %d of %d", ErrInvalidPage, req.PageNumber, doc.PageCount)
	}

	pdfBytes, err := s.store.ReadFile(doc.FilePath)
	if err != nil {
		cleanup()
		return nil, err
	}

	_, dims, err := s.embedder.PageInfo(pdfBytes)
	if err != nil {
		cleanup()
		return nil, err
	}
	// The stored page_count can lag the live file; the file wins.
	if req.PageNumber > len(dims) {
		cleanup()
		return nil, fmt.Errorf("%w: page %d of %d", pdf.ErrPageOutOfRange, req.PageNumber, len(dims))
	}
	page := dims[req.PageNumber-1]

	rect, err := pdf.ToPageSpace(req.Placement, page.Width, page.Height)
	if err != nil {
		cleanup()
		return nil, err
	}

	signed, err := s.embedder.Embed(pdfBytes, req.PageNumber, pdf.Artifact{
		Kind:  pdf.ArtifactImage,
		Image: req.Image,
		MIME:  req.ImageMime,
	}, rect)
	if err != nil {
		cleanup()
		return nil, err
	}

	if _, err := s.store.Save(doc.FilePath, signed); err != nil {
		cleanup()
		return nil, err
	}

	sig := &Signature{
		ID:         uuid.New(),
		DocumentID: req.DocumentID,
		UserID:     req.UserID,
		PageNumber: req.PageNumber,
		Position:   resolvedPosition(req.Placement, page.Width, page.Height),
		Kind:       KindImage,
		Data:       assetPath,
		Finalized:  true,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.CreateSignature(ctx, sig); err != nil {
		cleanup()
		return nil, fmt.Errorf("create signature: %w", err)
	}

	if err := s.advance(ctx, doc, workflows.StatusSigned); err != nil {
		return nil, err
	}

	if err := s.audit(ctx, req.DocumentID, req.UserID, ActionSign,
		fmt.Sprintf("Signature image added to page %d", req.PageNumber),
		map[string]interface{}{
			"pageNumber":    req.PageNumber,
			"signatureType": KindImage,
			"position":      sig.Position,
		}, req.Request); err != nil {
		return nil, err
	}

	s.logger.Info("signature embedded",
		zap.String("document_id", req.DocumentID.String()),
		zap.Int("page", req.PageNumber))

	return sig, nil
}

// FinalizeSignatures embeds every pending placement in one pass. The result
// is written to a new file (name suffixed _signed) rather than overwriting,
// and the document is repointed at it.
func (s *documentService) FinalizeSignatures(ctx context.Context, documentID, userID uuid.UUID, info RequestInfo) (*FinalizeResult, error) {
	unlock := s.locks.lock(documentID)
	defer unlock()

	doc, err := s.repo.DocumentByID(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}

	pending, err := s.repo.PendingSignaturesByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list pending signatures: %w", err)
	}
	if len(pending) == 0 {
		return nil, ErrNoSignaturesToFinalize
	}

	pdfBytes, err := s.store.ReadFile(doc.FilePath)
	if err != nil {
		return nil, err
	}
	_, dims, err := s.embedder.PageInfo(pdfBytes)
	if err != nil {
		return nil, err
	}

	stamps := make([]pdf.Stamp, 0, len(pending))
	for _, sig := range pending {
		if sig.PageNumber < 1 || sig.PageNumber > len(dims) {
			return nil, fmt.Errorf("%w: page %d of %d", pdf.ErrPageOutOfRange, sig.PageNumber, len(dims))
		}
		page := dims[sig.PageNumber-1]
		rect, err := pdf.ToPageSpace(sig.Position.Placement(), page.Width, page.Height)
		if err != nil {
			return nil, err
		}

		artifact, err := s.artifactFor(sig)
		if err != nil {
			return nil, err
		}
		stamps = append(stamps, pdf.Stamp{Page: sig.PageNumber, Artifact: artifact, Rect: rect})
	}

	signed, err := s.embedder.EmbedAll(pdfBytes, stamps)
	if err != nil {
		return nil, err
	}

	newPath := signedVariant(doc.FilePath)
	if _, err := s.store.Save(newPath, signed); err != nil {
		return nil, err
	}

	for _, sig := range pending {
		if err := s.repo.MarkSignatureFinalized(ctx, sig.ID); err != nil {
			return nil, fmt.Errorf("finalize signature %s: %w", sig.ID, err)
		}
	}

	doc.FilePath = newPath
	if err := s.advance(ctx, doc, workflows.StatusSigned); err != nil {
		return nil, err
	}

	if err := s.audit(ctx, documentID, userID, ActionSign,
		fmt.Sprintf("Document finalized with %d signature(s)", len(pending)),
		map[string]interface{}{"signatureCount": len(pending)}, info); err != nil {
		return nil, err
	}

	s.logger.Info("signatures finalized",
		zap.String("document_id", documentID.String()),
		zap.Int("count", len(pending)))

	return &FinalizeResult{SignatureCount: len(pending), Document: doc}, nil
}

func (s *documentService) DeleteSignature(ctx context.Context, signatureID, userID uuid.UUID, info RequestInfo) error {
	sig, err := s.repo.SignatureByID(ctx, signatureID)
	if err != nil {
		return err
	}
	if _, err := s.repo.DocumentByID(ctx, sig.DocumentID, userID); err != nil {
		return err
	}
	if sig.Finalized {
		return ErrCannotDeleteFinalized
	}

	if err := s.repo.DeleteSignature(ctx, signatureID); err != nil {
		return fmt.Errorf("delete signature: %w", err)
	}

	return s.audit(ctx, sig.DocumentID, userID, ActionSign,
		fmt.Sprintf("Signature removed from page %d", sig.PageNumber),
		map[string]interface{}{"pageNumber": sig.PageNumber}, info)
}

func (s *documentService) DocumentAudit(ctx context.Context, documentID, userID uuid.UUID, page, limit int) ([]AuditRecord, error) {
	if _, err := s.repo.DocumentByID(ctx, documentID, userID); err != nil {
		return nil, err
	}
	return s.repo.AuditByDocument(ctx, documentID, page, limit)
}

func (s *documentService) UserAudit(ctx context.Context, userID uuid.UUID, page, limit int) ([]AuditRecord, error) {
	return s.repo.AuditByUser(ctx, userID, page, limit)
}

// advance moves the document status forward through the state machine and
// persists the document. Backward transitions are refused.
func (s *documentService) advance(ctx context.Context, doc *Document, to workflows.Status) error {
	if !s.states.CanTransition(doc.Status, to) {
		return fmt.Errorf("illegal status transition %s -> %s", doc.Status, to)
	}
	doc.Status = to
	doc.UpdatedAt = time.Now()
	if err := s.repo.UpdateDocument(ctx, doc); err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

// artifactFor loads the drawable content for a pending signature. Text
// signatures carry their payload inline; image and draw signatures point at
// a stored asset.
func (s *documentService) artifactFor(sig Signature) (pdf.Artifact, error) {
	switch sig.Kind {
	case KindText:
		return pdf.Artifact{Kind: pdf.ArtifactText, Text: sig.Data}, nil
	case KindImage, KindDraw:
		img, err := s.store.ReadFile(sig.Data)
		if err != nil {
			return pdf.Artifact{}, fmt.Errorf("read signature asset: %w", err)
		}
		return pdf.Artifact{Kind: pdf.ArtifactImage, Image: img, MIME: mimeFromExt(sig.Data)}, nil
	default:
		return pdf.Artifact{}, fmt.Errorf("unknown signature type %q", sig.Kind)
	}
}

func (s *documentService) audit(ctx context.Context, documentID, userID uuid.UUID, action AuditAction, description string, metadata map[string]interface{}, info RequestInfo) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	rec := &AuditRecord{
		ID:          uuid.New(),
		DocumentID:  documentID,
		UserID:      userID,
		Action:      action,
		Description: description,
		Metadata:    raw,
		IPAddress:   info.IP,
		UserAgent:   info.UserAgent,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.RecordAudit(ctx, rec); err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}

// resolvedPosition fixes the placement the way it is stored: the pixel
// rectangle resolved against the live page dimensions in top-left UI space,
// plus the percentage fields verbatim when supplied.
func resolvedPosition(p pdf.Placement, pageWidth, pageHeight float64) Position {
	if !p.HasPercent() {
		return Position(p)
	}
	return Position{
		X:             *p.XPercent / 100 * pageWidth,
		Y:             *p.YPercent / 100 * pageHeight,
		Width:         *p.WidthPercent / 100 * pageWidth,
		Height:        *p.HeightPercent / 100 * pageHeight,
		XPercent:      p.XPercent,
		YPercent:      p.YPercent,
		WidthPercent:  p.WidthPercent,
		HeightPercent: p.HeightPercent,
	}
}

// signedVariant derives the finalize output path: document.pdf ->
// document_signed.pdf.
func signedVariant(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_signed" + ext
}

func mimeFromExt(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}

// docLocks hands out one mutex per document id, serializing the operations
// that rewrite the PDF. Entries are refcounted and dropped once no caller
// holds or waits on them, so the map tracks in-flight documents only.
// In-process only; running multiple instances against the same storage
// still needs an external lock.
type docLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*docLock
}

type docLock struct {
	sync.Mutex
	refs int
}

func (l *docLocks) lock(id uuid.UUID) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &docLock{}
		l.locks[id] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
