package documents

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jasamansinghchaggar/pdf-signature-app/pkg/pdf"
	"github.com/jasamansinghchaggar/pdf-signature-app/pkg/workflows"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateDocument(ctx context.Context, doc *Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockRepository) DocumentByID(ctx context.Context, id, ownerID uuid.UUID) (*Document, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Document), args.Error(1)
}

func (m *MockRepository) ListDocuments(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]Document, int, error) {
	args := m.Called(ctx, ownerID, page, limit)
	return args.Get(0).([]Document), args.Int(1), args.Error(2)
}

func (m *MockRepository) UpdateDocument(ctx context.Context, doc *Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockRepository) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) CreateSignature(ctx context.Context, sig *Signature) error {
	args := m.Called(ctx, sig)
	return args.Error(0)
}

func (m *MockRepository) SignatureByID(ctx context.Context, id uuid.UUID) (*Signature, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Signature), args.Error(1)
}

func (m *MockRepository) SignaturesByDocument(ctx context.Context, documentID uuid.UUID) ([]Signature, error) {
	args := m.Called(ctx, documentID)
	return args.Get(0).([]Signature), args.Error(1)
}

func (m *MockRepository) PendingSignaturesByDocument(ctx context.Context, documentID uuid.UUID) ([]Signature, error) {
	args := m.Called(ctx, documentID)
	return args.Get(0).([]Signature), args.Error(1)
}

func (m *MockRepository) MarkSignatureFinalized(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) DeleteSignature(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) DeleteSignaturesByDocument(ctx context.Context, documentID uuid.UUID) (int64, error) {
	args := m.Called(ctx, documentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) RecordAudit(ctx context.Context, rec *AuditRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRepository) AuditByDocument(ctx context.Context, documentID uuid.UUID, page, limit int) ([]AuditRecord, error) {
	args := m.Called(ctx, documentID, page, limit)
	return args.Get(0).([]AuditRecord), args.Error(1)
}

func (m *MockRepository) AuditByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]AuditRecord, error) {
	args := m.Called(ctx, userID, page, limit)
	return args.Get(0).([]AuditRecord), args.Error(1)
}

// fakeEmbedder stands in for the gofpdf-backed embedder so workflow tests
// never touch real PDF bytes.
type fakeEmbedder struct {
	pages  int
	dims   []pdf.Dim
	output []byte
	err    error

	embedCalls int
	lastStamps []pdf.Stamp
}

func (f *fakeEmbedder) PageInfo(doc []byte) (int, []pdf.Dim, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	return f.pages, f.dims, nil
}

func (f *fakeEmbedder) Embed(doc []byte, page int, artifact pdf.Artifact, rect pdf.Rect) ([]byte, error) {
	return f.EmbedAll(doc, []pdf.Stamp{{Page: page, Artifact: artifact, Rect: rect}})
}

func (f *fakeEmbedder) EmbedAll(doc []byte, stamps []pdf.Stamp) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.embedCalls++
	f.lastStamps = stamps
	return f.output, nil
}

func twoPageEmbedder() *fakeEmbedder {
	return &fakeEmbedder{
		pages:  2,
		dims:   []pdf.Dim{{Width: 600, Height: 800}, {Width: 600, Height: 800}},
		output: []byte("signed bytes"),
	}
}

func newTestService(t *testing.T, repo Repository, embedder pdf.Embedder) (Service, FileStore) {
	t.Helper()
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	return NewService(repo, store, embedder, zap.NewNop()), store
}

func testDocument(owner uuid.UUID, pages int, status workflows.Status) *Document {
	return &Document{
		ID:         uuid.New(),
		Title:      "contract.pdf",
		Filename:   "contract.pdf",
		FilePath:   "contract.pdf",
		MimeType:   PDFMimeType,
		PageCount:  pages,
		UploadedBy: owner,
		Status:     status,
	}
}

func fp(v float64) *float64 { return &v }

// listFiles returns the plain files directly under dir in the store root.
func listFiles(t *testing.T, store FileStore, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(store.Resolve(dir))
	require.NoError(t, err)
	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e.Name())
		}
	}
	return files
}

func TestUploadDocument(t *testing.T) {
	mockRepo := new(MockRepository)
	service, store := newTestService(t, mockRepo, twoPageEmbedder())

	ctx := context.Background()
	userID := uuid.New()

	mockRepo.On("CreateDocument", ctx, mock.AnythingOfType("*documents.Document")).Return(nil)
	mockRepo.On("RecordAudit", ctx, mock.AnythingOfType("*documents.AuditRecord")).Return(nil)

	doc, err := service.UploadDocument(ctx, UploadRequest{
		Title:        "Lease agreement",
		OriginalName: "lease.pdf",
		MimeType:     PDFMimeType,
		Size:         1024,
		Content:      []byte("%PDF-1.4 fake"),
		UploadedBy:   userID,
	})

	assert.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Lease agreement", doc.Title)
	assert.Equal(t, 2, doc.PageCount)
	assert.Equal(t, workflows.StatusUploaded, doc.Status)
	assert.True(t, store.Exists(doc.FilePath))

	mockRepo.AssertExpectations(t)
}

func TestUploadDocumentRejectsNonPDF(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _ := newTestService(t, mockRepo, twoPageEmbedder())

	_, err := service.UploadDocument(context.Background(), UploadRequest{
		OriginalName: "photo.png",
		MimeType:     "image/png",
		Content:      []byte("png bytes"),
		UploadedBy:   uuid.New(),
	})

	assert.ErrorIs(t, err, ErrInvalidMimeType)
	mockRepo.AssertNotCalled(t, "CreateDocument", mock.Anything, mock.Anything)
}

func TestUploadDocumentCleansUpOnParseFailure(t *testing.T) {
	mockRepo := new(MockRepository)
	service, store := newTestService(t, mockRepo, &fakeEmbedder{err: pdf.ErrCorruptDocument})

	_, err := service.UploadDocument(context.Background(), UploadRequest{
		OriginalName: "broken.pdf",
		MimeType:     PDFMimeType,
		Content:      []byte("not a pdf"),
		UploadedBy:   uuid.New(),
	})

	assert.ErrorIs(t, err, pdf.ErrCorruptDocument)
	mockRepo.AssertNotCalled(t, "CreateDocument", mock.Anything, mock.Anything)

	// The stored file must not survive the failed upload.
	assert.Empty(t, listFiles(t, store, "."))
}

func TestUploadDocumentCleansUpOnRepoFailure(t *testing.T) {
	mockRepo := new(MockRepository)
	service, store := newTestService(t, mockRepo, twoPageEmbedder())

	ctx := context.Background()
	var storedPath string
	mockRepo.On("CreateDocument", ctx, mock.AnythingOfType("*documents.Document")).
		Run(func(args mock.Arguments) {
			storedPath = args.Get(1).(*Document).FilePath
		}).
		Return(assert.AnError)

	_, err := service.UploadDocument(ctx, UploadRequest{
		OriginalName: "lease.pdf",
		MimeType:     PDFMimeType,
		Content:      []byte("%PDF-1.4 fake"),
		UploadedBy:   uuid.New(),
	})

	assert.Error(t, err)
	assert.False(t, store.Exists(storedPath))
}

func TestSaveSignatureAdvancesToSigning(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _ := newTestService(t, mockRepo, twoPageEmbedder())

	ctx := context.Background()
	userID := uuid.New()
	doc := testDocument(userID, 2, workflows.StatusUploaded)

	mockRepo.On("DocumentByID", ctx, doc.ID, userID).Return(doc, nil)
	mockRepo.On("CreateSignature", ctx, mock.AnythingOfType("*documents.Signature")).Return(nil)
	mockRepo.On("UpdateDocument", ctx, doc).Return(nil)
	mockRepo.On("RecordAudit", ctx, mock.AnythingOfType("*documents.AuditRecord")).Return(nil)

	sig, err := service.SaveSignature(ctx, SaveSignatureRequest{
		DocumentID: doc.ID,
		UserID:     userID,
		PageNumber: 2,
		Position:   Position{X: 10, Y: 10, Width: 100, Height: 20},
		Kind:       KindText,
		Data:       "John Hancock",
	})

	assert.NoError(t, err)
	require.NotNil(t, sig)
	assert.False(t, sig.Finalized)
	assert.Equal(t, workflows.StatusSigning, doc.Status)

	mockRepo.AssertExpectations(t)
}

func TestSaveSignatureInvalidPage(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _ := newTestService(t, mockRepo, twoPageEmbedder())

	ctx := context.Background()
	userID := uuid.New()
	doc := testDocument(userID, 3, workflows.StatusUploaded)

	mockRepo.On("DocumentByID", ctx, doc.ID, userID).Return(doc, nil)

	_, err := service.SaveSignature(ctx, SaveSignatureRequest{
		DocumentID: doc.ID,
		UserID:     userID,
		PageNumber: 5,
		Kind:       KindText,
		Data:       "x",
	})

	assert.ErrorIs(t, err, ErrInvalidPage)
	mockRepo.AssertNotCalled(t, "CreateSignature", mock.Anything, mock.Anything)
}

func TestSaveSignatureKeepsSignedStatus(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _ := newTestService(t, mockRepo, twoPageEmbedder())

	ctx := context.Background()
	userID := uuid.New()
	doc := testDocument(userID, 2, workflows.StatusSigned)

	mockRepo.On("DocumentByID", ctx, doc.ID, userID).Return(doc, nil)
	mockRepo.On("CreateSignature", ctx, mock.AnythingOfType("*documents.Signature")).Return(nil)
	mockRepo.On("RecordAudit", ctx, mock.AnythingOfType("*documents.AuditRecord")).Return(nil)

	_, err := service.SaveSignature(ctx, SaveSignatureRequest{
		DocumentID: doc.ID,
		UserID:     userID,
		PageNumber: 1,
		Kind:       KindText,
		Data:       "late addition",
	})

	assert.NoError(t, err)
	// Status is monotonic: a signed document never regresses to signing.
	assert.Equal(t, workflows.StatusSigned, doc.Status)
	mockRepo.AssertNotCalled(t, "UpdateDocument", mock.Anything, mock.Anything)
}

func TestEmbedSignature(t *testing.T) {
	mockRepo := new(MockRepository)
	embedder := twoPageEmbedder()
	service, store := newTestService(t, mockRepo, embedder)

	ctx := context.Background()
	userID := uuid.New()
	doc := testDocument(userID, 2, workflows.StatusUploaded)
	_, err := store.Save(doc.FilePath, []byte("original pdf"))
	require.NoError(t, err)

	mockRepo.On("DocumentByID", ctx, doc.ID, userID).Return(doc, nil)
	mockRepo.On("CreateSignature", ctx, mock.AnythingOfType("*documents.Signature")).Return(nil)
	mockRepo.On("UpdateDocument", ctx, doc).Return(nil)
	mockRepo.On("RecordAudit", ctx, mock.AnythingOfType("*documents.AuditRecord")).Return(nil)

	sig, err := service.EmbedSignature(ctx, EmbedSignatureRequest{
		DocumentID: doc.ID,
		UserID:     userID,
		PageNumber: 1,
		Placement: pdf.Placement{
			XPercent: fp(50), YPercent: fp(0), WidthPercent: fp(20), HeightPercent: fp(10),
		},
		Image:     []byte("png bytes"),
		ImageMime: "image/png",
		ImageName: "scrawl.png",
	})

	assert.NoError(t, err)
	require.NotNil(t, sig)
	assert.True(t, sig.Finalized)
	assert.Equal(t, KindImage, sig.Kind)
	assert.Equal(t, SignatureDir, filepath.Dir(sig.Data))
	assert.True(t, store.Exists(sig.Data))

	// Resolved position keeps the percent fields and the pixel equivalents.
	assert.Equal(t, 300.0, sig.Position.X)
	assert.Equal(t, 120.0, sig.Position.Width)
	assert.Equal(t, 80.0, sig.Position.Height)
	require.NotNil(t, sig.Position.XPercent)
	assert.Equal(t, 50.0, *sig.Position.XPercent)

	// The embed-immediately path overwrites the original file in place.
	content, err := store.ReadFile(doc.FilePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("signed bytes"), content)
	assert.Equal(t, workflows.StatusSigned, doc.Status)

	mockRepo.AssertExpectations(t)
}

func TestEmbedSignatureCleansUpAssetOnFailure(t *testing.T) {
	mockRepo := new(MockRepository)
	service, store := newTestService(t, mockRepo, twoPageEmbedder())

	ctx := context.Background()
	userID := uuid.New()
	docID := uuid.New()

	mockRepo.On("DocumentByID", ctx, docID, userID).Return(nil, ErrNotFound)

	_, err := service.EmbedSignature(ctx, EmbedSignatureRequest{
		DocumentID: docID,
		UserID:     userID,
		PageNumber: 1,
		Placement:  pdf.Placement{X: 10, Y: 10, Width: 50, Height: 20},
		Image:      []byte("png bytes"),
		ImageMime:  "image/png",
		ImageName:  "scrawl.png",
	})

	assert.ErrorIs(t, err, ErrNotFound)

	// No orphaned asset may remain under signatures/.
	assert.Empty(t, listFiles(t, store, SignatureDir))
}

func TestEmbedSignatureStalePageCount(t *testing.T) {
	mockRepo := new(MockRepository)
	embedder := &fakeEmbedder{
		pages:  1,
		dims:   []pdf.Dim{{Width: 600, Height: 800}},
		output: []byte("signed bytes"),
	}
	service, store := newTestService(t, mockRepo, embedder)

	ctx := context.Background()
	userID := uuid.New()
	// Stored page_count lags the live single-page file.
	doc := testDocument(userID, 3, workflows.StatusUploaded)
	_, err := store.Save(doc.FilePath, []byte("original pdf"))
	require.NoError(t, err)

	mockRepo.On("DocumentByID", ctx, doc.ID, userID).Return(doc, nil)

	_, err = service.EmbedSignature(ctx, EmbedSignatureRequest{
		DocumentID: doc.ID,
		UserID:     userID,
		PageNumber: 2,
		Placement:  pdf.Placement{X: 10, Y: 10, Width: 50, Height: 20},
		Image:      []byte("png bytes"),
		ImageMime:  "image/png",
		ImageName:  "scrawl.png",
	})

	assert.ErrorIs(t, err, pdf.ErrPageOutOfRange)
	mockRepo.AssertNotCalled(t, "CreateSignature", mock.Anything, mock.Anything)
	assert.Empty(t, listFiles(t, store, SignatureDir))

	content, readErr := store.ReadFile(doc.FilePath)
	require.NoError(t, readErr)
	assert.Equal(t, []byte("original pdf"), content)
}

func TestFinalizeSignatures(t *testing.T) {
	mockRepo := new(MockRepository)
	embedder := twoPageEmbedder()
	service, store := newTestService(t, mockRepo, embedder)

	ctx := context.Background()
	userID := uuid.New()
	doc := testDocument(userID, 2, workflows.StatusSigning)
	_, err := store.Save(doc.FilePath, []byte("original pdf"))
	require.NoError(t, err)

	assetPath := filepath.Join(SignatureDir, "drawn.png")
	_, err = store.Save(assetPath, []byte("png bytes"))
	require.NoError(t, err)

	pending := []Signature{
		{
			ID: uuid.New(), DocumentID: doc.ID, UserID: userID, PageNumber: 1,
			Position: Position{X: 10, Y: 10, Width: 100, Height: 20},
			Kind:     KindText, Data: "John Hancock",
		},
		{
			ID: uuid.New(), DocumentID: doc.ID, UserID: userID, PageNumber: 2,
			Position: Position{X: 50, Y: 50, Width: 120, Height: 60},
			Kind:     KindDraw, Data: assetPath,
		},
	}

	mockRepo.On("DocumentByID", ctx, doc.ID, userID).Return(doc, nil)
	mockRepo.On("PendingSignaturesByDocument", ctx, doc.ID).Return(pending, nil)
	mockRepo.On("MarkSignatureFinalized", ctx, pending[0].ID).Return(nil)
	mockRepo.On("MarkSignatureFinalized", ctx, pending[1].ID).Return(nil)
	mockRepo.On("UpdateDocument", ctx, doc).Return(nil)
	mockRepo.On("RecordAudit", ctx, mock.AnythingOfType("*documents.AuditRecord")).Return(nil)

	result, err := service.FinalizeSignatures(ctx, doc.ID, userID, RequestInfo{})

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.SignatureCount)
	assert.Equal(t, workflows.StatusSigned, doc.Status)
	assert.Equal(t, "contract_signed.pdf", doc.FilePath)

	// Finalize writes a new file and leaves the original in place.
	assert.True(t, store.Exists("contract_signed.pdf"))
	assert.True(t, store.Exists("contract.pdf"))

	// Both kinds get embedded, not just text.
	require.Len(t, embedder.lastStamps, 2)
	assert.Equal(t, pdf.ArtifactText, embedder.lastStamps[0].Artifact.Kind)
	assert.Equal(t, pdf.ArtifactImage, embedder.lastStamps[1].Artifact.Kind)

	mockRepo.AssertExpectations(t)
}

func TestFinalizeSignaturesNonePending(t *testing.T) {
	mockRepo := new(MockRepository)
	embedder := twoPageEmbedder()
	service, store := newTestService(t, mockRepo, embedder)

	ctx := context.Background()
	userID := uuid.New()
	doc := testDocument(userID, 2, workflows.StatusSigned)
	_, err := store.Save(doc.FilePath, []byte("original pdf"))
	require.NoError(t, err)

	mockRepo.On("DocumentByID", ctx, doc.ID, userID).Return(doc, nil)
	mockRepo.On("PendingSignaturesByDocument", ctx, doc.ID).Return([]Signature{}, nil)

	_, err = service.FinalizeSignatures(ctx, doc.ID, userID, RequestInfo{})

	assert.ErrorIs(t, err, ErrNoSignaturesToFinalize)
	assert.Zero(t, embedder.embedCalls)

	// No file mutation on the failure path.
	content, readErr := store.ReadFile(doc.FilePath)
	require.NoError(t, readErr)
	assert.Equal(t, []byte("original pdf"), content)
	assert.False(t, store.Exists("contract_signed.pdf"))
}

func TestDeleteSignatureFinalized(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _ := newTestService(t, mockRepo, twoPageEmbedder())

	ctx := context.Background()
	userID := uuid.New()
	doc := testDocument(userID, 2, workflows.StatusSigned)
	sig := &Signature{ID: uuid.New(), DocumentID: doc.ID, UserID: userID, PageNumber: 1, Finalized: true}

	mockRepo.On("SignatureByID", ctx, sig.ID).Return(sig, nil)
	mockRepo.On("DocumentByID", ctx, doc.ID, userID).Return(doc, nil)

	err := service.DeleteSignature(ctx, sig.ID, userID, RequestInfo{})

	assert.ErrorIs(t, err, ErrCannotDeleteFinalized)
	mockRepo.AssertNotCalled(t, "DeleteSignature", mock.Anything, mock.Anything)
}

func TestDeleteSignature(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _ := newTestService(t, mockRepo, twoPageEmbedder())

	ctx := context.Background()
	userID := uuid.New()
	doc := testDocument(userID, 2, workflows.StatusSigning)
	sig := &Signature{ID: uuid.New(), DocumentID: doc.ID, UserID: userID, PageNumber: 2}

	mockRepo.On("SignatureByID", ctx, sig.ID).Return(sig, nil)
	mockRepo.On("DocumentByID", ctx, doc.ID, userID).Return(doc, nil)
	mockRepo.On("DeleteSignature", ctx, sig.ID).Return(nil)
	mockRepo.On("RecordAudit", ctx, mock.AnythingOfType("*documents.AuditRecord")).Return(nil)

	err := service.DeleteSignature(ctx, sig.ID, userID, RequestInfo{})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestDeleteDocumentCascade(t *testing.T) {
	mockRepo := new(MockRepository)
	service, store := newTestService(t, mockRepo, twoPageEmbedder())

	ctx := context.Background()
	userID := uuid.New()
	doc := testDocument(userID, 2, workflows.StatusSigned)
	_, err := store.Save(doc.FilePath, []byte("original pdf"))
	require.NoError(t, err)

	presentAsset := filepath.Join(SignatureDir, "present.png")
	_, err = store.Save(presentAsset, []byte("png bytes"))
	require.NoError(t, err)

	sigs := []Signature{
		{ID: uuid.New(), DocumentID: doc.ID, Kind: KindImage, Data: presentAsset},
		// Asset already gone from disk; the cascade must not care.
		{ID: uuid.New(), DocumentID: doc.ID, Kind: KindImage, Data: filepath.Join(SignatureDir, "missing.png")},
		{ID: uuid.New(), DocumentID: doc.ID, Kind: KindText, Data: "inline"},
	}

	mockRepo.On("DocumentByID", ctx, doc.ID, userID).Return(doc, nil)
	mockRepo.On("SignaturesByDocument", ctx, doc.ID).Return(sigs, nil)
	mockRepo.On("DeleteSignaturesByDocument", ctx, doc.ID).Return(int64(3), nil)
	mockRepo.On("DeleteDocument", ctx, doc.ID).Return(nil)
	mockRepo.On("RecordAudit", ctx, mock.AnythingOfType("*documents.AuditRecord")).Return(nil)

	err = service.DeleteDocument(ctx, doc.ID, userID, RequestInfo{})

	assert.NoError(t, err)
	assert.False(t, store.Exists(doc.FilePath))
	assert.False(t, store.Exists(presentAsset))
	mockRepo.AssertExpectations(t)
}

func TestDocLocksDropIdleEntries(t *testing.T) {
	l := docLocks{locks: make(map[uuid.UUID]*docLock)}
	id := uuid.New()

	unlock := l.lock(id)

	done := make(chan struct{})
	go func() {
		defer close(done)
		u := l.lock(id)
		u()
	}()

	// The second caller queues behind the held lock.
	select {
	case <-done:
		t.Fatal("lock acquired twice for the same document")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	<-done

	// Nothing in flight: the map holds no entries.
	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.locks)
}

func TestDocumentSignaturesRequiresOwnership(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _ := newTestService(t, mockRepo, twoPageEmbedder())

	ctx := context.Background()
	docID, userID := uuid.New(), uuid.New()
	mockRepo.On("DocumentByID", ctx, docID, userID).Return(nil, ErrNotFound)

	_, err := service.DocumentSignatures(ctx, docID, userID)

	assert.ErrorIs(t, err, ErrNotFound)
	mockRepo.AssertNotCalled(t, "SignaturesByDocument", mock.Anything, mock.Anything)
}
