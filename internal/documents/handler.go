package documents

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jasamansinghchaggar/pdf-signature-app/pkg/pdf"
)

// Handler exposes the signing workflow over HTTP. Authentication is an
// external collaborator: the actor id arrives in the X-User-ID header, set
// by the fronting auth layer.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/documents")
	{
		docs.POST("/upload", h.Upload)
		docs.GET("", h.List)
		docs.GET("/:id", h.Get)
		docs.GET("/:id/download", h.Download)
		docs.DELETE("/:id", h.Delete)
		docs.POST("/:id/share", h.Share)
		docs.GET("/:id/audit", h.DocumentAudit)
		docs.GET("/:id/signatures", h.ListSignatures)
	}

	sigs := rg.Group("/signatures")
	{
		sigs.POST("", h.SaveSignature)
		sigs.POST("/finalize", h.Finalize)
		sigs.POST("/embed", h.Embed)
		sigs.DELETE("/:id", h.DeleteSignature)
	}

	rg.GET("/audit", h.UserAudit)
}

func (h *Handler) Upload(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "document file is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	doc, err := h.service.UploadDocument(c.Request.Context(), UploadRequest{
		Title:        c.PostForm("title"),
		OriginalName: file.Filename,
		MimeType:     file.Header.Get("Content-Type"),
		Size:         file.Size,
		Content:      content,
		UploadedBy:   userID,
		Request:      requestInfo(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"document": doc}})
}

func (h *Handler) List(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)

	docs, total, err := h.service.ListDocuments(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"documents": docs,
			"pagination": gin.H{
				"current":        page,
				"count":          len(docs),
				"totalDocuments": total,
			},
		},
	})
}

func (h *Handler) Get(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid document id"})
		return
	}

	doc, err := h.service.GetDocument(c.Request.Context(), id, userID, requestInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"document": doc}})
}

func (h *Handler) Download(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid document id"})
		return
	}

	doc, path, err := h.service.DownloadDocument(c.Request.Context(), id, userID, requestInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, doc.OriginalName)
}

func (h *Handler) Delete(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid document id"})
		return
	}

	if err := h.service.DeleteDocument(c.Request.Context(), id, userID, requestInfo(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Document and all associated signatures deleted successfully"})
}

func (h *Handler) Share(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid document id"})
		return
	}

	var body struct {
		Recipient string `json:"recipient" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := h.service.ShareDocument(c.Request.Context(), id, userID, body.Recipient, requestInfo(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Document shared successfully"})
}

func (h *Handler) SaveSignature(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var body struct {
		DocumentID uuid.UUID     `json:"documentId" binding:"required"`
		PageNumber int           `json:"pageNumber" binding:"required"`
		Position   Position      `json:"position"`
		Kind       SignatureKind `json:"signatureType" binding:"required"`
		Data       string        `json:"signatureData" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	sig, err := h.service.SaveSignature(c.Request.Context(), SaveSignatureRequest{
		DocumentID: body.DocumentID,
		UserID:     userID,
		PageNumber: body.PageNumber,
		Position:   body.Position,
		Kind:       body.Kind,
		Data:       body.Data,
		Request:    requestInfo(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Signature saved successfully", "data": gin.H{"signature": sig}})
}

func (h *Handler) ListSignatures(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid document id"})
		return
	}

	sigs, err := h.service.DocumentSignatures(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"signatures": sigs}})
}

func (h *Handler) Finalize(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var body struct {
		DocumentID uuid.UUID `json:"documentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	result, err := h.service.FinalizeSignatures(c.Request.Context(), body.DocumentID, userID, requestInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Signatures finalized successfully",
		"data": gin.H{
			"signatureCount": result.SignatureCount,
			"document":       result.Document,
		},
	})
}

// Embed handles the interactive single-shot path: multipart image plus the
// placement fields (percentage fields preferred when present).
func (h *Handler) Embed(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("signature")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No signature image uploaded"})
		return
	}

	documentID, err := uuid.Parse(c.PostForm("documentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid document id"})
		return
	}
	pageNumber, err := strconv.Atoi(c.PostForm("pageNumber"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid page number"})
		return
	}

	placement := pdf.Placement{
		X:             floatForm(c, "x"),
		Y:             floatForm(c, "y"),
		Width:         floatForm(c, "width"),
		Height:        floatForm(c, "height"),
		XPercent:      floatFormPtr(c, "xPercent"),
		YPercent:      floatFormPtr(c, "yPercent"),
		WidthPercent:  floatFormPtr(c, "widthPercent"),
		HeightPercent: floatFormPtr(c, "heightPercent"),
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	defer f.Close()
	image, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	sig, err := h.service.EmbedSignature(c.Request.Context(), EmbedSignatureRequest{
		DocumentID: documentID,
		UserID:     userID,
		PageNumber: pageNumber,
		Placement:  placement,
		Image:      image,
		ImageMime:  file.Header.Get("Content-Type"),
		ImageName:  file.Filename,
		Request:    requestInfo(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Signature embedded successfully", "data": gin.H{"signature": sig}})
}

func (h *Handler) DeleteSignature(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid signature id"})
		return
	}

	if err := h.service.DeleteSignature(c.Request.Context(), id, userID, requestInfo(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Signature deleted successfully"})
}

func (h *Handler) DocumentAudit(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid document id"})
		return
	}

	recs, err := h.service.DocumentAudit(c.Request.Context(), id, userID,
		intQuery(c, "page", 1), intQuery(c, "limit", 50))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"audit": recs}})
}

func (h *Handler) UserAudit(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}
	recs, err := h.service.UserAudit(c.Request.Context(), userID,
		intQuery(c, "page", 1), intQuery(c, "limit", 50))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"audit": recs}})
}

func actorID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetHeader("X-User-ID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing or invalid user identity"})
		return uuid.Nil, false
	}
	return id, true
}

func requestInfo(c *gin.Context) RequestInfo {
	return RequestInfo{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}

func floatForm(c *gin.Context, key string) float64 {
	v, _ := strconv.ParseFloat(c.PostForm(key), 64)
	return v
}

func floatFormPtr(c *gin.Context, key string) *float64 {
	raw := c.PostForm(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// respondError maps the error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrSignatureNotFound), errors.Is(err, ErrFileMissing):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalidPage),
		errors.Is(err, ErrCannotDeleteFinalized),
		errors.Is(err, ErrNoSignaturesToFinalize),
		errors.Is(err, ErrInvalidMimeType),
		errors.Is(err, pdf.ErrOutOfBounds),
		errors.Is(err, pdf.ErrPageOutOfRange),
		errors.Is(err, pdf.ErrCorruptDocument):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"success": false, "message": err.Error()})
}
