package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"ratemate/internal/models"
	"ratemate/internal/service/assistant"
	"ratemate/internal/session"
)

const maxUploadBytes = 10 << 20 // 10 MB

// Assistant is the pipeline surface the handlers depend on.
type Assistant interface {
	Ask(ctx context.Context, req assistant.AskRequest) (string, error)
	AskDocument(ctx context.Context, filename, contentType string, data []byte, question string) (answer, documentContent string, err error)
	Stats(ctx context.Context) models.CorpusStats
}

// Handler wires HTTP routes to the answer pipeline and session resolver.
type Handler struct {
	assistant Assistant
	sessions  *session.Resolver
}

// NewHandler constructs a Handler instance.
func NewHandler(service Assistant, sessions *session.Resolver) *Handler {
	return &Handler{
		assistant: service,
		sessions:  sessions,
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.GET("/health", h.health)
	api.POST("/ask", h.ask)
	api.POST("/upload-and-ask", h.uploadAndAsk)
	api.POST("/upload-image", h.uploadImage)
}

func (h *Handler) health(c *gin.Context) {
	stats := h.assistant.Stats(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"corpus": gin.H{
			"posts":       stats.Posts,
			"comments":    stats.Comments,
			"attachments": stats.Attachments,
		},
	})
}

// conversation_history binds through a pointer so an explicitly provided
// empty array (an override clearing context) stays distinguishable from an
// absent field (fall back to stored history).
type askRequest struct {
	Question            string         `json:"question"`
	ImageData           string         `json:"image_data"`
	ConversationHistory *[]models.Turn `json:"conversation_history"`
}

func (h *Handler) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}

	sessionID, hadToken, err := h.sessions.Resolve(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": internalDetail(err)})
		return
	}

	askReq := assistant.AskRequest{
		SessionID: sessionID,
		Question:  req.Question,
		ImageData: req.ImageData,
	}
	if req.ConversationHistory != nil {
		askReq.ClientHistory = *req.ConversationHistory
		askReq.HistoryProvided = true
	}
	answer, err := h.assistant.Ask(c.Request.Context(), askReq)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrEmptyQuestion):
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Question cannot be empty if no image is provided"})
		case errors.Is(err, assistant.ErrEmbedding):
			log.Error().Err(err).Msg("embedding failed")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to process question due to embedding error."})
		default:
			log.Error().Err(err).Msg("ask handler failed")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": internalDetail(err)})
		}
		return
	}

	// Refresh-on-absence: never overwrite an inbound token.
	if !hadToken {
		h.sessions.Issue(c, sessionID)
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

func (h *Handler) uploadAndAsk(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}
	question := c.PostForm("question")

	data, contentType, err := readUpload(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading uploaded file"})
		return
	}

	answer, documentContent, err := h.assistant.AskDocument(c.Request.Context(), file.Filename, contentType, data, question)
	if err != nil {
		if errors.Is(err, assistant.ErrUnsupportedFileType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type. Please upload a PDF or DOCX file."})
			return
		}
		log.Error().Err(err).Str("file", file.Filename).Msg("document question failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalDetail(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"answer":          answer,
		"documentContent": documentContent,
	})
}

var allowedImageTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/jpg":  {},
}

func (h *Handler) uploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No file uploaded."})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "File too large."})
		return
	}

	data, contentType, err := readUpload(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": fmt.Sprintf("Error processing image: %s", err)})
		return
	}
	if _, ok := allowedImageTypes[contentType]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": fmt.Sprintf("File type not supported. Allowed types: .png, .jpg, .jpeg. Received: %s", contentType),
		})
		return
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"image_data": dataURL,
		"message":    "Image processed successfully",
	})
}

// readUpload pulls the whole file into memory and sniffs its content type,
// falling back to the client-declared type when sniffing is inconclusive.
// Word documents are zip containers, so sniffing alone cannot identify them.
func readUpload(file *multipart.FileHeader) ([]byte, string, error) {
	f, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}

	contentType := http.DetectContentType(data)
	declared := file.Header.Get("Content-Type")
	if isGenericType(contentType) && declared != "" {
		contentType = declared
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	return data, contentType, nil
}

func isGenericType(ct string) bool {
	switch {
	case strings.HasPrefix(ct, "application/octet-stream"),
		strings.HasPrefix(ct, "application/zip"),
		strings.HasPrefix(ct, "text/plain"):
		return true
	}
	return false
}

// internalDetail hides raw errors behind a generic message in release mode.
func internalDetail(err error) string {
	if gin.Mode() == gin.ReleaseMode {
		return "An internal server error occurred."
	}
	return err.Error()
}
