package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patil-aryan/lumos/internal/core"
	"github.com/patil-aryan/lumos/internal/service/ingest"
)

// Ingester is the slice of the ingest service the transport needs.
type Ingester interface {
	IngestDocument(ctx context.Context, doc ingest.Document) (ingest.Result, error)
}

type ingestRequest struct {
	DocumentID string         `json:"document_id"`
	Title      string         `json:"title"`
	Source     string         `json:"source"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
}

// ingestDocument handles POST /api/ingest/documents.
func (s *Server) ingestDocument(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	result, err := s.ingester.IngestDocument(c.Request.Context(), ingest.Document{
		ID:       req.DocumentID,
		Title:    req.Title,
		Source:   req.Source,
		Content:  req.Content,
		Metadata: req.Metadata,
	})
	if err != nil {
		if core.IsValidation(err) {
			errorJSON(c, http.StatusBadRequest, err)
			return
		}
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
