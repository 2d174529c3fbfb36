package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patil-aryan/lumos/internal/core"
	"github.com/patil-aryan/lumos/internal/service/chat"
)

// ChatController is the slice of the conversation controller the
// transport needs.
type ChatController interface {
	RunTurn(ctx context.Context, req chat.TurnRequest) (chat.TurnResult, error)
	RunTurnStream(ctx context.Context, req chat.TurnRequest) (<-chan chat.Event, error)
	SessionDetail(ctx context.Context, sessionID string) (core.SessionDetail, error)
}

type chatRequest struct {
	Message    string         `json:"message"`
	SessionID  string         `json:"session_id"`
	UserID     string         `json:"user_id"`
	SearchType string         `json:"search_type"`
	Metadata   map[string]any `json:"metadata"`
}

func (r chatRequest) toTurnRequest() chat.TurnRequest {
	return chat.TurnRequest{
		Message:   r.Message,
		SessionID: r.SessionID,
		UserID:    r.UserID,
		Mode:      core.SearchMode(r.SearchType),
		Metadata:  r.Metadata,
	}
}

// chat handles POST /api/chat.
func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	result, err := s.controller.RunTurn(c.Request.Context(), req.toTurnRequest())
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

// chatStream handles POST /api/chat/stream as server-sent events. Each
// event is one JSON object on a data: line.
func (s *Server) chatStream(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	events, err := s.controller.RunTurnStream(c.Request.Context(), req.toTurnRequest())
	if err != nil {
		if core.IsValidation(err) {
			errorJSON(c, http.StatusBadRequest, err)
			return
		}
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	for ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
		c.Writer.Flush()
	}
}

// session handles GET /api/chat/sessions/:session_id.
func (s *Server) session(c *gin.Context) {
	detail, err := s.controller.SessionDetail(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			errorJSON(c, http.StatusNotFound, err)
			return
		}
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
