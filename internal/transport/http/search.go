package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/patil-aryan/lumos/internal/core"
)

// Searcher is the slice of the search orchestrator the transport needs.
type Searcher interface {
	Search(ctx context.Context, query core.Query) (core.SearchOutcome, error)
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type searchResponse struct {
	core.SearchOutcome
	Total       int   `json:"total_results"`
	QueryTimeMs int64 `json:"query_time_ms"`
}

// searchHandler serves POST /api/search/{vector,graph,hybrid}. The
// mode comes from the route, not the body.
func (s *Server) searchHandler(mode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req searchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errorJSON(c, http.StatusBadRequest, err)
			return
		}

		started := time.Now()
		outcome, err := s.searcher.Search(c.Request.Context(), core.Query{
			Text:  req.Query,
			Mode:  core.SearchMode(mode),
			Limit: req.Limit,
		})
		if err != nil {
			if core.IsValidation(err) {
				errorJSON(c, http.StatusBadRequest, err)
				return
			}
			errorJSON(c, http.StatusInternalServerError, err)
			return
		}

		c.JSON(http.StatusOK, searchResponse{
			SearchOutcome: outcome,
			Total:         outcome.Total(),
			QueryTimeMs:   time.Since(started).Milliseconds(),
		})
	}
}
