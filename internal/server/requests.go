package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/umlgen/internal/store"
)

const defaultListLimit = 50

// requestSummary is one row of GET /api/requests.
type requestSummary struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Model        string    `json:"param_model"`
	ExerciseType string    `json:"param_ex_type"`
	Difficulty   string    `json:"param_dif_level"`
	StudyGoal    string    `json:"param_study_goal"`
	Length       string    `json:"param_length"`
	Parsed       bool      `json:"parsed"`
	Evaluated    bool      `json:"evaluated"`
}

// requestDetail is the body of GET /api/requests/:id.
type requestDetail struct {
	requestSummary
	Prompt     string          `json:"prompt"`
	Response   string          `json:"response"`
	Exercise   json.RawMessage `json:"exercise,omitempty"`
	Evaluation json.RawMessage `json:"evaluation,omitempty"`
}

func summarize(r store.GenerationRecord) requestSummary {
	return requestSummary{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		Model:        r.Model,
		ExerciseType: r.ExerciseType,
		Difficulty:   r.Difficulty,
		StudyGoal:    r.StudyGoal,
		Length:       r.Length,
		Parsed:       r.Parsed,
		Evaluated:    len(r.Evaluation) > 0,
	}
}

func (s *Server) listRequests(c *gin.Context) {
	opts := store.QueryOpts{Limit: defaultListLimit, Model: c.Query("model")}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		opts.Limit = n
	}

	recs, err := s.records.List(c.Request.Context(), opts)
	if err != nil {
		s.logger.Error("list generations failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list requests"})
		return
	}

	out := make([]requestSummary, len(recs))
	for i, r := range recs {
		out[i] = summarize(r)
	}
	c.JSON(http.StatusOK, gin.H{"requests": out})
}

func (s *Server) getRequest(c *gin.Context) {
	rec, err := s.records.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	if err != nil {
		s.logger.Error("get generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load request"})
		return
	}

	c.JSON(http.StatusOK, requestDetail{
		requestSummary: summarize(*rec),
		Prompt:         rec.Prompt,
		Response:       rec.Response,
		Exercise:       rec.Exercise,
		Evaluation:     rec.Evaluation,
	})
}
