package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/umlgen/internal/exercise"
	"github.com/abhisek/umlgen/internal/llm"
)

// generateRequest is the body of POST /api/generate.
type generateRequest struct {
	Parameters json.RawMessage `json:"parameters"`
	Evaluate   bool            `json:"evaluate"`
}

// generateResponse is the body returned for a completed generation.
type generateResponse struct {
	ID         string          `json:"id"`
	Prompt     string          `json:"prompt"`
	Response   any             `json:"response"`
	Parameters json.RawMessage `json:"parameters"`
	Parsed     bool            `json:"parsed"`
	Evaluation any             `json:"evaluation,omitempty"`
}

func (s *Server) generate(c *gin.Context) {
	var body generateRequest
	var fields map[string]any
	if err := c.ShouldBindJSON(&body); err != nil || json.Unmarshal(body.Parameters, &fields) != nil || len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parameters must be a non-empty object"})
		return
	}

	var params exercise.ParameterSet
	if err := json.Unmarshal(body.Parameters, &params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parameters must be strings: " + err.Error()})
		return
	}

	res, err := s.gen.Generate(c.Request.Context(), params, body.Evaluate)
	if err != nil {
		s.writeError(c, err)
		return
	}

	rec, err := res.Record()
	if err == nil {
		err = s.records.Save(c.Request.Context(), rec)
	}
	if err != nil {
		s.logger.Error("store generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store generation"})
		return
	}

	out := generateResponse{
		ID:         rec.ID,
		Prompt:     res.Prompt,
		Response:   res.Response(),
		Parameters: body.Parameters,
		Parsed:     res.Parsed(),
	}
	if res.Evaluation != nil {
		out.Evaluation = res.Evaluation
	}
	c.JSON(http.StatusOK, out)
}

// statusFor maps pipeline errors to HTTP statuses. Provider failures are
// reported as gateway errors since the fault is upstream.
func statusFor(err error) int {
	var (
		verr     *exercise.ValidationError
		unknown  *llm.ErrUnknownModel
		rl       *llm.ErrRateLimit
		auth     *llm.ErrAuth
		bad      *llm.ErrMalformedResponse
		rejected *llm.ErrRequestRejected
		unavail  *llm.ErrProviderUnavailable
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &unknown):
		return http.StatusBadRequest
	case errors.As(err, &rl):
		return http.StatusTooManyRequests
	case errors.As(err, &auth), errors.As(err, &bad), errors.As(err, &rejected):
		return http.StatusBadGateway
	case errors.As(err, &unavail):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}

	var verr *exercise.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	var rl *llm.ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(rl.RetryAfter.Seconds())))
	}
	if status >= http.StatusInternalServerError {
		body["class"] = llm.ErrorClass(err)
		s.logger.Error("generation failed", zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, body)
}
