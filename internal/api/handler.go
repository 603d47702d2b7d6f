package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"lawkit/adapters/reader"
	"lawkit/domain/law"
	"lawkit/internal/config"
	"lawkit/internal/errors"
)

// lawRequest is the body of POST /api/v1/law/:law.
type lawRequest struct {
	Data    json.RawMessage `json:"data"`
	Options *config.Options `json:"options"`
}

type lawResponse struct {
	RequestID string       `json:"request_id"`
	Results   []law.Result `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleLaw(c *gin.Context) {
	lawID := c.Param("law")
	requestID := c.GetString(requestIDKey)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.fail(c, errors.InvalidInput("request body too large or unreadable"))
		return
	}

	key := cacheKey(lawID, body)
	if s.responses != nil && lawID != string(law.Generation) {
		if results, ok := s.responses.Get(key); ok {
			c.Header("X-Cache", "hit")
			c.JSON(http.StatusOK, lawResponse{RequestID: requestID, Results: results})
			return
		}
	}

	var req lawRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.fail(c, errors.InvalidInput("malformed request: "+err.Error()))
		return
	}

	var input law.Input
	if len(req.Data) > 0 && string(req.Data) != "null" {
		input, err = reader.FromJSON(req.Data, "data")
		if err != nil {
			s.fail(c, err)
			return
		}
	}

	generic, specific := req.Options.Split()
	results, err := s.dispatcher.Law(c.Request.Context(), lawID, input, generic, specific)
	if err != nil {
		s.fail(c, err)
		return
	}

	if s.responses != nil && lawID != string(law.Generation) {
		s.responses.Add(key, results)
	}
	c.JSON(http.StatusOK, lawResponse{RequestID: requestID, Results: results})
}

// fail maps error codes onto HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeInvalidConfiguration, errors.CodeUnknownLaw, errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeInsufficientData, errors.CodeComputationError:
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("analysis failed", "error", err, requestIDKey, c.GetString(requestIDKey))
	}
	c.JSON(status, errorResponse{Error: err.Error(), Code: code})
}

func cacheKey(lawID string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(lawID))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
