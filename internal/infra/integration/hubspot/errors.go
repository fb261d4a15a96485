package hubspot

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/brightforge/agency-leads/internal/usecase"
)

const categoryConflict = "CONFLICT"

// APIError is a non-2xx answer from the HubSpot API.
type APIError struct {
	StatusCode    int
	Category      string
	Message       string
	CorrelationID string
}

func (e *APIError) Error() string {
	if e.Category != "" {
		return fmt.Sprintf("hubspot: %d %s: %s", e.StatusCode, e.Category, e.Message)
	}
	return fmt.Sprintf("hubspot: %d: %s", e.StatusCode, e.Message)
}

// Is lets callers match a duplicate-contact answer with
// errors.Is(err, usecase.ErrContactExists).
func (e *APIError) Is(target error) bool {
	return target == usecase.ErrContactExists && e.Conflict()
}

func (e *APIError) Conflict() bool {
	return e.StatusCode == http.StatusConflict || e.Category == categoryConflict
}

func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Conflict()
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		apiErr.Category = payload.Category
		apiErr.Message = payload.Message
		apiErr.CorrelationID = payload.CorrelationID
		return apiErr
	}

	apiErr.Message = string(body)
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
