package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is returned by operations with nothing else to say.
type MessageResponse struct {
	Message string `json:"message"`
}

// Paging holds the per_page default and ceiling applied to list endpoints.
type Paging struct {
	DefaultPerPage int
	MaxPerPage     int
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError maps the domain error taxonomy to a status code. Unexpected
// errors are logged and reported generically.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, msg := http.StatusInternalServerError, "internal server error"
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, "could not validate credentials"
		w.Header().Set("WWW-Authenticate", "Bearer")
	case errors.Is(err, domain.ErrForbidden):
		status, msg = http.StatusForbidden, "not permitted to view this record"
	case errors.Is(err, domain.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrExternalService):
		msg = "summarization failed"
		var ext *domain.ExternalServiceError
		if errors.As(err, &ext) {
			msg = ext.Error()
		}
		logger.Error("external service failure", slog.String("error", err.Error()))
	default:
		logger.Error("request failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// decodeJSON reads a single JSON object into v. An empty body is allowed
// when the caller's zero value is meaningful.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body too large", domain.ErrValidation)
		}
		return fmt.Errorf("%w: invalid JSON body", domain.ErrValidation)
	}
	return nil
}

// pathID parses the {id} wildcard.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: id must be a positive integer", domain.ErrValidation)
	}
	return id, nil
}

// pageFromQuery reads ?page and ?per_page.
func (p Paging) pageFromQuery(r *http.Request) (domain.Page, error) {
	q := r.URL.Query()
	number, err := queryInt(q.Get("page"), 1, "page")
	if err != nil {
		return domain.Page{}, err
	}
	perPage, err := queryInt(q.Get("per_page"), 0, "per_page")
	if err != nil {
		return domain.Page{}, err
	}
	return p.page(number, perPage)
}

// page validates body-supplied paging. A zero page selects the first.
func (p Paging) page(number, perPage int) (domain.Page, error) {
	if number == 0 {
		number = 1
	}
	if perPage == 0 {
		perPage = p.DefaultPerPage
	}
	return domain.NewPage(number, perPage, p.DefaultPerPage, p.MaxPerPage)
}

func queryInt(raw string, fallback int, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, name)
	}
	if n == 0 {
		// explicit zero is out of range, unlike an omitted value
		return 0, fmt.Errorf("%w: %s must be 1 or greater", domain.ErrValidation, name)
	}
	return n, nil
}

// SearchRequest is the body of the search endpoints.
type SearchRequest struct {
	Keyword string `json:"keyword"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}
