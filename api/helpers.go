package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/clearrights/repository"
	"github.com/clearrights/repository/errs"
)

// maxPayloadBytes caps request bodies; RDF payloads are small documents.
const maxPayloadBytes = 10 << 20

type envelope struct {
	Status int        `json:"status"`
	Data   any        `json:"data,omitempty"`
	Errors []apiError `json:"errors,omitempty"`
}

type apiError struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Status: status, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// store internals stay out of responses
		message = "internal error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{
		Status: status,
		Errors: []apiError{{Source: "repository", Message: message}},
	})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, repository.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// contentType returns the request's media type without parameters.
func contentType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return ct
}

// readBody reads a raw RDF payload.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		return nil, errs.Validationf("unable to read request body: %v", err)
	}
	if len(body) == 0 {
		return nil, errs.Validationf("empty request body")
	}
	return body, nil
}

// readJSON decodes a JSON request body into v.
func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxPayloadBytes))
	if err := dec.Decode(v); err != nil {
		return errs.Validationf("invalid JSON body: %v", err)
	}
	return nil
}

// pagination parses the page and page_size query parameters. Missing or
// malformed values fall back to the service defaults.
func pagination(r *http.Request) (page, pageSize int) {
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil {
		pageSize = v
	}
	if page < 1 {
		page = 1
	}
	return page, pageSize
}
