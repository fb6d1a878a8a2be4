package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/model"
)

// ExtractRequest is the body of POST /v1/extract.
type ExtractRequest struct {
	Transcript   string `json:"transcript"`
	CategoryHint string `json:"category_hint,omitempty"`
	CaseID       string `json:"case_id,omitempty"`
}

// BatchRequest is the body of POST /v1/extract/batch.
type BatchRequest struct {
	Items []ExtractRequest `json:"items"`
}

// BatchResponse holds results in request order.
type BatchResponse struct {
	Results []any `json:"results"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// extract runs one transcript. ?explain=true returns the full trace.
func (s *server) extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if status, err := s.decode(w, r, &req); err != nil {
		writeError(w, status, err.Error())
		return
	}

	trace := s.ext.RunDetailed(s.input(r, req))
	if explain(r) {
		writeJSON(w, http.StatusOK, trace)
		return
	}
	writeJSON(w, http.StatusOK, trace.Result)
}

func (s *server) extractBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if status, err := s.decode(w, r, &req); err != nil {
		writeError(w, status, err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items is required")
		return
	}
	if len(req.Items) > s.opts.MaxBatchSize {
		writeError(w, http.StatusRequestEntityTooLarge, "too many items")
		return
	}

	inputs := make([]model.Input, len(req.Items))
	for i, item := range req.Items {
		inputs[i] = s.input(r, item)
	}

	traces, err := s.ext.RunBatch(r.Context(), inputs, s.opts.BatchConcurrency)
	if err != nil {
		zap.L().Warn("api: batch aborted", zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "batch cancelled")
		return
	}

	resp := BatchResponse{Results: make([]any, len(traces))}
	for i, t := range traces {
		if explain(r) {
			resp.Results[i] = t
		} else {
			resp.Results[i] = t.Result
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// input falls back to the request ID so pipeline logs can be correlated.
func (s *server) input(r *http.Request, req ExtractRequest) model.Input {
	caseID := req.CaseID
	if caseID == "" {
		caseID = RequestIDFrom(r.Context())
	}
	return model.Input{Transcript: req.Transcript, CategoryHint: req.CategoryHint, CaseID: caseID}
}

// decode reads a bounded JSON body into v and returns the HTTP status to use
// on failure.
func (s *server) decode(w http.ResponseWriter, r *http.Request, v any) (int, error) {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, eris.New("request body too large")
		}
		if errors.Is(err, io.EOF) {
			return http.StatusBadRequest, eris.New("request body is empty")
		}
		return http.StatusBadRequest, eris.New("invalid request body")
	}
	return http.StatusOK, nil
}

func explain(r *http.Request) bool {
	switch r.URL.Query().Get("explain") {
	case "1", "true", "yes":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, RequestID: w.Header().Get(RequestIDHeader)})
}
