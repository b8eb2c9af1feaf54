package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/qplace/pkg/buildinfo"
	"github.com/matzehuels/qplace/pkg/circuit"
	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/pipeline"
	"github.com/matzehuels/qplace/pkg/placement"
)

// PlacementRequest is the body of POST /v1/placements. Options fields left
// out keep their defaults.
type PlacementRequest struct {
	Gates   [][]graph.Vertex `json:"gates"`
	Device  graph.File       `json:"device"`
	Options json.RawMessage  `json:"options,omitempty"`
}

// PlacementResponse is the body of a successful placement.
type PlacementResponse struct {
	RunID     string             `json:"run_id"`
	Placement *placement.Result  `json:"placement"`
	Summary   string             `json:"summary"`
	Stats     pipeline.Stats     `json:"stats"`
	Cache     pipeline.CacheInfo `json:"cache"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failure by code and message.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handlePlacement(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	var req PlacementRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	opts, err := decodeOptions(req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts.Logger = s.logger
	device, err := graph.Import(req.Device)
	if err != nil {
		s.writeError(w, err)
		return
	}
	gates := circuit.Import(circuit.File{Gates: req.Gates})

	res, err := s.runner.Execute(r.Context(), gates, device, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PlacementResponse{
		RunID:     res.RunID,
		Placement: res.Placement,
		Summary:   res.Placement.Details(true),
		Stats:     res.Stats,
		Cache:     res.CacheInfo,
	})
}

// decodeOptions overlays raw on the default options and bounds the
// timeout.
func decodeOptions(raw json.RawMessage) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	if len(raw) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&opts); err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode options")
		}
	}
	if opts.TimeoutMS > pipeline.MaxTimeoutMS {
		return opts, errors.New(errors.ErrCodeInvalidInput,
			"timeout_ms %d exceeds the limit of %d", opts.TimeoutMS, pipeline.MaxTimeoutMS)
	}
	return opts, nil
}

// statusFor maps an error code to an HTTP status: caller errors are 400,
// requests that are well-formed but cannot be served are 422.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeUnsupported, errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusBadRequest
	case errors.ErrCodeInitTimeout, errors.ErrCodeOverflow:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
