package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"goa.design/clue/log"

	"github.com/roach88/pyxlate/internal/codegen"
	"github.com/roach88/pyxlate/internal/history"
)

// ConvertRequest is the body of POST /convert. The field names follow the
// original web client.
type ConvertRequest struct {
	Code   *string `json:"code"`
	ToLang string  `json:"toLang"`
}

// ErrorResponse is the body of a rejected request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ConvertRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "malformed request body: trailing data")
		return
	}
	if req.Code == nil {
		writeError(w, http.StatusBadRequest, `missing field "code"`)
		return
	}

	target := codegen.Target(req.ToLang)
	if req.ToLang == "" {
		target = s.defaultTarget
	}

	res := s.pipeline.Convert(ctx, *req.Code, target)

	if s.history != nil {
		rec := history.FromResult(*req.Code, res, s.now())
		if _, err := s.history.Add(ctx, rec); err != nil {
			log.Error(ctx, err, log.KV{K: "msg", V: "failed to record conversion"})
		}
	}

	status := http.StatusOK
	if !res.OK {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

type targetInfo struct {
	Name        codegen.Target      `json:"name"`
	Conventions codegen.Conventions `json:"conventions"`
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	out := []targetInfo{}
	for _, t := range codegen.Targets() {
		conv, err := codegen.ConventionsFor(t)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, targetInfo{Name: t, Conventions: conv})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	records, err := s.history.List(r.Context(), limit)
	if err != nil {
		log.Error(r.Context(), err, log.KV{K: "msg", V: "failed to list history"})
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.history.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "conversion not found")
		return
	}
	if err != nil {
		log.Error(r.Context(), err, log.KV{K: "msg", V: "failed to read history"})
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
