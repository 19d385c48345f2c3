package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leakguard-io/leakguard/internal/findings"
	"github.com/leakguard-io/leakguard/internal/lifecycle"
)

// Request and response bodies are explicit per-endpoint types; nothing
// `any`-shaped crosses the ingestion boundary.

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	OK bool `json:"ok"`
}

type verifyResponse struct {
	OK        bool   `json:"ok"`
	ProjectID string `json:"projectId"`
	RepoID    string `json:"repoId"`
}

type projectCreateRequest struct {
	RepoID string `json:"repoId"`
	Name   string `json:"name,omitempty"`
}

type projectCreateResponse struct {
	ID             string `json:"id"`
	RepoID         string `json:"repoId"`
	Name           string `json:"name"`
	IngestionToken string `json:"ingestionToken"`
}

type projectListItem struct {
	ID     string `json:"id"`
	RepoID string `json:"repoId"`
	Name   string `json:"name"`
}

type ingestResponse struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
	New   int  `json:"new"`
}

type statusChangeRequest struct {
	Status string `json:"status"`
}

type statusChangeResponse struct {
	OK bool `json:"ok"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{OK: true})
}

func (s *Server) handleAuthVerify(w http.ResponseWriter, r *http.Request) {
	project, status := s.authenticate(r)
	if status != 0 {
		writeAuthError(w, status)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{OK: true, ProjectID: project.ID, RepoID: project.RepoID})
}

func (s *Server) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	if !s.isAdmin(r) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}

	var req projectCreateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_payload"})
		return
	}
	if req.RepoID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_payload"})
		return
	}

	project, token, err := s.service.MintProject(r.Context(), req.RepoID, req.Name)
	if err != nil {
		if errors.Is(err, lifecycle.ErrProjectExists) {
			writeJSON(w, http.StatusConflict, errorResponse{Error: "project_exists"})
			return
		}
		s.logger.Error("failed to create project", "repo", req.RepoID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}

	writeJSON(w, http.StatusOK, projectCreateResponse{
		ID:             project.ID,
		RepoID:         project.RepoID,
		Name:           project.Name,
		IngestionToken: token,
	})
}

func (s *Server) handleProjectList(w http.ResponseWriter, r *http.Request) {
	projects, err := s.service.ListProjects(r.Context())
	if err != nil {
		s.logger.Error("failed to list projects", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}

	out := make([]projectListItem, 0, len(projects))
	for _, project := range projects {
		out = append(out, projectListItem{ID: project.ID, RepoID: project.RepoID, Name: project.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	project, authStatus := s.authenticate(r)
	if authStatus != 0 {
		writeAuthError(w, authStatus)
		return
	}

	var payload findings.Payload
	if err := decodeBody(w, r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_payload"})
		return
	}
	if err := payload.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_payload"})
		return
	}
	if payload.RepoID != project.RepoID {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "repo_mismatch"})
		return
	}

	result, err := s.service.Ingest(r.Context(), project, payload)
	if err != nil {
		if errors.Is(err, lifecycle.ErrBatchTooLarge) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "batch_too_large"})
			return
		}
		s.logger.Error("ingest failed", "project", project.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{OK: true, Count: result.Total, New: result.New})
}

func (s *Server) handleFindingsList(w http.ResponseWriter, r *http.Request) {
	filter := lifecycle.Filter{ProjectID: chi.URLParam(r, "id")}

	query := r.URL.Query()
	filter.Type = query.Get("type")

	if raw := query.Get("status"); raw != "" {
		status, err := lifecycle.ParseStatus(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_query"})
			return
		}
		filter.Status = status
	}

	if raw := query.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_since"})
			return
		}
		filter.Since = &since
	}

	stored, err := s.service.ListFindings(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list findings", "project", filter.ProjectID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}
	if stored == nil {
		stored = []lifecycle.StoredFinding{}
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleStatusChange(w http.ResponseWriter, r *http.Request) {
	var req statusChangeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_payload"})
		return
	}

	status, err := lifecycle.ParseStatus(req.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_payload"})
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := s.service.SetStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, lifecycle.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found"})
			return
		}
		s.logger.Error("status change failed", "finding", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}

	writeJSON(w, http.StatusOK, statusChangeResponse{OK: true})
}

// authenticate resolves the bearer credential to a project. The returned
// status is 0 on success, otherwise the HTTP status to send. An unknown token
// must surface as 403, never as an empty success.
func (s *Server) authenticate(r *http.Request) (lifecycle.Project, int) {
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return lifecycle.Project{}, http.StatusUnauthorized
	}

	project, err := s.service.ProjectByToken(r.Context(), token)
	if err != nil {
		return lifecycle.Project{}, http.StatusForbidden
	}
	return project, 0
}

func (s *Server) isAdmin(r *http.Request) bool {
	if s.adminToken == "" {
		return false
	}
	token := bearerToken(r.Header.Get("Authorization"))
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) == 1
}

func writeAuthError(w http.ResponseWriter, status int) {
	if status == http.StatusUnauthorized {
		writeJSON(w, status, errorResponse{Error: "missing_token"})
		return
	}
	writeJSON(w, status, errorResponse{Error: "invalid_token"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
