package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gamnamu1/python-code-explainer/internal/apperror"
	"github.com/gamnamu1/python-code-explainer/internal/auth"
	"github.com/gamnamu1/python-code-explainer/internal/explainer"
	"github.com/gamnamu1/python-code-explainer/internal/model"
	"github.com/gamnamu1/python-code-explainer/internal/service"
)

// AnalysisHandler serves the code-explainer API: submit code for analysis,
// browse history, fetch one analysis.
//
// All three routes sit behind RequireAuth, so the session's openId is
// always in the context. The handler resolves it to a user row per request;
// services only ever see row ids.
type AnalysisHandler struct {
	explainer *explainer.Service
	authSvc   *service.AuthService
	logger    *slog.Logger
}

// NewAnalysisHandler creates an AnalysisHandler.
func NewAnalysisHandler(explainerSvc *explainer.Service, authSvc *service.AuthService, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		explainer: explainerSvc,
		authSvc:   authSvc,
		logger:    logger,
	}
}

// analyzeRequest is the JSON body of POST /api/analyses.
type analyzeRequest struct {
	Code     string `json:"code"`
	FileName string `json:"fileName"`
}

// HandleAnalyze generates both explanations for the submitted code and
// persists the result.
//
// HTTP: POST /api/analyses
// BODY: {"code": "print('hi')", "fileName": "hello.py"}
//
// Empty or whitespace-only code → 400. A completion failure → 502 with
// nothing persisted. On success the full persisted record comes back,
// explanations included.
func (h *AnalysisHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid analyze JSON", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	analysis, err := h.explainer.Analyze(r.Context(), user.ID, req.Code, req.FileName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, analysis)
}

// HandleHistory returns the caller's analyses, oldest first.
//
// HTTP: GET /api/analyses
//
// A session with no backing user row (degraded store) gets an empty list —
// history is a best-effort read, never a failure.
func (h *AnalysisHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	openID, _ := auth.OpenIDFromContext(r.Context())

	user, err := h.authSvc.CurrentUser(r.Context(), openID)
	if err != nil {
		writeError(w, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusOK, []model.CodeAnalysis{})
		return
	}

	analyses, err := h.explainer.History(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analyses)
}

// HandleGetByID returns one analysis by id.
//
// HTTP: GET /api/analyses/{id}
//
// No ownership check: any authenticated caller with a valid id can read any
// analysis. Explanations are treated as shareable by id.
func (h *AnalysisHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, apperror.ValidationFailed("id", "analysis id must be an integer"))
		return
	}

	analysis, err := h.explainer.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// currentUser resolves the session to a user row for write paths.
// Unlike history, analyze cannot degrade: an analysis needs an owning row,
// so a missing row surfaces as unavailable.
func (h *AnalysisHandler) currentUser(r *http.Request) (*model.User, error) {
	openID, _ := auth.OpenIDFromContext(r.Context())

	user, err := h.authSvc.CurrentUser(r.Context(), openID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.Unavailable("resolve session user")
	}
	return user, nil
}
