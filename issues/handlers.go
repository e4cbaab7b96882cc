package issues

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/user/civicfix-go/apperror"
	"github.com/user/civicfix-go/auth"
)

// Handler exposes the issue registry over HTTP.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// NewHandler creates the issue HTTP handlers.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the issue routes on r. Reads are public; everything
// that writes goes through requireAuth.
func (h *Handler) RegisterRoutes(r chi.Router, requireAuth func(next http.Handler) http.Handler) {
	r.Get("/", h.handleList)
	r.Get("/{issueID}", h.handleGet)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.handleCreate)
		r.Put("/{issueID}", h.handleUpdate)
		r.Delete("/{issueID}", h.handleDelete)
		r.Post("/{issueID}/upvote", h.handleUpvote)
		r.Post("/{issueID}/downvote", h.handleDownvote)
	})
}

// handleList godoc
// @Summary List all issues
// @Tags issues
// @Produce json
// @Success 200 {array} issues.Issue
// @Failure 500 {object} apperror.ErrorResponse
// @Router /issues [get]
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGet godoc
// @Summary Get an issue by id
// @Tags issues
// @Produce json
// @Param issueID path int true "Issue ID"
// @Success 200 {object} issues.Issue
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /issues/{issueID} [get]
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := issueIDParam(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	issue, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// handleCreate godoc
// @Summary Create an issue
// @Description The authenticated caller becomes the issue's owner.
// @Tags issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body issues.IssueRequest true "Issue fields"
// @Success 200 {object} issues.IssueIDResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /issues [post]
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
		return
	}

	req, err := decodeIssueRequest(r, h.validate)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	id, err := h.service.Create(r.Context(), callerID, *req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, IssueIDResponse{
		Message: "Issue created successfully",
		IssueID: id,
	})
}

// handleUpdate godoc
// @Summary Update an issue
// @Description Full replace of the content fields. Owner only.
// @Tags issues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param issueID path int true "Issue ID"
// @Param body body issues.IssueRequest true "Issue fields"
// @Success 200 {object} issues.IssueIDResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse "Caller is not the owner"
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /issues/{issueID} [put]
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
		return
	}

	id, err := issueIDParam(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	req, err := decodeIssueRequest(r, h.validate)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	issue, err := h.service.Update(r.Context(), callerID, id, *req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, IssueIDResponse{
		Message: "Issue updated successfully",
		IssueID: issue.ID,
	})
}

// handleDelete godoc
// @Summary Delete an issue
// @Description Permanent removal. Owner only.
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param issueID path int true "Issue ID"
// @Success 200 {object} issues.IssueIDResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse "Caller is not the owner"
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /issues/{issueID} [delete]
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.CallerID(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
		return
	}

	id, err := issueIDParam(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	deletedID, err := h.service.Delete(r.Context(), callerID, id)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, IssueIDResponse{
		Message: "Issue deleted successfully",
		IssueID: deletedID,
	})
}

// handleUpvote godoc
// @Summary Upvote an issue
// @Description Any authenticated caller may vote; repeated votes are allowed.
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param issueID path int true "Issue ID"
// @Success 200 {object} issues.IssueIDResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /issues/{issueID}/upvote [post]
func (h *Handler) handleUpvote(w http.ResponseWriter, r *http.Request) {
	h.handleVote(w, r, "Issue upvoted successfully", h.service.Upvote)
}

// handleDownvote godoc
// @Summary Downvote an issue
// @Description Any authenticated caller may vote; repeated votes are allowed.
// @Tags issues
// @Produce json
// @Security BearerAuth
// @Param issueID path int true "Issue ID"
// @Success 200 {object} issues.IssueIDResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 500 {object} apperror.ErrorResponse
// @Router /issues/{issueID}/downvote [post]
func (h *Handler) handleDownvote(w http.ResponseWriter, r *http.Request) {
	h.handleVote(w, r, "Issue downvoted successfully", h.service.Downvote)
}

func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request, message string, vote func(ctx context.Context, callerID, id int64) (int64, error)) {
	callerID, ok := auth.CallerID(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
		return
	}

	id, err := issueIDParam(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	votedID, err := vote(r.Context(), callerID, id)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, IssueIDResponse{
		Message: message,
		IssueID: votedID,
	})
}

// issueIDParam parses the issue id path segment.
func issueIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "issueID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.NewBadRequestError("invalid issue id", err)
	}
	return id, nil
}

// decodeIssueRequest decodes and validates the issue payload shared by
// create and update.
func decodeIssueRequest(r *http.Request, validate *validator.Validate) (*IssueRequest, error) {
	var req IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, apperror.NewBadRequestError("invalid request body", err)
	}
	defer r.Body.Close()

	if err := validate.Struct(req); err != nil {
		return nil, apperror.NewValidationError("title is required", err)
	}
	return &req, nil
}

// writeJSON mirrors the auth package helper for this package's handlers.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}
