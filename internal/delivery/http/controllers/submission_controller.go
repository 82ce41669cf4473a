package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"resumerefresh/internal/delivery/http/helpers"
	"resumerefresh/internal/domain"
)

// Messages returned to AMP clients. Persistence details are logged, never returned.
const (
	submitSuccessMessage = "Resume information updated successfully!"
	submitFailedTitle    = "Internal server error"
	submitFailedMessage  = "Failed to save your information. Please try again."
	validationTitle      = "Validation failed"
)

// AMPSubmitResponse is the body of a successful AMP submission (200).
// swagger:model AMPSubmitResponse
type AMPSubmitResponse struct {
	Message       string `json:"message"`
	SubmissionID  string `json:"submissionId"`
	ApplicantName string `json:"applicantName"`
}

// ListSubmissionsResponse is the data payload for GET /api/amp/submissions.
type ListSubmissionsResponse struct {
	Items      []*domain.SubmissionRecord `json:"items"`
	Pagination helpers.PaginationMeta     `json:"pagination"`
}

// ListSubmissionsSuccessResponse is the success response envelope for GET /api/amp/submissions (200).
type ListSubmissionsSuccessResponse struct {
	Data  ListSubmissionsResponse `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// SubmissionController handles AMP form submissions and the submissions listing.
type SubmissionController struct {
	Logger  *slog.Logger
	Service domain.SubmissionService
}

// NewSubmissionController creates a SubmissionController with the given logger and service.
func NewSubmissionController(logger *slog.Logger, svc domain.SubmissionService) *SubmissionController {
	return &SubmissionController{
		Logger:  logger,
		Service: svc,
	}
}

// SubmitAMP godoc
// @Summary Accept an AMP for Email form submission
// @Description Validates and upserts the applicant's resume update. Requires the __amp_source_origin query parameter and a trusted Origin; the source origin is echoed in AMP-Access-Control-Allow-Source-Origin on every response.
// @Tags amp
// @Accept json,x-www-form-urlencoded,mpfd
// @Produce json
// @Param __amp_source_origin query string true "AMP source origin"
// @Success 200 {object} controllers.AMPSubmitResponse
// @Failure 400 {object} helpers.AMPErrorResponse "origin rejected or validation failed"
// @Failure 500 {object} helpers.AMPErrorResponse "persistence failure"
// @Router /api/amp/submit [post]
func (c *SubmissionController) SubmitAMP(w http.ResponseWriter, r *http.Request) {
	in, err := helpers.ParseSubmission(w, r)
	if err != nil {
		helpers.WriteAMPError(w, http.StatusBadRequest, validationTitle, "Could not read the submitted form")
		return
	}
	meta := helpers.SubmissionMetadata(r, domain.SourceInteractiveEmail)
	rec, _, err := c.Service.Submit(r.Context(), in, meta)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			helpers.WriteAMPError(w, http.StatusBadRequest, validationTitle, verr.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteAMPError(w, http.StatusInternalServerError, submitFailedTitle, submitFailedMessage)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, AMPSubmitResponse{
		Message:       submitSuccessMessage,
		SubmissionID:  rec.ID,
		ApplicantName: rec.ApplicantName,
	})
}

// List godoc
// @Summary List submissions
// @Description Paginated list of submissions, newest first. Optional case-insensitive email substring filter.
// @Tags amp
// @Produce json
// @Param email query string false "Email substring"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListSubmissionsSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/amp/submissions [get]
func (c *SubmissionController) List(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	filter := domain.SubmissionFilter{EmailContains: r.URL.Query().Get("email")}
	items, total, err := c.Service.List(r.Context(), filter, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to list submissions")
		return
	}
	if items == nil {
		items = []*domain.SubmissionRecord{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListSubmissionsResponse{Items: items, Pagination: meta})
}
