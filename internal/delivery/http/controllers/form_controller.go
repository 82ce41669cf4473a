package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"resumerefresh/internal/delivery/http/helpers"
	"resumerefresh/internal/domain"
)

// FormRenderer renders the hosted fallback form pages.
type FormRenderer interface {
	RenderForm(profile domain.RecipientProfile, actionURL string) (string, error)
	RenderFormSuccess(rec *domain.SubmissionRecord) (string, error)
	RenderFormError(message string) (string, error)
}

// FormController serves the hosted resume form linked from static emails.
type FormController struct {
	Logger   *slog.Logger
	Renderer FormRenderer
	Service  domain.SubmissionService
}

// NewFormController creates a FormController.
func NewFormController(logger *slog.Logger, renderer FormRenderer, svc domain.SubmissionService) *FormController {
	return &FormController{
		Logger:   logger,
		Renderer: renderer,
		Service:  svc,
	}
}

// Show godoc
// @Summary Hosted resume form
// @Description Renders the fallback form prefilled from the email link.
// @Tags form
// @Produce html
// @Param email query string false "Applicant email"
// @Param name query string false "Applicant name"
// @Param job query string false "Job title"
// @Param company query string false "Company name"
// @Success 200 {string} string "HTML page"
// @Router /api/form/resume-form [get]
func (c *FormController) Show(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := c.Renderer.RenderForm(domain.RecipientProfile{
		Email:         q.Get("email"),
		ApplicantName: q.Get("name"),
		JobTitle:      q.Get("job"),
		CompanyName:   q.Get("company"),
	}, domain.FallbackFormPath)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		c.writeError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
		return
	}
	writeHTML(w, http.StatusOK, page)
}

// Submit godoc
// @Summary Submit the hosted resume form
// @Tags form
// @Accept x-www-form-urlencoded
// @Produce html
// @Success 200 {string} string "HTML success page"
// @Failure 400 {string} string "HTML error page"
// @Failure 500 {string} string "HTML error page"
// @Router /api/form/resume-form [post]
func (c *FormController) Submit(w http.ResponseWriter, r *http.Request) {
	in, err := helpers.ParseSubmission(w, r)
	if err != nil {
		c.writeError(w, r, http.StatusBadRequest, "Could not read the submitted form.")
		return
	}
	rec, _, err := c.Service.Submit(r.Context(), in, helpers.SubmissionMetadata(r, domain.SourceWebForm))
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			c.writeError(w, r, http.StatusBadRequest, verr.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		c.writeError(w, r, http.StatusInternalServerError, submitFailedMessage)
		return
	}
	page, err := c.Renderer.RenderFormSuccess(rec)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		writeHTML(w, http.StatusOK, submitSuccessMessage)
		return
	}
	writeHTML(w, http.StatusOK, page)
}

func (c *FormController) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	page, err := c.Renderer.RenderFormError(message)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "render error page failed", "err", err)
		http.Error(w, message, status)
		return
	}
	writeHTML(w, status, page)
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
