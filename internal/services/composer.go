package services

import (
	"fmt"
	"net/url"
	"strings"

	"resumerefresh/internal/domain"
)

const (
	resumeRefreshTemplate    = "resume_refresh"
	resumeRefreshAMPTemplate = "resume_refresh_amp"
	resumeFormTemplate       = "resume_form"
	formSuccessTemplate      = "form_success"
	formErrorTemplate        = "form_error"
)

// ProfileDefaults fill empty RecipientProfile fields.
type ProfileDefaults struct {
	ApplicantName string
	JobTitle      string
	CompanyName   string
}

// DefaultProfileDefaults mirrors what applicants see when the caller omits context.
var DefaultProfileDefaults = ProfileDefaults{
	ApplicantName: "Applicant",
	JobTitle:      "Position",
	CompanyName:   "Hirefy",
}

// ContentComposer renders the static, plain-text and AMP variants of a resume
// refresh email, and the hosted form pages, from domain.Contract.
type ContentComposer struct {
	renderer domain.EmailTemplateRenderer
	defaults ProfileDefaults
}

// NewContentComposer returns a composer using renderer.
func NewContentComposer(renderer domain.EmailTemplateRenderer, defaults ProfileDefaults) *ContentComposer {
	if defaults.ApplicantName == "" {
		defaults.ApplicantName = DefaultProfileDefaults.ApplicantName
	}
	if defaults.JobTitle == "" {
		defaults.JobTitle = DefaultProfileDefaults.JobTitle
	}
	if defaults.CompanyName == "" {
		defaults.CompanyName = DefaultProfileDefaults.CompanyName
	}
	return &ContentComposer{renderer: renderer, defaults: defaults}
}

// WithDefaults returns profile with empty fields filled in.
func (c *ContentComposer) WithDefaults(profile domain.RecipientProfile) domain.RecipientProfile {
	profile.Email = strings.TrimSpace(profile.Email)
	if strings.TrimSpace(profile.ApplicantName) == "" {
		profile.ApplicantName = c.defaults.ApplicantName
	}
	if strings.TrimSpace(profile.JobTitle) == "" {
		profile.JobTitle = c.defaults.JobTitle
	}
	if strings.TrimSpace(profile.CompanyName) == "" {
		profile.CompanyName = c.defaults.CompanyName
	}
	return profile
}

// Compose renders every variant for profile. The AMP document is rendered
// only for interactive recipients. Malformed input yields a *domain.CompositionError.
func (c *ContentComposer) Compose(profile domain.RecipientProfile, endpointBase string, tag domain.CapabilityTag) (domain.ComposedMessage, error) {
	profile = c.WithDefaults(profile)
	if !domain.IsValidEmail(profile.Email) {
		return domain.ComposedMessage{}, &domain.CompositionError{Reason: "invalid recipient email"}
	}
	if err := checkEndpointBase(endpointBase); err != nil {
		return domain.ComposedMessage{}, &domain.CompositionError{Reason: "invalid submission endpoint", Err: err}
	}

	endpoints := domain.NewSubmissionEndpoints(endpointBase)
	data := domain.ResumeRefreshEmailData{
		Email:         profile.Email,
		ApplicantName: profile.ApplicantName,
		JobTitle:      profile.JobTitle,
		CompanyName:   profile.CompanyName,
		SubmitURL:     endpoints.AMPSubmit,
		FormURL:       FallbackFormURL(endpoints.FallbackForm, profile),
		Contract:      domain.Contract,
	}

	subject, html, text, err := c.renderer.Render(resumeRefreshTemplate, data)
	if err != nil {
		return domain.ComposedMessage{}, &domain.CompositionError{Reason: "render static variant", Err: err}
	}
	msg := domain.ComposedMessage{Subject: subject, StaticHTML: html, Text: text}

	if tag == domain.CapabilityInteractive {
		amp, err := c.renderer.RenderHTML(resumeRefreshAMPTemplate, data)
		if err != nil {
			return domain.ComposedMessage{}, &domain.CompositionError{Reason: "render interactive variant", Err: err}
		}
		msg.InteractiveDocument = amp
	}
	return msg, nil
}

// FallbackFormURL returns the hosted form link prefilled with profile.
func FallbackFormURL(formEndpoint string, profile domain.RecipientProfile) string {
	q := url.Values{}
	q.Set("email", profile.Email)
	q.Set("name", profile.ApplicantName)
	q.Set("job", profile.JobTitle)
	q.Set("company", profile.CompanyName)
	return formEndpoint + "?" + q.Encode()
}

// RenderForm renders the hosted fallback form.
func (c *ContentComposer) RenderForm(profile domain.RecipientProfile, actionURL string) (string, error) {
	if strings.TrimSpace(profile.CompanyName) == "" {
		profile.CompanyName = c.defaults.CompanyName
	}
	page, err := c.renderer.RenderHTML(resumeFormTemplate, domain.ResumeFormPageData{
		Email:         profile.Email,
		ApplicantName: profile.ApplicantName,
		JobTitle:      profile.JobTitle,
		CompanyName:   profile.CompanyName,
		ActionURL:     actionURL,
		Contract:      domain.Contract,
	})
	if err != nil {
		return "", fmt.Errorf("render resume form: %w", err)
	}
	return page, nil
}

// RenderFormSuccess renders the hosted form confirmation page.
func (c *ContentComposer) RenderFormSuccess(rec *domain.SubmissionRecord) (string, error) {
	return c.renderer.RenderHTML(formSuccessTemplate, domain.FormResultPageData{Submission: rec})
}

// RenderFormError renders the hosted form error page.
func (c *ContentComposer) RenderFormError(message string) (string, error) {
	return c.renderer.RenderHTML(formErrorTemplate, domain.FormResultPageData{Message: message})
}

func checkEndpointBase(base string) error {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
