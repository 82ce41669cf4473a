package domain

// EmailTemplateRenderer renders email content and pages from named templates.
type EmailTemplateRenderer interface {
	// Render executes <name>_subject.txt, <name>.html and <name>.txt.
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
	// RenderHTML executes <name>.html only.
	RenderHTML(templateName string, data any) (string, error)
}

// ResumeRefreshEmailData feeds the resume refresh email templates.
type ResumeRefreshEmailData struct {
	Email         string
	ApplicantName string
	JobTitle      string
	CompanyName   string
	// SubmitURL is the amp-form action-xhr target.
	SubmitURL string
	// FormURL is the hosted fallback form link with prefilled query parameters.
	FormURL  string
	Contract SubmissionContract
}

// ResumeFormPageData feeds the hosted fallback form page.
type ResumeFormPageData struct {
	Email         string
	ApplicantName string
	JobTitle      string
	CompanyName   string
	ActionURL     string
	Contract      SubmissionContract
}

// FormResultPageData feeds the hosted form success and error pages.
type FormResultPageData struct {
	Message    string
	Submission *SubmissionRecord
}
