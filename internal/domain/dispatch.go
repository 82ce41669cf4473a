package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CapabilityTag says whether a recipient's mail client renders AMP for Email.
type CapabilityTag string

const (
	CapabilityInteractive CapabilityTag = "interactive"
	CapabilityStaticOnly  CapabilityTag = "static_only"
)

// RecipientProfile is the per-send applicant context.
type RecipientProfile struct {
	Email         string `json:"email"`
	ApplicantName string `json:"applicantName"`
	JobTitle      string `json:"jobTitle"`
	CompanyName   string `json:"companyName"`
}

// ComposedMessage holds every rendered variant of one resume refresh email.
// InteractiveDocument is empty unless the recipient was tagged interactive.
type ComposedMessage struct {
	Subject             string
	StaticHTML          string
	Text                string
	InteractiveDocument string
}

// HasInteractive reports whether an AMP variant was rendered.
func (m ComposedMessage) HasInteractive() bool {
	return m.InteractiveDocument != ""
}

// SubmissionEndpoints are the inbound URLs a composed message points at.
type SubmissionEndpoints struct {
	AMPSubmit    string
	FallbackForm string
}

// Paths of the inbound endpoints relative to the public server URL.
const (
	AMPSubmitPath    = "/api/amp/submit"
	FallbackFormPath = "/api/form/resume-form"
)

// NewSubmissionEndpoints derives the inbound URLs from a public base URL.
func NewSubmissionEndpoints(base string) SubmissionEndpoints {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	return SubmissionEndpoints{
		AMPSubmit:    base + AMPSubmitPath,
		FallbackForm: base + FallbackFormPath,
	}
}

// FailureReason classifies why a dispatch failed.
type FailureReason string

const (
	ReasonTimeout  FailureReason = "timeout"
	ReasonAuth     FailureReason = "auth"
	ReasonRejected FailureReason = "rejected"
	ReasonUnknown  FailureReason = "unknown"
)

// DispatchResult is the terminal outcome of one send.
type DispatchResult struct {
	Success         bool          `json:"success"`
	MessageID       string        `json:"messageId,omitempty"`
	Attempts        int           `json:"attempts"`
	Recipient       string        `json:"recipient"`
	InteractiveUsed bool          `json:"interactiveUsed"`
	FailureReason   FailureReason `json:"failureReason,omitempty"`
	SentAt          *time.Time    `json:"sentAt,omitempty"`
}

// SendRequest is the outbound dispatch trigger input.
type SendRequest struct {
	Recipient              string `json:"recipient"`
	ApplicantName          string `json:"applicantName"`
	JobTitle               string `json:"jobTitle"`
	CompanyName            string `json:"companyName"`
	SubmissionEndpointBase string `json:"submissionEndpointBase"`
}

// CompositionError reports input that cannot be turned into an email.
// It wraps ErrInvalidInput.
type CompositionError struct {
	Reason string
	Err    error
}

func (e *CompositionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("compose: %s: %v", e.Reason, e.Err)
	}
	return "compose: " + e.Reason
}

func (e *CompositionError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidInput, e.Err}
	}
	return []error{ErrInvalidInput}
}

// ResumeRefreshService sends resume refresh emails.
type ResumeRefreshService interface {
	// Send classifies, composes and dispatches one email. The error is non-nil
	// only for a CompositionError; transmission failures are reported in the result.
	Send(ctx context.Context, req SendRequest) (DispatchResult, error)
	// TestConnection checks that the outbound mail channel is reachable.
	TestConnection(ctx context.Context) error
}

// BulkItem is one recipient's outcome in a bulk send.
type BulkItem struct {
	Request SendRequest    `json:"request"`
	Result  DispatchResult `json:"result"`
	Error   string         `json:"error,omitempty"`
}

// BulkReport summarizes a bulk send.
type BulkReport struct {
	Items      []BulkItem `json:"items"`
	Successful int        `json:"successful"`
	Failed     int        `json:"failed"`
}

// BulkSender sends to many recipients, each independently.
type BulkSender interface {
	SendAll(ctx context.Context, reqs []SendRequest) BulkReport
}

// IsTransient reports whether err is a TransmissionError worth retrying.
func IsTransient(err error) bool {
	var te *TransmissionError
	return errors.As(err, &te) && te.Transient
}
