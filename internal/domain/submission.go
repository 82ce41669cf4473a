package domain

import (
	"context"
	"fmt"
	"time"
)

// SubmissionSource identifies which channel produced a submission.
type SubmissionSource string

const (
	SourceInteractiveEmail SubmissionSource = "interactive_email"
	SourceWebForm          SubmissionSource = "web_form"
)

// SubmissionStatusSubmitted is the status of every accepted submission.
const SubmissionStatusSubmitted = "submitted"

// SubmissionMetadata describes where a submission came from.
type SubmissionMetadata struct {
	UserAgent   string           `json:"userAgent"`
	IPAddress   string           `json:"ipAddress"`
	Source      SubmissionSource `json:"source"`
	Referrer    string           `json:"referrer,omitempty"`
	SubmittedAt time.Time        `json:"submittedAt"`
}

// SubmissionRecord is the persisted applicant profile update.
// For one email the latest created record is authoritative.
// swagger:model SubmissionRecord
type SubmissionRecord struct {
	ID                string             `json:"id"`
	Email             string             `json:"email"`
	ApplicantName     string             `json:"applicantName"`
	JobTitle          string             `json:"jobTitle"`
	CompanyName       string             `json:"companyName"`
	SameCompany       string             `json:"sameCompany"`
	Skills            []string           `json:"skills"`
	CurrentRole       string             `json:"currentRole"`
	YearsOfExperience int                `json:"yearsOfExperience"`
	RelevantInfo      string             `json:"relevantInfo"`
	Metadata          SubmissionMetadata `json:"submissionMetadata"`
	Status            string             `json:"status"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// SubmissionInput is an unvalidated inbound payload. Values are kept as the
// client sent them.
type SubmissionInput struct {
	Email             string
	ApplicantName     string
	JobTitle          string
	CompanyName       string
	SameCompany       string
	Skills            []string
	CurrentRole       string
	YearsOfExperience string
	RelevantInfo      string
}

// ValidatedSubmission is a SubmissionInput that satisfied the Contract.
type ValidatedSubmission struct {
	Email             string
	ApplicantName     string
	JobTitle          string
	CompanyName       string
	SameCompany       string
	Skills            []string
	CurrentRole       string
	YearsOfExperience int
	RelevantInfo      string
}

// ValidationError names the first field that violated the Contract.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%q %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// SubmissionFilter narrows a submissions listing.
type SubmissionFilter struct {
	// EmailContains is a case-insensitive substring match.
	EmailContains string
}

// SubmissionStore persists submission records.
type SubmissionStore interface {
	// Upsert atomically updates the latest record for rec.Email in place, or
	// inserts rec when none exists. On update rec.ID and rec.CreatedAt are
	// replaced with the stored values. Returns true when a record was created.
	Upsert(ctx context.Context, rec *SubmissionRecord) (bool, error)
	// FindLatestByEmail returns ErrNotFound when the email has no record.
	FindLatestByEmail(ctx context.Context, email string) (*SubmissionRecord, error)
	List(ctx context.Context, filter SubmissionFilter, params PaginationParams) ([]*SubmissionRecord, int, error)
}

// SubmissionService validates and persists inbound submissions.
type SubmissionService interface {
	// Validate returns a *ValidationError for the first failing field.
	Validate(in SubmissionInput) (*ValidatedSubmission, error)
	// Submit validates in and upserts it. Returns (record, created, err).
	Submit(ctx context.Context, in SubmissionInput, meta SubmissionMetadata) (*SubmissionRecord, bool, error)
	List(ctx context.Context, filter SubmissionFilter, params PaginationParams) ([]*SubmissionRecord, int, error)
}
