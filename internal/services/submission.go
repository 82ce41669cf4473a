package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"resumerefresh/internal/domain"
	"resumerefresh/internal/metrics"
)

type submissionService struct {
	store    domain.SubmissionStore
	contract domain.SubmissionContract
	logger   *slog.Logger
	now      func() time.Time
}

// NewSubmissionService creates a SubmissionService backed by store and validated against domain.Contract.
func NewSubmissionService(store domain.SubmissionStore, logger *slog.Logger) domain.SubmissionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &submissionService{
		store:    store,
		contract: domain.Contract,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *submissionService) Validate(in domain.SubmissionInput) (*domain.ValidatedSubmission, error) {
	c := s.contract
	out := &domain.ValidatedSubmission{
		Email:         domain.NormalizeEmail(in.Email),
		ApplicantName: strings.TrimSpace(in.ApplicantName),
		JobTitle:      strings.TrimSpace(in.JobTitle),
		CompanyName:   strings.TrimSpace(in.CompanyName),
		SameCompany:   strings.TrimSpace(in.SameCompany),
		CurrentRole:   strings.TrimSpace(in.CurrentRole),
		RelevantInfo:  strings.TrimSpace(in.RelevantInfo),
	}

	if out.Email == "" {
		return nil, invalid(c.Fields.Email, "is required")
	}
	if !domain.IsValidEmail(out.Email) {
		return nil, invalid(c.Fields.Email, "must be a valid email address")
	}
	if err := maxLen(c.Fields.ApplicantName, out.ApplicantName, c.ApplicantNameMaxLen); err != nil {
		return nil, err
	}
	if err := maxLen(c.Fields.JobTitle, out.JobTitle, c.JobTitleMaxLen); err != nil {
		return nil, err
	}
	if err := maxLen(c.Fields.CompanyName, out.CompanyName, c.CompanyNameMaxLen); err != nil {
		return nil, err
	}
	if out.SameCompany == "" {
		return nil, invalid(c.Fields.SameCompany, "is required")
	}
	if !c.IsSameCompanyOption(out.SameCompany) {
		return nil, invalid(c.Fields.SameCompany, fmt.Sprintf("must be one of %s", strings.Join(c.SameCompanyOptions, ", ")))
	}
	skills := make([]string, 0, len(in.Skills))
	for _, raw := range in.Skills {
		skill := strings.TrimSpace(raw)
		if skill == "" {
			continue
		}
		if !c.IsAllowedSkill(skill) {
			return nil, invalid(c.Fields.Skills, fmt.Sprintf("contains unsupported value %q", skill))
		}
		skills = append(skills, skill)
	}
	out.Skills = c.NormalizeSkills(skills)

	roleLen := utf8.RuneCountInString(out.CurrentRole)
	if roleLen == 0 {
		return nil, invalid(c.Fields.CurrentRole, "is required")
	}
	if roleLen < c.CurrentRoleMinLen || roleLen > c.CurrentRoleMaxLen {
		return nil, invalid(c.Fields.CurrentRole, fmt.Sprintf("must be between %d and %d characters", c.CurrentRoleMinLen, c.CurrentRoleMaxLen))
	}

	years := strings.TrimSpace(in.YearsOfExperience)
	if years == "" {
		return nil, invalid(c.Fields.YearsOfExperience, "is required")
	}
	n, ok := parseWholeNumber(years)
	if !ok {
		return nil, invalid(c.Fields.YearsOfExperience, "must be a whole number")
	}
	if n < c.YearsMin || n > c.YearsMax {
		return nil, invalid(c.Fields.YearsOfExperience, fmt.Sprintf("must be between %d and %d", c.YearsMin, c.YearsMax))
	}
	out.YearsOfExperience = n

	if err := maxLen(c.Fields.RelevantInfo, out.RelevantInfo, c.RelevantInfoMaxLen); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *submissionService) Submit(ctx context.Context, in domain.SubmissionInput, meta domain.SubmissionMetadata) (*domain.SubmissionRecord, bool, error) {
	source := string(meta.Source)
	v, err := s.Validate(in)
	if err != nil {
		metrics.SubmissionTotal.WithLabelValues(source, "invalid").Inc()
		return nil, false, err
	}

	now := s.now().UTC()
	if meta.SubmittedAt.IsZero() {
		meta.SubmittedAt = now
	}
	rec := &domain.SubmissionRecord{
		ID:                uuid.NewString(),
		Email:             v.Email,
		ApplicantName:     v.ApplicantName,
		JobTitle:          v.JobTitle,
		CompanyName:       v.CompanyName,
		SameCompany:       v.SameCompany,
		Skills:            v.Skills,
		CurrentRole:       v.CurrentRole,
		YearsOfExperience: v.YearsOfExperience,
		RelevantInfo:      v.RelevantInfo,
		Metadata:          meta,
		Status:            domain.SubmissionStatusSubmitted,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	created, err := s.store.Upsert(ctx, rec)
	if err != nil {
		metrics.SubmissionTotal.WithLabelValues(source, "error").Inc()
		return nil, false, fmt.Errorf("failed to save submission: %w", err)
	}

	result := "updated"
	if created {
		result = "created"
	}
	metrics.SubmissionTotal.WithLabelValues(source, result).Inc()
	s.logger.InfoContext(ctx, "submission saved",
		"submission_id", rec.ID,
		"domain", domain.EmailDomain(rec.Email),
		"source", source,
		"created", created,
	)
	return rec, created, nil
}

func (s *submissionService) List(ctx context.Context, filter domain.SubmissionFilter, params domain.PaginationParams) ([]*domain.SubmissionRecord, int, error) {
	filter.EmailContains = strings.TrimSpace(filter.EmailContains)
	items, total, err := s.store.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}
	return items, total, nil
}

// parseWholeNumber accepts decimal integers and integral floats such as
// "5.0" or "5e0", which JSON clients send for numeric inputs.
func parseWholeNumber(v string) (int, bool) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	if strings.ContainsAny(v, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func invalid(field, msg string) *domain.ValidationError {
	return &domain.ValidationError{Field: field, Message: msg}
}

func maxLen(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return invalid(field, fmt.Sprintf("must be at most %d characters", limit))
	}
	return nil
}
