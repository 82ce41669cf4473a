package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"resumerefresh/internal/domain"
)

type resumeRefreshService struct {
	classifier  *CapabilityClassifier
	composer    *ContentComposer
	dispatcher  *Dispatcher
	defaultBase string
	logger      *slog.Logger
}

// NewResumeRefreshService wires classification, composition and dispatch.
// defaultBase is used when a request carries no submission endpoint base.
func NewResumeRefreshService(classifier *CapabilityClassifier, composer *ContentComposer, dispatcher *Dispatcher, defaultBase string, logger *slog.Logger) domain.ResumeRefreshService {
	if logger == nil {
		logger = slog.Default()
	}
	return &resumeRefreshService{
		classifier:  classifier,
		composer:    composer,
		dispatcher:  dispatcher,
		defaultBase: defaultBase,
		logger:      logger,
	}
}

func (s *resumeRefreshService) Send(ctx context.Context, req domain.SendRequest) (domain.DispatchResult, error) {
	profile := s.composer.WithDefaults(domain.RecipientProfile{
		Email:         req.Recipient,
		ApplicantName: req.ApplicantName,
		JobTitle:      req.JobTitle,
		CompanyName:   req.CompanyName,
	})
	base := strings.TrimSpace(req.SubmissionEndpointBase)
	if base == "" {
		base = s.defaultBase
	}

	tag := s.classifier.Classify(profile.Email)
	msg, err := s.composer.Compose(profile, base, tag)
	if err != nil {
		s.logger.WarnContext(ctx, "resume refresh email not composed",
			"recipient", domain.RedactEmail(profile.Email),
			"err", err,
		)
		return domain.DispatchResult{
			Recipient:       profile.Email,
			InteractiveUsed: false,
			FailureReason:   domain.ReasonRejected,
		}, err
	}
	return s.dispatcher.Send(ctx, profile, msg, tag), nil
}

func (s *resumeRefreshService) TestConnection(ctx context.Context) error {
	return s.dispatcher.Verify(ctx)
}

// IsCompositionError reports whether err came from composing a message.
func IsCompositionError(err error) bool {
	var ce *domain.CompositionError
	return errors.As(err, &ce)
}

// CompositionMessage returns a client-safe description of a composition error.
func CompositionMessage(err error) string {
	var ce *domain.CompositionError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return fmt.Sprint(err)
}
