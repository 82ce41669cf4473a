package controllers

import (
	"context"
	"io"
	"log/slog"

	"resumerefresh/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type mockSubmissionService struct {
	lastInput domain.SubmissionInput
	lastMeta  domain.SubmissionMetadata
	lastPage  domain.PaginationParams
	lastEmail string
	record    *domain.SubmissionRecord
	items     []*domain.SubmissionRecord
	total     int
	err       error
}

func (m *mockSubmissionService) Validate(in domain.SubmissionInput) (*domain.ValidatedSubmission, error) {
	return nil, m.err
}

func (m *mockSubmissionService) Submit(ctx context.Context, in domain.SubmissionInput, meta domain.SubmissionMetadata) (*domain.SubmissionRecord, bool, error) {
	m.lastInput = in
	m.lastMeta = meta
	if m.err != nil {
		return nil, false, m.err
	}
	return m.record, true, nil
}

func (m *mockSubmissionService) List(ctx context.Context, filter domain.SubmissionFilter, params domain.PaginationParams) ([]*domain.SubmissionRecord, int, error) {
	m.lastEmail = filter.EmailContains
	m.lastPage = params
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.items, m.total, nil
}

type mockRefreshService struct {
	requests  []domain.SendRequest
	result    domain.DispatchResult
	err       error
	verifyErr error
}

func (m *mockRefreshService) Send(ctx context.Context, req domain.SendRequest) (domain.DispatchResult, error) {
	m.requests = append(m.requests, req)
	return m.result, m.err
}

func (m *mockRefreshService) TestConnection(ctx context.Context) error {
	return m.verifyErr
}

type mockBulkSender struct {
	requests []domain.SendRequest
}

func (m *mockBulkSender) SendAll(ctx context.Context, reqs []domain.SendRequest) domain.BulkReport {
	m.requests = reqs
	report := domain.BulkReport{}
	for _, r := range reqs {
		report.Items = append(report.Items, domain.BulkItem{Request: r, Result: domain.DispatchResult{Recipient: r.Recipient, Success: true}})
		report.Successful++
	}
	return report
}

type mockFormRenderer struct {
	profile   domain.RecipientProfile
	actionURL string
	message   string
	success   *domain.SubmissionRecord
	err       error
}

func (m *mockFormRenderer) RenderForm(profile domain.RecipientProfile, actionURL string) (string, error) {
	m.profile = profile
	m.actionURL = actionURL
	return "<form></form>", m.err
}

func (m *mockFormRenderer) RenderFormSuccess(rec *domain.SubmissionRecord) (string, error) {
	m.success = rec
	return "<p>ok " + rec.ID + "</p>", m.err
}

func (m *mockFormRenderer) RenderFormError(message string) (string, error) {
	m.message = message
	return "<p>" + message + "</p>", m.err
}
