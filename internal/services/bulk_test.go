package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"resumerefresh/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRefreshService implements domain.ResumeRefreshService for tests.
type fakeRefreshService struct {
	mu    sync.Mutex
	calls []domain.SendRequest
	fail  map[string]bool
	errs  map[string]error
}

func (f *fakeRefreshService) Send(_ context.Context, req domain.SendRequest) (domain.DispatchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if err := f.errs[req.Recipient]; err != nil {
		return domain.DispatchResult{Recipient: req.Recipient, FailureReason: domain.ReasonRejected}, err
	}
	if f.fail[req.Recipient] {
		return domain.DispatchResult{Recipient: req.Recipient, Attempts: 3, FailureReason: domain.ReasonTimeout}, nil
	}
	return domain.DispatchResult{Recipient: req.Recipient, Success: true, Attempts: 1, MessageID: "<id>"}, nil
}

func (f *fakeRefreshService) TestConnection(context.Context) error { return nil }

func TestBulkSender_SendAll(t *testing.T) {
	svc := &fakeRefreshService{
		fail: map[string]bool{"b@x.test": true},
		errs: map[string]error{"bad": &domain.CompositionError{Reason: "invalid recipient email"}},
	}
	b := NewBulkSender(svc, 0, discardLogger())

	report := b.SendAll(context.Background(), []domain.SendRequest{
		{Recipient: "a@x.test"},
		{Recipient: "b@x.test"},
		{Recipient: "bad"},
		{Recipient: "c@x.test"},
	})

	require.Len(t, report.Items, 4)
	assert.Equal(t, 2, report.Successful)
	assert.Equal(t, 2, report.Failed)
	assert.Len(t, svc.calls, 4, "a failure never stops the batch")
	assert.Equal(t, "invalid recipient email", report.Items[2].Error)
	assert.Equal(t, domain.ReasonTimeout, report.Items[1].Result.FailureReason)
	assert.Equal(t, "c@x.test", report.Items[3].Request.Recipient)
}

func TestBulkSender_Paces(t *testing.T) {
	svc := &fakeRefreshService{}
	b := NewBulkSender(svc, 30*time.Millisecond, discardLogger())

	start := time.Now()
	report := b.SendAll(context.Background(), []domain.SendRequest{
		{Recipient: "a@x.test"},
		{Recipient: "b@x.test"},
		{Recipient: "c@x.test"},
	})
	assert.Equal(t, 3, report.Successful)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestBulkSender_CancelledContext(t *testing.T) {
	svc := &fakeRefreshService{}
	b := NewBulkSender(svc, time.Hour, discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	report := b.SendAll(ctx, []domain.SendRequest{
		{Recipient: "a@x.test"},
		{Recipient: "b@x.test"},
	})

	require.Len(t, report.Items, 2)
	assert.Equal(t, 1, report.Successful)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, domain.ReasonTimeout, report.Items[1].Result.FailureReason)
	assert.NotEmpty(t, report.Items[1].Error)
	assert.Len(t, svc.calls, 1)
}

func TestCompositionMessage(t *testing.T) {
	assert.Equal(t, "invalid submission endpoint", CompositionMessage(&domain.CompositionError{Reason: "invalid submission endpoint", Err: errors.New("x")}))
	assert.Equal(t, "plain", CompositionMessage(errors.New("plain")))
	assert.True(t, IsCompositionError(&domain.CompositionError{Reason: "r"}))
	assert.False(t, IsCompositionError(errors.New("plain")))
}
