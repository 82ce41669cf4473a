package services

import (
	"context"
	"testing"

	"resumerefresh/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRefreshService(ch *fakeChannel, r domain.EmailTemplateRenderer) domain.ResumeRefreshService {
	logger := discardLogger()
	return NewResumeRefreshService(
		NewCapabilityClassifier(nil, logger),
		NewContentComposer(r, DefaultProfileDefaults),
		newTestDispatcher(ch, 3),
		testBase,
		logger,
	)
}

func TestResumeRefreshService_Send(t *testing.T) {
	tests := []struct {
		name            string
		recipient       string
		wantInteractive bool
	}{
		{"amp capable recipient", "jane@gmail.com", true},
		{"static recipient", "sam@example.org", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := &fakeChannel{}
			svc := newTestRefreshService(ch, &stubRenderer{})

			res, err := svc.Send(context.Background(), domain.SendRequest{Recipient: tt.recipient})
			require.NoError(t, err)
			assert.True(t, res.Success)
			assert.Equal(t, tt.wantInteractive, res.InteractiveUsed)
			require.Len(t, ch.sent, 1)
			assert.Equal(t, tt.wantInteractive, ch.sent[0].AMP != "")
			assert.Equal(t, "Hirefy", ch.sent[0].Headers[domain.HeaderCompany])
			assert.Equal(t, "Position", ch.sent[0].Headers[domain.HeaderPosition])
		})
	}
}

func TestResumeRefreshService_Send_UsesRequestBase(t *testing.T) {
	r := &stubRenderer{}
	svc := newTestRefreshService(&fakeChannel{}, r)

	_, err := svc.Send(context.Background(), domain.SendRequest{
		Recipient:              "sam@example.org",
		SubmissionEndpointBase: "https://other.test",
	})
	require.NoError(t, err)
	data := r.lastRaw[resumeRefreshTemplate].(domain.ResumeRefreshEmailData)
	assert.Equal(t, "https://other.test"+domain.AMPSubmitPath, data.SubmitURL)
}

func TestResumeRefreshService_Send_CompositionError(t *testing.T) {
	ch := &fakeChannel{}
	svc := newTestRefreshService(ch, &stubRenderer{})

	res, err := svc.Send(context.Background(), domain.SendRequest{Recipient: "nope"})
	require.Error(t, err)
	assert.True(t, IsCompositionError(err))
	assert.False(t, res.Success)
	assert.Equal(t, 0, res.Attempts)
	assert.Equal(t, domain.ReasonRejected, res.FailureReason)
	assert.Zero(t, ch.calls(), "nothing is transmitted")
}

func TestResumeRefreshService_TestConnection(t *testing.T) {
	ch := &fakeChannel{verifyErr: permanent(domain.ReasonAuth)}
	svc := newTestRefreshService(ch, &stubRenderer{})
	assert.Error(t, svc.TestConnection(context.Background()))

	ch.verifyErr = nil
	assert.NoError(t, svc.TestConnection(context.Background()))
}
