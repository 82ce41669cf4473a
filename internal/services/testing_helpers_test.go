package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"resumerefresh/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeChannel implements domain.MailChannel and returns scripted errors per attempt.
type fakeChannel struct {
	mu        sync.Mutex
	errs      []error
	sent      []*domain.OutboundMessage
	verifyErr error
}

func (f *fakeChannel) Transmit(_ context.Context, msg *domain.OutboundMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	if i := len(f.sent) - 1; i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	return msg.MessageID, nil
}

func (f *fakeChannel) Verify(context.Context) error { return f.verifyErr }

func (f *fakeChannel) Close() error { return nil }

func (f *fakeChannel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func transient(reason domain.FailureReason) error {
	return &domain.TransmissionError{Reason: reason, Transient: true, Err: io.ErrUnexpectedEOF}
}

func permanent(reason domain.FailureReason) error {
	return &domain.TransmissionError{Reason: reason, Err: io.ErrUnexpectedEOF}
}

// stubRenderer renders fixed strings so composer tests do not depend on templates.
type stubRenderer struct {
	err     error
	ampErr  error
	lastRaw map[string]any
}

func (s *stubRenderer) Render(name string, data any) (string, string, string, error) {
	if s.err != nil {
		return "", "", "", s.err
	}
	s.record(name, data)
	return "Subject", "<p>" + name + "</p>", name, nil
}

func (s *stubRenderer) RenderHTML(name string, data any) (string, error) {
	if s.ampErr != nil {
		return "", s.ampErr
	}
	s.record(name, data)
	return "<html>" + name + "</html>", nil
}

func (s *stubRenderer) record(name string, data any) {
	if s.lastRaw == nil {
		s.lastRaw = map[string]any{}
	}
	s.lastRaw[name] = data
}
