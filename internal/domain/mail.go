package domain

import (
	"context"
	"fmt"
)

// Header names attached to every resume refresh email.
const (
	HeaderEmailType    = "X-Email-Type"
	HeaderCompany      = "X-Company"
	HeaderPosition     = "X-Position"
	HeaderAMPSupported = "X-AMP-Supported"

	EmailTypeResumeRefresh = "Resume-Refreshment-Request"
)

// OutboundMessage is what a MailChannel transmits.
type OutboundMessage struct {
	MessageID   string
	To          string
	FromAddress string
	FromName    string
	Subject     string
	HTML        string
	Text        string
	AMP         string
	Headers     map[string]string
}

// MailChannel is the outbound transport (SMTP pool, SES, noop).
type MailChannel interface {
	// Transmit sends msg once and returns the transport message id.
	// Failures are *TransmissionError.
	Transmit(ctx context.Context, msg *OutboundMessage) (string, error)
	// Verify checks connectivity and credentials without sending.
	Verify(ctx context.Context) error
	Close() error
}

// TransmissionError is a classified transport failure.
type TransmissionError struct {
	Reason    FailureReason
	Transient bool
	Err       error
}

func (e *TransmissionError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s transmission failure (%s): %v", kind, e.Reason, e.Err)
}

func (e *TransmissionError) Unwrap() error { return e.Err }
