package email

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/smithy-go"

	"resumerefresh/internal/domain"
)

// sesAPI is the subset of the SES client the channel uses.
type sesAPI interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
	GetSendQuota(ctx context.Context, params *ses.GetSendQuotaInput, optFns ...func(*ses.Options)) (*ses.GetSendQuotaOutput, error)
}

// sesChannel sends raw MIME through SES so the AMP part is preserved.
type sesChannel struct {
	client sesAPI
}

func (s *sesChannel) Transmit(ctx context.Context, msg *domain.OutboundMessage) (string, error) {
	raw, err := rawMessage(msg)
	if err != nil {
		return "", &domain.TransmissionError{Reason: domain.ReasonRejected, Err: err}
	}
	out, err := s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(msg.FromAddress),
		Destinations: []string{msg.To},
		RawMessage:   &types.RawMessage{Data: raw},
	})
	if err != nil {
		return "", classifySESError(fmt.Errorf("failed to send email via SES: %w", err))
	}
	return aws.ToString(out.MessageId), nil
}

func (s *sesChannel) Verify(ctx context.Context) error {
	if _, err := s.client.GetSendQuota(ctx, &ses.GetSendQuotaInput{}); err != nil {
		return classifySESError(fmt.Errorf("failed to read SES send quota: %w", err))
	}
	return nil
}

func (s *sesChannel) Close() error { return nil }

func classifySESError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &domain.TransmissionError{Reason: domain.ReasonTimeout, Transient: true, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &domain.TransmissionError{Reason: domain.ReasonTimeout, Transient: true, Err: err}
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return &domain.TransmissionError{Reason: domain.ReasonUnknown, Transient: true, Err: err}
	}
	switch apiErr.ErrorCode() {
	case "MessageRejected", "MailFromDomainNotVerified", "MailFromDomainNotVerifiedException",
		"ConfigurationSetDoesNotExist", "ConfigurationSetDoesNotExistException",
		"AccountSendingPausedException", "InvalidParameterValue":
		return &domain.TransmissionError{Reason: domain.ReasonRejected, Err: err}
	case "InvalidClientTokenId", "SignatureDoesNotMatch", "AccessDenied", "AccessDeniedException",
		"UnrecognizedClientException", "ExpiredToken", "IncompleteSignature":
		return &domain.TransmissionError{Reason: domain.ReasonAuth, Err: err}
	case "Throttling", "ThrottlingException", "RequestTimeout", "ServiceUnavailable":
		return &domain.TransmissionError{Reason: domain.ReasonUnknown, Transient: true, Err: err}
	}
	if apiErr.ErrorFault() == smithy.FaultServer {
		return &domain.TransmissionError{Reason: domain.ReasonUnknown, Transient: true, Err: err}
	}
	return &domain.TransmissionError{Reason: domain.ReasonUnknown, Err: err}
}
