package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"resumerefresh/internal/domain"
	"resumerefresh/internal/metrics"
)

// Sender identifies the From header of outbound mail.
type Sender struct {
	Address string
	Name    string
}

// Dispatcher transmits composed messages through a MailChannel with a bounded retry policy.
type Dispatcher struct {
	channel domain.MailChannel
	policy  RetryPolicy
	sender  Sender
	logger  *slog.Logger
	now     func() time.Time
}

// NewDispatcher returns a Dispatcher over channel.
func NewDispatcher(channel domain.MailChannel, policy RetryPolicy, sender Sender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		channel: channel,
		policy:  policy,
		sender:  sender,
		logger:  logger,
		now:     time.Now,
	}
}

// Send transmits msg to profile.Email. The AMP part is attached only when tag
// is interactive. Transient failures are retried per the policy; permanent
// ones return after the failing attempt.
func (d *Dispatcher) Send(ctx context.Context, profile domain.RecipientProfile, msg domain.ComposedMessage, tag domain.CapabilityTag) domain.DispatchResult {
	interactive := tag == domain.CapabilityInteractive && msg.HasInteractive()
	out := d.buildMessage(profile, msg, interactive)
	mode := "static"
	if interactive {
		mode = "amp"
	}

	result := domain.DispatchResult{
		Recipient:       profile.Email,
		InteractiveUsed: interactive,
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		result.Attempts = attempt
		id, err := d.channel.Transmit(ctx, out)
		metrics.DispatchAttempts.WithLabelValues(string(attemptReason(err))).Inc()
		if err == nil {
			sentAt := d.now()
			result.Success = true
			result.MessageID = id
			result.SentAt = &sentAt
			metrics.DispatchTotal.WithLabelValues(mode, "success").Inc()
			d.logger.InfoContext(ctx, "resume refresh email sent",
				"recipient", domain.RedactEmail(profile.Email),
				"mode", mode,
				"attempts", attempt,
				"message_id", id,
			)
			return result
		}
		lastErr = err
		if !d.policy.ShouldRetry(attempt, err) {
			break
		}
		delay := d.policy.Delay(attempt)
		d.logger.WarnContext(ctx, "send attempt failed, retrying",
			"recipient", domain.RedactEmail(profile.Email),
			"attempt", attempt,
			"delay_ms", delay.Milliseconds(),
			"err", err,
		)
		if werr := d.policy.Wait(ctx, delay); werr != nil {
			lastErr = &domain.TransmissionError{Reason: domain.ReasonTimeout, Transient: true, Err: werr}
			break
		}
	}

	result.FailureReason = classifyFailure(lastErr)
	metrics.DispatchTotal.WithLabelValues(mode, "failure").Inc()
	d.logger.ErrorContext(ctx, "resume refresh email failed",
		"recipient", domain.RedactEmail(profile.Email),
		"mode", mode,
		"attempts", result.Attempts,
		"reason", string(result.FailureReason),
		"err", lastErr,
	)
	return result
}

// Verify checks the underlying channel.
func (d *Dispatcher) Verify(ctx context.Context) error {
	if err := d.channel.Verify(ctx); err != nil {
		return fmt.Errorf("verify mail channel: %w", err)
	}
	return nil
}

func (d *Dispatcher) buildMessage(profile domain.RecipientProfile, msg domain.ComposedMessage, interactive bool) *domain.OutboundMessage {
	out := &domain.OutboundMessage{
		MessageID:   newMessageID(d.sender.Address),
		To:          profile.Email,
		FromAddress: d.sender.Address,
		FromName:    d.sender.Name,
		Subject:     msg.Subject,
		HTML:        msg.StaticHTML,
		Text:        msg.Text,
		Headers: map[string]string{
			domain.HeaderEmailType:    domain.EmailTypeResumeRefresh,
			domain.HeaderCompany:      profile.CompanyName,
			domain.HeaderPosition:     profile.JobTitle,
			domain.HeaderAMPSupported: strconv.FormatBool(interactive),
		},
	}
	if out.FromName == "" {
		out.FromName = profile.CompanyName + " - Resume Update"
	}
	if interactive {
		out.AMP = msg.InteractiveDocument
	}
	return out
}

func newMessageID(fromAddress string) string {
	host := domain.EmailDomain(fromAddress)
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), host)
}

func attemptReason(err error) domain.FailureReason {
	if err == nil {
		return ""
	}
	return classifyFailure(err)
}

func classifyFailure(err error) domain.FailureReason {
	var te *domain.TransmissionError
	if errors.As(err, &te) && te.Reason != "" {
		return te.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.ReasonTimeout
	}
	return domain.ReasonUnknown
}
