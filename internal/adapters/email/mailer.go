package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/google/uuid"

	"resumerefresh/internal/domain"
)

// Mail providers.
const (
	ProviderSMTP = "smtp"
	ProviderSES  = "ses"
	ProviderNoop = "noop"
)

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
}

// MailerConfig holds configuration for creating a mail channel.
type MailerConfig struct {
	Provider string
	SMTP     SMTPConfig
	SES      SESConfig
}

// NewMailer creates a mail channel from config. Provider "smtp" uses a pooled
// gomail transport, "ses" uses AWS SES, "noop" or unknown uses a no-op channel.
func NewMailer(config MailerConfig, logger *slog.Logger) (domain.MailChannel, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch config.Provider {
	case ProviderSMTP:
		if config.SMTP.Host == "" {
			return nil, fmt.Errorf("smtp host is required")
		}
		if config.SMTP.InsecureSkipVerify {
			logger.Warn("TLS certificate verification is disabled for SMTP. Use only in development.")
		}
		return OpenSMTPPool(config.SMTP, logger), nil
	case ProviderSES:
		sesConfig := config.SES
		if sesConfig.InsecureSkipVerify {
			logger.Warn("TLS certificate verification is disabled for SES. Use only in development.")
		}
		httpClient := &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: sesConfig.InsecureSkipVerify,
					MinVersion:         tls.VersionTLS12,
				},
			},
		}
		awsCfg := aws.Config{
			Region: sesConfig.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					sesConfig.AccessKeyID,
					sesConfig.SecretAccessKey,
					"",
				),
			),
			HTTPClient: httpClient,
			// Retries are owned by the dispatcher.
			RetryMaxAttempts: 1,
		}
		return &sesChannel{client: ses.NewFromConfig(awsCfg)}, nil
	case ProviderNoop:
		return &noopChannel{logger: logger}, nil
	default:
		logger.Warn("unknown email provider, using noop", "provider", config.Provider)
		return &noopChannel{logger: logger}, nil
	}
}

type noopChannel struct {
	logger *slog.Logger
}

func (n *noopChannel) Transmit(ctx context.Context, msg *domain.OutboundMessage) (string, error) {
	id := msg.MessageID
	if id == "" {
		id = "<" + uuid.NewString() + "@noop>"
	}
	n.logger.InfoContext(ctx, "email would be sent (noop)",
		"to", domain.RedactEmail(msg.To),
		"subject", msg.Subject,
		"amp", msg.AMP != "",
	)
	return id, nil
}

func (n *noopChannel) Verify(context.Context) error { return nil }

func (n *noopChannel) Close() error { return nil }
