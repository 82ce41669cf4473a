package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"resumerefresh/internal/domain"
)

// DefaultBulkInterval paces bulk sends when none is configured.
const DefaultBulkInterval = 2 * time.Second

type bulkSender struct {
	service  domain.ResumeRefreshService
	interval time.Duration
	logger   *slog.Logger
}

// NewBulkSender paces sends through service at one per interval. A zero
// interval disables pacing.
func NewBulkSender(service domain.ResumeRefreshService, interval time.Duration, logger *slog.Logger) domain.BulkSender {
	if interval < 0 {
		interval = DefaultBulkInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &bulkSender{service: service, interval: interval, logger: logger}
}

// SendAll sends to every request in order. A failure never stops the batch;
// once ctx is done the remaining requests are reported as timed out.
func (b *bulkSender) SendAll(ctx context.Context, reqs []domain.SendRequest) domain.BulkReport {
	limit := rate.Inf
	if b.interval > 0 {
		limit = rate.Every(b.interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	report := domain.BulkReport{Items: make([]domain.BulkItem, 0, len(reqs))}
	for i, req := range reqs {
		item := domain.BulkItem{Request: req}
		if err := limiter.Wait(ctx); err != nil {
			item.Result = domain.DispatchResult{Recipient: req.Recipient, FailureReason: domain.ReasonTimeout}
			item.Error = err.Error()
		} else {
			res, err := b.service.Send(ctx, req)
			item.Result = res
			if err != nil {
				item.Error = CompositionMessage(err)
			}
		}
		if item.Result.Success {
			report.Successful++
		} else {
			report.Failed++
		}
		b.logger.InfoContext(ctx, "bulk send progress",
			"index", i+1,
			"total", len(reqs),
			"recipient", domain.RedactEmail(req.Recipient),
			"success", item.Result.Success,
		)
		report.Items = append(report.Items, item)
	}
	return report
}
