package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"resumerefresh/internal/delivery/http/helpers"
	"resumerefresh/internal/domain"
	"resumerefresh/internal/services"
)

const (
	// MaxBulkRecipients caps one bulk request.
	MaxBulkRecipients       = 500
	testConnectionTimeout   = 30 * time.Second
	errCodeDeliveryFailed   = "delivery_failed"
	connectionFailedMessage = "Email service connection failed"
)

// SendTestRequest is the request body for POST /api/test/send-test.
type SendTestRequest struct {
	To            string `json:"to"`
	ApplicantName string `json:"applicantName"`
	JobTitle      string `json:"jobTitle"`
	CompanyName   string `json:"companyName"`
}

// Validate implements Validator.
func (s SendTestRequest) Validate() []string {
	var errs []string
	to := strings.TrimSpace(s.To)
	if to == "" {
		errs = append(errs, "to is required")
	} else if !domain.IsValidEmail(to) {
		errs = append(errs, "invalid email format")
	}
	return errs
}

// SendTestResponse is the data payload for POST /api/test/send-test.
type SendTestResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Result  domain.DispatchResult `json:"result"`
}

// SendTestSuccessResponse is the response envelope for POST /api/test/send-test (200).
type SendTestSuccessResponse struct {
	Data  SendTestResponse  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ConnectionResponse is the data payload for GET /api/test/test-connection.
type ConnectionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// BulkRecipient is one entry of a bulk send request.
type BulkRecipient struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	JobTitle    string `json:"jobTitle"`
	CompanyName string `json:"companyName"`
}

// SendBulkRequest is the request body for POST /api/admin/send-bulk.
type SendBulkRequest struct {
	Emails      []BulkRecipient `json:"emails"`
	CompanyName string          `json:"companyName"`
}

// Validate implements Validator.
func (s SendBulkRequest) Validate() []string {
	var errs []string
	if len(s.Emails) == 0 {
		errs = append(errs, "emails is required")
	} else if len(s.Emails) > MaxBulkRecipients {
		errs = append(errs, fmt.Sprintf("at most %d emails per request", MaxBulkRecipients))
	}
	for i, e := range s.Emails {
		if strings.TrimSpace(e.Email) == "" {
			errs = append(errs, fmt.Sprintf("emails[%d].email is required", i))
		}
	}
	return errs
}

// SendBulkResponse is the data payload for POST /api/admin/send-bulk.
type SendBulkResponse struct {
	Message string `json:"message"`
	domain.BulkReport
}

// SendBulkSuccessResponse is the response envelope for POST /api/admin/send-bulk (200).
type SendBulkSuccessResponse struct {
	Data  SendBulkResponse  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DispatchController exposes the outbound trigger: test sends, connection checks and bulk sends.
type DispatchController struct {
	Logger    *slog.Logger
	Service   domain.ResumeRefreshService
	Bulk      domain.BulkSender
	ServerURL string
}

// NewDispatchController creates a DispatchController. serverURL is the public
// base the composed emails point their submission endpoints at.
func NewDispatchController(logger *slog.Logger, svc domain.ResumeRefreshService, bulk domain.BulkSender, serverURL string) *DispatchController {
	return &DispatchController{
		Logger:    logger,
		Service:   svc,
		Bulk:      bulk,
		ServerURL: serverURL,
	}
}

// SendTest godoc
// @Summary Send a test resume refresh email
// @Description Classifies the recipient, composes the email (AMP when supported) and dispatches it with retries.
// @Tags test
// @Accept json
// @Produce json
// @Param body body SendTestRequest true "Recipient and context"
// @Success 200 {object} controllers.SendTestSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 502 {object} controllers.SendTestSuccessResponse "delivery failed; data holds the dispatch result"
// @Router /api/test/send-test [post]
func (c *DispatchController) SendTest(w http.ResponseWriter, r *http.Request) {
	var req SendTestRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.Send(r.Context(), domain.SendRequest{
		Recipient:              req.To,
		ApplicantName:          req.ApplicantName,
		JobTitle:               req.JobTitle,
		CompanyName:            req.CompanyName,
		SubmissionEndpointBase: c.ServerURL,
	})
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, services.CompositionMessage(err))
		return
	}
	if !result.Success {
		apiErr := &helpers.APIError{
			Code:    errCodeDeliveryFailed,
			Message: fmt.Sprintf("delivery failed after %d attempt(s): %s", result.Attempts, result.FailureReason),
		}
		data := SendTestResponse{Success: false, Message: "Failed to send test email", Result: result}
		helpers.WriteJSON(w, http.StatusBadGateway, helpers.APIResponse{Data: data, Error: apiErr})
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SendTestResponse{
		Success: true,
		Message: "Test email sent successfully",
		Result:  result,
	})
}

// TestConnection godoc
// @Summary Verify the outbound mail channel
// @Tags test
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains success and message"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /api/test/test-connection [get]
func (c *DispatchController) TestConnection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), testConnectionTimeout)
	defer cancel()
	if err := c.Service.TestConnection(ctx); err != nil {
		c.Logger.WarnContext(r.Context(), "mail channel verification failed", "err", err)
		message := connectionFailedMessage
		var te *domain.TransmissionError
		if errors.As(err, &te) {
			message = fmt.Sprintf("%s (%s)", connectionFailedMessage, te.Reason)
		}
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeUnavailable, message)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ConnectionResponse{Success: true, Message: "Email service connected successfully"})
}

// SendBulk godoc
// @Summary Send resume refresh emails to many applicants
// @Description Sends sequentially with pacing. Each recipient is reported independently; failures never stop the batch.
// @Tags admin
// @Accept json
// @Produce json
// @Param body body SendBulkRequest true "Recipients"
// @Success 200 {object} controllers.SendBulkSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /api/admin/send-bulk [post]
func (c *DispatchController) SendBulk(w http.ResponseWriter, r *http.Request) {
	var req SendBulkRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reqs := make([]domain.SendRequest, 0, len(req.Emails))
	for _, e := range req.Emails {
		company := e.CompanyName
		if company == "" {
			company = req.CompanyName
		}
		reqs = append(reqs, domain.SendRequest{
			Recipient:              e.Email,
			ApplicantName:          e.Name,
			JobTitle:               e.JobTitle,
			CompanyName:            company,
			SubmissionEndpointBase: c.ServerURL,
		})
	}
	report := c.Bulk.SendAll(r.Context(), reqs)
	helpers.WriteJSONSuccess(w, http.StatusOK, SendBulkResponse{
		Message:    fmt.Sprintf("Processed %d emails", len(reqs)),
		BulkReport: report,
	})
}
