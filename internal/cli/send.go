package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"resumerefresh/internal/bootstrap"
	"resumerefresh/internal/domain"
)

// NewSendCommand sends one resume refresh email.
func NewSendCommand() *cobra.Command {
	var req domain.SendRequest
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a resume refresh email to one applicant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if req.Recipient == "" {
				return fmt.Errorf("--to is required")
			}
			app, err := rt.open(cmd.Context(), bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Refresh.Send(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := rt.printResults(rt.writer, []domain.BulkItem{{Request: req, Result: result}}); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("delivery failed after %d attempt(s): %s", result.Attempts, result.FailureReason)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Recipient, "to", "", "Recipient email address")
	cmd.Flags().StringVar(&req.ApplicantName, "name", "", "Applicant name")
	cmd.Flags().StringVar(&req.JobTitle, "job", "", "Job title")
	cmd.Flags().StringVar(&req.CompanyName, "company", "", "Company name")
	cmd.Flags().StringVar(&req.SubmissionEndpointBase, "server-url", "", "Public base URL for submissions (defaults to SERVER_URL)")
	return cmd
}

// NewVerifyCommand checks the configured mail channel.
func NewVerifyCommand() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify connectivity and credentials of the mail channel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			app, err := rt.open(cmd.Context(), bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			if err := app.Refresh.TestConnection(ctx); err != nil {
				return fmt.Errorf("mail channel verification failed: %w", err)
			}
			_, err = fmt.Fprintf(rt.writer, "mail channel %q connected successfully\n", app.Config.Mail.Provider)
			return err
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Verification timeout")
	return cmd
}

func (rt *runtimeState) printResults(w io.Writer, items []domain.BulkItem) error {
	if rt.outputFormat == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(items) == 1 {
			return enc.Encode(items[0])
		}
		return enc.Encode(items)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RECIPIENT\tSUCCESS\tATTEMPTS\tAMP\tMESSAGE ID\tREASON")
	for _, it := range items {
		r := it.Result
		reason := string(r.FailureReason)
		if it.Error != "" {
			reason = it.Error
		}
		fmt.Fprintf(tw, "%s\t%t\t%d\t%t\t%s\t%s\n", it.Request.Recipient, r.Success, r.Attempts, r.InteractiveUsed, r.MessageID, reason)
	}
	return tw.Flush()
}
