package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"resumerefresh/internal/bootstrap"
	"resumerefresh/internal/domain"
)

// NewBulkCommand sends to every applicant listed in a CSV file.
func NewBulkCommand() *cobra.Command {
	var (
		file    string
		company string
	)
	cmd := &cobra.Command{
		Use:   "bulk --file applicants.csv",
		Short: "Send resume refresh emails to applicants from a CSV file",
		Long: "The CSV has a header row with the columns email, name, jobTitle and optionally companyName.\n" +
			"Sends are paced by BULK_SEND_INTERVAL; a failed recipient never stops the batch.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if file == "" {
				return errors.New("--file is required")
			}
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open %s: %w", file, err)
			}
			defer f.Close()
			reqs, err := ReadRecipientsCSV(f, company)
			if err != nil {
				return err
			}

			app, err := rt.open(cmd.Context(), bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			report := app.Bulk.SendAll(cmd.Context(), reqs)
			if err := rt.printResults(rt.writer, report.Items); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d sent, %d failed\n", report.Successful, report.Failed)
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d sends failed", report.Failed, len(reqs))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file with applicants")
	cmd.Flags().StringVar(&company, "company", "", "Company name for rows without one")
	return cmd
}

// ReadRecipientsCSV parses applicant rows. The header row is required and
// matched case-insensitively; blank rows are skipped.
func ReadRecipientsCSV(r io.Reader, defaultCompany string) ([]domain.SendRequest, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv is empty")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	emailCol, ok := cols["email"]
	if !ok {
		return nil, errors.New("csv header must contain an email column")
	}
	get := func(row []string, name string) string {
		if i, ok := cols[strings.ToLower(name)]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var reqs []domain.SendRequest
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if emailCol >= len(row) || strings.TrimSpace(row[emailCol]) == "" {
			continue
		}
		company := get(row, "companyName")
		if company == "" {
			company = defaultCompany
		}
		reqs = append(reqs, domain.SendRequest{
			Recipient:     strings.TrimSpace(row[emailCol]),
			ApplicantName: get(row, "name"),
			JobTitle:      get(row, "jobTitle"),
			CompanyName:   company,
		})
	}
	if len(reqs) == 0 {
		return nil, errors.New("csv contains no recipients")
	}
	return reqs, nil
}
