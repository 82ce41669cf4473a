package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumerefresh/internal/domain"
)

func TestReadRecipientsCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		company string
		want    []domain.SendRequest
		wantErr string
	}{
		{
			name:  "header in any case with bom",
			input: "\ufeffEmail,Name,JobTitle,CompanyName\njane@gmail.com,Jane,Data Engineer,Acme\n",
			want: []domain.SendRequest{
				{Recipient: "jane@gmail.com", ApplicantName: "Jane", JobTitle: "Data Engineer", CompanyName: "Acme"},
			},
		},
		{
			name:    "company falls back to flag",
			input:   "email,name,jobTitle\njane@gmail.com,Jane,Data Engineer\nbob@corp.test,Bob,\n",
			company: "Hirefy",
			want: []domain.SendRequest{
				{Recipient: "jane@gmail.com", ApplicantName: "Jane", JobTitle: "Data Engineer", CompanyName: "Hirefy"},
				{Recipient: "bob@corp.test", ApplicantName: "Bob", CompanyName: "Hirefy"},
			},
		},
		{
			name:  "rows without email are skipped",
			input: "name,email\nJane,jane@gmail.com\nNobody,\n\nShort\n",
			want: []domain.SendRequest{
				{Recipient: "jane@gmail.com", ApplicantName: "Jane"},
			},
		},
		{
			name:    "empty file",
			input:   "",
			wantErr: "csv is empty",
		},
		{
			name:    "missing email column",
			input:   "name,jobTitle\nJane,Engineer\n",
			wantErr: "email column",
		},
		{
			name:    "header only",
			input:   "email,name\n",
			wantErr: "no recipients",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadRecipientsCSV(strings.NewReader(tt.input), tt.company)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
