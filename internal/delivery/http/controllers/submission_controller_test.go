package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"resumerefresh/internal/delivery/http/helpers"
	"resumerefresh/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionController_SubmitAMP(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		svcErr      error
		wantStatus  int
		wantError   string
		wantMessage string
	}{
		{
			name:        "success",
			contentType: "application/x-www-form-urlencoded",
			body:        "email=jane%40gmail.com&sameCompany=yes&skills=React&skills=Python&currentRole=Lead&yearsOfExperience=7",
			wantStatus:  http.StatusOK,
			wantMessage: submitSuccessMessage,
		},
		{
			name:        "validation failure",
			contentType: "application/json",
			body:        `{"email":"jane@gmail.com","yearsOfExperience":51}`,
			svcErr:      &domain.ValidationError{Field: "yearsOfExperience", Message: "must be between 0 and 50"},
			wantStatus:  http.StatusBadRequest,
			wantError:   validationTitle,
			wantMessage: `"yearsOfExperience" must be between 0 and 50`,
		},
		{
			name:        "persistence failure hides details",
			contentType: "application/json",
			body:        `{"email":"jane@gmail.com"}`,
			svcErr:      errors.New("failed to save submission: pq: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantError:   submitFailedTitle,
			wantMessage: submitFailedMessage,
		},
		{
			name:        "unsupported body",
			contentType: "text/csv",
			body:        "a,b",
			wantStatus:  http.StatusBadRequest,
			wantError:   validationTitle,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockSubmissionService{
				record: &domain.SubmissionRecord{ID: "sub-1", ApplicantName: "Jane"},
				err:    tt.svcErr,
			}
			ctrl := NewSubmissionController(testLogger(), svc)

			req := httptest.NewRequest(http.MethodPost, "/api/amp/submit?__amp_source_origin=https%3A%2F%2Famp.gmail.dev", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			req.Header.Set("User-Agent", "Gmail")
			w := httptest.NewRecorder()
			ctrl.SubmitAMP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				var resp AMPSubmitResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantMessage, resp.Message)
				assert.Equal(t, "sub-1", resp.SubmissionID)
				assert.Equal(t, []string{"React", "Python"}, svc.lastInput.Skills)
				assert.Equal(t, domain.SourceInteractiveEmail, svc.lastMeta.Source)
				assert.Equal(t, "Gmail", svc.lastMeta.UserAgent)
				return
			}
			var resp helpers.AMPErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantError, resp.Error)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Message)
			}
			assert.NotContains(t, w.Body.String(), "pq:")
		})
	}
}

func TestSubmissionController_List(t *testing.T) {
	svc := &mockSubmissionService{
		items: []*domain.SubmissionRecord{{ID: "a"}, {ID: "b"}},
		total: 5,
	}
	ctrl := NewSubmissionController(testLogger(), svc)

	q := url.Values{"email": {"jane"}, "page": {"2"}, "page_size": {"2"}}
	req := httptest.NewRequest(http.MethodGet, "/api/amp/submissions?"+q.Encode(), nil)
	w := httptest.NewRecorder()
	ctrl.List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp ListSubmissionsSuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Error)
	assert.Len(t, resp.Data.Items, 2)
	assert.Equal(t, 3, resp.Data.Pagination.TotalPages)
	assert.Equal(t, "jane", svc.lastEmail)
	assert.Equal(t, domain.PaginationParams{Page: 2, PageSize: 2}, svc.lastPage)
}

func TestSubmissionController_List_Error(t *testing.T) {
	ctrl := NewSubmissionController(testLogger(), &mockSubmissionService{err: errors.New("db down")})
	w := httptest.NewRecorder()
	ctrl.List(w, httptest.NewRequest(http.MethodGet, "/api/amp/submissions", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp helpers.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, helpers.ErrCodeInternalError, resp.Error.Code)
}
