package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"resumerefresh/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormController_Show(t *testing.T) {
	r := &mockFormRenderer{}
	ctrl := NewFormController(testLogger(), r, &mockSubmissionService{})

	req := httptest.NewRequest(http.MethodGet, domain.FallbackFormPath+"?email=jane%40gmail.com&name=Jane&job=Engineer&company=Acme", nil)
	w := httptest.NewRecorder()
	ctrl.Show(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, domain.RecipientProfile{Email: "jane@gmail.com", ApplicantName: "Jane", JobTitle: "Engineer", CompanyName: "Acme"}, r.profile)
	assert.Equal(t, domain.FallbackFormPath, r.actionURL)
}

func TestFormController_Submit(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
		wantBody   string
	}{
		{"success", nil, http.StatusOK, "ok sub-9"},
		{"validation", &domain.ValidationError{Field: "sameCompany", Message: "is required"}, http.StatusBadRequest, `"sameCompany" is required`},
		{"store failure", errors.New("db down"), http.StatusInternalServerError, submitFailedMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockSubmissionService{record: &domain.SubmissionRecord{ID: "sub-9"}, err: tt.svcErr}
			ctrl := NewFormController(testLogger(), &mockFormRenderer{}, svc)

			req := httptest.NewRequest(http.MethodPost, domain.FallbackFormPath, strings.NewReader("email=jane%40gmail.com&sameCompany=no"))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()
			ctrl.Submit(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			assert.Equal(t, domain.SourceWebForm, svc.lastMeta.Source)
			assert.Equal(t, "no", svc.lastInput.SameCompany)
		})
	}
}

func TestFormController_RenderFailureFallsBackToText(t *testing.T) {
	r := &mockFormRenderer{err: errors.New("template broken")}
	ctrl := NewFormController(testLogger(), r, &mockSubmissionService{})

	w := httptest.NewRecorder()
	ctrl.Show(w, httptest.NewRequest(http.MethodGet, domain.FallbackFormPath, nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something went wrong")
}
