package helpers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"resumerefresh/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubmission(t *testing.T) {
	want := domain.SubmissionInput{
		Email:             "jane@gmail.com",
		SameCompany:       "yes",
		Skills:            []string{"React", "Python"},
		CurrentRole:       "Lead",
		YearsOfExperience: "7",
	}

	multipartBody := func() (string, string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		_ = mw.WriteField("email", "jane@gmail.com")
		_ = mw.WriteField("sameCompany", "yes")
		_ = mw.WriteField("skills", "React")
		_ = mw.WriteField("skills", "Python")
		_ = mw.WriteField("currentRole", "Lead")
		_ = mw.WriteField("yearsOfExperience", "7")
		_ = mw.Close()
		return mw.FormDataContentType(), buf.String()
	}
	mpType, mpBody := multipartBody()

	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"json numbers and arrays", "application/json", `{"email":"jane@gmail.com","sameCompany":"yes","skills":["React","Python"],"currentRole":"Lead","yearsOfExperience":7}`},
		{"json strings", "application/json; charset=utf-8", `{"email":"jane@gmail.com","sameCompany":"yes","skills":["React","Python"],"currentRole":"Lead","yearsOfExperience":"7"}`},
		{"urlencoded repeated", "application/x-www-form-urlencoded", "email=jane%40gmail.com&sameCompany=yes&skills=React&skills=Python&currentRole=Lead&yearsOfExperience=7"},
		{"urlencoded brackets", "application/x-www-form-urlencoded", "email=jane%40gmail.com&sameCompany=yes&skills%5B%5D=React&skills%5B%5D=Python&currentRole=Lead&yearsOfExperience=7"},
		{"multipart", mpType, mpBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/amp/submit", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			got, err := ParseSubmission(httptest.NewRecorder(), req)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParseSubmission_SingleSkillString(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"skills":"Docker"}`))
	req.Header.Set("Content-Type", "application/json")
	got, err := ParseSubmission(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"Docker"}, got.Skills)
}

func TestParseSubmission_Errors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/plain")
	_, err := ParseSubmission(httptest.NewRecorder(), req)
	assert.True(t, errors.Is(err, ErrUnsupportedContentType))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"yearsOfExperience":{}}`))
	req.Header.Set("Content-Type", "application/json")
	_, err = ParseSubmission(httptest.NewRecorder(), req)
	assert.Error(t, err)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`+strings.Repeat(" ", MaxBodyBytes)+`"x"}`))
	req.Header.Set("Content-Type", "application/json")
	_, err = ParseSubmission(httptest.NewRecorder(), req)
	assert.Error(t, err)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	assert.Equal(t, "192.0.2.10", ClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ClientIP(req))
}

func TestSubmissionMetadata(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://mail.google.com/")
	req.RemoteAddr = "192.0.2.10:5555"

	meta := SubmissionMetadata(req, domain.SourceWebForm)
	assert.Equal(t, domain.SubmissionMetadata{
		UserAgent: "Mozilla/5.0",
		IPAddress: "192.0.2.10",
		Source:    domain.SourceWebForm,
		Referrer:  "https://mail.google.com/",
	}, meta)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  domain.PaginationParams
	}{
		{"", domain.PaginationParams{Page: 1, PageSize: DefaultPageSize}},
		{"page=3&page_size=10", domain.PaginationParams{Page: 3, PageSize: 10}},
		{"page=0&page_size=1000", domain.PaginationParams{Page: 1, PageSize: MaxPageSize}},
		{"page=abc", domain.PaginationParams{Page: 1, PageSize: DefaultPageSize}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePagination(req))
		})
	}
}
