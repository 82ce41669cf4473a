package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"resumerefresh/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gmailOrigin  = "https://mail.google.com"
	sourceOrigin = "https://amp.gmail.dev"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ampRequest(method, origin, source string) *http.Request {
	target := "/api/amp/submit"
	if source != "" {
		target += "?" + SourceOriginParam + "=" + source
	}
	req := httptest.NewRequest(method, target, nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestAMPOriginPolicy_IsTrusted(t *testing.T) {
	strict := NewAMPOriginPolicy(DefaultAMPTrustedOrigins, false, "")
	dev := NewAMPOriginPolicy(DefaultAMPTrustedOrigins, true, "")

	tests := []struct {
		name   string
		origin string
		strict bool
		dev    bool
	}{
		{"gmail", gmailOrigin, true, true},
		{"gmail trailing slash", gmailOrigin + "/", true, true},
		{"gmail mixed case", "https://Mail.Google.com", true, true},
		{"yahoo", "https://mail.yahoo.com", true, true},
		{"lookalike", "https://mail.google.com.evil.test", false, false},
		{"localhost", "http://localhost:3000", false, true},
		{"loopback ip", "http://127.0.0.1:8080", false, true},
		{"loopback v6", "http://[::1]:8080", false, true},
		{"unrelated", "https://example.org", false, false},
		{"empty", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.strict, strict.IsTrusted(tt.origin))
			assert.Equal(t, tt.dev, dev.IsTrusted(tt.origin))
		})
	}
}

func TestAMPOriginPolicy_AuthorizeOrigin(t *testing.T) {
	p := NewAMPOriginPolicy(DefaultAMPTrustedOrigins, false, "")
	assert.NoError(t, p.AuthorizeOrigin(gmailOrigin, sourceOrigin))
	assert.ErrorIs(t, p.AuthorizeOrigin(gmailOrigin, ""), domain.ErrMissingSourceOrigin)
	assert.ErrorIs(t, p.AuthorizeOrigin("https://evil.test", sourceOrigin), domain.ErrOriginRejected)
	assert.True(t, errors.Is(p.AuthorizeOrigin("", sourceOrigin), domain.ErrOriginRejected))
}

func TestAMPCORS(t *testing.T) {
	policy := NewAMPOriginPolicy(DefaultAMPTrustedOrigins, false, "hr@acme.test")

	tests := []struct {
		name          string
		method        string
		origin        string
		source        string
		wantStatus    int
		wantNext      bool
		wantMessage   string
		wantEcho      bool
		wantAllowOrig bool
	}{
		{
			name:          "trusted post reaches handler",
			method:        http.MethodPost,
			origin:        gmailOrigin,
			source:        sourceOrigin,
			wantStatus:    http.StatusOK,
			wantNext:      true,
			wantEcho:      true,
			wantAllowOrig: true,
		},
		{
			name:          "trusted preflight",
			method:        http.MethodOptions,
			origin:        gmailOrigin,
			source:        sourceOrigin,
			wantStatus:    http.StatusNoContent,
			wantEcho:      true,
			wantAllowOrig: true,
		},
		{
			name:          "missing source origin",
			method:        http.MethodPost,
			origin:        gmailOrigin,
			wantStatus:    http.StatusBadRequest,
			wantMessage:   "Missing __amp_source_origin parameter",
			wantAllowOrig: true,
		},
		{
			name:        "untrusted origin still echoes source",
			method:      http.MethodPost,
			origin:      "https://evil.test",
			source:      sourceOrigin,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Origin not allowed",
			wantEcho:    true,
		},
		{
			name:        "untrusted preflight",
			method:      http.MethodOptions,
			origin:      "https://evil.test",
			source:      sourceOrigin,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Origin not allowed",
			wantEcho:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}
			rr := httptest.NewRecorder()
			AMPCORS(policy, quietLogger(), next)(rr, ampRequest(tt.method, tt.origin, tt.source))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantNext, called)
			assert.Equal(t, ampExposeHeaders, rr.Header().Get("Access-Control-Expose-Headers"))
			if tt.wantEcho {
				assert.Equal(t, sourceOrigin, rr.Header().Get(HeaderAllowSourceOrigin))
			} else {
				assert.Empty(t, rr.Header().Get(HeaderAllowSourceOrigin))
			}
			if tt.wantAllowOrig {
				assert.Equal(t, tt.origin, rr.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
			}
			if tt.wantMessage != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.Equal(t, "Origin rejected", body["error"])
				assert.Equal(t, tt.wantMessage, body["message"])
			}
			if tt.method == http.MethodOptions && tt.wantStatus == http.StatusNoContent {
				assert.Empty(t, rr.Body.String())
				assert.Equal(t, ampAllowMethods, rr.Header().Get("Access-Control-Allow-Methods"))
			}
		})
	}
}

func TestAMPCORS_EmailSender(t *testing.T) {
	policy := NewAMPOriginPolicy(DefaultAMPTrustedOrigins, false, "HR@acme.test")
	next := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	req := ampRequest(http.MethodPost, gmailOrigin, sourceOrigin)
	req.Header.Set(HeaderEmailSender, "hr@acme.test")
	rr := httptest.NewRecorder()
	AMPCORS(policy, quietLogger(), next)(rr, req)
	assert.Equal(t, "hr@acme.test", rr.Header().Get(HeaderEmailAllowSender))

	req = ampRequest(http.MethodPost, gmailOrigin, sourceOrigin)
	req.Header.Set(HeaderEmailSender, "someone@else.test")
	rr = httptest.NewRecorder()
	AMPCORS(policy, quietLogger(), next)(rr, req)
	assert.Empty(t, rr.Header().Get(HeaderEmailAllowSender))
}
