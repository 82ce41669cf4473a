package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"resumerefresh/internal/delivery/http/helpers"
	"resumerefresh/internal/domain"
	"resumerefresh/internal/metrics"
)

// AMP for Email CORS headers and query parameter.
const (
	SourceOriginParam       = "__amp_source_origin"
	HeaderAllowSourceOrigin = "AMP-Access-Control-Allow-Source-Origin"
	HeaderEmailSender       = "AMP-Email-Sender"
	HeaderEmailAllowSender  = "AMP-Email-Allow-Sender"
	ampAllowMethods         = "POST, OPTIONS"
	ampAllowHeaders         = "Content-Type, AMP-Email-Sender, AMP-Same-Origin"
	ampExposeHeaders        = HeaderAllowSourceOrigin + ", " + HeaderEmailAllowSender
)

// DefaultAMPTrustedOrigins are the webmail origins that render AMP for Email.
var DefaultAMPTrustedOrigins = []string{
	"https://mail.google.com",
	"https://mail.yahoo.com",
	"https://e.mail.ru",
}

// AMPOriginPolicy decides which origins may post AMP form submissions.
type AMPOriginPolicy struct {
	trusted       map[string]struct{}
	allowLoopback bool
	sender        string
}

// NewAMPOriginPolicy builds a policy over trusted origins. allowLoopback
// additionally admits http(s)://localhost, 127.0.0.1 and [::1] on any port.
// sender is the From address answered in AMP-Email-Allow-Sender.
func NewAMPOriginPolicy(trusted []string, allowLoopback bool, sender string) *AMPOriginPolicy {
	set := make(map[string]struct{}, len(trusted))
	for _, o := range trusted {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o != "" {
			set[strings.ToLower(o)] = struct{}{}
		}
	}
	return &AMPOriginPolicy{
		trusted:       set,
		allowLoopback: allowLoopback,
		sender:        strings.ToLower(strings.TrimSpace(sender)),
	}
}

// IsTrusted reports whether origin is on the allow-list or an admitted loopback origin.
func (p *AMPOriginPolicy) IsTrusted(origin string) bool {
	origin = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(origin), "/"))
	if origin == "" {
		return false
	}
	if _, ok := p.trusted[origin]; ok {
		return true
	}
	return p.allowLoopback && isLoopbackOrigin(origin)
}

// AuthorizeOrigin checks an inbound AMP request. A missing source origin
// fails with domain.ErrMissingSourceOrigin, an untrusted origin with
// domain.ErrOriginRejected.
func (p *AMPOriginPolicy) AuthorizeOrigin(origin, sourceOrigin string) error {
	if strings.TrimSpace(sourceOrigin) == "" {
		return domain.ErrMissingSourceOrigin
	}
	if !p.IsTrusted(origin) {
		return fmt.Errorf("%w: %q", domain.ErrOriginRejected, origin)
	}
	return nil
}

// AllowsSender reports whether the AMP-Email-Sender value matches the configured From address.
func (p *AMPOriginPolicy) AllowsSender(sender string) bool {
	return p.sender != "" && strings.EqualFold(strings.TrimSpace(sender), p.sender)
}

func isLoopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// AMPCORS applies the AMP for Email CORS contract around next. The source
// origin is echoed whenever the request carried it, including on rejection,
// so the mail client renders its submit-error template. OPTIONS preflights
// are answered here with 204.
func AMPCORS(policy *AMPOriginPolicy, logger *slog.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		sourceOrigin := r.URL.Query().Get(SourceOriginParam)

		h := w.Header()
		if sourceOrigin != "" {
			h.Set(HeaderAllowSourceOrigin, sourceOrigin)
		}
		h.Set("Access-Control-Expose-Headers", ampExposeHeaders)
		if policy.IsTrusted(origin) {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}
		if sender := r.Header.Get(HeaderEmailSender); sender != "" && policy.AllowsSender(sender) {
			h.Set(HeaderEmailAllowSender, sender)
		}

		if err := policy.AuthorizeOrigin(origin, sourceOrigin); err != nil {
			metrics.OriginRejected.Inc()
			logger.WarnContext(r.Context(), "amp request rejected",
				"path", r.URL.Path,
				"method", r.Method,
				"origin", origin,
				"err", err,
			)
			message := "Origin not allowed"
			if sourceOrigin == "" {
				message = "Missing " + SourceOriginParam + " parameter"
			}
			helpers.WriteAMPError(w, http.StatusBadRequest, "Origin rejected", message)
			return
		}

		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", ampAllowMethods)
			h.Set("Access-Control-Allow-Headers", ampAllowHeaders)
			h.Set("Access-Control-Max-Age", corsMaxAge)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}
