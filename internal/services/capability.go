package services

import (
	"log/slog"
	"strings"

	"resumerefresh/internal/domain"
)

// DefaultAMPDomains are recipient domains whose webmail renders AMP for Email.
var DefaultAMPDomains = []string{
	"gmail.com",
	"googlemail.com",
	"yahoo.com",
	"yahoo.co.uk",
	"yahoo.ca",
	"yahoo.co.jp",
	"mail.ru",
}

// CapabilityClassifier tags recipients as interactive or static-only from
// their email domain. The domain set is fixed at construction.
type CapabilityClassifier struct {
	domains map[string]struct{}
	logger  *slog.Logger
}

// NewCapabilityClassifier builds a classifier over domains (DefaultAMPDomains when empty).
func NewCapabilityClassifier(domains []string, logger *slog.Logger) *CapabilityClassifier {
	if len(domains) == 0 {
		domains = DefaultAMPDomains
	}
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			set[d] = struct{}{}
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CapabilityClassifier{domains: set, logger: logger}
}

// Classify returns CapabilityInteractive when the domain after the last '@'
// is allow-listed, CapabilityStaticOnly otherwise (including malformed input).
func (c *CapabilityClassifier) Classify(email string) domain.CapabilityTag {
	d := domain.EmailDomain(email)
	tag := domain.CapabilityStaticOnly
	if _, ok := c.domains[d]; ok && d != "" {
		tag = domain.CapabilityInteractive
	}
	c.logger.Debug("amp capability resolved", "domain", d, "tag", string(tag))
	return tag
}
