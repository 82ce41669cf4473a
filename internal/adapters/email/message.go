package email

import (
	"bytes"
	"fmt"
	"sort"

	"gopkg.in/gomail.v2"

	"resumerefresh/internal/domain"
)

// MIME types of the alternative parts. Clients pick the last part they can
// render, so the AMP part sits between plain text and HTML.
const (
	mimeText = "text/plain"
	mimeAMP  = "text/x-amp-html"
	mimeHTML = "text/html"
)

// buildMessage converts msg into a gomail message with multipart/alternative
// parts ordered text, AMP (when present), HTML.
func buildMessage(msg *domain.OutboundMessage) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetAddressHeader("From", msg.FromAddress, msg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.MessageID != "" {
		m.SetHeader("Message-ID", msg.MessageID)
	}

	keys := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.SetHeader(k, msg.Headers[k])
	}

	m.SetBody(mimeText, msg.Text)
	if msg.AMP != "" {
		m.AddAlternative(mimeAMP, msg.AMP)
	}
	m.AddAlternative(mimeHTML, msg.HTML)
	return m
}

// rawMessage renders msg to RFC 5322 bytes.
func rawMessage(msg *domain.OutboundMessage) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buildMessage(msg).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write mime message: %w", err)
	}
	return buf.Bytes(), nil
}
