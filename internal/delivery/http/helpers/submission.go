package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"strings"

	"resumerefresh/internal/domain"
)

// MaxBodyBytes caps inbound request bodies.
const MaxBodyBytes = 1 << 20

// ErrUnsupportedContentType is returned for bodies that are not JSON or form data.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// ParseSubmission reads a submission from a JSON, urlencoded or multipart
// body. Repeated skills form values are collected into one list.
func ParseSubmission(w http.ResponseWriter, r *http.Request) (domain.SubmissionInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil && r.Header.Get("Content-Type") != "" {
		return domain.SubmissionInput{}, fmt.Errorf("%w: %v", ErrUnsupportedContentType, err)
	}

	switch mediaType {
	case "application/json":
		return decodeJSONSubmission(r)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(MaxBodyBytes); err != nil {
			return domain.SubmissionInput{}, fmt.Errorf("parse multipart form: %w", err)
		}
	case "application/x-www-form-urlencoded", "":
		if err := r.ParseForm(); err != nil {
			return domain.SubmissionInput{}, fmt.Errorf("parse form: %w", err)
		}
	default:
		return domain.SubmissionInput{}, fmt.Errorf("%w: %s", ErrUnsupportedContentType, mediaType)
	}

	f := r.PostForm
	var skills []string
	for _, key := range []string{domain.FieldSkills, domain.FieldSkills + "[]"} {
		skills = append(skills, f[key]...)
	}
	return domain.SubmissionInput{
		Email:             f.Get(domain.FieldEmail),
		ApplicantName:     f.Get(domain.FieldApplicantName),
		JobTitle:          f.Get(domain.FieldJobTitle),
		CompanyName:       f.Get(domain.FieldCompanyName),
		SameCompany:       f.Get(domain.FieldSameCompany),
		Skills:            skills,
		CurrentRole:       f.Get(domain.FieldCurrentRole),
		YearsOfExperience: f.Get(domain.FieldYearsOfExperience),
		RelevantInfo:      f.Get(domain.FieldRelevantInfo),
	}, nil
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number")
	}
	*s = flexString(n.String())
	return nil
}

// flexStrings accepts a JSON array of strings or a single string.
type flexStrings []string

func (s *flexStrings) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexStrings{v}
		return nil
	}
	var v []string
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("expected string or array of strings")
	}
	*s = v
	return nil
}

type submissionJSON struct {
	Email             string      `json:"email"`
	ApplicantName     string      `json:"applicantName"`
	JobTitle          string      `json:"jobTitle"`
	CompanyName       string      `json:"companyName"`
	SameCompany       string      `json:"sameCompany"`
	Skills            flexStrings `json:"skills"`
	CurrentRole       string      `json:"currentRole"`
	YearsOfExperience flexString  `json:"yearsOfExperience"`
	RelevantInfo      string      `json:"relevantInfo"`
}

func decodeJSONSubmission(r *http.Request) (domain.SubmissionInput, error) {
	var body submissionJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return domain.SubmissionInput{}, fmt.Errorf("decode json: %w", err)
	}
	return domain.SubmissionInput{
		Email:             body.Email,
		ApplicantName:     body.ApplicantName,
		JobTitle:          body.JobTitle,
		CompanyName:       body.CompanyName,
		SameCompany:       body.SameCompany,
		Skills:            []string(body.Skills),
		CurrentRole:       body.CurrentRole,
		YearsOfExperience: string(body.YearsOfExperience),
		RelevantInfo:      body.RelevantInfo,
	}, nil
}

// ClientIP returns the first X-Forwarded-For hop, falling back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// SubmissionMetadata collects request metadata for a submission.
func SubmissionMetadata(r *http.Request, source domain.SubmissionSource) domain.SubmissionMetadata {
	return domain.SubmissionMetadata{
		UserAgent: r.UserAgent(),
		IPAddress: ClientIP(r),
		Source:    source,
		Referrer:  r.Referer(),
	}
}
