package domain

// Submission field names shared by the interactive email form, the hosted
// fallback form and the inbound validator.
const (
	FieldEmail             = "email"
	FieldApplicantName     = "applicantName"
	FieldJobTitle          = "jobTitle"
	FieldCompanyName       = "companyName"
	FieldSameCompany       = "sameCompany"
	FieldSkills            = "skills"
	FieldCurrentRole       = "currentRole"
	FieldYearsOfExperience = "yearsOfExperience"
	FieldRelevantInfo      = "relevantInfo"
)

// SameCompany answers.
const (
	SameCompanyYes = "yes"
	SameCompanyNo  = "no"
)

// FieldNames exposes the field name constants to templates.
type FieldNames struct {
	Email             string
	ApplicantName     string
	JobTitle          string
	CompanyName       string
	SameCompany       string
	Skills            string
	CurrentRole       string
	YearsOfExperience string
	RelevantInfo      string
}

// SubmissionContract is the single definition of what a resume submission may
// contain. Every form that collects a submission and the validator that
// accepts one are driven by this value.
type SubmissionContract struct {
	Fields              FieldNames
	Skills              []string
	SameCompanyOptions  []string
	ApplicantNameMaxLen int
	JobTitleMaxLen      int
	CompanyNameMaxLen   int
	CurrentRoleMinLen   int
	CurrentRoleMaxLen   int
	YearsMin            int
	YearsMax            int
	RelevantInfoMaxLen  int
}

// Contract is the submission contract in force.
var Contract = SubmissionContract{
	Fields: FieldNames{
		Email:             FieldEmail,
		ApplicantName:     FieldApplicantName,
		JobTitle:          FieldJobTitle,
		CompanyName:       FieldCompanyName,
		SameCompany:       FieldSameCompany,
		Skills:            FieldSkills,
		CurrentRole:       FieldCurrentRole,
		YearsOfExperience: FieldYearsOfExperience,
		RelevantInfo:      FieldRelevantInfo,
	},
	Skills: []string{
		"React",
		"Node.js",
		"MongoDB",
		"Big Data",
		"Docker",
		"Kubernetes",
		"Python",
		"Data Engineering",
	},
	SameCompanyOptions:  []string{SameCompanyYes, SameCompanyNo},
	ApplicantNameMaxLen: 100,
	JobTitleMaxLen:      200,
	CompanyNameMaxLen:   200,
	CurrentRoleMinLen:   1,
	CurrentRoleMaxLen:   200,
	YearsMin:            0,
	YearsMax:            50,
	RelevantInfoMaxLen:  1200,
}

// IsAllowedSkill reports whether skill is part of the vocabulary (exact match).
func (c SubmissionContract) IsAllowedSkill(skill string) bool {
	for _, s := range c.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// IsSameCompanyOption reports whether v is an accepted sameCompany answer.
func (c SubmissionContract) IsSameCompanyOption(v string) bool {
	for _, o := range c.SameCompanyOptions {
		if o == v {
			return true
		}
	}
	return false
}

// NormalizeSkills deduplicates skills and returns them in vocabulary order.
// Callers must have checked membership first; unknown values are dropped.
func (c SubmissionContract) NormalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		seen[s] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for _, s := range c.Skills {
		if _, ok := seen[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
