package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"resumerefresh/internal/domain"

	"github.com/lib/pq"
)

const submissionColumns = `id, email, applicant_name, job_title, company_name, same_company, skills,
	current_position, years_of_experience, relevant_info, user_agent, ip_address, source, referrer,
	submitted_at, status, created_at, updated_at`

type submissionRepository struct {
	DB *sql.DB
}

// NewSubmissionRepository returns a domain.SubmissionStore implemented with Postgres.
func NewSubmissionRepository(db *sql.DB) domain.SubmissionStore {
	return &submissionRepository{DB: db}
}

// emailLockID derives the transaction advisory lock key for an email.
func emailLockID(email string) int64 {
	h := fnv.New64a()
	h.Write([]byte("resume_submissions:" + email))
	return int64(h.Sum64())
}

// Upsert serializes writers for one email with pg_advisory_xact_lock, which
// also covers the case where no row exists yet and FOR UPDATE locks nothing.
func (r *submissionRepository) Upsert(ctx context.Context, rec *domain.SubmissionRecord) (created bool, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, emailLockID(rec.Email)); err != nil {
		return false, fmt.Errorf("lock email: %w", err)
	}

	var existingID string
	var existingCreated time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT id, created_at FROM resume_submissions
		 WHERE email = $1
		 ORDER BY created_at DESC
		 LIMIT 1
		 FOR UPDATE`, rec.Email).Scan(&existingID, &existingCreated)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = r.insert(ctx, tx, rec)
		created = true
	case err != nil:
		return false, fmt.Errorf("find latest submission: %w", err)
	default:
		rec.ID = existingID
		rec.CreatedAt = existingCreated
		err = r.update(ctx, tx, rec)
	}
	if err != nil {
		return false, err
	}
	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit upsert: %w", err)
	}
	return created, nil
}

func (r *submissionRepository) insert(ctx context.Context, tx *sql.Tx, rec *domain.SubmissionRecord) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO resume_submissions (`+submissionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		rec.ID, rec.Email, rec.ApplicantName, rec.JobTitle, rec.CompanyName, rec.SameCompany, skillsArray(rec.Skills),
		rec.CurrentRole, rec.YearsOfExperience, rec.RelevantInfo,
		rec.Metadata.UserAgent, rec.Metadata.IPAddress, string(rec.Metadata.Source), rec.Metadata.Referrer,
		rec.Metadata.SubmittedAt, rec.Status, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (r *submissionRepository) update(ctx context.Context, tx *sql.Tx, rec *domain.SubmissionRecord) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE resume_submissions SET
			applicant_name = $2, job_title = $3, company_name = $4, same_company = $5, skills = $6,
			current_position = $7, years_of_experience = $8, relevant_info = $9,
			user_agent = $10, ip_address = $11, source = $12, referrer = $13, submitted_at = $14,
			status = $15, updated_at = $16
		 WHERE id = $1`,
		rec.ID, rec.ApplicantName, rec.JobTitle, rec.CompanyName, rec.SameCompany, skillsArray(rec.Skills),
		rec.CurrentRole, rec.YearsOfExperience, rec.RelevantInfo,
		rec.Metadata.UserAgent, rec.Metadata.IPAddress, string(rec.Metadata.Source), rec.Metadata.Referrer,
		rec.Metadata.SubmittedAt, rec.Status, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *submissionRepository) FindLatestByEmail(ctx context.Context, email string) (*domain.SubmissionRecord, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM resume_submissions
		 WHERE email = $1
		 ORDER BY created_at DESC
		 LIMIT 1`, domain.NormalizeEmail(email))
	rec, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *submissionRepository) List(ctx context.Context, filter domain.SubmissionFilter, params domain.PaginationParams) ([]*domain.SubmissionRecord, int, error) {
	pattern := ""
	if filter.EmailContains != "" {
		pattern = "%" + escapeLike(filter.EmailContains) + "%"
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resume_submissions WHERE ($1 = '' OR email ILIKE $1)`, pattern,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM resume_submissions
		 WHERE ($1 = '' OR email ILIKE $1)
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, pattern, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*domain.SubmissionRecord
	for rows.Next() {
		rec, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// skillsArray keeps an empty skill set from being written as NULL.
func skillsArray(skills []string) any {
	if skills == nil {
		skills = []string{}
	}
	return pq.Array(skills)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*domain.SubmissionRecord, error) {
	var rec domain.SubmissionRecord
	var source string
	var skills []string
	err := row.Scan(
		&rec.ID, &rec.Email, &rec.ApplicantName, &rec.JobTitle, &rec.CompanyName, &rec.SameCompany, pq.Array(&skills),
		&rec.CurrentRole, &rec.YearsOfExperience, &rec.RelevantInfo,
		&rec.Metadata.UserAgent, &rec.Metadata.IPAddress, &source, &rec.Metadata.Referrer,
		&rec.Metadata.SubmittedAt, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Metadata.Source = domain.SubmissionSource(source)
	if skills == nil {
		skills = []string{}
	}
	rec.Skills = skills
	return &rec, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
