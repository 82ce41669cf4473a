package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"resumerefresh/internal/domain"
)

// submissionRepository keeps submissions in process memory. Used for local
// development and tests when no database is configured.
type submissionRepository struct {
	mu      sync.Mutex
	records []*domain.SubmissionRecord
}

// NewSubmissionRepository returns an in-memory domain.SubmissionStore.
func NewSubmissionRepository() domain.SubmissionStore {
	return &submissionRepository{}
}

func (r *submissionRepository) Upsert(_ context.Context, rec *domain.SubmissionRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if latest := r.latestLocked(rec.Email); latest != nil {
		rec.ID = latest.ID
		rec.CreatedAt = latest.CreatedAt
		*latest = *clone(rec)
		return false, nil
	}
	r.records = append(r.records, clone(rec))
	return true, nil
}

func (r *submissionRepository) FindLatestByEmail(_ context.Context, email string) (*domain.SubmissionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	latest := r.latestLocked(domain.NormalizeEmail(email))
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return clone(latest), nil
}

func (r *submissionRepository) List(_ context.Context, filter domain.SubmissionFilter, params domain.PaginationParams) ([]*domain.SubmissionRecord, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	needle := strings.ToLower(filter.EmailContains)
	var matched []*domain.SubmissionRecord
	for _, rec := range r.records {
		if needle == "" || strings.Contains(strings.ToLower(rec.Email), needle) {
			matched = append(matched, rec)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := total
	if params.PageSize > 0 && start+params.PageSize < total {
		end = start + params.PageSize
	}
	items := make([]*domain.SubmissionRecord, 0, end-start)
	for _, rec := range matched[start:end] {
		items = append(items, clone(rec))
	}
	return items, total, nil
}

func (r *submissionRepository) latestLocked(email string) *domain.SubmissionRecord {
	var latest *domain.SubmissionRecord
	for _, rec := range r.records {
		if rec.Email != email {
			continue
		}
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) {
			latest = rec
		}
	}
	return latest
}

func clone(rec *domain.SubmissionRecord) *domain.SubmissionRecord {
	c := *rec
	c.Skills = append([]string(nil), rec.Skills...)
	if c.Skills == nil {
		c.Skills = []string{}
	}
	return &c
}
