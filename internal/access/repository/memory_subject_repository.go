package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/allisson/roleguard/internal/access/domain"
)

// MemorySubjectRepository keeps subjects in process memory. Stored values are
// copied on every read and write.
type MemorySubjectRepository struct {
	mu       sync.RWMutex
	order    []string
	subjects map[string]*domain.Subject
}

// Create stores a new subject.
func (r *MemorySubjectRepository) Create(_ context.Context, subject *domain.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subjects[subject.ID]; ok {
		return domain.ErrSubjectAlreadyExists
	}
	for _, existing := range r.subjects {
		if strings.EqualFold(existing.Email, subject.Email) {
			return domain.ErrSubjectAlreadyExists
		}
	}

	r.subjects[subject.ID] = subject.Clone()
	r.order = append(r.order, subject.ID)
	return nil
}

// Update replaces a stored subject.
func (r *MemorySubjectRepository) Update(_ context.Context, subject *domain.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subjects[subject.ID]; !ok {
		return domain.ErrSubjectNotFound
	}
	r.subjects[subject.ID] = subject.Clone()
	return nil
}

// Get retrieves a subject by ID.
func (r *MemorySubjectRepository) Get(_ context.Context, subjectID string) (*domain.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subject, ok := r.subjects[subjectID]
	if !ok {
		return nil, domain.ErrSubjectNotFound
	}
	return subject.Clone(), nil
}

// GetByEmail retrieves a subject by e-mail, ignoring case.
func (r *MemorySubjectRepository) GetByEmail(_ context.Context, email string) (*domain.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if subject := r.subjects[id]; strings.EqualFold(subject.Email, email) {
			return subject.Clone(), nil
		}
	}
	return nil, domain.ErrSubjectNotFound
}

// List returns matching subjects in insertion order.
func (r *MemorySubjectRepository) List(_ context.Context, filter domain.SubjectFilter) ([]*domain.Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subjects := make([]*domain.Subject, 0, len(r.order))
	for _, id := range r.order {
		if subject := r.subjects[id]; filter.Matches(subject) {
			subjects = append(subjects, subject.Clone())
		}
	}
	return subjects, nil
}

// NewMemorySubjectRepository creates an empty MemorySubjectRepository.
func NewMemorySubjectRepository() *MemorySubjectRepository {
	return &MemorySubjectRepository{subjects: make(map[string]*domain.Subject)}
}
