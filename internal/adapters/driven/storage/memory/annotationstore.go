package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/marginalia/internal/core/domain"
	"github.com/custodia-labs/marginalia/internal/core/ports/driven"
)

// Ensure AnnotationStore implements the interface.
var _ driven.AnnotationStore = (*AnnotationStore)(nil)

// AnnotationStore is an in-memory implementation of driven.AnnotationStore.
// Annotations are kept in a slice in insertion order.
type AnnotationStore struct {
	mu          sync.RWMutex
	annotations []domain.Annotation
	lastID      int64
}

// NewAnnotationStore creates a new in-memory annotation store.
func NewAnnotationStore() *AnnotationStore {
	return &AnnotationStore{}
}

// NextID reserves a fresh identifier.
func (s *AnnotationStore) NextID(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	return s.lastID, nil
}

// Append stores a complete annotation.
func (s *AnnotationStore) Append(_ context.Context, a domain.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.annotations {
		if s.annotations[i].ID == a.ID {
			return domain.ErrInvalidInput
		}
	}
	if a.ID > s.lastID {
		s.lastID = a.ID
	}
	s.annotations = append(s.annotations, cloneAnnotation(a))
	return nil
}

// Delete removes the annotation with the given ID.
func (s *AnnotationStore) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.annotations {
		if s.annotations[i].ID == id {
			s.annotations = append(s.annotations[:i], s.annotations[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// UndoLast removes the most recently inserted annotation on page.
func (s *AnnotationStore) UndoLast(_ context.Context, page int) (*domain.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.annotations) - 1; i >= 0; i-- {
		if s.annotations[i].Page == page {
			removed := s.annotations[i]
			s.annotations = append(s.annotations[:i], s.annotations[i+1:]...)
			return &removed, nil
		}
	}
	return nil, nil
}

// ByPage returns the annotations of one page in insertion order.
func (s *AnnotationStore) ByPage(_ context.Context, page int) ([]domain.Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Annotation
	for _, a := range s.annotations {
		if a.Page == page {
			result = append(result, cloneAnnotation(a))
		}
	}
	return result, nil
}

// All returns every annotation in insertion order.
func (s *AnnotationStore) All(_ context.Context) ([]domain.Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Annotation, 0, len(s.annotations))
	for _, a := range s.annotations {
		result = append(result, cloneAnnotation(a))
	}
	return result, nil
}

// Clear removes every annotation. The ID sequence continues.
func (s *AnnotationStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations = nil
	return nil
}

// Count returns the number of stored annotations.
func (s *AnnotationStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.annotations), nil
}

// cloneAnnotation copies the bounding rectangle so callers cannot
// modify stored records through the pointer.
func cloneAnnotation(a domain.Annotation) domain.Annotation {
	if a.BoundingRect != nil {
		r := *a.BoundingRect
		a.BoundingRect = &r
	}
	return a
}
