package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"pet-census/internal/domain/absences"
)

type absenceRepo struct {
	mu     sync.RWMutex
	byForm map[string]absences.Record
}

func NewAbsenceRepo() absences.Repository {
	return &absenceRepo{
		byForm: make(map[string]absences.Record),
	}
}

func (r *absenceRepo) Create(ctx context.Context, rec absences.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("absence id required")
	}
	// Unicidad por form_id: a lo sumo un registro de ausencia por formulario.
	if _, exists := r.byForm[rec.FormID]; exists {
		return errors.New("absence record already exists for form")
	}
	r.byForm[rec.FormID] = rec
	return nil
}

func (r *absenceRepo) Update(ctx context.Context, rec absences.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byForm[rec.FormID]; !exists {
		return absences.ErrNotFound
	}
	r.byForm[rec.FormID] = rec
	return nil
}

func (r *absenceRepo) GetByForm(ctx context.Context, formID string) (absences.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byForm[formID]
	if !ok {
		return absences.Record{}, absences.ErrNotFound
	}
	return rec, nil
}

func (r *absenceRepo) DeleteByForm(ctx context.Context, formID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byForm[formID]; !exists {
		return absences.ErrNotFound
	}
	delete(r.byForm, formID)
	return nil
}
