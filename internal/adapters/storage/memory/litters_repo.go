package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"pet-census/internal/domain/litters"
)

type litterRepo struct {
	mu     sync.RWMutex
	byForm map[string]litters.Litter
}

func NewLitterRepo() litters.Repository {
	return &litterRepo{
		byForm: make(map[string]litters.Litter),
	}
}

func (r *litterRepo) Create(ctx context.Context, l litters.Litter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(l.ID) == "" {
		return errors.New("litter id required")
	}
	// Unicidad por form_id: a lo sumo un registro de camada por formulario.
	if _, exists := r.byForm[l.FormID]; exists {
		return errors.New("litter already exists for form")
	}
	r.byForm[l.FormID] = l
	return nil
}

func (r *litterRepo) Update(ctx context.Context, l litters.Litter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byForm[l.FormID]; !exists {
		return litters.ErrNotFound
	}
	r.byForm[l.FormID] = l
	return nil
}

func (r *litterRepo) GetByForm(ctx context.Context, formID string) (litters.Litter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.byForm[formID]
	if !ok {
		return litters.Litter{}, litters.ErrNotFound
	}
	return l, nil
}

func (r *litterRepo) DeleteByForm(ctx context.Context, formID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byForm[formID]; !exists {
		return litters.ErrNotFound
	}
	delete(r.byForm, formID)
	return nil
}
