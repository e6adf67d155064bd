package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-census/internal/domain/absences"
	"pet-census/internal/domain/animals"
	"pet-census/internal/domain/forms"
	"pet-census/internal/domain/litters"
	"pet-census/internal/domain/responses"
)

type formRepo struct {
	mu   sync.RWMutex
	byID map[string]forms.Form

	animals   animals.Repository
	litters   litters.Repository
	absences  absences.Repository
	responses responses.Repository
}

// NewFormRepo recibe los repos hijos para poder cascadear el borrado.
// En Postgres el cascade corre dentro de una transacción; acá los hijos
// se borran en secuencia, suficiente para dev y tests.
func NewFormRepo(a animals.Repository, l litters.Repository, ab absences.Repository, resp responses.Repository) forms.Repository {
	return &formRepo{
		byID:      make(map[string]forms.Form),
		animals:   a,
		litters:   l,
		absences:  ab,
		responses: resp,
	}
}

func (r *formRepo) Create(ctx context.Context, f forms.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(f.ID) == "" {
		return errors.New("form id required")
	}
	if _, exists := r.byID[f.ID]; exists {
		return errors.New("form already exists")
	}
	r.byID[f.ID] = f
	return nil
}

func (r *formRepo) GetByID(ctx context.Context, id string) (forms.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byID[id]
	if !ok {
		return forms.Form{}, ErrNotFound
	}
	return f, nil
}

func (r *formRepo) Update(ctx context.Context, f forms.Form) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[f.ID]; !exists {
		return ErrNotFound
	}
	r.byID[f.ID] = f
	return nil
}

func (r *formRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	if _, exists := r.byID[id]; !exists {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.byID, id)
	r.mu.Unlock()

	// Cascade explícito sobre cada store hijo; un hijo sin filas no es error.
	for _, kind := range []animals.Kind{animals.KindCurrent, animals.KindPrevious} {
		items, err := r.animals.ListByForm(ctx, id, kind)
		if err != nil {
			return err
		}
		for _, a := range items {
			if err := r.animals.Delete(ctx, a.ID); err != nil {
				return err
			}
		}
	}
	if err := r.litters.DeleteByForm(ctx, id); err != nil && !errors.Is(err, litters.ErrNotFound) {
		return err
	}
	if err := r.absences.DeleteByForm(ctx, id); err != nil && !errors.Is(err, absences.ErrNotFound) {
		return err
	}
	return r.responses.DeleteByForm(ctx, id)
}

func (r *formRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]forms.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]forms.Form, 0)
	for _, f := range r.byID {
		if f.OwnerUserID == ownerUserID {
			out = append(out, f)
		}
	}
	sortForms(out)
	return out, nil
}

func (r *formRepo) ListByCity(ctx context.Context, cityID string) ([]forms.Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]forms.Form, 0)
	for _, f := range r.byID {
		if f.CityID == cityID {
			out = append(out, f)
		}
	}
	sortForms(out)
	return out, nil
}

// Orden estable por created_at asc (solo para consistencia en dev)
func sortForms(out []forms.Form) {
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
}
