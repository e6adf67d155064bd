package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-census/internal/domain/animals"
	"pet-census/internal/domain/ordering"
)

type animalRepo struct {
	mu   sync.RWMutex
	byID map[string]animals.Animal
}

func NewAnimalRepo() animals.Repository {
	return &animalRepo{
		byID: make(map[string]animals.Animal),
	}
}

func (r *animalRepo) Create(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(a)
}

func (r *animalRepo) createLocked(a animals.Animal) error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("animal id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("animal already exists")
	}
	for _, other := range r.byID {
		if other.FormID == a.FormID && other.Kind == a.Kind && other.RegistrationOrder == a.RegistrationOrder {
			return errors.New("duplicate registration_order")
		}
	}
	r.byID[a.ID] = a
	return nil
}

func (r *animalRepo) CreateBatch(ctx context.Context, batch []animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Todo o nada: si una inserción falla se revierten las anteriores.
	inserted := make([]string, 0, len(batch))
	for _, a := range batch {
		if err := r.createLocked(a); err != nil {
			for _, id := range inserted {
				delete(r.byID, id)
			}
			return err
		}
		inserted = append(inserted, a.ID)
	}
	return nil
}

func (r *animalRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return animals.Animal{}, ErrNotFound
	}
	return a, nil
}

func (r *animalRepo) Update(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[a.ID]; !exists {
		return ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *animalRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *animalRepo) ListByForm(ctx context.Context, formID string, kind animals.Kind) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if a.FormID == formID && a.Kind == kind {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RegistrationOrder < out[j].RegistrationOrder
	})
	return out, nil
}

func (r *animalRepo) NextOrder(ctx context.Context, formID string, kind animals.Kind) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	max := 0
	for _, a := range r.byID {
		if a.FormID == formID && a.Kind == kind && a.RegistrationOrder > max {
			max = a.RegistrationOrder
		}
	}
	return max + 1, nil
}

func (r *animalRepo) Reorder(ctx context.Context, formID string, kind animals.Kind, changes []ordering.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Verificar el lote completo antes de tocar nada: todo o nada.
	inBatch := make(map[string]struct{}, len(changes))
	targets := make(map[int]struct{}, len(changes))
	for _, c := range changes {
		a, ok := r.byID[c.ID]
		if !ok || a.FormID != formID || a.Kind != kind {
			return ErrNotFound
		}
		inBatch[c.ID] = struct{}{}
		targets[c.NewOrder] = struct{}{}
	}
	// Un hermano fuera del lote no puede quedar compartiendo orden con
	// uno del lote (mismo invariante que el índice único en Postgres).
	for id, a := range r.byID {
		if a.FormID != formID || a.Kind != kind {
			continue
		}
		if _, moved := inBatch[id]; moved {
			continue
		}
		if _, taken := targets[a.RegistrationOrder]; taken {
			return ordering.ErrDuplicateOrder
		}
	}
	for _, c := range changes {
		a := r.byID[c.ID]
		a.RegistrationOrder = c.NewOrder
		r.byID[c.ID] = a
	}
	return nil
}
