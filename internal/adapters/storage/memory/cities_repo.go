package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-census/internal/domain/cities"
	"pet-census/internal/domain/ordering"
)

type cityRepo struct {
	mu            sync.RWMutex
	byID          map[string]cities.City
	questionsByID map[string]cities.Question
}

func NewCityRepo() cities.Repository {
	return &cityRepo{
		byID:          make(map[string]cities.City),
		questionsByID: make(map[string]cities.Question),
	}
}

func (r *cityRepo) CreateCity(ctx context.Context, c cities.City) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("city id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("city already exists")
	}
	for _, other := range r.byID {
		if other.Name == c.Name && other.Year == c.Year {
			return errors.New("duplicate (name, year)")
		}
	}
	r.byID[c.ID] = c
	return nil
}

func (r *cityRepo) GetCity(ctx context.Context, id string) (cities.City, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return cities.City{}, cities.ErrNotFound
	}
	return c, nil
}

func (r *cityRepo) GetCityByNameYear(ctx context.Context, name string, year int) (cities.City, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.byID {
		if c.Name == name && c.Year == year {
			return c, nil
		}
	}
	return cities.City{}, cities.ErrNotFound
}

func (r *cityRepo) ListCities(ctx context.Context) ([]cities.City, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cities.City, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *cityRepo) UpdateCity(ctx context.Context, c cities.City) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[c.ID]; !exists {
		return cities.ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *cityRepo) DeleteCity(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return cities.ErrNotFound
	}
	delete(r.byID, id)

	// Cascade explícito: las preguntas de la ciudad caen con ella.
	for qid, q := range r.questionsByID {
		if q.CityID == id {
			delete(r.questionsByID, qid)
		}
	}
	return nil
}

func (r *cityRepo) CreateQuestion(ctx context.Context, q cities.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(q.ID) == "" {
		return errors.New("question id required")
	}
	if _, exists := r.questionsByID[q.ID]; exists {
		return errors.New("question already exists")
	}
	if _, exists := r.byID[q.CityID]; !exists {
		return cities.ErrNotFound
	}
	r.questionsByID[q.ID] = q
	return nil
}

func (r *cityRepo) GetQuestion(ctx context.Context, id string) (cities.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.questionsByID[id]
	if !ok {
		return cities.Question{}, cities.ErrNotFound
	}
	return q, nil
}

func (r *cityRepo) UpdateQuestion(ctx context.Context, q cities.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.questionsByID[q.ID]; !exists {
		return cities.ErrNotFound
	}
	r.questionsByID[q.ID] = q
	return nil
}

func (r *cityRepo) DeleteQuestion(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.questionsByID[id]; !exists {
		return cities.ErrNotFound
	}
	delete(r.questionsByID, id)
	return nil
}

func (r *cityRepo) ListQuestionsByCity(ctx context.Context, cityID string) ([]cities.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cities.Question, 0)
	for _, q := range r.questionsByID {
		if q.CityID == cityID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].QuestionOrder < out[j].QuestionOrder
	})
	return out, nil
}

func (r *cityRepo) NextQuestionOrder(ctx context.Context, cityID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	max := 0
	for _, q := range r.questionsByID {
		if q.CityID == cityID && q.QuestionOrder > max {
			max = q.QuestionOrder
		}
	}
	return max + 1, nil
}

func (r *cityRepo) ReorderQuestions(ctx context.Context, cityID string, changes []ordering.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Verificar el lote completo antes de tocar nada: todo o nada.
	inBatch := make(map[string]struct{}, len(changes))
	targets := make(map[int]struct{}, len(changes))
	for _, c := range changes {
		q, ok := r.questionsByID[c.ID]
		if !ok || q.CityID != cityID {
			return cities.ErrNotFound
		}
		inBatch[c.ID] = struct{}{}
		targets[c.NewOrder] = struct{}{}
	}
	// Una pregunta fuera del lote no puede quedar compartiendo orden con
	// una del lote (mismo invariante que el índice único en Postgres).
	for id, q := range r.questionsByID {
		if q.CityID != cityID {
			continue
		}
		if _, moved := inBatch[id]; moved {
			continue
		}
		if _, taken := targets[q.QuestionOrder]; taken {
			return ordering.ErrDuplicateOrder
		}
	}
	for _, c := range changes {
		q := r.questionsByID[c.ID]
		q.QuestionOrder = c.NewOrder
		r.questionsByID[c.ID] = q
	}
	return nil
}
