package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-census/internal/domain/responses"
)

type responsePair struct {
	formID     string
	questionID string
}

type responseRepo struct {
	mu     sync.RWMutex
	byPair map[responsePair]responses.Response
}

func NewResponseRepo() responses.Repository {
	return &responseRepo{
		byPair: make(map[responsePair]responses.Response),
	}
}

func (r *responseRepo) Create(ctx context.Context, resp responses.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(resp.ID) == "" {
		return errors.New("response id required")
	}
	k := responsePair{resp.FormID, resp.QuestionID}
	// Una sola fila viva por (form_id, question_id).
	if _, exists := r.byPair[k]; exists {
		return errors.New("response already exists for (form, question)")
	}
	r.byPair[k] = resp
	return nil
}

func (r *responseRepo) Update(ctx context.Context, resp responses.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := responsePair{resp.FormID, resp.QuestionID}
	if _, exists := r.byPair[k]; !exists {
		return responses.ErrNotFound
	}
	r.byPair[k] = resp
	return nil
}

func (r *responseRepo) GetByFormQuestion(ctx context.Context, formID, questionID string) (responses.Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resp, ok := r.byPair[responsePair{formID, questionID}]
	if !ok {
		return responses.Response{}, responses.ErrNotFound
	}
	return resp, nil
}

func (r *responseRepo) DeleteByFormQuestion(ctx context.Context, formID, questionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := responsePair{formID, questionID}
	if _, exists := r.byPair[k]; !exists {
		return responses.ErrNotFound
	}
	delete(r.byPair, k)
	return nil
}

func (r *responseRepo) ListByForm(ctx context.Context, formID string) ([]responses.Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]responses.Response, 0)
	for k, resp := range r.byPair {
		if k.formID == formID {
			out = append(out, resp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *responseRepo) DeleteByForm(ctx context.Context, formID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k := range r.byPair {
		if k.formID == formID {
			delete(r.byPair, k)
		}
	}
	return nil
}
