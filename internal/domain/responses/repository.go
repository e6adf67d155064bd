package responses

import (
	"context"
	"errors"
)

// ErrNotFound lo devuelven los adapters cuando el par (form, question)
// no tiene respuesta; el servicio lo distingue de una falla del store.
var ErrNotFound = errors.New("response not found")

// Repository persiste respuestas. El par (form_id, question_id) es
// único: el adapter debe respetar una sola fila viva por par.
type Repository interface {
	Create(ctx context.Context, r Response) error
	Update(ctx context.Context, r Response) error
	GetByFormQuestion(ctx context.Context, formID, questionID string) (Response, error)
	DeleteByFormQuestion(ctx context.Context, formID, questionID string) error
	ListByForm(ctx context.Context, formID string) ([]Response, error)
	DeleteByForm(ctx context.Context, formID string) error
}
