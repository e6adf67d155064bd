package absences

import (
	"context"
	"errors"
)

// ErrNotFound lo devuelven los adapters cuando el formulario no tiene
// registro de ausencia; el servicio lo distingue de una falla del store.
var ErrNotFound = errors.New("absence record not found")

// Repository persiste registros de ausencia. form_id es único: el
// adapter debe respetar a lo sumo una fila por formulario.
type Repository interface {
	Create(ctx context.Context, rec Record) error
	Update(ctx context.Context, rec Record) error
	GetByForm(ctx context.Context, formID string) (Record, error)
	DeleteByForm(ctx context.Context, formID string) error
}
