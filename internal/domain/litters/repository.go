package litters

import (
	"context"
	"errors"
)

// ErrNotFound lo devuelven los adapters cuando el formulario no tiene
// camada registrada; el servicio lo distingue de una falla del store.
var ErrNotFound = errors.New("litter not found")

// Repository persiste registros de camada. form_id es único: el adapter
// debe respetar a lo sumo una fila por formulario.
type Repository interface {
	Create(ctx context.Context, l Litter) error
	Update(ctx context.Context, l Litter) error
	GetByForm(ctx context.Context, formID string) (Litter, error)
	DeleteByForm(ctx context.Context, formID string) error
}
