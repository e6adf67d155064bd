package animals

import (
	"context"

	"pet-census/internal/domain/ordering"
)

type Repository interface {
	Create(ctx context.Context, a Animal) error

	// CreateBatch inserta todo el lote o nada: un alta parcial es un bug
	// de correctitud, no una degradación aceptable.
	CreateBatch(ctx context.Context, as []Animal) error

	GetByID(ctx context.Context, id string) (Animal, error)
	Update(ctx context.Context, a Animal) error
	Delete(ctx context.Context, id string) error

	// ListByForm devuelve los animales del form+kind por registration_order asc.
	ListByForm(ctx context.Context, formID string, kind Kind) ([]Animal, error)

	// NextOrder devuelve max(registration_order)+1 dentro de (form, kind), 1 si vacío.
	NextOrder(ctx context.Context, formID string, kind Kind) (int, error)

	// Reorder aplica el lote completo o nada; un id inexistente o de otro
	// formulario aborta sin efecto parcial.
	Reorder(ctx context.Context, formID string, kind Kind, changes []ordering.Change) error
}
