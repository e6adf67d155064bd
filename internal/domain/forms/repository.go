package forms

import "context"

type Repository interface {
	Create(ctx context.Context, f Form) error
	GetByID(ctx context.Context, id string) (Form, error)
	Update(ctx context.Context, f Form) error

	// Delete elimina el formulario y todos sus registros hijos (animales,
	// camada, ausencia, respuestas) en la misma unidad atómica. El cascade
	// es explícito en el adapter, no una anotación del esquema.
	Delete(ctx context.Context, id string) error

	ListByOwner(ctx context.Context, ownerUserID string) ([]Form, error)
	ListByCity(ctx context.Context, cityID string) ([]Form, error)
}
