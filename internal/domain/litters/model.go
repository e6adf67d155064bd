package litters

import (
	"time"

	"pet-census/internal/domain/animals"
)

// Litter agrega las estadísticas de cría de un hogar: cuántos nacieron
// en la última camada y qué destino tuvieron. Hay a lo sumo un registro
// por formulario; la escritura es upsert por form_id.
type Litter struct {
	ID     string
	FormID string

	Species animals.Species

	Born      int
	Survived  int
	Died      int
	GivenAway int
	Sold      int
	Kept      int

	Vaccinated       *bool
	VaccinationNotes string

	CastrationPlan       string
	CastrationPlanReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}
