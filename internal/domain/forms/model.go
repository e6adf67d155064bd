package forms

import "time"

// Status es el estado del ciclo de vida de un formulario.
// @Enum draft, completed, submitted
type Status string

const (
	StatusDraft     Status = "draft"
	StatusCompleted Status = "completed"
	StatusSubmitted Status = "submitted" // terminal: no admite más mutaciones
)

// El formulario avanza por 8 pasos fijos.
const (
	StepMin = 1
	StepMax = 8
)

// InterviewStatus define el resultado de la visita al hogar.
type InterviewStatus string

const (
	InterviewCompleted InterviewStatus = "completed"
	InterviewPartial   InterviewStatus = "partial"
	InterviewRefused   InterviewStatus = "refused"
	InterviewAbsent    InterviewStatus = "absent"
)

// Form es la raíz del agregado: una entrevista de hogar que avanza por
// 8 pasos. Los pasos 4-6 (detalle de animales) solo aplican si el hogar
// declaró tener perros/gatos; el paso 7 (ausencia) solo si no declaró true.
type Form struct {
	ID          string
	CityID      string
	OwnerUserID string

	Status      Status
	CurrentStep int
	FormDate    time.Time
	SubmittedAt *time.Time

	// paso 1: datos de la entrevista
	InterviewerName string
	InterviewDate   *time.Time
	InterviewStatus InterviewStatus

	// paso 2: hogar y nivel socioeconómico
	Address        string
	Neighborhood   string
	HouseholdSize  *int
	EducationLevel string
	HousingType    string
	IncomeLevel    string

	// paso 3: tenencia de animales (nil = aún sin responder)
	HasDogsCats *bool

	// paso 8: animales callejeros y gastos veterinarios
	StraysInArea     *bool
	StrayDogsSeen    *int
	StrayCatsSeen    *int
	FeedsStrays      *bool
	VetVisitsPerYear *int
	VetAnnualCost    *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasAnimals indica si el hogar declaró tener perros o gatos.
func (f Form) HasAnimals() bool {
	return f.HasDogsCats != nil && *f.HasDogsCats
}
