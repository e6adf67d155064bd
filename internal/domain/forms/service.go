package forms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-census/internal/domain/audit"
	"pet-census/internal/ports/auth"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidStep       = errors.New("step out of range")
	ErrIllegalTransition = errors.New("illegal step transition")
	ErrIncompleteForm    = errors.New("form incomplete")
	ErrNotCompleted      = errors.New("form not completed")
	ErrFormSubmitted     = errors.New("form already submitted")
)

// stepGate decide si un paso condicional es alcanzable dado el estado
// del formulario. Tabla explícita en vez de condicionales inline para
// que la regla sea auditable pregunta por pregunta.
type stepGate struct {
	allowed func(f Form) bool
	reason  string
}

var gatedSteps = map[int]stepGate{
	4: {allowed: Form.HasAnimals, reason: "animal steps require has_dogs_cats=true"},
	5: {allowed: Form.HasAnimals, reason: "animal steps require has_dogs_cats=true"},
	6: {allowed: Form.HasAnimals, reason: "animal steps require has_dogs_cats=true"},
	// el paso de ausencia solo se bloquea si el hogar declaró tener animales
	7: {allowed: func(f Form) bool { return !f.HasAnimals() }, reason: "absence step requires has_dogs_cats!=true"},
}

type Service struct {
	repo      Repository
	responses ResponseSource // puede ser nil si el módulo responses no está cableado
	rec       audit.Recorder // puede ser nil (auditoría deshabilitada)
	now       func() time.Time
}

func NewService(repo Repository, responses ResponseSource, rec audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		responses: responses,
		rec:       rec,
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, ownerUserID, cityID string, formDate time.Time) (Form, error) {
	if strings.TrimSpace(ownerUserID) == "" || strings.TrimSpace(cityID) == "" {
		return Form{}, ErrInvalidInput
	}
	if formDate.IsZero() {
		formDate = s.now()
	}

	now := s.now()
	f := Form{
		ID:          uuid.NewString(),
		CityID:      cityID,
		OwnerUserID: ownerUserID,
		Status:      StatusDraft,
		CurrentStep: StepMin,
		FormDate:    formDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return Form{}, err
	}
	s.record(ctx, audit.ActionCreate, f.ID, ownerUserID, nil, f)
	return f, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Form, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Form{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Form, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

func (s *Service) ListByCity(ctx context.Context, cityID string) ([]Form, error) {
	return s.repo.ListByCity(ctx, cityID)
}

// UpdateInput es un patch por punteros: nil = no tocar.
// El patch no aplica gating de pasos; eso es exclusivo de AdvanceStep.
type UpdateInput struct {
	FormDate        *time.Time
	InterviewerName *string
	InterviewDate   *time.Time
	InterviewStatus *InterviewStatus

	Address        *string
	Neighborhood   *string
	HouseholdSize  *int
	EducationLevel *string
	HousingType    *string
	IncomeLevel    *string

	HasDogsCats *bool

	StraysInArea     *bool
	StrayDogsSeen    *int
	StrayCatsSeen    *int
	FeedsStrays      *bool
	VetVisitsPerYear *int
	VetAnnualCost    *float64
}

func (s *Service) Update(ctx context.Context, id, actorID string, in UpdateInput) (Form, error) {
	f, err := s.GetByID(ctx, id)
	if err != nil {
		return Form{}, err
	}
	if f.Status == StatusSubmitted {
		return Form{}, ErrFormSubmitted
	}
	before := f

	if in.FormDate != nil && !in.FormDate.IsZero() {
		f.FormDate = *in.FormDate
	}
	if in.InterviewerName != nil {
		f.InterviewerName = strings.TrimSpace(*in.InterviewerName)
	}
	if in.InterviewDate != nil {
		f.InterviewDate = in.InterviewDate
	}
	if in.InterviewStatus != nil {
		switch *in.InterviewStatus {
		case InterviewCompleted, InterviewPartial, InterviewRefused, InterviewAbsent, "":
			f.InterviewStatus = *in.InterviewStatus
		default:
			return Form{}, ErrInvalidInput
		}
	}
	if in.Address != nil {
		f.Address = strings.TrimSpace(*in.Address)
	}
	if in.Neighborhood != nil {
		f.Neighborhood = strings.TrimSpace(*in.Neighborhood)
	}
	if in.HouseholdSize != nil {
		if *in.HouseholdSize < 1 {
			return Form{}, ErrInvalidInput
		}
		f.HouseholdSize = in.HouseholdSize
	}
	if in.EducationLevel != nil {
		f.EducationLevel = strings.TrimSpace(*in.EducationLevel)
	}
	if in.HousingType != nil {
		f.HousingType = strings.TrimSpace(*in.HousingType)
	}
	if in.IncomeLevel != nil {
		f.IncomeLevel = strings.TrimSpace(*in.IncomeLevel)
	}
	if in.HasDogsCats != nil {
		f.HasDogsCats = in.HasDogsCats
	}
	if in.StraysInArea != nil {
		f.StraysInArea = in.StraysInArea
	}
	if in.StrayDogsSeen != nil {
		f.StrayDogsSeen = in.StrayDogsSeen
	}
	if in.StrayCatsSeen != nil {
		f.StrayCatsSeen = in.StrayCatsSeen
	}
	if in.FeedsStrays != nil {
		f.FeedsStrays = in.FeedsStrays
	}
	if in.VetVisitsPerYear != nil {
		if *in.VetVisitsPerYear < 0 {
			return Form{}, ErrInvalidInput
		}
		f.VetVisitsPerYear = in.VetVisitsPerYear
	}
	if in.VetAnnualCost != nil {
		if *in.VetAnnualCost < 0 {
			return Form{}, ErrInvalidInput
		}
		f.VetAnnualCost = in.VetAnnualCost
	}

	f.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, f); err != nil {
		return Form{}, err
	}
	s.record(ctx, audit.ActionUpdate, f.ID, actorID, before, f)
	return f, nil
}

// AdvanceStep mueve el puntero de paso. Aplica la tabla de gating:
// un destino condicional inalcanzable devuelve ErrIllegalTransition.
func (s *Service) AdvanceStep(ctx context.Context, id, actorID string, target int) (Form, error) {
	f, err := s.GetByID(ctx, id)
	if err != nil {
		return Form{}, err
	}
	if f.Status == StatusSubmitted {
		return Form{}, ErrFormSubmitted
	}
	if target < StepMin || target > StepMax {
		return Form{}, ErrInvalidStep
	}
	if gate, gated := gatedSteps[target]; gated && !gate.allowed(f) {
		return Form{}, fmt.Errorf("%w: %s", ErrIllegalTransition, gate.reason)
	}
	before := f

	f.CurrentStep = target
	f.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, f); err != nil {
		return Form{}, err
	}
	s.record(ctx, audit.ActionUpdate, f.ID, actorID, before, f)
	return f, nil
}

// Complete saca el formulario de draft. Exige estar en el último paso y
// pasar el validador de completitud; los campos faltantes van en el error.
func (s *Service) Complete(ctx context.Context, id, actorID string) (Form, error) {
	f, err := s.GetByID(ctx, id)
	if err != nil {
		return Form{}, err
	}
	if f.Status == StatusSubmitted {
		return Form{}, ErrFormSubmitted
	}
	if f.CurrentStep != StepMax {
		return Form{}, fmt.Errorf("%w: current step %d, must be %d", ErrIncompleteForm, f.CurrentStep, StepMax)
	}

	result, err := s.validate(ctx, f)
	if err != nil {
		return Form{}, err
	}
	if !result.IsValid {
		return Form{}, fmt.Errorf("%w: missing %s", ErrIncompleteForm, strings.Join(result.MissingFields, ", "))
	}
	before := f

	f.Status = StatusCompleted
	f.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, f); err != nil {
		return Form{}, err
	}
	s.record(ctx, audit.ActionUpdate, f.ID, actorID, before, f)
	return f, nil
}

// Submit cierra definitivamente un formulario completado.
func (s *Service) Submit(ctx context.Context, id, actorID string) (Form, error) {
	f, err := s.GetByID(ctx, id)
	if err != nil {
		return Form{}, err
	}
	if f.Status != StatusCompleted {
		return Form{}, ErrNotCompleted
	}
	before := f

	now := s.now()
	f.Status = StatusSubmitted
	f.SubmittedAt = &now
	f.UpdatedAt = now
	if err := s.repo.Update(ctx, f); err != nil {
		return Form{}, err
	}
	s.record(ctx, audit.ActionUpdate, f.ID, actorID, before, f)
	return f, nil
}

func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	f, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, id, actorID, f, nil)
	return nil
}

func (s *Service) record(ctx context.Context, action audit.Action, formID, actorID string, before, after any) {
	if s.rec == nil {
		return
	}
	s.rec.Record(ctx, action, "form", formID, actorID, before, after)
}

// CanRead / CanMutate centralizan la autorización sobre un formulario;
// los handlers de los módulos hijos las reutilizan.
func CanRead(c auth.Claims, f Form) bool {
	switch c.Role {
	case auth.RoleAdmin, auth.RoleAuditor:
		return true
	default:
		return f.OwnerUserID == c.UserID
	}
}

func CanMutate(c auth.Claims, f Form) bool {
	return f.OwnerUserID == c.UserID
}
