package animals

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-census/internal/domain/audit"
	"pet-census/internal/domain/ordering"
	"pet-census/internal/platform/fielderr"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	rec  audit.Recorder // puede ser nil
	now  func() time.Time
}

func NewService(repo Repository, rec audit.Recorder) *Service {
	return &Service{
		repo: repo,
		rec:  rec,
		now:  time.Now,
	}
}

type CreateInput struct {
	Species Species
	Sex     Sex
	Breed   string

	AgeMonths *int
	AgeYears  *int

	Castration       CastrationStatus
	CastrationReason string

	Vaccination       VaccinationStatus
	VaccinationReason string

	Acquisition     Acquisition
	AcquisitionTime string

	HasMicrochip    *bool
	MicrochipNumber string
	Description     string
	Name            string

	CardMinimized bool
	Extra         map[string]ExtraValue
}

// validateCreate reproduce las reglas de alta como funciones explícitas
// que juntan todas las fallas, una etiqueta por regla.
func validateCreate(in CreateInput) fielderr.List {
	var errs fielderr.List

	if in.Species == "" {
		errs = append(errs, fielderr.Error{Field: "species", Rule: fielderr.RuleRequired, Msg: "species is required"})
	} else if !ValidSpecies(in.Species) {
		errs = append(errs, fielderr.Error{Field: "species", Rule: fielderr.RuleInvalid, Msg: "unknown species"})
	}

	errs = append(errs, validateAge(in.AgeMonths, in.AgeYears)...)

	for key, v := range in.Extra {
		if strings.TrimSpace(key) == "" || !validExtra(v) {
			errs = append(errs, fielderr.Error{Field: "extra." + key, Rule: fielderr.RuleInvalid, Msg: "extra values must be exactly one scalar"})
		}
	}

	return errs
}

// validateAge exige exactamente una de las dos formas de edad:
// meses en [0,11] o años en [1,30].
func validateAge(months, years *int) fielderr.List {
	var errs fielderr.List

	switch {
	case months == nil && years == nil:
		errs = append(errs, fielderr.Error{Field: "age", Rule: fielderr.RuleRequired, Msg: "either age_months or age_years is required"})
	case months != nil && years != nil:
		errs = append(errs, fielderr.Error{Field: "age", Rule: fielderr.RuleConflict, Msg: "age_months and age_years are mutually exclusive"})
	case months != nil:
		if *months < 0 || *months > 11 {
			errs = append(errs, fielderr.Error{Field: "age_months", Rule: fielderr.RuleOutOfRange, Msg: "age_months must be in [0,11]"})
		}
	case years != nil:
		if *years < 1 || *years > 30 {
			errs = append(errs, fielderr.Error{Field: "age_years", Rule: fielderr.RuleOutOfRange, Msg: "age_years must be in [1,30]"})
		}
	}

	return errs
}

func validExtra(v ExtraValue) bool {
	n := 0
	if v.Str != nil {
		n++
	}
	if v.Num != nil {
		n++
	}
	if v.Bool != nil {
		n++
	}
	return n == 1
}

func (s *Service) Create(ctx context.Context, formID string, kind Kind, actorID string, in CreateInput) (Animal, error) {
	if strings.TrimSpace(formID) == "" || !ValidKind(kind) {
		return Animal{}, ErrInvalidInput
	}
	if err := validateCreate(in).OrNil(); err != nil {
		return Animal{}, err
	}

	order, err := s.repo.NextOrder(ctx, formID, kind)
	if err != nil {
		return Animal{}, err
	}

	a := s.build(formID, kind, in, order)
	if err := s.repo.Create(ctx, a); err != nil {
		return Animal{}, err
	}
	s.record(ctx, audit.ActionCreate, a.ID, actorID, nil, a)
	return a, nil
}

// BulkCreate asigna registration_order consecutivo desde max(existente)+1
// en el orden del input. Todo el lote se valida antes de insertar y la
// inserción es atómica.
func (s *Service) BulkCreate(ctx context.Context, formID string, kind Kind, actorID string, items []CreateInput) ([]Animal, error) {
	if strings.TrimSpace(formID) == "" || !ValidKind(kind) || len(items) == 0 {
		return nil, ErrInvalidInput
	}

	var errs fielderr.List
	for _, in := range items {
		errs = append(errs, validateCreate(in)...)
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	start, err := s.repo.NextOrder(ctx, formID, kind)
	if err != nil {
		return nil, err
	}

	batch := make([]Animal, 0, len(items))
	for i, in := range items {
		batch = append(batch, s.build(formID, kind, in, start+i))
	}

	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}
	for _, a := range batch {
		s.record(ctx, audit.ActionCreate, a.ID, actorID, nil, a)
	}
	return batch, nil
}

func (s *Service) build(formID string, kind Kind, in CreateInput, order int) Animal {
	now := s.now()
	return Animal{
		ID:                uuid.NewString(),
		FormID:            formID,
		Kind:              kind,
		Species:           in.Species,
		Sex:               in.Sex,
		Breed:             strings.TrimSpace(in.Breed),
		AgeMonths:         in.AgeMonths,
		AgeYears:          in.AgeYears,
		Castration:        in.Castration,
		CastrationReason:  strings.TrimSpace(in.CastrationReason),
		Vaccination:       in.Vaccination,
		VaccinationReason: strings.TrimSpace(in.VaccinationReason),
		Acquisition:       in.Acquisition,
		AcquisitionTime:   strings.TrimSpace(in.AcquisitionTime),
		HasMicrochip:      in.HasMicrochip,
		MicrochipNumber:   strings.TrimSpace(in.MicrochipNumber),
		Description:       strings.TrimSpace(in.Description),
		Name:              strings.TrimSpace(in.Name),
		RegistrationOrder: order,
		CardMinimized:     in.CardMinimized,
		Extra:             in.Extra,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Animal{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByForm(ctx context.Context, formID string, kind Kind) ([]Animal, error) {
	if !ValidKind(kind) {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByForm(ctx, formID, kind)
}

// UpdateInput es un patch por punteros: nil = no tocar.
// Setear AgeMonths limpia AgeYears y viceversa; mandar ambos es conflicto.
type UpdateInput struct {
	Species *Species
	Sex     *Sex
	Breed   *string

	AgeMonths *int
	AgeYears  *int

	Castration       *CastrationStatus
	CastrationReason *string

	Vaccination       *VaccinationStatus
	VaccinationReason *string

	Acquisition     *Acquisition
	AcquisitionTime *string

	HasMicrochip    *bool
	MicrochipNumber *string
	Description     *string
	Name            *string

	Extra map[string]ExtraValue
}

func (s *Service) Update(ctx context.Context, id, actorID string, in UpdateInput) (Animal, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}
	before := a

	var errs fielderr.List

	if in.Species != nil {
		if !ValidSpecies(*in.Species) {
			errs = append(errs, fielderr.Error{Field: "species", Rule: fielderr.RuleInvalid, Msg: "unknown species"})
		} else {
			a.Species = *in.Species
		}
	}
	if in.Sex != nil {
		a.Sex = *in.Sex
	}
	if in.Breed != nil {
		a.Breed = strings.TrimSpace(*in.Breed)
	}

	switch {
	case in.AgeMonths != nil && in.AgeYears != nil:
		errs = append(errs, fielderr.Error{Field: "age", Rule: fielderr.RuleConflict, Msg: "age_months and age_years are mutually exclusive"})
	case in.AgeMonths != nil:
		a.AgeMonths = in.AgeMonths
		a.AgeYears = nil
	case in.AgeYears != nil:
		a.AgeYears = in.AgeYears
		a.AgeMonths = nil
	}
	errs = append(errs, validateAge(a.AgeMonths, a.AgeYears)...)

	if in.Castration != nil {
		a.Castration = *in.Castration
	}
	if in.CastrationReason != nil {
		a.CastrationReason = strings.TrimSpace(*in.CastrationReason)
	}
	if in.Vaccination != nil {
		a.Vaccination = *in.Vaccination
	}
	if in.VaccinationReason != nil {
		a.VaccinationReason = strings.TrimSpace(*in.VaccinationReason)
	}
	if in.Acquisition != nil {
		a.Acquisition = *in.Acquisition
	}
	if in.AcquisitionTime != nil {
		a.AcquisitionTime = strings.TrimSpace(*in.AcquisitionTime)
	}
	if in.HasMicrochip != nil {
		a.HasMicrochip = in.HasMicrochip
	}
	if in.MicrochipNumber != nil {
		a.MicrochipNumber = strings.TrimSpace(*in.MicrochipNumber)
	}
	if in.Description != nil {
		a.Description = strings.TrimSpace(*in.Description)
	}
	if in.Name != nil {
		a.Name = strings.TrimSpace(*in.Name)
	}
	if in.Extra != nil {
		for key, v := range in.Extra {
			if strings.TrimSpace(key) == "" || !validExtra(v) {
				errs = append(errs, fielderr.Error{Field: "extra." + key, Rule: fielderr.RuleInvalid, Msg: "extra values must be exactly one scalar"})
			}
		}
		a.Extra = in.Extra
	}

	if err := errs.OrNil(); err != nil {
		return Animal{}, err
	}

	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	s.record(ctx, audit.ActionUpdate, a.ID, actorID, before, a)
	return a, nil
}

// ToggleMinimized persiste el estado de UI de la tarjeta del animal.
func (s *Service) ToggleMinimized(ctx context.Context, id, actorID string) (Animal, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return Animal{}, err
	}
	before := a

	a.CardMinimized = !a.CardMinimized
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Animal{}, err
	}
	s.record(ctx, audit.ActionUpdate, a.ID, actorID, before, a)
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, id, actorID, a, nil)
	return nil
}

// Reorder renumera los animales del form+kind de forma atómica.
func (s *Service) Reorder(ctx context.Context, formID string, kind Kind, actorID string, changes []ordering.Change) error {
	if !ValidKind(kind) {
		return ErrInvalidInput
	}
	if err := ordering.Validate(changes); err != nil {
		return err
	}
	if err := s.repo.Reorder(ctx, formID, kind, changes); err != nil {
		return err
	}
	s.record(ctx, audit.ActionUpdate, formID, actorID, nil, changes)
	return nil
}

func (s *Service) record(ctx context.Context, action audit.Action, id, actorID string, before, after any) {
	if s.rec == nil {
		return
	}
	s.rec.Record(ctx, action, "animal", id, actorID, before, after)
}
