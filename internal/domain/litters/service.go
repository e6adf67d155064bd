package litters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-census/internal/domain/animals"
	"pet-census/internal/domain/audit"
	"pet-census/internal/platform/fielderr"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("invalid input")

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

type UpsertInput struct {
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
}

// validate junta todas las fallas de conteo: ningún conteo negativo y
// los destinos no pueden superar a los nacidos.
func validate(in UpsertInput) fielderr.List {
	var errs fielderr.List

	if in.Species != "" && !animals.ValidSpecies(in.Species) {
		errs = append(errs, fielderr.Error{Field: "species", Rule: fielderr.RuleInvalid, Msg: "unknown species"})
	}

	counts := []struct {
		field string
		value int
	}{
		{"born", in.Born},
		{"survived", in.Survived},
		{"died", in.Died},
		{"given_away", in.GivenAway},
		{"sold", in.Sold},
		{"kept", in.Kept},
	}
	for _, c := range counts {
		if c.value < 0 {
			errs = append(errs, fielderr.Error{Field: c.field, Rule: fielderr.RuleOutOfRange, Msg: c.field + " cannot be negative"})
		}
	}
	if len(errs) > 0 {
		return errs
	}

	if in.Survived > in.Born {
		errs = append(errs, fielderr.Error{Field: "survived", Rule: fielderr.RuleOutOfRange, Msg: "survived cannot exceed born"})
	}
	if total := in.Died + in.GivenAway + in.Sold + in.Kept; total > in.Born {
		errs = append(errs, fielderr.Error{
			Field: "born",
			Rule:  fielderr.RuleConflict,
			Msg:   fmt.Sprintf("dispositions (%d) exceed born (%d)", total, in.Born),
		})
	}

	return errs
}

// UpsertByForm crea el registro de camada del formulario si no existe y
// lo pisa si ya existe: nunca hay más de una fila por formulario.
func (s *Service) UpsertByForm(ctx context.Context, formID, actorID string, in UpsertInput) (Litter, error) {
	if strings.TrimSpace(formID) == "" {
		return Litter{}, ErrInvalidInput
	}
	if err := validate(in).OrNil(); err != nil {
		return Litter{}, err
	}

	now := s.now()
	existing, err := s.repo.GetByForm(ctx, formID)
	if err != nil {
		// Solo la ausencia de fila dispara el create; una falla del store se propaga.
		if !errors.Is(err, ErrNotFound) {
			return Litter{}, err
		}
		l := Litter{
			ID:                   uuid.NewString(),
			FormID:               formID,
			Species:              in.Species,
			Born:                 in.Born,
			Survived:             in.Survived,
			Died:                 in.Died,
			GivenAway:            in.GivenAway,
			Sold:                 in.Sold,
			Kept:                 in.Kept,
			Vaccinated:           in.Vaccinated,
			VaccinationNotes:     strings.TrimSpace(in.VaccinationNotes),
			CastrationPlan:       strings.TrimSpace(in.CastrationPlan),
			CastrationPlanReason: strings.TrimSpace(in.CastrationPlanReason),
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := s.repo.Create(ctx, l); err != nil {
			return Litter{}, err
		}
		s.record(ctx, audit.ActionCreate, l.ID, actorID, nil, l)
		return l, nil
	}

	before := existing
	existing.Species = in.Species
	existing.Born = in.Born
	existing.Survived = in.Survived
	existing.Died = in.Died
	existing.GivenAway = in.GivenAway
	existing.Sold = in.Sold
	existing.Kept = in.Kept
	existing.Vaccinated = in.Vaccinated
	existing.VaccinationNotes = strings.TrimSpace(in.VaccinationNotes)
	existing.CastrationPlan = strings.TrimSpace(in.CastrationPlan)
	existing.CastrationPlanReason = strings.TrimSpace(in.CastrationPlanReason)
	existing.UpdatedAt = now

	if err := s.repo.Update(ctx, existing); err != nil {
		return Litter{}, err
	}
	s.record(ctx, audit.ActionUpdate, existing.ID, actorID, before, existing)
	return existing, nil
}

func (s *Service) GetByForm(ctx context.Context, formID string) (Litter, error) {
	if strings.TrimSpace(formID) == "" {
		return Litter{}, ErrInvalidInput
	}
	return s.repo.GetByForm(ctx, formID)
}

func (s *Service) DeleteByForm(ctx context.Context, formID, actorID string) error {
	l, err := s.GetByForm(ctx, formID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByForm(ctx, formID); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, l.ID, actorID, l, nil)
	return nil
}

func (s *Service) record(ctx context.Context, action audit.Action, id, actorID string, before, after any) {
	if s.rec == nil {
		return
	}
	s.rec.Record(ctx, action, "litter", id, actorID, before, after)
}
