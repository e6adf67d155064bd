package absences

import (
	"context"
	"errors"
	"strings"
	"time"

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
	WouldAcquire       WouldAcquire
	WouldAcquireDetail string

	CastrationDecision string
	CastrationReason   string

	Reasons      []Reason
	ReasonsOther string
}

func validate(in UpsertInput) fielderr.List {
	var errs fielderr.List

	if in.WouldAcquire != "" && !ValidWouldAcquire(in.WouldAcquire) {
		errs = append(errs, fielderr.Error{Field: "would_acquire", Rule: fielderr.RuleInvalid, Msg: "unknown would_acquire value"})
	}

	seen := map[Reason]bool{}
	for _, r := range in.Reasons {
		if !ValidReason(r) {
			errs = append(errs, fielderr.Error{Field: "reasons", Rule: fielderr.RuleInvalid, Msg: "unknown reason: " + string(r)})
			continue
		}
		if seen[r] {
			errs = append(errs, fielderr.Error{Field: "reasons", Rule: fielderr.RuleConflict, Msg: "duplicate reason: " + string(r)})
		}
		seen[r] = true
	}

	return errs
}

// UpsertByForm crea el registro de ausencia si el formulario no tiene
// uno y lo pisa si ya existe.
func (s *Service) UpsertByForm(ctx context.Context, formID, actorID string, in UpsertInput) (Record, error) {
	if strings.TrimSpace(formID) == "" {
		return Record{}, ErrInvalidInput
	}
	if err := validate(in).OrNil(); err != nil {
		return Record{}, err
	}

	now := s.now()
	existing, err := s.repo.GetByForm(ctx, formID)
	if err != nil {
		// Solo la ausencia de fila dispara el create; una falla del store se propaga.
		if !errors.Is(err, ErrNotFound) {
			return Record{}, err
		}
		rec := Record{
			ID:                 uuid.NewString(),
			FormID:             formID,
			WouldAcquire:       in.WouldAcquire,
			WouldAcquireDetail: strings.TrimSpace(in.WouldAcquireDetail),
			CastrationDecision: strings.TrimSpace(in.CastrationDecision),
			CastrationReason:   strings.TrimSpace(in.CastrationReason),
			Reasons:            in.Reasons,
			ReasonsOther:       strings.TrimSpace(in.ReasonsOther),
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := s.repo.Create(ctx, rec); err != nil {
			return Record{}, err
		}
		s.record(ctx, audit.ActionCreate, rec.ID, actorID, nil, rec)
		return rec, nil
	}

	before := existing
	existing.WouldAcquire = in.WouldAcquire
	existing.WouldAcquireDetail = strings.TrimSpace(in.WouldAcquireDetail)
	existing.CastrationDecision = strings.TrimSpace(in.CastrationDecision)
	existing.CastrationReason = strings.TrimSpace(in.CastrationReason)
	existing.Reasons = in.Reasons
	existing.ReasonsOther = strings.TrimSpace(in.ReasonsOther)
	existing.UpdatedAt = now

	if err := s.repo.Update(ctx, existing); err != nil {
		return Record{}, err
	}
	s.record(ctx, audit.ActionUpdate, existing.ID, actorID, before, existing)
	return existing, nil
}

func (s *Service) GetByForm(ctx context.Context, formID string) (Record, error) {
	if strings.TrimSpace(formID) == "" {
		return Record{}, ErrInvalidInput
	}
	return s.repo.GetByForm(ctx, formID)
}

func (s *Service) DeleteByForm(ctx context.Context, formID, actorID string) error {
	rec, err := s.GetByForm(ctx, formID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByForm(ctx, formID); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, rec.ID, actorID, rec, nil)
	return nil
}

func (s *Service) record(ctx context.Context, action audit.Action, id, actorID string, before, after any) {
	if s.rec == nil {
		return
	}
	s.rec.Record(ctx, action, "absence", id, actorID, before, after)
}
