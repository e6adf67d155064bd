package responses

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-census/internal/domain/audit"
	"pet-census/internal/domain/cities"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("invalid input")

// QuestionSource abastece las preguntas obligatorias de una ciudad.
// cities.Service lo satisface directamente.
type QuestionSource interface {
	ListRequired(ctx context.Context, cityID string) ([]cities.Question, error)
}

type Service struct {
	repo      Repository
	questions QuestionSource
	rec       audit.Recorder // puede ser nil
	now       func() time.Time
}

func NewService(repo Repository, questions QuestionSource, rec audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		questions: questions,
		rec:       rec,
		now:       time.Now,
	}
}

// Upsert guarda la respuesta del par (form, question): crea la fila si
// no existe y la pisa si ya existe.
func (s *Service) Upsert(ctx context.Context, formID, questionID, actorID, text string) (Response, error) {
	formID = strings.TrimSpace(formID)
	questionID = strings.TrimSpace(questionID)
	if formID == "" || questionID == "" {
		return Response{}, ErrInvalidInput
	}

	now := s.now()
	existing, err := s.repo.GetByFormQuestion(ctx, formID, questionID)
	if err != nil {
		// Solo la ausencia de fila dispara el create; una falla del store se propaga.
		if !errors.Is(err, ErrNotFound) {
			return Response{}, err
		}
		resp := Response{
			ID:         uuid.NewString(),
			FormID:     formID,
			QuestionID: questionID,
			Text:       text,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.repo.Create(ctx, resp); err != nil {
			return Response{}, err
		}
		s.record(ctx, audit.ActionCreate, resp.ID, actorID, nil, resp)
		return resp, nil
	}

	before := existing
	existing.Text = text
	existing.UpdatedAt = now
	if err := s.repo.Update(ctx, existing); err != nil {
		return Response{}, err
	}
	s.record(ctx, audit.ActionUpdate, existing.ID, actorID, before, existing)
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, formID, questionID, actorID string) error {
	resp, err := s.repo.GetByFormQuestion(ctx, formID, questionID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByFormQuestion(ctx, formID, questionID); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, resp.ID, actorID, resp, nil)
	return nil
}

func (s *Service) ListByForm(ctx context.Context, formID string) ([]Response, error) {
	if strings.TrimSpace(formID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByForm(ctx, formID)
}

// ListRequiredUnanswered cruza las preguntas obligatorias de la ciudad
// contra las respuestas del formulario: una pregunta cuenta como no
// respondida si no tiene fila o si el texto quedó en blanco. El flag
// required se evalúa acá, al momento de la consulta, nunca cacheado en
// la respuesta.
func (s *Service) ListRequiredUnanswered(ctx context.Context, formID, cityID string) ([]cities.Question, error) {
	required, err := s.questions.ListRequired(ctx, cityID)
	if err != nil {
		return nil, err
	}

	answered, err := s.repo.ListByForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[string]Response, len(answered))
	for _, r := range answered {
		byQuestion[r.QuestionID] = r
	}

	var missing []cities.Question
	for _, q := range required {
		r, ok := byQuestion[q.ID]
		if !ok || strings.TrimSpace(r.Text) == "" {
			missing = append(missing, q)
		}
	}
	return missing, nil
}

func (s *Service) record(ctx context.Context, action audit.Action, id, actorID string, before, after any) {
	if s.rec == nil {
		return
	}
	s.rec.Record(ctx, action, "question_response", id, actorID, before, after)
}
